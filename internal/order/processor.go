package order

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"CandyShop/internal/store"
	"CandyShop/pkg/kit"
)

type PlaceRequest struct {
	UserID int              `json:"user_id"`
	Items  []store.LineItem `json:"items"`
	// Total is recorded as given; when nil it is priced from the catalog.
	Total *decimal.Decimal `json:"total"`
}

// Processor places orders. Validation, stock decrement and the append of
// the order happen in one Unit.Update, so an order is either fully
// recorded with all stock taken or not recorded at all.
type Processor struct {
	Unit    *store.Unit
	Log     *zap.Logger
	Metrics *Metrics
	Now     func() time.Time
}

func (p *Processor) PlaceOrder(ctx context.Context, req PlaceRequest) (store.Order, error) {
	if err := validateRequest(req); err != nil {
		p.reject(reasonInvalid)
		return store.Order{}, err
	}

	var placed store.Order
	err := p.Unit.Update(ctx, func(d *store.Document) error {
		if _, ok := d.UserByID(req.UserID); !ok {
			return ErrUserNotFound
		}

		products, err := checkStock(d, req.Items)
		if err != nil {
			return err
		}

		total := decimal.Zero
		for _, it := range req.Items {
			pr := products[it.ProductID]
			pr.Stock -= it.Quantity
			total = total.Add(pr.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
		}
		if req.Total != nil {
			total = *req.Total
		}

		placed = store.Order{
			ID:        d.NextID(store.CollectionOrders),
			UserID:    req.UserID,
			Items:     append([]store.LineItem{}, req.Items...),
			Total:     total,
			Status:    store.StatusPending,
			CreatedAt: p.now(),
		}
		d.Orders = append(d.Orders, placed)
		return nil
	})
	if err != nil {
		p.reject(rejectionReason(err))
		return store.Order{}, err
	}

	p.record(placed)
	return placed, nil
}

func validateRequest(req PlaceRequest) error {
	if req.UserID <= 0 || len(req.Items) == 0 {
		return ErrInvalidOrder
	}
	for _, it := range req.Items {
		if it.Quantity <= 0 {
			return ErrInvalidOrder
		}
	}
	if req.Total != nil && req.Total.IsNegative() {
		return ErrInvalidOrder
	}
	return nil
}

// checkStock verifies every line item before anything is mutated. Lines
// naming the same product are checked against their combined quantity.
func checkStock(d *store.Document, items []store.LineItem) (map[int]*store.Product, error) {
	products := make(map[int]*store.Product, len(items))
	wanted := make(map[int]int, len(items))

	for _, it := range items {
		pr, ok := d.ProductByID(it.ProductID)
		if !ok {
			return nil, productNotFound(it.ProductID)
		}
		products[it.ProductID] = pr

		wanted[it.ProductID] += it.Quantity
		if pr.Stock < wanted[it.ProductID] {
			return nil, insufficientStock(pr.ID, pr.Name, wanted[it.ProductID], pr.Stock)
		}
	}
	return products, nil
}

func rejectionReason(err error) string {
	var (
		notFound *ProductNotFoundError
		short    *InsufficientStockError
	)
	switch {
	case errors.Is(err, ErrUserNotFound):
		return reasonUser
	case errors.As(err, &notFound):
		return reasonProduct
	case errors.As(err, &short):
		return reasonInsufficient
	case kit.KindOf(err) == kit.KindStorage:
		return reasonStorage
	default:
		return reasonInvalid
	}
}

func (p *Processor) now() time.Time {
	if p.Now != nil {
		return p.Now().UTC()
	}
	return time.Now().UTC()
}

func (p *Processor) reject(reason string) {
	if p.Metrics != nil {
		p.Metrics.Rejections.WithLabelValues(reason).Inc()
	}
}

func (p *Processor) record(o store.Order) {
	if p.Log != nil {
		p.Log.Info("order placed",
			zap.Int("order_id", o.ID),
			zap.Int("user_id", o.UserID),
			zap.Int("items", len(o.Items)),
			zap.String("total", o.Total.StringFixed(2)),
		)
	}
	if p.Metrics == nil {
		return
	}
	p.Metrics.Placed.Inc()
	for _, it := range o.Items {
		p.Metrics.UnitsSold.WithLabelValues(strconv.Itoa(it.ProductID)).Add(float64(it.Quantity))
	}
}
