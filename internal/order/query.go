package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"CandyShop/internal/store"
)

const removedProductName = "removed product"

type ResolvedItem struct {
	ProductID int    `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Name      string `json:"name"`
	Image     string `json:"image"`
}

type View struct {
	ID        int             `json:"id"`
	UserID    int             `json:"user_id"`
	Items     []ResolvedItem  `json:"items"`
	Total     decimal.Decimal `json:"total"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
}

type Query struct {
	Unit *store.Unit
}

// OrdersForUser lists a user's orders with each item joined to the current
// catalog. Items whose product is gone get placeholder details.
func (q *Query) OrdersForUser(ctx context.Context, userID int) ([]View, error) {
	out := []View{}
	err := q.Unit.View(ctx, func(d *store.Document) error {
		for _, o := range d.Orders {
			if o.UserID != userID {
				continue
			}
			out = append(out, resolve(d, o))
		}
		return nil
	})
	return out, err
}

func resolve(d *store.Document, o store.Order) View {
	items := make([]ResolvedItem, 0, len(o.Items))
	for _, it := range o.Items {
		ri := ResolvedItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Name:      removedProductName,
		}
		if p, ok := d.ProductByID(it.ProductID); ok {
			ri.Name = p.Name
			ri.Image = p.Image
		}
		items = append(items, ri)
	}

	return View{
		ID:        o.ID,
		UserID:    o.UserID,
		Items:     items,
		Total:     o.Total,
		Status:    o.Status,
		CreatedAt: o.CreatedAt,
	}
}
