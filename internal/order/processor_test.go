package order

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CandyShop/internal/store"
	"CandyShop/pkg/kit"
)

var fixedNow = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

func fixture() *store.Document {
	return &store.Document{
		Users: []store.User{{ID: 1, Name: "Ana", Email: "ana@example.com"}},
		Products: []store.Product{
			{ID: 1, Name: "Belgian Chocolate Cupcake", Price: decimal.RequireFromString("8.99"), Stock: 50},
			{ID: 2, Name: "Red Velvet Cupcake", Price: decimal.RequireFromString("9.99"), Stock: 30},
		},
	}
}

func newProcessor(t *testing.T, d *store.Document) (*Processor, *store.MemStore) {
	t.Helper()

	ms := store.NewMemStoreWith(d)
	return &Processor{
		Unit:    store.NewUnit(ms, nil, nil),
		Metrics: NewMetrics(prometheus.NewRegistry()),
		Now:     func() time.Time { return fixedNow },
	}, ms
}

func stock(t *testing.T, ms *store.MemStore) map[int]int {
	t.Helper()

	d, err := ms.Load(context.Background())
	require.NoError(t, err)
	out := make(map[int]int, len(d.Products))
	for _, p := range d.Products {
		out[p.ID] = p.Stock
	}
	return out
}

func dec(s string) *decimal.Decimal {
	v := decimal.RequireFromString(s)
	return &v
}

func TestPlaceOrder_Success(t *testing.T) {
	p, ms := newProcessor(t, fixture())

	o, err := p.PlaceOrder(context.Background(), PlaceRequest{
		UserID: 1,
		Items:  []store.LineItem{{ProductID: 1, Quantity: 3}},
		Total:  dec("26.97"),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, o.ID)
	assert.Equal(t, store.StatusPending, o.Status)
	assert.Equal(t, fixedNow, o.CreatedAt)
	assert.Equal(t, "26.97", o.Total.StringFixed(2))
	assert.Equal(t, map[int]int{1: 47, 2: 30}, stock(t, ms))

	d, _ := ms.Load(context.Background())
	require.Len(t, d.Orders, 1)
	assert.Equal(t, o.ID, d.Orders[0].ID)
	assert.Equal(t, 1.0, testutil.ToFloat64(p.Metrics.Placed))
}

func TestPlaceOrder_TotalPricedWhenOmitted(t *testing.T) {
	p, _ := newProcessor(t, fixture())

	o, err := p.PlaceOrder(context.Background(), PlaceRequest{
		UserID: 1,
		Items: []store.LineItem{
			{ProductID: 1, Quantity: 2},
			{ProductID: 2, Quantity: 1},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "27.97", o.Total.StringFixed(2))
}

func TestPlaceOrder_InsufficientStockChangesNothing(t *testing.T) {
	p, ms := newProcessor(t, fixture())

	_, err := p.PlaceOrder(context.Background(), PlaceRequest{
		UserID: 1,
		Items: []store.LineItem{
			{ProductID: 2, Quantity: 5},
			{ProductID: 1, Quantity: 100},
		},
	})
	require.Error(t, err)

	var short *InsufficientStockError
	require.ErrorAs(t, err, &short)
	assert.Equal(t, 1, short.ProductID)
	assert.Equal(t, 50, short.Available)
	assert.Equal(t, kit.KindValidation, kit.KindOf(err))

	assert.Equal(t, map[int]int{1: 50, 2: 30}, stock(t, ms))
	assert.Zero(t, ms.Saves())
	assert.Equal(t, 1.0, testutil.ToFloat64(p.Metrics.Rejections.WithLabelValues(reasonInsufficient)))
}

func TestPlaceOrder_DuplicateLinesCannotOverdraw(t *testing.T) {
	p, ms := newProcessor(t, fixture())

	_, err := p.PlaceOrder(context.Background(), PlaceRequest{
		UserID: 1,
		Items: []store.LineItem{
			{ProductID: 2, Quantity: 20},
			{ProductID: 2, Quantity: 20},
		},
	})
	var short *InsufficientStockError
	require.ErrorAs(t, err, &short)
	assert.Equal(t, 40, short.Requested)
	assert.Equal(t, 30, stock(t, ms)[2])
}

func TestPlaceOrder_Failures(t *testing.T) {
	tests := []struct {
		name     string
		req      PlaceRequest
		wantKind kit.Kind
		check    func(t *testing.T, err error)
	}{
		{
			name:     "missing user",
			req:      PlaceRequest{Items: []store.LineItem{{ProductID: 1, Quantity: 1}}},
			wantKind: kit.KindValidation,
			check:    func(t *testing.T, err error) { assert.ErrorIs(t, err, ErrInvalidOrder) },
		},
		{
			name:     "no items",
			req:      PlaceRequest{UserID: 1},
			wantKind: kit.KindValidation,
			check:    func(t *testing.T, err error) { assert.ErrorIs(t, err, ErrInvalidOrder) },
		},
		{
			name:     "zero quantity",
			req:      PlaceRequest{UserID: 1, Items: []store.LineItem{{ProductID: 1, Quantity: 0}}},
			wantKind: kit.KindValidation,
			check:    func(t *testing.T, err error) { assert.ErrorIs(t, err, ErrInvalidOrder) },
		},
		{
			name:     "negative total",
			req:      PlaceRequest{UserID: 1, Items: []store.LineItem{{ProductID: 1, Quantity: 1}}, Total: dec("-1")},
			wantKind: kit.KindValidation,
			check:    func(t *testing.T, err error) { assert.ErrorIs(t, err, ErrInvalidOrder) },
		},
		{
			name:     "unknown user",
			req:      PlaceRequest{UserID: 42, Items: []store.LineItem{{ProductID: 1, Quantity: 1}}},
			wantKind: kit.KindNotFound,
			check:    func(t *testing.T, err error) { assert.ErrorIs(t, err, ErrUserNotFound) },
		},
		{
			name: "unknown product",
			req: PlaceRequest{UserID: 1, Items: []store.LineItem{
				{ProductID: 1, Quantity: 1},
				{ProductID: 9, Quantity: 1},
			}},
			wantKind: kit.KindNotFound,
			check: func(t *testing.T, err error) {
				var nf *ProductNotFoundError
				require.ErrorAs(t, err, &nf)
				assert.Equal(t, 9, nf.ProductID)
			},
		},
		{
			name: "unknown product wins over later shortage",
			req: PlaceRequest{UserID: 1, Items: []store.LineItem{
				{ProductID: 9, Quantity: 1},
				{ProductID: 1, Quantity: 500},
			}},
			wantKind: kit.KindNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ms := newProcessor(t, fixture())

			_, err := p.PlaceOrder(context.Background(), tt.req)
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, kit.KindOf(err))
			if tt.check != nil {
				tt.check(t, err)
			}

			assert.Zero(t, ms.Saves(), "failed orders must not write")
			assert.Equal(t, map[int]int{1: 50, 2: 30}, stock(t, ms))
		})
	}
}

func TestPlaceOrder_StorageFailureSurfaces(t *testing.T) {
	p, ms := newProcessor(t, fixture())
	ms.FailSave = kit.Storage("write document", errors.New("disk full"))

	_, err := p.PlaceOrder(context.Background(), PlaceRequest{
		UserID: 1,
		Items:  []store.LineItem{{ProductID: 1, Quantity: 1}},
	})
	assert.Equal(t, kit.KindStorage, kit.KindOf(err))
	assert.Equal(t, 50, stock(t, ms)[1])
}

func TestPlaceOrder_StockConservation(t *testing.T) {
	p, ms := newProcessor(t, fixture())
	ctx := context.Background()

	ordered := map[int]int{}
	for i, it := range []store.LineItem{
		{ProductID: 1, Quantity: 3},
		{ProductID: 2, Quantity: 10},
		{ProductID: 1, Quantity: 47},
		{ProductID: 2, Quantity: 25},
		{ProductID: 2, Quantity: 20},
	} {
		_, err := p.PlaceOrder(ctx, PlaceRequest{UserID: 1, Items: []store.LineItem{it}})
		if err == nil {
			ordered[it.ProductID] += it.Quantity
			continue
		}
		t.Logf("order %d rejected: %v", i, err)
	}

	got := stock(t, ms)
	assert.Equal(t, 50-ordered[1], got[1])
	assert.Equal(t, 30-ordered[2], got[2])
	assert.Equal(t, 0, got[1])
	assert.Equal(t, 0, got[2])
}

func TestPlaceOrder_ConcurrentNeverOversells(t *testing.T) {
	p, ms := newProcessor(t, fixture())

	const buyers = 40
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
	)
	for range buyers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := p.PlaceOrder(context.Background(), PlaceRequest{
				UserID: 1,
				Items:  []store.LineItem{{ProductID: 2, Quantity: 1}},
			})
			if err == nil {
				mu.Lock()
				success++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 30, success)
	assert.Equal(t, 0, stock(t, ms)[2])

	d, _ := ms.Load(context.Background())
	assert.Len(t, d.Orders, 30)
	seen := map[int]bool{}
	for _, o := range d.Orders {
		assert.False(t, seen[o.ID], "duplicate order id %d", o.ID)
		seen[o.ID] = true
	}
}
