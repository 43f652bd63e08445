package order

import "github.com/prometheus/client_golang/prometheus"

const (
	reasonInvalid      = "invalid"
	reasonUser         = "user_not_found"
	reasonProduct      = "product_not_found"
	reasonInsufficient = "insufficient_stock"
	reasonStorage      = "storage"
)

type Metrics struct {
	Placed     prometheus.Counter
	Rejections *prometheus.CounterVec
	UnitsSold  *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Placed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "orders_placed_total",
			Help: "Orders persisted",
		}),
		Rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "order_rejections_total",
			Help: "Orders refused, by reason",
		}, []string{"reason"}),
		UnitsSold: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "order_units_sold_total",
			Help: "Units removed from stock by placed orders",
		}, []string{"product_id"}),
	}
	reg.MustRegister(m.Placed, m.Rejections, m.UnitsSold)
	return m
}
