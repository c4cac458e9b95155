package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	labelResult = "result"

	// Purchase outcome labels.
	ResultSuccess           = "success"
	ResultNotInRotation     = "not_in_rotation"
	ResultInsufficientFunds = "insufficient_funds"
)

// Metrics bundles the shop's prometheus collectors, exposed on /metrics.
type Metrics struct {
	RotationServes prometheus.Counter
	Purchases      *prometheus.CounterVec
	NEXSpent       prometheus.Counter
}

func NewMetrics(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		RotationServes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shop_rotation_serves_total",
			Help: "Shop catalog responses served",
		}),
		Purchases: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shop_purchases_total",
				Help: "Purchase attempts by outcome",
			},
			[]string{labelResult},
		),
		NEXSpent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shop_nex_spent_total",
			Help: "Total NEX debited by successful purchases",
		}),
	}

	reg.MustRegister(m.RotationServes, m.Purchases, m.NEXSpent)
	return m
}
