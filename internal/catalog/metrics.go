package catalog

import "github.com/prometheus/client_golang/prometheus"

const (
	resultOK       = "ok"
	resultNotFound = "not_found"
	resultError    = "error"
)

type Metrics struct {
	Operations *prometheus.CounterVec
	Products   prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalog_operations_total",
				Help: "Catalog mediator operations by result",
			},
			[]string{"op", "result"},
		),
		Products: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "catalog_products",
			Help: "Products in the persisted collection at last read",
		}),
	}

	reg.MustRegister(m.Operations, m.Products)
	return m
}

func (m *Metrics) observe(op string, err error) {
	if m == nil {
		return
	}
	result := resultOK
	switch {
	case err == nil:
	case isNotFound(err):
		result = resultNotFound
	default:
		result = resultError
	}
	m.Operations.WithLabelValues(op, result).Inc()
}

func (m *Metrics) setCount(n int) {
	if m == nil {
		return
	}
	m.Products.Set(float64(n))
}
