package service

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts rental lifecycle outcomes.  A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	created  prometheus.Counter
	returned prometheus.Counter
	rejected *prometheus.CounterVec
	fees     prometheus.Counter
}

// NewMetrics builds the rental collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		created: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "video_rental",
			Subsystem: "rentals",
			Name:      "created_total",
			Help:      "Rentals checked out.",
		}),
		returned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "video_rental",
			Subsystem: "rentals",
			Name:      "returned_total",
			Help:      "Rentals returned.",
		}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "video_rental",
			Subsystem: "rentals",
			Name:      "rejected_total",
			Help:      "Rental operations that failed, by operation and reason.",
		}, []string{"operation", "reason"}),
		fees: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "video_rental",
			Subsystem: "rentals",
			Name:      "fees_total",
			Help:      "Sum of rental fees charged on return.",
		}),
	}
	reg.MustRegister(m.created, m.returned, m.rejected, m.fees)
	return m
}

func (m *Metrics) rentalCreated() {
	if m != nil {
		m.created.Inc()
	}
}

func (m *Metrics) rentalReturned(fee float64) {
	if m == nil {
		return
	}
	m.returned.Inc()
	if fee > 0 {
		m.fees.Add(fee)
	}
}

func (m *Metrics) rejectedOp(op string, err error) {
	if m == nil || err == nil {
		return
	}
	reason := KindInternal.String()
	if se, ok := err.(*Error); ok {
		reason = se.Kind.String()
	}
	m.rejected.WithLabelValues(op, reason).Inc()
}
