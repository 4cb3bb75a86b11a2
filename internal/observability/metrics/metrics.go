package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters/histograms for the reservation flow.
type BookingMetrics struct {
	bookingsTotal      *prometheus.CounterVec
	slotConflictsTotal prometheus.Counter
	cancellationsTotal *prometheus.CounterVec
	paymentsTotal      *prometheus.CounterVec
	bookingLatency     prometheus.Histogram
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinicore",
			Subsystem: "booking",
			Name:      "bookings_total",
			Help:      "Total booking attempts by outcome",
		}, []string{"outcome"}),
		slotConflictsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "clinicore",
			Subsystem: "booking",
			Name:      "slot_conflicts_total",
			Help:      "Occupy conflicts surfacing past the availability check",
		}),
		cancellationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinicore",
			Subsystem: "booking",
			Name:      "cancellations_total",
			Help:      "Total cancellations by actor role",
		}, []string{"role"}),
		paymentsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinicore",
			Subsystem: "payments",
			Name:      "confirmations_total",
			Help:      "Payment confirmation attempts by result",
		}, []string{"result"}),
		bookingLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "clinicore",
			Subsystem: "booking",
			Name:      "book_latency_seconds",
			Help:      "Latency of the book operation",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.bookingsTotal, m.slotConflictsTotal, m.cancellationsTotal, m.paymentsTotal, m.bookingLatency)
	return m
}

func (m *BookingMetrics) ObserveBooking(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(outcome).Inc()
	m.bookingLatency.Observe(seconds)
}

func (m *BookingMetrics) ObserveSlotConflict() {
	if m == nil {
		return
	}
	m.slotConflictsTotal.Inc()
}

func (m *BookingMetrics) ObserveCancellation(role string) {
	if m == nil {
		return
	}
	m.cancellationsTotal.WithLabelValues(role).Inc()
}

func (m *BookingMetrics) ObservePaymentConfirmation(result string) {
	if m == nil {
		return
	}
	m.paymentsTotal.WithLabelValues(result).Inc()
}
