package metrics

import "github.com/prometheus/client_golang/prometheus"

// FunnelMetrics exposes counters/histograms for the booking funnel.
type FunnelMetrics struct {
	relayTotal     *prometheus.CounterVec
	relayLatency   *prometheus.HistogramVec
	calendarTotal  *prometheus.CounterVec
	blockedDates   prometheus.Gauge
	dialogueTurns  *prometheus.CounterVec
	bookingRejects *prometheus.CounterVec
}

func NewFunnelMetrics(reg prometheus.Registerer) *FunnelMetrics {
	m := &FunnelMetrics{
		relayTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "locus",
			Subsystem: "relay",
			Name:      "submissions_total",
			Help:      "Form relay submissions by channel and outcome",
		}, []string{"channel", "outcome"}),
		relayLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "locus",
			Subsystem: "relay",
			Name:      "latency_seconds",
			Help:      "Latency of form relay submissions",
			Buckets:   prometheus.DefBuckets,
		}, []string{"channel"}),
		calendarTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "locus",
			Subsystem: "calendar",
			Name:      "fetch_total",
			Help:      "Calendar availability fetches by outcome",
		}, []string{"outcome"}),
		blockedDates: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "locus",
			Subsystem: "calendar",
			Name:      "blocked_dates",
			Help:      "Number of blocked dates returned by the last successful fetch",
		}),
		dialogueTurns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "locus",
			Subsystem: "dialogue",
			Name:      "turns_total",
			Help:      "Chat widget turns by state entered",
		}, []string{"from", "to"}),
		bookingRejects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "locus",
			Subsystem: "booking",
			Name:      "validation_failures_total",
			Help:      "Booking forms rejected before submission",
		}, []string{"field"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.relayTotal, m.relayLatency, m.calendarTotal, m.blockedDates, m.dialogueTurns, m.bookingRejects)
	return m
}

func (m *FunnelMetrics) ObserveRelay(channel, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.relayTotal.WithLabelValues(channel, outcome).Inc()
	m.relayLatency.WithLabelValues(channel).Observe(seconds)
}

func (m *FunnelMetrics) ObserveCalendarFetch(outcome string, blocked int) {
	if m == nil {
		return
	}
	m.calendarTotal.WithLabelValues(outcome).Inc()
	if outcome == "ok" {
		m.blockedDates.Set(float64(blocked))
	}
}

func (m *FunnelMetrics) ObserveTurn(from, to string) {
	if m == nil {
		return
	}
	m.dialogueTurns.WithLabelValues(from, to).Inc()
}

func (m *FunnelMetrics) ObserveBookingRejected(field string) {
	if m == nil {
		return
	}
	m.bookingRejects.WithLabelValues(field).Inc()
}
