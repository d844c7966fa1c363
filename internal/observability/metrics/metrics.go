package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters/histograms for the booking dialog and the
// calendar calls it makes.
type BookingMetrics struct {
	turnsTotal         *prometheus.CounterVec
	turnLatency        *prometheus.HistogramVec
	commitsTotal       *prometheus.CounterVec
	calendarTotal      *prometheus.CounterVec
	calendarLatency    *prometheus.HistogramVec
	notificationsTotal *prometheus.CounterVec
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		turnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "salon",
			Subsystem: "booking",
			Name:      "turns_total",
			Help:      "Dialog turns processed, by phase before the turn and outcome",
		}, []string{"phase", "outcome"}),
		turnLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "salon",
			Subsystem: "booking",
			Name:      "turn_latency_seconds",
			Help:      "Latency of a full dialog turn including backend calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"phase"}),
		commitsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "salon",
			Subsystem: "booking",
			Name:      "commits_total",
			Help:      "Confirmation outcomes: booked, race_lost, cancelled, error",
		}, []string{"result"}),
		calendarTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "salon",
			Subsystem: "calendar",
			Name:      "requests_total",
			Help:      "Calendar backend requests by operation and status",
		}, []string{"operation", "status"}),
		calendarLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "salon",
			Subsystem: "calendar",
			Name:      "request_latency_seconds",
			Help:      "Latency of calendar backend requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		notificationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "salon",
			Subsystem: "notify",
			Name:      "emails_total",
			Help:      "Staff notification e-mails by provider and status",
		}, []string{"provider", "status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.turnsTotal, m.turnLatency, m.commitsTotal, m.calendarTotal, m.calendarLatency, m.notificationsTotal)
	return m
}

func (m *BookingMetrics) ObserveTurn(phase, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues(phase, outcome).Inc()
	m.turnLatency.WithLabelValues(phase).Observe(seconds)
}

func (m *BookingMetrics) ObserveCommit(result string) {
	if m == nil {
		return
	}
	m.commitsTotal.WithLabelValues(result).Inc()
}

func (m *BookingMetrics) ObserveCalendarRequest(operation string, err error, seconds float64) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.calendarTotal.WithLabelValues(operation, status).Inc()
	m.calendarLatency.WithLabelValues(operation).Observe(seconds)
}

func (m *BookingMetrics) ObserveNotification(provider string, err error) {
	if m == nil {
		return
	}
	status := "sent"
	if err != nil {
		status = "failed"
	}
	m.notificationsTotal.WithLabelValues(provider, status).Inc()
}
