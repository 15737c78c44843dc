package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Deallocations       *prometheus.CounterVec
	Allocations         *prometheus.CounterVec
	DomainEvents        *prometheus.CounterVec
	StatisticsOutcome   *prometheus.CounterVec
	StatisticsDuration  prometheus.Histogram
	GatewayRequests     *prometheus.CounterVec
	GatewayLatency      *prometheus.HistogramVec
	StatsEventsProduced prometheus.Counter
}

// New registers metrics on the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers metrics on reg. Tests pass a fresh registry so
// repeated construction does not collide.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Deallocations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "keyworker_deallocations_total",
			Help: "Allocations closed, by policy and deallocation reason",
		}, []string{"policy", "reason"}),
		Allocations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "keyworker_allocations_total",
			Help: "Allocations opened, by policy and allocation reason",
		}, []string{"policy", "reason"}),
		DomainEvents: f.NewCounterVec(prometheus.CounterOpts{
			Name: "keyworker_domain_events_total",
			Help: "Domain events received, by event type and outcome",
		}, []string{"event_type", "outcome"}), // outcome: "processed", "failed", "unrecognised", "malformed"
		StatisticsOutcome: f.NewCounterVec(prometheus.CounterOpts{
			Name: "keyworker_prison_statistics_total",
			Help: "Prison statistic calculations, by policy and outcome",
		}, []string{"policy", "outcome"}),
		StatisticsDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "keyworker_prison_statistics_duration_seconds",
			Help:    "Duration of one prison statistic calculation",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		GatewayRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "keyworker_gateway_requests_total",
			Help: "Outbound gateway requests, by gateway and result",
		}, []string{"gateway", "result"}),
		GatewayLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "keyworker_gateway_request_duration_seconds",
			Help:    "Outbound gateway request latency",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"gateway"}),
		StatsEventsProduced: f.NewCounter(prometheus.CounterOpts{
			Name: "keyworker_calculate_stats_events_produced_total",
			Help: "CalculatePrisonStats events published",
		}),
	}
}

func (m *Metrics) IncrementDeallocation(policy, reason string) {
	if m != nil {
		m.Deallocations.WithLabelValues(policy, reason).Inc()
	}
}

func (m *Metrics) IncrementAllocation(policy, reason string) {
	if m != nil {
		m.Allocations.WithLabelValues(policy, reason).Inc()
	}
}

func (m *Metrics) IncrementDomainEvent(eventType, outcome string) {
	if m != nil {
		m.DomainEvents.WithLabelValues(eventType, outcome).Inc()
	}
}

func (m *Metrics) IncrementStatistics(policy, outcome string) {
	if m != nil {
		m.StatisticsOutcome.WithLabelValues(policy, outcome).Inc()
	}
}

func (m *Metrics) ObserveStatisticsDuration(d time.Duration) {
	if m != nil {
		m.StatisticsDuration.Observe(d.Seconds())
	}
}

func (m *Metrics) IncrementGatewayRequest(gateway, result string) {
	if m != nil {
		m.GatewayRequests.WithLabelValues(gateway, result).Inc()
	}
}

func (m *Metrics) ObserveGatewayLatency(gateway string, d time.Duration) {
	if m != nil {
		m.GatewayLatency.WithLabelValues(gateway).Observe(d.Seconds())
	}
}

func (m *Metrics) AddStatsEventsProduced(n int) {
	if m != nil {
		m.StatsEventsProduced.Add(float64(n))
	}
}
