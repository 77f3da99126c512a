package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// EventingMetrics records outbox publisher and consumer outcomes.
type EventingMetrics struct {
	publishDuration *prometheus.HistogramVec
	published       *prometheus.CounterVec
	failed          *prometheus.CounterVec
	consumed        *prometheus.CounterVec
	skipped         *prometheus.CounterVec
}

// NewEventingMetrics registers the eventing metrics on the provided registerer.
func NewEventingMetrics(reg prometheus.Registerer) *EventingMetrics {
	if reg == nil {
		return &EventingMetrics{}
	}
	publishDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "outbox_publish_duration_seconds",
		Help:    "Duration of outbox publish attempts in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"event_type"})
	published := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_events_published",
		Help: "Outbox events published to Pub/Sub.",
	}, []string{"event_type"})
	failed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_events_failed",
		Help: "Outbox publish attempts that failed.",
	}, []string{"event_type"})
	consumed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "domain_events_consumed",
		Help: "Domain events processed by consumers.",
	}, []string{"consumer", "event_type"})
	skipped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "domain_events_skipped",
		Help: "Domain events skipped as duplicates or unhandled.",
	}, []string{"consumer", "reason"})
	reg.MustRegister(publishDuration, published, failed, consumed, skipped)
	return &EventingMetrics{
		publishDuration: publishDuration,
		published:       published,
		failed:          failed,
		consumed:        consumed,
		skipped:         skipped,
	}
}

// ObservePublishDuration records the duration for one publish attempt.
func (e *EventingMetrics) ObservePublishDuration(eventType string, duration time.Duration) {
	if e == nil || e.publishDuration == nil {
		return
	}
	e.publishDuration.WithLabelValues(normalizeLabel(eventType)).Observe(duration.Seconds())
}

// IncPublished increments the published counter for the event type.
func (e *EventingMetrics) IncPublished(eventType string) {
	if e == nil || e.published == nil {
		return
	}
	e.published.WithLabelValues(normalizeLabel(eventType)).Inc()
}

// IncFailed increments the failed counter for the event type.
func (e *EventingMetrics) IncFailed(eventType string) {
	if e == nil || e.failed == nil {
		return
	}
	e.failed.WithLabelValues(normalizeLabel(eventType)).Inc()
}

// IncConsumed increments the consumed counter for a consumer/event pair.
func (e *EventingMetrics) IncConsumed(consumer, eventType string) {
	if e == nil || e.consumed == nil {
		return
	}
	e.consumed.WithLabelValues(normalizeLabel(consumer), normalizeLabel(eventType)).Inc()
}

// IncSkipped increments the skipped counter for a consumer/reason pair.
func (e *EventingMetrics) IncSkipped(consumer, reason string) {
	if e == nil || e.skipped == nil {
		return
	}
	e.skipped.WithLabelValues(normalizeLabel(consumer), normalizeLabel(reason)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
