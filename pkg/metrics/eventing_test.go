package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestEventingMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewEventingMetrics(reg)
	eventType := "book_status_changed"

	metrics.ObservePublishDuration(eventType, 250*time.Millisecond)
	metrics.IncPublished(eventType)
	metrics.IncFailed(eventType)
	metrics.IncConsumed("notifications-worker", eventType)
	metrics.IncSkipped("notifications-worker", "duplicate")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "outbox_events_published", "event_type", eventType); err != nil {
		t.Fatalf("fetch published: %v", err)
	} else if got != 1 {
		t.Fatalf("expected published=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "outbox_events_failed", "event_type", eventType); err != nil {
		t.Fatalf("fetch failed: %v", err)
	} else if got != 1 {
		t.Fatalf("expected failed=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "domain_events_consumed", "consumer", "notifications-worker"); err != nil {
		t.Fatalf("fetch consumed: %v", err)
	} else if got != 1 {
		t.Fatalf("expected consumed=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "domain_events_skipped", "reason", "duplicate"); err != nil {
		t.Fatalf("fetch skipped: %v", err)
	} else if got != 1 {
		t.Fatalf("expected skipped=1, got %f", got)
	}

	if got, err := fetchHistogramSum(mfs, "outbox_publish_duration_seconds", "event_type", eventType); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}
}

func TestEventingMetricsNilReceiverIsSafe(t *testing.T) {
	var metrics *EventingMetrics
	metrics.IncPublished("whatever")
	metrics.ObservePublishDuration("whatever", time.Second)

	empty := NewEventingMetrics(nil)
	empty.IncConsumed("c", "e")
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}
