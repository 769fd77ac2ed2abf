package generate

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "onboarding-videos/generate"

// Metrics counts generation activity. A nil *Metrics records nothing.
type Metrics struct {
	submitted metric.Int64Counter
	polls     metric.Int64Counter
	saved     metric.Int64Counter
	skipped   metric.Int64Counter
	failed    metric.Int64Counter
}

// NewMetrics registers the counters on the global meter provider, which is a
// no-op until an SDK is installed.
func NewMetrics() (*Metrics, error) {
	return NewMetricsWithMeter(otel.Meter(meterName))
}

func NewMetricsWithMeter(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error
	if m.submitted, err = meter.Int64Counter("video.generate.submitted"); err != nil {
		return nil, err
	}
	if m.polls, err = meter.Int64Counter("video.generate.polls"); err != nil {
		return nil, err
	}
	if m.saved, err = meter.Int64Counter("video.generate.saved"); err != nil {
		return nil, err
	}
	if m.skipped, err = meter.Int64Counter("video.generate.skipped"); err != nil {
		return nil, err
	}
	if m.failed, err = meter.Int64Counter("video.generate.failed"); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metrics) add(ctx context.Context, c metric.Int64Counter, stepID int, extra ...attribute.KeyValue) {
	if m == nil || c == nil {
		return
	}
	attrs := append([]attribute.KeyValue{attribute.Int("step", stepID)}, extra...)
	c.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func (m *Metrics) recordSubmit(ctx context.Context, stepID int) {
	if m != nil {
		m.add(ctx, m.submitted, stepID)
	}
}

func (m *Metrics) recordPoll(ctx context.Context, stepID int) {
	if m != nil {
		m.add(ctx, m.polls, stepID)
	}
}

func (m *Metrics) recordSaved(ctx context.Context, stepID int) {
	if m != nil {
		m.add(ctx, m.saved, stepID)
	}
}

func (m *Metrics) recordSkip(ctx context.Context, stepID int) {
	if m != nil {
		m.add(ctx, m.skipped, stepID)
	}
}

func (m *Metrics) recordFailure(ctx context.Context, stepID int, kind Kind) {
	if m != nil {
		m.add(ctx, m.failed, stepID, attribute.String("kind", string(kind)))
	}
}
