package reqlog

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

const instrumentationName = "github.com/fyrsmithlabs/reqlog/pkg/reqlog"

// Rejection reasons recorded on reqlog.messages.rejected.
const (
	reasonEmptyString = "empty_string"
	reasonEmptyObject = "empty_object"
	reasonUnsupported = "unsupported_type"
)

type emitterMetrics struct {
	emitted    metric.Int64Counter
	rejected   metric.Int64Counter
	suppressed metric.Int64Counter
	oversized  metric.Int64Counter
	sinkErrors metric.Int64Counter
	size       metric.Int64Histogram
}

func newEmitterMetrics(provider metric.MeterProvider, logger *zap.Logger) *emitterMetrics {
	if provider == nil {
		provider = otel.GetMeterProvider()
	}
	meter := provider.Meter(instrumentationName)
	m := &emitterMetrics{}

	var err error
	m.emitted, err = meter.Int64Counter(
		"reqlog.messages.emitted",
		metric.WithDescription("Payloads handed to the sink, including oversize summaries."),
		metric.WithUnit("{message}"),
	)
	if err != nil {
		logger.Warn("failed to create emitted counter", zap.Error(err))
	}

	m.rejected, err = meter.Int64Counter(
		"reqlog.messages.rejected",
		metric.WithDescription("Messages dropped before serialization, labeled by reason."),
		metric.WithUnit("{message}"),
	)
	if err != nil {
		logger.Warn("failed to create rejected counter", zap.Error(err))
	}

	m.suppressed, err = meter.Int64Counter(
		"reqlog.messages.suppressed",
		metric.WithDescription("DEBUG messages dropped while debug logging is disabled."),
		metric.WithUnit("{message}"),
	)
	if err != nil {
		logger.Warn("failed to create suppressed counter", zap.Error(err))
	}

	m.oversized, err = meter.Int64Counter(
		"reqlog.messages.oversized",
		metric.WithDescription("Payloads replaced by a summary because they reached the size limit."),
		metric.WithUnit("{message}"),
	)
	if err != nil {
		logger.Warn("failed to create oversized counter", zap.Error(err))
	}

	m.sinkErrors, err = meter.Int64Counter(
		"reqlog.sink.errors",
		metric.WithDescription("Sink writes that failed or panicked."),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		logger.Warn("failed to create sink error counter", zap.Error(err))
	}

	m.size, err = meter.Int64Histogram(
		"reqlog.payload.size",
		metric.WithDescription("Serialized payload size in UTF-16 code units, measured before the size limit applies."),
		metric.WithUnit("{unit}"),
		metric.WithExplicitBucketBoundaries(256, 1024, 4096, 16384, 65536, 131072, 524288),
	)
	if err != nil {
		logger.Warn("failed to create payload size histogram", zap.Error(err))
	}

	return m
}

func (m *emitterMetrics) recordEmitted(ctx context.Context, units int) {
	if m.emitted != nil {
		m.emitted.Add(ctx, 1)
	}
	if m.size != nil {
		m.size.Record(ctx, int64(units))
	}
}

func (m *emitterMetrics) recordRejected(ctx context.Context, reason string) {
	if m.rejected != nil {
		m.rejected.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
	}
}

func (m *emitterMetrics) recordSuppressed(ctx context.Context) {
	if m.suppressed != nil {
		m.suppressed.Add(ctx, 1)
	}
}

func (m *emitterMetrics) recordOversized(ctx context.Context) {
	if m.oversized != nil {
		m.oversized.Add(ctx, 1)
	}
}

func (m *emitterMetrics) recordSinkError(ctx context.Context) {
	if m.sinkErrors != nil {
		m.sinkErrors.Add(ctx, 1)
	}
}
