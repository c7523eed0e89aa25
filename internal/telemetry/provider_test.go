package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewResource(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.ServiceVersion = "1.0.0"

	res := newResource(cfg)

	attrs := map[string]string{}
	for _, attr := range res.Attributes() {
		attrs[string(attr.Key)] = attr.Value.AsString()
	}
	assert.Equal(t, "reqlog", attrs["service.name"])
	assert.Equal(t, "1.0.0", attrs["service.version"])
}

func TestStripScheme(t *testing.T) {
	assert.Equal(t, "otel:4318", stripScheme("https://otel:4318"))
	assert.Equal(t, "otel:4318", stripScheme("http://otel:4318"))
	assert.Equal(t, "otel:4317", stripScheme("otel:4317"))
}

func TestNewExporters(t *testing.T) {
	// OTLP exporters connect lazily, so construction succeeds without a
	// collector.
	for _, protocol := range []string{ProtocolGRPC, ProtocolHTTP} {
		t.Run(protocol, func(t *testing.T) {
			cfg := NewDefaultConfig()
			cfg.Protocol = protocol
			ctx := context.Background()

			spans, err := newSpanExporter(ctx, cfg)
			require.NoError(t, err)
			assert.NoError(t, spans.Shutdown(ctx))

			metrics, err := newMetricExporter(ctx, cfg)
			require.NoError(t, err)
			assert.NoError(t, metrics.Shutdown(ctx))
		})
	}
}

func TestNewExporters_SkipVerify(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Endpoint = "otel.example.com:4317"
	cfg.Insecure = false
	cfg.TLSSkipVerify = true
	ctx := context.Background()

	spans, err := newSpanExporter(ctx, cfg)
	require.NoError(t, err)
	assert.NoError(t, spans.Shutdown(ctx))
}
