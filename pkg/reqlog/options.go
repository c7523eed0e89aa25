package reqlog

import (
	"runtime"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/fyrsmithlabs/reqlog/pkg/invocation"
	"github.com/fyrsmithlabs/reqlog/pkg/redact"
	"github.com/fyrsmithlabs/reqlog/pkg/sink"
)

// Diagnostics reporting defaults.
const (
	DefaultDiagnosticsRate  = rate.Limit(10)
	DefaultDiagnosticsBurst = 50
)

type options struct {
	sink           sink.Sink
	diagnostics    *zap.Logger
	clock          invocation.Clock
	ids            invocation.IDSource
	runtimeKey     string
	runtimeValue   any
	debug          bool
	maxUnits       int
	truncatedUnits int
	meterProvider  metric.MeterProvider
	diagRate       rate.Limit
	diagBurst      int
	redactor       *redact.Redactor
}

func defaultOptions() options {
	return options{
		runtimeKey:     DefaultRuntimeKey,
		runtimeValue:   runtime.Version(),
		debug:          true,
		maxUnits:       MaxPayloadUnits,
		truncatedUnits: TruncatedPayloadUnits,
		diagRate:       DefaultDiagnosticsRate,
		diagBurst:      DefaultDiagnosticsBurst,
	}
}

// Option configures a Logger.
type Option func(*options)

// WithSink sets the payload sink. The default writes to stdout.
func WithSink(s sink.Sink) Option {
	return func(o *options) {
		o.sink = s
	}
}

// WithDiagnostics sets the logger rejections and sink failures are
// reported on. The default is a JSON logger on stderr at warn level.
func WithDiagnostics(logger *zap.Logger) Option {
	return func(o *options) {
		o.diagnostics = logger
	}
}

// WithDiagnosticsRate limits how many diagnostics are reported per second.
// Dropped reports are still counted.
func WithDiagnosticsRate(limit rate.Limit, burst int) Option {
	return func(o *options) {
		o.diagRate = limit
		o.diagBurst = burst
	}
}

// WithClock sets the clock used for invocation timing.
func WithClock(c invocation.Clock) Option {
	return func(o *options) {
		o.clock = c
	}
}

// WithIDSource sets the invocation identifier generator.
func WithIDSource(ids invocation.IDSource) Option {
	return func(o *options) {
		o.ids = ids
	}
}

// WithRuntime sets the runtime member written first in metadata.
func WithRuntime(key string, value any) Option {
	return func(o *options) {
		if key != "" {
			o.runtimeKey = key
		}
		o.runtimeValue = value
	}
}

// WithDebug sets whether DEBUG messages are emitted. Enabled by default.
func WithDebug(enabled bool) Option {
	return func(o *options) {
		o.debug = enabled
	}
}

// WithLimits overrides the payload size limit and the summary prefix size.
// Non-positive values keep the defaults.
func WithLimits(maxUnits, truncatedUnits int) Option {
	return func(o *options) {
		if maxUnits > 0 {
			o.maxUnits = maxUnits
		}
		if truncatedUnits > 0 {
			o.truncatedUnits = truncatedUnits
		}
	}
}

// WithMeterProvider sets the provider emission metrics are created from.
// The default is the global provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) {
		o.meterProvider = mp
	}
}

// WithRedactor replaces the default rule set, for example to add content
// scanning rules after redact.DefaultRules.
func WithRedactor(r *redact.Redactor) Option {
	return func(o *options) {
		o.redactor = r
	}
}
