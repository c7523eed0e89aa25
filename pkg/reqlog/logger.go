package reqlog

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/time/rate"

	"github.com/fyrsmithlabs/reqlog/pkg/invocation"
	"github.com/fyrsmithlabs/reqlog/pkg/redact"
	"github.com/fyrsmithlabs/reqlog/pkg/sink"
)

// Logger emits redacted payloads to a sink. It is safe for concurrent use;
// the current invocation is shared, last writer wins.
type Logger struct {
	sink           sink.Sink
	redactor       *redact.Redactor
	diag           *zap.Logger
	limiter        *rate.Limiter
	invocations    *invocation.Manager
	runtimeKey     string
	runtimeValue   any
	maxUnits       int
	truncatedUnits int
	debug          atomic.Bool
	metrics        *emitterMetrics
}

// New returns a Logger.
func New(opts ...Option) *Logger {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.sink == nil {
		o.sink = sink.Stdout()
	}
	if o.diagnostics == nil {
		o.diagnostics = defaultDiagnostics()
	}
	if o.redactor == nil {
		o.redactor = redact.New()
	}

	l := &Logger{
		sink:           o.sink,
		redactor:       o.redactor,
		diag:           o.diagnostics,
		limiter:        rate.NewLimiter(o.diagRate, o.diagBurst),
		invocations:    invocation.NewManager(o.clock, o.ids),
		runtimeKey:     o.runtimeKey,
		runtimeValue:   o.runtimeValue,
		maxUnits:       o.maxUnits,
		truncatedUnits: o.truncatedUnits,
		metrics:        newEmitterMetrics(o.meterProvider, o.diagnostics),
	}
	l.debug.Store(o.debug)
	return l
}

func defaultDiagnostics() *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger.Named("reqlog")
}

// StartInvocation begins a new current invocation, replacing the previous
// one.
func (l *Logger) StartInvocation(metadata map[string]any) *invocation.Context {
	return l.invocations.Start(metadata)
}

// NewInvocation returns an invocation for use with LogWith or LogContext.
// The current invocation is left alone.
func (l *Logger) NewInvocation(metadata map[string]any) *invocation.Context {
	return l.invocations.New(metadata)
}

// TrackPoint records a checkpoint on the current invocation. It returns
// invocation.ErrNoInvocation when none was started.
func (l *Logger) TrackPoint(label string) error {
	return l.invocations.TrackPoint(label)
}

// Redactor returns the rule set payloads are serialized with.
func (l *Logger) Redactor() *redact.Redactor {
	return l.redactor
}

// Current returns the current invocation, or nil.
func (l *Logger) Current() *invocation.Context {
	return l.invocations.Current()
}

// SetDebug toggles emission of DEBUG messages.
func (l *Logger) SetDebug(enabled bool) {
	l.debug.Store(enabled)
}

// DebugEnabled reports whether DEBUG messages are emitted.
func (l *Logger) DebugEnabled() bool {
	return l.debug.Load()
}

// Log emits message against the current invocation.
func (l *Logger) Log(message any) {
	l.emit(context.Background(), l.Current(), message)
}

// LogWith emits message against inv. A nil inv logs a null invocationId and
// empty tracking.
func (l *Logger) LogWith(inv *invocation.Context, message any) {
	l.emit(context.Background(), inv, message)
}

// LogContext emits message against the invocation carried by ctx, falling
// back to the current invocation. ctx is passed to the sink.
func (l *Logger) LogContext(ctx context.Context, message any) {
	inv := invocation.FromContext(ctx)
	if inv == nil {
		inv = l.Current()
	}
	l.emit(ctx, inv, message)
}

// Validate reports the error Log would reject message with, or nil.
func Validate(message any) error {
	_, err := normalize(message)
	return err
}

func (l *Logger) emit(ctx context.Context, inv *invocation.Context, message any) {
	event, err := normalize(message)
	if err != nil {
		l.reject(ctx, err, message)
		return
	}

	level := levelOf(event)
	if s, ok := level.(string); ok && s == DebugLevel && !l.debug.Load() {
		l.metrics.recordSuppressed(ctx)
		return
	}

	event.Set(InvocationIDKey, inv.InvocationID())
	payload := buildPayload(event, inv.Metadata(l.runtimeKey, l.runtimeValue))

	text := l.redactor.SerializeTruncated(payload, serializeIndent)
	units := UTF16Len(text)
	if units >= l.maxUnits {
		l.metrics.recordOversized(ctx)
		text = l.redactor.Serialize(summarize(l.redactor, inv, event, payload, l.truncatedUnits), serializeIndent)
	}

	l.metrics.recordEmitted(ctx, units)
	l.write(ctx, text)
}

func (l *Logger) reject(ctx context.Context, err error, message any) {
	reason := reasonUnsupported
	switch {
	case errors.Is(err, ErrEmptyString):
		reason = reasonEmptyString
	case errors.Is(err, ErrEmptyObject):
		reason = reasonEmptyObject
	}
	l.metrics.recordRejected(ctx, reason)
	if l.limiter.Allow() {
		l.diag.Warn(err.Error(), zap.String("type", fmt.Sprintf("%T", message)))
	}
}

// write hands text to the sink once. Errors and panics stay here.
func (l *Logger) write(ctx context.Context, text string) {
	defer func() {
		if r := recover(); r != nil {
			l.metrics.recordSinkError(ctx)
			if l.limiter.Allow() {
				l.diag.Error("sink panicked", zap.Any("panic", r))
			}
		}
	}()

	if err := l.sink.Write(ctx, text); err != nil {
		l.metrics.recordSinkError(ctx)
		if l.limiter.Allow() {
			l.diag.Error("sink write failed", zap.Error(err))
		}
	}
}
