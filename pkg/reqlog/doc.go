// Package reqlog emits redacted, size-bounded structured log payloads.
//
// A Logger turns a message (a string or a field mapping) into
//
//	{"message": {...fields, "level", "invocationId"}, "metadata": {"go": ..., "tracking": [...], ...}}
//
// serializes it through the redact package with two-space indentation,
// truncates embedded JWT signatures, and hands the text to a sink.Sink.
// Payloads that reach MaxPayloadUnits UTF-16 code units are replaced by a
// summary carrying the original level, title, field names and a compact
// prefix of the original payload.
//
// Log never returns an error. Rejected messages and sink failures are
// reported on a zap diagnostics logger and counted on OpenTelemetry
// instruments.
//
// Invocation state follows a single current invocation per Logger
// (StartInvocation, TrackPoint). Callers handling overlapping invocations
// pass an explicit *invocation.Context to LogWith, or carry one in a
// context.Context for LogContext.
package reqlog
