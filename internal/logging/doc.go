// Package logging provides the diagnostics logger for reqlog.
//
// Payloads produced by the emitter are the product; everything the process
// says about itself (rejected messages, sink failures, server lifecycle)
// goes through this package instead. It wraps Zap with:
//   - Custom Trace level (-2, below Debug)
//   - Stream output (stderr by default) plus an optional OpenTelemetry bridge
//   - Context field injection (trace_id, span_id, invocation.id, request.id)
//   - The payload redaction rules applied to every field
//   - Sampling below error level
//
// # Usage
//
//	cfg := logging.FromSettings(settings.Logging)
//	logger, err := logging.NewLogger(cfg, nil)
//	if err != nil {
//	    return err
//	}
//	defer logger.Sync()
//
//	emitter := reqlog.New(reqlog.WithDiagnostics(logger.Underlying()))
//
// # Secret Redaction
//
// RedactingEncoder runs each field through the same rules the emitter uses
// for payloads, so an authorization header logged by mistake is written as
// {AUTHORIZATION} and token signatures become <sig>. Keys listed in
// RedactionConfig.Fields are replaced with [REDACTED]. Use Secret or
// RedactedString to log only the length of a known credential.
//
// # Testing
//
//	tl := logging.NewTestLogger()
//	tl.Warn(ctx, "message rejected", zap.String("reason", "empty_string"))
//	tl.AssertField(t, "message rejected", "reason", "empty_string")
//	tl.AssertNoSecrets(t)
package logging
