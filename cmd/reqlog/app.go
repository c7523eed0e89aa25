package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"

	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/reqlog/internal/config"
	"github.com/fyrsmithlabs/reqlog/internal/logging"
	"github.com/fyrsmithlabs/reqlog/internal/telemetry"
	"github.com/fyrsmithlabs/reqlog/pkg/redact"
	"github.com/fyrsmithlabs/reqlog/pkg/reqlog"
	"github.com/fyrsmithlabs/reqlog/pkg/secrets"
	"github.com/fyrsmithlabs/reqlog/pkg/sink"
)

// app holds the wired components for one command run.
type app struct {
	cfg      *config.Config
	logger   *logging.Logger
	tel      *telemetry.Telemetry
	emitter  *reqlog.Logger
	registry prometheus.Registerer
	closers  []func() error
}

// appDeps lets tests replace process-level resources.
type appDeps struct {
	stdout   io.Writer
	registry prometheus.Registerer
	telOpts  []telemetry.Option
}

// newApp wires telemetry, diagnostics, the sink and the emitter from cfg.
func newApp(ctx context.Context, cfg *config.Config, deps appDeps) (*app, error) {
	if deps.registry == nil {
		deps.registry = prometheus.DefaultRegisterer
	}
	a := &app{cfg: cfg, registry: deps.registry}

	tel, err := telemetry.New(ctx, telemetry.FromSettings(cfg.Telemetry, version), deps.telOpts...)
	if err != nil {
		return nil, err
	}
	a.tel = tel
	a.closers = append(a.closers, func() error { return tel.Shutdown(context.Background()) })

	logCfg := logging.FromSettings(cfg.Logging)
	logger, err := logging.NewLogger(logCfg, tel.LoggerProvider())
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	a.logger = logger
	a.closers = append(a.closers, logger.Sync)

	s, err := a.buildSink(deps.stdout)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	redactor, err := buildRedactor(cfg.Emitter.ScanSecrets, cfg.Emitter.AllowlistPath)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	a.emitter = reqlog.New(
		reqlog.WithSink(s),
		reqlog.WithRedactor(redactor),
		reqlog.WithDiagnostics(logger.Underlying().Named("emitter")),
		reqlog.WithDebug(cfg.Emitter.Debug),
		reqlog.WithRuntime(cfg.Emitter.RuntimeKey, runtime.Version()),
		reqlog.WithLimits(cfg.Emitter.MaxPayloadUnits, cfg.Emitter.TruncatedPayloadUnits),
		reqlog.WithMeterProvider(tel.MeterProvider()),
	)
	return a, nil
}

// buildRedactor returns the default rules, followed by a Gitleaks content
// scan when scanSecrets is set.
func buildRedactor(scanSecrets bool, allowlistPath string) (*redact.Redactor, error) {
	if !scanSecrets {
		return redact.New(), nil
	}
	allowlist, err := secrets.LoadAllowlist(allowlistPath)
	if err != nil {
		return nil, fmt.Errorf("loading allowlist: %w", err)
	}
	scanner, err := secrets.NewScanner(allowlist)
	if err != nil {
		return nil, err
	}
	return redact.New(append(redact.DefaultRules(), scanner.Rule())...), nil
}

// buildSink creates the configured transport, optionally instrumented.
func (a *app) buildSink(stdout io.Writer) (sink.Sink, error) {
	cfg := a.cfg.Sink
	var s sink.Sink

	switch cfg.Type {
	case config.SinkStdout:
		s = sink.NewWriter(stdout)
	case config.SinkStderr:
		s = sink.Stderr()
	case config.SinkFile:
		f, err := sink.NewFile(cfg.Path)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, f.Close)
		s = f
	case config.SinkNATS:
		var opts []nats.Option
		if cfg.NATSToken.IsSet() {
			opts = append(opts, nats.Token(cfg.NATSToken.Value()))
		}
		n, err := sink.ConnectNATS(cfg.NATSURL, cfg.Subject, opts...)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, n.Close)
		s = n
	case config.SinkOTel:
		s = sink.NewOTel(a.tel.LoggerProvider(), sink.DefaultOTelScope)
	default:
		return nil, fmt.Errorf("%w: unknown sink type %q", config.ErrInvalidConfig, cfg.Type)
	}

	a.logger.Debug(context.Background(), "sink ready",
		zap.String("sink", cfg.Type),
		logging.Secret("nats_token", cfg.NATSToken),
	)

	if !cfg.Instrument {
		return s, nil
	}
	instrumented, err := sink.NewInstrumented(s, cfg.Type, a.registry)
	if err != nil {
		return nil, err
	}
	return instrumented, nil
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
