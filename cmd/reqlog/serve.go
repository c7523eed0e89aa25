package main

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/reqlog/internal/config"
	httpserver "github.com/fyrsmithlabs/reqlog/internal/http"
)

type serveOptions struct {
	host string
	port int
}

func newServeCmd(root *rootOptions) *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the redaction and logging HTTP API",
		Long: `Start the HTTP API:

  GET  /health          liveness
  GET  /metrics         Prometheus metrics (metrics.enabled)
  POST /api/v1/redact   redact a JSON event and return it
  POST /api/v1/log      emit a message under a per-request invocation

The server stops gracefully on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("host") {
				cfg.Server.Host = opts.host
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = opts.port
			}
			return runServe(cmd.Context(), cfg, appDeps{stdout: cmd.OutOrStdout()})
		},
	}

	cmd.Flags().StringVar(&opts.host, "host", "", "listen host (overrides server.host)")
	cmd.Flags().IntVar(&opts.port, "port", 0, "listen port (overrides server.port)")
	return cmd
}

func runServe(ctx context.Context, cfg *config.Config, deps appDeps) error {
	a, err := newApp(ctx, cfg, deps)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	gatherer, ok := a.registry.(prometheus.Gatherer)
	if !ok {
		gatherer = prometheus.DefaultGatherer
	}

	server, err := httpserver.NewServer(a.emitter, a.logger, &httpserver.Config{
		Host:            cfg.Server.Host,
		Port:            cfg.Server.Port,
		MaxBodyBytes:    cfg.Server.MaxBodyBytes,
		ShutdownTimeout: cfg.Server.ShutdownTimeout.Duration(),
		MetricsEnabled:  cfg.Metrics.Enabled,
	},
		httpserver.WithTracerProvider(a.tel.TracerProvider()),
		httpserver.WithMeterProvider(a.tel.MeterProvider()),
		httpserver.WithGatherer(gatherer),
	)
	if err != nil {
		return err
	}

	a.logger.Info(ctx, "reqlog serving",
		zap.String("addr", cfg.Server.Addr()),
		zap.String("sink", cfg.Sink.Type),
		zap.String("version", version),
	)
	return server.Run(ctx)
}
