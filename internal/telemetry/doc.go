// Package telemetry wires OpenTelemetry tracing and metrics for reqlog.
//
// Export uses OTLP over gRPC or HTTP. Failures to build an exporter leave
// the instance degraded rather than stopping the process.
//
// # Usage
//
//	cfg := telemetry.FromSettings(settings.Telemetry, version)
//	tel, err := telemetry.New(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer tel.Shutdown(context.Background())
//
//	emitter := reqlog.New(reqlog.WithMeterProvider(tel.MeterProvider()))
//
// # Configuration
//
//	telemetry:
//	  enabled: true
//	  endpoint: "localhost:4317"
//	  protocol: grpc        # or http/protobuf
//	  insecure: true        # only allowed for local endpoints
//	  sampling_rate: 1.0
//	  export_interval: 15s
//
// # Testing
//
//	tt := telemetry.NewTestTelemetry()
//	emitter := reqlog.New(reqlog.WithMeterProvider(tt.MeterProvider()))
//	rm, _ := tt.Collect(ctx)
//	m, ok := telemetry.Metric(rm, "reqlog.messages.emitted")
package telemetry
