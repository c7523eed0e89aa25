// Package config provides configuration loading for reqlog.
//
// Values are layered: built-in defaults, then an optional YAML file, then
// REQLOG_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
)

// Sink types.
const (
	SinkStdout = "stdout"
	SinkStderr = "stderr"
	SinkFile   = "file"
	SinkNATS   = "nats"
	SinkOTel   = "otel"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds the complete reqlog configuration.
type Config struct {
	Emitter   EmitterConfig   `koanf:"emitter"`
	Sink      SinkConfig      `koanf:"sink"`
	Logging   LoggingConfig   `koanf:"logging"`
	Server    ServerConfig    `koanf:"server"`
	Metrics   MetricsConfig   `koanf:"metrics"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
}

// EmitterConfig configures the payload emitter.
type EmitterConfig struct {
	Debug                 bool   `koanf:"debug"`
	RuntimeKey            string `koanf:"runtime_key"`
	MaxPayloadUnits       int    `koanf:"max_payload_units"`
	TruncatedPayloadUnits int    `koanf:"truncated_payload_units"`
	ScanSecrets           bool   `koanf:"scan_secrets"`   // Gitleaks scan of string values
	AllowlistPath         string `koanf:"allowlist_path"` // TOML allowlist for the scan
}

// SinkConfig selects where payloads go.
type SinkConfig struct {
	Type       string `koanf:"type"`
	Path       string `koanf:"path"`
	NATSURL    string `koanf:"nats_url"`
	NATSToken  Secret `koanf:"nats_token"`
	Subject    string `koanf:"subject"`
	Instrument bool   `koanf:"instrument"` // Prometheus write metrics
}

// LoggingConfig configures the diagnostics logger.
type LoggingConfig struct {
	Level    string `koanf:"level"`
	Format   string `koanf:"format"`
	Output   string `koanf:"output"` // stdout, stderr or otel
	Sampling bool   `koanf:"sampling"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string   `koanf:"host"`
	Port            int      `koanf:"port"`
	ShutdownTimeout Duration `koanf:"shutdown_timeout"`
	MaxBodyBytes    int64    `koanf:"max_body_bytes"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `koanf:"enabled"`
}

// TelemetryConfig configures OpenTelemetry export.
type TelemetryConfig struct {
	Enabled        bool     `koanf:"enabled"`
	Endpoint       string   `koanf:"endpoint"`
	Protocol       string   `koanf:"protocol"` // grpc or http/protobuf
	Insecure       bool     `koanf:"insecure"`
	TLSSkipVerify  bool     `koanf:"tls_skip_verify"`
	ServiceName    string   `koanf:"service_name"`
	SamplingRate   float64  `koanf:"sampling_rate"`
	ExportInterval Duration `koanf:"export_interval"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	var errs []error

	if c.Emitter.MaxPayloadUnits <= 0 {
		errs = append(errs, fmt.Errorf("emitter.max_payload_units must be positive, got %d", c.Emitter.MaxPayloadUnits))
	}
	if c.Emitter.TruncatedPayloadUnits <= 0 {
		errs = append(errs, fmt.Errorf("emitter.truncated_payload_units must be positive, got %d", c.Emitter.TruncatedPayloadUnits))
	}
	if c.Emitter.TruncatedPayloadUnits >= c.Emitter.MaxPayloadUnits {
		errs = append(errs, errors.New("emitter.truncated_payload_units must be below emitter.max_payload_units"))
	}
	if strings.TrimSpace(c.Emitter.RuntimeKey) == "" {
		errs = append(errs, errors.New("emitter.runtime_key is required"))
	}

	switch c.Sink.Type {
	case SinkStdout, SinkStderr, SinkOTel:
	case SinkFile:
		if c.Sink.Path == "" {
			errs = append(errs, errors.New("sink.path is required for file sinks"))
		}
	case SinkNATS:
		if c.Sink.NATSURL == "" {
			errs = append(errs, errors.New("sink.nats_url is required for nats sinks"))
		}
		if c.Sink.Subject == "" {
			errs = append(errs, errors.New("sink.subject is required for nats sinks"))
		}
	default:
		errs = append(errs, fmt.Errorf("sink.type %q is not one of stdout, stderr, file, nats, otel", c.Sink.Type))
	}

	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		errs = append(errs, fmt.Errorf("logging.format must be 'json' or 'console', got %q", c.Logging.Format))
	}
	switch c.Logging.Output {
	case "stdout", "stderr", "otel":
	default:
		errs = append(errs, fmt.Errorf("logging.output must be stdout, stderr or otel, got %q", c.Logging.Output))
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port out of range: %d", c.Server.Port))
	}
	if c.Server.ShutdownTimeout.Duration() <= 0 {
		errs = append(errs, errors.New("server.shutdown_timeout must be positive"))
	}
	if c.Server.MaxBodyBytes <= 0 {
		errs = append(errs, errors.New("server.max_body_bytes must be positive"))
	}

	if c.Telemetry.Enabled {
		if c.Telemetry.Endpoint == "" {
			errs = append(errs, errors.New("telemetry.endpoint is required when telemetry is enabled"))
		}
		if c.Telemetry.Protocol != "grpc" && c.Telemetry.Protocol != "http/protobuf" {
			errs = append(errs, fmt.Errorf("telemetry.protocol must be grpc or http/protobuf, got %q", c.Telemetry.Protocol))
		}
		if c.Telemetry.SamplingRate < 0 || c.Telemetry.SamplingRate > 1 {
			errs = append(errs, fmt.Errorf("telemetry.sampling_rate must be between 0 and 1, got %g", c.Telemetry.SamplingRate))
		}
		if c.Telemetry.ExportInterval.Duration() <= 0 {
			errs = append(errs, errors.New("telemetry.export_interval must be positive"))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}
