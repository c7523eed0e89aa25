package logging

import (
	"fmt"
	"time"

	"github.com/fyrsmithlabs/reqlog/internal/config"
)

// Output streams.
const (
	StreamStdout = "stdout"
	StreamStderr = "stderr"
	StreamNone   = "none"
)

// Config holds logging configuration.
type Config struct {
	Level      string            `koanf:"level"`
	Format     string            `koanf:"format"`
	Output     OutputConfig      `koanf:"output"`
	Sampling   SamplingConfig    `koanf:"sampling"`
	Caller     CallerConfig      `koanf:"caller"`
	Stacktrace StacktraceConfig  `koanf:"stacktrace"`
	Fields     map[string]string `koanf:"fields"`
	Redaction  RedactionConfig   `koanf:"redaction"`
}

// OutputConfig controls where diagnostics are written. Payloads usually own
// stdout, so the default stream is stderr.
type OutputConfig struct {
	Stream string `koanf:"stream"`
	OTEL   bool   `koanf:"otel"`
}

// SamplingConfig controls log volume reduction below error level.
type SamplingConfig struct {
	Enabled    bool            `koanf:"enabled"`
	Tick       config.Duration `koanf:"tick"`
	Initial    int             `koanf:"initial"`
	Thereafter int             `koanf:"thereafter"`
}

// CallerConfig controls caller information in logs.
type CallerConfig struct {
	Enabled bool `koanf:"enabled"`
	Skip    int  `koanf:"skip"`
}

// StacktraceConfig controls stacktrace inclusion.
type StacktraceConfig struct {
	Level string `koanf:"level"`
}

// RedactionConfig controls redaction of diagnostics fields. The reqlog rules
// for authorization and secret keys, bearer values and token signatures
// always apply when enabled; Fields adds exact key names.
type RedactionConfig struct {
	Enabled bool     `koanf:"enabled"`
	Fields  []string `koanf:"fields"`
}

// NewDefaultConfig returns config with production-ready defaults.
func NewDefaultConfig() *Config {
	return &Config{
		Level:  "info",
		Format: "json",
		Output: OutputConfig{
			Stream: StreamStderr,
		},
		Sampling: SamplingConfig{
			Enabled:    true,
			Tick:       config.Duration(time.Second),
			Initial:    100,
			Thereafter: 10,
		},
		Caller: CallerConfig{
			Enabled: true,
			Skip:    1,
		},
		Stacktrace: StacktraceConfig{
			Level: "error",
		},
		Fields: map[string]string{
			"service": "reqlog",
		},
		Redaction: RedactionConfig{
			Enabled: true,
			Fields:  []string{"password", "token", "api_key", "credential", "private_key"},
		},
	}
}

// FromSettings applies the level, format and output of the loaded
// configuration to the defaults.
func FromSettings(s config.LoggingConfig) *Config {
	cfg := NewDefaultConfig()
	if s.Level != "" {
		cfg.Level = s.Level
	}
	if s.Format != "" {
		cfg.Format = s.Format
	}
	switch s.Output {
	case "otel":
		cfg.Output = OutputConfig{Stream: StreamNone, OTEL: true}
	case StreamStdout, StreamStderr:
		cfg.Output = OutputConfig{Stream: s.Output}
	}
	cfg.Sampling.Enabled = s.Sampling
	return cfg
}

// Validate checks config for errors.
func (c *Config) Validate() error {
	if _, err := LevelFromString(c.Level); err != nil {
		return fmt.Errorf("invalid level %q: %w", c.Level, err)
	}
	if c.Format != "json" && c.Format != "console" {
		return fmt.Errorf("format must be 'json' or 'console', got %q", c.Format)
	}
	switch c.Output.Stream {
	case StreamStdout, StreamStderr, StreamNone, "":
	default:
		return fmt.Errorf("output stream must be stdout, stderr or none, got %q", c.Output.Stream)
	}
	if !c.streamEnabled() && !c.Output.OTEL {
		return fmt.Errorf("at least one output must be enabled (stream or otel)")
	}
	if c.Sampling.Enabled {
		if c.Sampling.Tick.Duration() <= 0 {
			return fmt.Errorf("sampling tick must be > 0 when sampling enabled")
		}
		if c.Sampling.Initial < 0 || c.Sampling.Thereafter < 0 {
			return fmt.Errorf("sampling initial and thereafter must be >= 0")
		}
	}
	if c.Caller.Enabled && c.Caller.Skip < 0 {
		return fmt.Errorf("caller skip must be >= 0, got %d", c.Caller.Skip)
	}
	if c.Stacktrace.Level != "" {
		if _, err := LevelFromString(c.Stacktrace.Level); err != nil {
			return fmt.Errorf("invalid stacktrace level %q: %w", c.Stacktrace.Level, err)
		}
	}
	for k, v := range c.Fields {
		if k == "" {
			return fmt.Errorf("field key cannot be empty")
		}
		if v == "" {
			return fmt.Errorf("field %q has empty value", k)
		}
	}
	return nil
}

func (c *Config) streamEnabled() bool {
	return c.Output.Stream == StreamStdout || c.Output.Stream == StreamStderr
}
