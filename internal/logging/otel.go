package logging

import (
	"fmt"

	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.opentelemetry.io/otel/log"
	"go.uber.org/zap/zapcore"
)

const otelScope = "github.com/fyrsmithlabs/reqlog/internal/logging"

// newCore creates a core writing to ws and/or OTEL, wrapped with sampling.
func newCore(cfg *Config, ws zapcore.WriteSyncer, otelProvider log.LoggerProvider) (zapcore.Core, error) {
	level, err := LevelFromString(cfg.Level)
	if err != nil {
		return nil, err
	}
	cores := make([]zapcore.Core, 0, 2)

	if ws != nil {
		encoder := NewRedactingEncoder(newEncoder(cfg.Format), cfg.Redaction)
		cores = append(cores, zapcore.NewCore(encoder, ws, level))
	}

	if cfg.Output.OTEL && otelProvider != nil {
		otelCore := otelzap.NewCore(otelScope,
			otelzap.WithLoggerProvider(otelProvider),
		)
		cores = append(cores, &levelFilterCore{Core: otelCore, minLevel: level})
	}

	if len(cores) == 0 {
		return nil, fmt.Errorf("at least one output must be enabled and available")
	}

	core := zapcore.NewTee(cores...)
	return newSampledCore(core, cfg.Sampling), nil
}
