package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options controls how the logger is built.
type Options struct {
	Level  string
	Format string
	// Sink, when non-nil, additionally receives every rendered log line.
	Sink LineSink
}

// New builds a zap logger from the given options. The console format is
// human oriented; the json format matches zap's production encoder.
func New(opts Options) (*zap.Logger, error) {
	var level zapcore.Level
	switch opts.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var logConfig zap.Config
	if opts.Format == "json" {
		logConfig = zap.NewProductionConfig()
	} else {
		logConfig = zap.NewDevelopmentConfig()
		logConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	logConfig.Level = zap.NewAtomicLevelAt(level)

	logger, err := logConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	if opts.Sink != nil {
		logger = Tee(logger, opts.Sink, level)
	}

	return logger, nil
}

// NewConsoleLogger builds a console-friendly logger for the one-shot tools.
func NewConsoleLogger(verbose bool, jsonFormat bool) (*zap.Logger, error) {
	level := "info"
	if verbose {
		level = "debug"
	}
	format := "console"
	if jsonFormat {
		format = "json"
	}
	return New(Options{Level: level, Format: format})
}

// Tee wraps an existing logger so every line at or above level is also
// appended to sink. The sink receives plain timestamped text, which is
// what external control surfaces render.
func Tee(logger *zap.Logger, sink LineSink, level zapcore.Level) *zap.Logger {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	sinkCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(&sinkWriter{sink: sink}),
		level,
	)

	return logger.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return zapcore.NewTee(core, sinkCore)
	}))
}
