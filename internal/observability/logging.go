// Package observability builds the server logger and the structured fields
// shared by every component that logs about connections and players.
package observability

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cory-johannsen/tzmud/internal/config"
)

// AppName is attached to every log entry.
const AppName = "tzmud"

// NewLogger creates the server logger, writing to stderr.
//
// Precondition: cfg.Level is one of "debug", "info", "warn", "error" and
// cfg.Format is "json" or "console".
// Postcondition: Returns a configured zap.Logger or a non-nil error.
func NewLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	return NewLoggerTo(cfg, zapcore.Lock(os.Stderr))
}

// NewLoggerTo is NewLogger writing to out.
func NewLoggerTo(cfg config.LoggingConfig, out zapcore.WriteSyncer) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level %q: %w", cfg.Level, err)
	}
	enc, err := encoder(cfg.Format)
	if err != nil {
		return nil, err
	}

	opts := []zap.Option{
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
		zap.ErrorOutput(out),
		zap.Fields(zap.String("app", AppName)),
	}
	if cfg.Format == "console" {
		opts = append(opts, zap.Development())
	}
	return zap.New(zapcore.NewCore(enc, out, level), opts...), nil
}

func encoder(format string) (zapcore.Encoder, error) {
	switch format {
	case "json":
		ec := zap.NewProductionEncoderConfig()
		ec.EncodeTime = zapcore.ISO8601TimeEncoder
		return zapcore.NewJSONEncoder(ec), nil
	case "console":
		ec := zap.NewDevelopmentEncoderConfig()
		ec.EncodeTime = zapcore.ISO8601TimeEncoder
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return zapcore.NewConsoleEncoder(ec), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
}
