package logger

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// RequestIDKey is the gin context key holding the request ID.
const RequestIDKey = "request_id"

// Initialize installs the global logger for env.
func Initialize(env string) (*zap.Logger, error) {
	return InitializeWithWriter(env, nil)
}

// InitializeWithWriter installs the global logger for env. When extra is
// non-nil every entry is also written to it as JSON.
func InitializeWithWriter(env string, extra io.Writer) (*zap.Logger, error) {
	config := newConfig(env)

	var (
		log *zap.Logger
		err error
	)
	if extra != nil {
		level := zap.NewAtomicLevelAt(config.Level.Level())
		console := zapcore.NewCore(consoleEncoder(env, config.EncoderConfig), zapcore.AddSync(os.Stdout), level)
		shipped := zapcore.NewCore(zapcore.NewJSONEncoder(config.EncoderConfig), zapcore.AddSync(extra), level)
		log = zap.New(zapcore.NewTee(console, shipped), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	} else {
		log, err = config.Build()
		if err != nil {
			return nil, fmt.Errorf("build logger: %w", err)
		}
	}

	zap.ReplaceGlobals(log)
	return log, nil
}

func newConfig(env string) zap.Config {
	if env == "production" {
		config := zap.NewProductionConfig()
		config.EncoderConfig.TimeKey = "timestamp"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		return config
	}
	config := zap.NewDevelopmentConfig()
	config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return config
}

func consoleEncoder(env string, cfg zapcore.EncoderConfig) zapcore.Encoder {
	if env == "production" {
		return zapcore.NewJSONEncoder(cfg)
	}
	return zapcore.NewConsoleEncoder(cfg)
}
