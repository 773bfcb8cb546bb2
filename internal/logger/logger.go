// Package logger builds the zap logger used across services.  Production
// environments get JSON output with sampling; everything else gets the
// human-readable development encoder.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a logger configured for the given environment.  The caller
// owns the returned logger and should defer Sync on shutdown.
func New(env string) (*zap.Logger, error) {
	if env == "prod" {
		cfg := zap.NewProductionConfig()
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		return cfg.Build()
	}
	return zap.NewDevelopment()
}
