// Package logger builds the application-wide zap logger.
package logger

import (
	"go.uber.org/zap"
)

// New creates a zap logger for the given level and format. Unknown
// levels fall back to info.
func New(level, format string, development bool) (*zap.Logger, error) {
	var cfg zap.Config

	if development {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}

	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		lvl = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	cfg.Level = lvl

	if format == "console" {
		cfg.Encoding = "console"
	} else {
		cfg.Encoding = "json"
	}

	return cfg.Build()
}
