package config

import (
	"go.uber.org/zap"
)

// NewLogger builds a JSON production logger, or a console logger when the
// app env is "dev". Level strings follow zap ("debug", "info", ...).
func NewLogger(cfg LogConfig) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if cfg.Env == "dev" {
		zc = zap.NewDevelopmentConfig()
	}
	if cfg.Level != "" {
		level, err := zap.ParseAtomicLevel(cfg.Level)
		if err != nil {
			return nil, err
		}
		zc.Level = level
	}
	return zc.Build()
}
