// Package logging builds the logr.Logger used by the simulation harness.
package logging

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	// Level is the highest logr verbosity that is emitted.
	Level int `env:"TITRESIM_LOG_LEVEL" envDefault:"0"`
	// Development switches to human readable console output.
	Development bool `env:"TITRESIM_LOG_DEVELOPMENT" envDefault:"false"`
}

// ConfigFromEnv loads the logger configuration from environment variables.
func ConfigFromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.Level < 0 {
		return Config{}, fmt.Errorf("log level must be >= 0, got %d", cfg.Level)
	}
	return cfg, nil
}

// New returns a zap-backed logger. logr verbosity V(n) maps to zap level -n.
func New(cfg Config) (logr.Logger, error) {
	zc := zap.NewProductionConfig()
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(zapcore.Level(-cfg.Level))
	z, err := zc.Build()
	if err != nil {
		return logr.Discard(), fmt.Errorf("build zap logger: %w", err)
	}
	return zapr.NewLogger(z), nil
}
