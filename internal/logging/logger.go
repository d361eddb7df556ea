// Package logging builds the process logger.
package logging

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/gcbaptista/card-catalog/config"
)

// New builds a zap logger from the log settings. Development mode switches
// to the console encoder with caller and stack traces on warnings.
func New(settings config.LogSettings) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(settings.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level '%s': %w", settings.Level, err)
	}

	cfg := zap.NewProductionConfig()
	if settings.Development {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = level
	cfg.DisableStacktrace = !settings.Development

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger.Named("card-catalog"), nil
}
