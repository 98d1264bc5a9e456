// Package logging builds the zap logger shared by the service layers.
package logging

import (
	"fmt"

	"smartcontact/internal/config"

	"go.uber.org/zap"
)

// New returns a JSON production logger when cfg is a production config and
// a human-readable development logger otherwise.
func New(cfg *config.Config) (*zap.Logger, error) {
	var (
		logger *zap.Logger
		err    error
	)
	if cfg.IsProduction() {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger.With(zap.String("env", cfg.AppEnv)), nil
}
