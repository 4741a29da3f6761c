package app

import (
	"strings"

	"github.com/charlesng35/formstore/pkg/logger"
)

// ConfigureLogging initialises the global logger from the server settings,
// defaulting to info. Outside production the console encoder is used.
func ConfigureLogging(cfg ServerConfig) error {
	level := strings.TrimSpace(cfg.LogLevel)
	if level == "" {
		level = "info"
	}
	return logger.InitWithOptions(logger.Options{
		Level:       level,
		Development: !cfg.IsProduction(),
	})
}
