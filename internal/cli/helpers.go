// Package cli implements the pkgvet command-line interface.
package cli

import (
	"github.com/glorpus-work/pkgvet/internal/logger"
	"github.com/glorpus-work/pkgvet/pkg/config"
)

// DefaultConfigFile is the config file looked up in the working directory
// when --config is not given.
const DefaultConfigFile = "pkgvet.yaml"

// Flag values shared across commands, set by the root command.
var (
	ConfigPath *string
	Verbose    *bool
)

func configPath() string {
	if ConfigPath != nil && *ConfigPath != "" {
		return *ConfigPath
	}
	return DefaultConfigFile
}

// loadConfig loads the configuration and initializes logging from it.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath())
	if err != nil {
		return nil, err
	}

	level := cfg.Settings.LogLevel
	if Verbose != nil && *Verbose {
		level = "debug"
	}
	logger.InitLogger(level, logger.FormatText)

	return cfg, nil
}
