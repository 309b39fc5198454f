package app

import (
	"errors"
	"time"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ConfigPath string // hcl file or directory

	LogFormat   string
	LogLevel    string
	ObservePort int

	// Workers overrides the deployment's worker count when positive.
	Workers int

	// CycleInterval overrides the deployment's loop period when positive.
	CycleInterval time.Duration

	// Once runs a single scheduling cycle and exits instead of looping.
	Once bool
}

// NewConfig validates a Config.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.ConfigPath == "" {
		return nil, errors.New("ConfigPath is a required configuration field and cannot be empty")
	}
	return &cfg, nil
}
