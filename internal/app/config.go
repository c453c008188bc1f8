package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ChainPath string // prompt chain file
	InputPath string // initial input text file

	SettingsPath string // optional HCL settings file
	OutputDir    string // where output and log files are written

	LogFormat string
	LogLevel  string

	Concurrency int  // 0 selects the default limit
	Serial      bool // forces Concurrency = 1
	Model       string
}

// NewConfig validates a Config.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.ChainPath == "" {
		return nil, errors.New("ChainPath is a required configuration field and cannot be empty")
	}
	if cfg.InputPath == "" {
		return nil, errors.New("InputPath is a required configuration field and cannot be empty")
	}
	if cfg.Concurrency < 0 {
		return nil, errors.New("Concurrency cannot be negative")
	}
	return &cfg, nil
}
