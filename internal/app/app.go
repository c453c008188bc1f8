// Package app wires the chain parser, graph builder, resolver, and output
// writing into one run of the prmptr tool.
package app

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/greg-randall/prmptr/internal/resolver"
	"github.com/greg-randall/prmptr/internal/settings"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	settings *settings.Settings
	gen      resolver.Generator
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance with its own isolated logger. A non-nil gen
// overrides the real generation backend, which tests rely on.
func NewApp(outW io.Writer, config *Config, gen resolver.Generator) *App {
	logger := newLogger(config.LogLevel, config.LogFormat, outW)
	logger.Debug("Logger configured successfully.")

	s := settings.Default()
	if config.SettingsPath != "" {
		loaded, err := settings.Load(config.SettingsPath)
		if err != nil {
			// A failure to load settings is a fatal startup error.
			panic(fmt.Errorf("failed to load settings: %w", err))
		}
		s = loaded
		logger.Debug("Settings file loaded.", "path", config.SettingsPath)
	}

	return &App{
		outW:     outW,
		logger:   logger,
		config:   config,
		settings: s,
		gen:      gen,
	}
}

// Settings returns the loaded settings. This is primarily for testing.
func (a *App) Settings() *settings.Settings {
	return a.settings
}
