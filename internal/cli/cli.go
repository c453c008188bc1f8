// Package cli parses command-line arguments into an application config.
package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/greg-randall/prmptr/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	flagSet := flag.NewFlagSet("prmptr", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
prmptr - Resolve a declarative prompt chain against an input text file.

Usage:
  prmptr [options] CHAIN_FILE INPUT_FILE

Arguments:
  CHAIN_FILE
    Path to the prompt chain file ([[name]] = declarations).
  INPUT_FILE
    Path to the input text file bound to [[input text]].

Options:
`)
		flagSet.PrintDefaults()
	}

	settingsFlag := flagSet.String("settings", "", "Path to an optional HCL settings file.")
	outDirFlag := flagSet.String("out-dir", "", "Directory for the output and log files. Defaults to the working directory.")
	modelFlag := flagSet.String("model", "", "Model name override for generation calls.")
	concurrencyFlag := flagSet.Int("concurrency", 0, "Maximum generation calls in flight. 0 selects 2x the CPU count.")
	serialFlag := flagSet.Bool("serial", false, "Disable parallel execution (forces one call at a time).")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	if flagSet.NArg() == 0 {
		flagSet.Usage()
		return nil, true, nil
	}
	if flagSet.NArg() != 2 {
		return nil, false, &ExitError{Code: 2, Message: "expected exactly two arguments: CHAIN_FILE and INPUT_FILE"}
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	if *concurrencyFlag < 0 {
		return nil, false, &ExitError{Code: 2, Message: "invalid concurrency: must not be negative"}
	}

	config, err := app.NewConfig(app.Config{
		ChainPath:    flagSet.Arg(0),
		InputPath:    flagSet.Arg(1),
		SettingsPath: *settingsFlag,
		OutputDir:    *outDirFlag,
		LogFormat:    logFormat,
		LogLevel:     logLevel,
		Concurrency:  *concurrencyFlag,
		Serial:       *serialFlag,
		Model:        *modelFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	return config, false, nil
}
