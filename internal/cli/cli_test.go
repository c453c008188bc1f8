package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("positional arguments and defaults", func(t *testing.T) {
		var out bytes.Buffer
		config, exit, err := Parse([]string{"chain.txt", "input.txt"}, &out)
		require.NoError(t, err)
		require.False(t, exit)
		require.NotNil(t, config)

		assert.Equal(t, "chain.txt", config.ChainPath)
		assert.Equal(t, "input.txt", config.InputPath)
		assert.Equal(t, "text", config.LogFormat)
		assert.Equal(t, "info", config.LogLevel)
		assert.Equal(t, 0, config.Concurrency)
		assert.False(t, config.Serial)
	})

	t.Run("all options", func(t *testing.T) {
		var out bytes.Buffer
		config, exit, err := Parse([]string{
			"-settings", "prmptr.hcl",
			"-out-dir", "runs",
			"-model", "gpt-4o",
			"-concurrency", "6",
			"-serial",
			"-log-format", "json",
			"-log-level", "debug",
			"chain.txt", "input.txt",
		}, &out)
		require.NoError(t, err)
		require.False(t, exit)

		assert.Equal(t, "prmptr.hcl", config.SettingsPath)
		assert.Equal(t, "runs", config.OutputDir)
		assert.Equal(t, "gpt-4o", config.Model)
		assert.Equal(t, 6, config.Concurrency)
		assert.True(t, config.Serial)
		assert.Equal(t, "json", config.LogFormat)
		assert.Equal(t, "debug", config.LogLevel)
	})

	t.Run("no arguments prints usage and exits cleanly", func(t *testing.T) {
		var out bytes.Buffer
		config, exit, err := Parse(nil, &out)
		require.NoError(t, err)
		assert.True(t, exit)
		assert.Nil(t, config)
		assert.Contains(t, out.String(), "Usage:")
	})

	t.Run("one argument is an error", func(t *testing.T) {
		var out bytes.Buffer
		_, _, err := Parse([]string{"chain.txt"}, &out)
		var exitErr *ExitError
		require.ErrorAs(t, err, &exitErr)
		assert.Equal(t, 2, exitErr.Code)
		assert.Contains(t, exitErr.Message, "exactly two arguments")
	})

	t.Run("invalid log format", func(t *testing.T) {
		var out bytes.Buffer
		_, _, err := Parse([]string{"-log-format", "xml", "a", "b"}, &out)
		var exitErr *ExitError
		require.ErrorAs(t, err, &exitErr)
		assert.Equal(t, 2, exitErr.Code)
		assert.Contains(t, exitErr.Message, "log-format")
	})

	t.Run("invalid log level", func(t *testing.T) {
		var out bytes.Buffer
		_, _, err := Parse([]string{"-log-level", "loud", "a", "b"}, &out)
		var exitErr *ExitError
		require.ErrorAs(t, err, &exitErr)
		assert.Contains(t, exitErr.Message, "log-level")
	})

	t.Run("negative concurrency", func(t *testing.T) {
		var out bytes.Buffer
		_, _, err := Parse([]string{"-concurrency", "-3", "a", "b"}, &out)
		var exitErr *ExitError
		require.ErrorAs(t, err, &exitErr)
		assert.Contains(t, exitErr.Message, "concurrency")
	})

	t.Run("help exits cleanly", func(t *testing.T) {
		var out bytes.Buffer
		_, exit, err := Parse([]string{"-h"}, &out)
		require.NoError(t, err)
		assert.True(t, exit)
	})
}
