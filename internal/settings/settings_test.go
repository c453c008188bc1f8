package settings

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSettings(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prmptr.hcl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("full settings file", func(t *testing.T) {
		path := writeSettings(t, `
model           = "gpt-4o"
base_url        = "https://proxy.internal"
system_prompt   = "You are a careful editor."
concurrency     = 4
request_timeout = "90s"
output_dir      = "runs"
`)
		s, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "gpt-4o", s.Model)
		assert.Equal(t, "https://proxy.internal", s.BaseURL)
		assert.Equal(t, "You are a careful editor.", s.SystemPrompt)
		assert.Equal(t, 4, s.Concurrency)
		assert.Equal(t, "runs", s.OutputDir)

		d, err := s.Timeout()
		require.NoError(t, err)
		assert.Equal(t, 90*time.Second, d)
	})

	t.Run("env references resolve", func(t *testing.T) {
		t.Setenv("PRMPTR_TEST_KEY", "sk-from-env")
		path := writeSettings(t, `api_key = env.PRMPTR_TEST_KEY`)
		s, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "sk-from-env", s.APIKey)
	})

	t.Run("empty file yields zero settings", func(t *testing.T) {
		path := writeSettings(t, "")
		s, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, Default(), s)
	})

	t.Run("unknown attribute rejected", func(t *testing.T) {
		path := writeSettings(t, `tempreture = 0.7`)
		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to decode settings file")
	})

	t.Run("malformed file rejected", func(t *testing.T) {
		path := writeSettings(t, `model = `)
		_, err := Load(path)
		require.Error(t, err)
	})

	t.Run("negative concurrency rejected", func(t *testing.T) {
		path := writeSettings(t, `concurrency = -2`)
		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "concurrency")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.hcl"))
		require.Error(t, err)
	})
}

func TestTimeout(t *testing.T) {
	t.Run("unset means zero", func(t *testing.T) {
		d, err := Default().Timeout()
		require.NoError(t, err)
		assert.Zero(t, d)
	})

	t.Run("invalid duration", func(t *testing.T) {
		s := &Settings{RequestTimeout: "ninety seconds"}
		_, err := s.Timeout()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "request_timeout")
	})
}
