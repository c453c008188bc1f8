// Package settings loads the optional prmptr settings file.
//
// The file is HCL with plain top-level attributes, for example:
//
//	model          = "gpt-4o-mini"
//	system_prompt  = "You are a copy editor."
//	concurrency    = 4
//	api_key        = env.OPENAI_API_KEY
//
// Expressions may reference the `env` object, which exposes the process
// environment, so secrets stay out of the file itself.
package settings

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
)

// Settings holds every tool-level option the settings file may set. Zero
// values mean "not set"; the application layers its own defaults on top.
type Settings struct {
	Model          string `hcl:"model,optional"`
	BaseURL        string `hcl:"base_url,optional"`
	SystemPrompt   string `hcl:"system_prompt,optional"`
	APIKey         string `hcl:"api_key,optional"`
	Concurrency    int    `hcl:"concurrency,optional"`
	RequestTimeout string `hcl:"request_timeout,optional"`
	OutputDir      string `hcl:"output_dir,optional"`
}

// Default returns empty settings, deferring everything to the application
// defaults.
func Default() *Settings {
	return &Settings{}
}

// Timeout parses the request_timeout attribute as a Go duration. It returns
// zero when the attribute is unset.
func (s *Settings) Timeout() (time.Duration, error) {
	if s.RequestTimeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s.RequestTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid request_timeout %q: %w", s.RequestTimeout, err)
	}
	return d, nil
}

// Load parses the settings file at path. Unknown attributes are rejected by
// the decoder, so typos fail loudly.
func Load(path string) (*Settings, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse settings file %s: %w", path, diags)
	}

	var s Settings
	diags = gohcl.DecodeBody(file.Body, evalContext(), &s)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode settings file %s: %w", path, diags)
	}
	if s.Concurrency < 0 {
		return nil, fmt.Errorf("settings file %s: concurrency must not be negative", path)
	}
	return &s, nil
}

// evalContext exposes the process environment to settings expressions as
// the `env` object.
func evalContext() *hcl.EvalContext {
	vars := make(map[string]cty.Value)
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		vars[k] = cty.StringVal(v)
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": cty.ObjectVal(vars),
		},
	}
}
