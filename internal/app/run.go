package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/greg-randall/prmptr/internal/chain"
	"github.com/greg-randall/prmptr/internal/ctxlog"
	"github.com/greg-randall/prmptr/internal/graph"
	"github.com/greg-randall/prmptr/internal/llm"
	"github.com/greg-randall/prmptr/internal/resolver"
	"github.com/greg-randall/prmptr/internal/trace"
	"github.com/greg-randall/prmptr/internal/workpool"
)

// Run executes one full chain run: parse, validate, resolve, write outputs.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	chainText, err := os.ReadFile(a.config.ChainPath)
	if err != nil {
		return fmt.Errorf("failed to read chain file: %w", err)
	}
	inputText, err := os.ReadFile(a.config.InputPath)
	if err != nil {
		return fmt.Errorf("failed to read input file: %w", err)
	}

	def, err := chain.Parse(string(chainText))
	if err != nil {
		return fmt.Errorf("failed to parse chain file %s: %w", a.config.ChainPath, err)
	}
	a.logger.Debug("Chain file parsed.", "nodes", len(def))
	a.dumpDefinition(def)

	plan, err := graph.Build(ctx, def)
	if err != nil {
		return fmt.Errorf("failed to build dependency graph: %w", err)
	}
	a.dumpPlan(plan)

	gen, err := a.generator()
	if err != nil {
		return err
	}

	rec := trace.NewRecorder()
	pool := workpool.New(a.concurrency())
	res := resolver.New(def, plan, gen, pool, rec)

	output, runErr := res.Resolve(ctx, string(inputText))

	// The trace is written even for a failed run; the output file only on
	// success.
	logPath, err := a.writeFile(rec.LogFilename(a.config.InputPath), rec.RenderLog())
	if err != nil {
		return err
	}
	a.logger.Info("Prompt chain log written.", "path", logPath)

	if runErr != nil {
		a.logger.Error("Run failed, no output file written.", "error", runErr)
		return fmt.Errorf("chain execution failed: %w", runErr)
	}

	outPath, err := a.writeFile(rec.OutputFilename(a.config.InputPath), output)
	if err != nil {
		return err
	}
	a.logger.Info("Final output written.", "path", outPath, "elapsed", rec.Elapsed())
	return nil
}

// generator returns the configured generation backend, layering CLI flags
// over the settings file over the client defaults.
func (a *App) generator() (resolver.Generator, error) {
	if a.gen != nil {
		return a.gen, nil
	}

	var opts []llm.Option
	if a.settings.APIKey != "" {
		opts = append(opts, llm.WithAPIKey(a.settings.APIKey))
	}
	if a.settings.BaseURL != "" {
		opts = append(opts, llm.WithBaseURL(a.settings.BaseURL))
	}
	if a.settings.SystemPrompt != "" {
		opts = append(opts, llm.WithSystemPrompt(a.settings.SystemPrompt))
	}
	model := a.config.Model
	if model == "" {
		model = a.settings.Model
	}
	if model != "" {
		opts = append(opts, llm.WithModel(model))
	}
	timeout, err := a.settings.Timeout()
	if err != nil {
		return nil, err
	}
	if timeout > 0 {
		opts = append(opts, llm.WithHTTPClient(&http.Client{Timeout: timeout}))
	}

	client := llm.New(opts...)
	if !client.HasKey() {
		return nil, errors.New("no API key available: set OPENAI_API_KEY or api_key in the settings file")
	}
	return client, nil
}

// concurrency resolves the effective worker limit: CLI flag over settings
// file over the pool default, with serial mode forcing 1.
func (a *App) concurrency() int {
	if a.config.Serial {
		return 1
	}
	if a.config.Concurrency > 0 {
		return a.config.Concurrency
	}
	if a.settings.Concurrency > 0 {
		return a.settings.Concurrency
	}
	return 0 // pool default
}

// outputDir resolves where output files land: CLI flag over settings file
// over the working directory.
func (a *App) outputDir() string {
	if a.config.OutputDir != "" {
		return a.config.OutputDir
	}
	if a.settings.OutputDir != "" {
		return a.settings.OutputDir
	}
	return "."
}

// writeFile writes content under the output directory, creating it first.
func (a *App) writeFile(name, content string) (string, error) {
	dir := a.outputDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

// dumpDefinition logs every parsed node at debug level.
func (a *App) dumpDefinition(def chain.Definition) {
	for name, node := range def {
		a.logger.Debug("Parsed node.",
			"node", name, "static", node.Static(), "refs", strings.Join(node.Refs, ", "), "bytes", len(node.Text))
	}
}

// dumpPlan logs the execution grouping at debug level.
func (a *App) dumpPlan(plan *graph.Plan) {
	for i, level := range plan.Levels {
		a.logger.Debug("Execution level.", "level", i, "nodes", strings.Join(level, ", "))
	}
}
