// Package resolver schedules and executes a leveled chain plan.
//
// Levels run strictly in ascending depth order with a join barrier between
// them: no node of level N+1 starts before every node of level N has
// resolved or failed. Within a level every node is dispatched concurrently
// to the worker pool; nodes of one level never depend on each other, so
// substitution only reads values finalized behind the barrier. Each node
// resolves exactly once and its value is memoized for every dependent.
package resolver

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/greg-randall/prmptr/internal/chain"
	"github.com/greg-randall/prmptr/internal/ctxlog"
	"github.com/greg-randall/prmptr/internal/graph"
	"github.com/greg-randall/prmptr/internal/trace"
	"github.com/greg-randall/prmptr/internal/workpool"
)

// Generator is the external text-generation capability a dynamic node uses
// to produce its resolved value.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Resolver walks a level plan and resolves every scheduled node.
type Resolver struct {
	def  chain.Definition
	plan *graph.Plan
	gen  Generator
	pool *workpool.Pool
	rec  *trace.Recorder

	// mu guards values and failures during a level; reads of dependency
	// values happen only after the writer's level has joined.
	mu       sync.Mutex
	values   map[string]string
	failures []NodeFailure

	states map[string]*nodeState
}

// New creates a resolver for one run. The recorder is owned by the caller
// and receives one record per resolved or failed node.
func New(def chain.Definition, plan *graph.Plan, gen Generator, pool *workpool.Pool, rec *trace.Recorder) *Resolver {
	r := &Resolver{
		def:    def,
		plan:   plan,
		gen:    gen,
		pool:   pool,
		rec:    rec,
		values: make(map[string]string, plan.NodeCount()),
		states: make(map[string]*nodeState, plan.NodeCount()),
	}
	for _, level := range plan.Levels {
		for _, name := range level {
			r.states[name] = &nodeState{}
		}
	}
	return r
}

// State returns the current state of the named node.
func (r *Resolver) State(name string) State {
	st, ok := r.states[name]
	if !ok {
		return StatePending
	}
	return st.get()
}

// Resolve executes the plan against the supplied initial input and returns
// the resolved value of the terminal node.
//
// On the first level containing a failure, the level's remaining nodes
// still finish naturally, every failure is recorded, and no further level
// is dispatched; the run then returns a *RunError carrying all of them.
func (r *Resolver) Resolve(ctx context.Context, input string) (string, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Info("Starting chain resolution.",
		"run_id", r.rec.RunID(), "levels", len(r.plan.Levels), "nodes", r.plan.NodeCount(), "workers", r.pool.Limit())

	for idx, level := range r.plan.Levels {
		logger.Debug("Dispatching level.", "level", idx, "nodes", strings.Join(level, ", "))

		tasks := make([]workpool.Task, 0, len(level))
		for _, name := range level {
			name := name
			levelIdx := idx
			tasks = append(tasks, func(ctx context.Context) {
				r.resolveNode(ctx, name, levelIdx, input)
			})
		}
		r.pool.Run(ctx, tasks)

		// Join barrier: the level is fully settled here. Abort before the
		// next level once any failure is recorded.
		if len(r.failures) > 0 {
			logger.Error("Aborting run after failed level.", "level", idx, "failed", len(r.failures))
			return "", &RunError{Failures: r.failures}
		}
		if err := ctx.Err(); err != nil {
			return "", err
		}
	}

	out := r.values[chain.TerminalName]
	logger.Info("Chain resolution complete.", "run_id", r.rec.RunID(), "elapsed", r.rec.Elapsed())
	return out, nil
}

// resolveNode resolves a single node (one unit of pool work) and appends
// its execution record.
func (r *Resolver) resolveNode(ctx context.Context, name string, level int, input string) {
	logger := ctxlog.FromContext(ctx).With("node", name, "level", level)
	start := time.Now()
	state := r.states[name]
	state.set(StateSubstituting)

	// The reserved input is bound directly to the supplied initial value.
	if name == chain.InputName {
		r.finish(name, level, trace.Record{
			Node:     name,
			Static:   true,
			Level:    level,
			Value:    input,
			Duration: time.Since(start),
		})
		logger.Debug("Reserved input bound.")
		return
	}

	node := r.def[name]
	if node.Static() {
		// Static injection: the stored text verbatim, no generation call.
		r.finish(name, level, trace.Record{
			Node:     name,
			Static:   true,
			Level:    level,
			Value:    node.Text,
			Duration: time.Since(start),
		})
		logger.Debug("Static node resolved.", "duration", time.Since(start))
		return
	}

	prompt, err := r.substitute(node)
	if err != nil {
		r.fail(name, level, "", err, time.Since(start))
		logger.Error("Substitution failed.", "error", err)
		return
	}

	state.set(StateGenerating)
	value, err := r.gen.Generate(ctx, prompt)
	if err != nil {
		r.fail(name, level, prompt, err, time.Since(start))
		logger.Error("Generation failed.", "error", err, "duration", time.Since(start))
		return
	}

	r.finish(name, level, trace.Record{
		Node:     name,
		Level:    level,
		Prompt:   prompt,
		Value:    value,
		Duration: time.Since(start),
	})
	logger.Info("Node resolved.", "duration", time.Since(start))
}

// substitute replaces every reference occurrence in the node's text with
// the referenced node's memoized value. Dependencies sit in strictly
// earlier, already-joined levels, so this never blocks.
func (r *Resolver) substitute(node *chain.Node) (string, error) {
	text := node.Text
	for _, ref := range node.Refs {
		r.mu.Lock()
		value, ok := r.values[ref]
		r.mu.Unlock()
		if !ok {
			return "", fmt.Errorf("dependency [[%s]] has no resolved value", ref)
		}
		text = strings.ReplaceAll(text, "[["+ref+"]]", value)
	}
	return text, nil
}

// finish memoizes the node's value (written exactly once, by this unit
// only) and appends its record.
func (r *Resolver) finish(name string, level int, rec trace.Record) {
	r.mu.Lock()
	r.values[name] = rec.Value
	r.mu.Unlock()
	r.states[name].set(StateResolved)
	r.rec.Append(rec)
}

// fail records a node failure. The containing level still finishes its
// other nodes; the barrier check aborts the run afterwards.
func (r *Resolver) fail(name string, level int, prompt string, err error, d time.Duration) {
	r.states[name].set(StateFailed)
	r.rec.Append(trace.Record{
		Node:     name,
		Level:    level,
		Prompt:   prompt,
		Err:      err,
		Duration: d,
	})
	r.mu.Lock()
	r.failures = append(r.failures, NodeFailure{Node: name, Err: err})
	r.mu.Unlock()
}
