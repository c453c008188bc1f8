// Package testutil provides shared helpers for exercising the resolver
// without a real generation backend.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// FakeGenerator is a deterministic, instrumented stand-in for the
// generation capability. It wraps every prompt in gen(...) so tests can
// assert exact substitution, counts calls, and tracks the maximum number of
// calls in flight at once.
type FakeGenerator struct {
	// Delay is slept inside every call, widening the in-flight window.
	Delay time.Duration
	// FailSubstring makes any call whose prompt contains it fail.
	FailSubstring string

	mu       sync.Mutex
	prompts  []string
	inFlight atomic.Int32
	maxSeen  atomic.Int32
}

// Generate implements the resolver.Generator interface.
func (g *FakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	cur := g.inFlight.Add(1)
	defer g.inFlight.Add(-1)
	for {
		max := g.maxSeen.Load()
		if cur <= max || g.maxSeen.CompareAndSwap(max, cur) {
			break
		}
	}

	if g.Delay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(g.Delay):
		}
	}

	g.mu.Lock()
	g.prompts = append(g.prompts, prompt)
	g.mu.Unlock()

	if g.FailSubstring != "" && strings.Contains(prompt, g.FailSubstring) {
		return "", fmt.Errorf("simulated generation failure for prompt %q", prompt)
	}
	return "gen(" + prompt + ")", nil
}

// Prompts returns every prompt received so far, in call-completion order.
func (g *FakeGenerator) Prompts() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]string, len(g.prompts))
	copy(out, g.prompts)
	return out
}

// Calls returns the total number of generation calls made.
func (g *FakeGenerator) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.prompts)
}

// MaxInFlight returns the highest number of simultaneous calls observed.
func (g *FakeGenerator) MaxInFlight() int {
	return int(g.maxSeen.Load())
}
