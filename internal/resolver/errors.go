package resolver

import (
	"fmt"
	"strings"
)

// NodeFailure identifies one failed node and its cause.
type NodeFailure struct {
	Node string
	Err  error
}

// RunError aggregates every node failure recorded before the run aborted.
// Failures within one level are collected together, so sibling diagnostics
// are never lost to the first failure.
type RunError struct {
	Failures []NodeFailure
}

// Error implements the error interface for RunError.
func (e *RunError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, fmt.Sprintf("[[%s]]: %v", f.Node, f.Err))
	}
	return fmt.Sprintf("chain resolution failed, %d node(s) failed: %s",
		len(e.Failures), strings.Join(parts, "; "))
}
