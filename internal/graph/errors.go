package graph

import (
	"fmt"
	"strings"
)

// UnknownReferenceError reports a node referencing an identifier that is
// neither a declared node nor the reserved input.
type UnknownReferenceError struct {
	Node      string
	Reference string
}

// Error implements the error interface for UnknownReferenceError.
func (e *UnknownReferenceError) Error() string {
	return fmt.Sprintf("node %q references unknown node %q", e.Node, e.Reference)
}

// MissingTerminalError reports a chain without the mandatory terminal node.
type MissingTerminalError struct {
	Terminal string
}

// Error implements the error interface for MissingTerminalError.
func (e *MissingTerminalError) Error() string {
	return fmt.Sprintf("chain does not declare the required %q node", e.Terminal)
}

// CycleError reports a circular reference. Path holds the identifiers along
// the cycle, starting and ending with the same node.
type CycleError struct {
	Path []string
}

// Error implements the error interface for CycleError.
func (e *CycleError) Error() string {
	return fmt.Sprintf("circular dependency detected: %s", strings.Join(e.Path, " -> "))
}
