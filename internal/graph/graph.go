// Package graph validates the reference edges of a chain definition and
// computes the execution-level plan the resolver schedules from.
//
// The depth of a node is its longest reference path down to a
// dependency-free node: nodes with no references (and the reserved input)
// sit at depth 0, every other node at 1 + the maximum depth of its
// references. Nodes sharing a depth never reference one another, so each
// depth forms one unit of parallel dispatch.
package graph

import (
	"context"
	"sort"

	"github.com/greg-randall/prmptr/internal/chain"
	"github.com/greg-randall/prmptr/internal/ctxlog"
)

// Plan is the validated, leveled view of a chain definition. It is built
// once and read-only afterwards.
type Plan struct {
	// Levels holds the identifiers scheduled at each depth, ascending from
	// 0. Only nodes reachable from the terminal appear; names within a
	// level are sorted for stable logs.
	Levels [][]string

	// Depth assigns every declared node (and the reserved input, when
	// referenced) its computed depth, including dead nodes.
	Depth map[string]int

	reachable map[string]bool
}

// Reachable reports whether the named node is reachable from the terminal
// node and therefore scheduled for execution.
func (p *Plan) Reachable(name string) bool {
	return p.reachable[name]
}

// NodeCount returns the number of nodes the plan schedules.
func (p *Plan) NodeCount() int {
	n := 0
	for _, level := range p.Levels {
		n += len(level)
	}
	return n
}

// colors for the depth traversal.
const (
	white = iota // unvisited
	gray         // in progress on the current traversal stack
	black        // done, depth finalized
)

// frame is one entry of the explicit traversal stack.
type frame struct {
	name string
	next int // index of the next reference to descend into
}

// Build validates the reference edges of def and computes its level plan.
//
// It fails with *MissingTerminalError when def lacks the terminal node,
// *UnknownReferenceError when a node references an undeclared identifier,
// and *CycleError when the references form a cycle. Validation happens
// before any execution starts, so a structurally broken chain never costs a
// generation call. Dead nodes are validated and depth-assigned but excluded
// from the levels.
func Build(ctx context.Context, def chain.Definition) (*Plan, error) {
	logger := ctxlog.FromContext(ctx)

	if _, ok := def[chain.TerminalName]; !ok {
		return nil, &MissingTerminalError{Terminal: chain.TerminalName}
	}

	names := def.Names()
	sort.Strings(names)

	// Edge validation first: every reference must name a declared node or
	// the reserved input.
	inputUsed := false
	for _, name := range names {
		for _, ref := range def[name].Refs {
			if ref == chain.InputName {
				inputUsed = true
				continue
			}
			if _, ok := def[ref]; !ok {
				return nil, &UnknownReferenceError{Node: name, Reference: ref}
			}
		}
	}

	depth := make(map[string]int, len(def)+1)
	if inputUsed {
		depth[chain.InputName] = 0
	}
	if err := computeDepths(names, def, depth); err != nil {
		return nil, err
	}
	logger.Debug("Depth computation complete.", "nodes", len(depth))

	plan := &Plan{
		Depth:     depth,
		reachable: reachableFrom(chain.TerminalName, def),
	}

	maxDepth := 0
	for name := range plan.reachable {
		if d := depth[name]; d > maxDepth {
			maxDepth = d
		}
	}
	plan.Levels = make([][]string, maxDepth+1)
	for name := range plan.reachable {
		d := depth[name]
		plan.Levels[d] = append(plan.Levels[d], name)
	}
	for _, level := range plan.Levels {
		sort.Strings(level)
	}
	logger.Debug("Level plan built.", "levels", len(plan.Levels), "scheduled", plan.NodeCount(), "declared", len(def))

	return plan, nil
}

// computeDepths walks every node with an explicit stack and three-color
// marking, filling depth in place. A gray node encountered again is a cycle.
func computeDepths(names []string, def chain.Definition, depth map[string]int) error {
	colors := make(map[string]int, len(def))

	for _, root := range names {
		if colors[root] != white {
			continue
		}
		stack := []*frame{{name: root}}
		colors[root] = gray

		for len(stack) > 0 {
			f := stack[len(stack)-1]
			refs := def[f.name].Refs

			if f.next < len(refs) {
				ref := refs[f.next]
				f.next++
				if ref == chain.InputName {
					continue // always depth 0, nothing to descend into
				}
				switch colors[ref] {
				case black:
					// already finalized
				case gray:
					return &CycleError{Path: cyclePath(stack, ref)}
				default:
					colors[ref] = gray
					stack = append(stack, &frame{name: ref})
				}
				continue
			}

			// All references finalized; this node's depth is one past the
			// deepest of them, or 0 for a reference-free node.
			d := 0
			for _, ref := range refs {
				if rd := depth[ref] + 1; rd > d {
					d = rd
				}
			}
			depth[f.name] = d
			colors[f.name] = black
			stack = stack[:len(stack)-1]
		}
	}
	return nil
}

// cyclePath reconstructs the cycle from the traversal stack, from the first
// occurrence of name back around to name itself.
func cyclePath(stack []*frame, name string) []string {
	start := 0
	for i, f := range stack {
		if f.name == name {
			start = i
			break
		}
	}
	path := make([]string, 0, len(stack)-start+1)
	for _, f := range stack[start:] {
		path = append(path, f.name)
	}
	return append(path, name)
}

// reachableFrom collects every identifier reachable from root by following
// references, including the reserved input when referenced.
func reachableFrom(root string, def chain.Definition) map[string]bool {
	reachable := make(map[string]bool)
	queue := []string{root}
	reachable[root] = true
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		node, ok := def[name]
		if !ok {
			continue // the reserved input has no outgoing references
		}
		for _, ref := range node.Refs {
			if !reachable[ref] {
				reachable[ref] = true
				queue = append(queue, ref)
			}
		}
	}
	return reachable
}
