package resolver

import "sync/atomic"

// State is the execution state of a single node. Nodes move
// Pending -> Substituting -> Resolved for static nodes,
// Pending -> Substituting -> Generating -> Resolved for dynamic nodes,
// with Failed terminal from Substituting or Generating. Nodes cut off by an
// earlier failure stay Pending.
type State int32

const (
	StatePending State = iota
	StateSubstituting
	StateGenerating
	StateResolved
	StateFailed
)

// String implements fmt.Stringer for State.
func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateSubstituting:
		return "substituting"
	case StateGenerating:
		return "generating"
	case StateResolved:
		return "resolved"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// nodeState holds a node's state for atomic access from pool workers.
type nodeState struct {
	v atomic.Int32
}

func (n *nodeState) get() State {
	return State(n.v.Load())
}

func (n *nodeState) set(s State) {
	n.v.Store(int32(s))
}
