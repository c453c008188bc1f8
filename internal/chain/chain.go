// Package chain parses prompt-chain files into named node definitions.
//
// A chain file declares nodes with marker lines of the form `[[name]] =`;
// the node's body runs from the end of the marker to the next marker or the
// end of the file. Inside a body, `[[name]]` is a reference to another node.
// The name "input text" is reserved for the externally supplied input and
// must not be declared, and every chain must eventually declare an "output"
// node, which is validated when the dependency graph is built.
package chain

// InputName is the reserved identifier bound to the externally supplied
// initial input text. It is never declared inside a chain file.
const InputName = "input text"

// TerminalName is the reserved identifier of the mandatory terminal node
// whose resolved value is the chain's final output.
const TerminalName = "output"

// Node is a single named template entry in a chain definition.
type Node struct {
	// Name is the unique, case-sensitive identifier of the node.
	Name string
	// Text is the node's template body, surrounding whitespace trimmed,
	// internal formatting preserved verbatim.
	Text string
	// Refs lists the identifiers referenced inside Text, duplicates
	// collapsed, first-occurrence order preserved.
	Refs []string
	// IsInput marks the reserved input node. It is never set on nodes
	// parsed from a chain file.
	IsInput bool
}

// Static reports whether the node resolves without a generation call.
// A node is static exactly when it references nothing.
func (n *Node) Static() bool {
	return len(n.Refs) == 0
}

// Definition maps node identifiers to their parsed nodes.
type Definition map[string]*Node

// Names returns all declared node identifiers in unspecified order.
func (d Definition) Names() []string {
	names := make([]string, 0, len(d))
	for name := range d {
		names = append(names, name)
	}
	return names
}
