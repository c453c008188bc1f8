package chain

import (
	"fmt"
	"regexp"
	"strings"
)

// markerRe matches the start of a node declaration: `[[name]] =`.
var markerRe = regexp.MustCompile(`\[\[(.+?)\]\]\s*=`)

// refRe matches a reference to another node inside a node body.
var refRe = regexp.MustCompile(`\[\[([^\]]+)\]\]`)

// ParseError describes a chain file that could not be parsed. Node carries
// the offending identifier when one is known.
type ParseError struct {
	Node   string
	Reason string
}

// Error implements the error interface for ParseError.
func (e *ParseError) Error() string {
	if e.Node == "" {
		return fmt.Sprintf("chain parse error: %s", e.Reason)
	}
	return fmt.Sprintf("chain parse error: node %q: %s", e.Node, e.Reason)
}

// Parse turns the full text of a chain file into a Definition.
//
// It fails with a *ParseError when the file declares no nodes at all, when a
// declared name is empty, when the same name is declared twice, or when the
// reserved input name is declared by the user. Parse performs no dependency
// validation; it only extracts each node's reference list.
func Parse(content string) (Definition, error) {
	markers := markerRe.FindAllStringSubmatchIndex(content, -1)
	if len(markers) == 0 {
		return nil, &ParseError{Reason: "no node declarations found"}
	}

	def := make(Definition, len(markers))
	for i, m := range markers {
		name := strings.TrimSpace(content[m[2]:m[3]])
		if name == "" {
			return nil, &ParseError{Reason: "node declaration with empty name"}
		}
		if name == InputName {
			return nil, &ParseError{Node: name, Reason: "reserved name must not be declared"}
		}
		if _, dup := def[name]; dup {
			return nil, &ParseError{Node: name, Reason: "duplicate declaration"}
		}

		// The body runs from the end of this marker to the start of the
		// next one, or to the end of the file for the last node.
		bodyStart := m[1]
		bodyEnd := len(content)
		if i+1 < len(markers) {
			bodyEnd = markers[i+1][0]
		}
		body := strings.TrimSpace(content[bodyStart:bodyEnd])

		def[name] = &Node{
			Name: name,
			Text: body,
			Refs: extractRefs(body),
		}
	}
	return def, nil
}

// extractRefs tokenizes a node body into its typed reference list,
// collapsing duplicates while preserving first-occurrence order.
func extractRefs(body string) []string {
	var refs []string
	seen := make(map[string]struct{})
	for _, m := range refRe.FindAllStringSubmatch(body, -1) {
		ref := m[1]
		if _, ok := seen[ref]; ok {
			continue
		}
		seen[ref] = struct{}{}
		refs = append(refs, ref)
	}
	return refs
}
