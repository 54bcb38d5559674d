package lockfile

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Marker guards a dependency edge with raw PEP 508 condition strings. The
// edge is taken when the target environment matches any listed condition.
//
// A nil *Marker (null in the document) is not the same thing as an attached
// Marker with zero conditions: nil means the edge is unconditional and is
// always taken, while an empty Marker matches "any of nothing" and is never
// taken. Both sides of that asymmetry are load-bearing.
type Marker struct {
	conditions []string
}

// NewMarker builds a marker from raw condition strings.
func NewMarker(conditions ...string) *Marker {
	return &Marker{conditions: conditions}
}

// Conditions returns the raw condition strings in document order.
func (m *Marker) Conditions() []string {
	return m.conditions
}

// Expression joins the conditions into the single boolean expression
// submitted to the marker evaluator: each condition parenthesized, joined
// with " or ". An empty marker yields "", which callers must treat as false
// without consulting the evaluator.
func (m *Marker) Expression() string {
	if len(m.conditions) == 0 {
		return ""
	}
	parts := make([]string, len(m.conditions))
	for i, c := range m.conditions {
		parts[i] = "(" + c + ")"
	}
	return strings.Join(parts, " or ")
}

func (m *Marker) UnmarshalJSON(data []byte) error {
	var conditions []string
	if err := json.Unmarshal(data, &conditions); err != nil {
		return err
	}
	if conditions == nil {
		conditions = []string{}
	}
	m.conditions = conditions
	return nil
}

// Edge is one outgoing dependency reference. Marker is nil for
// unconditional edges.
type Edge struct {
	To     *Dependency
	Marker *Marker
}

// Dependency is a node in the lock graph: a key, an optional package
// payload, and guarded edges to other nodes. Section nodes (the default
// section, named extras) carry no package and exist only to group edges.
//
// Nodes are shared: every edge to the same key points at the same
// *Dependency, so a package reachable from several parents stays one
// logical entity.
type Dependency struct {
	key    string
	python *PythonPackage
	edges  []Edge
}

// Key returns the node's unique key within its Lock.
func (d *Dependency) Key() string {
	return d.key
}

// Python returns the package payload, or nil for pure section nodes.
func (d *Dependency) Python() *PythonPackage {
	return d.python
}

// Edges returns the outgoing edges in deterministic (key-sorted) order.
func (d *Dependency) Edges() []Edge {
	return d.edges
}

// dependencyEntry is the raw body of one dependency key: an optional inline
// package and the outgoing edge specifications. Edges are linked in a later
// pass, once every node exists.
type dependencyEntry struct {
	python       *packageEntry
	dependencies map[string]*Marker
}

func (e *dependencyEntry) UnmarshalJSON(data []byte) error {
	return decodeObject(data, func(key string, dec *json.Decoder) error {
		switch key {
		case "python":
			if e.python != nil {
				return fmt.Errorf("duplicate field %q", "python")
			}
			var entry packageEntry
			if err := decodeValue(dec, &entry); err != nil {
				return err
			}
			e.python = &entry
		case "dependencies":
			if e.dependencies != nil {
				return fmt.Errorf("duplicate field %q", "dependencies")
			}
			var refs map[string]*Marker
			if err := decodeValue(dec, &refs); err != nil {
				return err
			}
			if refs == nil {
				refs = map[string]*Marker{}
			}
			e.dependencies = refs
		default:
			return fmt.Errorf("unknown field %q in dependency", key)
		}
		return nil
	})
}

// toUnlinkedDependency resolves the inline package (if any) and returns the
// bare node plus its not-yet-linked edge specification.
func (e *dependencyEntry) toUnlinkedDependency(key string, sources Sources, hashes *Hashes) (*Dependency, map[string]*Marker, error) {
	var pkg *PythonPackage
	if e.python != nil {
		p, err := e.python.toPackage(sources, hashes)
		if err != nil {
			return nil, nil, err
		}
		pkg = p
	}
	refs := e.dependencies
	if refs == nil {
		refs = map[string]*Marker{}
	}
	return &Dependency{key: key, python: pkg}, refs, nil
}
