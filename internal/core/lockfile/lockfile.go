package lockfile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// LockfileName is the lock document's file name at the project root.
const LockfileName = "pypackages.lock.json"

// DefaultSectionKey is the reserved key of the default/root section node.
const DefaultSectionKey = ""

// Lock is the parsed lock document: the source table plus the fully linked
// dependency graph. It is only ever constructed with every edge resolved;
// a half-built graph is not representable outside this package.
type Lock struct {
	sources      Sources
	dependencies map[string]*Dependency
}

// Sources returns the named index table.
func (l *Lock) Sources() Sources {
	return l.sources
}

// Get looks a dependency node up by key.
func (l *Lock) Get(key string) (*Dependency, bool) {
	d, ok := l.dependencies[key]
	return d, ok
}

// Default returns the default section node (key ""), if present.
func (l *Lock) Default() (*Dependency, bool) {
	return l.Get(DefaultSectionKey)
}

// Extra returns the section node for a named extra, if present. Extras are
// stored under bracketed keys, so the extra "tests" lives at "[tests]".
func (l *Lock) Extra(name string) (*Dependency, bool) {
	return l.Get(ExtraSectionKey(name))
}

// ExtraSectionKey returns the dependency key that holds a named extra.
func ExtraSectionKey(name string) string {
	return "[" + name + "]"
}

// Keys returns every dependency key in sorted order.
func (l *Lock) Keys() []string {
	keys := make([]string, 0, len(l.dependencies))
	for k := range l.dependencies {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Parse reads a lock document and builds the dependency graph.
//
// The build runs in two phases. Phase one materializes a node per key,
// resolving the inline package against the source table and the key's hash
// entry, and records the outgoing edge specifications on the side. Phase two
// links the edges against the completed node table, so an edge can never
// point at a node that does not exist once Parse returns. Any failure in
// either phase rejects the whole document.
func Parse(data []byte) (*Lock, error) {
	var doc struct {
		Sources      Sources                    `json:"sources"`
		Dependencies map[string]dependencyEntry `json:"dependencies"`
		Hashes       map[string]*Hashes         `json:"hashes"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing lock file: %w", err)
	}

	nodes := make(map[string]*Dependency, len(doc.Dependencies))
	links := make(map[string]map[string]*Marker, len(doc.Dependencies))
	for key, entry := range doc.Dependencies {
		node, refs, err := entry.toUnlinkedDependency(key, doc.Sources, doc.Hashes[key])
		if err != nil {
			return nil, fmt.Errorf("dependency %q: %w", key, err)
		}
		nodes[key] = node
		links[key] = refs
	}

	for key, node := range nodes {
		refs := links[key]
		children := make([]string, 0, len(refs))
		for child := range refs {
			children = append(children, child)
		}
		sort.Strings(children)
		for _, child := range children {
			target, ok := nodes[child]
			if !ok {
				return nil, fmt.Errorf("dependency %q: unresolvable dependency key %q", key, child)
			}
			node.edges = append(node.edges, Edge{To: target, Marker: refs[child]})
		}
	}

	return &Lock{sources: doc.Sources, dependencies: nodes}, nil
}

// Load reads and parses the lock document from the given project root.
func Load(projectRoot string) (*Lock, error) {
	path := filepath.Join(projectRoot, LockfileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading lock file %s: %w", path, err)
	}
	return Parse(data)
}
