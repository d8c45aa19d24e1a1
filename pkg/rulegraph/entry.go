package rulegraph

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidEntry indicates a graph entry that is neither a rule name nor a
// single-key mapping of a rule name to child entries.
var ErrInvalidEntry = errors.New("invalid graph entry")

// Entry is a rule graph entry. It is either a leaf, naming a single rule, or
// a node, naming a rule whose children are evaluated when it is satisfied.
//
// Leaves have nil Children. A node may have an empty, non-nil Children.
type Entry struct {
	Name     string
	Children []Entry
}

// Leaf returns a leaf [Entry] for the named rule.
func Leaf(name string) Entry {
	return Entry{Name: name}
}

// Node returns a node [Entry] for the named rule with the given children.
func Node(name string, children ...Entry) Entry {
	if children == nil {
		children = []Entry{}
	}

	return Entry{Name: name, Children: children}
}

// IsLeaf reports whether e is a leaf entry.
func (e Entry) IsLeaf() bool {
	return e.Children == nil
}

// Walk calls fn for e and every descendant of e, depth-first, in declaration
// order. Depth is 0 for e.
func (e Entry) Walk(fn func(e Entry, depth int)) {
	e.walk(fn, 0)
}

func (e Entry) walk(fn func(e Entry, depth int), depth int) {
	fn(e, depth)

	for _, c := range e.Children {
		c.walk(fn, depth+1)
	}
}

func (e Entry) value() any {
	if e.IsLeaf() {
		return e.Name
	}

	return map[string][]Entry{e.Name: e.Children}
}

func (e *Entry) set(leaf *string, node map[string][]Entry) error {
	if leaf != nil {
		if *leaf == "" {
			return fmt.Errorf("%w: empty rule name", ErrInvalidEntry)
		}

		*e = Leaf(*leaf)

		return nil
	}

	if len(node) != 1 {
		return fmt.Errorf("%w: node must have exactly one key, got %d", ErrInvalidEntry, len(node))
	}

	for name, children := range node {
		if name == "" {
			return fmt.Errorf("%w: empty rule name", ErrInvalidEntry)
		}

		*e = Node(name, children...)
	}

	return nil
}

// MarshalYAML encodes leaves as strings and nodes as single-key mappings.
func (e Entry) MarshalYAML() (any, error) {
	return e.value(), nil
}

// UnmarshalYAML decodes a rule name or a single-key mapping of a rule name
// to child entries.
func (e *Entry) UnmarshalYAML(unmarshal func(any) error) error {
	var raw any

	err := unmarshal(&raw)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidEntry, err)
	}

	switch v := raw.(type) {
	case string:
		return e.set(&v, nil)
	case map[string]any:
		var node map[string][]Entry

		err = unmarshal(&node)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidEntry, err)
		}

		return e.set(nil, node)
	default:
		return fmt.Errorf("%w: expected rule name or mapping, got %T", ErrInvalidEntry, raw)
	}
}

// MarshalJSON implements [json.Marshaler].
func (e Entry) MarshalJSON() ([]byte, error) {
	b, err := json.Marshal(e.value())
	if err != nil {
		return nil, fmt.Errorf("marshal entry %q: %w", e.Name, err)
	}

	return b, nil
}

// UnmarshalJSON implements [json.Unmarshaler].
func (e *Entry) UnmarshalJSON(data []byte) error {
	var name string

	err := json.Unmarshal(data, &name)
	if err == nil {
		return e.set(&name, nil)
	}

	var node map[string][]Entry

	err = json.Unmarshal(data, &node)
	if err != nil {
		return fmt.Errorf("%w: expected rule name or object: %w", ErrInvalidEntry, err)
	}

	return e.set(nil, node)
}
