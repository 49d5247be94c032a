package schema

import (
	"errors"
	"fmt"
	"strings"
)

// Resolution errors.
var (
	// ErrNotFound indicates a path segment with no matching node.
	ErrNotFound = errors.New("not found")

	// ErrTypeMismatch indicates a node of the wrong kind for the operation.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrInvalidPath indicates an empty path or an empty segment.
	ErrInvalidPath = errors.New("invalid path")
)

// PathError records the path and segment that failed to resolve.
type PathError struct {
	Path    string
	Segment string
	Err     error
}

// Error implements error.
func (e *PathError) Error() string {
	if e.Segment == "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("%s: segment %q: %v", e.Path, e.Segment, e.Err)
}

// Unwrap returns the underlying sentinel.
func (e *PathError) Unwrap() error {
	return e.Err
}

// SplitPath splits a dotted path into segments.
func SplitPath(path string) ([]string, error) {
	if path == "" {
		return nil, &PathError{Path: path, Err: ErrInvalidPath}
	}
	segments := strings.Split(path, ".")
	for _, s := range segments {
		if s == "" {
			return nil, &PathError{Path: path, Err: ErrInvalidPath}
		}
	}
	return segments, nil
}

func joinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}

// Lookup returns the node at path. Any kind may be the final node.
func (r *Root) Lookup(path string) (*Node, error) {
	segments, err := SplitPath(path)
	if err != nil {
		return nil, err
	}

	level := r.members
	var node *Node
	for i, seg := range segments {
		node = nil
		for _, m := range level {
			if m.Name == seg {
				node = m
				break
			}
		}
		if node == nil {
			return nil, &PathError{Path: path, Segment: seg, Err: ErrNotFound}
		}
		if i < len(segments)-1 {
			if node.Kind != KindObject {
				return nil, &PathError{Path: path, Segment: seg, Err: ErrTypeMismatch}
			}
			level = node.Members
		}
	}
	return node, nil
}

// Resolve returns the descriptor of the leaf at path. Objects are not
// leaves and fail with ErrTypeMismatch.
func (r *Root) Resolve(path string) (Descriptor, error) {
	node, err := r.Lookup(path)
	if err != nil {
		return Descriptor{}, err
	}
	if node.Kind == KindObject {
		return Descriptor{}, &PathError{Path: path, Segment: node.Name, Err: ErrTypeMismatch}
	}
	return node.descriptor(path), nil
}

// WalkFunc is called for every leaf with its full dotted path.
// Returning an error stops the walk.
type WalkFunc func(path string, node *Node) error

// Walk visits scalar and function nodes in document order.
func (r *Root) Walk(fn WalkFunc) error {
	return walk(r.members, "", fn)
}

func walk(nodes []*Node, parent string, fn WalkFunc) error {
	for _, n := range nodes {
		path := joinPath(parent, n.Name)
		if n.Kind == KindObject {
			if err := walk(n.Members, path, fn); err != nil {
				return err
			}
			continue
		}
		if err := fn(path, n); err != nil {
			return err
		}
	}
	return nil
}
