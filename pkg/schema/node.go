package schema

import (
	"strings"

	"github.com/odrive-host/odrive-go/pkg/wire"
)

// Kind is the closed set of node kinds.
type Kind uint8

const (
	KindObject Kind = iota
	KindScalar
	KindFunction
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindObject:
		return "object"
	case KindScalar:
		return "scalar"
	case KindFunction:
		return "function"
	default:
		return "unknown"
	}
}

// Access is the access mode of a scalar endpoint.
type Access uint8

const (
	ReadWrite Access = iota
	ReadOnly
)

// String returns the access name as used in schema documents.
func (a Access) String() string {
	if a == ReadOnly {
		return "readonly"
	}
	return "readwrite"
}

// ParseAccess maps a schema access string. An empty string is ReadWrite.
func ParseAccess(s string) (Access, bool) {
	switch strings.ToLower(s) {
	case "", "rw", "w", "readwrite":
		return ReadWrite, true
	case "r", "ro", "readonly":
		return ReadOnly, true
	default:
		return ReadWrite, false
	}
}

// Node is one element of the schema tree.
type Node struct {
	Name string
	Kind Kind

	// ID is the endpoint id (scalar and function nodes).
	ID uint16

	// TypeName is the type string from the document.
	TypeName string

	// Type and Access apply to scalar nodes. Type is wire.TypeUnknown for
	// device types the host cannot decode.
	Type   wire.Type
	Access Access

	// Members are the children of an object node in document order.
	Members []*Node

	// Inputs and Outputs describe a function's arguments.
	Inputs  []*Node
	Outputs []*Node
}

// Member returns the first member named name.
func (n *Node) Member(name string) *Node {
	for _, m := range n.Members {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// Descriptor is the resolved form of a leaf endpoint.
type Descriptor struct {
	ID     uint16
	Kind   Kind
	Type   wire.Type
	Access Access
	Path   string
}

// Writable reports whether the descriptor accepts writes.
func (d Descriptor) Writable() bool {
	return d.Kind == KindScalar && d.Access == ReadWrite
}

func (n *Node) descriptor(path string) Descriptor {
	return Descriptor{
		ID:     n.ID,
		Kind:   n.Kind,
		Type:   n.Type,
		Access: n.Access,
		Path:   path,
	}
}

// Root is a parsed schema document.
type Root struct {
	members  []*Node
	document []byte
}

// Members returns the top-level nodes.
func (r *Root) Members() []*Node {
	return r.members
}

// Document returns the raw document bytes.
func (r *Root) Document() []byte {
	return r.document
}
