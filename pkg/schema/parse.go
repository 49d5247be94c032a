package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/odrive-host/odrive-go/pkg/wire"
)

// ErrParse indicates a document that is not a valid schema.
var ErrParse = errors.New("schema parse error")

// rawNode is the JSON shape of a node.
type rawNode struct {
	Name    string     `json:"name"`
	ID      *int       `json:"id"`
	Type    string     `json:"type"`
	Access  string     `json:"access"`
	Members []*rawNode `json:"members"`
	Inputs  []*rawNode `json:"inputs"`
	Outputs []*rawNode `json:"outputs"`
}

// Parse builds a Root from a schema document. A top-level array lists the
// root members; a top-level object is a single root member.
func Parse(data []byte) (*Root, error) {
	trimmed := bytes.TrimSpace(data)
	// Devices may pad the final chunk with NUL bytes.
	trimmed = bytes.TrimRight(trimmed, "\x00")
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrParse)
	}

	var raws []*rawNode
	switch trimmed[0] {
	case '[':
		if err := json.Unmarshal(trimmed, &raws); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrParse, err)
		}
	case '{':
		var one rawNode
		if err := json.Unmarshal(trimmed, &one); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrParse, err)
		}
		raws = []*rawNode{&one}
	default:
		return nil, fmt.Errorf("%w: document must be an array or object", ErrParse)
	}

	members, err := buildNodes(raws, "")
	if err != nil {
		return nil, err
	}

	doc := make([]byte, len(data))
	copy(doc, data)
	return &Root{members: members, document: doc}, nil
}

func buildNodes(raws []*rawNode, parent string) ([]*Node, error) {
	nodes := make([]*Node, 0, len(raws))
	for i, raw := range raws {
		if raw == nil {
			return nil, fmt.Errorf("%w: %s[%d]: null node", ErrParse, parentLabel(parent), i)
		}
		n, err := buildNode(raw, parent)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

func buildNode(raw *rawNode, parent string) (*Node, error) {
	if raw.Name == "" {
		return nil, fmt.Errorf("%w: %s: node without name", ErrParse, parentLabel(parent))
	}
	path := joinPath(parent, raw.Name)
	if raw.Type == "" {
		return nil, fmt.Errorf("%w: %s: missing type", ErrParse, path)
	}

	n := &Node{Name: raw.Name, TypeName: raw.Type}
	var err error

	switch raw.Type {
	case "object":
		n.Kind = KindObject
		if n.Members, err = buildNodes(raw.Members, path); err != nil {
			return nil, err
		}
		return n, nil

	case "function":
		n.Kind = KindFunction
		if n.Inputs, err = buildNodes(raw.Inputs, path); err != nil {
			return nil, err
		}
		if n.Outputs, err = buildNodes(raw.Outputs, path); err != nil {
			return nil, err
		}

	default:
		n.Kind = KindScalar
		n.Type = wire.ParseType(raw.Type)
		access, ok := ParseAccess(raw.Access)
		if !ok {
			return nil, fmt.Errorf("%w: %s: unknown access %q", ErrParse, path, raw.Access)
		}
		n.Access = access
	}

	if raw.ID == nil {
		return nil, fmt.Errorf("%w: %s: missing id", ErrParse, path)
	}
	if *raw.ID < 0 || *raw.ID > int(wire.EndpointMask) {
		return nil, fmt.Errorf("%w: %s: id %d out of range", ErrParse, path, *raw.ID)
	}
	n.ID = uint16(*raw.ID)
	return n, nil
}

func parentLabel(parent string) string {
	if parent == "" {
		return "root"
	}
	return parent
}
