package schema

import (
	"io"

	"gopkg.in/yaml.v3"
)

// exportNode is the YAML shape of a node.
type exportNode struct {
	Name    string        `yaml:"name"`
	ID      *uint16       `yaml:"id,omitempty"`
	Type    string        `yaml:"type"`
	Access  string        `yaml:"access,omitempty"`
	Members []*exportNode `yaml:"members,omitempty"`
	Inputs  []*exportNode `yaml:"inputs,omitempty"`
	Outputs []*exportNode `yaml:"outputs,omitempty"`
}

func toExport(nodes []*Node) []*exportNode {
	if len(nodes) == 0 {
		return nil
	}
	out := make([]*exportNode, len(nodes))
	for i, n := range nodes {
		e := &exportNode{Name: n.Name, Type: n.TypeName}
		switch n.Kind {
		case KindObject:
			e.Members = toExport(n.Members)
		case KindFunction:
			id := n.ID
			e.ID = &id
			e.Inputs = toExport(n.Inputs)
			e.Outputs = toExport(n.Outputs)
		case KindScalar:
			id := n.ID
			e.ID = &id
			e.Access = n.Access.String()
		}
		out[i] = e
	}
	return out
}

// ExportYAML writes the tree as YAML.
func (r *Root) ExportYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(toExport(r.members)); err != nil {
		return err
	}
	return enc.Close()
}
