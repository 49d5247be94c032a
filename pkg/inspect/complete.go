package inspect

import (
	"sort"
	"strings"

	"github.com/odrive-host/odrive-go/pkg/schema"
)

// Complete returns the dotted paths that extend prefix by one segment.
// Objects are returned with a trailing dot.
func Complete(root *schema.Root, prefix string) []string {
	if root == nil {
		return nil
	}

	parent, partial := "", prefix
	if i := strings.LastIndex(prefix, "."); i >= 0 {
		parent, partial = prefix[:i], prefix[i+1:]
	}

	level := root.Members()
	if parent != "" {
		n, err := root.Lookup(parent)
		if err != nil || n.Kind != schema.KindObject {
			return nil
		}
		level = n.Members
	}

	var out []string
	for _, m := range level {
		if !strings.HasPrefix(m.Name, partial) {
			continue
		}
		path := m.Name
		if parent != "" {
			path = parent + "." + m.Name
		}
		if m.Kind == schema.KindObject {
			path += "."
		}
		out = append(out, path)
	}
	sort.Strings(out)
	return out
}
