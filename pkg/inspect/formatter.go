package inspect

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/odrive-host/odrive-go/pkg/schema"
)

// Formatter formats inspection output.
type Formatter struct {
	// ShowMetadata includes type and access information
	ShowMetadata bool

	// ShowIDs includes endpoint IDs alongside names
	ShowIDs bool

	// IndentWidth is the number of spaces per indent level
	IndentWidth int
}

// NewFormatter creates a new Formatter with default settings.
func NewFormatter() *Formatter {
	return &Formatter{
		ShowMetadata: true,
		ShowIDs:      false,
		IndentWidth:  2,
	}
}

// Indent returns the content with indentation.
func (f *Formatter) Indent(depth int, content string) string {
	width := f.IndentWidth
	if width == 0 {
		width = 2
	}
	indent := strings.Repeat(" ", depth*width)
	return indent + content
}

// FormatValue formats a decoded endpoint value for display.
func (f *Formatter) FormatValue(value any) string {
	if value == nil {
		return "null"
	}

	switch v := value.(type) {
	case bool:
		return strconv.FormatBool(v)
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case int8, int16, int32, int64:
		return fmt.Sprintf("%d", v)
	case uint8, uint16, uint32:
		return fmt.Sprintf("%d", v)
	case uint64:
		return fmt.Sprintf("%d (0x%X)", v, v)
	case []byte:
		return fmt.Sprintf("0x%x", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// FormatAccess formats an access mode for display.
func FormatAccess(access schema.Access) string {
	switch access {
	case schema.ReadOnly:
		return "read-only"
	case schema.ReadWrite:
		return "read-write"
	default:
		return fmt.Sprintf("access(%d)", access)
	}
}

// FormatDescriptor formats a resolved descriptor on one line.
func (f *Formatter) FormatDescriptor(d schema.Descriptor) string {
	var sb strings.Builder
	sb.WriteString(d.Path)
	if f.ShowIDs {
		fmt.Fprintf(&sb, " [%d]", d.ID)
	}
	if f.ShowMetadata {
		switch d.Kind {
		case schema.KindScalar:
			fmt.Fprintf(&sb, " (%s, %s)", d.Type, FormatAccess(d.Access))
		case schema.KindFunction:
			sb.WriteString(" (function)")
		}
	}
	return sb.String()
}

// FormatTree formats the subtree at prefix, or the whole schema when
// prefix is empty.
func (f *Formatter) FormatTree(root *schema.Root, prefix string) (string, error) {
	nodes := root.Members()
	if prefix != "" {
		n, err := root.Lookup(prefix)
		if err != nil {
			return "", err
		}
		nodes = []*schema.Node{n}
	}

	var sb strings.Builder
	for _, n := range nodes {
		f.writeNode(&sb, n, 0)
	}
	return sb.String(), nil
}

func (f *Formatter) writeNode(sb *strings.Builder, n *schema.Node, depth int) {
	line := n.Name
	if f.ShowIDs && n.Kind != schema.KindObject {
		line = fmt.Sprintf("[%d] %s", n.ID, line)
	}

	switch n.Kind {
	case schema.KindObject:
		sb.WriteString(f.Indent(depth, line+"\n"))
		for _, m := range n.Members {
			f.writeNode(sb, m, depth+1)
		}

	case schema.KindFunction:
		sb.WriteString(f.Indent(depth, line+"("+formatArgs(n.Inputs)+")"))
		if len(n.Outputs) > 0 {
			sb.WriteString(" -> " + formatArgs(n.Outputs))
		}
		sb.WriteString("\n")

	case schema.KindScalar:
		if f.ShowMetadata {
			line = fmt.Sprintf("%s: %s (%s)", line, n.TypeName, FormatAccess(n.Access))
		}
		sb.WriteString(f.Indent(depth, line+"\n"))
	}
}

func formatArgs(args []*schema.Node) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.Name + " " + a.TypeName
	}
	return strings.Join(parts, ", ")
}
