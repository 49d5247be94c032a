package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odrive-host/odrive-go/pkg/wire"
)

const axisDoc = `{"name":"axis0","type":"object","members":[{"name":"controller","type":"object","members":[{"name":"input_vel","type":"float32","access":"readwrite","id":7}]}]}`

func TestParseSingleObjectRoot(t *testing.T) {
	root, err := Parse([]byte(axisDoc))
	require.NoError(t, err)

	require.Len(t, root.Members(), 1)
	axis := root.Members()[0]
	assert.Equal(t, "axis0", axis.Name)
	assert.Equal(t, KindObject, axis.Kind)
	assert.Equal(t, []byte(axisDoc), root.Document())
}

func TestParseArrayRoot(t *testing.T) {
	doc := `[
		{"name": "vbus_voltage", "id": 1, "type": "float", "access": "r"},
		{"name": "reboot", "id": 2, "type": "function"},
		{"name": "save", "id": 3, "type": "function",
		 "inputs": [], "outputs": [{"name": "result", "id": 4, "type": "bool", "access": "r"}]},
		{"name": "ref", "id": 5, "type": "endpoint_ref"}
	]`

	root, err := Parse([]byte(doc))
	require.NoError(t, err)
	require.Len(t, root.Members(), 4)

	vbus := root.Members()[0]
	assert.Equal(t, KindScalar, vbus.Kind)
	assert.Equal(t, wire.TypeFloat32, vbus.Type)
	assert.Equal(t, ReadOnly, vbus.Access)

	reboot := root.Members()[1]
	assert.Equal(t, KindFunction, reboot.Kind)
	assert.Equal(t, uint16(2), reboot.ID)

	save := root.Members()[2]
	require.Len(t, save.Outputs, 1)
	assert.Equal(t, "result", save.Outputs[0].Name)
	assert.Empty(t, save.Inputs)

	ref := root.Members()[3]
	assert.Equal(t, KindScalar, ref.Kind)
	assert.Equal(t, wire.TypeUnknown, ref.Type)
	assert.Equal(t, "endpoint_ref", ref.TypeName)
}

func TestParseAccess(t *testing.T) {
	tests := []struct {
		in   string
		want Access
		ok   bool
	}{
		{"", ReadWrite, true},
		{"rw", ReadWrite, true},
		{"w", ReadWrite, true},
		{"readwrite", ReadWrite, true},
		{"r", ReadOnly, true},
		{"ro", ReadOnly, true},
		{"readonly", ReadOnly, true},
		{"RO", ReadOnly, true},
		{"x", ReadWrite, false},
	}
	for _, tt := range tests {
		got, ok := ParseAccess(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"empty", ""},
		{"whitespace", "  \n"},
		{"scalar document", "42"},
		{"truncated", `[{"name":"a","id":1,"type":"float"`},
		{"missing name", `[{"id":1,"type":"float"}]`},
		{"missing type", `[{"name":"a","id":1}]`},
		{"missing id", `[{"name":"a","type":"float"}]`},
		{"function missing id", `[{"name":"f","type":"function"}]`},
		{"id too large", `[{"name":"a","id":32768,"type":"float"}]`},
		{"negative id", `[{"name":"a","id":-1,"type":"float"}]`},
		{"bad access", `[{"name":"a","id":1,"type":"float","access":"maybe"}]`},
		{"bad nested", `[{"name":"o","type":"object","members":[{"name":"x","type":"int32"}]}]`},
		{"null member", `[null]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.ErrorIs(t, err, ErrParse)
		})
	}
}

func TestParseIgnoresTrailingPadding(t *testing.T) {
	root, err := Parse([]byte(axisDoc + "\n\x00\x00"))
	require.NoError(t, err)
	assert.Len(t, root.Members(), 1)
}

func TestParseMaxID(t *testing.T) {
	root, err := Parse([]byte(`[{"name":"a","id":32767,"type":"uint16"}]`))
	require.NoError(t, err)
	assert.Equal(t, uint16(0x7FFF), root.Members()[0].ID)
}
