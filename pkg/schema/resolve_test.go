package schema

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odrive-host/odrive-go/pkg/wire"
)

const treeDoc = `[
	{"name": "vbus_voltage", "id": 1, "type": "float", "access": "r"},
	{"name": "axis0", "type": "object", "members": [
		{"name": "error", "id": 6, "type": "uint32"},
		{"name": "controller", "type": "object", "members": [
			{"name": "input_vel", "id": 7, "type": "float", "access": "rw"},
			{"name": "input_vel", "id": 99, "type": "float", "access": "rw"}
		]},
		{"name": "clear_errors", "id": 20, "type": "function"}
	]}
]`

func mustParse(t *testing.T, doc string) *Root {
	t.Helper()
	root, err := Parse([]byte(doc))
	require.NoError(t, err)
	return root
}

func TestResolveSpecExample(t *testing.T) {
	root := mustParse(t, axisDoc)

	d, err := root.Resolve("axis0.controller.input_vel")
	require.NoError(t, err)
	assert.Equal(t, Descriptor{
		ID:     7,
		Kind:   KindScalar,
		Type:   wire.TypeFloat32,
		Access: ReadWrite,
		Path:   "axis0.controller.input_vel",
	}, d)

	_, err = root.Resolve("axis0.nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolve(t *testing.T) {
	root := mustParse(t, treeDoc)

	tests := []struct {
		path    string
		wantID  uint16
		wantErr error
		segment string
	}{
		{path: "vbus_voltage", wantID: 1},
		{path: "axis0.error", wantID: 6},
		{path: "axis0.controller.input_vel", wantID: 7},
		{path: "axis0.clear_errors", wantID: 20},
		{path: "axis1.error", wantErr: ErrNotFound, segment: "axis1"},
		{path: "axis0.controller.nope", wantErr: ErrNotFound, segment: "nope"},
		{path: "vbus_voltage.x", wantErr: ErrTypeMismatch, segment: "vbus_voltage"},
		{path: "axis0.clear_errors.x", wantErr: ErrTypeMismatch, segment: "clear_errors"},
		{path: "axis0.controller", wantErr: ErrTypeMismatch, segment: "controller"},
		{path: "", wantErr: ErrInvalidPath},
		{path: "axis0..error", wantErr: ErrInvalidPath},
		{path: ".axis0", wantErr: ErrInvalidPath},
		{path: "axis0.", wantErr: ErrInvalidPath},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			d, err := root.Resolve(tt.path)
			if tt.wantErr == nil {
				require.NoError(t, err)
				assert.Equal(t, tt.wantID, d.ID, "first match in document order")
				assert.Equal(t, tt.path, d.Path)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			var pe *PathError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, tt.path, pe.Path)
			assert.Equal(t, tt.segment, pe.Segment)
		})
	}
}

func TestLookupAllowsObjects(t *testing.T) {
	root := mustParse(t, treeDoc)

	n, err := root.Lookup("axis0.controller")
	require.NoError(t, err)
	assert.Equal(t, KindObject, n.Kind)
	assert.Equal(t, "input_vel", n.Members[0].Name)
	assert.Equal(t, uint16(7), n.Member("input_vel").ID)
	assert.Nil(t, n.Member("missing"))
}

func TestWalk(t *testing.T) {
	root := mustParse(t, treeDoc)

	var paths []string
	err := root.Walk(func(path string, n *Node) error {
		paths = append(paths, path)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"vbus_voltage",
		"axis0.error",
		"axis0.controller.input_vel",
		"axis0.controller.input_vel",
		"axis0.clear_errors",
	}, paths)

	stop := errors.New("stop")
	count := 0
	err = root.Walk(func(string, *Node) error {
		count++
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, count)
}

func TestDescriptorWritable(t *testing.T) {
	root := mustParse(t, treeDoc)

	vbus, _ := root.Resolve("vbus_voltage")
	vel, _ := root.Resolve("axis0.controller.input_vel")
	fn, _ := root.Resolve("axis0.clear_errors")

	assert.False(t, vbus.Writable())
	assert.True(t, vel.Writable())
	assert.False(t, fn.Writable())
}

func TestSplitPath(t *testing.T) {
	segs, err := SplitPath("a.b.c")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, segs)
}
