package inspect

import (
	"strings"
	"testing"

	"github.com/odrive-host/odrive-go/pkg/schema"
	"github.com/odrive-host/odrive-go/pkg/wire"
)

const testDoc = `[
	{"name": "vbus_voltage", "id": 1, "type": "float", "access": "r"},
	{"name": "axis0", "type": "object", "members": [
		{"name": "controller", "type": "object", "members": [
			{"name": "input_vel", "id": 7, "type": "float", "access": "rw"},
			{"name": "input_pos", "id": 8, "type": "float", "access": "rw"}
		]},
		{"name": "set_count", "id": 9, "type": "function",
		 "inputs": [{"name": "count", "id": 10, "type": "int32"}]}
	]},
	{"name": "save_configuration", "id": 11, "type": "function",
	 "outputs": [{"name": "result", "id": 12, "type": "bool", "access": "r"}]}
]`

func parse(t *testing.T) *schema.Root {
	t.Helper()
	root, err := schema.Parse([]byte(testDoc))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return root
}

func TestFormatValue(t *testing.T) {
	f := &Formatter{}

	tests := []struct {
		name     string
		value    any
		expected string
	}{
		{"nil", nil, "null"},
		{"bool true", true, "true"},
		{"bool false", false, "false"},
		{"float32", float32(24.1), "24.1"},
		{"float64", 0.5, "0.5"},
		{"int32 negative", int32(-3), "-3"},
		{"uint8", uint8(3), "3"},
		{"uint64 serial", uint64(0x2075378E5753), "35687815337811 (0x2075378E5753)"},
		{"bytes", []byte{0xAB, 0x01}, "0xab01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.FormatValue(tt.value); got != tt.expected {
				t.Errorf("FormatValue(%v) = %q, want %q", tt.value, got, tt.expected)
			}
		})
	}
}

func TestFormatTree(t *testing.T) {
	f := NewFormatter()

	got, err := f.FormatTree(parse(t), "")
	if err != nil {
		t.Fatalf("FormatTree failed: %v", err)
	}

	want := strings.Join([]string{
		"vbus_voltage: float (read-only)",
		"axis0",
		"  controller",
		"    input_vel: float (read-write)",
		"    input_pos: float (read-write)",
		"  set_count(count int32)",
		"save_configuration() -> result bool",
		"",
	}, "\n")
	if got != want {
		t.Errorf("FormatTree =\n%s\nwant\n%s", got, want)
	}
}

func TestFormatTreePrefixAndIDs(t *testing.T) {
	f := &Formatter{ShowIDs: true, IndentWidth: 4}

	got, err := f.FormatTree(parse(t), "axis0.controller")
	if err != nil {
		t.Fatalf("FormatTree failed: %v", err)
	}
	want := "controller\n    [7] input_vel\n    [8] input_pos\n"
	if got != want {
		t.Errorf("FormatTree = %q, want %q", got, want)
	}

	if _, err := f.FormatTree(parse(t), "axis9"); err == nil {
		t.Error("expected error for unknown prefix")
	}
}

func TestFormatDescriptor(t *testing.T) {
	f := NewFormatter()
	f.ShowIDs = true

	d := schema.Descriptor{ID: 7, Kind: schema.KindScalar, Type: wire.TypeFloat32, Path: "axis0.controller.input_vel"}
	if got := f.FormatDescriptor(d); got != "axis0.controller.input_vel [7] (float32, read-write)" {
		t.Errorf("FormatDescriptor = %q", got)
	}

	fn := schema.Descriptor{ID: 11, Kind: schema.KindFunction, Path: "save_configuration"}
	if got := f.FormatDescriptor(fn); got != "save_configuration [11] (function)" {
		t.Errorf("FormatDescriptor = %q", got)
	}
}

func TestIndent(t *testing.T) {
	f := &Formatter{}
	if got := f.Indent(2, "x"); got != "    x" {
		t.Errorf("Indent = %q, want 4 spaces", got)
	}
}
