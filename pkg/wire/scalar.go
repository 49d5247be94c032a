package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strings"
)

// Scalar errors.
var (
	// ErrShortBuffer indicates fewer bytes than the scalar width.
	ErrShortBuffer = errors.New("buffer shorter than scalar width")

	// ErrUnsupportedType indicates a type this host cannot encode or decode.
	ErrUnsupportedType = errors.New("unsupported scalar type")

	// ErrValueType indicates a Go value that does not match the scalar type.
	ErrValueType = errors.New("value does not match scalar type")
)

// Type identifies the wire representation of an endpoint value.
type Type uint8

const (
	TypeUnknown Type = iota
	TypeBool
	TypeInt8
	TypeUint8
	TypeInt16
	TypeUint16
	TypeInt32
	TypeUint32
	TypeInt64
	TypeUint64
	TypeFloat32
	TypeFloat64
)

var typeNames = map[Type]string{
	TypeUnknown: "unknown",
	TypeBool:    "bool",
	TypeInt8:    "int8",
	TypeUint8:   "uint8",
	TypeInt16:   "int16",
	TypeUint16:  "uint16",
	TypeInt32:   "int32",
	TypeUint32:  "uint32",
	TypeInt64:   "int64",
	TypeUint64:  "uint64",
	TypeFloat32: "float32",
	TypeFloat64: "float64",
}

// ParseType maps a schema type name to a Type.
// Names the host cannot decode (e.g. "endpoint_ref") return TypeUnknown.
func ParseType(name string) Type {
	switch strings.ToLower(name) {
	case "float":
		return TypeFloat32
	case "double":
		return TypeFloat64
	}
	for t, n := range typeNames {
		if n == strings.ToLower(name) {
			return t
		}
	}
	return TypeUnknown
}

// String returns the canonical type name.
func (t Type) String() string {
	if n, ok := typeNames[t]; ok {
		return n
	}
	return fmt.Sprintf("Type(%d)", uint8(t))
}

// Size returns the encoded width in bytes, or 0 for TypeUnknown.
func (t Type) Size() int {
	switch t {
	case TypeBool, TypeInt8, TypeUint8:
		return 1
	case TypeInt16, TypeUint16:
		return 2
	case TypeInt32, TypeUint32, TypeFloat32:
		return 4
	case TypeInt64, TypeUint64, TypeFloat64:
		return 8
	default:
		return 0
	}
}

// IsKnown reports whether the type can be encoded and decoded.
func (t Type) IsKnown() bool {
	return t.Size() > 0
}

// Scalar is the set of Go types that map to a wire Type.
type Scalar interface {
	bool | int8 | uint8 | int16 | uint16 | int32 | uint32 | int64 | uint64 | float32 | float64
}

// TypeOf returns the wire Type for T.
func TypeOf[T Scalar]() Type {
	var zero T
	switch any(zero).(type) {
	case bool:
		return TypeBool
	case int8:
		return TypeInt8
	case uint8:
		return TypeUint8
	case int16:
		return TypeInt16
	case uint16:
		return TypeUint16
	case int32:
		return TypeInt32
	case uint32:
		return TypeUint32
	case int64:
		return TypeInt64
	case uint64:
		return TypeUint64
	case float32:
		return TypeFloat32
	case float64:
		return TypeFloat64
	}
	return TypeUnknown
}

// EncodeScalar serializes v as little-endian bytes.
func EncodeScalar[T Scalar](v T) []byte {
	// The Scalar constraint guarantees a known type.
	b, _ := EncodeValue(TypeOf[T](), v)
	return b
}

// DecodeScalar parses a little-endian T from the start of data.
func DecodeScalar[T Scalar](data []byte) (T, error) {
	var zero T
	v, err := DecodeValue(TypeOf[T](), data)
	if err != nil {
		return zero, err
	}
	return v.(T), nil
}

// EncodeValue serializes v, whose dynamic type must match t.
func EncodeValue(t Type, v any) ([]byte, error) {
	if !t.IsKnown() {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, t)
	}

	buf := make([]byte, t.Size())
	ok := true

	switch t {
	case TypeBool:
		var b bool
		if b, ok = v.(bool); ok && b {
			buf[0] = 1
		}
	case TypeInt8:
		var x int8
		x, ok = v.(int8)
		buf[0] = byte(x)
	case TypeUint8:
		buf[0], ok = v.(uint8)
	case TypeInt16:
		var x int16
		x, ok = v.(int16)
		binary.LittleEndian.PutUint16(buf, uint16(x))
	case TypeUint16:
		var x uint16
		x, ok = v.(uint16)
		binary.LittleEndian.PutUint16(buf, x)
	case TypeInt32:
		var x int32
		x, ok = v.(int32)
		binary.LittleEndian.PutUint32(buf, uint32(x))
	case TypeUint32:
		var x uint32
		x, ok = v.(uint32)
		binary.LittleEndian.PutUint32(buf, x)
	case TypeInt64:
		var x int64
		x, ok = v.(int64)
		binary.LittleEndian.PutUint64(buf, uint64(x))
	case TypeUint64:
		var x uint64
		x, ok = v.(uint64)
		binary.LittleEndian.PutUint64(buf, x)
	case TypeFloat32:
		var x float32
		x, ok = v.(float32)
		binary.LittleEndian.PutUint32(buf, math.Float32bits(x))
	case TypeFloat64:
		var x float64
		x, ok = v.(float64)
		binary.LittleEndian.PutUint64(buf, math.Float64bits(x))
	}

	if !ok {
		return nil, fmt.Errorf("%w: %T is not %s", ErrValueType, v, t)
	}
	return buf, nil
}

// DecodeValue parses a little-endian value of type t from the start of data.
// Extra trailing bytes are ignored.
func DecodeValue(t Type, data []byte) (any, error) {
	if !t.IsKnown() {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, t)
	}
	if len(data) < t.Size() {
		return nil, fmt.Errorf("%w: %s needs %d bytes, have %d", ErrShortBuffer, t, t.Size(), len(data))
	}

	switch t {
	case TypeBool:
		return data[0] != 0, nil
	case TypeInt8:
		return int8(data[0]), nil
	case TypeUint8:
		return data[0], nil
	case TypeInt16:
		return int16(binary.LittleEndian.Uint16(data)), nil
	case TypeUint16:
		return binary.LittleEndian.Uint16(data), nil
	case TypeInt32:
		return int32(binary.LittleEndian.Uint32(data)), nil
	case TypeUint32:
		return binary.LittleEndian.Uint32(data), nil
	case TypeInt64:
		return int64(binary.LittleEndian.Uint64(data)), nil
	case TypeUint64:
		return binary.LittleEndian.Uint64(data), nil
	case TypeFloat32:
		return math.Float32frombits(binary.LittleEndian.Uint32(data)), nil
	default:
		return math.Float64frombits(binary.LittleEndian.Uint64(data)), nil
	}
}
