package inspect

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/odrive-host/odrive-go/pkg/wire"
)

// ErrInvalidValue indicates text that cannot be parsed as the target type.
var ErrInvalidValue = errors.New("invalid value")

// ParseValue parses text into the Go type matching t. Integers accept
// decimal or 0x hex.
func ParseValue(text string, t wire.Type) (any, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidValue)
	}

	switch t {
	case wire.TypeBool:
		switch strings.ToLower(text) {
		case "1", "true", "on", "yes":
			return true, nil
		case "0", "false", "off", "no":
			return false, nil
		}
		return nil, fmt.Errorf("%w: %q is not a bool", ErrInvalidValue, text)

	case wire.TypeInt8, wire.TypeInt16, wire.TypeInt32, wire.TypeInt64:
		v, err := strconv.ParseInt(text, 0, t.Size()*8)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidValue, err)
		}
		switch t {
		case wire.TypeInt8:
			return int8(v), nil
		case wire.TypeInt16:
			return int16(v), nil
		case wire.TypeInt32:
			return int32(v), nil
		default:
			return v, nil
		}

	case wire.TypeUint8, wire.TypeUint16, wire.TypeUint32, wire.TypeUint64:
		v, err := strconv.ParseUint(text, 0, t.Size()*8)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidValue, err)
		}
		switch t {
		case wire.TypeUint8:
			return uint8(v), nil
		case wire.TypeUint16:
			return uint16(v), nil
		case wire.TypeUint32:
			return uint32(v), nil
		default:
			return v, nil
		}

	case wire.TypeFloat32:
		v, err := strconv.ParseFloat(text, 32)
		if err != nil || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: %q is not a float32", ErrInvalidValue, text)
		}
		return float32(v), nil

	case wire.TypeFloat64:
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a float64", ErrInvalidValue, text)
		}
		return v, nil

	default:
		return nil, fmt.Errorf("%w: %s", wire.ErrUnsupportedType, t)
	}
}
