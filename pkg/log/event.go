package log

import (
	"time"
)

// Event represents a protocol log event captured at any layer.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// SessionID uniquely identifies the device session (UUID).
	SessionID string `cbor:"2,keyasint"`

	// Direction indicates message flow.
	Direction Direction `cbor:"3,keyasint"`

	// Layer where the event was captured.
	Layer Layer `cbor:"4,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"5,keyasint"`

	// Serial is the device serial number, when known.
	Serial string `cbor:"6,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Frame       *FrameEvent       `cbor:"10,keyasint,omitempty"` // Transport layer
	Exchange    *ExchangeEvent    `cbor:"11,keyasint,omitempty"` // Exchange layer
	StateChange *StateChangeEvent `cbor:"12,keyasint,omitempty"` // Session lifecycle
	Error       *ErrorEventData   `cbor:"13,keyasint,omitempty"` // Errors at any layer
}

// Direction indicates the direction of message flow.
type Direction uint8

const (
	// DirectionIn indicates data received from the device.
	DirectionIn Direction = 0
	// DirectionOut indicates data sent to the device.
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Layer indicates which protocol layer captured the event.
type Layer uint8

const (
	// LayerTransport is the raw byte layer.
	LayerTransport Layer = 0
	// LayerExchange is the request/response layer.
	LayerExchange Layer = 1
	// LayerSession is the schema and accessor layer.
	LayerSession Layer = 2
)

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case LayerTransport:
		return "TRANSPORT"
	case LayerExchange:
		return "EXCHANGE"
	case LayerSession:
		return "SESSION"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryMessage indicates a frame or exchange.
	CategoryMessage Category = 0
	// CategoryState indicates a state change.
	CategoryState Category = 1
	// CategoryError indicates an error event.
	CategoryError Category = 2
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryMessage:
		return "MESSAGE"
	case CategoryState:
		return "STATE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// FrameEvent captures raw frame data at the transport layer.
type FrameEvent struct {
	// Size is the frame size in bytes.
	Size int `cbor:"1,keyasint"`

	// Data is the raw frame bytes (may be truncated for large frames).
	Data []byte `cbor:"2,keyasint,omitempty"`

	// Truncated indicates if Data was truncated.
	Truncated bool `cbor:"3,keyasint,omitempty"`
}

// ExchangeEvent captures one side of a request/response exchange.
type ExchangeEvent struct {
	// Type distinguishes request from reply.
	Type ExchangeType `cbor:"1,keyasint"`

	// Sequence is the sequence number sent or received.
	Sequence uint16 `cbor:"2,keyasint"`

	// EndpointID is the target endpoint (requests only).
	EndpointID uint16 `cbor:"3,keyasint,omitempty"`

	// AckRequested is set when the request awaits a reply.
	AckRequested bool `cbor:"4,keyasint,omitempty"`

	// Address is the read offset of read-at-offset requests.
	Address *uint32 `cbor:"5,keyasint,omitempty"`

	// ResponseSize is the reply size the request asked for.
	ResponseSize uint16 `cbor:"6,keyasint,omitempty"`

	// Payload is the request or reply payload.
	Payload []byte `cbor:"7,keyasint,omitempty"`

	// Duration from request write to reply decode (replies only).
	// Stored as nanoseconds.
	Duration *time.Duration `cbor:"8,keyasint,omitempty"`
}

// ExchangeType distinguishes request from reply.
type ExchangeType uint8

const (
	// ExchangeRequest is a host request.
	ExchangeRequest ExchangeType = 0
	// ExchangeReply is a device reply.
	ExchangeReply ExchangeType = 1
)

// String returns the exchange type name.
func (e ExchangeType) String() string {
	switch e {
	case ExchangeRequest:
		return "REQUEST"
	case ExchangeReply:
		return "REPLY"
	default:
		return "UNKNOWN"
	}
}

// StateChangeEvent captures session lifecycle events.
type StateChangeEvent struct {
	// Entity being changed.
	Entity StateEntity `cbor:"1,keyasint"`

	// OldState is the previous state (may be empty).
	OldState string `cbor:"2,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"3,keyasint"`

	// Reason for the change (if available).
	Reason string `cbor:"4,keyasint,omitempty"`
}

// StateEntity indicates what entity changed state.
type StateEntity uint8

const (
	// StateEntityTransport indicates a transport open/close.
	StateEntityTransport StateEntity = 0
	// StateEntitySession indicates a session state change.
	StateEntitySession StateEntity = 1
	// StateEntitySchema indicates a schema load.
	StateEntitySchema StateEntity = 2
)

// String returns the state entity name.
func (s StateEntity) String() string {
	switch s {
	case StateEntityTransport:
		return "TRANSPORT"
	case StateEntitySession:
		return "SESSION"
	case StateEntitySchema:
		return "SCHEMA"
	default:
		return "UNKNOWN"
	}
}

// ErrorEventData captures errors at any layer.
type ErrorEventData struct {
	// Layer where the error occurred.
	Layer Layer `cbor:"1,keyasint"`

	// Message is the error message.
	Message string `cbor:"2,keyasint"`

	// Code is the error code (if applicable).
	Code *int `cbor:"3,keyasint,omitempty"`

	// Context describes what operation was being performed.
	Context string `cbor:"4,keyasint,omitempty"`
}
