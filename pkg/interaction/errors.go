package interaction

import (
	"errors"
	"fmt"
)

// Client errors.
var (
	// ErrTransportWrite indicates a failed or short transport write.
	ErrTransportWrite = errors.New("transport write failed")

	// ErrTransportRead indicates a failed or timed-out transport read.
	ErrTransportRead = errors.New("transport read failed")

	// ErrOutOfOrderReply indicates a reply whose sequence does not match
	// the request.
	ErrOutOfOrderReply = errors.New("out of order reply")

	// ErrClientClosed indicates the client has been closed.
	ErrClientClosed = errors.New("client is closed")
)

// ExchangeError reports a transport failure during an exchange.
type ExchangeError struct {
	// Op is ErrTransportWrite or ErrTransportRead.
	Op error

	EndpointID uint16
	Sequence   uint16

	// Written and Expected are set for short writes.
	Written  int
	Expected int

	// Err is the underlying transport error, nil for short writes.
	Err error
}

// Error implements error.
func (e *ExchangeError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%v: endpoint %d seq %#04x: %v", e.Op, e.EndpointID, e.Sequence, e.Err)
	case e.Expected > 0:
		return fmt.Sprintf("%v: endpoint %d seq %#04x: wrote %d of %d bytes",
			e.Op, e.EndpointID, e.Sequence, e.Written, e.Expected)
	default:
		return fmt.Sprintf("%v: endpoint %d seq %#04x", e.Op, e.EndpointID, e.Sequence)
	}
}

// Unwrap returns the operation sentinel and the transport error.
func (e *ExchangeError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Op}
	}
	return []error{e.Op, e.Err}
}

// SequenceError reports a reply carrying an unexpected sequence number.
type SequenceError struct {
	EndpointID uint16
	Expected   uint16
	Received   uint16
}

// Error implements error.
func (e *SequenceError) Error() string {
	return fmt.Sprintf("%v: endpoint %d sent seq %#04x, got %#04x",
		ErrOutOfOrderReply, e.EndpointID, e.Expected, e.Received)
}

// Is reports whether target is ErrOutOfOrderReply.
func (e *SequenceError) Is(target error) bool {
	return target == ErrOutOfOrderReply
}
