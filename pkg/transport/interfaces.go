package transport

import (
	"context"
	"errors"
)

// ErrClosed is returned by transfers on a closed transport.
var ErrClosed = errors.New("transport closed")

// Transport is a bidirectional packet link to one device.
// Implemented by usb.Device, mock.Device and Logging.
type Transport interface {
	// Write sends data as a single transfer and returns the number of
	// bytes accepted.
	Write(ctx context.Context, data []byte) (int, error)

	// Read receives a single transfer of at most maxLen bytes.
	Read(ctx context.Context, maxLen int) ([]byte, error)

	// Close releases the link. Further transfers fail with ErrClosed.
	Close() error
}

// Compile-time interface satisfaction check.
var _ Transport = (*Logging)(nil)
