// Package mock provides a simulated device that speaks the device side of
// the protocol over an in-memory transport.
package mock

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/odrive-host/odrive-go/pkg/transport"
	"github.com/odrive-host/odrive-go/pkg/wire"
)

// ErrInjected is returned by transfers failed through InjectFault.
var ErrInjected = errors.New("injected fault")

// Fault selects a one-shot failure for the next transfer.
type Fault uint8

const (
	FaultNone Fault = iota

	// FaultShortWrite makes the next Write accept one byte less than given.
	FaultShortWrite

	// FaultWriteError makes the next Write fail with ErrInjected.
	FaultWriteError

	// FaultReadError makes the next Read fail with ErrInjected.
	FaultReadError

	// FaultReadEOF makes the next Read fail with io.EOF.
	FaultReadEOF

	// FaultDropReply makes the device ignore the next request, so the
	// following Read blocks until its deadline.
	FaultDropReply

	// FaultWrongSequence makes the next reply carry seq+1.
	FaultWrongSequence

	// FaultTruncatedReply makes the next reply a single byte.
	FaultTruncatedReply
)

// Device is a simulated device. It implements transport.Transport.
type Device struct {
	mu sync.Mutex

	schema    []byte
	values    map[uint16][]byte
	functions map[uint16]func()
	calls     map[uint16]int
	received  []wire.Frame

	replies chan []byte
	faults  []Fault
	closed  bool
	done    chan struct{}
}

// NewDevice creates a device that serves schema from endpoint 0.
func NewDevice(schema []byte) *Device {
	return &Device{
		schema:    schema,
		values:    make(map[uint16][]byte),
		functions: make(map[uint16]func()),
		calls:     make(map[uint16]int),
		replies:   make(chan []byte, 16),
		done:      make(chan struct{}),
	}
}

// SetSchema replaces the schema document.
func (d *Device) SetSchema(schema []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.schema = schema
}

// SetValue stores the raw bytes returned for reads of id.
func (d *Device) SetValue(id uint16, value []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.values[id] = append([]byte(nil), value...)
}

// Value returns the raw bytes stored for id.
func (d *Device) Value(id uint16) []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]byte(nil), d.values[id]...)
}

// AddFunction registers id as a function endpoint. fn, if not nil, runs on
// every call.
func (d *Device) AddFunction(id uint16, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.functions[id] = fn
}

// Calls returns how often the function at id was invoked.
func (d *Device) Calls(id uint16) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls[id]
}

// Received returns the decoded requests in arrival order.
func (d *Device) Received() []wire.Frame {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]wire.Frame(nil), d.received...)
}

// InjectFault queues a fault. Faults are consumed in order by the
// transfers they apply to.
func (d *Device) InjectFault(f Fault) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.faults = append(d.faults, f)
}

// takeFault pops the first queued fault among kinds. Must be called with mu held.
func (d *Device) takeFault(kinds ...Fault) Fault {
	for i, f := range d.faults {
		for _, k := range kinds {
			if f == k {
				d.faults = append(d.faults[:i], d.faults[i+1:]...)
				return f
			}
		}
	}
	return FaultNone
}

// Write handles one request frame.
func (d *Device) Write(ctx context.Context, data []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return 0, transport.ErrClosed
	}

	switch d.takeFault(FaultShortWrite, FaultWriteError) {
	case FaultShortWrite:
		return len(data) - 1, nil
	case FaultWriteError:
		return 0, fmt.Errorf("mock write: %w", ErrInjected)
	}

	req, err := wire.DecodeRequest(data)
	if err != nil {
		return 0, err
	}
	d.received = append(d.received, req)

	payload := d.handle(req)
	if !req.AckRequested {
		return len(data), nil
	}

	seq := req.Sequence
	switch d.takeFault(FaultDropReply, FaultWrongSequence, FaultTruncatedReply) {
	case FaultDropReply:
		return len(data), nil
	case FaultWrongSequence:
		seq++
	case FaultTruncatedReply:
		d.queue([]byte{byte(seq)})
		return len(data), nil
	}

	d.queue(wire.EncodeReply(seq, payload))
	return len(data), nil
}

// queue buffers a reply. Replies nobody reads are dropped once the buffer
// is full.
func (d *Device) queue(reply []byte) {
	select {
	case d.replies <- reply:
	default:
	}
}

// handle applies req and returns the reply payload. Must be called with mu held.
func (d *Device) handle(req wire.Frame) []byte {
	if req.EndpointID == wire.SchemaEndpoint && req.ReadRequest {
		return d.schemaChunk(req.Address, int(req.ResponseSize))
	}

	if fn, ok := d.functions[req.EndpointID]; ok {
		d.calls[req.EndpointID]++
		if fn != nil {
			fn()
		}
		return nil
	}

	if len(req.Payload) > 0 {
		d.values[req.EndpointID] = req.Payload
		return nil
	}

	value := d.values[req.EndpointID]
	if n := int(req.ResponseSize); len(value) < n {
		value = append(append([]byte(nil), value...), make([]byte, n-len(value))...)
	}
	return value[:min(len(value), int(req.ResponseSize))]
}

// schemaChunk returns the document slice at addr. A chunk never exceeds
// what fits in one reply transfer.
func (d *Device) schemaChunk(addr uint32, size int) []byte {
	size = min(size, wire.MaxReplySize-wire.ReplyHeaderSize)
	if int(addr) >= len(d.schema) {
		return nil
	}
	end := min(int(addr)+size, len(d.schema))
	return append([]byte(nil), d.schema[addr:end]...)
}

// Read returns the next pending reply, blocking until ctx is done.
func (d *Device) Read(ctx context.Context, maxLen int) ([]byte, error) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil, transport.ErrClosed
	}
	fault := d.takeFault(FaultReadError, FaultReadEOF)
	d.mu.Unlock()

	switch fault {
	case FaultReadError:
		return nil, fmt.Errorf("mock read: %w", ErrInjected)
	case FaultReadEOF:
		return nil, io.EOF
	}

	select {
	case reply := <-d.replies:
		if len(reply) > maxLen {
			reply = reply[:maxLen]
		}
		return reply, nil
	case <-d.done:
		return nil, transport.ErrClosed
	case <-ctx.Done():
		return nil, fmt.Errorf("mock read: %w", ctx.Err())
	}
}

// Close closes the device. Pending and future transfers fail.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.closed {
		d.closed = true
		close(d.done)
	}
	return nil
}

// Compile-time interface satisfaction check.
var _ transport.Transport = (*Device)(nil)
