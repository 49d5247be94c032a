package interaction

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/odrive-host/odrive-go/pkg/log"
	"github.com/odrive-host/odrive-go/pkg/transport"
	"github.com/odrive-host/odrive-go/pkg/wire"
)

// DefaultTimeout bounds each transfer of an exchange.
const DefaultTimeout = 2 * time.Second

// sequenceFlag is kept set in every outbound sequence number.
const sequenceFlag uint16 = 0x80

// Request describes one exchange.
type Request struct {
	// EndpointID is the 15-bit target endpoint.
	EndpointID uint16

	// Payload is the value bytes sent with the request.
	Payload []byte

	// AwaitReply requests an acknowledgement and waits for the reply.
	AwaitReply bool

	// ReplySize is the number of reply bytes the device should send.
	ReplySize uint16

	// ReadRequest adds Address to the frame.
	ReadRequest bool
	Address     uint32
}

// Client runs exchanges against one device.
type Client struct {
	mu sync.Mutex

	tr      transport.Transport
	timeout time.Duration
	seq     uint16
	closed  bool

	logger    log.Logger
	sessionID string
	serial    string
	hook      Hook

	exchanges  atomic.Uint64
	failures   atomic.Uint64
	outOfOrder atomic.Uint64
	bytesOut   atomic.Uint64
	bytesIn    atomic.Uint64
}

// NewClient creates a client that owns tr.
func NewClient(tr transport.Transport) *Client {
	return &Client{
		tr:      tr,
		timeout: DefaultTimeout,
	}
}

// SetTimeout sets the per-transfer timeout. Non-positive values restore
// DefaultTimeout.
func (c *Client) SetTimeout(timeout time.Duration) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.timeout = timeout
}

// Timeout returns the per-transfer timeout.
func (c *Client) Timeout() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timeout
}

// SetLogger configures protocol capture. Pass nil to disable.
func (c *Client) SetLogger(logger log.Logger, sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.logger = logger
	c.sessionID = sessionID
}

// SetSerial tags capture events with the device serial number.
func (c *Client) SetSerial(serial string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.serial = serial
}

// SetHook installs an exchange hook. Pass nil to remove it.
func (c *Client) SetHook(hook Hook) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hook = hook
}

// Stats returns a snapshot of the exchange counters.
func (c *Client) Stats() Stats {
	return Stats{
		Exchanges:  c.exchanges.Load(),
		Failures:   c.failures.Load(),
		OutOfOrder: c.outOfOrder.Load(),
		BytesOut:   c.bytesOut.Load(),
		BytesIn:    c.bytesIn.Load(),
	}
}

// Close waits for any exchange in progress, then closes the transport.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	return c.tr.Close()
}

// nextSequence advances the counter. Must be called with mu held.
func (c *Client) nextSequence() uint16 {
	c.seq = ((c.seq + 1) & wire.SequenceMask) | sequenceFlag
	return c.seq
}

// Exchange sends req and, when req.AwaitReply is set, returns the reply
// payload. A request without AwaitReply returns nil, nil once written.
func (c *Client) Exchange(ctx context.Context, req Request) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrClientClosed
	}

	seq := c.nextSequence()
	frame := wire.Frame{
		Sequence:     seq,
		EndpointID:   req.EndpointID & wire.EndpointMask,
		AckRequested: req.AwaitReply,
		ResponseSize: req.ReplySize,
		ReadRequest:  req.ReadRequest,
		Address:      req.Address,
		Payload:      req.Payload,
	}
	data := frame.Encode()

	info := ExchangeInfo{
		EndpointID:  frame.EndpointID,
		Sequence:    seq,
		AwaitReply:  req.AwaitReply,
		ReadRequest: req.ReadRequest,
		RequestSize: len(data),
	}
	start := time.Now()
	if c.hook != nil {
		ctx = c.hook.OnExchangeStart(ctx, info)
	}
	c.exchanges.Add(1)

	payload, err := c.roundTrip(ctx, frame, data)

	info.ReplySize = len(payload)
	info.Duration = time.Since(start)
	if err != nil {
		c.failures.Add(1)
		c.logError(frame, err)
	}
	if c.hook != nil {
		c.hook.OnExchangeEnd(ctx, info, err)
	}
	if err != nil {
		return nil, err
	}
	return payload, nil
}

// roundTrip performs the write and optional read. Must be called with mu held.
func (c *Client) roundTrip(ctx context.Context, frame wire.Frame, data []byte) ([]byte, error) {
	start := time.Now()
	c.logRequest(frame)

	wctx, cancel := context.WithTimeout(ctx, c.timeout)
	n, err := c.tr.Write(wctx, data)
	cancel()
	if n > 0 {
		c.bytesOut.Add(uint64(n))
	}
	if err != nil {
		return nil, &ExchangeError{Op: ErrTransportWrite, EndpointID: frame.EndpointID, Sequence: frame.Sequence, Err: err}
	}
	if n != len(data) {
		return nil, &ExchangeError{
			Op:         ErrTransportWrite,
			EndpointID: frame.EndpointID,
			Sequence:   frame.Sequence,
			Written:    n,
			Expected:   len(data),
		}
	}

	if !frame.AckRequested {
		return nil, nil
	}

	rctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	want := frame.Sequence & wire.SequenceMask
	for {
		raw, err := c.tr.Read(rctx, wire.MaxReplySize)
		if err != nil {
			return nil, &ExchangeError{Op: ErrTransportRead, EndpointID: frame.EndpointID, Sequence: frame.Sequence, Err: err}
		}
		c.bytesIn.Add(uint64(len(raw)))

		reply, err := wire.DecodeReply(raw)
		if err != nil {
			return nil, fmt.Errorf("endpoint %d seq %#04x: %w", frame.EndpointID, frame.Sequence, err)
		}

		if reply.Sequence == want {
			c.logReply(reply, time.Since(start))
			return reply.Payload, nil
		}

		c.outOfOrder.Add(1)
		seqErr := &SequenceError{EndpointID: frame.EndpointID, Expected: want, Received: reply.Sequence}
		if !staleSequence(reply.Sequence, want) {
			return nil, seqErr
		}
		// Late reply to an earlier request; drop it and keep reading.
		c.logError(frame, seqErr)
	}
}

// staleSequence reports whether got precedes want in the 15-bit sequence
// space.
func staleSequence(got, want uint16) bool {
	d := (want - got) & wire.SequenceMask
	return d != 0 && d < (wire.SequenceMask+1)/2
}
