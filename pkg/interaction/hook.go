package interaction

import (
	"context"
	"time"
)

// ExchangeInfo describes one exchange for hooks.
type ExchangeInfo struct {
	EndpointID  uint16
	Sequence    uint16
	AwaitReply  bool
	ReadRequest bool

	// RequestSize is the encoded frame length.
	RequestSize int

	// ReplySize is the received payload length (end only).
	ReplySize int

	// Duration from start to end (end only).
	Duration time.Duration
}

// Hook observes exchanges. Both methods run while the exchange lock is held.
type Hook interface {
	// OnExchangeStart is called after the sequence number is assigned and
	// before the frame is written. The returned context is passed to
	// OnExchangeEnd.
	OnExchangeStart(ctx context.Context, info ExchangeInfo) context.Context

	// OnExchangeEnd is called once the exchange completes or fails.
	OnExchangeEnd(ctx context.Context, info ExchangeInfo, err error)
}

// Stats holds exchange counters.
type Stats struct {
	Exchanges  uint64
	Failures   uint64
	OutOfOrder uint64
	BytesOut   uint64
	BytesIn    uint64
}
