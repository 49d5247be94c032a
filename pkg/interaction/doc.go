// Package interaction implements the synchronous request/response engine.
//
// A Client owns the transport, the outbound sequence counter and a single
// mutex. Each call to Exchange holds that mutex for the full write, read
// and decode cycle, so at most one request is in flight per device and
// concurrent callers are served one after another.
//
// # Usage
//
//	client := interaction.NewClient(tr)
//	client.SetTimeout(2 * time.Second)
//
//	// Read a float32 from endpoint 7
//	payload, err := client.Exchange(ctx, interaction.Request{
//	    EndpointID: 7,
//	    AwaitReply: true,
//	    ReplySize:  4,
//	})
//
// # Sequencing
//
// The counter advances before every request as
//
//	seq = ((seq + 1) & 0x7FFF) | 0x80
//
// and the reply must carry the same 15-bit value. A reply with any other
// sequence fails with a *SequenceError and its payload is discarded.
//
// # Errors
//
// Transport failures are reported as *ExchangeError values that match
// ErrTransportWrite or ErrTransportRead with errors.Is and also unwrap to
// the underlying transport error.
package interaction
