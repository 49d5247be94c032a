// Package transport defines the byte-level link between the host and a
// device.
//
// A Transport moves whole USB bulk transfers: one Write sends one request
// frame, one Read returns at most maxLen bytes of one reply. Framing above
// this layer lives in package wire; correlation lives in package
// interaction.
//
// # Protocol Stack
//
//	┌────────────────────────────────┐
//	│   Typed accessors (odrive)     │
//	├────────────────────────────────┤
//	│   Request/response engine      │
//	├────────────────────────────────┤
//	│   Request / reply frames       │
//	├────────────────────────────────┤
//	│   Transport (USB bulk, mock)   │
//	└────────────────────────────────┘
//
// Deadlines are carried by the context passed to Write and Read. An
// implementation returns an error wrapping context.DeadlineExceeded when
// the deadline passes before the transfer completes.
//
// # Logging
//
// Wrap a Transport with NewLogging to emit a log.FrameEvent for every
// transfer in either direction.
package transport
