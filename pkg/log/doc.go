// Package log provides structured protocol capture for device sessions.
//
// This package defines the Logger interface and Event types for capturing
// protocol events at each layer (transport, exchange, session). It is
// separate from operational logging (slog): protocol capture is a complete
// machine-readable trace of every frame and exchange for later analysis.
//
// # Basic Usage
//
//	// For development: log to console via slog
//	logger := log.NewSlogAdapter(slog.Default())
//
//	// For captures: write CBOR events to a file (zstd when the name ends in .zst)
//	logger, _ := log.NewFileLogger("/var/log/odrive/session.olog")
//
//	// Both
//	logger := log.NewMultiLogger(adapter, fileLogger)
//
// # Event Types
//
// Events are captured at multiple layers:
//   - Transport: raw frame bytes (FrameEvent)
//   - Exchange: decoded requests and replies (ExchangeEvent)
//   - Session: lifecycle changes such as schema loads (StateChangeEvent)
//
// Errors at any layer have a dedicated event type.
//
// # File Format
//
// Capture files are a plain concatenation of CBOR-encoded events with
// integer keys, optionally zstd-compressed. The odrive-log tool views,
// summarizes and exports them.
package log
