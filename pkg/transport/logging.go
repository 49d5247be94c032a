package transport

import (
	"context"
	"sync"
	"time"

	"github.com/odrive-host/odrive-go/pkg/log"
)

// MaxLogFrameDataSize is the maximum frame data size included in log events.
// Larger transfers are truncated in the event.
const MaxLogFrameDataSize = 4096

// Logging wraps a Transport and reports every transfer to a log.Logger.
type Logging struct {
	inner Transport

	mu        sync.RWMutex
	logger    log.Logger
	sessionID string
	serial    string
}

// NewLogging wraps t. A nil logger disables logging until SetLogger is called.
func NewLogging(t Transport, logger log.Logger, sessionID string) *Logging {
	return &Logging{inner: t, logger: logger, sessionID: sessionID}
}

// SetLogger replaces the logger and session id.
// Pass nil to disable logging.
func (l *Logging) SetLogger(logger log.Logger, sessionID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logger = logger
	l.sessionID = sessionID
}

// SetSerial tags subsequent events with the device serial number.
func (l *Logging) SetSerial(serial string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.serial = serial
}

// Unwrap returns the wrapped transport.
func (l *Logging) Unwrap() Transport {
	return l.inner
}

// Write forwards to the wrapped transport and logs the bytes accepted.
func (l *Logging) Write(ctx context.Context, data []byte) (int, error) {
	n, err := l.inner.Write(ctx, data)
	if n > 0 {
		l.logFrame(data[:n], log.DirectionOut)
	}
	if err != nil {
		l.logError("write", err)
	}
	return n, err
}

// Read forwards to the wrapped transport and logs the bytes received.
func (l *Logging) Read(ctx context.Context, maxLen int) ([]byte, error) {
	data, err := l.inner.Read(ctx, maxLen)
	if len(data) > 0 {
		l.logFrame(data, log.DirectionIn)
	}
	if err != nil {
		l.logError("read", err)
	}
	return data, err
}

// Close closes the wrapped transport and records the state change.
func (l *Logging) Close() error {
	err := l.inner.Close()

	l.mu.RLock()
	logger, sessionID, serial := l.logger, l.sessionID, l.serial
	l.mu.RUnlock()

	if logger != nil {
		logger.Log(log.Event{
			Timestamp: time.Now(),
			SessionID: sessionID,
			Serial:    serial,
			Layer:     log.LayerTransport,
			Category:  log.CategoryState,
			StateChange: &log.StateChangeEvent{
				Entity:   log.StateEntityTransport,
				OldState: "OPEN",
				NewState: "CLOSED",
			},
		})
	}
	return err
}

func (l *Logging) logFrame(data []byte, direction log.Direction) {
	l.mu.RLock()
	logger, sessionID, serial := l.logger, l.sessionID, l.serial
	l.mu.RUnlock()
	if logger == nil {
		return
	}
	logger.Log(makeFrameEvent(data, direction, sessionID, serial))
}

func (l *Logging) logError(op string, err error) {
	l.mu.RLock()
	logger, sessionID, serial := l.logger, l.sessionID, l.serial
	l.mu.RUnlock()
	if logger == nil {
		return
	}
	logger.Log(log.Event{
		Timestamp: time.Now(),
		SessionID: sessionID,
		Serial:    serial,
		Layer:     log.LayerTransport,
		Category:  log.CategoryError,
		Error: &log.ErrorEventData{
			Layer:   log.LayerTransport,
			Message: err.Error(),
			Context: op,
		},
	})
}

// makeFrameEvent creates a log event for a transfer.
func makeFrameEvent(data []byte, direction log.Direction, sessionID, serial string) log.Event {
	frameData := data
	truncated := false

	if len(data) > MaxLogFrameDataSize {
		frameData = data[:MaxLogFrameDataSize]
		truncated = true
	}

	// Copy so later reuse of the caller's buffer does not alter the event.
	buf := make([]byte, len(frameData))
	copy(buf, frameData)

	return log.Event{
		Timestamp: time.Now(),
		SessionID: sessionID,
		Serial:    serial,
		Direction: direction,
		Layer:     log.LayerTransport,
		Category:  log.CategoryMessage,
		Frame: &log.FrameEvent{
			Size:      len(data),
			Data:      buf,
			Truncated: truncated,
		},
	}
}
