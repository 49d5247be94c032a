package transport

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/odrive-host/odrive-go/pkg/log"
)

// loopback echoes every write back as the next read.
type loopback struct {
	pending [][]byte
	short   bool
	err     error
	closed  bool
}

func (l *loopback) Write(_ context.Context, data []byte) (int, error) {
	if l.err != nil {
		return 0, l.err
	}
	l.pending = append(l.pending, append([]byte(nil), data...))
	if l.short {
		return len(data) - 1, nil
	}
	return len(data), nil
}

func (l *loopback) Read(_ context.Context, maxLen int) ([]byte, error) {
	if len(l.pending) == 0 {
		return nil, ErrClosed
	}
	data := l.pending[0]
	l.pending = l.pending[1:]
	if len(data) > maxLen {
		data = data[:maxLen]
	}
	return data, nil
}

func (l *loopback) Close() error {
	l.closed = true
	return nil
}

type captureLogger struct {
	mu     sync.Mutex
	events []log.Event
}

func (c *captureLogger) Log(e log.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
}

func TestLoggingFrames(t *testing.T) {
	inner := &loopback{}
	logger := &captureLogger{}
	tr := NewLogging(inner, logger, "sess-1")
	tr.SetSerial("ABC")

	ctx := context.Background()
	payload := []byte{0x81, 0x00, 0x07, 0x80}
	if _, err := tr.Write(ctx, payload); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	got, err := tr.Read(ctx, 64)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("Read = % x, want % x", got, payload)
	}

	if len(logger.events) != 2 {
		t.Fatalf("got %d events, want 2", len(logger.events))
	}
	out, in := logger.events[0], logger.events[1]
	if out.Direction != log.DirectionOut || in.Direction != log.DirectionIn {
		t.Errorf("directions = %v, %v", out.Direction, in.Direction)
	}
	for _, e := range logger.events {
		if e.SessionID != "sess-1" || e.Serial != "ABC" || e.Layer != log.LayerTransport {
			t.Errorf("event header = %+v", e)
		}
		if e.Frame == nil || e.Frame.Size != len(payload) {
			t.Errorf("Frame = %+v", e.Frame)
		}
	}
}

func TestLoggingShortWriteLogsAcceptedBytes(t *testing.T) {
	logger := &captureLogger{}
	tr := NewLogging(&loopback{short: true}, logger, "s")

	n, err := tr.Write(context.Background(), []byte{1, 2, 3})
	if err != nil || n != 2 {
		t.Fatalf("Write = %d, %v", n, err)
	}
	if got := logger.events[0].Frame.Data; !bytes.Equal(got, []byte{1, 2}) {
		t.Errorf("logged % x, want 01 02", got)
	}
}

func TestLoggingErrors(t *testing.T) {
	boom := errors.New("pipe broke")
	logger := &captureLogger{}
	tr := NewLogging(&loopback{err: boom}, logger, "s")

	if _, err := tr.Write(context.Background(), []byte{1}); !errors.Is(err, boom) {
		t.Fatalf("Write error = %v, want %v", err, boom)
	}
	if len(logger.events) != 1 || logger.events[0].Error == nil {
		t.Fatalf("events = %+v", logger.events)
	}
	if logger.events[0].Error.Context != "write" {
		t.Errorf("Context = %q, want write", logger.events[0].Error.Context)
	}
}

func TestLoggingTruncatesLargeTransfers(t *testing.T) {
	logger := &captureLogger{}
	tr := NewLogging(&loopback{}, logger, "s")

	big := bytes.Repeat([]byte{0x55}, MaxLogFrameDataSize+10)
	tr.Write(context.Background(), big)

	f := logger.events[0].Frame
	if !f.Truncated || len(f.Data) != MaxLogFrameDataSize || f.Size != len(big) {
		t.Errorf("Frame = size %d, data %d, truncated %v", f.Size, len(f.Data), f.Truncated)
	}
}

func TestLoggingNilLoggerAndClose(t *testing.T) {
	inner := &loopback{}
	tr := NewLogging(inner, nil, "")
	tr.Write(context.Background(), []byte{1})

	logger := &captureLogger{}
	tr.SetLogger(logger, "late")
	if err := tr.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if !inner.closed {
		t.Error("inner transport not closed")
	}
	if tr.Unwrap() != Transport(inner) {
		t.Error("Unwrap did not return the inner transport")
	}
	if len(logger.events) != 1 || logger.events[0].StateChange == nil {
		t.Fatalf("events = %+v", logger.events)
	}
	if sc := logger.events[0].StateChange; sc.NewState != "CLOSED" || sc.Entity != log.StateEntityTransport {
		t.Errorf("StateChange = %+v", sc)
	}
}
