package log

import (
	"path/filepath"
	"testing"
	"time"
)

func writeCapture(t *testing.T, events []Event) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "capture.olog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	for _, e := range events {
		logger.Log(e)
	}
	logger.Close()
	return path
}

func TestReaderFilters(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	events := []Event{
		{Timestamp: base, SessionID: "a", Direction: DirectionOut, Layer: LayerTransport, Frame: &FrameEvent{Size: 8}},
		{Timestamp: base.Add(time.Second), SessionID: "a", Direction: DirectionOut, Layer: LayerExchange,
			Exchange: &ExchangeEvent{Type: ExchangeRequest, EndpointID: 7}},
		{Timestamp: base.Add(2 * time.Second), SessionID: "a", Direction: DirectionIn, Layer: LayerExchange,
			Exchange: &ExchangeEvent{Type: ExchangeReply}},
		{Timestamp: base.Add(3 * time.Second), SessionID: "b", Serial: "ABC", Layer: LayerSession, Category: CategoryError,
			Error: &ErrorEventData{Message: "boom"}},
	}
	path := writeCapture(t, events)

	out := DirectionOut
	exchange := LayerExchange
	errs := CategoryError
	ep := uint16(7)
	start := base.Add(time.Second)
	end := base.Add(3 * time.Second)

	tests := []struct {
		name   string
		filter Filter
		want   int
	}{
		{"all", Filter{}, 4},
		{"session", Filter{SessionID: "a"}, 3},
		{"serial", Filter{Serial: "ABC"}, 1},
		{"direction", Filter{Direction: &out}, 2},
		{"layer", Filter{Layer: &exchange}, 2},
		{"category", Filter{Category: &errs}, 1},
		{"endpoint", Filter{EndpointID: &ep}, 1},
		{"time window", Filter{TimeStart: &start, TimeEnd: &end}, 2},
		{"combined", Filter{SessionID: "a", Layer: &exchange, Direction: &out}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := len(readAll(t, path, tt.filter)); got != tt.want {
				t.Errorf("got %d events, want %d", got, tt.want)
			}
		})
	}
}

func TestReaderMissingFile(t *testing.T) {
	if _, err := NewReader(filepath.Join(t.TempDir(), "missing.olog")); err == nil {
		t.Error("expected error for missing file")
	}
}
