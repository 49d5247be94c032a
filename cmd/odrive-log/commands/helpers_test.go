package commands

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/odrive-host/odrive-go/pkg/log"
)

var testTime = time.Date(2026, 10, 14, 10, 15, 32, 123456000, time.UTC)

func createTestLogFile(t *testing.T, name string, events []log.Event) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)

	logger, err := log.NewFileLogger(path)
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	for _, e := range events {
		logger.Log(e)
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("failed to close logger: %v", err)
	}
	return path
}

// exchangeEvents returns a request/reply pair as the client logs it.
func exchangeEvents(session string, seq, endpoint uint16, at time.Time, rtt time.Duration) []log.Event {
	return []log.Event{
		{
			Timestamp: at,
			SessionID: session,
			Serial:    "2075378E5753",
			Direction: log.DirectionOut,
			Layer:     log.LayerExchange,
			Category:  log.CategoryMessage,
			Exchange: &log.ExchangeEvent{
				Type:         log.ExchangeRequest,
				Sequence:     seq,
				EndpointID:   endpoint,
				AckRequested: true,
				ResponseSize: 4,
			},
		},
		{
			Timestamp: at.Add(rtt),
			SessionID: session,
			Serial:    "2075378E5753",
			Direction: log.DirectionIn,
			Layer:     log.LayerExchange,
			Category:  log.CategoryMessage,
			Exchange: &log.ExchangeEvent{
				Type:     log.ExchangeReply,
				Sequence: seq,
				Payload:  []byte{0x9A, 0x99, 0xC0, 0x41},
				Duration: &rtt,
			},
		},
	}
}
