package commands

import (
	"bytes"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/odrive-host/odrive-go/pkg/log"
)

func TestFilterWritesMatchingEvents(t *testing.T) {
	events := append(
		exchangeEvents("keep-session", 0x81, 7, testTime, time.Millisecond),
		exchangeEvents("drop-session", 0x81, 7, testTime, time.Millisecond)...,
	)
	path := createTestLogFile(t, "in.olog", events)
	output := filepath.Join(t.TempDir(), "out.olog.zst")

	var buf bytes.Buffer
	err := RunFilter(path, output, FilterOptions{SessionID: "keep-session", Direction: "out"}, &buf)
	if err != nil {
		t.Fatalf("RunFilter failed: %v", err)
	}
	if !strings.Contains(buf.String(), "Filtered 1 events") {
		t.Errorf("unexpected output: %s", buf.String())
	}

	reader, err := log.NewReader(output)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	event, err := reader.Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if event.SessionID != "keep-session" || event.Direction != log.DirectionOut {
		t.Errorf("event = %+v", event)
	}
	if _, err := reader.Next(); !errors.Is(err, io.EOF) {
		t.Errorf("expected EOF, got %v", err)
	}
}

func TestFilterOptionsBuild(t *testing.T) {
	opts := FilterOptions{
		Serial:    "2075378e5753",
		Endpoint:  "0x10",
		TimeStart: "2026-10-14T10:00:00Z",
		TimeEnd:   "2026-10-14T11:00:00Z",
		Layer:     "Transport",
		Direction: "IN",
		Category:  "error",
	}

	f, err := opts.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if f.Serial != "2075378E5753" {
		t.Errorf("Serial = %q, want upper case", f.Serial)
	}
	if f.EndpointID == nil || *f.EndpointID != 16 {
		t.Errorf("EndpointID = %v, want 16", f.EndpointID)
	}
	if f.TimeStart == nil || f.TimeEnd == nil || !f.TimeEnd.After(*f.TimeStart) {
		t.Error("time range not parsed")
	}
	if *f.Layer != log.LayerTransport || *f.Direction != log.DirectionIn || *f.Category != log.CategoryError {
		t.Errorf("filter = %+v", f)
	}
}
