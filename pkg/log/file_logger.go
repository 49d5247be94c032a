package log

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fxamacker/cbor/v2"
	"github.com/klauspost/compress/zstd"
)

// CompressedSuffix selects zstd compression for capture files.
const CompressedSuffix = ".zst"

// FileLogger writes protocol events to a file in CBOR format.
// Paths ending in CompressedSuffix are written as zstd streams.
// It is safe for concurrent use from multiple goroutines.
type FileLogger struct {
	file    *os.File
	zw      *zstd.Encoder
	encoder *cbor.Encoder
	mu      sync.Mutex
	closed  bool
}

// NewFileLogger creates a FileLogger that appends to the file at path,
// creating it with permissions 0644 if needed. Appending to a compressed
// capture adds a new zstd frame.
func NewFileLogger(path string) (*FileLogger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}

	l := &FileLogger{file: f}

	var w io.Writer = f
	if strings.HasSuffix(path, CompressedSuffix) {
		l.zw, err = zstd.NewWriter(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		w = l.zw
	}
	l.encoder = NewEncoder(w)

	return l, nil
}

// Log writes an event to the capture file.
func (l *FileLogger) Log(event Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}

	// Capture must never disrupt the session; encoding errors are dropped.
	_ = l.encoder.Encode(event)
}

// Flush pushes buffered compressed data to the file.
// It is a no-op for uncompressed captures.
func (l *FileLogger) Flush() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed || l.zw == nil {
		return nil
	}
	return l.zw.Flush()
}

// Close finishes the compressed stream (if any) and closes the file.
// It is safe to call Close multiple times; later Log calls are ignored.
func (l *FileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true

	if l.zw != nil {
		if err := l.zw.Close(); err != nil {
			l.file.Close()
			return err
		}
	}
	return l.file.Close()
}

// Compile-time interface satisfaction check.
var _ Logger = (*FileLogger)(nil)
