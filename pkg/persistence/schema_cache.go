package persistence

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// CacheVersion is the current version of the cache file format.
const CacheVersion = 1

// ErrNoSerial indicates a cache operation without a device serial.
var ErrNoSerial = errors.New("device serial required")

// CachedSchema is one cached schema document.
type CachedSchema struct {
	// Version is the cache file format version.
	Version int `json:"version"`

	// Serial is the device serial number.
	Serial string `json:"serial"`

	// SavedAt is when the document was cached.
	SavedAt time.Time `json:"saved_at"`

	// Document is the raw schema document.
	Document string `json:"document"`
}

// SchemaStore manages cached schema documents in a directory.
type SchemaStore struct {
	mu  sync.Mutex
	dir string
}

// NewSchemaStore creates a store rooted at dir.
func NewSchemaStore(dir string) *SchemaStore {
	return &SchemaStore{dir: dir}
}

// Path returns the cache file for serial.
func (s *SchemaStore) Path(serial string) string {
	return filepath.Join(s.dir, strings.ToUpper(serial)+".json")
}

// Save caches doc for serial.
func (s *SchemaStore) Save(serial string, doc []byte) error {
	if serial == "" {
		return ErrNoSerial
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(&CachedSchema{
		Version:  CacheVersion,
		Serial:   strings.ToUpper(serial),
		SavedAt:  time.Now(),
		Document: string(doc),
	}, "", "  ")
	if err != nil {
		return err
	}

	// Write then rename so readers never see a partial file.
	tmp := s.Path(serial) + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, s.Path(serial))
}

// Load returns the cached document for serial.
// Returns nil, nil if nothing is cached or the file has another version.
func (s *SchemaStore) Load(serial string) (*CachedSchema, error) {
	if serial == "" {
		return nil, ErrNoSerial
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.Path(serial))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	cached := &CachedSchema{}
	if err := json.Unmarshal(data, cached); err != nil {
		return nil, err
	}
	if cached.Version != CacheVersion {
		return nil, nil
	}
	return cached, nil
}

// Clear removes the cached document for serial.
func (s *SchemaStore) Clear(serial string) error {
	if serial == "" {
		return ErrNoSerial
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.Path(serial))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
