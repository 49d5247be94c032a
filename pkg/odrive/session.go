package odrive

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/odrive-host/odrive-go/pkg/interaction"
	"github.com/odrive-host/odrive-go/pkg/log"
	"github.com/odrive-host/odrive-go/pkg/schema"
	"github.com/odrive-host/odrive-go/pkg/transport"
	"github.com/odrive-host/odrive-go/pkg/usb"
)

// ErrNoSchema indicates an accessor used before a schema was loaded.
var ErrNoSchema = errors.New("no schema loaded")

// Session is a connection to one device.
type Session struct {
	id     string
	serial string
	client *interaction.Client

	logger         *slog.Logger
	protocolLogger log.Logger

	mu          sync.RWMutex
	root        *schema.Root
	descriptors map[string]schema.Descriptor
}

// Connect opens the USB device whose serial matches and returns a session
// without a schema. An empty serial selects the first device found.
func Connect(ctx context.Context, serial string, opts ...Option) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dev, err := usb.Open(serial)
	if err != nil {
		return nil, err
	}
	opts = append([]Option{WithSerial(dev.Serial())}, opts...)
	return NewSession(dev, opts...), nil
}

// NewSession creates a session over an already connected transport. The
// session owns tr and closes it on Close.
func NewSession(tr transport.Transport, opts ...Option) *Session {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.sessionID == "" {
		o.sessionID = uuid.NewString()
	}

	if o.protocolLogger != nil {
		lt := transport.NewLogging(tr, o.protocolLogger, o.sessionID)
		lt.SetSerial(o.serial)
		tr = lt
	}

	client := interaction.NewClient(tr)
	client.SetTimeout(o.timeout)
	if o.protocolLogger != nil {
		client.SetLogger(o.protocolLogger, o.sessionID)
		client.SetSerial(o.serial)
	}
	if o.hook != nil {
		client.SetHook(o.hook)
	}

	s := &Session{
		id:             o.sessionID,
		serial:         o.serial,
		client:         client,
		logger:         o.logger,
		protocolLogger: o.protocolLogger,
		descriptors:    make(map[string]schema.Descriptor),
	}
	if s.logger != nil {
		s.logger.Info("session opened", "sessionID", s.id, "serial", s.serial)
	}
	return s
}

// ID returns the session id.
func (s *Session) ID() string {
	return s.id
}

// Serial returns the device serial number, if known.
func (s *Session) Serial() string {
	return s.serial
}

// Stats returns the exchange counters.
func (s *Session) Stats() interaction.Stats {
	return s.client.Stats()
}

// Exchange runs a raw exchange.
func (s *Session) Exchange(ctx context.Context, req interaction.Request) ([]byte, error) {
	return s.client.Exchange(ctx, req)
}

// LoadSchema downloads and parses the schema from the device and makes it
// the active schema.
func (s *Session) LoadSchema(ctx context.Context) (*schema.Root, error) {
	start := time.Now()
	root, err := schema.Load(ctx, s.client)
	if err != nil {
		if s.logger != nil {
			s.logger.Error("schema load failed", "sessionID", s.id, "error", err)
		}
		return nil, fmt.Errorf("load schema: %w", err)
	}

	s.UseSchema(root)
	if s.logger != nil {
		s.logger.Debug("schema loaded",
			"sessionID", s.id,
			"bytes", len(root.Document()),
			"elapsed", time.Since(start))
	}
	s.logState("LOADED", fmt.Sprintf("%d bytes", len(root.Document())))
	return root, nil
}

// UseSchema installs root as the active schema, e.g. one read from a
// cache. Cached descriptors are discarded.
func (s *Session) UseSchema(root *schema.Root) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.root = root
	s.descriptors = make(map[string]schema.Descriptor)
}

// Schema returns the active schema or nil.
func (s *Session) Schema() *schema.Root {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.root
}

// Resolve returns the descriptor at path in the active schema.
func (s *Session) Resolve(path string) (schema.Descriptor, error) {
	s.mu.RLock()
	root := s.root
	d, ok := s.descriptors[path]
	s.mu.RUnlock()

	if root == nil {
		return schema.Descriptor{}, ErrNoSchema
	}
	if ok {
		return d, nil
	}

	d, err := root.Resolve(path)
	if err != nil {
		return schema.Descriptor{}, err
	}

	s.mu.Lock()
	if s.root == root {
		s.descriptors[path] = d
	}
	s.mu.Unlock()
	return d, nil
}

// Close waits for any exchange in progress and closes the transport.
func (s *Session) Close() error {
	err := s.client.Close()
	if s.logger != nil {
		s.logger.Info("session closed", "sessionID", s.id)
	}
	return err
}

func (s *Session) logState(state, reason string) {
	if s.protocolLogger == nil {
		return
	}
	s.protocolLogger.Log(log.Event{
		Timestamp: time.Now(),
		SessionID: s.id,
		Serial:    s.serial,
		Layer:     log.LayerSession,
		Category:  log.CategoryState,
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntitySchema,
			NewState: state,
			Reason:   reason,
		},
	})
}
