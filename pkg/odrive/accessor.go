package odrive

import (
	"context"
	"errors"
	"fmt"

	"github.com/odrive-host/odrive-go/pkg/interaction"
	"github.com/odrive-host/odrive-go/pkg/schema"
	"github.com/odrive-host/odrive-go/pkg/wire"
)

// Accessor errors.
var (
	// ErrSizeMismatch indicates a reply shorter than the value width.
	ErrSizeMismatch = errors.New("reply shorter than value")

	// ErrReadOnly indicates a write to a read-only endpoint. It matches
	// schema.ErrTypeMismatch.
	ErrReadOnly = fmt.Errorf("read-only endpoint: %w", schema.ErrTypeMismatch)
)

// scalar resolves path and checks that it is a scalar of type want.
func (s *Session) scalar(path string, want wire.Type) (schema.Descriptor, error) {
	d, err := s.Resolve(path)
	if err != nil {
		return d, err
	}
	if d.Kind != schema.KindScalar {
		return d, fmt.Errorf("%s: %w: %s is not a value", path, schema.ErrTypeMismatch, d.Kind)
	}
	if want != wire.TypeUnknown && d.Type != want {
		return d, fmt.Errorf("%s: %w: endpoint is %s, not %s", path, schema.ErrTypeMismatch, d.Type, want)
	}
	if !d.Type.IsKnown() {
		return d, fmt.Errorf("%s: %w: %w", path, schema.ErrTypeMismatch, wire.ErrUnsupportedType)
	}
	return d, nil
}

func (s *Session) readRaw(ctx context.Context, d schema.Descriptor) ([]byte, error) {
	size := d.Type.Size()
	payload, err := s.client.Exchange(ctx, interaction.Request{
		EndpointID: d.ID,
		AwaitReply: true,
		ReplySize:  uint16(size),
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", d.Path, err)
	}
	if len(payload) < size {
		return nil, fmt.Errorf("%s: %w: got %d bytes, want %d", d.Path, ErrSizeMismatch, len(payload), size)
	}
	return payload, nil
}

func (s *Session) writeRaw(ctx context.Context, d schema.Descriptor, data []byte) error {
	if d.Access == schema.ReadOnly {
		return fmt.Errorf("%s: %w", d.Path, ErrReadOnly)
	}
	if _, err := s.client.Exchange(ctx, interaction.Request{
		EndpointID: d.ID,
		Payload:    data,
		AwaitReply: true,
	}); err != nil {
		return fmt.Errorf("%s: %w", d.Path, err)
	}
	return nil
}

// Read reads the scalar at path. T must match the schema type.
func Read[T wire.Scalar](ctx context.Context, s *Session, path string) (T, error) {
	var zero T
	d, err := s.scalar(path, wire.TypeOf[T]())
	if err != nil {
		return zero, err
	}
	payload, err := s.readRaw(ctx, d)
	if err != nil {
		return zero, err
	}
	return wire.DecodeScalar[T](payload)
}

// Write writes v to the scalar at path. T must match the schema type.
func Write[T wire.Scalar](ctx context.Context, s *Session, path string, v T) error {
	d, err := s.scalar(path, wire.TypeOf[T]())
	if err != nil {
		return err
	}
	return s.writeRaw(ctx, d, wire.EncodeScalar(v))
}

// ReadValue reads the scalar at path as its schema type.
func (s *Session) ReadValue(ctx context.Context, path string) (any, error) {
	d, err := s.scalar(path, wire.TypeUnknown)
	if err != nil {
		return nil, err
	}
	payload, err := s.readRaw(ctx, d)
	if err != nil {
		return nil, err
	}
	return wire.DecodeValue(d.Type, payload)
}

// WriteValue writes v to the scalar at path. The dynamic type of v must
// match the schema type.
func (s *Session) WriteValue(ctx context.Context, path string, v any) error {
	d, err := s.scalar(path, wire.TypeUnknown)
	if err != nil {
		return err
	}
	data, err := wire.EncodeValue(d.Type, v)
	if err != nil {
		return fmt.Errorf("%s: %w: %w", path, schema.ErrTypeMismatch, err)
	}
	return s.writeRaw(ctx, d, data)
}

// Invoke calls the function at path without arguments.
func (s *Session) Invoke(ctx context.Context, path string) error {
	d, err := s.Resolve(path)
	if err != nil {
		return err
	}
	if d.Kind != schema.KindFunction {
		return fmt.Errorf("%s: %w: %s is not a function", path, schema.ErrTypeMismatch, d.Kind)
	}
	if _, err := s.client.Exchange(ctx, interaction.Request{
		EndpointID: d.ID,
		AwaitReply: true,
	}); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}
