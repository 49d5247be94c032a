package schema

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/odrive-host/odrive-go/pkg/interaction"
	"github.com/odrive-host/odrive-go/pkg/wire"
)

// ChunkSize is the reply size requested for each schema chunk.
const ChunkSize = 64

// MaxDocumentSize bounds the accumulated schema document.
const MaxDocumentSize = 4 << 20

// ErrDocumentTooLarge indicates a document exceeding MaxDocumentSize.
var ErrDocumentTooLarge = errors.New("schema document too large")

// Exchanger runs a single exchange. Implemented by *interaction.Client.
type Exchanger interface {
	Exchange(ctx context.Context, req interaction.Request) ([]byte, error)
}

var _ Exchanger = (*interaction.Client)(nil)

// Fetch streams the raw schema document from endpoint 0. It stops at the
// first empty chunk or when the transport reports io.EOF.
func Fetch(ctx context.Context, ex Exchanger) ([]byte, error) {
	var doc []byte
	var addr uint32

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		chunk, err := fetchChunk(ctx, ex, addr)
		if err != nil {
			if endOfDocument(err) {
				return doc, nil
			}
			return nil, fmt.Errorf("schema chunk at %d: %w", addr, err)
		}
		if len(chunk) == 0 {
			return doc, nil
		}
		if len(doc)+len(chunk) > MaxDocumentSize {
			return nil, fmt.Errorf("%w: more than %d bytes", ErrDocumentTooLarge, MaxDocumentSize)
		}

		doc = append(doc, chunk...)
		addr += uint32(len(chunk))
	}
}

// Verify reports whether doc still describes the device behind ex. The
// first chunk must be a prefix of doc, and reading at the last byte of doc
// must return exactly that byte.
func Verify(ctx context.Context, ex Exchanger, doc []byte) (bool, error) {
	if len(doc) == 0 {
		return false, nil
	}

	head, err := fetchChunk(ctx, ex, 0)
	if err != nil && !endOfDocument(err) {
		return false, fmt.Errorf("schema chunk at 0: %w", err)
	}
	if len(head) == 0 || !bytes.HasPrefix(doc, head) {
		return false, nil
	}

	last := uint32(len(doc) - 1)
	tail, err := fetchChunk(ctx, ex, last)
	if err != nil {
		if endOfDocument(err) {
			return false, nil
		}
		return false, fmt.Errorf("schema chunk at %d: %w", last, err)
	}
	return len(tail) == 1 && tail[0] == doc[last], nil
}

func fetchChunk(ctx context.Context, ex Exchanger, addr uint32) ([]byte, error) {
	return ex.Exchange(ctx, interaction.Request{
		EndpointID:  wire.SchemaEndpoint,
		AwaitReply:  true,
		ReplySize:   ChunkSize,
		ReadRequest: true,
		Address:     addr,
	})
}

// endOfDocument reports whether err is the device closing the schema stream.
func endOfDocument(err error) bool {
	return errors.Is(err, interaction.ErrTransportRead) && errors.Is(err, io.EOF)
}

// Load fetches and parses the schema document.
func Load(ctx context.Context, ex Exchanger) (*Root, error) {
	doc, err := Fetch(ctx, ex)
	if err != nil {
		return nil, err
	}
	return Parse(doc)
}
