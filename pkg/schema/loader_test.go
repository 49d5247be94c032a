package schema

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	sim "github.com/odrive-host/odrive-go/internal/mock"
	"github.com/odrive-host/odrive-go/pkg/interaction"
	"github.com/odrive-host/odrive-go/pkg/wire"
)

type stubExchanger struct {
	mock.Mock
}

func (s *stubExchanger) Exchange(ctx context.Context, req interaction.Request) ([]byte, error) {
	args := s.Called(ctx, req)
	b, _ := args.Get(0).([]byte)
	return b, args.Error(1)
}

func chunkAt(addr uint32) interaction.Request {
	return interaction.Request{
		EndpointID:  wire.SchemaEndpoint,
		AwaitReply:  true,
		ReplySize:   ChunkSize,
		ReadRequest: true,
		Address:     addr,
	}
}

func TestFetchStopsOnEmptyChunk(t *testing.T) {
	first := bytes.Repeat([]byte{'a'}, 64)
	second := bytes.Repeat([]byte{'b'}, 64)

	ex := &stubExchanger{}
	ex.On("Exchange", mock.Anything, chunkAt(0)).Return(first, nil).Once()
	ex.On("Exchange", mock.Anything, chunkAt(64)).Return(second, nil).Once()
	ex.On("Exchange", mock.Anything, chunkAt(128)).Return([]byte{}, nil).Once()

	doc, err := Fetch(context.Background(), ex)
	require.NoError(t, err)
	assert.Equal(t, append(first, second...), doc)
	ex.AssertExpectations(t)
	ex.AssertNumberOfCalls(t, "Exchange", 3)
}

func TestFetchStopsOnTransportEOF(t *testing.T) {
	eof := &interaction.ExchangeError{Op: interaction.ErrTransportRead, Err: io.EOF}

	ex := &stubExchanger{}
	ex.On("Exchange", mock.Anything, chunkAt(0)).Return([]byte("[]"), nil).Once()
	ex.On("Exchange", mock.Anything, chunkAt(2)).Return(nil, eof).Once()

	doc, err := Fetch(context.Background(), ex)
	require.NoError(t, err)
	assert.Equal(t, []byte("[]"), doc)
}

func TestFetchPropagatesErrors(t *testing.T) {
	boom := &interaction.ExchangeError{Op: interaction.ErrTransportRead, Err: context.DeadlineExceeded}

	ex := &stubExchanger{}
	ex.On("Exchange", mock.Anything, chunkAt(0)).Return(nil, boom).Once()

	_, err := Fetch(context.Background(), ex)
	assert.ErrorIs(t, err, interaction.ErrTransportRead)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFetchDocumentTooLarge(t *testing.T) {
	chunk := bytes.Repeat([]byte{' '}, 1<<20)
	ex := &stubExchanger{}
	ex.On("Exchange", mock.Anything, mock.Anything).Return(chunk, nil)

	_, err := Fetch(context.Background(), ex)
	assert.ErrorIs(t, err, ErrDocumentTooLarge)
}

func TestFetchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Fetch(ctx, &stubExchanger{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadParseError(t *testing.T) {
	ex := &stubExchanger{}
	ex.On("Exchange", mock.Anything, chunkAt(0)).Return([]byte("not json"), nil).Once()
	ex.On("Exchange", mock.Anything, chunkAt(8)).Return([]byte{}, nil).Once()

	_, err := Load(context.Background(), ex)
	assert.ErrorIs(t, err, ErrParse)
}

func TestLoadFromSimulatedDevice(t *testing.T) {
	dev := sim.NewDemo()
	client := interaction.NewClient(dev)
	defer client.Close()

	root, err := Load(context.Background(), client)
	require.NoError(t, err)
	assert.Equal(t, sim.DemoSchema, root.Document())

	d, err := root.Resolve("axis0.controller.input_vel")
	require.NoError(t, err)
	assert.Equal(t, sim.DemoInputVel, d.ID)

	// Every chunk is a read-at-offset request to endpoint 0.
	var addr uint32
	for i, f := range dev.Received() {
		assert.True(t, f.ReadRequest, fmt.Sprintf("request %d", i))
		assert.Equal(t, addr, f.Address)
		addr += uint32(min(wire.MaxReplySize-wire.ReplyHeaderSize, len(sim.DemoSchema)-int(addr)))
	}
}

func TestLoadOverSequenceError(t *testing.T) {
	dev := sim.NewDemo()
	dev.InjectFault(sim.FaultWrongSequence)
	client := interaction.NewClient(dev)

	_, err := Load(context.Background(), client)
	assert.True(t, errors.Is(err, interaction.ErrOutOfOrderReply))
}

func TestVerifyMatchingDocument(t *testing.T) {
	client := interaction.NewClient(sim.NewDemo())
	defer client.Close()

	ok, err := Verify(context.Background(), client, sim.DemoSchema)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint64(2), client.Stats().Exchanges)
}

func TestVerifyDetectsChangedDocument(t *testing.T) {
	changedHead := append([]byte(nil), sim.DemoSchema...)
	changedHead[10] ^= 0x20
	grown := append(append([]byte(nil), sim.DemoSchema...), ' ')

	tests := []struct {
		name string
		doc  []byte
	}{
		{"different prefix", changedHead},
		{"device document longer", sim.DemoSchema[:len(sim.DemoSchema)-1]},
		{"device document shorter", grown},
		{"empty", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := interaction.NewClient(sim.NewDemo())
			defer client.Close()

			ok, err := Verify(context.Background(), client, tt.doc)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestVerifyDeviceShorterEndsOnEOF(t *testing.T) {
	eof := &interaction.ExchangeError{Op: interaction.ErrTransportRead, Err: io.EOF}

	ex := &stubExchanger{}
	ex.On("Exchange", mock.Anything, chunkAt(0)).Return([]byte("[]"), nil).Once()
	ex.On("Exchange", mock.Anything, chunkAt(2)).Return(nil, eof).Once()

	ok, err := Verify(context.Background(), ex, []byte("[] "))
	require.NoError(t, err)
	assert.False(t, ok)
	ex.AssertExpectations(t)
}

func TestVerifyReadsLastByte(t *testing.T) {
	ex := &stubExchanger{}
	ex.On("Exchange", mock.Anything, chunkAt(0)).Return([]byte("[]"), nil).Once()
	ex.On("Exchange", mock.Anything, chunkAt(1)).Return([]byte("]"), nil).Once()

	ok, err := Verify(context.Background(), ex, []byte("[]"))
	require.NoError(t, err)
	assert.True(t, ok)
	ex.AssertExpectations(t)
}

func TestVerifyPropagatesErrors(t *testing.T) {
	boom := &interaction.ExchangeError{Op: interaction.ErrTransportRead, Err: context.DeadlineExceeded}

	ex := &stubExchanger{}
	ex.On("Exchange", mock.Anything, chunkAt(0)).Return(nil, boom).Once()

	_, err := Verify(context.Background(), ex, []byte("[]"))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
