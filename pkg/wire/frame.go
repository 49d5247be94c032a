package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Protocol constants.
const (
	// ProtocolVersion is the trailer sent with requests to endpoint 0.
	ProtocolVersion uint16 = 1

	// DefaultTrailer is the trailer sent with requests to every other
	// endpoint. It is a fixed value, not a computed checksum.
	DefaultTrailer uint16 = 0x9B40

	// AckFlag marks bit 15 of the endpoint word (acknowledgement requested)
	// and of the reply sequence word (device originated).
	AckFlag uint16 = 0x8000

	// EndpointMask selects the 15-bit endpoint id.
	EndpointMask uint16 = 0x7FFF

	// SequenceMask selects the 15-bit sequence number.
	SequenceMask uint16 = 0x7FFF

	// SchemaEndpoint is the reserved endpoint serving the schema document.
	SchemaEndpoint uint16 = 0

	// MaxReplySize is the largest reply the host reads in one transfer.
	MaxReplySize = 64

	// HeaderSize is the fixed request header (sequence, endpoint, size).
	HeaderSize = 6

	// AddressSize is the size of the optional read address.
	AddressSize = 4

	// TrailerSize is the size of the request trailer.
	TrailerSize = 2

	// ReplyHeaderSize is the size of the reply sequence word.
	ReplyHeaderSize = 2
)

// Frame errors.
var (
	// ErrTruncated indicates a frame shorter than its fixed fields.
	ErrTruncated = errors.New("frame truncated")
)

// Frame is an outbound request frame.
type Frame struct {
	// Sequence correlates the request with its reply.
	Sequence uint16

	// EndpointID is the 15-bit target endpoint.
	EndpointID uint16

	// AckRequested asks the device to reply.
	AckRequested bool

	// ResponseSize is the number of reply bytes the host expects.
	ResponseSize uint16

	// ReadRequest adds Address to the frame.
	ReadRequest bool

	// Address is the read offset (ReadRequest only).
	Address uint32

	// Payload is the raw value bytes.
	Payload []byte
}

// Trailer returns the trailer word for the frame.
func (f Frame) Trailer() uint16 {
	if f.EndpointID&EndpointMask == SchemaEndpoint {
		return ProtocolVersion
	}
	return DefaultTrailer
}

// Size returns the encoded length of the frame.
func (f Frame) Size() int {
	n := HeaderSize + len(f.Payload) + TrailerSize
	if f.ReadRequest {
		n += AddressSize
	}
	return n
}

// Encode serializes the frame.
func (f Frame) Encode() []byte {
	buf := make([]byte, 0, f.Size())

	endpoint := f.EndpointID
	if f.AckRequested {
		endpoint |= AckFlag
	}

	buf = binary.LittleEndian.AppendUint16(buf, f.Sequence)
	buf = binary.LittleEndian.AppendUint16(buf, endpoint)
	buf = binary.LittleEndian.AppendUint16(buf, f.ResponseSize)
	if f.ReadRequest {
		buf = binary.LittleEndian.AppendUint32(buf, f.Address)
	}
	buf = append(buf, f.Payload...)
	buf = binary.LittleEndian.AppendUint16(buf, f.Trailer())

	return buf
}

// Reply is a decoded reply frame.
type Reply struct {
	// Sequence is the 15-bit sequence number with the origin flag removed.
	Sequence uint16

	// Payload is everything after the sequence word.
	Payload []byte
}

// DecodeReply parses a reply received from the device.
func DecodeReply(data []byte) (Reply, error) {
	if len(data) < ReplyHeaderSize {
		return Reply{}, fmt.Errorf("%w: reply has %d bytes", ErrTruncated, len(data))
	}

	payload := make([]byte, len(data)-ReplyHeaderSize)
	copy(payload, data[ReplyHeaderSize:])

	return Reply{
		Sequence: binary.LittleEndian.Uint16(data) & SequenceMask,
		Payload:  payload,
	}, nil
}

// EncodeReply serializes a reply the way the device sends it.
func EncodeReply(seq uint16, payload []byte) []byte {
	buf := make([]byte, 0, ReplyHeaderSize+len(payload))
	buf = binary.LittleEndian.AppendUint16(buf, (seq&SequenceMask)|AckFlag)
	return append(buf, payload...)
}

// DecodeRequest parses a request frame on the device side.
//
// The address field carries no marker of its own. For endpoint 0 the first
// four payload bytes are reported as the read address; for every other
// endpoint the whole body is payload.
func DecodeRequest(data []byte) (Frame, error) {
	if len(data) < HeaderSize+TrailerSize {
		return Frame{}, fmt.Errorf("%w: request has %d bytes", ErrTruncated, len(data))
	}

	endpoint := binary.LittleEndian.Uint16(data[2:])
	f := Frame{
		Sequence:     binary.LittleEndian.Uint16(data),
		EndpointID:   endpoint & EndpointMask,
		AckRequested: endpoint&AckFlag != 0,
		ResponseSize: binary.LittleEndian.Uint16(data[4:]),
	}

	body := data[HeaderSize : len(data)-TrailerSize]
	if f.EndpointID == SchemaEndpoint && len(body) >= AddressSize {
		f.ReadRequest = true
		f.Address = binary.LittleEndian.Uint32(body)
		body = body[AddressSize:]
	}

	if len(body) > 0 {
		f.Payload = make([]byte, len(body))
		copy(f.Payload, body)
	}
	return f, nil
}

// RequestTrailer returns the trailer word of an encoded request.
func RequestTrailer(data []byte) (uint16, error) {
	if len(data) < HeaderSize+TrailerSize {
		return 0, fmt.Errorf("%w: request has %d bytes", ErrTruncated, len(data))
	}
	return binary.LittleEndian.Uint16(data[len(data)-TrailerSize:]), nil
}
