// Package wire defines the binary frame format used to talk to the device.
//
// Every request is a little-endian frame:
//
//	offset 0: u16 sequence
//	offset 2: u16 endpoint id (bit 15 = acknowledgement requested)
//	offset 4: u16 expected response size
//	[offset 6: u32 address]  -- read-at-offset requests only
//	          payload
//	end-2:    u16 trailer
//
// Replies carry only the sequence word followed by the payload. There is no
// length field; the payload is the rest of the received buffer.
//
// # Trailer
//
// The trailer is the protocol version when the endpoint id is 0 and a fixed
// legacy constant otherwise. It is not a checksum over the frame and is
// never validated on decode.
//
// # Scalars
//
// Endpoint values are fixed-width little-endian scalars. The encoders in
// this package never depend on host memory layout.
package wire
