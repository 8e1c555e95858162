// Package parser implements the Engine.IO wire codec: Packet <-> bytes and
// Payload <-> bytes, per the binary long-polling framing used by this core.
package parser

import (
	"errors"
	"strconv"

	"github.com/eio-core/server/packet"
)

// maxLengthDigits bounds the length prefix of a payload frame: a prefix
// longer than this many bytes can never legitimately describe an HTTP
// request/response body, so it is rejected outright rather than walked.
const maxLengthDigits = 319

const lengthSeparator = 0xFF

var (
	// ErrUnknownType is returned when a packet's leading byte is not one of '0'..'6'.
	ErrUnknownType = errors.New("parser: unknown packet type")
	// ErrEmptyPacket is returned when decoding an empty byte string as a packet.
	ErrEmptyPacket = errors.New("parser: empty packet")
	// ErrLengthDigit is returned when a payload frame's length prefix contains a
	// byte value outside 0..9.
	ErrLengthDigit = errors.New("parser: invalid length digit")
	// ErrLengthTooLong is returned when a payload frame's length prefix exceeds maxLengthDigits bytes.
	ErrLengthTooLong = errors.New("parser: length prefix too long")
	// ErrShortBody is returned when a payload frame declares a length longer than the remaining bytes.
	ErrShortBody = errors.New("parser: packet shorter than declared length")
	// ErrBadFrameStart is returned when a payload frame does not begin with the 0x00 marker byte.
	ErrBadFrameStart = errors.New("parser: malformed payload frame")
)

// EncodePacket renders a Packet onto the wire: one ASCII digit '0'..'6'
// followed by the opaque payload.
func EncodePacket(p packet.Packet) ([]byte, error) {
	if !p.Type.IsValid() {
		return nil, ErrUnknownType
	}
	out := make([]byte, 0, len(p.Data)+1)
	out = append(out, byte('0'+p.Type))
	out = append(out, p.Data...)
	return out, nil
}

// DecodePacket parses a single wire-form Packet: a leading type digit
// followed by the opaque payload.
func DecodePacket(b []byte) (packet.Packet, error) {
	if len(b) == 0 {
		return packet.Packet{}, ErrEmptyPacket
	}
	if b[0] < '0' || b[0] > '6' {
		return packet.Packet{}, ErrUnknownType
	}
	t := packet.Type(b[0] - '0')
	var data []byte
	if len(b) > 1 {
		data = append([]byte(nil), b[1:]...)
	}
	return packet.New(t, data), nil
}

// EncodePayload frames one or more Packets into a single polling response
// body: frame := 0x00 len-digits 0xFF packet-bytes, repeated.
//
// len-digits are byte VALUES 0..9 (not ASCII), the base-10 length of
// packet-bytes (the type byte plus the payload).
func EncodePayload(packets []packet.Packet) ([]byte, error) {
	out := make([]byte, 0, 64*len(packets))
	for _, p := range packets {
		body, err := EncodePacket(p)
		if err != nil {
			return nil, err
		}
		out = append(out, 0x00)
		out = append(out, digitsOf(len(body))...)
		out = append(out, lengthSeparator)
		out = append(out, body...)
	}
	return out, nil
}

// digitsOf converts the ASCII decimal representation of n into raw byte-value
// digits (e.g. 12 -> []byte{1, 2}), as required by the frame's len-digits field.
func digitsOf(n int) []byte {
	ascii := strconv.Itoa(n)
	digits := make([]byte, len(ascii))
	for i := range ascii {
		digits[i] = ascii[i] - '0'
	}
	return digits
}

// DecodePayload parses a polling request/response body into its constituent
// Packets, per the frame grammar documented on EncodePayload.
func DecodePayload(body []byte) ([]packet.Packet, error) {
	var packets []packet.Packet
	for len(body) > 0 {
		if body[0] != 0x00 {
			return nil, ErrBadFrameStart
		}
		body = body[1:]

		digitEnd := 0
		for digitEnd < len(body) && body[digitEnd] != lengthSeparator {
			if digitEnd >= maxLengthDigits {
				return nil, ErrLengthTooLong
			}
			if body[digitEnd] > 9 {
				return nil, ErrLengthDigit
			}
			digitEnd++
		}
		if digitEnd >= len(body) {
			return nil, ErrShortBody
		}

		length := 0
		for _, d := range body[:digitEnd] {
			length = length*10 + int(d)
		}
		body = body[digitEnd+1:] // skip past 0xFF

		if len(body) < length {
			return nil, ErrShortBody
		}

		pkt, err := DecodePacket(body[:length])
		if err != nil {
			return nil, err
		}
		packets = append(packets, pkt)
		body = body[length:]
	}
	if len(packets) == 0 {
		return nil, errors.New("parser: payload must contain at least one packet")
	}
	return packets, nil
}
