package parser

import (
	"bytes"
	"testing"

	"github.com/eio-core/server/packet"
)

func TestEncodeDecodePacketRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		pkt  packet.Packet
	}{
		{"open with body", packet.New(packet.OPEN, []byte(`{"sid":"abc"}`))},
		{"close empty", packet.New(packet.CLOSE, nil)},
		{"ping probe", packet.New(packet.PING, []byte("probe"))},
		{"message binary-ish bytes", packet.New(packet.MESSAGE, []byte{0x00, 0xff, 0x10})},
		{"noop", packet.New(packet.NOOP, nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded, err := EncodePacket(tt.pkt)
			if err != nil {
				t.Fatalf("EncodePacket: %v", err)
			}
			decoded, err := DecodePacket(encoded)
			if err != nil {
				t.Fatalf("DecodePacket: %v", err)
			}
			if !decoded.Equal(tt.pkt) {
				t.Fatalf("round trip = %+v, want %+v", decoded, tt.pkt)
			}
		})
	}
}

func TestEncodePacketUnknownType(t *testing.T) {
	if _, err := EncodePacket(packet.New(packet.Type(9), nil)); err != ErrUnknownType {
		t.Fatalf("err = %v, want ErrUnknownType", err)
	}
}

func TestDecodePacketEmpty(t *testing.T) {
	if _, err := DecodePacket(nil); err != ErrEmptyPacket {
		t.Fatalf("err = %v, want ErrEmptyPacket", err)
	}
}

func TestDecodePacketUnknownType(t *testing.T) {
	if _, err := DecodePacket([]byte("7hello")); err != ErrUnknownType {
		t.Fatalf("err = %v, want ErrUnknownType", err)
	}
}

func TestEncodeDecodePayloadRoundTrip(t *testing.T) {
	packets := []packet.Packet{
		packet.New(packet.MESSAGE, []byte("hi")),
		packet.New(packet.PONG, []byte("x")),
		packet.New(packet.NOOP, nil),
	}

	encoded, err := EncodePayload(packets)
	if err != nil {
		t.Fatalf("EncodePayload: %v", err)
	}

	decoded, err := DecodePayload(encoded)
	if err != nil {
		t.Fatalf("DecodePayload: %v", err)
	}
	if len(decoded) != len(packets) {
		t.Fatalf("got %d packets, want %d", len(decoded), len(packets))
	}
	for i := range packets {
		if !decoded[i].Equal(packets[i]) {
			t.Fatalf("packet %d = %+v, want %+v", i, decoded[i], packets[i])
		}
	}
}

func TestDecodePayloadShortBody(t *testing.T) {
	// Declares a packet of length 5 but only supplies 2 bytes.
	frame := []byte{0x00, 5, 0xFF, '4', 'h'}
	if _, err := DecodePayload(frame); err != ErrShortBody {
		t.Fatalf("err = %v, want ErrShortBody", err)
	}
}

func TestDecodePayloadLengthTooLong(t *testing.T) {
	frame := append([]byte{0x00}, bytes.Repeat([]byte{1}, maxLengthDigits+1)...)
	frame = append(frame, 0xFF, '4')
	if _, err := DecodePayload(frame); err != ErrLengthTooLong {
		t.Fatalf("err = %v, want ErrLengthTooLong", err)
	}
}

func TestDecodePayloadBadLengthDigit(t *testing.T) {
	frame := []byte{0x00, 10, 0xFF, '4'}
	if _, err := DecodePayload(frame); err != ErrLengthDigit {
		t.Fatalf("err = %v, want ErrLengthDigit", err)
	}
}

func TestParseTransportName(t *testing.T) {
	tests := []struct {
		in   string
		want TransportName
		ok   bool
	}{
		{"polling", Polling, true},
		{"websocket", WebSocket, true},
		{"Polling", "", false},
		{"", "", false},
		{"jsonp", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseTransportName(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseTransportName(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
