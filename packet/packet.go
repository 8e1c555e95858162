// Package packet defines the Engine.IO packet: a tagged, opaque byte string
// exchanged between a client and a session's current transport.
package packet

import "fmt"

// Type is an Engine.IO packet type. On the wire a Type is a single ASCII
// digit '0'..'6'; in memory it is kept as a small integer so packets can be
// switched on directly.
type Type byte

// Packet types, in their wire ordinal order.
const (
	OPEN Type = iota
	CLOSE
	PING
	PONG
	MESSAGE
	UPGRADE
	NOOP
)

// IsValid reports whether t is one of the seven Engine.IO packet types.
func (t Type) IsValid() bool {
	return t <= NOOP
}

// String renders the type for logging, e.g. "MESSAGE".
func (t Type) String() string {
	switch t {
	case OPEN:
		return "OPEN"
	case CLOSE:
		return "CLOSE"
	case PING:
		return "PING"
	case PONG:
		return "PONG"
	case MESSAGE:
		return "MESSAGE"
	case UPGRADE:
		return "UPGRADE"
	case NOOP:
		return "NOOP"
	default:
		return fmt.Sprintf("Type(%d)", byte(t))
	}
}

// Packet is a tagged byte string: (Type, Data). Data is opaque to this
// package; only the Socket.IO layer above interprets MESSAGE payloads.
type Packet struct {
	Type Type
	Data []byte
}

// New builds a Packet from a type and payload. The payload may be nil for
// packets that carry no body (e.g. CLOSE, NOOP).
func New(t Type, data []byte) Packet {
	return Packet{Type: t, Data: data}
}

// Equal reports whether two packets have the same type and byte-identical data.
func (p Packet) Equal(o Packet) bool {
	if p.Type != o.Type || len(p.Data) != len(o.Data) {
		return false
	}
	for i := range p.Data {
		if p.Data[i] != o.Data[i] {
			return false
		}
	}
	return true
}
