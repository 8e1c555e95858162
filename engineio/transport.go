package engineio

import (
	"github.com/eio-core/server/engineio/queue"
	"github.com/eio-core/server/packet"
)

// Kind distinguishes the two transport types this core supports.
type Kind int

const (
	KindPolling Kind = iota
	KindWebSocket
)

func (k Kind) String() string {
	if k == KindWebSocket {
		return "websocket"
	}
	return "polling"
}

// Transport is the physical carrier under a Socket: an inbound queue fed by
// whatever HTTP/WS request is currently serving the client->server
// direction, and an outbound queue drained by whatever request is serving
// server->client.
//
// Transport never holds an HTTP request or WebSocket connection itself —
// those are transient per-request/per-connection objects owned by the
// polling and upgrade handlers. Transport only holds the packet-level
// queues, which is what lets a Socket survive the handoff between them.
type Transport struct {
	Kind Kind
	In   *queue.Queue[packet.Packet]
	Out  *queue.Queue[packet.Packet]
}

// newPollingTransport builds a fresh polling Transport with its own pair of
// queues, used both at session creation and never reused afterward (a
// polling Transport is discarded, not recycled, once the session upgrades).
func newPollingTransport() *Transport {
	return &Transport{
		Kind: KindPolling,
		In:   queue.New[packet.Packet](),
		Out:  queue.New[packet.Packet](),
	}
}

// newWebSocketTransport builds the Transport installed on a successful
// upgrade. Its In queue is not its own: the caller passes in the prior
// polling Transport's In queue directly, so every packet the client already
// sent — and every packet it sends during the remainder of the handshake —
// is observed by the brain exactly once, through whichever queue it happens
// to be reading at the time. Sharing the queue instance satisfies the
// duplication invariant exactly because the brain is the only reader of a
// transport's In queue: there is no second reader for a copy to diverge from.
func newWebSocketTransport(in *queue.Queue[packet.Packet]) *Transport {
	return &Transport{
		Kind: KindWebSocket,
		In:   in,
		Out:  queue.New[packet.Packet](),
	}
}
