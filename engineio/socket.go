package engineio

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/eio-core/server/engineio/queue"
)

// idRandMu serializes draws from the process-wide CSPRNG, per the core's
// concurrency model: "The CSPRNG is process-wide and accessed under a mutex
// for each ID draw."
var idRandMu sync.Mutex

// GenerateID mints a fresh session identifier: 15 bytes from a CSPRNG, each
// forced into the range [0,63], then standard-base64-encoded to 20 ASCII
// characters. The byte range and encoding are deliberately odd — legacy
// wire compatibility requires this exact derivation, biased as it is; see
// the design notes for why it is not "fixed".
func GenerateID() (string, error) {
	buf := make([]byte, 15)

	idRandMu.Lock()
	_, err := rand.Read(buf)
	idRandMu.Unlock()
	if err != nil {
		return "", err
	}

	for i := range buf {
		buf[i] &= 0x3f
	}
	return base64.StdEncoding.EncodeToString(buf), nil
}

// ErrSocketClosed is returned by DequeueMessage once a Socket has been torn
// down, so callers blocked on it unblock instead of hanging forever.
var ErrSocketClosed = errors.New("engineio: socket closed")

// Socket is one logical, bidirectional session between a client and this
// server, identified by Id and surviving transport changes underneath it.
// It exposes exactly the application-visible surface the core promises:
// an immutable id, a blocking/composable inbound dequeue, and a
// non-blocking outbound enqueue.
type Socket struct {
	id string

	transport atomic.Pointer[Transport]

	incoming *queue.Queue[[]byte]
	outgoing *queue.Queue[[]byte]

	closeOnce sync.Once
	closed    chan struct{}
}

func newSocket(id string) *Socket {
	s := &Socket{
		id:       id,
		incoming: queue.New[[]byte](),
		outgoing: queue.New[[]byte](),
		closed:   make(chan struct{}),
	}
	s.transport.Store(newPollingTransport())
	return s
}

// Id returns the session's wire identifier. It never changes.
func (s *Socket) Id() string {
	return s.id
}

// Transport returns the Socket's current transport. The brain and the HTTP
// handlers each re-read this at the top of their loop/request so a
// concurrent upgrade is picked up without restarting either of them.
func (s *Socket) Transport() *Transport {
	return s.transport.Load()
}

func (s *Socket) setTransport(t *Transport) {
	s.transport.Store(t)
}

// Incoming exposes the raw delivery channel behind DequeueMessage, so
// application code can fold several sockets (and other signals) into a
// single `select`, per the core's composability requirement.
func (s *Socket) Incoming() <-chan []byte {
	return s.incoming.Out()
}

// DequeueMessage blocks until an inbound application message is available,
// the socket is destroyed, or ctx is cancelled.
func (s *Socket) DequeueMessage(ctx context.Context) ([]byte, error) {
	select {
	case b, ok := <-s.incoming.Out():
		if !ok {
			return nil, ErrSocketClosed
		}
		return b, nil
	case <-s.closed:
		return nil, ErrSocketClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// EnqueueMessage submits bytes for delivery to the client. It never blocks:
// the brain framing them as MESSAGE packets and placing them on the
// then-current transport happens asynchronously.
func (s *Socket) EnqueueMessage(b []byte) {
	s.outgoing.Push(b)
}

// destroy tears the socket down. It is idempotent. The brain calls it on a
// consumed CLOSE packet, including the synthetic CLOSE the upgrade handler
// enqueues when its WebSocket reader exits.
func (s *Socket) destroy(reg *Registry) {
	s.closeOnce.Do(func() {
		reg.Delete(s.id)
		close(s.closed)
		s.incoming.Close()
		s.outgoing.Close()
		if t := s.transport.Load(); t != nil {
			t.In.Close()
			t.Out.Close()
		}
	})
}
