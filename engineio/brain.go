package engineio

import (
	"github.com/eio-core/server/packet"
	"github.com/eio-core/server/pkg/log"
)

var brainLog = log.NewLog("engineio:brain")

// runBrain is the per-session cooperative loop (C3): it translates between
// packet-level queues (what the current transport carries) and
// message-level queues (what the application reads and writes), and
// answers protocol packets directly. It never performs I/O itself — only
// queue operations — so it never blocks on a slow client or a stalled HTTP
// handler.
//
// It owns no lock. Concurrency safety comes entirely from each iteration
// re-reading the socket's transport slot and from every queue being safe
// for concurrent Push/consume.
func runBrain(s *Socket, reg *Registry) {
	for {
		t := s.Transport()

		select {
		case pkt := <-t.In.Out():
			switch pkt.Type {
			case packet.MESSAGE:
				s.incoming.Push(pkt.Data)
			case packet.PING:
				// Re-read the transport rather than reusing t, for the same
				// reason the outbound arm below does: an upgrade can commit
				// between this select firing and this push, and the brain is
				// normally parked in select on the shared `in` queue right up
				// to the moment setTransport lands, so the first post-upgrade
				// frame is exactly when t is stale.
				s.Transport().Out.Push(packet.New(packet.PONG, pkt.Data))
			case packet.CLOSE:
				brainLog.Debug("socket %s closing on CLOSE packet", s.id)
				s.destroy(reg)
				return
			default:
				// UPGRADE/NOOP/OPEN arriving on `in` are forward-compatibility
				// noise from this core's own protocol use; anything else is an
				// out-of-band or future packet type. Either way: discard.
			}

		case b := <-s.outgoing.Out():
			// Re-read the transport right before writing rather than reusing t:
			// an upgrade may have committed between this case firing and now,
			// and a just-submitted message belongs on whichever transport is
			// current at send time, not the one current when select woke up.
			s.Transport().Out.Push(packet.New(packet.MESSAGE, b))
		}
	}
}
