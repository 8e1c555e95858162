package engineio

import (
	"errors"

	"github.com/eio-core/server/packet"
	"github.com/eio-core/server/parser"
	"github.com/eio-core/server/pkg/log"
)

var upgradeLog = log.NewLog("engineio:upgrade")

const probePayload = "probe"

// serveUpgrade drives the entire lifetime of one WebSocket connection: the
// probe handshake (§4.7 steps 1-4), the atomic transport commit (step 5),
// and the bidirectional pump that follows it. It returns once the
// connection is done, one way or another; it never surfaces an
// EngineIOError over HTTP — a failed or aborted upgrade simply closes the
// WS and leaves the session on its existing polling transport.
func (d *Dispatcher) serveUpgrade(api ServerAPI, sock *Socket) {
	err := api.RunWebSocket(func(conn WSConn) error {
		return runUpgrade(conn, sock)
	})
	if err != nil {
		upgradeLog.Debug("socket %s: websocket handshake failed: %s", sock.id, err)
	}
}

func runUpgrade(conn WSConn, sock *Socket) error {
	polling := sock.Transport()

	probe, err := readPacket(conn)
	if err != nil {
		upgradeLog.Debug("socket %s: probe read failed: %s", sock.id, err)
		_ = conn.Close()
		return err
	}
	if probe.Type != packet.PING || string(probe.Data) != probePayload {
		upgradeLog.Debug("socket %s: unexpected probe packet %s", sock.id, probe.Type)
		_ = conn.Close()
		return errors.New("engineio: upgrade aborted: not a probe ping")
	}

	if err := writePacket(conn, packet.New(packet.PONG, []byte(probePayload))); err != nil {
		_ = conn.Close()
		return err
	}

	// Unstick any polling GET that is still blocked draining `out`, and
	// build the transport the commit will install. wsIn shares the polling
	// transport's `in` queue instance rather than copying it, which is how
	// this core realizes the duplication invariant given its single-reader
	// (the brain) topology: see newWebSocketTransport.
	polling.Out.Push(packet.New(packet.NOOP, nil))
	ws := newWebSocketTransport(polling.In)

	completion, err := readPacket(conn)
	if err != nil {
		upgradeLog.Debug("socket %s: completion read failed: %s", sock.id, err)
		_ = conn.Close()
		return err
	}
	if completion.Type != packet.UPGRADE || len(completion.Data) != 0 {
		upgradeLog.Debug("socket %s: unexpected completion packet %s", sock.id, completion.Type)
		_ = conn.Close()
		return errors.New("engineio: upgrade aborted: not a bare upgrade packet")
	}

	sock.setTransport(ws)
	upgradeLog.Debug("socket %s: upgraded to websocket", sock.id)

	writerDone := make(chan struct{})
	go runUpgradeWriter(conn, ws, writerDone)

	runUpgradeReader(conn, ws, sock)

	<-writerDone
	return nil
}

// runUpgradeWriter forever forwards ws.Out onto conn as text frames until
// the queue is closed (session teardown) or a write fails.
func runUpgradeWriter(conn WSConn, ws *Transport, done chan<- struct{}) {
	defer close(done)
	for p := range ws.Out.Out() {
		encoded, err := parser.EncodePacket(p)
		if err != nil {
			upgradeLog.Error("websocket writer: encode failed: %s", err)
			continue
		}
		if err := conn.WriteMessage(wsTextMessage, encoded); err != nil {
			upgradeLog.Debug("websocket writer: write failed: %s", err)
			return
		}
	}
}

// runUpgradeReader reads frames until the connection fails in any way,
// then enqueues a synthetic CLOSE so the brain tears the session down and
// closes the connection itself, which is what cancels the writer (its next
// WriteMessage fails). Binary frames are logged and skipped, per §4.7.
func runUpgradeReader(conn WSConn, ws *Transport, sock *Socket) {
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			upgradeLog.Debug("socket %s: websocket reader: %s", sock.id, err)
			break
		}
		if msgType == wsBinaryMessage {
			upgradeLog.Debug("socket %s: binary frame skipped", sock.id)
			continue
		}

		p, err := parser.DecodePacket(data)
		if err != nil {
			upgradeLog.Debug("socket %s: malformed frame: %s", sock.id, err)
			break
		}
		ws.In.Push(p)
	}

	ws.In.Push(packet.New(packet.CLOSE, nil))
	_ = conn.Close()
}

// readPacket reads one WS data frame and decodes it as a Packet. Binary
// frames are not valid during the handshake itself; only a text probe or
// completion packet is ever expected here.
func readPacket(conn WSConn) (packet.Packet, error) {
	msgType, data, err := conn.ReadMessage()
	if err != nil {
		return packet.Packet{}, err
	}
	if msgType == wsBinaryMessage {
		return packet.Packet{}, errors.New("engineio: unexpected binary frame during handshake")
	}
	return parser.DecodePacket(data)
}

// writePacket encodes p and sends it as a single WS text frame.
func writePacket(conn WSConn, p packet.Packet) error {
	encoded, err := parser.EncodePacket(p)
	if err != nil {
		return err
	}
	return conn.WriteMessage(wsTextMessage, encoded)
}
