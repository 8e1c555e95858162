package engineio

import (
	"bytes"
	"io"
	"net/http"

	"github.com/eio-core/server/engineio/ierrors"
	"github.com/eio-core/server/packet"
	"github.com/eio-core/server/parser"
	"github.com/eio-core/server/pkg/log"
)

var pollingLog = log.NewLog("engineio:polling")

// servePolling implements §4.6: GET drains the transport's outbound queue,
// POST ingests a Payload into its inbound queue. Any other method is a
// BadRequest.
func (d *Dispatcher) servePolling(api ServerAPI, sock *Socket) {
	switch api.Method() {
	case http.MethodGet:
		servePollingGet(api, sock)
	case http.MethodPost:
		servePollingPost(api, sock)
	default:
		writeError(api, ierrors.BadRequest())
	}
}

// servePollingGet blocks for at least one outbound packet, then drains
// whatever else is immediately available, and answers with a single
// Payload containing all of it in dequeue order.
func servePollingGet(api ServerAPI, sock *Socket) {
	out := sock.Transport().Out

	var first packet.Packet
	select {
	case p, ok := <-out.Out():
		if !ok {
			writeError(api, ierrors.SessionIdUnknown())
			return
		}
		first = p
	case <-sock.closed:
		// Session destroyed while this GET was waiting; nothing left to drain.
		writeError(api, ierrors.SessionIdUnknown())
		return
	}
	packets := []packet.Packet{first}
	for {
		p, ok := out.TryPop()
		if !ok {
			break
		}
		packets = append(packets, p)
	}

	framed, err := parser.EncodePayload(packets)
	if err != nil {
		pollingLog.Error("payload encode failed: %s", err)
		writeError(api, ierrors.BadRequest())
		return
	}
	api.SetContentType("application/octet-stream")
	if err := api.WriteBody(framed); err != nil {
		pollingLog.Debug("write failed: %s", err)
	}
}

// servePollingPost parses the request body as a Payload and appends every
// packet to the transport's inbound queue in order.
func servePollingPost(api ServerAPI, sock *Socket) {
	result, err := api.ParseBody(decodePayloadBody)
	if err != nil {
		pollingLog.Debug("body parse failed: %s", err)
		writeError(api, ierrors.BadRequest())
		return
	}
	packets := result.([]packet.Packet)

	in := sock.Transport().In
	for _, p := range packets {
		in.Push(p)
	}

	api.SetContentType("text/plain")
	if err := api.WriteBody([]byte("ok")); err != nil {
		pollingLog.Debug("write failed: %s", err)
	}
}

// decodePayloadBody adapts parser.DecodePayload to the ServerAPI.ParseBody
// signature: read the whole body, then decode it as a Payload.
func decodePayloadBody(r io.Reader) (any, error) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		return nil, err
	}
	return parser.DecodePayload(buf.Bytes())
}
