// Package engineio implements the server-side Engine.IO core: the
// per-session state machine, its brain task, and the HTTP dispatcher that
// multiplexes polling and WebSocket requests onto it.
package engineio

import (
	"encoding/json"
	"net/http"

	"github.com/eio-core/server/engineio/config"
	"github.com/eio-core/server/engineio/ierrors"
	"github.com/eio-core/server/packet"
	"github.com/eio-core/server/parser"
	"github.com/eio-core/server/pkg/log"
)

var dispatchLog = log.NewLog("engineio:dispatcher")

// SessionHandler is invoked once per new session, in its own goroutine,
// immediately after the Socket is published into the Registry. Its
// lifetime is the session's: a typical handler loops on DequeueMessage
// until it returns ErrSocketClosed.
type SessionHandler func(*Socket)

// Dispatcher is the HTTP-facing half of the core (C5): it classifies each
// request as new-session, existing-session polling, or upgrade, and routes
// it accordingly. It holds no per-request state; everything that survives
// a request lives on the Registry or on a Socket.
type Dispatcher struct {
	registry *Registry
	opts     config.ServerOptions
	onOpen   SessionHandler
}

// NewDispatcher builds a Dispatcher over reg. onOpen may be nil.
func NewDispatcher(reg *Registry, opts config.ServerOptions, onOpen SessionHandler) *Dispatcher {
	return &Dispatcher{
		registry: reg,
		opts:     opts.Normalize(),
		onOpen:   onOpen,
	}
}

// Registry returns the Registry this Dispatcher routes onto, so a host can
// enumerate open sessions (the core's public session API includes this).
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// Handle services exactly one request/response (or, for an upgrade, one
// WebSocket connection's entire lifetime) against api.
func (d *Dispatcher) Handle(api ServerAPI) {
	query := api.QueryParams()

	transportParam, ok := singleton(query["transport"])
	if !ok {
		writeError(api, ierrors.TransportUnknown())
		return
	}
	tname, ok := parser.ParseTransportName(transportParam)
	if !ok {
		writeError(api, ierrors.TransportUnknown())
		return
	}

	sidValues, sidPresent := query["sid"]
	if !sidPresent || len(sidValues) == 0 {
		d.handleNewSession(api)
		return
	}

	sid, ok := singleton(sidValues)
	if !ok {
		writeError(api, ierrors.SessionIdUnknown())
		return
	}

	sock, ok := d.registry.Load(sid)
	if !ok {
		writeError(api, ierrors.SessionIdUnknown())
		return
	}

	current := sock.Transport()
	switch {
	case current.Kind == KindPolling && tname == parser.Polling:
		d.servePolling(api, sock)
	case current.Kind == KindPolling && tname == parser.WebSocket:
		d.serveUpgrade(api, sock)
	default:
		// Includes requesting polling on an already-upgraded session.
		writeError(api, ierrors.BadRequest())
	}
}

// singleton returns the sole element of values, or ("", false) if values
// does not contain exactly one element.
func singleton(values []string) (string, bool) {
	if len(values) != 1 {
		return "", false
	}
	return values[0], true
}

type openHandshake struct {
	Sid          string   `json:"sid"`
	Upgrades     []string `json:"upgrades"`
	PingTimeout  int      `json:"pingTimeout"`
	PingInterval int      `json:"pingInterval"`
}

// handleNewSession implements §4.4: atomically create and publish a
// Socket, spawn its brain and session handler, then answer with exactly
// one OPEN packet.
func (d *Dispatcher) handleNewSession(api ServerAPI) {
	if api.Method() != http.MethodGet {
		writeError(api, ierrors.BadRequest())
		return
	}

	id, err := GenerateID()
	if err != nil {
		dispatchLog.Error("id generation failed: %s", err)
		writeError(api, ierrors.BadRequest())
		return
	}

	sock := newSocket(id)
	d.registry.Store(sock)
	go runBrain(sock, d.registry)
	if d.onOpen != nil {
		go d.onOpen(sock)
	}

	body, err := json.Marshal(openHandshake{
		Sid:          id,
		Upgrades:     []string{"websocket"},
		PingTimeout:  int(d.opts.PingTimeout.Milliseconds()),
		PingInterval: int(d.opts.PingInterval.Milliseconds()),
	})
	if err != nil {
		// Unreachable: openHandshake always marshals.
		writeError(api, ierrors.BadRequest())
		return
	}

	writeSinglePacket(api, packet.New(packet.OPEN, body), dispatchLog)
}

// writeSinglePacket frames one Packet as a one-packet Payload and writes it
// as the polling response body.
func writeSinglePacket(api ServerAPI, p packet.Packet, logger *log.Log) {
	framed, err := parser.EncodePayload([]packet.Packet{p})
	if err != nil {
		logger.Error("payload encode failed: %s", err)
		writeError(api, ierrors.BadRequest())
		return
	}
	api.SetContentType("application/octet-stream")
	if err := api.WriteBody(framed); err != nil {
		logger.Debug("write failed: %s", err)
	}
}

// writeError renders an EngineIOError as the fixed HTTP 400 JSON body.
func writeError(api ServerAPI, e *ierrors.EngineIOError) {
	body, _ := json.Marshal(struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}{Code: int(e.Code), Message: e.Message})

	api.SetContentType("application/json")
	api.SetStatus(http.StatusBadRequest)
	_ = api.WriteBody(body)
}
