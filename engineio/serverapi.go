package engineio

import "io"

// ServerAPI is the capability this core consumes from its host HTTP
// framework. It deliberately knows nothing about net/http: any framework
// that can produce one of these can drive the dispatcher. See httpapi.go
// for the net/http + gorilla/websocket implementation this core ships.
type ServerAPI interface {
	// QueryParams returns every query parameter, each possibly multi-valued.
	QueryParams() map[string][]string
	// Method returns the HTTP method of the current request ("GET", "POST", ...).
	Method() string
	// ParseBody streams the request body through parser and returns its
	// result, or the error parser (or the stream) produced.
	ParseBody(parser func(io.Reader) (any, error)) (any, error)
	// WriteBody writes b as the full response body.
	WriteBody(b []byte) error
	// SetContentType sets the response Content-Type header.
	SetContentType(contentType string)
	// SetStatus sets the response status code.
	SetStatus(code int)
	// RunWebSocket upgrades the current request to a WebSocket connection
	// and hands it to acceptor, returning when acceptor returns.
	RunWebSocket(acceptor func(WSConn) error) error
}

// WSConn is the minimal surface the upgrade handler needs from an accepted
// WebSocket connection. Its method shapes match gorilla/websocket.Conn
// exactly, so that type satisfies WSConn with no adapter.
type WSConn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// WebSocket frame opcodes this core cares about, numerically identical to
// gorilla/websocket's constants (and to the RFC 6455 opcodes they wrap).
const (
	wsTextMessage   = 1
	wsBinaryMessage = 2
)
