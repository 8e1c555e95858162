package engineio

import (
	"bytes"
	"io"
	"net/url"
)

// fakeServerAPI is an in-memory ServerAPI used by this package's tests, so
// the dispatcher and polling handler can be exercised without a real HTTP
// server or network socket.
type fakeServerAPI struct {
	query  url.Values
	method string
	body   []byte

	status      int
	contentType string
	response    []byte

	// conn, if set, is handed to RunWebSocket's acceptor instead of nil.
	conn WSConn
}

func newFakeAPI(method string, query url.Values, body []byte) *fakeServerAPI {
	return &fakeServerAPI{method: method, query: query, body: body, status: 200}
}

func (f *fakeServerAPI) QueryParams() map[string][]string {
	return map[string][]string(f.query)
}

func (f *fakeServerAPI) Method() string { return f.method }

func (f *fakeServerAPI) ParseBody(parser func(io.Reader) (any, error)) (any, error) {
	return parser(bytes.NewReader(f.body))
}

func (f *fakeServerAPI) WriteBody(b []byte) error {
	f.response = append(f.response, b...)
	return nil
}

func (f *fakeServerAPI) SetContentType(contentType string) { f.contentType = contentType }

func (f *fakeServerAPI) SetStatus(code int) { f.status = code }

func (f *fakeServerAPI) RunWebSocket(acceptor func(WSConn) error) error {
	return acceptor(f.conn)
}

// fakeWSConn is an in-memory WSConn: writes append frames to sent, reads
// are served from a queue of pre-scripted frames, and a read after the
// queue is empty blocks until closed (matching a real idle connection).
type fakeWSConn struct {
	toRead chan fakeFrame
	sent   chan fakeFrame
	closed chan struct{}
}

type fakeFrame struct {
	msgType int
	data    []byte
}

func newFakeWSConn() *fakeWSConn {
	return &fakeWSConn{
		toRead: make(chan fakeFrame, 16),
		sent:   make(chan fakeFrame, 16),
		closed: make(chan struct{}),
	}
}

func (c *fakeWSConn) scriptRead(msgType int, data []byte) {
	c.toRead <- fakeFrame{msgType, data}
}

func (c *fakeWSConn) ReadMessage() (int, []byte, error) {
	select {
	case f := <-c.toRead:
		return f.msgType, f.data, nil
	case <-c.closed:
		return 0, nil, io.EOF
	}
}

func (c *fakeWSConn) WriteMessage(msgType int, data []byte) error {
	select {
	case c.sent <- fakeFrame{msgType, data}:
		return nil
	case <-c.closed:
		return io.ErrClosedPipe
	}
}

func (c *fakeWSConn) Close() error {
	select {
	case <-c.closed:
	default:
		close(c.closed)
	}
	return nil
}
