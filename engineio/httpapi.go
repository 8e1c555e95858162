package engineio

import (
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/klauspost/compress/gzip"

	"github.com/eio-core/server/pkg/log"
	"github.com/eio-core/server/pkg/utils"
)

// minCompressedBody is the smallest response worth paying gzip's framing
// overhead for; most OPEN handshakes and single-packet payloads fall
// under this and go out uncompressed.
const minCompressedBody = 1024

var httpapiLog = log.NewLog("engineio:httpapi")

// upgrader is shared process-wide: gorilla/websocket.Upgrader holds no
// per-connection state, only buffer-size tunables and the origin check.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// Engine.IO's cross-origin story is cookie/CORS policy at the HTTP
	// layer above this core, not this core's concern; accept every origin
	// and let a reverse proxy or host middleware narrow it if required.
	CheckOrigin: func(*http.Request) bool { return true },
}

// httpServerAPI is the net/http + gorilla/websocket ServerAPI this core
// ships, wired directly against http.ResponseWriter/http.Request.
type httpServerAPI struct {
	w http.ResponseWriter
	r *http.Request
}

// NewHTTPServerAPI adapts one in-flight HTTP request/response pair to
// ServerAPI. Construct one per request and pass it to Dispatcher.Handle.
func NewHTTPServerAPI(w http.ResponseWriter, r *http.Request) ServerAPI {
	return &httpServerAPI{w: w, r: r}
}

func (h *httpServerAPI) QueryParams() map[string][]string {
	// Routed through ParameterBag, whose All() returns a deep copy. URL.Query()
	// already parses a fresh url.Values on every call, so the map returned
	// here shares no state with the request either way.
	return utils.NewParameterBag(map[string][]string(h.r.URL.Query())).All()
}

func (h *httpServerAPI) Method() string {
	return h.r.Method
}

func (h *httpServerAPI) ParseBody(parser func(io.Reader) (any, error)) (any, error) {
	defer h.r.Body.Close()
	return parser(h.r.Body)
}

// WriteBody writes b as the response body, transparently gzip-compressing
// it when the client advertised gzip support and b is large enough to
// benefit — the polling response compression this core's ancestor always
// offered, kept here rather than dropped for being out of the distilled
// spec's text.
func (h *httpServerAPI) WriteBody(b []byte) error {
	if len(b) < minCompressedBody || !acceptsGzip(h.r) {
		_, err := h.w.Write(b)
		return err
	}

	h.w.Header().Set("Content-Encoding", "gzip")
	gw := gzip.NewWriter(h.w)
	if _, err := gw.Write(b); err != nil {
		_ = gw.Close()
		return err
	}
	return gw.Close()
}

func acceptsGzip(r *http.Request) bool {
	for _, enc := range strings.Split(r.Header.Get("Accept-Encoding"), ",") {
		if strings.TrimSpace(enc) == "gzip" {
			return true
		}
	}
	return false
}

func (h *httpServerAPI) SetContentType(contentType string) {
	h.w.Header().Set("Content-Type", contentType)
}

func (h *httpServerAPI) SetStatus(code int) {
	h.w.WriteHeader(code)
}

func (h *httpServerAPI) RunWebSocket(acceptor func(WSConn) error) error {
	conn, err := upgrader.Upgrade(h.w, h.r, nil)
	if err != nil {
		httpapiLog.Debug("websocket upgrade failed: %s", err)
		return err
	}
	return acceptor(conn)
}

// ServeHTTP lets a Dispatcher be mounted directly as an http.Handler, which
// is how cmd/ wires it into gorilla/mux.
func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	d.Handle(NewHTTPServerAPI(w, r))
}
