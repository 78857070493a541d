package wsserver

// Handler receives the events this server emits to the layer above it.
// OnConnection, OnMessage, OnDisconnect, and OnError for a connection-level
// failure run on the server's single internal goroutine (see server.go),
// so handlers must not block on their own I/O, and the server never calls
// two of those concurrently. OnListening and the OnError for a bind
// failure run on the goroutine that called Start; the OnError for an
// accept failure runs on the accept goroutine.
//
// A nil callback is simply skipped.
type Handler struct {
	OnListening  func(port int)
	OnConnection func(connID string)
	OnMessage    func(connID string, payload []byte)
	OnDisconnect func(connID string)
	OnError      func(err error)
}

func (h Handler) listening(port int) {
	if h.OnListening != nil {
		h.OnListening(port)
	}
}

func (h Handler) connection(connID string) {
	if h.OnConnection != nil {
		h.OnConnection(connID)
	}
}

func (h Handler) message(connID string, payload []byte) {
	if h.OnMessage != nil {
		h.OnMessage(connID, payload)
	}
}

func (h Handler) disconnect(connID string) {
	if h.OnDisconnect != nil {
		h.OnDisconnect(connID)
	}
}

func (h Handler) error(err error) {
	if h.OnError != nil {
		h.OnError(err)
	}
}
