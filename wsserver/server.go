// Package wsserver is a handcrafted RFC 6455 WebSocket server: it owns the
// TCP listener, performs the HTTP upgrade handshake by hand (no net/http),
// drives wsframe's decoder against each connection's growing buffer, and
// serializes every event (accepts, incoming frames, disconnects, and
// outbound writes) onto a single goroutine, following the teacher's
// Hub.Run single-event-loop-over-channels idiom generalized from
// register/unregister/broadcast to the fuller event set this protocol
// needs.
package wsserver

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/google/uuid"

	"github.com/couchparty/core/wsframe"
)

type acceptedConn struct {
	id   string
	conn net.Conn
}

type incomingData struct {
	id   string
	data []byte
}

type connClosed struct {
	id string
}

type sendCmd struct {
	id      string
	payload []byte
}

type broadcastCmd struct {
	payload []byte
	exclude string
}

// Server is a single handcrafted WebSocket listener. Exactly one goroutine
// (run) ever touches conns; every other goroutine (acceptLoop and one
// readLoop per connection) only ever produces events onto channels.
type Server struct {
	cfg     Config
	handler Handler
	metrics *metrics
	logger  *slog.Logger

	listener net.Listener

	acceptCh    chan acceptedConn
	incomingCh  chan incomingData
	closedCh    chan connClosed
	sendCh      chan sendCmd
	broadcastCh chan broadcastCmd
	stopCh      chan struct{}
	doneCh      chan struct{}

	conns map[string]*managedConn
}

// SetHandler replaces the event handler. Intended for wiring a consumer
// that itself depends on this Server as a Transport (the engine package's
// circular construction): build the Server with a zero Handler, construct
// the consumer with this Server as its transport, then call SetHandler
// before Start. Not safe to call once Start has begun accepting
// connections.
func (s *Server) SetHandler(h Handler) {
	s.handler = h
}

// New constructs a Server. Call Start to begin listening.
func New(cfg Config, handler Handler) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		cfg:         cfg,
		handler:     handler,
		metrics:     newMetrics(cfg.Metrics),
		logger:      logger,
		acceptCh:    make(chan acceptedConn, 64),
		incomingCh:  make(chan incomingData, 256),
		closedCh:    make(chan connClosed, 64),
		sendCh:      make(chan sendCmd, 256),
		broadcastCh: make(chan broadcastCmd, 64),
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
		conns:       make(map[string]*managedConn),
	}
}

// Start binds a TCP listener on 0.0.0.0:port and begins accepting
// connections. A bind failure is both returned and surfaced through
// Handler.OnError, matching the "emit error, do not crash" contract for
// host-level failures.
func (s *Server) Start(port int) error {
	ln, err := net.Listen("tcp", fmt.Sprintf("0.0.0.0:%d", port))
	if err != nil {
		s.handler.error(fmt.Errorf("listen on port %d: %w", port, err))
		return err
	}
	s.listener = ln

	go s.run()
	go s.acceptLoop()

	s.handler.listening(ln.Addr().(*net.TCPAddr).Port)
	return nil
}

// Addr returns the listener's bound address. Only valid after Start has
// returned successfully; mainly useful in tests that bind port 0 and need
// to discover which ephemeral port was actually assigned.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Send text-frames payload to one connection. Unknown or already-closed
// connection IDs are silently ignored: the caller raced a disconnect,
// which is normal.
func (s *Server) Send(connID string, payload []byte) {
	select {
	case s.sendCh <- sendCmd{id: connID, payload: payload}:
	case <-s.doneCh:
	}
}

// Broadcast text-frames payload to every open connection except exclude
// (pass "" to exclude none). A write failure on one recipient never stops
// delivery to the rest.
func (s *Server) Broadcast(payload []byte, exclude string) {
	select {
	case s.broadcastCh <- broadcastCmd{payload: payload, exclude: exclude}:
	case <-s.doneCh:
	}
}

// Stop cancels keepalive, writes a close frame to every connection,
// destroys all connections, clears the registry, and closes the
// listener. Safe to call once; a second call is a no-op.
func (s *Server) Stop() {
	select {
	case <-s.stopCh:
		return
	default:
		close(s.stopCh)
	}
	if s.listener != nil {
		_ = s.listener.Close()
	}
	<-s.doneCh
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.stopCh:
				return
			default:
			}
			s.handler.error(fmt.Errorf("accept: %w", err))
			return
		}

		id := uuid.NewString()
		go s.readLoop(id, conn)

		select {
		case s.acceptCh <- acceptedConn{id: id, conn: conn}:
		case <-s.stopCh:
			_ = conn.Close()
			return
		}
	}
}

func (s *Server) readLoop(id string, conn net.Conn) {
	buf := make([]byte, 4096)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			select {
			case s.incomingCh <- incomingData{id: id, data: chunk}:
			case <-s.stopCh:
				return
			}
		}
		if err != nil {
			select {
			case s.closedCh <- connClosed{id: id}:
			case <-s.stopCh:
			}
			return
		}
	}
}

func (s *Server) run() {
	defer close(s.doneCh)

	var keepaliveC <-chan time.Time
	if s.cfg.KeepaliveInterval > 0 {
		ticker := time.NewTicker(s.cfg.KeepaliveInterval)
		defer ticker.Stop()
		keepaliveC = ticker.C
	}

	for {
		select {
		case <-s.stopCh:
			s.shutdown()
			return
		case acc := <-s.acceptCh:
			s.handleAccept(acc)
		case inc := <-s.incomingCh:
			s.handleIncoming(inc)
		case cl := <-s.closedCh:
			s.destroy(cl.id, nil)
		case cmd := <-s.sendCh:
			s.handleSend(cmd)
		case cmd := <-s.broadcastCh:
			s.handleBroadcast(cmd)
		case <-keepaliveC:
			s.handleKeepalive()
		}
	}
}

func (s *Server) handleAccept(acc acceptedConn) {
	s.conns[acc.id] = newManagedConn(acc.id, acc.conn, s.cfg.RateLimit, s.cfg.RateBurst)
	s.metrics.connected()
	s.handler.connection(acc.id)
}

func (s *Server) handleIncoming(inc incomingData) {
	mc, ok := s.conns[inc.id]
	if !ok {
		return
	}
	mc.buffer.Append(inc.data)

	if !mc.handshakeDone {
		consumed, ok := performHandshake(mc.conn, mc.buffer.Bytes())
		if consumed == 0 {
			return // header not fully buffered yet
		}
		if !ok {
			s.destroy(mc.id, errors.New("handshake failed"))
			return
		}
		mc.buffer.Compact(consumed)
		mc.handshakeDone = true
	}

	s.processFrames(mc)
}

func (s *Server) processFrames(mc *managedConn) {
	data := mc.buffer.Bytes()
	offset := 0
	for {
		f, status, consumed, err := wsframe.Decode(data[offset:], s.cfg.MaxFrameSize)
		switch status {
		case wsframe.NeedMore:
			mc.buffer.Compact(offset)
			return
		case wsframe.Invalid:
			mc.buffer.Compact(offset)
			s.destroy(mc.id, err)
			return
		default: // Ready
			offset += consumed
			if !s.dispatchFrame(mc, f) {
				mc.buffer.Compact(offset)
				return
			}
		}
	}
}

// dispatchFrame returns false if the connection was destroyed while
// handling the frame, telling the caller to stop iterating.
func (s *Server) dispatchFrame(mc *managedConn, f wsframe.Frame) bool {
	if s.cfg.Strict && !f.Masked {
		s.destroy(mc.id, errors.New("unmasked client frame rejected (strict mode)"))
		return false
	}

	switch f.Opcode {
	case wsframe.OpText:
		if !mc.allow() {
			s.metrics.frameDropped()
			return true
		}
		s.metrics.messageDispatched()
		s.handler.message(mc.id, f.Payload)
		return true

	case wsframe.OpClose:
		_, _ = mc.conn.Write(closeFrame)
		s.destroy(mc.id, nil)
		return false

	case wsframe.OpPing:
		s.writeFrame(mc, wsframe.OpPong, f.Payload)
		return true

	case wsframe.OpPong:
		mc.lastPong = time.Now()
		return true

	default: // binary or continuation: decoded, discarded
		s.logger.Debug("discarding frame", "connId", mc.id, "opcode", f.Opcode)
		s.metrics.frameDropped()
		return true
	}
}

func (s *Server) writeFrame(mc *managedConn, opcode wsframe.Opcode, payload []byte) {
	if _, err := mc.conn.Write(wsframe.Encode(opcode, payload)); err != nil {
		s.destroy(mc.id, err)
	}
}

func (s *Server) handleSend(cmd sendCmd) {
	mc, ok := s.conns[cmd.id]
	if !ok {
		return
	}
	s.writeFrame(mc, wsframe.OpText, cmd.payload)
}

func (s *Server) handleBroadcast(cmd broadcastCmd) {
	frame := wsframe.Encode(wsframe.OpText, cmd.payload)
	for id, mc := range s.conns {
		if id == cmd.exclude {
			continue
		}
		if _, err := mc.conn.Write(frame); err != nil {
			s.handler.error(fmt.Errorf("broadcast to %s: %w", id, err))
			s.destroy(id, nil)
			continue
		}
		s.metrics.broadcastSent()
	}
}

func (s *Server) handleKeepalive() {
	deadline := s.cfg.KeepaliveInterval + s.cfg.KeepaliveTimeout
	now := time.Now()
	for id, mc := range s.conns {
		if now.Sub(mc.lastPong) > deadline {
			s.destroy(id, nil)
			continue
		}
		s.writeFrame(mc, wsframe.OpPing, nil)
	}
}

func (s *Server) destroy(id string, err error) {
	mc, ok := s.conns[id]
	if !ok {
		return
	}
	delete(s.conns, id)
	_ = mc.conn.Close()
	s.metrics.disconnected()
	if err != nil {
		s.handler.error(fmt.Errorf("connection %s: %w", id, err))
	}
	s.handler.disconnect(id)
}

func (s *Server) shutdown() {
	for id, mc := range s.conns {
		_, _ = mc.conn.Write(closeFrame)
		_ = mc.conn.Close()
		delete(s.conns, id)
	}
}
