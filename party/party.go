// Package party is the top-level type an embedder reaches for: it wires
// wsserver, session, reducer, and engine together behind a single Start/
// Stop lifecycle, the way the teacher's own top-level examples wire a Hub
// to a net/http server.
package party

import (
	"github.com/couchparty/core/engine"
	"github.com/couchparty/core/reducer"
	"github.com/couchparty/core/wsserver"
)

// Party is one running game session server: one WebSocket listener, one
// authoritative state engine.
type Party struct {
	cfg    Config
	server *wsserver.Server
	engine *engine.Engine
}

// New builds a Party around a user reduction function and its initial
// state. reduce is wrapped so it never sees the reserved lifecycle action
// types (see the reducer package). observers are optional embedder hooks
// into engine activity.
//
// Construction briefly ties the knot between wsserver.Server (which needs
// a Handler) and engine.Engine (which needs a Transport, satisfied by
// *wsserver.Server): the server is built first with a zero Handler, the
// engine is built against it as a Transport, and the real handler is
// wired back onto the server before Start.
func New(cfg Config, reduce reducer.Func, initial reducer.State, observers engine.Observers) *Party {
	server := wsserver.New(cfg.wsserverConfig(), wsserver.Handler{})
	eng := engine.New(cfg.engineConfig(), reduce, initial, server, observers)
	server.SetHandler(eng.Handler())

	return &Party{cfg: cfg, server: server, engine: eng}
}

// Start starts the engine's command loop and begins accepting WebSocket
// connections on Config.Port.
func (p *Party) Start() error {
	p.engine.Run()
	return p.server.Start(p.cfg.Port)
}

// Stop drains and halts both the transport and the engine: every open
// connection is closed, every scheduled timer (keepalive, throttle,
// stale-removal cleanup) is cancelled.
func (p *Party) Stop() {
	p.server.Stop()
	p.engine.Stop()
}

// State returns a snapshot of the current authoritative game state.
func (p *Party) State() reducer.State {
	return p.engine.State()
}

// Addr returns the WebSocket listener's bound address as a host:port
// string. Only valid after Start has returned successfully.
func (p *Party) Addr() string {
	return p.server.Addr().String()
}
