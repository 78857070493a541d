// Package engine owns the authoritative game state and the protocol glue
// translating wire messages into reducer dispatches. It is the single
// engine thread the core's concurrency model requires: everything that
// touches state, the session registry, or a scheduled timer runs as a
// closure posted onto one internal goroutine, the same discipline
// wsserver.Server applies one layer down for its own connection table.
package engine

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchparty/core/reducer"
	"github.com/couchparty/core/session"
	"github.com/couchparty/core/wsserver"
)

// Transport is everything the engine needs from the layer below it.
// *wsserver.Server satisfies this; tests can supply a fake.
type Transport interface {
	Send(connID string, payload []byte)
	Broadcast(payload []byte, exclude string)
}

// Engine is the authoritative state holder and protocol glue. Every
// exported method besides Handler, Run, Stop, and State posts a closure
// onto the internal command queue rather than touching state directly.
type Engine struct {
	cfg       Config
	transport Transport
	registry  *session.Registry
	reduce    reducer.Func
	observers Observers
	logger    *slog.Logger

	state reducer.State

	throttleTimer *time.Timer
	broadcastGen  uint64

	cmds   chan func()
	stopCh chan struct{}
	doneCh chan struct{}
}

// New constructs an Engine around a user reduction function and an
// initial state. reduce is wrapped so the five reserved lifecycle action
// types never reach it.
func New(cfg Config, reduce reducer.Func, initial reducer.State, transport Transport, observers Observers) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		cfg:       cfg,
		transport: transport,
		registry:  session.New(),
		reduce:    reducer.Wrap(reduce),
		observers: observers,
		logger:    logger,
		state:     initial,
		cmds:      make(chan func(), 256),
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Handler returns the wsserver.Handler that feeds this engine. Every
// callback only posts a closure onto the engine's command queue — the
// actual handling always runs on the engine's own goroutine, never on
// wsserver's.
func (e *Engine) Handler() wsserver.Handler {
	return wsserver.Handler{
		OnListening: func(port int) {
			e.post(func() { e.observers.listening(port) })
		},
		OnMessage: func(connID string, payload []byte) {
			e.post(func() { e.handleMessage(connID, payload) })
		},
		OnDisconnect: func(connID string) {
			e.post(func() { e.handleDisconnect(connID) })
		},
		OnError: func(err error) {
			e.post(func() { e.observers.error(err) })
		},
	}
}

// Run starts the engine's single goroutine. Call it once, before wiring
// the transport's accept loop, since wsserver.Handler callbacks post onto
// a queue this goroutine must be draining.
func (e *Engine) Run() {
	go func() {
		defer close(e.doneCh)
		for {
			select {
			case fn := <-e.cmds:
				fn()
			case <-e.stopCh:
				return
			}
		}
	}()
}

// Stop cancels every scheduled timer (throttle, stale-removal cleanup)
// and shuts down the command loop. Safe to call once.
func (e *Engine) Stop() {
	done := make(chan struct{})
	e.post(func() {
		e.registry.Stop()
		if e.throttleTimer != nil {
			e.throttleTimer.Stop()
			e.throttleTimer = nil
		}
		close(done)
	})
	<-done
	close(e.stopCh)
	<-e.doneCh
}

// State returns a snapshot of the current authoritative state, safely
// fetched from the engine's own goroutine.
func (e *Engine) State() reducer.State {
	result := make(chan reducer.State, 1)
	select {
	case e.cmds <- func() { result <- e.state }:
		return <-result
	case <-e.doneCh:
		return reducer.State{}
	}
}

func (e *Engine) post(fn func()) {
	select {
	case e.cmds <- fn:
	case <-e.doneCh:
	}
}

func (e *Engine) handleMessage(connID string, payload []byte) {
	msg, outcome := parseMessage(payload)
	switch outcome {
	case parseMalformedJSON:
		// Not structurally invalid — the bytes just aren't JSON at all.
		// The frame is discarded and the connection survives; no reply.
		e.logger.Debug("discarding non-JSON text frame", "connId", connID)
		return
	case parseInvalidShape:
		e.sendError(connID, "INVALID_MESSAGE", "Malformed message")
		return
	}

	switch msg.kind {
	case kindJoin:
		e.handleJoin(connID, msg.join)
	case kindAction:
		e.handleAction(connID, msg.action)
	case kindPing:
		e.handlePing(connID, msg.ping)
	case kindAssetsLoaded:
		e.observers.assetsLoaded(connID)
	}
}

func (e *Engine) handleJoin(connID string, p joinPayload) {
	if !session.ValidSecret(p.Secret) {
		e.sendError(connID, "INVALID_SECRET", "Malformed session secret")
		return
	}

	pid := e.registry.Join(p.Secret, connID)
	e.registry.CancelCleanup(pid)

	if _, exists := e.state.Players[pid]; exists {
		e.dispatch(reducer.Action{Type: reducer.PlayerReconnected, Payload: reducer.PlayerIDPayload{ID: pid}})
	} else {
		e.dispatch(reducer.Action{Type: reducer.PlayerJoined, Payload: reducer.JoinedPayload{ID: pid, Name: p.Name, Avatar: p.Avatar}})
	}

	e.registry.QueueWelcome(connID, pid)
	e.flushWelcomes()
	e.observers.playerJoined(pid, p.Name)
}

func (e *Engine) handleAction(connID string, p actionPayload) {
	if reducer.IsReserved(p.Type) {
		e.sendError(connID, "FORBIDDEN_ACTION", "Action type is reserved")
		return
	}

	var pid string
	if secret, ok := e.registry.Secret(connID); ok {
		pid = session.DerivePlayerID(secret)
	}
	e.dispatch(reducer.Action{Type: p.Type, Payload: p.Payload, PlayerID: pid})
}

func (e *Engine) handlePing(connID string, p pingPayload) {
	e.sendMessage(connID, "PONG", pongPayload{
		ID:            p.ID,
		OrigTimestamp: p.Timestamp,
		ServerTime:    nowMillis(),
	})
}

func (e *Engine) handleDisconnect(connID string) {
	secret, ok := e.registry.Forget(connID)
	if !ok {
		return
	}

	if owner, _ := e.registry.Owner(secret); owner != connID {
		return // race guard: session already adopted by a newer connection
	}

	pid := session.DerivePlayerID(secret)
	e.dispatch(reducer.Action{Type: reducer.PlayerLeft, Payload: reducer.PlayerIDPayload{ID: pid}})
	e.observers.playerLeft(pid)

	e.registry.ScheduleCleanup(pid, e.cfg.StaleRemovalDelay, func() {
		e.post(func() { e.fireCleanup(pid, secret) })
	})
}

func (e *Engine) fireCleanup(pid, secret string) {
	e.registry.RemoveSession(secret)
	e.registry.ForgetCleanup(pid)
	e.dispatch(reducer.Action{Type: reducer.PlayerRemoved, Payload: reducer.PlayerIDPayload{ID: pid}})
}

// dispatch runs action through the wrapped reducer, swaps in the result,
// notifies observers, flushes any welcomes now eligible to send, and
// schedules a throttled broadcast of the new snapshot.
func (e *Engine) dispatch(action reducer.Action) {
	old := e.state
	next := e.safeReduce(old, action)
	e.state = next
	e.observers.stateChange(old, next)
	e.flushWelcomes()
	e.scheduleBroadcast()
}

// safeReduce contains a panicking reducer: the panic is logged, surfaced
// via onError, and the pre-dispatch state is kept, so one bad action never
// corrupts the authoritative snapshot or kills the engine goroutine.
func (e *Engine) safeReduce(state reducer.State, action reducer.Action) (next reducer.State) {
	next = state
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("reducer panic on action %q: %v", action.Type, r)
			e.logger.Error("reducer panic", "action", action.Type, "err", err)
			e.observers.error(err)
			next = state
		}
	}()
	next = e.reduce(state, action)
	return next
}

func (e *Engine) flushWelcomes() {
	for connID, pid := range e.registry.DrainWelcomes() {
		e.sendMessage(connID, "WELCOME", welcomePayload{
			PlayerID:   pid,
			State:      e.state,
			ServerTime: nowMillis(),
		})
	}
}

// scheduleBroadcast arms the throttle timer on the first state change in
// a window and rearms it on every subsequent change, so a burst of
// dispatches in quick succession still settles into exactly one
// broadcast — fired BroadcastThrottle after the last of them.
//
// broadcastGen guards against a timer that has already fired (its
// AfterFunc callback running on its own goroutine, concurrently with this
// call) from producing a second, stale STATE_UPDATE: Stop() on such a
// timer can't retract a callback already in flight, but the callback
// closes over the generation it was armed with, so fireBroadcast can tell
// it's been superseded and no-op instead of broadcasting twice.
func (e *Engine) scheduleBroadcast() {
	if e.throttleTimer != nil {
		e.throttleTimer.Stop()
	}
	e.broadcastGen++
	gen := e.broadcastGen
	e.throttleTimer = time.AfterFunc(e.cfg.BroadcastThrottle, func() {
		e.post(func() { e.fireBroadcast(gen) })
	})
}

func (e *Engine) fireBroadcast(gen uint64) {
	if gen != e.broadcastGen {
		return // superseded by a later dispatch before this timer fired
	}
	e.throttleTimer = nil
	e.broadcastMessage("STATE_UPDATE", stateUpdatePayload{
		NewState:  e.state,
		Timestamp: nowMillis(),
	})
}

func (e *Engine) sendMessage(connID, msgType string, payload any) {
	b, ok := e.encode(msgType, payload)
	if !ok {
		return
	}
	e.transport.Send(connID, b)
}

func (e *Engine) sendError(connID, code, message string) {
	e.sendMessage(connID, "ERROR", errorPayload{Code: code, Message: message})
}

func (e *Engine) broadcastMessage(msgType string, payload any) {
	b, ok := e.encode(msgType, payload)
	if !ok {
		return
	}
	e.transport.Broadcast(b, "")
}

func (e *Engine) encode(msgType string, payload any) ([]byte, bool) {
	b, err := json.Marshal(outboundEnvelope{Type: msgType, Payload: payload})
	if err != nil {
		e.observers.error(fmt.Errorf("encode %s: %w", msgType, err))
		return nil, false
	}
	return b, true
}

func nowMillis() int64 {
	return time.Now().UnixMilli()
}
