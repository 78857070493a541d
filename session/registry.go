package session

import "time"

// Registry maps session secrets, connection IDs, and player IDs onto each
// other, and tracks the stale-removal timers scheduled for disconnected
// players. It holds no reference to game state; the engine is responsible
// for translating Registry events (join, stale removal) into reducer
// dispatches.
//
// Not safe for concurrent use — every method is meant to run on the
// engine's single goroutine.
type Registry struct {
	sessions       map[string]string // secret -> current owning connection ID
	reverse        map[string]string // connection ID -> secret
	cleanupTimers  map[string]*time.Timer // player ID -> scheduled removal
	pendingWelcome map[string]string // connection ID -> player ID, welcome not yet sent
	welcomed       map[string]bool   // connection IDs that already got their welcome
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{
		sessions:       make(map[string]string),
		reverse:        make(map[string]string),
		cleanupTimers:  make(map[string]*time.Timer),
		pendingWelcome: make(map[string]string),
		welcomed:       make(map[string]bool),
	}
}

// Join records connID as the current owner of secret and returns the
// player ID derived from it. Call this on every successful JOIN, whether
// the player is new or reconnecting.
func (r *Registry) Join(secret, connID string) string {
	r.sessions[secret] = connID
	r.reverse[connID] = secret
	return DerivePlayerID(secret)
}

// CancelCleanup stops and removes a pending stale-removal timer for pid,
// if one exists. Called when a player rejoins before their grace period
// elapses.
func (r *Registry) CancelCleanup(pid string) {
	if t, ok := r.cleanupTimers[pid]; ok {
		t.Stop()
		delete(r.cleanupTimers, pid)
	}
}

// ScheduleCleanup arranges for fire to run after delay, tracked under pid
// so a later rejoin can cancel it. fire runs on its own goroutine (per
// time.AfterFunc) — callers must marshal back onto the engine thread
// before touching shared state, typically by sending on a channel the
// engine select-loops over.
func (r *Registry) ScheduleCleanup(pid string, delay time.Duration, fire func()) {
	r.cleanupTimers[pid] = time.AfterFunc(delay, fire)
}

// ForgetCleanup removes the bookkeeping entry for pid without stopping the
// timer. Used by the timer's own fire callback once it has run, so a
// second disconnect of the same player doesn't try to cancel a timer that
// already fired.
func (r *Registry) ForgetCleanup(pid string) {
	delete(r.cleanupTimers, pid)
}

// QueueWelcome marks connID as awaiting a WELCOME for pid. The engine
// flushes this queue once the state change triggered by the join has been
// applied, so the WELCOME snapshot includes the joining player.
func (r *Registry) QueueWelcome(connID, pid string) {
	r.pendingWelcome[connID] = pid
}

// DrainWelcomes returns the set of connections awaiting a WELCOME and
// moves them into the welcomed set, clearing the pending queue.
func (r *Registry) DrainWelcomes() map[string]string {
	if len(r.pendingWelcome) == 0 {
		return nil
	}
	drained := r.pendingWelcome
	r.pendingWelcome = make(map[string]string)
	for connID := range drained {
		r.welcomed[connID] = true
	}
	return drained
}

// Secret returns the secret associated with connID, if the connection has
// joined.
func (r *Registry) Secret(connID string) (string, bool) {
	s, ok := r.reverse[connID]
	return s, ok
}

// Owner returns the connection ID currently registered as owning secret.
func (r *Registry) Owner(secret string) (string, bool) {
	connID, ok := r.sessions[secret]
	return connID, ok
}

// Forget removes all bookkeeping for a closed connection: it is dropped
// from welcomed and pendingWelcome, and its reverse-lookup entry is
// deleted. It returns the secret that was associated with connID, if any,
// so the caller can decide whether the disconnect lifecycle applies.
func (r *Registry) Forget(connID string) (secret string, ok bool) {
	delete(r.welcomed, connID)
	delete(r.pendingWelcome, connID)
	secret, ok = r.reverse[connID]
	delete(r.reverse, connID)
	return secret, ok
}

// RemoveSession deletes secret's session entry entirely. Called once a
// stale-removal timer actually fires and the player is permanently
// removed.
func (r *Registry) RemoveSession(secret string) {
	delete(r.sessions, secret)
}

// Stop cancels every pending cleanup timer. Called when the server shuts
// down so timers don't fire against a torn-down engine.
func (r *Registry) Stop() {
	for pid, t := range r.cleanupTimers {
		t.Stop()
		delete(r.cleanupTimers, pid)
	}
}
