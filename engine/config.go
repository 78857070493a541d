package engine

import (
	"log/slog"
	"time"
)

// Config carries the two durations the engine's own timers use, plus the
// structured logger used for debug-level protocol noise. Transport
// constants (frame size, keepalive, rate limiting) live in wsserver.Config
// instead; this package never touches the wire below the parsed message.
type Config struct {
	// BroadcastThrottle bounds how often a STATE_UPDATE is broadcast: a
	// dispatch schedules a timer at this delay, and any further dispatch
	// before it fires resets the timer rather than scheduling a second
	// one.
	BroadcastThrottle time.Duration

	// StaleRemovalDelay is how long a disconnected player's record
	// survives before __PLAYER_REMOVED__ is dispatched.
	StaleRemovalDelay time.Duration

	// Logger receives debug-level protocol noise (e.g. a non-JSON text
	// frame discarded before it ever reaches shape validation). Nil
	// falls back to slog.Default().
	Logger *slog.Logger
}

// DefaultConfig returns the durations named in the wire-protocol
// configuration section: a 33ms (~30Hz) broadcast throttle and a 5 minute
// stale-removal grace period.
func DefaultConfig() Config {
	return Config{
		BroadcastThrottle: 33 * time.Millisecond,
		StaleRemovalDelay: 5 * time.Minute,
		Logger:            slog.Default(),
	}
}
