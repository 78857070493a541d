package wsserver

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Config carries every constant this server surfaces for embedding,
// following the teacher's UpgradeOptions pattern: a plain struct with
// sensible zero-value defaults filled in by DefaultConfig.
type Config struct {
	// MaxFrameSize bounds the payload length of a single data frame.
	MaxFrameSize int

	// KeepaliveInterval is how often a PING is sent to every open connection.
	// Zero disables keepalive entirely.
	KeepaliveInterval time.Duration
	// KeepaliveTimeout extends KeepaliveInterval before a connection with
	// no PONG is considered dead.
	KeepaliveTimeout time.Duration

	// RateLimit is the sustained inbound messages/sec allowed per
	// connection; RateBurst is the token bucket's burst capacity. Zero
	// RateLimit disables rate limiting.
	RateLimit float64
	RateBurst int

	// Strict rejects unmasked client frames instead of tolerating them
	// (RFC 6455 Section 5.3 requires masking; the default tolerates its
	// absence, see the open question this resolves in SPEC_FULL.md).
	Strict bool

	// Metrics, if non-nil, receives this server's Prometheus collectors.
	Metrics prometheus.Registerer

	// Logger receives debug-level frame noise: discarded binary/unknown
	// opcodes and other frame-level events worth seeing but not worth
	// surfacing to the embedder as an error. Nil falls back to
	// slog.Default().
	Logger *slog.Logger
}

// DefaultConfig returns the constants named in the wire-protocol
// configuration section: 1 MiB max frame, 30s/10s keepalive, a generous
// 50 msg/sec rate limit with burst 100.
func DefaultConfig() Config {
	return Config{
		MaxFrameSize:      1024 * 1024,
		KeepaliveInterval: 30 * time.Second,
		KeepaliveTimeout:  10 * time.Second,
		RateLimit:         50,
		RateBurst:         100,
		Logger:            slog.Default(),
	}
}
