package party

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/couchparty/core/engine"
	"github.com/couchparty/core/wsserver"
)

// Config carries every constant this module surfaces for embedding,
// flattened into one struct following the teacher's options-struct
// pattern: sensible defaults filled in by DefaultConfig, every field
// overridable.
type Config struct {
	// Port is the TCP port the WebSocket server binds. Defaults to 8082,
	// the static-HTTP-port-plus-two convention.
	Port int

	MaxFrameSize      int
	KeepaliveInterval time.Duration
	KeepaliveTimeout  time.Duration
	RateLimit         float64
	RateBurst         int
	Strict            bool
	Metrics           prometheus.Registerer

	BroadcastThrottle time.Duration
	StaleRemovalDelay time.Duration

	// Logger receives debug-level protocol noise from both the transport
	// and engine layers. Nil falls back to slog.Default() in each.
	Logger *slog.Logger
}

// DefaultConfig returns the constants named in the wire-protocol
// configuration section, gathered from wsserver.DefaultConfig and
// engine.DefaultConfig plus this module's own default port.
func DefaultConfig() Config {
	ws := wsserver.DefaultConfig()
	eng := engine.DefaultConfig()
	return Config{
		Port:              8082,
		MaxFrameSize:      ws.MaxFrameSize,
		KeepaliveInterval: ws.KeepaliveInterval,
		KeepaliveTimeout:  ws.KeepaliveTimeout,
		RateLimit:         ws.RateLimit,
		RateBurst:         ws.RateBurst,
		Strict:            ws.Strict,
		BroadcastThrottle: eng.BroadcastThrottle,
		StaleRemovalDelay: eng.StaleRemovalDelay,
		Logger:            slog.Default(),
	}
}

func (c Config) wsserverConfig() wsserver.Config {
	return wsserver.Config{
		MaxFrameSize:      c.MaxFrameSize,
		KeepaliveInterval: c.KeepaliveInterval,
		KeepaliveTimeout:  c.KeepaliveTimeout,
		RateLimit:         c.RateLimit,
		RateBurst:         c.RateBurst,
		Strict:            c.Strict,
		Metrics:           c.Metrics,
		Logger:            c.Logger,
	}
}

func (c Config) engineConfig() engine.Config {
	return engine.Config{
		BroadcastThrottle: c.BroadcastThrottle,
		StaleRemovalDelay: c.StaleRemovalDelay,
		Logger:            c.Logger,
	}
}
