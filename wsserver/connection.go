package wsserver

import (
	"net"
	"time"

	"golang.org/x/time/rate"

	"github.com/couchparty/core/wsframe"
)

// managedConn is everything the server's run loop tracks about one TCP
// connection. It is only ever touched from the run loop goroutine.
type managedConn struct {
	id            string
	conn          net.Conn
	buffer        *wsframe.Buffer
	handshakeDone bool
	lastPong      time.Time
	limiter       *rate.Limiter
}

func newManagedConn(id string, conn net.Conn, limit float64, burst int) *managedConn {
	var limiter *rate.Limiter
	if limit > 0 {
		limiter = rate.NewLimiter(rate.Limit(limit), burst)
	}
	return &managedConn{
		id:       id,
		conn:     conn,
		buffer:   wsframe.NewBuffer(),
		lastPong: time.Now(),
		limiter:  limiter,
	}
}

// allow reports whether one more inbound message fits the connection's
// rate budget. A nil limiter (RateLimit configured as 0) always allows.
func (c *managedConn) allow() bool {
	if c.limiter == nil {
		return true
	}
	return c.limiter.Allow()
}
