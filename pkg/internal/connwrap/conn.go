// Package connwrap wraps connections to observe their lifecycle.
package connwrap

import (
	"net"
	"sync"

	"go.uber.org/atomic"
)

// Conn is a wrapper around a net.Conn that tracks whether Close has been called.
// Close is safe to call multiple times and from multiple goroutines.
type Conn struct {
	net.Conn // underlying connection

	once     sync.Once
	closeErr error
	closed   atomic.Bool
}

func (c *Conn) Close() error {
	c.once.Do(func() {
		c.closed.Store(true)
		c.closeErr = c.Conn.Close()
	})
	return c.closeErr
}

// Closed reports whether Close was called.
func (c *Conn) Closed() bool {
	return c.closed.Load()
}
