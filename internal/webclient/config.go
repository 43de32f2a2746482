package webclient

import (
	"syscall"
	"time"
)

const (
	DefaultTimeout      = 8 * time.Second
	DefaultUserAgent    = "Mozilla/5.0 (compatible; phishscan/1.0)"
	DefaultMaxBodyBytes = 1 << 20
	DefaultMaxRedirects = 5
)

// DialControl matches net.Dialer.Control.
type DialControl func(network, address string, c syscall.RawConn) error

// Config controls how a NetHTTPClient is built. Zero values select the
// package defaults.
type Config struct {
	Timeout   time.Duration
	UserAgent string
	// MaxBodyBytes caps the bytes read from a response body. Negative disables the cap.
	MaxBodyBytes int64
	MaxRedirects int
	// Control, when set, runs on every outbound connection before it is established.
	Control DialControl
}

func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.MaxBodyBytes == 0 {
		c.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if c.MaxRedirects <= 0 {
		c.MaxRedirects = DefaultMaxRedirects
	}
	return c
}
