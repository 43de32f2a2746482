package webclient

import (
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/raysh454/phishscan/internal/logging"
)

// NewWebClient builds a NetHTTPClient with its own transport. The transport
// dials through cfg.Control so every connection, redirects included, is
// checked against the address actually used.
func NewWebClient(cfg Config, logger logging.Logger) (*NetHTTPClient, error) {
	cfg = cfg.withDefaults()

	dialer := &net.Dialer{
		Timeout:   cfg.Timeout,
		KeepAlive: 30 * time.Second,
		Control:   cfg.Control,
	}
	transport := &http.Transport{
		Proxy:                 nil,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          20,
		IdleConnTimeout:       60 * time.Second,
		TLSHandshakeTimeout:   cfg.Timeout,
		ExpectContinueTimeout: time.Second,
	}
	httpClient := &http.Client{
		Transport: transport,
		Timeout:   cfg.Timeout,
	}
	return NewNetHTTPClient(cfg, logger, httpClient)
}

func limitRedirects(max int) func(*http.Request, []*http.Request) error {
	return func(_ *http.Request, via []*http.Request) error {
		if len(via) >= max {
			return fmt.Errorf("stopped after %d redirects", max)
		}
		return nil
	}
}
