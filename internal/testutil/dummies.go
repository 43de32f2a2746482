// Package testutil provides shared test doubles for use across package tests.
// All dummies implement the corresponding interfaces from the production code,
// allowing injection into components under test without real I/O or side effects.
package testutil

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/raysh454/phishscan/internal/logging"
	"github.com/raysh454/phishscan/internal/webclient"
)

// ─── Logger ────────────────────────────────────────────────────────────

// DummyLogger implements logging.Logger with in-memory recording.
type DummyLogger struct {
	mu     sync.Mutex
	Errors []string
	Infos  []string
	Debugs []string
	Warns  []string
}

func (l *DummyLogger) Debug(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Debugs = append(l.Debugs, msg)
}

func (l *DummyLogger) Info(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Infos = append(l.Infos, msg)
}

func (l *DummyLogger) Warn(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Warns = append(l.Warns, msg)
}

func (l *DummyLogger) Error(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Errors = append(l.Errors, msg)
}

func (l *DummyLogger) With(_ ...logging.Field) logging.Logger { return l }

// WarnCount returns the number of recorded warnings.
func (l *DummyLogger) WarnCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.Warns)
}

// ─── Resolver ──────────────────────────────────────────────────────────

// DummyResolver implements guard.Resolver from a static table.
// Hosts missing from Addrs fail with a "no such host" DNS error.
type DummyResolver struct {
	Addrs map[string][]string
	Err   error

	mu      sync.Mutex
	Lookups []string
}

func (r *DummyResolver) LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error) {
	r.mu.Lock()
	r.Lookups = append(r.Lookups, host)
	r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.Err != nil {
		return nil, r.Err
	}
	raw, ok := r.Addrs[host]
	if !ok {
		return nil, &net.DNSError{Err: "no such host", Name: host, IsNotFound: true}
	}
	out := make([]net.IPAddr, 0, len(raw))
	for _, a := range raw {
		out = append(out, net.IPAddr{IP: net.ParseIP(a)})
	}
	return out, nil
}

// LookupCount returns how many lookups were performed.
func (r *DummyResolver) LookupCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Lookups)
}

// ─── WebClient ─────────────────────────────────────────────────────────

// DummyResponse is a canned response for DummyWebClient.
type DummyResponse struct {
	Status int
	Body   []byte
	Header map[string]string
}

// DummyWebClient implements webclient.WebClient from a URL-keyed table.
// Unknown URLs return 404 with an empty body. Set FailURLs[url] = true to
// force a transport error for a specific URL.
type DummyWebClient struct {
	ResponseDelay time.Duration
	Responses     map[string]DummyResponse
	FailURLs      map[string]bool

	mu       sync.Mutex
	Requests []*webclient.Request
}

func (d *DummyWebClient) Do(ctx context.Context, req *webclient.Request) (*webclient.Response, error) {
	if d.ResponseDelay > 0 {
		select {
		case <-time.After(d.ResponseDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	d.mu.Lock()
	d.Requests = append(d.Requests, req)
	d.mu.Unlock()

	if d.FailURLs != nil && d.FailURLs[req.URL] {
		return nil, errors.New("dummy fetch fail for " + req.URL)
	}

	canned, ok := d.Responses[req.URL]
	if !ok {
		canned = DummyResponse{Status: 404}
	}
	status := canned.Status
	if status == 0 {
		status = 200
	}
	resp := &webclient.Response{
		Request:    req,
		FinalURL:   req.URL,
		Body:       canned.Body,
		Headers:    map[string][]string{},
		StatusCode: status,
		FetchedAt:  time.Now(),
	}
	for k, v := range canned.Header {
		resp.Headers.Set(k, v)
	}
	return resp, nil
}

func (d *DummyWebClient) Get(ctx context.Context, url string) (*webclient.Response, error) {
	return d.Do(ctx, &webclient.Request{Method: "GET", URL: url})
}

func (d *DummyWebClient) Close() error { return nil }

// RequestedURLs returns the URLs requested so far, in order.
func (d *DummyWebClient) RequestedURLs() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, 0, len(d.Requests))
	for _, r := range d.Requests {
		out = append(out, r.URL)
	}
	return out
}

// ─── Providers ─────────────────────────────────────────────────────────

// DummyHostSearcher implements providers.HostSearcher.
type DummyHostSearcher struct {
	Payload json.RawMessage
	Err     error
	Delay   time.Duration

	mu     sync.Mutex
	Hashes []string
}

func (d *DummyHostSearcher) SearchFaviconHash(ctx context.Context, hash string) (json.RawMessage, error) {
	d.mu.Lock()
	d.Hashes = append(d.Hashes, hash)
	d.mu.Unlock()
	if err := sleepCtx(ctx, d.Delay); err != nil {
		return nil, err
	}
	if d.Err != nil {
		return nil, d.Err
	}
	return d.Payload, nil
}

// Calls returns the number of searches performed.
func (d *DummyHostSearcher) Calls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.Hashes)
}

// DummyURLReputation implements providers.URLReputation.
type DummyURLReputation struct {
	AnalysisID string
	Payload    json.RawMessage
	SubmitErr  error
	FetchErr   error
	Delay      time.Duration

	mu        sync.Mutex
	Submitted []string
	Fetched   []string
}

func (d *DummyURLReputation) Submit(ctx context.Context, target string) (string, error) {
	d.mu.Lock()
	d.Submitted = append(d.Submitted, target)
	d.mu.Unlock()
	if err := sleepCtx(ctx, d.Delay); err != nil {
		return "", err
	}
	if d.SubmitErr != nil {
		return "", d.SubmitErr
	}
	return d.AnalysisID, nil
}

func (d *DummyURLReputation) FetchAnalysis(ctx context.Context, id string) (json.RawMessage, error) {
	d.mu.Lock()
	d.Fetched = append(d.Fetched, id)
	d.mu.Unlock()
	if d.FetchErr != nil {
		return nil, d.FetchErr
	}
	return d.Payload, nil
}

// SubmitCalls returns the number of submissions performed.
func (d *DummyURLReputation) SubmitCalls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.Submitted)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
