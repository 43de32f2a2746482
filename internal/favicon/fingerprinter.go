// Package favicon locates a site's icon and fingerprints its bytes.
package favicon

import (
	"context"
	"errors"
	"time"

	"github.com/raysh454/phishscan/internal/logging"
	"github.com/raysh454/phishscan/internal/model"
	"github.com/raysh454/phishscan/internal/webclient"
)

const DefaultFetchTimeout = 8 * time.Second

type Config struct {
	// FetchTimeout bounds each individual fetch.
	FetchTimeout time.Duration
}

// Fingerprinter tries {origin}/favicon.ico first, then the first icon link
// declared by the target page. Fetch failures only move it on to the next
// strategy.
type Fingerprinter struct {
	wc      webclient.WebClient
	logger  logging.Logger
	timeout time.Duration
}

func New(cfg Config, wc webclient.WebClient, logger logging.Logger) (*Fingerprinter, error) {
	if wc == nil {
		return nil, errors.New("favicon: nil webclient")
	}
	if logger == nil {
		return nil, errors.New("favicon: nil logger")
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = DefaultFetchTimeout
	}
	return &Fingerprinter{
		wc:      wc,
		logger:  logger.With(logging.Field{Key: "component", Value: "favicon"}),
		timeout: cfg.FetchTimeout,
	}, nil
}

// Fingerprint returns nil, nil when no icon could be obtained. The error
// is non-nil only when ctx itself is done.
func (f *Fingerprinter) Fingerprint(ctx context.Context, target *model.NormalizedURL) (*model.FaviconFingerprint, error) {
	if target == nil {
		return nil, errors.New("favicon: nil target")
	}

	direct := target.Origin() + "/favicon.ico"
	if fp := f.fetchIcon(ctx, direct); fp != nil {
		return fp, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	page, ok := f.fetch(ctx, target.String())
	if !ok {
		return nil, ctx.Err()
	}
	pageURL := page.FinalURL
	if pageURL == "" {
		pageURL = target.String()
	}

	iconURL, found := discoverIcon(page.Body, pageURL)
	if !found {
		f.logger.Debug("no icon link in page", logging.Field{Key: "url", Value: pageURL})
		return nil, nil
	}
	if fp := f.fetchIcon(ctx, iconURL); fp != nil {
		return fp, nil
	}
	return nil, ctx.Err()
}

func (f *Fingerprinter) fetchIcon(ctx context.Context, iconURL string) *model.FaviconFingerprint {
	resp, ok := f.fetch(ctx, iconURL)
	if !ok {
		return nil
	}
	if len(resp.Body) == 0 {
		f.logger.Debug("empty icon body", logging.Field{Key: "url", Value: iconURL})
		return nil
	}
	return &model.FaviconFingerprint{
		SourceURL: iconURL,
		ByteSize:  len(resp.Body),
		Hash:      HashIcon(resp.Body),
	}
}

// fetch performs one bounded GET and reports whether it returned a 2xx.
func (f *Fingerprinter) fetch(ctx context.Context, rawURL string) (*webclient.Response, bool) {
	fetchCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	resp, err := f.wc.Get(fetchCtx, rawURL)
	if err != nil {
		f.logger.Debug("fetch failed",
			logging.Field{Key: "url", Value: rawURL},
			logging.Field{Key: "error", Value: err.Error()})
		return nil, false
	}
	if !resp.OK() {
		f.logger.Debug("fetch returned non-2xx",
			logging.Field{Key: "url", Value: rawURL},
			logging.Field{Key: "status", Value: resp.StatusCode})
		return nil, false
	}
	return resp, true
}
