package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/raysh454/phishscan/internal/logging"
	"github.com/raysh454/phishscan/internal/webclient"
)

const DefaultShodanBaseURL = "https://api.shodan.io"

type ShodanConfig struct {
	APIKey  string
	BaseURL string
}

// Shodan searches the Shodan host index by favicon hash.
type Shodan struct {
	key    string
	base   string
	wc     webclient.WebClient
	logger logging.Logger
}

func NewShodan(cfg ShodanConfig, wc webclient.WebClient, logger logging.Logger) (*Shodan, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("shodan: %w", ErrMissingKey)
	}
	if wc == nil || logger == nil {
		return nil, errors.New("shodan: nil webclient or logger")
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultShodanBaseURL
	}
	return &Shodan{
		key:    cfg.APIKey,
		base:   base,
		wc:     wc,
		logger: logger.With(logging.Field{Key: "component", Value: "shodan"}),
	}, nil
}

func (s *Shodan) SearchFaviconHash(ctx context.Context, hash string) (json.RawMessage, error) {
	if hash == "" {
		return nil, errors.New("shodan: empty hash")
	}
	q := url.Values{}
	q.Set("key", s.key)
	q.Set("query", "http.favicon.hash:"+hash)
	endpoint := s.base + "/shodan/host/search?" + q.Encode()

	resp, err := s.wc.Get(ctx, endpoint)
	if err != nil {
		return nil, transportError("shodan", err)
	}
	if !resp.OK() {
		s.logger.Warn("host search rejected",
			logging.Field{Key: "status", Value: resp.StatusCode})
		return nil, &StatusError{Provider: "shodan", StatusCode: resp.StatusCode, Message: errorMessage(resp.Body)}
	}
	if !json.Valid(resp.Body) {
		return nil, errors.New("shodan: response is not JSON")
	}

	s.logger.Debug("host search complete",
		logging.Field{Key: "hash", Value: hash},
		logging.Field{Key: "bytes", Value: len(resp.Body)})
	return json.RawMessage(resp.Body), nil
}
