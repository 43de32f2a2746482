package assessor

import (
	"regexp"
	"strings"

	"github.com/raysh454/phishscan/internal/model"
)

const (
	FindingIPHost       = "Host is an IP address"
	FindingLongHost     = "Long domain name"
	FindingHyphens      = "Multiple hyphens"
	FindingNoHTTPS      = "No HTTPS"
	FindingManyParams   = "Many query parameters"
	findingKeywordLabel = "Contains suspicious word: "
)

// KeywordFinding is the finding text for a matched keyword.
func KeywordFinding(word string) string {
	return findingKeywordLabel + word
}

var dottedQuad = regexp.MustCompile(`^\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}$`)

// rule appends zero or more findings for target.
type rule struct {
	id   string
	eval func(cfg *Config, target *model.NormalizedURL, out []string) []string
}

// defaultRules is evaluated in order; the order is the order of findings.
var defaultRules = []rule{
	{id: "ip_host", eval: func(_ *Config, t *model.NormalizedURL, out []string) []string {
		if dottedQuad.MatchString(t.Host()) {
			out = append(out, FindingIPHost)
		}
		return out
	}},
	{id: "long_host", eval: func(cfg *Config, t *model.NormalizedURL, out []string) []string {
		if len(t.Host()) > cfg.LongHostLength {
			out = append(out, FindingLongHost)
		}
		return out
	}},
	{id: "hyphens", eval: func(cfg *Config, t *model.NormalizedURL, out []string) []string {
		if strings.Count(t.Host(), "-") >= cfg.MinHyphens {
			out = append(out, FindingHyphens)
		}
		return out
	}},
	{id: "keywords", eval: func(cfg *Config, t *model.NormalizedURL, out []string) []string {
		full := strings.ToLower(t.String())
		for _, w := range cfg.Keywords {
			if w != "" && strings.Contains(full, strings.ToLower(w)) {
				out = append(out, KeywordFinding(w))
			}
		}
		return out
	}},
	{id: "no_https", eval: func(_ *Config, t *model.NormalizedURL, out []string) []string {
		if t.Scheme() != "https" {
			out = append(out, FindingNoHTTPS)
		}
		return out
	}},
	{id: "query_params", eval: func(cfg *Config, t *model.NormalizedURL, out []string) []string {
		if strings.Count(t.RawQuery(), "&") > cfg.MaxQueryDelimiters {
			out = append(out, FindingManyParams)
		}
		return out
	}},
}
