package utils

import (
	"fmt"
	"net"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/raysh454/phishscan/internal/model"
	"golang.org/x/net/idna"
)

// Input length bounds, in runes.
const (
	MinTargetLength = 3
	MaxTargetLength = 2000
)

var (
	schemePrefix = regexp.MustCompile(`(?i)^https?://`)
	hostLabel    = regexp.MustCompile(`^[a-z0-9_]([a-z0-9_-]*[a-z0-9_])?$`)
)

// NormalizeTarget turns a raw user-supplied string into a NormalizedURL.
// It performs no network I/O.
//
// Examples:
//
//	"example.com"              → "http://example.com/"
//	"HTTPS://Example.COM/a?b"  → "https://example.com/a?b"
//	"ftp://example.com"        → ErrInvalidInput
func NormalizeTarget(raw string) (*model.NormalizedURL, error) {
	raw = strings.TrimSpace(raw)

	n := utf8.RuneCountInString(raw)
	if n < MinTargetLength || n > MaxTargetLength {
		return nil, fmt.Errorf("%w: length must be between %d and %d characters", model.ErrInvalidInput, MinTargetLength, MaxTargetLength)
	}

	if !schemePrefix.MatchString(raw) {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrInvalidInput, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: unsupported scheme %q", model.ErrInvalidInput, u.Scheme)
	}
	if u.Opaque != "" {
		return nil, fmt.Errorf("%w: opaque URL", model.ErrInvalidInput)
	}

	host, err := normalizeHost(u.Hostname())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrInvalidInput, err)
	}

	port := u.Port()
	if strings.HasSuffix(u.Host, ":") {
		return nil, fmt.Errorf("%w: empty port", model.ErrInvalidInput)
	}
	if port != "" {
		p, err := strconv.Atoi(port)
		if err != nil || p < 1 || p > 65535 {
			return nil, fmt.Errorf("%w: invalid port %q", model.ErrInvalidInput, port)
		}
	}

	if port != "" {
		u.Host = net.JoinHostPort(host, port)
	} else if strings.Contains(host, ":") {
		u.Host = "[" + host + "]"
	} else {
		u.Host = host
	}

	if u.Path == "" {
		u.Path = "/"
	}
	u.Fragment = ""
	u.RawFragment = ""

	return model.NewNormalizedURL(u), nil
}

// normalizeHost lowercases host, converts IDN to punycode and checks the
// label syntax. IP literals are returned in canonical form.
func normalizeHost(host string) (string, error) {
	if host == "" {
		return "", fmt.Errorf("missing host")
	}
	if ip := net.ParseIP(host); ip != nil {
		return ip.String(), nil
	}

	host = strings.ToLower(strings.TrimSuffix(host, "."))
	if puny, err := idna.Lookup.ToASCII(host); err == nil {
		host = puny
	}
	if len(host) > 253 {
		return "", fmt.Errorf("host too long")
	}

	labels := strings.Split(host, ".")
	for _, label := range labels {
		if label == "" {
			return "", fmt.Errorf("empty label in host %q", host)
		}
		if len(label) > 63 || !hostLabel.MatchString(label) {
			return "", fmt.Errorf("invalid host label %q", label)
		}
	}
	return host, nil
}

// ResolveReference resolves href against base and returns an absolute
// http(s) URL.
//
// Examples:
//
//	Base: https://example.com/app/page
//	"//cdn.example.net/i.ico"  → "https://cdn.example.net/i.ico"
//	"/static/i.ico"            → "https://example.com/static/i.ico"
//	"img/i.ico"                → "https://example.com/app/img/i.ico"
//	"http://other.org/i.ico"   → "http://other.org/i.ico"
func ResolveReference(base *url.URL, href string) (string, error) {
	href = strings.TrimSpace(href)
	if href == "" {
		return "", fmt.Errorf("empty href")
	}

	ref, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("couldn't parse href %s: %w", href, err)
	}

	resolved := base.ResolveReference(ref)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q in href %s", resolved.Scheme, href)
	}
	if resolved.Host == "" {
		return "", fmt.Errorf("href %s resolves without host", href)
	}
	resolved.Fragment = ""
	return resolved.String(), nil
}
