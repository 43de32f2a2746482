package guard

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"syscall"
	"time"

	"github.com/raysh454/phishscan/internal/logging"
	"github.com/raysh454/phishscan/internal/model"
)

// Resolver is the subset of *net.Resolver the guard needs.
type Resolver interface {
	LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error)
}

// Config holds guard settings.
type Config struct {
	// LookupTimeout bounds a single hostname resolution.
	LookupTimeout time.Duration
	// EnforceOnDial makes DialControl reject private remote addresses at
	// connect time. This closes the window between the lookup-time check
	// and the resolution the HTTP client performs itself.
	EnforceOnDial bool
}

// Guard rejects targets that resolve to private or otherwise internal
// addresses.
type Guard struct {
	cfg      Config
	resolver Resolver
	logger   logging.Logger
}

// New creates a Guard. A nil resolver uses net.DefaultResolver.
func New(cfg Config, resolver Resolver, logger logging.Logger) *Guard {
	if resolver == nil {
		resolver = net.DefaultResolver
	}
	if cfg.LookupTimeout <= 0 {
		cfg.LookupTimeout = 5 * time.Second
	}
	return &Guard{
		cfg:      cfg,
		resolver: resolver,
		logger:   logger.With(logging.Field{Key: "component", Value: "ssrf-guard"}),
	}
}

// Check resolves target's host and returns an allowing verdict only when
// every resolved address is public. The returned error wraps
// model.ErrResolutionFailed or model.ErrSSRFRisk.
func (g *Guard) Check(ctx context.Context, target *model.NormalizedURL) (model.SSRFVerdict, error) {
	host := target.Host()

	var addrs []net.IP
	if ip := net.ParseIP(host); ip != nil {
		addrs = []net.IP{ip}
	} else {
		lookupCtx, cancel := context.WithTimeout(ctx, g.cfg.LookupTimeout)
		defer cancel()

		resolved, err := g.resolver.LookupIPAddr(lookupCtx, host)
		if err != nil {
			g.logger.Warn("dns lookup failed",
				logging.Field{Key: "host", Value: host},
				logging.Field{Key: "error", Value: err.Error()})
			return deny("DNS lookup failed: " + err.Error()), fmt.Errorf("%w: DNS lookup failed for %s: %v", model.ErrResolutionFailed, host, err)
		}
		for _, a := range resolved {
			addrs = append(addrs, a.IP)
		}
	}

	if len(addrs) == 0 {
		return deny("could not resolve hostname"), fmt.Errorf("%w: no addresses for %s", model.ErrResolutionFailed, host)
	}

	verdict := model.SSRFVerdict{Allowed: true}
	for _, ip := range addrs {
		verdict.Addrs = append(verdict.Addrs, ip.String())
	}
	for _, ip := range addrs {
		if IsPrivate(ip) {
			g.logger.Warn("target resolves to private address",
				logging.Field{Key: "host", Value: host},
				logging.Field{Key: "addr", Value: ip.String()})
			v := deny("resolved to private IP " + ip.String())
			v.Addrs = verdict.Addrs
			return v, fmt.Errorf("%w: %s resolved to private IP %s", model.ErrSSRFRisk, host, ip)
		}
	}

	g.logger.Debug("target allowed",
		logging.Field{Key: "host", Value: host},
		logging.Field{Key: "addrs", Value: verdict.Addrs})
	return verdict, nil
}

func deny(reason string) model.SSRFVerdict {
	return model.SSRFVerdict{Allowed: false, Reason: reason}
}

// DialControl is a net.Dialer Control hook. It runs after the HTTP
// client's own resolution, against the address actually being dialled.
func (g *Guard) DialControl(network, address string, _ syscall.RawConn) error {
	if !g.cfg.EnforceOnDial {
		return nil
	}
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return fmt.Errorf("%w: bad dial address %q", model.ErrSSRFRisk, address)
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return fmt.Errorf("%w: non-IP dial address %q", model.ErrSSRFRisk, address)
	}
	if IsPrivate(ip) {
		g.logger.Warn("blocked connection to private address",
			logging.Field{Key: "network", Value: network},
			logging.Field{Key: "addr", Value: address})
		return fmt.Errorf("%w: refusing to connect to %s", model.ErrSSRFRisk, address)
	}
	return nil
}

var reservedPrefixes = []netip.Prefix{
	netip.MustParsePrefix("0.0.0.0/8"),
	netip.MustParsePrefix("100.64.0.0/10"),
	netip.MustParsePrefix("192.0.0.0/24"),
	netip.MustParsePrefix("198.18.0.0/15"),
	netip.MustParsePrefix("240.0.0.0/4"),
	netip.MustParsePrefix("64:ff9b::/96"),
	netip.MustParsePrefix("2001:db8::/32"),
}

// IsPrivate reports whether ip is private, loopback, link-local or
// otherwise reserved and must never be fetched.
func IsPrivate(ip net.IP) bool {
	if ip == nil {
		return true
	}
	if v4 := ip.To4(); v4 != nil {
		ip = v4
	}
	if ip.IsPrivate() || ip.IsLoopback() || ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() || ip.IsInterfaceLocalMulticast() ||
		ip.IsMulticast() || ip.IsUnspecified() {
		return true
	}

	addr, ok := netip.AddrFromSlice(ip)
	if !ok {
		return true
	}
	addr = addr.Unmap()
	for _, p := range reservedPrefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}
