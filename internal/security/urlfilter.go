package security

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"syscall"
	"time"
)

const maxRedirects = 10

// ErrURLBlocked is returned when a URL is denied by the filter.
var ErrURLBlocked = errors.New("URL blocked by filter")

// URLFilterConfig holds the configuration for media URL filtering.
type URLFilterConfig struct {
	// AllowDomains, when non-empty, is the only set of hosts media may be
	// fetched from. Subdomains are matched: allowing "example.com" also
	// allows "cdn.example.com".
	AllowDomains []string `yaml:"allow_domains"`

	// DenyDomains takes precedence over AllowDomains.
	DenyDomains []string `yaml:"deny_domains"`
}

// URLFilter decides which remote media URLs the bot may download on behalf
// of an untrusted caller. Loopback, private, link-local and unspecified
// addresses are always refused.
type URLFilter struct {
	allow []string
	deny  []string

	// permitAddr lets an otherwise internal address through the dial guard.
	permitAddr func(netip.AddrPort) bool
}

// NewURLFilter creates a URL filter from the given config.
func NewURLFilter(cfg URLFilterConfig) *URLFilter {
	return &URLFilter{allow: normalize(cfg.AllowDomains), deny: normalize(cfg.DenyDomains)}
}

func normalize(domains []string) []string {
	out := make([]string, 0, len(domains))
	for _, d := range domains {
		if d = strings.ToLower(strings.TrimSpace(d)); d != "" {
			out = append(out, d)
		}
	}
	return out
}

// Check returns nil if the URL may be fetched, or an error wrapping
// ErrURLBlocked.
func (f *URLFilter) Check(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: invalid URL: %w", ErrURLBlocked, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%w: scheme %q", ErrURLBlocked, parsed.Scheme)
	}

	host := strings.TrimSuffix(strings.ToLower(parsed.Hostname()), ".")
	if host == "" {
		return fmt.Errorf("%w: empty hostname", ErrURLBlocked)
	}
	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return fmt.Errorf("%w: %s (local host)", ErrURLBlocked, host)
	}
	if addr, err := netip.ParseAddr(host); err == nil && internalAddr(addr) {
		return fmt.Errorf("%w: %s (internal address)", ErrURLBlocked, host)
	}

	// Deny list takes precedence.
	for _, d := range f.deny {
		if matchDomain(host, d) {
			return fmt.Errorf("%w: %s (denied)", ErrURLBlocked, host)
		}
	}

	if len(f.allow) == 0 {
		return nil
	}
	for _, a := range f.allow {
		if matchDomain(host, a) {
			return nil
		}
	}
	return fmt.Errorf("%w: %s (not in allow list)", ErrURLBlocked, host)
}

// HTTPClient returns a client that enforces the filter on the wire. The
// address of every outgoing connection is checked after DNS resolution, so a
// public name resolving to an internal address is refused, and every redirect
// hop goes through Check. Environment proxies are ignored.
func (f *URLFilter) HTTPClient(timeout time.Duration) *http.Client {
	dialer := &net.Dialer{Timeout: 30 * time.Second, Control: f.dialControl}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			DialContext:         dialer.DialContext,
			TLSHandshakeTimeout: 10 * time.Second,
			IdleConnTimeout:     90 * time.Second,
			MaxIdleConns:        10,
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("%w: stopped after %d redirects", ErrURLBlocked, len(via))
			}
			return f.Check(req.URL.String())
		},
	}
}

func (f *URLFilter) dialControl(_, address string, _ syscall.RawConn) error {
	ap, err := netip.ParseAddrPort(address)
	if err != nil {
		return fmt.Errorf("%w: unrecognised address %q", ErrURLBlocked, address)
	}
	if f.permitAddr != nil && f.permitAddr(ap) {
		return nil
	}
	if internalAddr(ap.Addr()) {
		return fmt.Errorf("%w: %s (internal address)", ErrURLBlocked, ap.Addr())
	}
	return nil
}

func internalAddr(addr netip.Addr) bool {
	addr = addr.Unmap()
	return addr.IsLoopback() || addr.IsPrivate() || addr.IsLinkLocalUnicast() ||
		addr.IsLinkLocalMulticast() || addr.IsUnspecified()
}

// matchDomain checks if host matches domain or is a subdomain of it.
// "api.example.com" matches "example.com".
// "notexample.com" does NOT match "example.com".
func matchDomain(host, domain string) bool {
	if host == domain {
		return true
	}
	return strings.HasSuffix(host, "."+domain)
}
