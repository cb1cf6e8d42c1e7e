// Package safeweb holds the outbound-request and input guards the editor
// service shares: URL vetting for the translation backend (SSRF
// prevention), slot/page identifier validation, and bounded response
// reads.
package safeweb

import (
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"strings"
)

// MaxResponseBody caps translation-service response reads (1 MiB).
const MaxResponseBody int64 = 1 << 20

// ErrPrivateAddress is returned when a URL targets a private or loopback
// address.
var ErrPrivateAddress = errors.New("safeweb: URL targets a private or loopback address")

// ErrScheme is returned for non-HTTP(S) URLs.
var ErrScheme = errors.New("safeweb: only http and https schemes are allowed")

// CheckURL verifies that rawURL is http/https with a hostname that does
// not resolve to a private or loopback address. DNS resolution failures
// pass through: the connection attempt will surface the real error, and a
// temporarily unresolvable external host should not be rejected here.
func CheckURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("safeweb: invalid URL: %w", err)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return ErrScheme
	}
	host := u.Hostname()
	if host == "" {
		return errors.New("safeweb: URL has no host")
	}

	if ip := net.ParseIP(host); ip != nil {
		if privateIP(ip) {
			return ErrPrivateAddress
		}
		return nil
	}

	addrs, err := net.LookupHost(host)
	if err != nil {
		return nil
	}
	for _, a := range addrs {
		if ip := net.ParseIP(a); ip != nil && privateIP(ip) {
			return ErrPrivateAddress
		}
	}
	return nil
}

// CheckID validates slot and page identifiers arriving over HTTP: ASCII
// alphanumerics, underscore, hyphen, and dot, at most 256 bytes.
func CheckID(s string) error {
	if s == "" {
		return errors.New("safeweb: identifier must not be empty")
	}
	if len(s) > 256 {
		return errors.New("safeweb: identifier too long (max 256)")
	}
	for _, r := range s {
		ok := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '_' || r == '-' || r == '.'
		if !ok {
			return fmt.Errorf("safeweb: invalid character %q in identifier", r)
		}
	}
	return nil
}

// ReadAll reads at most maxBytes from r, erroring when the limit is
// exceeded instead of truncating silently.
func ReadAll(r io.Reader, maxBytes int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("safeweb: response exceeds %d bytes", maxBytes)
	}
	return data, nil
}

func privateIP(ip net.IP) bool {
	if ip.IsLoopback() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() {
		return true
	}
	for _, cidr := range privateRanges {
		if cidr.Contains(ip) {
			return true
		}
	}
	return false
}

var privateRanges = mustCIDRs(
	"10.0.0.0/8",
	"172.16.0.0/12",
	"192.168.0.0/16",
	"169.254.0.0/16",
	"fc00::/7",
	"::1/128",
)

func mustCIDRs(blocks ...string) []*net.IPNet {
	out := make([]*net.IPNet, 0, len(blocks))
	for _, b := range blocks {
		_, cidr, err := net.ParseCIDR(b)
		if err != nil {
			panic("safeweb: bad CIDR literal: " + b)
		}
		out = append(out, cidr)
	}
	return out
}
