// Package hostname normalises the host values a request carries so they can
// be compared against platform and whitelabel domains.
package hostname

import (
	"errors"
	"strings"

	"golang.org/x/net/idna"
)

// ErrInvalidDomain is returned by Canonical when the input is not a usable domain.
var ErrInvalidDomain = errors.New("invalid domain")

var schemes = []string{"https://", "http://"}

// Normalize strips a leading http:// or https:// scheme and a trailing :port
// from raw. It never fails; input it does not recognise is returned as is.
func Normalize(raw string) string {
	host := raw
	for _, scheme := range schemes {
		if rest, ok := strings.CutPrefix(host, scheme); ok {
			host = rest
			break
		}
	}

	if idx := strings.LastIndexByte(host, ':'); idx != -1 && isPort(host[idx+1:]) {
		host = host[:idx]
	}

	return host
}

// BaseDomain drops the leftmost label of host when it has more than two
// dot-separated labels ("dashboard.acme.com" -> "acme.com"). Hosts with two
// labels or fewer are returned unchanged.
//
// Exactly one subdomain level is assumed, so "dashboard.fiveleaf.co.uk"
// becomes "fiveleaf.co.uk" but "a.b.acme.com" becomes "b.acme.com".
func BaseDomain(host string) string {
	if strings.Count(host, ".") < 2 {
		return host
	}

	_, rest, _ := strings.Cut(host, ".")
	return rest
}

// IsSubdomainOf reports whether host equals parent or is a subdomain of it.
func IsSubdomainOf(host, parent string) bool {
	if parent == "" {
		return false
	}
	return host == parent || strings.HasSuffix(host, "."+parent)
}

// Canonical returns the lower-case IDNA ASCII form of a domain, as stored in
// the whitelabel directory.
func Canonical(raw string) (string, error) {
	host := strings.TrimSuffix(strings.TrimSpace(Normalize(raw)), ".")
	if host == "" || strings.ContainsAny(host, "/?# ") {
		return "", ErrInvalidDomain
	}

	ascii, err := idna.Lookup.ToASCII(host)
	if err != nil {
		return "", errors.Join(ErrInvalidDomain, err)
	}

	return strings.ToLower(ascii), nil
}

func isPort(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
