package tenant

import (
	"context"
	"slices"
	"strings"

	"github.com/SilviuMajor/total-dash-sub001/internal/hostname"
)

// Rules is the table of reserved path markers and recognised platform
// domains the path parser works from.
type Rules struct {
	// PlatformDomains are the platform's own hosts. A host matches when it
	// equals one of them or is a subdomain of one.
	PlatformDomains []string
	// AdminSubdomain is the leftmost label that puts a host in the
	// super-admin scope, e.g. "admin" for admin.total-dash.com.
	AdminSubdomain string
	// SuperAdminPrefixes are path prefixes of the super-admin area.
	SuperAdminPrefixes []string
	// AgencyLoginPrefixes are path prefixes of the platform agency login.
	AgencyLoginPrefixes []string
	// AgencyMarker is the first path segment reserved for agency pages.
	AgencyMarker string
	// LoginMarker is the second path segment reserved for an agency login.
	LoginMarker string
	// WhitelabelMarkers are first path segments on a whitelabel domain that
	// do not name a client.
	WhitelabelMarkers []string
}

func DefaultRules() Rules {
	return Rules{
		PlatformDomains:     []string{"total-dash.com", "localhost", "127.0.0.1"},
		AdminSubdomain:      "admin",
		SuperAdminPrefixes:  []string{"/admin"},
		AgencyLoginPrefixes: []string{"/agency/login"},
		AgencyMarker:        "agency",
		LoginMarker:         "login",
		WhitelabelMarkers:   []string{"login", "client"},
	}
}

// IsPlatformDomain reports whether the normalised host is one of the
// platform's own domains.
func (r Rules) IsPlatformDomain(host string) bool {
	return slices.ContainsFunc(r.PlatformDomains, func(d string) bool {
		return hostname.IsSubdomainOf(host, d)
	})
}

// AgencyConfirmer confirms that a candidate slug names a real agency.
type AgencyConfirmer func(ctx context.Context, slug string) bool

// ParsePath classifies a request on a platform domain from its path.
func (r Rules) ParsePath(ctx context.Context, host, path string, confirm AgencyConfirmer) DomainContext {
	segments := Segments(path)

	if r.isAdminHost(host) || r.hasAnyPrefix(segments, r.SuperAdminPrefixes) {
		return SuperAdminContext()
	}

	if r.hasAnyPrefix(segments, r.AgencyLoginPrefixes) || (len(segments) > 0 && segments[0] == r.AgencyMarker) {
		return AgencyContext("")
	}

	if len(segments) == 0 {
		return AgencyContext("")
	}

	slug := segments[0]
	if !confirm(ctx, slug) {
		return AgencyContext("")
	}

	if len(segments) == 1 || segments[1] == r.LoginMarker {
		return AgencyContext(slug)
	}

	return ClientContext(slug, segments[1], nil)
}

// ClientSlug extracts the client slug from a path on a whitelabel domain.
// It returns an empty string when the path is empty or starts with a
// reserved marker.
func (r Rules) ClientSlug(path string) string {
	segments := Segments(path)
	if len(segments) == 0 || slices.Contains(r.WhitelabelMarkers, segments[0]) {
		return ""
	}
	return segments[0]
}

func (r Rules) isAdminHost(host string) bool {
	return r.AdminSubdomain != "" && strings.HasPrefix(host, r.AdminSubdomain+".")
}

func (r Rules) hasAnyPrefix(segments []string, prefixes []string) bool {
	for _, prefix := range prefixes {
		want := Segments(prefix)
		if len(want) > 0 && len(segments) >= len(want) && slices.Equal(segments[:len(want)], want) {
			return true
		}
	}
	return false
}

// Segments splits a path on "/" and drops empty segments.
func Segments(path string) []string {
	parts := strings.Split(path, "/")
	return slices.DeleteFunc(parts, func(s string) bool { return s == "" })
}
