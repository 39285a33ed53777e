// Package domain provides utilities to inspect the host a request was
// originally addressed to and to carry it in the context.
package domain

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/SilviuMajor/total-dash-sub001/internal/hostname"
)

// Headers an edge proxy sets when it forwards a custom domain request,
// in priority order.
const (
	HeaderOriginalHost  = "X-Original-Host"
	HeaderForwardedHost = "X-Forwarded-Host"
)

// Using an unexported type prevents key collisions from other packages.
type contextKey string

// HostsKey is the context key used to store the hosts of the original request.
const HostsKey contextKey = "hosts"

// Hosts describes where a request was addressed to.
type Hosts struct {
	// Host is the normalised Host of the connection.
	Host string
	// Forwarded is the normalised original host set by an edge proxy, or
	// empty when the request was not proxied.
	Forwarded string
}

// Middleware is an http.Handler middleware that injects the hosts
// of the original *http.Request into the context for later handlers to access.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hosts := Hosts{
			Host:      hostname.Normalize(r.Host),
			Forwarded: ForwardedHost(r.Header),
		}
		ctx := context.WithValue(r.Context(), HostsKey, hosts)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// FromContext is a helper function that retrieves the hosts from the context.
func FromContext(ctx context.Context) (Hosts, error) {
	hosts, ok := ctx.Value(HostsKey).(Hosts)
	if !ok {
		return Hosts{}, errors.New("hosts not found in context")
	}
	return hosts, nil
}

// ForwardedHost returns the normalised value of the first present, non-empty
// proxy host header. When a header carries a proxy chain only the first
// element is used. It returns an empty string for direct requests.
func ForwardedHost(h http.Header) string {
	for _, name := range []string{HeaderOriginalHost, HeaderForwardedHost} {
		raw := strings.TrimSpace(h.Get(name))
		if raw == "" {
			continue
		}

		first, _, _ := strings.Cut(raw, ",")
		if first = strings.TrimSpace(first); first != "" {
			return hostname.Normalize(first)
		}
	}
	return ""
}
