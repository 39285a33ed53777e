// Package tenant classifies inbound requests into one of the platform's
// tenant scopes: the platform super-admin, an agency, or a client of an
// agency, optionally served from the agency's own whitelabel domain.
package tenant

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/SilviuMajor/total-dash-sub001/internal/serviceerr"
)

// ContextType is the tenant scope a request belongs to.
type ContextType string

const (
	ContextSuperAdmin ContextType = "super_admin"
	ContextAgency     ContextType = "agency"
	ContextClient     ContextType = "client"
)

// Request is the input of a resolution.
type Request struct {
	// Domain is the raw Host style value, it may include a scheme and port.
	Domain string
	// Path is the request path, for example /acme/client-a.
	Path string
	// ForwardedHost is the original host forwarded by an edge proxy for a
	// custom domain. Empty for direct requests.
	ForwardedHost string
}

// Validate returns an invalid_request error when Domain or Path is missing.
func (r Request) Validate() error {
	switch {
	case r.Domain == "" && r.Path == "":
		return serviceerr.InvalidRequest("domain and path are required")
	case r.Domain == "":
		return serviceerr.InvalidRequest("domain is required")
	case r.Path == "":
		return serviceerr.InvalidRequest("path is required")
	}
	return nil
}

// Agency is the minimal agency record returned by a slug lookup.
type Agency struct {
	ID   string `json:"id"`
	Slug string `json:"slug"`
	Name string `json:"name"`
}

// WhitelabelAgency is a verified mapping between an agency and its custom domain.
type WhitelabelAgency struct {
	AgencyID            string `json:"agencyId"`
	Slug                string `json:"slug"`
	Name                string `json:"name"`
	LogoURL             string `json:"logoUrl"`
	PrimaryColor        string `json:"primaryColor"`
	SecondaryColor      string `json:"secondaryColor"`
	WhitelabelSubdomain string `json:"whitelabelSubdomain"`
	WhitelabelDomain    string `json:"whitelabelDomain"`
}

// Branding returns the branding parameters rendered for the agency.
func (a WhitelabelAgency) Branding() *WhitelabelBranding {
	return &WhitelabelBranding{
		AgencyID:       a.AgencyID,
		AgencyName:     a.Name,
		LogoURL:        a.LogoURL,
		PrimaryColor:   a.PrimaryColor,
		SecondaryColor: a.SecondaryColor,
	}
}

type WhitelabelBranding struct {
	AgencyID       string `json:"agencyId"`
	AgencyName     string `json:"agencyName"`
	LogoURL        string `json:"logoUrl"`
	PrimaryColor   string `json:"primaryColor"`
	SecondaryColor string `json:"secondaryColor"`
}

// DomainContext is the result of a resolution. Empty slugs mean absent.
//
// Values are built with SuperAdminContext, AgencyContext and ClientContext,
// which keep ClientSlug empty outside of the client scope and Whitelabel nil
// in the super-admin scope.
type DomainContext struct {
	Type       ContextType
	AgencySlug string
	ClientSlug string
	Whitelabel *WhitelabelBranding
}

func SuperAdminContext() DomainContext {
	return DomainContext{Type: ContextSuperAdmin}
}

func AgencyContext(agencySlug string) DomainContext {
	return DomainContext{Type: ContextAgency, AgencySlug: agencySlug}
}

func ClientContext(agencySlug, clientSlug string, branding *WhitelabelBranding) DomainContext {
	return DomainContext{
		Type:       ContextClient,
		AgencySlug: agencySlug,
		ClientSlug: clientSlug,
		Whitelabel: branding,
	}
}

var errInvariant = errors.New("domain context invariant violated")

// Validate checks the invariants between the context type and its fields.
func (d DomainContext) Validate() error {
	switch d.Type {
	case ContextSuperAdmin, ContextAgency, ContextClient:
	default:
		return fmt.Errorf("%w: unknown context type %q", errInvariant, d.Type)
	}
	if d.ClientSlug != "" && d.Type != ContextClient {
		return fmt.Errorf("%w: client slug set for %s", errInvariant, d.Type)
	}
	if d.Whitelabel != nil && d.Type == ContextSuperAdmin {
		return fmt.Errorf("%w: whitelabel config set for %s", errInvariant, d.Type)
	}
	return nil
}

func (d DomainContext) clone() DomainContext {
	if d.Whitelabel != nil {
		branding := *d.Whitelabel
		d.Whitelabel = &branding
	}
	return d
}

type domainContextJSON struct {
	ContextType      ContextType         `json:"contextType"`
	AgencySlug       *string             `json:"agencySlug"`
	ClientSlug       *string             `json:"clientSlug"`
	WhitelabelConfig *WhitelabelBranding `json:"whitelabelConfig"`
}

// MarshalJSON renders absent fields as null.
func (d DomainContext) MarshalJSON() ([]byte, error) {
	return json.Marshal(domainContextJSON{
		ContextType:      d.Type,
		AgencySlug:       optional(d.AgencySlug),
		ClientSlug:       optional(d.ClientSlug),
		WhitelabelConfig: d.Whitelabel,
	})
}

func (d *DomainContext) UnmarshalJSON(data []byte) error {
	var v domainContextJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}

	*d = DomainContext{Type: v.ContextType, Whitelabel: v.WhitelabelConfig}
	if v.AgencySlug != nil {
		d.AgencySlug = *v.AgencySlug
	}
	if v.ClientSlug != nil {
		d.ClientSlug = *v.ClientSlug
	}
	return nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// WhitelabelDomain is a custom domain registered for an agency.
type WhitelabelDomain struct {
	AgencyID          string
	Domain            string
	Subdomain         string
	Verified          bool
	VerificationToken string
}

// Host returns the full host the domain is served on, e.g. dashboard.fiveleaf.co.uk.
func (d WhitelabelDomain) Host() string {
	if d.Subdomain == "" {
		return d.Domain
	}
	return d.Subdomain + "." + d.Domain
}
