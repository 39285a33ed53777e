package tenantmock

import (
	"context"
	"sync"

	"github.com/SilviuMajor/total-dash-sub001/internal/serviceerr"
	"github.com/SilviuMajor/total-dash-sub001/internal/tenant"
)

type DirectoryOption func(*Directory)

// Directory is an in-memory tenant.Directory that counts its calls.
type Directory struct {
	mu sync.Mutex

	whitelabel map[string]tenant.WhitelabelAgency
	agencies   map[string]tenant.Agency

	domainErr, slugErr error

	domainCalls, slugCalls int
}

var _ tenant.Directory = (*Directory)(nil)

// WithWhitelabel registers a verified mapping under domain.
func WithWhitelabel(domain string, agency tenant.WhitelabelAgency) DirectoryOption {
	return func(d *Directory) { d.whitelabel[domain] = agency }
}
func WithAgency(agency tenant.Agency) DirectoryOption {
	return func(d *Directory) { d.agencies[agency.Slug] = agency }
}
func WithDomainError(err error) DirectoryOption {
	return func(d *Directory) { d.domainErr = err }
}
func WithSlugError(err error) DirectoryOption {
	return func(d *Directory) { d.slugErr = err }
}

func NewInMemDirectory(opts ...DirectoryOption) *Directory {
	d := &Directory{
		whitelabel: make(map[string]tenant.WhitelabelAgency),
		agencies:   make(map[string]tenant.Agency),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

func (d *Directory) FindVerifiedAgencyByDomain(_ context.Context, domain string) (tenant.WhitelabelAgency, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.domainCalls++
	if d.domainErr != nil {
		return tenant.WhitelabelAgency{}, d.domainErr
	}
	if agency, ok := d.whitelabel[domain]; ok {
		return agency, nil
	}
	return tenant.WhitelabelAgency{}, serviceerr.ErrNotFound
}

func (d *Directory) FindAgencyBySlug(_ context.Context, slug string) (tenant.Agency, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.slugCalls++
	if d.slugErr != nil {
		return tenant.Agency{}, d.slugErr
	}
	if agency, ok := d.agencies[slug]; ok {
		return agency, nil
	}
	return tenant.Agency{}, serviceerr.ErrNotFound
}

// Calls returns the total number of lookups served.
func (d *Directory) Calls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.domainCalls + d.slugCalls
}

func (d *Directory) DomainCalls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.domainCalls
}

func (d *Directory) SlugCalls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.slugCalls
}
