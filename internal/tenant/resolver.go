package tenant

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"golang.org/x/sync/singleflight"

	slogctx "github.com/veqryn/slog-context"

	"github.com/SilviuMajor/total-dash-sub001/internal/hostname"
)

const meterName = "github.com/SilviuMajor/total-dash-sub001/internal/tenant"

// Resolver turns a request's host and path into a DomainContext.
type Resolver struct {
	directory Directory
	rules     Rules
	cache     *Cache
	group     singleflight.Group

	cacheCounter  metric.Int64Counter
	lookupCounter metric.Int64Counter
}

type ResolverOption func(*Resolver)

func WithRules(rules Rules) ResolverOption {
	return func(r *Resolver) { r.rules = rules }
}

func WithCache(cache *Cache) ResolverOption {
	return func(r *Resolver) { r.cache = cache }
}

func NewResolver(directory Directory, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		directory: directory,
		rules:     DefaultRules(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	if r.cache == nil {
		r.cache = NewCache(DefaultCacheTTL, DefaultCacheHighWaterMark, nil)
	}

	r.initMeters()

	return r
}

func (r *Resolver) initMeters() {
	meter := otel.Meter(meterName)

	var err error
	r.cacheCounter, err = meter.Int64Counter(
		"tenant.resolver.cache",
		metric.WithDescription("Domain context cache lookups by result"),
	)
	if err != nil {
		r.cacheCounter = noop.Int64Counter{}
	}

	r.lookupCounter, err = meter.Int64Counter(
		"tenant.resolver.lookup",
		metric.WithDescription("Directory lookups by kind and outcome"),
	)
	if err != nil {
		r.lookupCounter = noop.Int64Counter{}
	}
}

// Resolve classifies req. The only error it returns is an invalid_request
// error for a request without domain or path; directory failures fall back
// to the next rule.
func (r *Resolver) Resolve(ctx context.Context, req Request) (DomainContext, error) {
	if err := req.Validate(); err != nil {
		return DomainContext{}, err
	}

	key := CacheKey{Domain: req.Domain, Path: req.Path}
	if dc, ok := r.cache.Get(key); ok {
		r.cacheCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("result", "hit")))
		slogctx.Debug(ctx, "Domain context served from cache", "domain", req.Domain, "path", req.Path)
		return dc, nil
	}
	r.cacheCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("result", "miss")))

	// Identical concurrent requests share one computation. It must not be
	// cut short by the first caller going away.
	flightKey := key.String() + "\x00" + req.ForwardedHost
	v, _, _ := r.group.Do(flightKey, func() (any, error) {
		dc := r.resolve(context.WithoutCancel(ctx), req)
		r.cache.Put(key, dc)
		return dc, nil
	})

	dc := v.(DomainContext).clone()
	slogctx.Debug(ctx, "Domain context resolved",
		"domain", req.Domain,
		"path", req.Path,
		"forwarded_host", req.ForwardedHost,
		"context_type", dc.Type,
	)

	return dc, nil
}

func (r *Resolver) resolve(ctx context.Context, req Request) DomainContext {
	host := hostname.Normalize(req.Domain)

	var lookedUp string
	if req.ForwardedHost != "" {
		lookedUp = hostname.BaseDomain(hostname.Normalize(req.ForwardedHost))
		if res := r.findWhitelabel(ctx, lookedUp); res.Found() {
			return r.whitelabelContext(res.Value, req.Path)
		}
	}

	if host != lookedUp {
		if res := r.findWhitelabel(ctx, host); res.Found() {
			return r.whitelabelContext(res.Value, req.Path)
		}
	}

	if r.rules.IsPlatformDomain(host) {
		return r.rules.ParsePath(ctx, host, req.Path, r.confirmAgency)
	}

	return AgencyContext("")
}

func (r *Resolver) whitelabelContext(agency WhitelabelAgency, path string) DomainContext {
	return ClientContext(agency.Slug, r.rules.ClientSlug(path), agency.Branding())
}

func (r *Resolver) findWhitelabel(ctx context.Context, domain string) LookupResult[WhitelabelAgency] {
	res := lookup(ctx, domain, r.directory.FindVerifiedAgencyByDomain)
	r.recordLookup(ctx, "whitelabel_domain", domain, res.Outcome, res.Err)
	return res
}

func (r *Resolver) confirmAgency(ctx context.Context, slug string) bool {
	res := lookup(ctx, slug, r.directory.FindAgencyBySlug)
	r.recordLookup(ctx, "agency_slug", slug, res.Outcome, res.Err)
	return res.Found()
}

func (r *Resolver) recordLookup(ctx context.Context, kind, arg string, outcome LookupOutcome, err error) {
	r.lookupCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("outcome", outcome.String()),
	))

	if outcome == LookupFault {
		slogctx.Warn(ctx, "Directory lookup failed, falling back", "kind", kind, "value", arg, "error", err)
	}
}
