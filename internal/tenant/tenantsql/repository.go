package tenantsql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"

	"github.com/SilviuMajor/total-dash-sub001/internal/hostname"
	"github.com/SilviuMajor/total-dash-sub001/internal/serviceerr"
	"github.com/SilviuMajor/total-dash-sub001/internal/tenant"
)

// Repository is the PostgreSQL backed agency directory.
type Repository struct {
	db *pgxpool.Pool
}

var _ tenant.Directory = (*Repository)(nil)

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{
		db: db,
	}
}

// FindVerifiedAgencyByDomain returns the agency whose verified whitelabel
// domain equals domain, either as the bare domain or with its subdomain.
func (r *Repository) FindVerifiedAgencyByDomain(ctx context.Context, domain string) (tenant.WhitelabelAgency, error) {
	tracer := otel.GetTracerProvider()
	ctx, span := tracer.Tracer("").Start(ctx, "find_verified_agency_by_domain_sql")
	defer span.End()

	row := r.db.QueryRow(ctx,
		`SELECT a.id::text, a.slug, a.name, a.logo_url, a.primary_color, a.secondary_color, w.subdomain, w.domain
			 FROM whitelabel_domains w
			 JOIN agencies a ON a.id = w.agency_id
			 WHERE w.verified
			   AND (w.domain = $1 OR (w.subdomain <> '' AND w.subdomain || '.' || w.domain = $1))
			 ORDER BY w.domain = $1 DESC
			 LIMIT 1;`, domain)

	var agency tenant.WhitelabelAgency
	err := row.Scan(
		&agency.AgencyID, &agency.Slug, &agency.Name, &agency.LogoURL,
		&agency.PrimaryColor, &agency.SecondaryColor,
		&agency.WhitelabelSubdomain, &agency.WhitelabelDomain,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return tenant.WhitelabelAgency{}, serviceerr.ErrNotFound
		}
		span.RecordError(err)
		return tenant.WhitelabelAgency{}, fmt.Errorf("scanning whitelabel agency: %w", err)
	}

	return agency, nil
}

func (r *Repository) FindAgencyBySlug(ctx context.Context, slug string) (tenant.Agency, error) {
	tracer := otel.GetTracerProvider()
	ctx, span := tracer.Tracer("").Start(ctx, "find_agency_by_slug_sql")
	defer span.End()

	row := r.db.QueryRow(ctx, `SELECT id::text, slug, name FROM agencies WHERE slug = $1;`, slug)

	var agency tenant.Agency
	if err := row.Scan(&agency.ID, &agency.Slug, &agency.Name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return tenant.Agency{}, serviceerr.ErrNotFound
		}
		span.RecordError(err)
		return tenant.Agency{}, fmt.Errorf("scanning agency: %w", err)
	}

	return agency, nil
}

// CreateAgency inserts an agency with its branding and returns it with the
// generated id.
func (r *Repository) CreateAgency(ctx context.Context, a tenant.WhitelabelAgency) (tenant.Agency, error) {
	tracer := otel.GetTracerProvider()
	ctx, span := tracer.Tracer("").Start(ctx, "create_agency_sql")
	defer span.End()

	slug := strings.ToLower(strings.TrimSpace(a.Slug))
	if slug == "" || strings.Contains(slug, "/") {
		return tenant.Agency{}, serviceerr.InvalidRequest("agency slug must be a single path segment")
	}

	row := r.db.QueryRow(ctx,
		`INSERT INTO agencies (slug, name, logo_url, primary_color, secondary_color)
			 VALUES ($1, $2, $3, $4, $5)
			 RETURNING id::text;`,
		slug, a.Name, a.LogoURL, a.PrimaryColor, a.SecondaryColor,
	)

	agency := tenant.Agency{Slug: slug, Name: a.Name}
	if err := row.Scan(&agency.ID); err != nil {
		span.RecordError(err)
		if err, ok := handlePgError(err); ok {
			return tenant.Agency{}, err
		}

		return tenant.Agency{}, fmt.Errorf("inserting into agencies: %w", err)
	}

	return agency, nil
}

// CreateWhitelabelDomain registers an unverified custom domain for an
// agency. The domain and subdomain are stored in canonical form.
func (r *Repository) CreateWhitelabelDomain(ctx context.Context, d tenant.WhitelabelDomain) (tenant.WhitelabelDomain, error) {
	tracer := otel.GetTracerProvider()
	ctx, span := tracer.Tracer("").Start(ctx, "create_whitelabel_domain_sql")
	defer span.End()

	domain, err := hostname.Canonical(d.Domain)
	if err != nil {
		return tenant.WhitelabelDomain{}, fmt.Errorf("canonicalising domain: %w", err)
	}
	d.Domain = domain

	if d.Subdomain != "" {
		subdomain, err := hostname.Canonical(d.Subdomain)
		if err != nil {
			return tenant.WhitelabelDomain{}, fmt.Errorf("canonicalising subdomain: %w", err)
		}
		d.Subdomain = subdomain
	}
	d.Verified = false

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		span.RecordError(err)
		return tenant.WhitelabelDomain{}, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO whitelabel_domains (agency_id, domain, subdomain, verified, verification_token)
			 VALUES ($1, $2, $3, false, $4);`,
		d.AgencyID, d.Domain, d.Subdomain, d.VerificationToken,
	)
	if err != nil {
		span.RecordError(err)
		if err, ok := handlePgError(err); ok {
			return tenant.WhitelabelDomain{}, err
		}

		return tenant.WhitelabelDomain{}, fmt.Errorf("inserting into whitelabel_domains: %w", err)
	}

	err = tx.Commit(ctx)
	if err != nil {
		span.RecordError(err)
		return tenant.WhitelabelDomain{}, fmt.Errorf("committing transaction: %w", err)
	}

	return d, nil
}

// ListPendingDomains returns the domains still waiting for verification,
// oldest first.
func (r *Repository) ListPendingDomains(ctx context.Context) ([]tenant.WhitelabelDomain, error) {
	tracer := otel.GetTracerProvider()
	ctx, span := tracer.Tracer("").Start(ctx, "list_pending_domains_sql")
	defer span.End()

	rows, err := r.db.Query(ctx,
		`SELECT agency_id::text, domain, subdomain, verified, verification_token
			 FROM whitelabel_domains
			 WHERE NOT verified
			 ORDER BY created_at;`)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("querying pending domains: %w", err)
	}

	domains, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (tenant.WhitelabelDomain, error) {
		var d tenant.WhitelabelDomain
		err := row.Scan(&d.AgencyID, &d.Domain, &d.Subdomain, &d.Verified, &d.VerificationToken)
		return d, err
	})
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("scanning pending domains: %w", err)
	}

	return domains, nil
}

// MarkVerified flags the whitelabel domain of an agency as verified.
func (r *Repository) MarkVerified(ctx context.Context, agencyID string, at time.Time) error {
	tracer := otel.GetTracerProvider()
	ctx, span := tracer.Tracer("").Start(ctx, "mark_domain_verified_sql")
	defer span.End()

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	ct, err := tx.Exec(ctx,
		`UPDATE whitelabel_domains SET verified = true, verified_at = $1 WHERE agency_id = $2;`,
		at, agencyID)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("updating whitelabel_domains: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return serviceerr.ErrNotFound
	}

	err = tx.Commit(ctx)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("committing tx: %w", err)
	}

	return nil
}
