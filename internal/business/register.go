package business

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"

	slogctx "github.com/veqryn/slog-context"

	"github.com/SilviuMajor/total-dash-sub001/internal/config"
	"github.com/SilviuMajor/total-dash-sub001/internal/tenant"
	"github.com/SilviuMajor/total-dash-sub001/internal/tenant/tenantsql"
	"github.com/SilviuMajor/total-dash-sub001/internal/verify"
)

// AgencyOptions are the flags of the create-agency command.
type AgencyOptions struct {
	Slug           string
	Name           string
	LogoURL        string
	PrimaryColor   string
	SecondaryColor string
}

// RegisterDomainOptions are the flags of the register-domain command.
type RegisterDomainOptions struct {
	AgencySlug string
	Domain     string
	Subdomain  string

	Out io.Writer
}

type agencyCreator interface {
	CreateAgency(ctx context.Context, a tenant.WhitelabelAgency) (tenant.Agency, error)
}

type domainRegistry interface {
	FindAgencyBySlug(ctx context.Context, slug string) (tenant.Agency, error)
	CreateWhitelabelDomain(ctx context.Context, d tenant.WhitelabelDomain) (tenant.WhitelabelDomain, error)
}

// CreateAgencyMain returns a job that adds an agency to the directory.
// opts is read when the job runs, so it can be bound to flags.
func CreateAgencyMain(opts *AgencyOptions) func(context.Context, *config.Config) error {
	return func(ctx context.Context, cfg *config.Config) error {
		db, err := initDB(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to initialise the directory: %w", err)
		}
		defer db.Close()

		agency, err := createAgency(ctx, tenantsql.NewRepository(db), *opts)
		if err != nil {
			return err
		}

		slogctx.Info(ctx, "Created agency", "agency_id", agency.ID, "slug", agency.Slug)
		return nil
	}
}

// RegisterDomainMain returns a job that registers a whitelabel domain for an
// agency and prints the TXT record that proves its ownership.
func RegisterDomainMain(opts *RegisterDomainOptions) func(context.Context, *config.Config) error {
	return func(ctx context.Context, cfg *config.Config) error {
		db, err := initDB(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to initialise the directory: %w", err)
		}
		defer db.Close()

		d, err := registerDomain(ctx, tenantsql.NewRepository(db), *opts)
		if err != nil {
			return err
		}

		out := opts.Out
		if out == nil {
			out = os.Stdout
		}
		checker := verify.NewDNSChecker(cfg.Verifier.DNSServer, cfg.Verifier.RecordPrefix, cfg.Verifier.Timeout)
		printVerificationRecord(out, checker.RecordName(d.Domain), d)

		return nil
	}
}

func createAgency(ctx context.Context, creator agencyCreator, opts AgencyOptions) (tenant.Agency, error) {
	name := opts.Name
	if name == "" {
		name = opts.Slug
	}

	agency, err := creator.CreateAgency(ctx, tenant.WhitelabelAgency{
		Slug:           opts.Slug,
		Name:           name,
		LogoURL:        opts.LogoURL,
		PrimaryColor:   opts.PrimaryColor,
		SecondaryColor: opts.SecondaryColor,
	})
	if err != nil {
		return tenant.Agency{}, fmt.Errorf("creating agency %q: %w", opts.Slug, err)
	}

	return agency, nil
}

func registerDomain(ctx context.Context, registry domainRegistry, opts RegisterDomainOptions) (tenant.WhitelabelDomain, error) {
	agency, err := registry.FindAgencyBySlug(ctx, opts.AgencySlug)
	if err != nil {
		return tenant.WhitelabelDomain{}, fmt.Errorf("finding agency %q: %w", opts.AgencySlug, err)
	}

	d, err := registry.CreateWhitelabelDomain(ctx, tenant.WhitelabelDomain{
		AgencyID:          agency.ID,
		Domain:            opts.Domain,
		Subdomain:         opts.Subdomain,
		VerificationToken: uuid.NewString(),
	})
	if err != nil {
		return tenant.WhitelabelDomain{}, fmt.Errorf("registering domain %q: %w", opts.Domain, err)
	}

	slogctx.Info(ctx, "Registered whitelabel domain", "agency_id", d.AgencyID, "domain", d.Domain)
	return d, nil
}

func printVerificationRecord(w io.Writer, recordName string, d tenant.WhitelabelDomain) {
	fmt.Fprintf(w, "Domain %s registered, pending verification.\n", d.Host())
	fmt.Fprintf(w, "Publish the following DNS record:\n\n")
	fmt.Fprintf(w, "  %s. IN TXT %q\n", recordName, d.VerificationToken)
}
