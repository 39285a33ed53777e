package tenantsql_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SilviuMajor/total-dash-sub001/internal/dbtest/postgrestest"
	"github.com/SilviuMajor/total-dash-sub001/internal/serviceerr"
	"github.com/SilviuMajor/total-dash-sub001/internal/tenant"
	"github.com/SilviuMajor/total-dash-sub001/internal/tenant/tenantsql"
)

var dbPool *pgxpool.Pool

func TestMain(m *testing.M) {
	ctx := context.Background()

	pool, _, terminate := postgrestest.Start(ctx)

	dbPool = pool

	code := m.Run()
	terminate(ctx)
	os.Exit(code)
}

var fiveleaf = tenant.WhitelabelAgency{
	AgencyID:            postgrestest.FiveleafID,
	Slug:                "fiveleaf",
	Name:                "Fiveleaf",
	LogoURL:             "https://cdn.total-dash.com/fiveleaf.png",
	PrimaryColor:        "#0f766e",
	SecondaryColor:      "#f59e0b",
	WhitelabelSubdomain: "dashboard",
	WhitelabelDomain:    "fiveleaf.co.uk",
}

func TestRepository_FindVerifiedAgencyByDomain(t *testing.T) {
	tests := []struct {
		name       string
		domain     string
		wantAgency tenant.WhitelabelAgency
		assertErr  assert.ErrorAssertionFunc
	}{
		{
			name:       "bare domain",
			domain:     "fiveleaf.co.uk",
			wantAgency: fiveleaf,
			assertErr:  assert.NoError,
		},
		{
			name:       "domain with subdomain",
			domain:     "dashboard.fiveleaf.co.uk",
			wantAgency: fiveleaf,
			assertErr:  assert.NoError,
		},
		{
			name:      "unverified domain is not returned",
			domain:    "pending.example",
			assertErr: assert.Error,
		},
		{
			name:      "unknown domain",
			domain:    "does-not-exist.example",
			assertErr: assert.Error,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := tenantsql.NewRepository(dbPool)

			got, err := r.FindVerifiedAgencyByDomain(t.Context(), tt.domain)
			if !tt.assertErr(t, err, fmt.Sprintf("Repository.FindVerifiedAgencyByDomain() error %v", err)) || err != nil {
				assert.ErrorIs(t, err, serviceerr.ErrNotFound)
				assert.Zero(t, got)
				return
			}

			if diff := cmp.Diff(tt.wantAgency, got); diff != "" {
				t.Errorf("Repository.FindVerifiedAgencyByDomain() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRepository_FindAgencyBySlug(t *testing.T) {
	r := tenantsql.NewRepository(dbPool)

	got, err := r.FindAgencyBySlug(t.Context(), "acme")
	require.NoError(t, err)
	assert.Equal(t, tenant.Agency{ID: postgrestest.AcmeID, Slug: "acme", Name: "Acme"}, got)

	_, err = r.FindAgencyBySlug(t.Context(), "nobody")
	assert.ErrorIs(t, err, serviceerr.ErrNotFound)
}

func TestRepository_CreateWhitelabelDomain(t *testing.T) {
	r := tenantsql.NewRepository(dbPool)

	t.Run("stores the canonical domain unverified", func(t *testing.T) {
		got, err := r.CreateWhitelabelDomain(t.Context(), tenant.WhitelabelDomain{
			AgencyID:          postgrestest.AcmeID,
			Domain:            "https://Acme-Agency.example",
			Subdomain:         "Portal",
			Verified:          true,
			VerificationToken: "token-acme",
		})
		require.NoError(t, err)
		assert.Equal(t, tenant.WhitelabelDomain{
			AgencyID:          postgrestest.AcmeID,
			Domain:            "acme-agency.example",
			Subdomain:         "portal",
			VerificationToken: "token-acme",
		}, got)

		_, err = r.FindVerifiedAgencyByDomain(t.Context(), "portal.acme-agency.example")
		assert.ErrorIs(t, err, serviceerr.ErrNotFound)
	})

	t.Run("duplicate domain conflicts", func(t *testing.T) {
		_, err := r.CreateWhitelabelDomain(t.Context(), tenant.WhitelabelDomain{
			AgencyID:          postgrestest.PendingID,
			Domain:            "fiveleaf.co.uk",
			VerificationToken: "token",
		})
		assert.ErrorIs(t, err, serviceerr.ErrConflict)
	})

	t.Run("unknown agency", func(t *testing.T) {
		_, err := r.CreateWhitelabelDomain(t.Context(), tenant.WhitelabelDomain{
			AgencyID:          "00000000-0000-0000-0000-000000000001",
			Domain:            "orphan.example",
			VerificationToken: "token",
		})
		assert.ErrorIs(t, err, serviceerr.ErrNotFound)
	})

	t.Run("invalid domain", func(t *testing.T) {
		_, err := r.CreateWhitelabelDomain(t.Context(), tenant.WhitelabelDomain{
			AgencyID: postgrestest.AcmeID,
			Domain:   "not a domain/",
		})
		assert.Error(t, err)
	})
}

func TestRepository_PendingAndMarkVerified(t *testing.T) {
	r := tenantsql.NewRepository(dbPool)
	ctx := t.Context()

	pending, err := r.ListPendingDomains(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, pending)
	assert.Contains(t, pending, tenant.WhitelabelDomain{
		AgencyID:          postgrestest.PendingID,
		Domain:            "pending.example",
		VerificationToken: postgrestest.PendingToken,
	})

	require.NoError(t, r.MarkVerified(ctx, postgrestest.PendingID, time.Now()))

	got, err := r.FindVerifiedAgencyByDomain(ctx, "pending.example")
	require.NoError(t, err)
	assert.Equal(t, "pending", got.Slug)

	pending, err = r.ListPendingDomains(ctx)
	require.NoError(t, err)
	for _, d := range pending {
		assert.NotEqual(t, postgrestest.PendingID, d.AgencyID)
	}

	err = r.MarkVerified(ctx, "00000000-0000-0000-0000-000000000002", time.Now())
	assert.ErrorIs(t, err, serviceerr.ErrNotFound)
}

func TestRepository_CreateAgency(t *testing.T) {
	r := tenantsql.NewRepository(dbPool)

	created, err := r.CreateAgency(t.Context(), tenant.WhitelabelAgency{
		Slug:         " Northwind ",
		Name:         "Northwind",
		PrimaryColor: "#000000",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "northwind", created.Slug)

	found, err := r.FindAgencyBySlug(t.Context(), "northwind")
	require.NoError(t, err)
	assert.Equal(t, created, found)

	_, err = r.CreateAgency(t.Context(), tenant.WhitelabelAgency{Slug: "northwind", Name: "Again"})
	assert.ErrorIs(t, err, serviceerr.ErrConflict)

	_, err = r.CreateAgency(t.Context(), tenant.WhitelabelAgency{Slug: "a/b", Name: "Nested"})
	assert.ErrorIs(t, err, serviceerr.ErrInvalidRequest)
}
