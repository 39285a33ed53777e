package verify

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	slogctx "github.com/veqryn/slog-context"

	"github.com/SilviuMajor/total-dash-sub001/internal/tenant"
)

const DefaultConcurrencyLimit = 4

// Store holds the whitelabel domains awaiting verification.
type Store interface {
	ListPendingDomains(ctx context.Context) ([]tenant.WhitelabelDomain, error)
	MarkVerified(ctx context.Context, agencyID string, at time.Time) error
}

type Checker interface {
	Check(ctx context.Context, domain, token string) (bool, error)
}

// Report summarises one verification run.
type Report struct {
	Checked  int
	Verified int
	Failed   int
}

type Service struct {
	store   Store
	checker Checker
	limit   int
	now     func() time.Time
}

type ServiceOption func(*Service)

func WithConcurrencyLimit(limit int) ServiceOption {
	return func(s *Service) {
		if limit > 0 {
			s.limit = limit
		}
	}
}

func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

func NewService(store Store, checker Checker, opts ...ServiceOption) *Service {
	s := &Service{
		store:   store,
		checker: checker,
		limit:   DefaultConcurrencyLimit,
		now:     time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// VerifyPending checks every pending domain once and marks the ones whose
// TXT record carries their token as verified. Failures of single domains
// are logged and counted; only listing the pending domains is fatal.
func (s *Service) VerifyPending(ctx context.Context) (Report, error) {
	pending, err := s.store.ListPendingDomains(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("listing pending domains: %w", err)
	}

	var verified, failed atomic.Int64

	var g errgroup.Group
	g.SetLimit(s.limit)
	for _, d := range pending {
		g.Go(func() error {
			ok, err := s.verify(ctx, d)
			switch {
			case err != nil:
				failed.Add(1)
				slogctx.Warn(ctx, "Could not verify domain", "domain", d.Domain, "agency_id", d.AgencyID, "error", err)
			case ok:
				verified.Add(1)
				slogctx.Info(ctx, "Verified whitelabel domain", "domain", d.Domain, "agency_id", d.AgencyID)
			default:
				slogctx.Debug(ctx, "Verification record not found", "domain", d.Domain)
			}
			return nil
		})
	}
	_ = g.Wait()

	return Report{
		Checked:  len(pending),
		Verified: int(verified.Load()),
		Failed:   int(failed.Load()),
	}, nil
}

func (s *Service) verify(ctx context.Context, d tenant.WhitelabelDomain) (bool, error) {
	if d.VerificationToken == "" {
		return false, nil
	}

	ok, err := s.checker.Check(ctx, d.Domain, d.VerificationToken)
	if err != nil || !ok {
		return false, err
	}

	if err := s.store.MarkVerified(ctx, d.AgencyID, s.now()); err != nil {
		return false, fmt.Errorf("marking domain verified: %w", err)
	}

	return true, nil
}
