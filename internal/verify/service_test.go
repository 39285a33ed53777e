package verify_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SilviuMajor/total-dash-sub001/internal/tenant"
	"github.com/SilviuMajor/total-dash-sub001/internal/verify"
)

type fakeStore struct {
	mu       sync.Mutex
	pending  []tenant.WhitelabelDomain
	listErr  error
	markErr  error
	verified map[string]time.Time
}

func (s *fakeStore) ListPendingDomains(context.Context) ([]tenant.WhitelabelDomain, error) {
	return s.pending, s.listErr
}

func (s *fakeStore) MarkVerified(_ context.Context, agencyID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.markErr != nil {
		return s.markErr
	}
	if s.verified == nil {
		s.verified = make(map[string]time.Time)
	}
	s.verified[agencyID] = at
	return nil
}

type fakeChecker map[string]string

func (c fakeChecker) Check(_ context.Context, domain, token string) (bool, error) {
	txt, ok := c[domain]
	if !ok {
		return false, errors.New("i/o timeout")
	}
	return txt == token, nil
}

func TestService_VerifyPending(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	store := &fakeStore{pending: []tenant.WhitelabelDomain{
		{AgencyID: "a-1", Domain: "fiveleaf.co.uk", VerificationToken: "tok-1"},
		{AgencyID: "a-2", Domain: "acme.example", VerificationToken: "tok-2"},
		{AgencyID: "a-3", Domain: "broken.example", VerificationToken: "tok-3"},
		{AgencyID: "a-4", Domain: "notoken.example"},
	}}
	checker := fakeChecker{
		"fiveleaf.co.uk":  "tok-1",
		"acme.example":    "stale",
		"notoken.example": "",
	}

	svc := verify.NewService(store, checker,
		verify.WithConcurrencyLimit(2),
		verify.WithClock(func() time.Time { return now }),
	)

	report, err := svc.VerifyPending(t.Context())
	require.NoError(t, err)
	assert.Equal(t, verify.Report{Checked: 4, Verified: 1, Failed: 1}, report)
	assert.Equal(t, map[string]time.Time{"a-1": now}, store.verified)
}

func TestService_VerifyPendingListError(t *testing.T) {
	errDB := errors.New("connection refused")
	svc := verify.NewService(&fakeStore{listErr: errDB}, fakeChecker{})

	_, err := svc.VerifyPending(t.Context())
	assert.ErrorIs(t, err, errDB)
}

func TestService_VerifyPendingMarkError(t *testing.T) {
	store := &fakeStore{
		pending: []tenant.WhitelabelDomain{{AgencyID: "a-1", Domain: "fiveleaf.co.uk", VerificationToken: "tok-1"}},
		markErr: errors.New("deadlock detected"),
	}
	svc := verify.NewService(store, fakeChecker{"fiveleaf.co.uk": "tok-1"})

	report, err := svc.VerifyPending(t.Context())
	require.NoError(t, err)
	assert.Equal(t, verify.Report{Checked: 1, Failed: 1}, report)
	assert.Empty(t, store.verified)
}
