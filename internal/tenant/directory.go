package tenant

import (
	"context"
	"errors"
	"fmt"

	"github.com/SilviuMajor/total-dash-sub001/internal/serviceerr"
)

// Directory reads agencies and their verified whitelabel domains from the
// data store. Implementations report a missing record with
// serviceerr.ErrNotFound and never return unverified whitelabel mappings.
type Directory interface {
	FindVerifiedAgencyByDomain(ctx context.Context, domain string) (WhitelabelAgency, error)
	FindAgencyBySlug(ctx context.Context, slug string) (Agency, error)
}

// LookupOutcome classifies the result of a directory call.
type LookupOutcome int

const (
	LookupFound LookupOutcome = iota
	LookupMiss
	LookupFault
)

func (o LookupOutcome) String() string {
	switch o {
	case LookupFound:
		return "found"
	case LookupMiss:
		return "miss"
	default:
		return "fault"
	}
}

// LookupResult is the typed outcome of a directory call. Err is only set
// for LookupFault.
type LookupResult[T any] struct {
	Value   T
	Outcome LookupOutcome
	Err     error
}

// Found reports whether the lookup produced a record.
func (r LookupResult[T]) Found() bool {
	return r.Outcome == LookupFound
}

// lookup runs fn and folds its error, or a panic, into a LookupResult.
func lookup[T any](ctx context.Context, arg string, fn func(context.Context, string) (T, error)) (res LookupResult[T]) {
	defer func() {
		if p := recover(); p != nil {
			res = LookupResult[T]{Outcome: LookupFault, Err: fmt.Errorf("directory panicked: %v", p)}
		}
	}()

	v, err := fn(ctx, arg)
	switch {
	case err == nil:
		return LookupResult[T]{Value: v, Outcome: LookupFound}
	case errors.Is(err, serviceerr.ErrNotFound):
		return LookupResult[T]{Outcome: LookupMiss}
	default:
		return LookupResult[T]{Outcome: LookupFault, Err: err}
	}
}
