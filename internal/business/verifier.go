package business

import (
	"context"
	"fmt"
	"time"

	slogctx "github.com/veqryn/slog-context"

	"github.com/SilviuMajor/total-dash-sub001/internal/config"
	"github.com/SilviuMajor/total-dash-sub001/internal/tenant/tenantsql"
	"github.com/SilviuMajor/total-dash-sub001/internal/verify"
)

// VerifierMain periodically verifies the pending whitelabel domains. A zero
// interval runs a single pass.
func VerifierMain(ctx context.Context, cfg *config.Config) error {
	db, err := initDB(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialise the directory: %w", err)
	}
	defer db.Close()

	checker := verify.NewDNSChecker(cfg.Verifier.DNSServer, cfg.Verifier.RecordPrefix, cfg.Verifier.Timeout)
	service := verify.NewService(tenantsql.NewRepository(db), checker,
		verify.WithConcurrencyLimit(cfg.Verifier.ConcurrencyLimit),
	)

	return runVerifier(ctx, service, cfg.Verifier.Interval)
}

type pendingVerifier interface {
	VerifyPending(ctx context.Context) (verify.Report, error)
}

func runVerifier(ctx context.Context, v pendingVerifier, interval time.Duration) error {
	var c <-chan time.Time
	if interval > 0 {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		c = ticker.C
	}

	for {
		report, err := v.VerifyPending(ctx)
		if err != nil {
			slogctx.Error(ctx, "Error during domain verification", "error", err)
		} else {
			slogctx.Info(ctx, "Domain verification finished",
				"checked", report.Checked,
				"verified", report.Verified,
				"failed", report.Failed,
			)
		}

		if c == nil {
			return err
		}

		select {
		case <-c:
			continue
		case <-ctx.Done():
			return nil
		}
	}
}
