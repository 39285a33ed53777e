package business

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/exaring/otelpgx"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	slogctx "github.com/veqryn/slog-context"

	"github.com/SilviuMajor/total-dash-sub001/internal/business/server"
	"github.com/SilviuMajor/total-dash-sub001/internal/config"
	"github.com/SilviuMajor/total-dash-sub001/internal/tenant"
	"github.com/SilviuMajor/total-dash-sub001/internal/tenant/tenantsql"
	"github.com/SilviuMajor/total-dash-sub001/internal/tenant/tenantvalkey"
)

// Main starts both API servers
func Main(ctx context.Context, cfg *config.Config) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// errChan is used to capture the first error and shutdown the servers.
	errChan := make(chan error, 2)

	// wg is used to wait for all servers to shutdown.
	var wg sync.WaitGroup

	// start public HTTP REST API server
	wg.Go(func() {
		errChan <- publicMain(ctx, cfg)
	})

	// start internal gRPC health server
	wg.Go(func() {
		errChan <- server.StartGRPCServer(ctx, cfg)
	})

	// wait for any error to initiate the shutdown
	if err := <-errChan; err != nil {
		slogctx.Error(ctx, "Shutting down servers", "error", err)
	}
	cancel()

	// wait for all servers to shutdown
	wg.Wait()

	return nil
}

// publicMain starts the HTTP REST public API server.
func publicMain(ctx context.Context, cfg *config.Config) error {
	resolver, closeFn, err := initResolver(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialising the resolver: %w", err)
	}
	defer closeFn()

	return server.StartHTTPServer(ctx, cfg, resolver)
}

func initDB(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	connStr, err := config.MakeConnStr(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("making dsn from config: %w", err)
	}

	poolCfg, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("parsing pgxpool config: %w", err)
	}
	poolCfg.ConnConfig.Tracer = otelpgx.NewTracer()

	db, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("initialising pgxpool connection: %w", err)
	}

	return db, nil
}

// initDirectory returns the PostgreSQL directory, fronted by valkey when a
// valkey host is configured.
func initDirectory(ctx context.Context, cfg *config.Config, db *pgxpool.Pool) (_ tenant.Directory, closeFn func(), _ error) {
	var dir tenant.Directory = tenantsql.NewRepository(db)

	valkeyOpts, ok, err := config.MakeValkeyOptions(cfg.ValKey)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		slogctx.Info(ctx, "No valkey host configured, directory cache disabled")
		return dir, func() {}, nil
	}

	valkeyClient, err := valkey.NewClient(valkeyOpts)
	if err != nil {
		return nil, nil, fmt.Errorf("creating a new valkey client: %w", err)
	}

	return tenantvalkey.NewDirectory(dir, valkeyClient, cfg.ValKey.Prefix, cfg.ValKey.TTL), valkeyClient.Close, nil
}

func initResolver(ctx context.Context, cfg *config.Config) (_ *tenant.Resolver, closeFn func(), _ error) {
	db, err := initDB(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	dir, closeDir, err := initDirectory(ctx, cfg, db)
	if err != nil {
		db.Close()
		return nil, nil, err
	}

	cache := tenant.NewCache(cfg.Resolver.CacheTTL, cfg.Resolver.CacheHighWaterMark, time.Now)
	resolver := tenant.NewResolver(dir,
		tenant.WithRules(cfg.Resolver.Rules()),
		tenant.WithCache(cache),
	)

	return resolver, func() {
		closeDir()
		db.Close()
	}, nil
}
