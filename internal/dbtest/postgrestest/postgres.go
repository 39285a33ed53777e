package postgrestest

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/docker/go-connections/nat"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pressly/goose/v3"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	_ "github.com/jackc/pgx/v5/stdlib"

	slogctx "github.com/veqryn/slog-context"

	migrations "github.com/SilviuMajor/total-dash-sub001/sql"
)

const (
	DBHost     = "localhost"
	DBUser     = "postgres"
	DBPassword = "secret"
	DBName     = "tenant_resolver"
	DBSSLMode  = "disable"
)

// Fixture records inserted by prepareDB.
const (
	AcmeID     = "1b0e7c52-3f55-4b8a-8a0c-0c9e3f5d2e11"
	FiveleafID = "8d6f0f7e-1a7c-4d0e-9a43-0d1f2c3b4a59"
	PendingID  = "c3a1d9e2-6b7f-4c21-b5d8-7e0f1a2b3c4d"

	PendingToken = "token-pending"
)

// Start initialises a database instance and returns a connection pool, database port, and termination function.
//
// Database credentials are available as exported variables.
// The database contains pre-defined test data. See INSERT statements in the prepareDB.
func Start(ctx context.Context) (*pgxpool.Pool, nat.Port, func(ctx context.Context)) {
	pgContainer, err := postgres.Run(
		ctx,
		"postgres:17-alpine",
		postgres.WithDatabase(DBName),
		postgres.WithUsername(DBUser),
		postgres.WithPassword(DBPassword),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		slogctx.Error(ctx, "Failed to start PostgreSQL", slog.String("error", err.Error()))
		panic(err)
	}

	port, err := pgContainer.MappedPort(ctx, nat.Port("5432"))
	if err != nil {
		slogctx.Error(ctx, "Failed to get mapped port for the PostgreSQL container", slog.String("error", err.Error()))
		panic(err)
	}

	connStr := ConnStr(port)
	dbPool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		panic(err)
	}

	prepareDB(ctx, dbPool, connStr)

	terminate := func(ctx context.Context) {
		dbPool.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			slogctx.Error(ctx, "Failed to terminate PostgreSQL container", slog.String("error", err.Error()))
			panic(err)
		}
	}

	return dbPool, port, terminate
}

// ConnStr returns the connection string of the test database on port.
func ConnStr(port nat.Port) string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s", DBHost, DBUser, DBPassword, DBName, port.Port(), DBSSLMode)
}

func migrateDB(ctx context.Context, connStr string) {
	db, err := sql.Open("pgx", connStr)
	if err != nil {
		panic(err)
	}
	defer db.Close()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("pgx"); err != nil {
		panic(err)
	}

	if err := goose.UpContext(ctx, db, "."); err != nil {
		panic(err)
	}
}

func prepareDB(ctx context.Context, dbPool *pgxpool.Pool, connStr string) {
	migrateDB(ctx, connStr)

	b := new(pgx.Batch)
	b.Queue(`INSERT INTO agencies (id, slug, name) VALUES ($1, 'acme', 'Acme');`, AcmeID)
	b.Queue(`INSERT INTO agencies (id, slug, name, logo_url, primary_color, secondary_color)
		VALUES ($1, 'fiveleaf', 'Fiveleaf', 'https://cdn.total-dash.com/fiveleaf.png', '#0f766e', '#f59e0b');`, FiveleafID)
	b.Queue(`INSERT INTO whitelabel_domains (agency_id, domain, subdomain, verified, verification_token, verified_at)
		VALUES ($1, 'fiveleaf.co.uk', 'dashboard', true, 'token-fiveleaf', now());`, FiveleafID)
	b.Queue(`INSERT INTO agencies (id, slug, name) VALUES ($1, 'pending', 'Pending Agency');`, PendingID)
	b.Queue(`INSERT INTO whitelabel_domains (agency_id, domain, subdomain, verified, verification_token)
		VALUES ($1, 'pending.example', '', false, $2);`, PendingID, PendingToken)

	res := dbPool.SendBatch(ctx, b)
	if err := res.Close(); err != nil {
		panic(err)
	}
}
