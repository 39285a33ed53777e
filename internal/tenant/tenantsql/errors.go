package tenantsql

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/SilviuMajor/total-dash-sub001/internal/serviceerr"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

func handlePgError(err error) (error, bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err, false
	}

	switch pgErr.Code {
	case pgUniqueViolation:
		return serviceerr.ErrConflict, true
	case pgForeignKeyViolation:
		return serviceerr.ErrNotFound, true
	}

	return err, false
}
