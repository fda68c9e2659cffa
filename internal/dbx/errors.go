package dbx

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation     = "23505"
	sqliteConstraint      = 19
	sqliteConstraintUniq  = 2067
	sqliteConstraintPrimK = 1555
)

// sqliteCoder matches *sqlite.Error from modernc.org/sqlite without pulling
// the driver into every importer.
type sqliteCoder interface {
	Code() int
}

// IsUniqueViolation reports whether err is a unique-constraint failure from
// either the pgx or the sqlite driver.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}

	var sqErr sqliteCoder
	if errors.As(err, &sqErr) {
		switch code := sqErr.Code(); {
		case code == sqliteConstraintUniq, code == sqliteConstraintPrimK:
			return true
		case code&0xff == sqliteConstraint:
			return strings.Contains(err.Error(), "UNIQUE")
		}
	}

	return false
}
