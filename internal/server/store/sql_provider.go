package store

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"github.com/authkeeper/authkeeper/internal/dbx"
	"github.com/authkeeper/authkeeper/internal/server/models"
)

// SQLProvider implements Provider over database/sql for postgres (pgx) and
// sqlite.
type SQLProvider struct {
	db      *sql.DB
	dialect Dialect
}

func NewSQLProvider(db *sql.DB, d Dialect) *SQLProvider {
	return &SQLProvider{db: db, dialect: d}
}

const (
	findUserQuery = `SELECT id, username, role FROM users WHERE username = ?`
	getHashQuery  = `SELECT password_hash FROM users WHERE username = ?`
	existsQuery   = `SELECT COUNT(*) FROM users WHERE username = ?`
	insertQuery   = `INSERT INTO users (username, password_hash, role) VALUES (?, ?, ?) RETURNING id`
)

// rebind rewrites '?' placeholders into '$n' for postgres.
func (p *SQLProvider) rebind(q string) string {
	if p.dialect != Postgres {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (p *SQLProvider) FindUserByUsername(ctx context.Context, username string) (*models.User, int, string) {
	u := &models.User{}
	err := p.db.QueryRowContext(ctx, p.rebind(findUserQuery), username).Scan(&u.ID, &u.UserName, &u.Role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, StatusOK, ""
		}
		return nil, StatusFailed, "db error: " + err.Error()
	}
	return u, StatusOK, ""
}

func (p *SQLProvider) GetPasswordHash(ctx context.Context, username string) (*string, int, string) {
	var hash string
	err := p.db.QueryRowContext(ctx, p.rebind(getHashQuery), username).Scan(&hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, StatusOK, ""
		}
		return nil, StatusFailed, "db error: " + err.Error()
	}
	return &hash, StatusOK, ""
}

var errDuplicate = errors.New("User already exists")

// InsertUser checks for an existing username and inserts in one
// transaction. A unique violation raised by a concurrent insert is reported
// the same way as a failed existence check.
func (p *SQLProvider) InsertUser(ctx context.Context, username, passwordHash, role string) (*models.User, int, string) {
	u := &models.User{UserName: username, Role: role}

	err := dbx.WithTx(ctx, p.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var n int
		if err := tx.QueryRowContext(ctx, p.rebind(existsQuery), username).Scan(&n); err != nil {
			return err
		}
		if n > 0 {
			return errDuplicate
		}
		return tx.QueryRowContext(ctx, p.rebind(insertQuery), username, passwordHash, role).Scan(&u.ID)
	})

	switch {
	case err == nil:
		return u, StatusOK, ""
	case errors.Is(err, errDuplicate), dbx.IsUniqueViolation(err):
		return nil, StatusDuplicate, errDuplicate.Error()
	default:
		return nil, StatusFailed, "db error: " + err.Error()
	}
}
