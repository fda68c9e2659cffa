package store

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockProvider(t *testing.T) (*SQLProvider, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return NewSQLProvider(db, Postgres), mock
}

func q(s string) string { return "^" + regexp.QuoteMeta(s) + "$" }

func TestRebind(t *testing.T) {
	pg := &SQLProvider{dialect: Postgres}
	lite := &SQLProvider{dialect: SQLite}

	assert.Equal(t, `INSERT INTO users (username, password_hash, role) VALUES ($1, $2, $3) RETURNING id`, pg.rebind(insertQuery))
	assert.Equal(t, insertQuery, lite.rebind(insertQuery))
}

func TestSQLProvider_FindUserByUsername(t *testing.T) {
	findPG := `SELECT id, username, role FROM users WHERE username = $1`

	t.Run("found", func(t *testing.T) {
		p, mock := newMockProvider(t)
		mock.ExpectQuery(q(findPG)).WithArgs("bob").
			WillReturnRows(sqlmock.NewRows([]string{"id", "username", "role"}).AddRow(7, "bob", "Admin"))

		u, status, msg := p.FindUserByUsername(context.Background(), "bob")
		require.Equal(t, StatusOK, status)
		assert.Empty(t, msg)
		require.NotNil(t, u)
		assert.Equal(t, int64(7), u.ID)
		assert.Equal(t, "bob", u.UserName)
		assert.Equal(t, "Admin", u.Role)
	})

	t.Run("absent", func(t *testing.T) {
		p, mock := newMockProvider(t)
		mock.ExpectQuery(q(findPG)).WithArgs("ghost").WillReturnError(sql.ErrNoRows)

		u, status, _ := p.FindUserByUsername(context.Background(), "ghost")
		assert.Nil(t, u)
		assert.Equal(t, StatusOK, status)
	})

	t.Run("db failure", func(t *testing.T) {
		p, mock := newMockProvider(t)
		mock.ExpectQuery(q(findPG)).WithArgs("bob").WillReturnError(errors.New("conn reset"))

		u, status, msg := p.FindUserByUsername(context.Background(), "bob")
		assert.Nil(t, u)
		assert.Equal(t, StatusFailed, status)
		assert.Equal(t, "db error: conn reset", msg)
	})
}

func TestSQLProvider_GetPasswordHash(t *testing.T) {
	hashPG := `SELECT password_hash FROM users WHERE username = $1`

	t.Run("found", func(t *testing.T) {
		p, mock := newMockProvider(t)
		mock.ExpectQuery(q(hashPG)).WithArgs("bob").
			WillReturnRows(sqlmock.NewRows([]string{"password_hash"}).AddRow("$argon2id$..."))

		h, status, _ := p.GetPasswordHash(context.Background(), "bob")
		require.Equal(t, StatusOK, status)
		require.NotNil(t, h)
		assert.Equal(t, "$argon2id$...", *h)
	})

	t.Run("absent", func(t *testing.T) {
		p, mock := newMockProvider(t)
		mock.ExpectQuery(q(hashPG)).WithArgs("bob").WillReturnError(sql.ErrNoRows)

		h, status, _ := p.GetPasswordHash(context.Background(), "bob")
		assert.Nil(t, h)
		assert.Equal(t, StatusOK, status)
	})

	t.Run("db failure", func(t *testing.T) {
		p, mock := newMockProvider(t)
		mock.ExpectQuery(q(hashPG)).WithArgs("bob").WillReturnError(errors.New("timeout"))

		_, status, msg := p.GetPasswordHash(context.Background(), "bob")
		assert.Equal(t, StatusFailed, status)
		assert.Contains(t, msg, "timeout")
	})
}

func TestSQLProvider_InsertUser(t *testing.T) {
	existsPG := `SELECT COUNT(*) FROM users WHERE username = $1`
	insertPG := `INSERT INTO users (username, password_hash, role) VALUES ($1, $2, $3) RETURNING id`

	t.Run("inserted", func(t *testing.T) {
		p, mock := newMockProvider(t)
		mock.ExpectBegin()
		mock.ExpectQuery(q(existsPG)).WithArgs("bob").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery(q(insertPG)).WithArgs("bob", "hash", "User").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))
		mock.ExpectCommit()

		u, status, _ := p.InsertUser(context.Background(), "bob", "hash", "User")
		require.Equal(t, StatusOK, status)
		assert.Equal(t, int64(42), u.ID)
		assert.Equal(t, "bob", u.UserName)
		assert.Equal(t, "User", u.Role)
	})

	t.Run("exists", func(t *testing.T) {
		p, mock := newMockProvider(t)
		mock.ExpectBegin()
		mock.ExpectQuery(q(existsPG)).WithArgs("bob").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectRollback()

		u, status, msg := p.InsertUser(context.Background(), "bob", "hash", "User")
		assert.Nil(t, u)
		assert.Equal(t, StatusDuplicate, status)
		assert.Equal(t, "User already exists", msg)
	})

	t.Run("unique violation race", func(t *testing.T) {
		p, mock := newMockProvider(t)
		mock.ExpectBegin()
		mock.ExpectQuery(q(existsPG)).WithArgs("bob").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery(q(insertPG)).WithArgs("bob", "hash", "User").
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"})
		mock.ExpectRollback()

		_, status, _ := p.InsertUser(context.Background(), "bob", "hash", "User")
		assert.Equal(t, StatusDuplicate, status)
	})

	t.Run("begin fails", func(t *testing.T) {
		p, mock := newMockProvider(t)
		mock.ExpectBegin().WillReturnError(errors.New("pool exhausted"))

		_, status, msg := p.InsertUser(context.Background(), "bob", "hash", "User")
		assert.Equal(t, StatusFailed, status)
		assert.Equal(t, "db error: pool exhausted", msg)
	})
}
