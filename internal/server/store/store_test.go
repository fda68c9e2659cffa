package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/authkeeper/authkeeper/internal/dbx"
	"github.com/authkeeper/authkeeper/internal/envelope"
	"github.com/authkeeper/authkeeper/internal/logging"
	"github.com/authkeeper/authkeeper/internal/server/models"
)

type stubProvider struct {
	user       *models.User
	hash       *string
	status     int
	msg        string
	insertRow  *models.User
	insertStat int
	insertMsg  string
}

func (s *stubProvider) FindUserByUsername(context.Context, string) (*models.User, int, string) {
	return s.user, s.status, s.msg
}

func (s *stubProvider) GetPasswordHash(context.Context, string) (*string, int, string) {
	return s.hash, s.status, s.msg
}

func (s *stubProvider) InsertUser(_ context.Context, username, _, role string) (*models.User, int, string) {
	return s.insertRow, s.insertStat, s.insertMsg
}

func strPtr(s string) *string { return &s }

func TestAuthStore_FindByUsername(t *testing.T) {
	tests := []struct {
		name     string
		provider *stubProvider
		wantCode envelope.Code
		wantMsg  string
	}{
		{"found", &stubProvider{user: &models.User{ID: 7, UserName: "bob", Role: "Admin"}}, envelope.None, ""},
		{"absent", &stubProvider{}, envelope.UserNotFound, "Username does not exist"},
		{"failure", &stubProvider{status: StatusFailed, msg: "db error: down"}, envelope.DatabaseError, "db error: down"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewAuthStore(tt.provider, logging.Discard())
			r := s.FindByUsername(context.Background(), "bob")

			assert.Equal(t, tt.wantCode, r.Code)
			assert.Equal(t, tt.wantMsg, r.Message)
			if tt.wantCode == envelope.None {
				assert.True(t, r.Success)
				assert.Equal(t, int64(7), r.Data.ID)
				assert.Equal(t, "Admin", r.Data.Role)
			}
		})
	}
}

func TestAuthStore_GetPasswordHash(t *testing.T) {
	tests := []struct {
		name     string
		provider *stubProvider
		wantCode envelope.Code
	}{
		{"found", &stubProvider{hash: strPtr("h")}, envelope.None},
		{"absent", &stubProvider{}, envelope.NotFound},
		{"empty", &stubProvider{hash: strPtr("")}, envelope.NotFound},
		{"failure", &stubProvider{status: StatusFailed, msg: "x"}, envelope.DatabaseError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewAuthStore(tt.provider, logging.Discard()).GetPasswordHash(context.Background(), "bob")
			assert.Equal(t, tt.wantCode, r.Code)
			if r.Success {
				assert.Equal(t, "h", r.Data)
			}
		})
	}
}

func TestAuthStore_Insert(t *testing.T) {
	tests := []struct {
		name     string
		provider *stubProvider
		wantCode envelope.Code
		wantMsg  string
	}{
		{"ok", &stubProvider{insertRow: &models.User{ID: 1, UserName: "bob", Role: "User"}}, envelope.None, ""},
		{"duplicate", &stubProvider{insertStat: StatusDuplicate, insertMsg: "dup"}, envelope.UserAlreadyExists, "User already exists"},
		{"failure", &stubProvider{insertStat: StatusFailed, insertMsg: "db error: disk full"}, envelope.DatabaseError, "db error: disk full"},
		{"no row", &stubProvider{}, envelope.ServerError, "Insert returned no user"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewAuthStore(tt.provider, logging.Discard()).Insert(context.Background(), NewUser{Username: "bob", PasswordHash: "h", Role: "User"})
			assert.Equal(t, tt.wantCode, r.Code)
			assert.Equal(t, tt.wantMsg, r.Message)
		})
	}
}

func TestSQLiteIntegration(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, SQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	s := NewAuthStore(NewSQLProvider(db, SQLite), logging.Discard())

	r := s.FindByUsername(ctx, "bob")
	assert.Equal(t, envelope.UserNotFound, r.Code)

	ins := s.Insert(ctx, NewUser{Username: "bob", PasswordHash: "hash-1", Role: "User"})
	require.True(t, ins.Success, ins.String())
	assert.NotZero(t, ins.Data.ID)

	dup := s.Insert(ctx, NewUser{Username: "bob", PasswordHash: "hash-2", Role: "User"})
	assert.Equal(t, envelope.UserAlreadyExists, dup.Code)

	found := s.FindByUsername(ctx, "bob")
	require.True(t, found.Success)
	assert.Equal(t, ins.Data, found.Data)

	h := s.GetPasswordHash(ctx, "bob")
	require.True(t, h.Success)
	assert.Equal(t, "hash-1", h.Data)
}

func TestSQLiteProvider_UniqueViolationWithoutExistenceCheck(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, SQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.ExecContext(ctx, `INSERT INTO users (username, password_hash, role) VALUES ('bob', 'h', 'User')`)
	require.NoError(t, err)

	p := NewSQLProvider(db, SQLite)
	var id int64
	err = db.QueryRowContext(ctx, p.rebind(insertQuery), "bob", "h", "User").Scan(&id)
	require.Error(t, err)
	assert.True(t, dbx.IsUniqueViolation(err))
}

func TestParseDialect(t *testing.T) {
	for in, want := range map[string]Dialect{"pgx": Postgres, "postgres": Postgres, "sqlite": SQLite, "sqlite3": SQLite} {
		d, err := ParseDialect(in)
		require.NoError(t, err)
		assert.Equal(t, want, d)
	}
	_, err := ParseDialect("mysql")
	assert.Error(t, err)
}
