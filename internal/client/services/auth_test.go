package services

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/authkeeper/authkeeper/internal/api"
	"github.com/authkeeper/authkeeper/internal/client/client"
	"github.com/authkeeper/authkeeper/internal/client/persistence"
	"github.com/authkeeper/authkeeper/internal/client/repositories/metadata"
	"github.com/authkeeper/authkeeper/internal/client/session"
	"github.com/authkeeper/authkeeper/internal/client/tokenstore"
	"github.com/authkeeper/authkeeper/internal/envelope"
	"github.com/authkeeper/authkeeper/internal/logging"
	"github.com/authkeeper/authkeeper/internal/validation"
)

type fakeClient struct {
	login    envelope.Result[api.AuthResponse]
	register envelope.Result[api.AuthResponse]
	me       envelope.Result[api.UserDetail]

	loginCalls    int
	registerCalls int
	lastUsername  string
	closed        bool
}

func (f *fakeClient) Login(_ context.Context, u, _ string) envelope.Result[api.AuthResponse] {
	f.loginCalls++
	f.lastUsername = u
	return f.login
}

func (f *fakeClient) Register(_ context.Context, u, _ string) envelope.Result[api.AuthResponse] {
	f.registerCalls++
	f.lastUsername = u
	return f.register
}

func (f *fakeClient) Me(context.Context) envelope.Result[api.UserDetail] { return f.me }

func (f *fakeClient) Close() error {
	f.closed = true
	return nil
}

func signed(t *testing.T, id string, name string, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  id,
		"name": name,
		"role": "User",
		"exp":  exp.Unix(),
	}).SignedString([]byte("server-side-key"))
	require.NoError(t, err)
	return tok
}

type fixture struct {
	svc     *AuthService
	client  *fakeClient
	store   *tokenstore.Store
	machine *session.Machine
	persist persistence.TokenPersistence
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := client.InitDatabase(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	l := logging.Discard()
	p := persistence.NewMetadataPersistence(metadata.NewSQLiteRepository(db), l)
	store := tokenstore.New()
	m := session.New(store, p, session.NewUserSession(), l)
	fc := &fakeClient{}

	return &fixture{
		svc:     NewAuthService(fc, validation.Default(), store, m, l),
		client:  fc,
		store:   store,
		machine: m,
		persist: p,
	}
}

func authOK(tok string, u *api.UserDetail) envelope.Result[api.AuthResponse] {
	return envelope.OK(api.AuthResponse{Token: tok, ExpiresAt: time.Now().Add(time.Hour), User: u})
}

func TestLogin_Success(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tok := signed(t, "7", "bobby", time.Now().Add(time.Hour))
	f.client.login = authOK(tok, &api.UserDetail{ID: 7, Username: "bobby", Role: "User"})

	var seen []session.State
	f.machine.Subscribe(func(s session.State) { seen = append(seen, s) })

	r := f.svc.Login(ctx, "bobby", "pw")
	require.True(t, r.Success, r.String())
	assert.Equal(t, api.UserDetail{ID: 7, Username: "bobby", Role: "User"}, r.Data)

	st := f.svc.State()
	assert.True(t, st.Authenticated)
	assert.Equal(t, int64(7), st.User.ID)
	assert.Equal(t, tok, f.store.Token())
	require.Len(t, seen, 1)

	saved, ok := f.persist.Load(ctx)
	require.True(t, ok)
	assert.Equal(t, tok, saved)
}

func TestLogin_TrimsUsername(t *testing.T) {
	f := newFixture(t)
	tok := signed(t, "7", "bobby", time.Now().Add(time.Hour))
	f.client.login = authOK(tok, &api.UserDetail{ID: 7, Username: "bobby", Role: "User"})

	r := f.svc.Login(context.Background(), "  bobby ", "pw")
	require.True(t, r.Success, r.String())
	assert.Equal(t, "bobby", f.client.lastUsername)
}

func TestLogin_Failures(t *testing.T) {
	expired := time.Now().Add(-time.Minute)

	tests := []struct {
		name      string
		username  string
		password  string
		resp      func(t *testing.T) envelope.Result[api.AuthResponse]
		wantCode  envelope.Code
		wantMsg   string
		wantCalls int
	}{
		{
			name:     "client validation short-circuits",
			username: "bob",
			password: "pw",
			wantCode: envelope.Validation,
			wantMsg:  envelope.ValidationMessage,
		},
		{
			name:     "server failure passes through",
			username: "bobby",
			password: "pw",
			resp: func(*testing.T) envelope.Result[api.AuthResponse] {
				return envelope.Fail[api.AuthResponse](envelope.PasswordInvalid, "Invalid password")
			},
			wantCode:  envelope.PasswordInvalid,
			wantMsg:   "Invalid password",
			wantCalls: 1,
		},
		{
			name:     "failure without details",
			username: "bobby",
			password: "pw",
			resp: func(*testing.T) envelope.Result[api.AuthResponse] {
				return envelope.Result[api.AuthResponse]{}
			},
			wantCode:  envelope.LoginFailed,
			wantMsg:   msgLoginFailed,
			wantCalls: 1,
		},
		{
			name:     "blank token",
			username: "bobby",
			password: "pw",
			resp: func(*testing.T) envelope.Result[api.AuthResponse] {
				return authOK("  ", &api.UserDetail{ID: 7, Username: "bobby"})
			},
			wantCode:  envelope.TokenMissing,
			wantMsg:   msgTokenMissing,
			wantCalls: 1,
		},
		{
			name:     "missing user",
			username: "bobby",
			password: "pw",
			resp: func(t *testing.T) envelope.Result[api.AuthResponse] {
				return authOK(signed(t, "7", "bobby", time.Now().Add(time.Hour)), nil)
			},
			wantCode:  envelope.TokenMissing,
			wantMsg:   msgTokenMissing,
			wantCalls: 1,
		},
		{
			name:     "already expired token",
			username: "bobby",
			password: "pw",
			resp: func(t *testing.T) envelope.Result[api.AuthResponse] {
				return authOK(signed(t, "7", "bobby", expired), &api.UserDetail{ID: 7, Username: "bobby"})
			},
			wantCode:  envelope.TokenExpired,
			wantMsg:   msgTokenExpired,
			wantCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			if tt.resp != nil {
				f.client.login = tt.resp(t)
			}

			r := f.svc.Login(context.Background(), tt.username, tt.password)
			require.False(t, r.Success)
			assert.Equal(t, tt.wantCode, r.Code)
			assert.Equal(t, tt.wantMsg, r.Message)
			assert.Equal(t, tt.wantCalls, f.client.loginCalls)

			assert.False(t, f.svc.State().Authenticated)
			assert.Empty(t, f.store.Token())
			_, persisted := f.persist.Load(context.Background())
			assert.False(t, persisted)
		})
	}
}

func TestLogin_UnreadableTokenIsLogicFailure(t *testing.T) {
	f := newFixture(t)
	f.client.login = authOK("not-a-jwt", &api.UserDetail{ID: 7, Username: "bobby"})

	r := f.svc.Login(context.Background(), "bobby", "pw")
	require.False(t, r.Success)
	assert.Equal(t, envelope.LogicFailed, r.Code)
	assert.False(t, f.svc.State().Authenticated)
}

func TestRegister_TrimsAndSignsIn(t *testing.T) {
	f := newFixture(t)
	tok := signed(t, "12", "alice", time.Now().Add(time.Hour))
	f.client.register = authOK(tok, &api.UserDetail{ID: 12, Username: "alice", Role: "User"})

	r := f.svc.Register(context.Background(), "  alice ", "Str0ng!pass")
	require.True(t, r.Success, r.String())
	assert.Equal(t, "alice", f.client.lastUsername)
	assert.Equal(t, int64(12), r.Data.ID)
	assert.True(t, f.svc.State().Authenticated)
}

func TestRegister_Failures(t *testing.T) {
	tests := []struct {
		name      string
		password  string
		resp      envelope.Result[api.AuthResponse]
		wantCode  envelope.Code
		wantCalls int
	}{
		{
			name:     "weak password rejected locally",
			password: "weak",
			wantCode: envelope.Validation,
		},
		{
			name:      "duplicate from server",
			password:  "Str0ng!pass",
			resp:      envelope.Fail[api.AuthResponse](envelope.UserAlreadyExists, "User already exists"),
			wantCode:  envelope.UserAlreadyExists,
			wantCalls: 1,
		},
		{
			name:      "empty failure gets default",
			password:  "Str0ng!pass",
			resp:      envelope.Result[api.AuthResponse]{},
			wantCode:  envelope.ServerError,
			wantCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.client.register = tt.resp

			r := f.svc.Register(context.Background(), "alice", tt.password)
			require.False(t, r.Success)
			assert.Equal(t, tt.wantCode, r.Code)
			assert.Equal(t, tt.wantCalls, f.client.registerCalls)
			assert.False(t, f.svc.State().Authenticated)
		})
	}
}

func TestLogout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.client.login = authOK(signed(t, "7", "bobby", time.Now().Add(time.Hour)), &api.UserDetail{ID: 7, Username: "bobby"})
	require.True(t, f.svc.Login(ctx, "bobby", "pw").Success)

	f.svc.Logout(ctx)

	assert.False(t, f.svc.State().Authenticated)
	assert.True(t, f.store.IsExpired())
	_, ok := f.persist.Load(ctx)
	assert.False(t, ok)
}

func TestWhoami(t *testing.T) {
	ctx := context.Background()

	t.Run("anonymous", func(t *testing.T) {
		f := newFixture(t)
		r := f.svc.Whoami(ctx)
		assert.Equal(t, envelope.TokenMissing, r.Code)
	})

	t.Run("server confirms", func(t *testing.T) {
		f := newFixture(t)
		f.client.login = authOK(signed(t, "7", "bobby", time.Now().Add(time.Hour)), &api.UserDetail{ID: 7, Username: "bobby"})
		f.client.me = envelope.OK(api.UserDetail{ID: 7, Username: "bobby", Role: "User"})
		require.True(t, f.svc.Login(ctx, "bobby", "pw").Success)

		r := f.svc.Whoami(ctx)
		require.True(t, r.Success)
		assert.Equal(t, "bobby", r.Data.Username)
		assert.True(t, f.svc.State().Authenticated)
	})

	t.Run("server rejects token", func(t *testing.T) {
		f := newFixture(t)
		f.client.login = authOK(signed(t, "7", "bobby", time.Now().Add(time.Hour)), &api.UserDetail{ID: 7, Username: "bobby"})
		f.client.me = envelope.Fail[api.UserDetail](envelope.TokenExpired, "Token expired")
		require.True(t, f.svc.Login(ctx, "bobby", "pw").Success)

		r := f.svc.Whoami(ctx)
		assert.Equal(t, envelope.TokenExpired, r.Code)
		assert.False(t, f.svc.State().Authenticated)
	})
}

func TestClose(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.svc.Close())
	assert.True(t, f.client.closed)
}
