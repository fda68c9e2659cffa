package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/authkeeper/authkeeper/internal/api"
	"github.com/authkeeper/authkeeper/internal/client/client"
	"github.com/authkeeper/authkeeper/internal/client/config"
	"github.com/authkeeper/authkeeper/internal/client/persistence"
	"github.com/authkeeper/authkeeper/internal/client/repositories/metadata"
	"github.com/authkeeper/authkeeper/internal/client/services"
	"github.com/authkeeper/authkeeper/internal/client/session"
	"github.com/authkeeper/authkeeper/internal/client/tokenstore"
	"github.com/authkeeper/authkeeper/internal/envelope"
	"github.com/authkeeper/authkeeper/internal/logging"
	"github.com/authkeeper/authkeeper/internal/validation"
)

// authService is the slice of services.AuthService the CLI drives.
type authService interface {
	Login(ctx context.Context, username, password string) envelope.Result[api.UserDetail]
	Register(ctx context.Context, username, password string) envelope.Result[api.UserDetail]
	Logout(ctx context.Context)
	Whoami(ctx context.Context) envelope.Result[api.UserDetail]
	State() session.State
	Close() error
}

// sessionSource restores the persisted session and reports transitions.
type sessionSource interface {
	RestoreOnce(ctx context.Context)
	Subscribe(fn func(session.State)) (unsubscribe func())
}

type App struct {
	config      *config.Config
	authService authService
	session     sessionSource
	db          *sql.DB
	logger      logging.Logger
	reader      *bufio.Reader
	out         io.Writer
}

// NewApp opens the local state database and wires the transport selected
// by c.Transport behind the auth service.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(c.LogEnv, os.Stderr)

	db, err := client.InitDatabase(ctx, c.StateDSN)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	store := tokenstore.New()
	p := persistence.NewMetadataPersistence(metadata.NewSQLiteRepository(db), logger)
	machine := session.New(store, p, session.NewUserSession(), logger)

	apiClient, err := newAPIClient(c, store.Token, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	svc := services.NewAuthService(apiClient, validation.Default(), store, machine, logger)

	a := &App{
		config:      c,
		authService: svc,
		session:     machine,
		db:          db,
		logger:      logger.With("module", "cli"),
		reader:      bufio.NewReader(os.Stdin),
		out:         os.Stdout,
	}
	machine.Subscribe(a.onSessionChange)
	return a, nil
}

func newAPIClient(c *config.Config, token client.TokenSource, l logging.Logger) (client.Client, error) {
	switch c.Transport {
	case config.TransportGRPC:
		return client.NewGRPCClient(c.GRPCAddr, c.RequestTimeout, token, l)
	case config.TransportHTTP:
		return client.NewHTTPClient(c.ServerURL, c.RequestTimeout, token, l), nil
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownTransport, c.Transport)
	}
}

func (a *App) onSessionChange(st session.State) {
	a.logger.Debug(context.Background(), "session changed", "authenticated", st.Authenticated, "username", st.User.Username)
}

// Run restores any persisted session and blocks in the REPL until the user
// exits or stdin closes.
func (a *App) Run(ctx context.Context) {
	defer a.close(ctx)

	a.session.RestoreOnce(ctx)
	a.Root(ctx)
}

func (a *App) close(ctx context.Context) {
	if err := a.authService.Close(); err != nil {
		a.logger.Warn(ctx, "close client", "error", err)
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn(ctx, "close state db", "error", err)
		}
	}
}

func (a *App) isLoggedIn() bool {
	return a.authService.State().Authenticated
}
