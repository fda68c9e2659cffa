// Package server wires the authkeeper server together: storage, the auth
// orchestrator, token issuer, activity sink, metrics and both transports.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/authkeeper/authkeeper/internal/cryptox"
	"github.com/authkeeper/authkeeper/internal/logging"
	"github.com/authkeeper/authkeeper/internal/server/auth"
	"github.com/authkeeper/authkeeper/internal/server/config"
	"github.com/authkeeper/authkeeper/internal/server/events"
	"github.com/authkeeper/authkeeper/internal/server/httpapi"
	"github.com/authkeeper/authkeeper/internal/server/metrics"
	"github.com/authkeeper/authkeeper/internal/server/passwords"
	"github.com/authkeeper/authkeeper/internal/server/store"
	"github.com/authkeeper/authkeeper/internal/server/users"
	"github.com/authkeeper/authkeeper/internal/validation"

	gs "github.com/authkeeper/authkeeper/internal/server/grpc"
)

type App struct {
	config        *config.Config
	logger        logging.Logger
	db            *sql.DB
	sink          events.ActivitySink
	metrics       *metrics.Metrics
	issuer        *auth.Issuer
	authenticator *users.Authenticator
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(c.LogEnv, os.Stdout)

	issuer, err := auth.NewIssuer(c.Auth())
	if err != nil {
		return nil, fmt.Errorf("token issuer: %w", err)
	}

	v, err := validation.New(c.RegistrationPolicy)
	if err != nil {
		return nil, fmt.Errorf("registration policy: %w", err)
	}

	dialect, err := store.ParseDialect(c.DatabaseDriver)
	if err != nil {
		return nil, err
	}
	db, err := store.Open(ctx, dialect, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	var sink events.ActivitySink = events.NopSink{}
	if len(c.KafkaBrokers) > 0 {
		ks, err := events.NewKafkaSink(c.KafkaBrokers, c.KafkaTopic)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		sink = ks
	}

	m := metrics.New()
	st := store.NewAuthStore(store.NewSQLProvider(db, dialect), logger)
	svc := users.NewService(st, passwords.NewArgon2Hasher(cryptox.DefaultKDFParams), v, logger,
		users.WithActivitySink(sink),
		users.WithMetrics(m),
	)

	return &App{
		config:        c,
		logger:        logger,
		db:            db,
		sink:          sink,
		metrics:       m,
		issuer:        issuer,
		authenticator: users.NewAuthenticator(svc, issuer, logger),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

type runner interface {
	Run(ctx context.Context) error
}

func (app *App) start(ctx context.Context, cancelFunc context.CancelFunc, name string, r runner) {
	if err := r.Run(ctx); err != nil {
		app.logger.Error(ctx, "server stopped with error", "server", name, "error", err)
		cancelFunc()
	}
}

// Run serves HTTP and gRPC until a signal arrives, ctx is cancelled or
// either server fails.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")
	app.initSignalHandler(cancelFunc)

	httpSrv := httpapi.NewServer(app.config.HTTPAddr, app.authenticator, app.issuer, app.metrics, app.logger)
	grpcSrv := gs.NewGRPCServer(app.config.GRPCAddr, app.authenticator, app.issuer, app.logger)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		app.start(ctx, cancelFunc, "http", httpSrv)
	}()
	go func() {
		defer wg.Done()
		app.start(ctx, cancelFunc, "grpc", grpcSrv)
	}()
	wg.Wait()

	app.close(ctx)
}

func (app *App) close(ctx context.Context) {
	if err := app.sink.Close(); err != nil {
		app.logger.Warn(ctx, "close activity sink", "error", err)
	}
	if err := app.db.Close(); err != nil {
		app.logger.Warn(ctx, "close database", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
