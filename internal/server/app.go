// Package server wires configuration, storage, mail delivery and metrics into
// the credkeeper gRPC server and runs it until a signal arrives.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/credkeeper/internal/logging"
	"github.com/dmitrijs2005/credkeeper/internal/server/auth"
	"github.com/dmitrijs2005/credkeeper/internal/server/config"
	"github.com/dmitrijs2005/credkeeper/internal/server/mailer"
	"github.com/dmitrijs2005/credkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/credkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/credkeeper/internal/server/services"
	_ "github.com/jackc/pgx/v5/stdlib"

	gs "github.com/dmitrijs2005/credkeeper/internal/server/grpc"
)

var openDB = sql.Open

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	metrics *metrics.Metrics
	auth    *services.AuthService
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)
	return newApp(ctx, c, logger)
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	app := &App{config: c, logger: logger, metrics: metrics.New()}

	rm, err := app.initStorage(ctx)
	if err != nil {
		return nil, err
	}

	m, err := app.initMailer(ctx)
	if err != nil {
		app.Close()
		return nil, err
	}

	app.auth = services.NewAuthService(app.db, rm, c, auth.NewBcryptHasher(c.BcryptCost), m, app.metrics, logger)
	return app, nil
}

func (app *App) initStorage(ctx context.Context) (repomanager.RepositoryManager, error) {
	switch app.config.StorageMode {
	case config.StorageModeMemory:
		app.logger.Warn(ctx, "using in-memory storage, data is lost on restart")
		return repomanager.NewMemoryRepositoryManager(), nil
	default:
		db, err := openDB("pgx", app.config.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}

		rm := repomanager.NewPostgresRepositoryManager()
		if err := rm.RunMigrations(ctx, db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("db init error: %w", err)
		}

		app.db = db
		return rm, nil
	}
}

func (app *App) initMailer(ctx context.Context) (services.Mailer, error) {
	switch app.config.Mailer {
	case config.MailerS3:
		m, err := mailer.NewS3OutboxMailer(ctx, app.config)
		if err != nil {
			return nil, fmt.Errorf("mailer init error: %w", err)
		}
		return m, nil
	default:
		return mailer.NewLogMailer(app.logger), nil
	}
}

// Close releases the database handle, if any.
func (app *App) Close() {
	if app.db != nil {
		_ = app.db.Close()
	}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.auth, app.metrics.UnaryServerInterceptor())

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startMetricsServer(ctx context.Context, cancelFunc context.CancelFunc) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", app.metrics.Handler())
	srv := &http.Server{Addr: app.config.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	app.logger.Info(ctx, "Starting metrics server", "address", app.config.MetricsAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run blocks until ctx is cancelled, a signal arrives or a listener fails.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()
	defer app.Close()

	app.logger.Info(ctx, "Starting app...", "storage", app.config.StorageMode, "mailer", app.config.Mailer)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	if app.config.MetricsAddr != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startMetricsServer(ctx, cancelFunc)
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.auth.RunJanitor(ctx, app.config.CleanupInterval)
	}()

	wg.Wait()
}
