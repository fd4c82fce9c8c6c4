// Package server assembles the development backend: storage (Postgres or
// in-memory), the image store (S3 or in-memory), the interpretation workers
// and the HTTP API, and runs them until a shutdown signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/dreamteller/internal/logging"
	"github.com/dmitrijs2005/dreamteller/internal/server/config"
	"github.com/dmitrijs2005/dreamteller/internal/server/httpapi"
	"github.com/dmitrijs2005/dreamteller/internal/server/images"
	"github.com/dmitrijs2005/dreamteller/internal/server/interpret"
	"github.com/dmitrijs2005/dreamteller/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/dreamteller/internal/server/services"
	"golang.org/x/sync/errgroup"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	pool   *interpret.Pool
	server *httpapi.HTTPServer
}

// sqlOpen is a seam for tests.
var sqlOpen = sql.Open

func openStorage(ctx context.Context, cfg *config.Config) (*sql.DB, repomanager.RepositoryManager, error) {
	if cfg.DatabaseDSN == "" {
		return nil, repomanager.NewMemoryRepositoryManager(), nil
	}

	db, err := sqlOpen("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("db open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("db ping: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("migrations: %w", err)
	}
	return db, rm, nil
}

func openImageStore(ctx context.Context, cfg *config.Config) (images.Store, error) {
	if cfg.S3BaseEndpoint == "" {
		return images.NewMemoryStore(), nil
	}
	return images.NewS3Store(ctx, cfg)
}

func NewApp(ctx context.Context, cfg *config.Config, logger logging.Logger) (*App, error) {
	db, rm, err := openStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := openImageStore(ctx, cfg)
	if err != nil {
		if db != nil {
			_ = db.Close()
		}
		return nil, fmt.Errorf("image store: %w", err)
	}

	// The in-memory manager ignores the handle, so a nil db is fine here.
	pool := interpret.NewPool(rm.Dreams(db), rm.Notifications(db), store, services.NewLogNotifier(logger),
		cfg.InterpretWorkers, cfg.InterpretDelay, logger)

	us := services.NewUserService(db, rm, services.NewLogMailer(logger), cfg, logger)
	ds := services.NewDreamService(db, rm, store, pool, logger)
	ns := services.NewNotificationService(db, rm)

	logger.Info(ctx, "storage ready",
		"postgres", db != nil,
		"s3", cfg.S3BaseEndpoint != "",
	)

	return &App{
		config: cfg,
		logger: logger,
		db:     db,
		pool:   pool,
		server: httpapi.NewHTTPServer(cfg.EndpointAddr, logger, us, ds, ns, cfg.SecretKey),
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

// Run blocks until a shutdown signal arrives, ctx is cancelled, or the HTTP
// server fails. The worker pool and the server stop together.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")
	app.initSignalHandler(cancelFunc)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return app.pool.Run(ctx)
	})
	g.Go(func() error {
		if err := app.server.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			return err
		}
		return nil
	})

	err := g.Wait()
	app.logger.Info(context.Background(), "App stopped")
	return err
}

func (app *App) Close() error {
	if app.db == nil {
		return nil
	}
	return app.db.Close()
}
