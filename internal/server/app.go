// Package server wires the repoboard server together: database and
// migrations, GitHub and S3 collaborators, services, the gRPC endpoint and
// the Prometheus metrics listener, and runs them until shutdown.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrijs2005/repoboard/internal/cryptox"
	"github.com/dmitrijs2005/repoboard/internal/logging"
	"github.com/dmitrijs2005/repoboard/internal/server/config"
	"github.com/dmitrijs2005/repoboard/internal/server/events"
	"github.com/dmitrijs2005/repoboard/internal/server/github"
	"github.com/dmitrijs2005/repoboard/internal/server/metrics"
	"github.com/dmitrijs2005/repoboard/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/repoboard/internal/server/services"
	"github.com/dmitrijs2005/repoboard/internal/server/storage"
	"github.com/dmitrijs2005/repoboard/internal/widgets"
	"golang.org/x/sync/errgroup"

	gs "github.com/dmitrijs2005/repoboard/internal/server/grpc"
)

// tokenPurgeInterval is how often expired refresh tokens are removed.
const tokenPurgeInterval = time.Hour

// openDB is a seam for tests.
var openDB = func(dsn string) (*sql.DB, error) {
	return sql.Open("pgx", dsn)
}

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	grpc    *gs.GRPCServer
	metrics *metrics.Metrics
	users   *services.UserService
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(logging.Options{Level: c.LogLevel, Format: c.LogFormat, File: c.LogFile})

	db, err := openDB(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	app, err := newApp(c, logger, db, rm)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return app, nil
}

func newApp(c *config.Config, logger logging.Logger, db *sql.DB, rm repomanager.RepositoryManager) (*App, error) {
	gh, err := github.NewClient(github.Options{
		BaseURL:   c.GitHubAPIURL,
		Token:     c.GitHubToken,
		CacheSize: c.GitHubCacheSize,
		CacheTTL:  c.GitHubCacheTTL,
		Logger:    logger,
	})
	if err != nil {
		return nil, err
	}

	sealer, err := cryptox.NewSealer(c.SecretKey)
	if err != nil {
		return nil, fmt.Errorf("token sealer: %w", err)
	}

	st := storage.NewS3Storage(storage.Config{
		Region:       c.S3Region,
		User:         c.S3RootUser,
		Password:     c.S3RootPassword,
		BaseEndpoint: c.S3BaseEndpoint,
		Bucket:       c.S3Bucket,
	})

	hub := events.NewHub(events.DefaultBuffer)
	hooks := services.NewHookRegistry(logger)

	access := services.NewAccessService(db, rm, gh, sealer, logger)
	users := services.NewUserService(db, rm, gh, sealer, c, logger)
	boards := services.NewBoardService(db, rm, access, hub, logger)
	ws := services.NewWidgetService(db, rm, widgets.Builtin(), access, hooks, hub, logger)
	polls := services.NewPollService(db, rm, hub, logger)
	guestbook := services.NewGuestbookService(db, rm, c.GuestbookCommentLimit, hub, logger)
	maps := services.NewMapService(db, rm, hub, logger)
	images := services.NewImageService(db, rm, st, access, c.MaxImageSize, c.ImageURLTTL, hub, logger)

	hooks.Register(widgets.TypePoll, "votes", polls.DeleteVotesHook)
	hooks.Register(widgets.TypeGuestbook, "comments", guestbook.DeleteCommentsHook)
	hooks.Register(widgets.TypeMap, "pins", maps.DeletePinsHook)
	hooks.Register(widgets.TypeImage, "image", images.DeleteImageHook)

	m := metrics.New()
	svc := gs.Services{
		Users:     users,
		Access:    access,
		Boards:    boards,
		Widgets:   ws,
		Polls:     polls,
		Guestbook: guestbook,
		Maps:      maps,
		Images:    images,
		Stars:     services.NewStarsService(gh),
	}

	return &App{
		config:  c,
		logger:  logger,
		db:      db,
		grpc:    gs.NewGRPCServer(c.EndpointAddrGRPC, logger, svc, hub, m, c.SecretKey),
		metrics: m,
		users:   users,
	}, nil
}

// Run serves until ctx is done, SIGINT/SIGTERM/SIGQUIT arrives or one of the
// listeners fails, then closes the database.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	app.logger.Info(ctx, "Starting app...")

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return app.grpc.Run(ctx)
	})
	g.Go(func() error {
		return app.runMetrics(ctx)
	})
	g.Go(func() error {
		app.purgeTokens(ctx, tokenPurgeInterval)
		return nil
	})

	err := g.Wait()
	if cerr := app.db.Close(); cerr != nil {
		app.logger.Error(context.Background(), "db close", "error", cerr)
	}
	app.logger.Info(context.Background(), "App stopped")
	return err
}

func (app *App) runMetrics(ctx context.Context) error {
	if app.config.MetricsAddr == "" {
		return nil
	}

	srv := &http.Server{
		Addr:              app.config.MetricsAddr,
		Handler:           app.metricsMux(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	app.logger.Info(ctx, "Starting metrics server", "address", app.config.MetricsAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (app *App) metricsMux() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", app.metrics.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

func (app *App) purgeTokens(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := app.users.PurgeExpiredTokens(ctx)
			if err != nil {
				app.logger.Error(ctx, "purge expired tokens", "error", err)
				continue
			}
			if n > 0 {
				app.logger.Info(ctx, "Purged expired refresh tokens", "count", n)
			}
		}
	}
}
