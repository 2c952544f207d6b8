// Package server wires the GophTodo server: it opens PostgreSQL, runs the
// migrations, connects the optional Redis cache and Kafka dispatcher, and
// runs the HTTP and gRPC endpoints until a shutdown signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrijs2005/gophtodo/internal/logging"
	"github.com/dmitrijs2005/gophtodo/internal/server/cache"
	"github.com/dmitrijs2005/gophtodo/internal/server/config"
	"github.com/dmitrijs2005/gophtodo/internal/server/events"
	gs "github.com/dmitrijs2005/gophtodo/internal/server/grpc"
	"github.com/dmitrijs2005/gophtodo/internal/server/httpapi"
	"github.com/dmitrijs2005/gophtodo/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophtodo/internal/server/services"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

// tokenPurgeInterval is how often expired refresh tokens are removed.
const tokenPurgeInterval = time.Hour

type App struct {
	config        *config.Config
	logger        logging.Logger
	db            *sql.DB
	redis         *redis.Client
	events        events.Publisher
	userService   *services.UserService
	taskService   *services.TaskService
	syncService   *services.SyncService
	exportService *services.ExportService
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, slog.LevelInfo)

	db, err := repomanager.OpenPostgres(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db migration error: %w", err)
	}

	app := &App{config: c, logger: logger, db: db}

	var listCache cache.TaskListCache = cache.NopCache{}
	if c.RedisAddr != "" {
		app.redis = redis.NewClient(&redis.Options{Addr: c.RedisAddr})
		if err := app.redis.Ping(ctx).Err(); err != nil {
			logger.Warn(ctx, "redis unavailable, list cache disabled", "addr", c.RedisAddr, "error", err)
			_ = app.redis.Close()
			app.redis = nil
		} else {
			listCache = cache.NewRedisTaskListCache(app.redis, c.ListCacheTTL)
		}
	}

	app.events = events.New(c.KafkaBrokers, c.KafkaTopic)

	app.userService = services.NewUserService(db, rm, logger, c)
	guard := cache.NewGuard(listCache)
	app.taskService = services.NewTaskService(db, rm, guard, app.events, logger)
	app.syncService = services.NewSyncService(db, rm, guard, app.events, logger, c.StalenessWindow)
	app.exportService = services.NewExportService(db, rm, app.events, logger, c)

	return app, nil
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

// purgeTokens removes expired refresh tokens until ctx is done.
func (app *App) purgeTokens(ctx context.Context) error {
	ticker := time.NewTicker(tokenPurgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			n, err := app.userService.PurgeExpiredTokens(ctx)
			if err != nil {
				app.logger.Warn(ctx, "refresh token purge failed", "error", err)
				continue
			}
			app.logger.Debug(ctx, "refresh tokens purged", "count", n)
		}
	}
}

// Run blocks until a signal arrives or one of the endpoints fails.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	grpcServer := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger,
		app.userService, app.taskService, app.syncService, app.exportService)
	httpServer := httpapi.NewHTTPServer(app.config.EndpointAddrHTTP, app.logger,
		app.userService, app.taskService, app.syncService, app.exportService)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return grpcServer.Run(ctx) })
	g.Go(func() error { return httpServer.Run(ctx) })
	g.Go(func() error { return app.purgeTokens(ctx) })

	err := g.Wait()
	app.close(context.Background())
	return err
}

func (app *App) close(ctx context.Context) {
	if err := app.events.Close(); err != nil {
		app.logger.Warn(ctx, "event publisher close failed", "error", err)
	}
	if app.redis != nil {
		_ = app.redis.Close()
	}
	if err := app.db.Close(); err != nil {
		app.logger.Warn(ctx, "db close failed", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
