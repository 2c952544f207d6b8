package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"io"
	"log"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophtodo/internal/client/cache"
	"github.com/dmitrijs2005/gophtodo/internal/client/client"
	"github.com/dmitrijs2005/gophtodo/internal/client/config"
	"github.com/dmitrijs2005/gophtodo/internal/client/models"
	"github.com/dmitrijs2005/gophtodo/internal/client/reminders"
	"github.com/dmitrijs2005/gophtodo/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gophtodo/internal/client/repositories/snapshot"
	"github.com/dmitrijs2005/gophtodo/internal/client/services"
	"github.com/dmitrijs2005/gophtodo/internal/common"
	"github.com/dmitrijs2005/gophtodo/internal/filex"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// todoService is the part of services.TodoService the commands use.
type todoService interface {
	Load(ctx context.Context) error
	Add(ctx context.Context, text string, due *time.Time, p common.Priority) (models.Task, error)
	Toggle(ctx context.Context, localID string) (models.Task, error)
	Edit(ctx context.Context, localID string, e models.TaskEdit) (models.Task, error)
	Delete(ctx context.Context, localID string) error
	ClearCompleted(ctx context.Context) (int, error)
	Reorder(ctx context.Context, from, to int) error
	Reset(ctx context.Context) error
}

type syncService interface {
	Sync(ctx context.Context) (int, error)
	Run(ctx context.Context, interval time.Duration, active func() bool, onErr func(error))
}

type reminderService interface {
	Run(ctx context.Context, interval time.Duration, onErr func(error))
}

type exporter interface {
	Export(ctx context.Context) (string, error)
}

type App struct {
	config      *config.Config
	db          *sql.DB
	authService services.AuthService
	todos       todoService
	tasks       *cache.Cache
	syncer      syncService
	reminders   reminderService
	exporter    exporter
	reader      *bufio.Reader
	out         io.Writer
	now         func() time.Time

	mu       sync.Mutex
	userName string
	mode     Mode
}

// NewApp opens the local cache at c.CachePath and wires the services around
// a gRPC client for c.ServerEndpointAddr.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if err := filex.EnsureParentDir(c.CachePath); err != nil {
		return nil, err
	}

	db, err := client.InitDatabase(ctx, c.CachePath)
	if err != nil {
		log.Printf("error initializing database: %s", err.Error())
		return nil, err
	}

	apiClient, err := client.NewGRPCClient(c.ServerEndpointAddr, c.RequestTimeout)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	tasks := cache.New(nil)
	snapshots := snapshot.NewSQLiteRepository(db)

	return &App{
		config:      c,
		db:          db,
		authService: services.NewAuthService(apiClient, metadata.NewStore(db)),
		todos:       services.NewTodoService(apiClient, tasks, snapshots),
		tasks:       tasks,
		syncer:      services.NewSyncer(apiClient, tasks, snapshots),
		reminders:   reminders.NewScheduler(tasks, reminders.WriterNotifier{W: os.Stdout}),
		exporter:    apiClient,
		reader:      bufio.NewReader(os.Stdin),
		out:         os.Stdout,
		now:         time.Now,
	}, nil
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		log.Printf("Switched to %s mode\n", mode)
	}
}

func (a *App) setUserName(name string) {
	a.mu.Lock()
	a.userName = name
	a.mu.Unlock()
}

func (a *App) getStatus() string {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := ""
	if a.userName != "" {
		s = a.userName + " "
	}
	if a.mode != "" {
		s = s + string(a.mode)
	}
	if s != "" {
		s = "(" + s + ")"
	}
	return s
}

// Run blocks in the REPL until the user exits or input ends.
func (a *App) Run(ctx context.Context) {
	defer func() {
		if err := a.authService.Close(ctx); err != nil {
			log.Printf("error closing connection: %v", err)
		}
		if a.db != nil {
			_ = a.db.Close()
		}
	}()
	a.Root(ctx)
}

// Root restores the cache and the stored session, starts the background
// workers and runs the REPL. Workers stop when the REPL returns.
func (a *App) Root(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	log.Println("Welcome to GophTodo CLI (type 'help' for commands)")

	if err := a.todos.Load(ctx); err != nil {
		log.Printf("Local cache not loaded: %v", err)
	}
	a.resume(ctx)

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		a.StartOnlineStatusWatcher(ctx, a.config.SyncInterval)
	}()
	go func() {
		defer wg.Done()
		a.syncer.Run(ctx, a.config.SyncInterval, a.authService.LoggedIn, a.backgroundSyncFailed)
	}()
	go func() {
		defer wg.Done()
		a.reminders.Run(ctx, a.config.ReminderInterval, func(err error) {
			log.Printf("reminder error: %v", err)
		})
	}()

	runREPL(ctx, a, a.getStatus, a.reader)
	cancel()
	wg.Wait()
}

func (a *App) backgroundSyncFailed(err error) {
	if errors.Is(err, client.ErrUnavailable) {
		a.setMode(ModeOffline)
		return
	}
	log.Printf("background %v", err)
}

// StartOnlineStatusWatcher pings the server every interval and switches the
// mode shown in the prompt.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
			err := a.authService.Ping(pingCtx)
			cancel()

			if err != nil {
				a.setMode(ModeOffline)
			} else {
				a.setMode(ModeOnline)
			}

		case <-ctx.Done():
			return
		}
	}
}
