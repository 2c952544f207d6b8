package client

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophtodo/internal/client/models"
)

// Client is the CLI's view of the GophTodo backend. Tasks passed in and out
// carry server ids only; local ids and pending flags are ignored.
type Client interface {
	Close() error

	Register(ctx context.Context, email, password, name string) error
	Login(ctx context.Context, email, password string) error
	// Resume restores a session from a stored refresh token.
	Resume(ctx context.Context, refreshToken string) error
	// Logout forgets the session tokens.
	Logout()
	// OnRefreshToken registers fn to be called whenever the refresh token
	// changes, including on login and rotation. Logout reports "".
	OnRefreshToken(fn func(refreshToken string))
	Ping(ctx context.Context) error

	ListTodos(ctx context.Context) ([]models.Task, error)
	CreateTodo(ctx context.Context, t models.Task) (models.Task, error)
	UpdateTodo(ctx context.Context, id string, e models.TaskEdit) (models.Task, error)
	DeleteTodo(ctx context.Context, id string) error
	ClearCompleted(ctx context.Context) (int64, error)
	Sync(ctx context.Context, lastSync *time.Time, tasks []models.Task) ([]models.Task, error)
	Export(ctx context.Context) (string, error)
}
