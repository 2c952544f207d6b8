// Package services contains application services for the GophTodo client.
// This file defines the authentication service: register, login, session
// resume from a stored refresh token, logout and a liveness check.
package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync/atomic"

	"github.com/dmitrijs2005/gophtodo/internal/client/client"
	"github.com/dmitrijs2005/gophtodo/internal/client/repositories/metadata"
)

// SessionStore persists the login between runs. *metadata.Store
// satisfies it.
type SessionStore interface {
	Session(ctx context.Context) (metadata.Session, error)
	SetEmail(ctx context.Context, email string) error
	SetRefreshToken(ctx context.Context, token string) error
}

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Login: authenticate against the server and persist the session. It
//     reports whether a different account was stored before, in which case
//     the caller should drop the local task cache.
//   - Resume: continue the stored session without a password.
//   - Logout: forget the session locally.
//   - LoggedIn: whether a session is active.
//
// All methods must honor context cancellation/timeouts.
type AuthService interface {
	Register(ctx context.Context, email, password, name string) error
	Login(ctx context.Context, email, password string) (switched bool, err error)
	Resume(ctx context.Context) (email string, err error)
	Logout(ctx context.Context) error
	LoggedIn() bool
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// authService is the concrete AuthService backed by a remote Client and the
// metadata table of the cache database.
type authService struct {
	client   client.Client
	store    SessionStore
	loggedIn atomic.Bool
}

// NewAuthService constructs an AuthService and subscribes to refresh token
// rotation so the stored token stays current.
func NewAuthService(c client.Client, store SessionStore) AuthService {
	a := &authService{client: c, store: store}
	c.OnRefreshToken(a.storeRefreshToken)
	return a
}

func (a *authService) storeRefreshToken(token string) {
	if err := a.store.SetRefreshToken(context.Background(), token); err != nil {
		log.Printf("failed to store refresh token: %v", err)
	}
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Register creates a new account on the server. It does not log in.
func (a *authService) Register(ctx context.Context, email, password, name string) error {
	return a.client.Register(ctx, normalizeEmail(email), password, strings.TrimSpace(name))
}

// Login authenticates against the server and saves the email. The refresh
// token is stored through the rotation callback.
func (a *authService) Login(ctx context.Context, email, password string) (bool, error) {
	email = normalizeEmail(email)
	if err := a.client.Login(ctx, email, password); err != nil {
		return false, fmt.Errorf("login error: %w", err)
	}
	a.loggedIn.Store(true)

	prev, err := a.store.Session(ctx)
	if err != nil {
		return false, fmt.Errorf("session saving error: %w", err)
	}
	if err := a.store.SetEmail(ctx, email); err != nil {
		return false, fmt.Errorf("session saving error: %w", err)
	}
	return prev.Email != "" && prev.Email != email, nil
}

// Resume exchanges the stored refresh token for a new token pair. Without a
// stored session it returns client.ErrLocalDataNotAvailable. A rejected
// token clears the stored token and returns client.ErrUnauthorized.
func (a *authService) Resume(ctx context.Context) (string, error) {
	sess, err := a.store.Session(ctx)
	if err != nil {
		return "", err
	}
	if !sess.Valid() {
		return "", client.ErrLocalDataNotAvailable
	}

	if err := a.client.Resume(ctx, sess.RefreshToken); err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			_ = a.store.SetRefreshToken(ctx, "")
		}
		return "", err
	}
	a.loggedIn.Store(true)
	return sess.Email, nil
}

// Logout drops the tokens and the stored session. The email is kept so a
// later login as someone else can be detected.
func (a *authService) Logout(ctx context.Context) error {
	a.loggedIn.Store(false)
	a.client.Logout()
	return a.store.SetRefreshToken(ctx, "")
}

func (a *authService) LoggedIn() bool {
	return a.loggedIn.Load()
}

// Ping proxies a liveness check to the underlying client.
func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

// Close releases resources held by the underlying client.
func (a *authService) Close(ctx context.Context) error {
	return a.client.Close()
}
