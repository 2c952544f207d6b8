// Package metadata keeps the client's small persistent values in the
// metadata table of the cache database: the stored session and the time of
// the last reconcile.
package metadata

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/gophtodo/internal/dbx"
)

// Keys of the metadata table.
const (
	KeyEmail        = "email"
	KeyRefreshToken = "refresh_token"
	KeyLastSync     = "last_sync"
)

// Session is the stored login. Either field may be empty.
type Session struct {
	Email        string
	RefreshToken string
}

// Valid reports whether the session can be resumed.
func (s Session) Valid() bool {
	return s.Email != "" && s.RefreshToken != ""
}

// Store reads and writes typed metadata. It accepts a transaction so a
// snapshot save records LastSync atomically with the tasks.
type Store struct {
	db dbx.DBTX
}

func NewStore(db dbx.DBTX) *Store {
	return &Store{db: db}
}

// Session loads the stored login. Absent keys yield empty fields.
func (s *Store) Session(ctx context.Context) (Session, error) {
	email, _, err := s.get(ctx, KeyEmail)
	if err != nil {
		return Session{}, err
	}
	token, _, err := s.get(ctx, KeyRefreshToken)
	if err != nil {
		return Session{}, err
	}
	return Session{Email: email, RefreshToken: token}, nil
}

// SetEmail records the account of the session. It survives logout so a
// later login as someone else can be detected.
func (s *Store) SetEmail(ctx context.Context, email string) error {
	return s.putOrDelete(ctx, KeyEmail, email)
}

// SetRefreshToken stores the current refresh token. An empty token forgets it.
func (s *Store) SetRefreshToken(ctx context.Context, token string) error {
	return s.putOrDelete(ctx, KeyRefreshToken, token)
}

// LastSync returns the stored reconcile time, or nil if none was stored.
func (s *Store) LastSync(ctx context.Context) (*time.Time, error) {
	raw, ok, err := s.get(ctx, KeyLastSync)
	if err != nil || !ok {
		return nil, err
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", KeyLastSync, err)
	}
	at := time.UnixMilli(ms).UTC()
	return &at, nil
}

// SetLastSync stores at as unix milliseconds. A nil at removes the value.
func (s *Store) SetLastSync(ctx context.Context, at *time.Time) error {
	if at == nil {
		return s.del(ctx, KeyLastSync)
	}
	return s.put(ctx, KeyLastSync, strconv.FormatInt(at.UnixMilli(), 10))
}

func (s *Store) get(ctx context.Context, key string) (string, bool, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get metadata[%s]: %w", key, err)
	}
	return string(value), true, nil
}

func (s *Store) put(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, []byte(value))
	if err != nil {
		return fmt.Errorf("failed to set metadata[%s]: %w", key, err)
	}
	return nil
}

func (s *Store) del(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM metadata WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete metadata[%s]: %w", key, err)
	}
	return nil
}

func (s *Store) putOrDelete(ctx context.Context, key, value string) error {
	if value == "" {
		return s.del(ctx, key)
	}
	return s.put(ctx, key, value)
}
