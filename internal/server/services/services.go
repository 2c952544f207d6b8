// Package services contains the server-side business logic: task CRUD, the
// sync reconciliation engine, identity and snapshot export.
//
// Repository errors never cross this boundary unchanged. Callers see the
// sentinels from package common: ErrorNotFound and ErrorValidation for
// request problems, ErrorStoreFailure when the store misbehaved.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophtodo/internal/common"
	"github.com/dmitrijs2005/gophtodo/internal/logging"
	"github.com/dmitrijs2005/gophtodo/internal/server/events"
	"github.com/dmitrijs2005/gophtodo/internal/server/models"
)

// Clock returns the server time. Services stamp createdAt/updatedAt with it.
type Clock func() time.Time

// storeError maps a repository error to the service taxonomy, logging the
// original when it is hidden behind ErrorStoreFailure.
func storeError(ctx context.Context, l logging.Logger, op string, err error) error {
	if errors.Is(err, common.ErrorNotFound) {
		return common.ErrorNotFound
	}
	l.Error(ctx, "store operation failed", "op", op, "error", err)
	return common.ErrorStoreFailure
}

// normalizeFields trims text and validates every mutable field.
func normalizeFields(f models.TaskFields) (models.TaskFields, error) {
	f.Text = strings.TrimSpace(f.Text)
	if f.Text == "" {
		return f, errors.Join(common.ErrorValidation, errors.New("text is required"))
	}
	p, err := common.ParsePriority(string(f.Priority))
	if err != nil {
		return f, err
	}
	f.Priority = p
	return f, nil
}

// publish hands e to the dispatcher. Failures are logged and dropped.
func publish(ctx context.Context, p events.Publisher, l logging.Logger, e events.Event) {
	if err := p.Publish(ctx, e); err != nil {
		l.Warn(ctx, "event dispatch failed", "type", e.Type, "error", err)
	}
}
