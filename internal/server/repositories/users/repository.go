// Package users stores accounts for the identity provider.
package users

import (
	"context"

	"github.com/dmitrijs2005/gophtodo/internal/server/models"
)

type Repository interface {
	// Create returns common.ErrorAlreadyExists when the email is taken.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}
