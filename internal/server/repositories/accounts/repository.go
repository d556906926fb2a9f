// Package accounts declares the persistence contract behind the account
// store. Only lookups and creation are needed by the authentication flow.
package accounts

import (
	"context"

	"github.com/msavelyev/authkeeper/internal/server/models"
)

// Repository defines account persistence operations.
type Repository interface {
	// Create inserts a new account. Returns common.ErrorAlreadyExists when
	// the email is already taken.
	Create(ctx context.Context, account *models.Account) (*models.Account, error)

	// FindByEmail returns the account with the given email or
	// common.ErrorNotFound.
	FindByEmail(ctx context.Context, email string) (*models.Account, error)

	// FindByID returns the account with the given id or common.ErrorNotFound.
	FindByID(ctx context.Context, id string) (*models.Account, error)
}
