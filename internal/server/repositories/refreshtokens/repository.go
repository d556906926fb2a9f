// Package refreshtokens declares the refresh-token ledger contract: the
// persistent record of issued refresh tokens and their consumption state.
package refreshtokens

import (
	"context"

	"github.com/msavelyev/authkeeper/internal/server/models"
)

// Repository is the ledger access contract consumed by the identity service.
// Implementations must keep Used and Invalidated monotonic.
type Repository interface {
	// Insert appends a new ledger entry. Returns common.ErrDuplicateToken when
	// the bearer string already exists.
	Insert(ctx context.Context, entry *models.RefreshToken) error

	// FindByToken is a point lookup by bearer string. Returns
	// common.ErrorNotFound when absent.
	FindByToken(ctx context.Context, token string) (*models.RefreshToken, error)

	// FindByTokenForUpdate behaves like FindByToken but takes a row lock, so
	// concurrent rotations of the same token serialize. Only meaningful when
	// the repository is bound to a transaction.
	FindByTokenForUpdate(ctx context.Context, token string) (*models.RefreshToken, error)

	// MarkUsed flips the entry to used. Returns common.ErrRefreshTokenUsed if
	// the entry was already consumed and common.ErrorNotFound if it does not
	// exist, so a lost rotation race is observable by the caller.
	MarkUsed(ctx context.Context, token string) error

	// InvalidateByAccount revokes every live entry of the account.
	InvalidateByAccount(ctx context.Context, accountID string) error
}
