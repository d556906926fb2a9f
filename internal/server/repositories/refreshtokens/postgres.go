package refreshtokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/msavelyev/authkeeper/internal/common"
	"github.com/msavelyev/authkeeper/internal/dbx"
	"github.com/msavelyev/authkeeper/internal/server/models"
)

const uniqueViolation = "23505"

// PostgresRepository implements the ledger over dbx.DBTX (satisfied by
// *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Insert appends a new ledger entry.
func (r *PostgresRepository) Insert(ctx context.Context, entry *models.RefreshToken) error {
	query := `
		INSERT INTO refresh_tokens (token, jwt_id, account_id, created_at, expires_at, used, invalidated)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		entry.Token, entry.JwtID, entry.AccountID,
		entry.CreatedAt, entry.ExpiresAt, entry.Used, entry.Invalidated)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return common.ErrDuplicateToken
		}
		return fmt.Errorf("%w: %v", common.ErrStoreUnavailable, err)
	}
	return nil
}

// FindByToken returns the ledger entry for the given bearer string.
func (r *PostgresRepository) FindByToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	query := `
		SELECT token, jwt_id, account_id, created_at, expires_at, used, invalidated
		FROM refresh_tokens
		WHERE token = $1
	`
	return r.scanEntry(r.db.QueryRowContext(ctx, query, token))
}

// FindByTokenForUpdate locks the row for the rest of the transaction.
func (r *PostgresRepository) FindByTokenForUpdate(ctx context.Context, token string) (*models.RefreshToken, error) {
	query := `
		SELECT token, jwt_id, account_id, created_at, expires_at, used, invalidated
		FROM refresh_tokens
		WHERE token = $1
		FOR UPDATE
	`
	return r.scanEntry(r.db.QueryRowContext(ctx, query, token))
}

// MarkUsed consumes the entry. The update is conditional on used being
// false, so of two racing rotations exactly one observes rows=1.
func (r *PostgresRepository) MarkUsed(ctx context.Context, token string) error {
	query := `
		UPDATE refresh_tokens
		SET used = TRUE
		WHERE token = $1 AND NOT used
	`
	res, err := r.db.ExecContext(ctx, query, token)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrStoreUnavailable, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrStoreUnavailable, err)
	}
	if rows == 1 {
		return nil
	}

	// distinguish "already used" from "no such entry"
	var exists bool
	existsQuery := `SELECT EXISTS (SELECT 1 FROM refresh_tokens WHERE token = $1)`
	if err := r.db.QueryRowContext(ctx, existsQuery, token).Scan(&exists); err != nil {
		return fmt.Errorf("%w: %v", common.ErrStoreUnavailable, err)
	}
	if exists {
		return common.ErrRefreshTokenUsed
	}
	return common.ErrorNotFound
}

// InvalidateByAccount revokes every live entry of the account. Revoking an
// account with no live entries is not an error.
func (r *PostgresRepository) InvalidateByAccount(ctx context.Context, accountID string) error {
	query := `
		UPDATE refresh_tokens
		SET invalidated = TRUE
		WHERE account_id = $1 AND NOT invalidated
	`
	if _, err := r.db.ExecContext(ctx, query, accountID); err != nil {
		return fmt.Errorf("%w: %v", common.ErrStoreUnavailable, err)
	}
	return nil
}

func (r *PostgresRepository) scanEntry(row *sql.Row) (*models.RefreshToken, error) {
	entry := &models.RefreshToken{}
	err := row.Scan(&entry.Token, &entry.JwtID, &entry.AccountID,
		&entry.CreatedAt, &entry.ExpiresAt, &entry.Used, &entry.Invalidated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("%w: %v", common.ErrStoreUnavailable, err)
	}
	return entry, nil
}
