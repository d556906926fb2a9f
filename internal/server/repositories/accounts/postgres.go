package accounts

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

// PostgresRepository implements Repository over dbx.DBTX (satisfied by
// *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new account row.
func (r *PostgresRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	query := `
		INSERT INTO accounts (id, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		account.ID, account.Email, account.PasswordHash).Scan(&account.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("%w: %v", common.ErrStoreUnavailable, err)
	}
	return account, nil
}

// FindByEmail returns the account owning the given email address.
func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	query := `
		SELECT id, email, password_hash, created_at
		FROM accounts
		WHERE email = $1
	`
	return r.scanAccount(r.db.QueryRowContext(ctx, query, email))
}

// FindByID returns the account with the given id.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*models.Account, error) {
	query := `
		SELECT id, email, password_hash, created_at
		FROM accounts
		WHERE id = $1
	`
	return r.scanAccount(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) scanAccount(row *sql.Row) (*models.Account, error) {
	account := &models.Account{}
	err := row.Scan(&account.ID, &account.Email, &account.PasswordHash, &account.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("%w: %v", common.ErrStoreUnavailable, err)
	}
	return account, nil
}
