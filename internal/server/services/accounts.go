package services

import (
	"context"
	"database/sql"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/msavelyev/authkeeper/internal/server/models"
	"github.com/msavelyev/authkeeper/internal/server/repositories/repomanager"
)

const bcryptCost = 12

const minPasswordLength = 8

// ValidationError carries the ordered, human-readable reasons an account
// could not be created.
type ValidationError struct {
	Reasons []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Reasons, "; ")
}

// AccountStore normalizes account lookups and creation for the identity
// service. Password hashing and verification live here; the rest of the
// server only ever sees the bcrypt hash.
type AccountStore struct {
	db    *sql.DB
	repos repomanager.RepositoryManager
}

// NewAccountStore constructs an AccountStore over the given database handle.
func NewAccountStore(db *sql.DB, m repomanager.RepositoryManager) *AccountStore {
	return &AccountStore{db: db, repos: m}
}

// FindByEmail returns the account registered under email, or
// common.ErrorNotFound.
func (s *AccountStore) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	return s.repos.Accounts(s.db).FindByEmail(ctx, email)
}

// FindByID returns the account with the given id, or common.ErrorNotFound.
func (s *AccountStore) FindByID(ctx context.Context, id string) (*models.Account, error) {
	return s.repos.Accounts(s.db).FindByID(ctx, id)
}

// VerifyPassword reports whether password matches the account's stored hash.
func (s *AccountStore) VerifyPassword(account *models.Account, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) == nil
}

// Create validates the credentials, hashes the password, and inserts a new
// account. Validation failures come back as *ValidationError with every
// reason listed; a duplicate email surfaces as common.ErrorAlreadyExists.
func (s *AccountStore) Create(ctx context.Context, email, password string) (*models.Account, error) {
	if reasons := validateCredentials(email, password); len(reasons) > 0 {
		return nil, &ValidationError{Reasons: reasons}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, err
	}

	account := &models.Account{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
	}
	return s.repos.Accounts(s.db).Create(ctx, account)
}

func validateCredentials(email, password string) []string {
	var reasons []string
	if _, err := mail.ParseAddress(email); err != nil {
		reasons = append(reasons, "email address is not valid")
	}
	if len(password) < minPasswordLength {
		reasons = append(reasons, "password must be at least 8 characters long")
	}
	return reasons
}
