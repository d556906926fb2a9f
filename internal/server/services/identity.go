// Package services contains the server-side business logic. This file
// implements IdentityService: registration, login, refresh-token rotation,
// and revocation.
package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/msavelyev/authkeeper/internal/common"
	"github.com/msavelyev/authkeeper/internal/dbx"
	"github.com/msavelyev/authkeeper/internal/server/auth"
	"github.com/msavelyev/authkeeper/internal/server/config"
	"github.com/msavelyev/authkeeper/internal/server/models"
	"github.com/msavelyev/authkeeper/internal/server/repositories/repomanager"
)

// refreshTokenBytes is the entropy of an opaque refresh-token secret; the
// hex-encoded bearer string is twice as long.
const refreshTokenBytes = 32

// AuthResult bundles a freshly minted access token and the opaque refresh
// token paired with it.
type AuthResult struct {
	AccessToken  string
	RefreshToken string
}

// IdentityService orchestrates the account store, token codec, and refresh
// ledger. Each ledger entry is single-use: rotating it marks the entry used
// inside the same transaction that inserts the replacement pair.
type IdentityService struct {
	db              *sql.DB
	repos           repomanager.RepositoryManager
	accounts        *AccountStore
	jwtSecret       []byte
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
}

// NewIdentityService constructs an IdentityService from the account store,
// repositories, and server config.
func NewIdentityService(db *sql.DB, m repomanager.RepositoryManager, accounts *AccountStore, cfg *config.Config) *IdentityService {
	return &IdentityService{
		db:              db,
		repos:           m,
		accounts:        accounts,
		jwtSecret:       []byte(cfg.SecretKey),
		accessTokenTTL:  cfg.AccessTokenValidityDuration,
		refreshTokenTTL: cfg.RefreshTokenValidityDuration,
	}
}

// Register creates an account for the given credentials and issues the first
// token pair. Validation failures surface as *ValidationError; a taken email
// as common.ErrAccountExists.
func (s *IdentityService) Register(ctx context.Context, email, password string) (*AuthResult, error) {
	if _, err := s.accounts.FindByEmail(ctx, email); err == nil {
		return nil, common.ErrAccountExists
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, err
	}

	account, err := s.accounts.Create(ctx, email, password)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			// lost a race with a concurrent registration
			return nil, common.ErrAccountExists
		}
		return nil, err
	}

	return s.issueTokens(ctx, s.db, account)
}

// Login verifies the credentials and issues a token pair.
func (s *IdentityService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrAccountNotFound
		}
		return nil, err
	}

	if !s.accounts.VerifyPassword(account, password) {
		return nil, common.ErrInvalidCredentials
	}

	return s.issueTokens(ctx, s.db, account)
}

// Refresh rotates a refresh token: the presented access token must be an
// authentic, already-expired token of this service, and the refresh token's
// ledger entry must still be consumable and bound to the same jti. The
// ledger mutation and the insertion of the replacement pair share one
// transaction, with the entry row-locked, so of two concurrent rotations
// exactly one wins.
//
// The access token is required to be expired already; presenting a live one
// fails with common.ErrTokenNotExpired.
func (s *IdentityService) Refresh(ctx context.Context, accessToken, refreshToken string) (*AuthResult, error) {
	claims, err := auth.ParseToken(accessToken, s.jwtSecret)
	if err != nil {
		return nil, common.ErrInvalidToken
	}
	if claims.ID == "" || claims.AccountID == "" || claims.ExpiresAt == nil {
		return nil, common.ErrInvalidToken
	}

	if claims.ExpiresAt.After(time.Now()) {
		return nil, common.ErrTokenNotExpired
	}

	var result *AuthResult
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		ledger := s.repos.RefreshTokens(tx)

		entry, err := ledger.FindByTokenForUpdate(ctx, refreshToken)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrRefreshTokenNotFound
			}
			return err
		}

		now := time.Now().UTC()
		switch {
		case now.After(entry.ExpiresAt):
			return common.ErrRefreshTokenExpired
		case entry.Invalidated:
			return common.ErrRefreshTokenInvalidated
		case entry.Used:
			return common.ErrRefreshTokenUsed
		case entry.JwtID != claims.ID:
			return common.ErrTokenMismatch
		}

		// consume before minting, so a racing duplicate loses here
		if err := ledger.MarkUsed(ctx, entry.Token); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrRefreshTokenNotFound
			}
			return err
		}

		account, err := s.accounts.FindByID(ctx, claims.AccountID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrAccountNotFound
			}
			return err
		}

		result, err = s.issueTokens(ctx, tx, account)
		return err
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// RevokeAll invalidates every live refresh token of the account behind the
// presented access token. Unlike Refresh, this path requires a token that is
// still valid, expiry included.
func (s *IdentityService) RevokeAll(ctx context.Context, accessToken string) error {
	claims, err := auth.ParseToken(accessToken, s.jwtSecret)
	if err != nil {
		return common.ErrInvalidToken
	}
	if claims.AccountID == "" || claims.ExpiresAt == nil || time.Now().After(claims.ExpiresAt.Time) {
		return common.ErrInvalidToken
	}

	return s.repos.RefreshTokens(s.db).InvalidateByAccount(ctx, claims.AccountID)
}

// issueTokens mints an access token and a paired ledger entry. The entry's
// jwt_id binds it to the access token's jti; both expire on their own
// clocks. Passing a transactional DBTX makes the insert join the caller's
// transaction.
func (s *IdentityService) issueTokens(ctx context.Context, db dbx.DBTX, account *models.Account) (*AuthResult, error) {
	accessToken, jti, err := auth.IssueToken(account.Email, account.ID, s.jwtSecret, s.accessTokenTTL)
	if err != nil {
		return nil, err
	}

	refreshToken, err := common.MakeRandHexString(refreshTokenBytes)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	entry := &models.RefreshToken{
		Token:     refreshToken,
		JwtID:     jti,
		AccountID: account.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.refreshTokenTTL),
	}
	if err := s.repos.RefreshTokens(db).Insert(ctx, entry); err != nil {
		return nil, err
	}

	return &AuthResult{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}
