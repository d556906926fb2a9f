// Package common defines shared sentinel errors used across authkeeper
// layers. Callers should use errors.Is to match these values; the messages
// double as client-facing failure reasons at the HTTP boundary.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound       = errors.New("not found")
	ErrorAlreadyExists  = errors.New("already exists")
	ErrDuplicateToken   = errors.New("duplicate refresh token")
	ErrStoreUnavailable = errors.New("store unavailable")

	// Account and credential errors.
	ErrAccountExists      = errors.New("account with this email address already exists")
	ErrAccountNotFound    = errors.New("account does not exist")
	ErrInvalidCredentials = errors.New("email/password combination is wrong")

	// Access-token errors.
	ErrInvalidToken    = errors.New("invalid token")
	ErrTokenNotExpired = errors.New("this token hasn't expired yet")

	// Refresh-token lifecycle errors. Once a ledger entry is used,
	// invalidated, or expired there is no way back.
	ErrRefreshTokenNotFound    = errors.New("refresh token does not exist")
	ErrRefreshTokenExpired     = errors.New("refresh token has expired")
	ErrRefreshTokenInvalidated = errors.New("refresh token has been invalidated")
	ErrRefreshTokenUsed        = errors.New("refresh token has been used")
	ErrTokenMismatch           = errors.New("refresh token does not match this JWT")
)
