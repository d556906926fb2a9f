// Package models holds the persisted entities of the authentication server.
package models

import "time"

// Account is a registered user as stored by the account store. The password
// is kept only as a bcrypt hash.
type Account struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
