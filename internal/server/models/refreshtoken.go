package models

import "time"

// RefreshToken is a ledger entry pairing an opaque bearer secret with the
// access token it was issued alongside. Used and Invalidated are monotonic:
// once set they are never cleared.
type RefreshToken struct {
	Token       string
	JwtID       string
	AccountID   string
	CreatedAt   time.Time
	ExpiresAt   time.Time
	Used        bool
	Invalidated bool
}

// Consumable reports whether the entry can still be rotated at the given
// moment.
func (t *RefreshToken) Consumable(now time.Time) bool {
	return !t.Used && !t.Invalidated && now.Before(t.ExpiresAt)
}
