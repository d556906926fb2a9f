// Package auth implements the access-token codec: issuing and parsing
// HS256-signed JWTs. The codec never checks expiry; the refresh flow has to
// read claims out of tokens that are already expired, so expiry policy lives
// with the caller.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrInvalidSignature means the token signature does not verify with the
	// configured secret.
	ErrInvalidSignature = errors.New("invalid token signature")

	// ErrMalformedToken means the token structure could not be decoded.
	ErrMalformedToken = errors.New("malformed token")

	// ErrUnsupportedAlgorithm means the token declares a signing algorithm
	// other than HS256. Rejecting these defends against algorithm
	// substitution.
	ErrUnsupportedAlgorithm = errors.New("unsupported signing algorithm")
)

// Claims are the access-token claims: subject is the account email, ID the
// per-issuance jti, AccountID the owning account.
type Claims struct {
	jwt.RegisteredClaims
	AccountID string `json:"id"`
}

// IssueToken mints a signed access token for the account with an expiry of
// now+ttl and a freshly generated jti. It returns the compact token and the
// jti so the caller can bind a refresh-token ledger entry to it.
func IssueToken(email, accountID string, secret []byte, ttl time.Duration) (string, string, error) {
	jti := uuid.NewString()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			ID:        jti,
			ExpiresAt: jwt.NewNumericDate(time.Now().UTC().Add(ttl)),
		},
		AccountID: accountID,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", "", err
	}

	return token, jti, nil
}

// ParseToken verifies the token signature and algorithm and returns its
// claims. Expired tokens parse successfully on purpose.
func ParseToken(tokenString string, secret []byte) (*Claims, error) {
	claims := &Claims{}

	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrUnsupportedAlgorithm
		}
		return secret, nil
	}, jwt.WithoutClaimsValidation())

	switch {
	case err == nil:
		return claims, nil
	case errors.Is(err, ErrUnsupportedAlgorithm):
		return nil, ErrUnsupportedAlgorithm
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return nil, ErrInvalidSignature
	default:
		return nil, ErrMalformedToken
	}
}
