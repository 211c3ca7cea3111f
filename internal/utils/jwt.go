package utils // package utils provides helper functions for token creation and hashing

import (
	"errors"
	"fmt"
	"time" // time utilities for generating expirations

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// ErrInvalidToken is returned by ParseAccessToken for any token that cannot
// be trusted: bad signature, unexpected algorithm, expired, or a payload
// without a usable subject.
var ErrInvalidToken = errors.New("invalid token")

// Identity is the verified content of an access token.
type Identity struct {
	UserID  string
	IsAdmin bool
}

// AccessToken represents a signed JWT access token along with its expiry.
// Clients send it back in the x-auth-token header on protected calls.
type AccessToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// accessClaims is the JWT payload: the user id travels in "sub" and the
// admin flag in "isAdmin".
type accessClaims struct {
	IsAdmin bool `json:"isAdmin"`
	jwt.RegisteredClaims
}

// NewAccessToken builds and signs an HS256 JWT for a user.  The token carries
// the user id, the admin flag, and issued-at / expiry claims derived from
// ttlMin.
func NewAccessToken(secret, userID string, isAdmin bool, ttlMin int) (AccessToken, error) {
	now := time.Now().UTC()
	exp := now.Add(time.Duration(ttlMin) * time.Minute)
	claims := accessClaims{
		IsAdmin: isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// ParseAccessToken verifies raw against secret and returns the identity it
// carries.  Every failure is reported as ErrInvalidToken (wrapped with the
// cause for logging).
func ParseAccessToken(secret, raw string) (Identity, error) {
	var claims accessClaims
	tok, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !tok.Valid || claims.Subject == "" {
		return Identity{}, ErrInvalidToken
	}
	return Identity{UserID: claims.Subject, IsAdmin: claims.IsAdmin}, nil
}
