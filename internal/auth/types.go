package auth

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// gin context key set by SessionMiddleware
const ContextUsername = "username"

var (
	ErrNoCredential   = errors.New("no session cookie")
	ErrInvalidSession = errors.New("invalid or expired session")
	ErrInvalidCookie  = errors.New("malformed session cookie")
)

// the caller an accepted cookie resolves to
type Identity struct {
	Username string
	Token    string
}

// the part of the session store the gate reads from
type SessionLookup interface {
	Username(token string) (string, bool)
}

// claims carried by a signed session cookie. the session token travels as jti
type cookieClaims struct {
	jwt.RegisteredClaims
}
