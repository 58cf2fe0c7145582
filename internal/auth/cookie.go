package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const cookieIssuer = "roomchat"

// signs and verifies session cookie values as HS256 tokens
type CookieCodec struct {
	secret []byte
	now    func() time.Time
}

func NewCookieCodec(secret string) *CookieCodec {
	return &CookieCodec{secret: []byte(secret), now: time.Now}
}

// wraps a session token into a signed cookie value
func (c *CookieCodec) Encode(token string, maxAge time.Duration) (string, error) {
	now := c.now()

	claims := cookieClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        token,
			Issuer:    cookieIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(maxAge)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session cookie: %w", err)
	}

	return signed, nil
}

// verifies a cookie value and returns the session token inside it
func (c *CookieCodec) Decode(value string) (string, error) {
	claims := &cookieClaims{}

	token, err := jwt.ParseWithClaims(value, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}

		return c.secret, nil
	},
		jwt.WithIssuer(cookieIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidCookie, err)
	}

	if !token.Valid || claims.ID == "" {
		return "", ErrInvalidCookie
	}

	return claims.ID, nil
}
