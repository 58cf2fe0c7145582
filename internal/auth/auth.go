package auth

import (
	"net/http"
	"time"
)

// resolves a request's session cookie to an identity.
// shared by the http middleware and the websocket handshake
type Gate struct {
	sessions   SessionLookup
	cookieName string
	codec      *CookieCodec
	secure     bool
}

type GateOption func(*Gate)

// signs cookie values with secret. an empty secret keeps raw tokens
func WithSecret(secret string) GateOption {
	return func(g *Gate) {
		if secret != "" {
			g.codec = NewCookieCodec(secret)
		}
	}
}

// marks issued cookies as Secure
func WithSecureCookies(secure bool) GateOption {
	return func(g *Gate) {
		g.secure = secure
	}
}

func NewGate(sessions SessionLookup, cookieName string, opts ...GateOption) *Gate {
	g := &Gate{
		sessions:   sessions,
		cookieName: cookieName,
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// checks the value of a Cookie header
func (g *Gate) Authenticate(cookieHeader string) (*Identity, error) {
	if cookieHeader == "" {
		return nil, ErrNoCredential
	}

	req := &http.Request{Header: http.Header{"Cookie": {cookieHeader}}}
	return g.AuthenticateRequest(req)
}

// checks the session cookie carried by r
func (g *Gate) AuthenticateRequest(r *http.Request) (*Identity, error) {
	cookie, err := r.Cookie(g.cookieName)
	if err != nil || cookie.Value == "" {
		return nil, ErrNoCredential
	}

	token := cookie.Value

	if g.codec != nil {
		token, err = g.codec.Decode(cookie.Value)
		if err != nil {
			return nil, ErrInvalidSession
		}
	}

	username, ok := g.sessions.Username(token)
	if !ok {
		return nil, ErrInvalidSession
	}

	return &Identity{Username: username, Token: token}, nil
}

// writes the session cookie for token, living as long as the session
func (g *Gate) IssueCookie(w http.ResponseWriter, token string, maxAge time.Duration) error {
	value := token

	if g.codec != nil {
		signed, err := g.codec.Encode(token, maxAge)
		if err != nil {
			return err
		}

		value = signed
	}

	http.SetCookie(w, &http.Cookie{
		Name:     g.cookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(maxAge / time.Second),
		HttpOnly: true,
		Secure:   g.secure,
		SameSite: http.SameSiteLaxMode,
	})

	return nil
}

// expires the session cookie on the client
func (g *Gate) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     g.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   g.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
