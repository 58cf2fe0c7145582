package auth

import (
	"time"

	"codeberg.org/roomchat/server/internal/auth"
	"codeberg.org/roomchat/server/internal/sessions"
	"codeberg.org/roomchat/server/roomchat/users"
)

// what the login flow needs from the rest of the server
type Deps struct {
	Users    users.Repository
	Sessions *sessions.Store
	Gate     *auth.Gate
	Hasher   *auth.PasswordHasher
	MaxAge   time.Duration
}

// credentials posted by the login form or a json client
type LoginRequest struct {
	Username string `json:"username" form:"username" binding:"required,max=100"`
	Password string `json:"password" form:"password" binding:"required,max=200"`
}

// ProfileResponse is returned by GET /profile and by json logins
type ProfileResponse struct {
	Username string `json:"username"`
}
