package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"codeberg.org/roomchat/server/internal/errors"
)

// where browsers are sent when their session is missing or stale
const LoginPath = "/login"

// requires a valid session cookie. json clients get a 401, browsers a redirect
func SessionMiddleware(gate *Gate) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := gate.AuthenticateRequest(c.Request)
		if err != nil {
			if errors.WantsJSON(c) {
				errors.Unauthorized(c, err.Error())
			} else {
				c.Redirect(http.StatusFound, LoginPath)
			}

			c.Abort()
			return
		}

		c.Set(ContextUsername, identity.Username)

		c.Next()
	}
}

// extracts the username after SessionMiddleware
func GetUsername(c *gin.Context) (string, bool) {
	username, exists := c.Get(ContextUsername)
	if !exists {
		return "", false
	}

	name, ok := username.(string)
	return name, ok
}
