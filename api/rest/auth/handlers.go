package auth

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"codeberg.org/roomchat/server/internal/auth"
	"codeberg.org/roomchat/server/internal/errors"
	"codeberg.org/roomchat/server/internal/logger"
	"codeberg.org/roomchat/server/roomchat/users"
)

const homePath = "/"

// checks credentials, opens a session and sets the session cookie.
// browsers are redirected to / on success and back to /login on failure
func LoginHandler(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBind(&req); err != nil {
			rejectLogin(c, "username and password are required")
			return
		}

		user, err := deps.Users.FindByUsername(c.Request.Context(), req.Username)
		if err != nil && !stderrors.Is(err, users.ErrNotFound) {
			errors.InternalError(c, "failed to look up user", err)
			return
		}

		if user == nil || !deps.Hasher.Verify(req.Password, user.PasswordHash) {
			logger.Warn("login failed",
				"username", req.Username,
				"ip", c.ClientIP(),
			)

			rejectLogin(c, "invalid username or password")
			return
		}

		token, err := deps.Sessions.CreateSession(user.Username, deps.MaxAge)
		if err != nil {
			errors.InternalError(c, "failed to create session", err)
			return
		}

		if err := deps.Gate.IssueCookie(c.Writer, token, deps.MaxAge); err != nil {
			deps.Sessions.DeleteSession(token)
			errors.InternalError(c, "failed to issue session cookie", err)
			return
		}

		logger.Info("user logged in",
			"username", user.Username,
			"ip", c.ClientIP(),
		)

		if errors.WantsJSON(c) {
			c.JSON(http.StatusOK, ProfileResponse{Username: user.Username})
			return
		}

		c.Redirect(http.StatusFound, homePath)
	}
}

// ends the caller's session, if any, and sends them to the login page
func LogoutHandler(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		if identity, err := deps.Gate.AuthenticateRequest(c.Request); err == nil {
			deps.Sessions.DeleteSession(identity.Token)

			logger.Info("user logged out", "username", identity.Username)
		}

		deps.Gate.ClearCookie(c.Writer)

		if errors.WantsJSON(c) {
			c.Status(http.StatusNoContent)
			return
		}

		c.Redirect(http.StatusFound, auth.LoginPath)
	}
}

// returns the logged in username
func ProfileHandler(c *gin.Context) {
	username, ok := auth.GetUsername(c)
	if !ok {
		errors.Unauthorized(c, "")
		return
	}

	c.JSON(http.StatusOK, ProfileResponse{Username: username})
}

func rejectLogin(c *gin.Context, message string) {
	if errors.WantsJSON(c) {
		errors.Unauthorized(c, message)
		return
	}

	c.Redirect(http.StatusFound, auth.LoginPath)
}
