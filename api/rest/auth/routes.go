package auth

import (
	"github.com/gin-gonic/gin"

	"codeberg.org/roomchat/server/internal/auth"
)

// registers login, logout and profile. loginLimit guards POST /login
func RegisterRoutes(router gin.IRoutes, deps *Deps, loginLimit gin.HandlerFunc) {
	login := []gin.HandlerFunc{LoginHandler(deps)}
	if loginLimit != nil {
		login = append([]gin.HandlerFunc{loginLimit}, login...)
	}

	router.POST("/login", login...)
	router.GET("/logout", LogoutHandler(deps))
	router.GET("/profile", auth.SessionMiddleware(deps.Gate), ProfileHandler)
}
