package main

import (
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	authapi "codeberg.org/roomchat/server/api/rest/auth"
	"codeberg.org/roomchat/server/api/rest/chat"
	"codeberg.org/roomchat/server/api/rest/health"
	"codeberg.org/roomchat/server/api/websocket"
	"codeberg.org/roomchat/server/internal/auth"
	"codeberg.org/roomchat/server/internal/ratelimit"
)

// sets up all routes and middleware on the api router, and the broker router when there is one
func RegisterRoutes(server *Server) error {
	router := server.router
	cfg := server.config

	if mw := corsMiddleware(server); mw != nil {
		router.Use(mw)
	}

	router.GET("/health", health.Handler(health.Stats{
		Clients:  server.hub.ClientCount,
		Sessions: server.sessions.Count,
	}))
	router.GET("/ping", health.PingHandler)

	loginLimit, err := ratelimit.Middleware("login", cfg.LoginRate, server.redisClient())
	if err != nil {
		return err
	}

	authapi.RegisterRoutes(router, &authapi.Deps{
		Users:    server.store.Users,
		Sessions: server.sessions,
		Gate:     server.gate,
		Hasher:   server.hasher,
		MaxAge:   cfg.SessionMaxAge,
	}, loginLimit)

	protected := router.Group("/", auth.SessionMiddleware(server.gate))
	chat.RegisterRoutes(protected, &chat.Deps{
		Rooms:     server.store.Rooms,
		Buffer:    server.buffer,
		Paginator: server.paginator,
	})

	// the broker is always reachable on the api listener too
	websocket.RegisterRoutes(router, "/ws", server.hub, server.gate)

	if server.brokerRouter != nil {
		websocket.RegisterRoutes(server.brokerRouter, "/", server.hub, server.gate)
	}

	if cfg.ClientDir != "" {
		registerClientRoutes(router, server.gate, cfg.ClientDir)
	}

	return nil
}

// serves the browser client. the login page and stylesheet are public, the rest needs a session
func registerClientRoutes(router *gin.Engine, gate *auth.Gate, dir string) {
	router.StaticFile("/login", filepath.Join(dir, "login.html"))
	router.StaticFile("/style.css", filepath.Join(dir, "style.css"))

	files := http.FileServer(http.Dir(dir))

	router.NoRoute(auth.SessionMiddleware(gate), func(c *gin.Context) {
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			c.Status(http.StatusNotFound)
			return
		}

		files.ServeHTTP(c.Writer, c.Request)
	})
}

// allows ALLOWED_ORIGINS with credentials. outside production any origin is accepted
func corsMiddleware(server *Server) gin.HandlerFunc {
	cfg := server.config

	corsConfig := cors.Config{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	switch {
	case len(cfg.AllowedOrigins) > 0:
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	case !cfg.IsProduction():
		corsConfig.AllowOriginFunc = func(string) bool { return true }
	default:
		// same-origin only
		return nil
	}

	return cors.New(corsConfig)
}
