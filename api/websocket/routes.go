package websocket

import (
	"github.com/gin-gonic/gin"

	"codeberg.org/roomchat/server/internal/auth"
	ws "codeberg.org/roomchat/server/internal/websocket"
)

func RegisterRoutes(router gin.IRoutes, path string, hub *ws.Hub, gate *auth.Gate) {
	router.GET(path, WebSocketHandler(hub, gate))
}
