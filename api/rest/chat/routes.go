package chat

import (
	"github.com/gin-gonic/gin"
)

// registers the room and history routes. callers put them behind the session gate
func RegisterRoutes(router gin.IRoutes, deps *Deps) {
	router.GET("/chat", ListRoomsHandler(deps))
	router.POST("/chat", CreateRoomHandler(deps))
	router.GET("/chat/:room_id", GetRoomHandler(deps))
	router.GET("/chat/:room_id/messages", HistoryHandler(deps))
}
