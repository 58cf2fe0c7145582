package websocket

import (
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"codeberg.org/roomchat/server/internal/auth"
	"codeberg.org/roomchat/server/internal/errors"
	"codeberg.org/roomchat/server/internal/logger"
	ws "codeberg.org/roomchat/server/internal/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     ws.CheckOrigin,
}

// upgrades authenticated requests and hands the connection to the hub.
// the session cookie is checked before the upgrade, so rejected callers
// never become clients
func WebSocketHandler(hub *ws.Hub, gate *auth.Gate) gin.HandlerFunc {
	return func(c *gin.Context) {
		ipAddress := c.ClientIP()

		identity, err := gate.AuthenticateRequest(c.Request)
		if err != nil {
			logger.Warn("websocket handshake rejected",
				"ip", ipAddress,
				"reason", err.Error(),
			)

			errors.Unauthorized(c, err.Error())
			return
		}

		var params ConnectParams
		if err := c.ShouldBindQuery(&params); err != nil {
			errors.BadRequest(c, "invalid parameters", err)
			return
		}

		clientID, err := ws.GenerateClientID()
		if err != nil {
			errors.InternalError(c, "failed to generate client ID", err)
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.ErrorErr(err, "failed to upgrade connection",
				"username", identity.Username,
				"ip", ipAddress,
			)

			return
		}

		client := ws.NewClient(clientID, identity.Username, ipAddress, params.Rooms, conn, hub)

		select {
		case hub.Register <- client:
		case <-hub.Done():
			conn.Close() //nolint:errcheck,gosec // G104: hub already stopped
			return
		}

		go client.WritePump()
		go client.ReadPump()

		logger.Info("websocket connection established",
			"client_id", clientID,
			"username", identity.Username,
			"ip", ipAddress,
		)
	}
}
