package health

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	serviceName = "roomchat"
	version     = "1.0.0"
)

// returns the server health status with connected clients and live sessions
func Handler(stats Stats) gin.HandlerFunc {
	return func(c *gin.Context) {
		response := Response{
			Status:  "healthy",
			Service: serviceName,
			Version: version,
		}

		if stats.Clients != nil {
			response.Clients = stats.Clients()
		}

		if stats.Sessions != nil {
			response.Sessions = stats.Sessions()
		}

		c.JSON(http.StatusOK, response)
	}
}

// responds with pong for testing
func PingHandler(c *gin.Context) {
	c.JSON(http.StatusOK, PingResponse{Message: "pong"})
}
