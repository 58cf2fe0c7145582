package websocket

import (
	"time"

	"github.com/gorilla/websocket"

	"codeberg.org/roomchat/server/internal/logger"
)

// creates a client for an authenticated connection, joined to rooms in room scope
func NewClient(id, username, ipAddress string, rooms []string, conn *websocket.Conn, hub *Hub) *Client {
	c := &Client{
		ID:        id,
		Username:  username,
		IPAddress: ipAddress,
		conn:      conn,
		hub:       hub,
		send:      make(chan []byte, sendBufferSize),
		state:     StateConnecting,
		rooms:     make(map[string]struct{}, len(rooms)),
	}

	for _, roomID := range rooms {
		if roomID != "" {
			c.rooms[roomID] = struct{}{}
		}
	}

	return c
}

// reads frames from the connection and queues them for the hub
func (c *Client) ReadPump() {
	defer func() {
		select {
		case c.hub.Unregister <- c:
		case <-c.hub.stopped:
		}

		c.conn.Close() //nolint:errcheck,gosec // G104: defer cleanup
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait)) //nolint:errcheck,gosec // G104: websocket setup
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait)) //nolint:errcheck,gosec // G104: pong handler
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("websocket error",
					"client_id", c.ID,
					"username", c.Username,
					"error", err,
				)
			}

			break
		}

		select {
		case c.hub.Inbound <- &Inbound{Client: c, Data: data}:
		case <-c.hub.stopped:
			return
		}
	}
}

// writes queued frames to the connection and keeps it alive with pings
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		c.conn.Close() //nolint:errcheck,gosec // G104: defer cleanup
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck,gosec // G104: websocket timing

			if !ok {
				// hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{}) //nolint:errcheck,gosec // G104: close message
				return
			}

			// one frame per message, clients parse each frame as a single JSON object
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck,gosec // G104: websocket ping timing

			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// queues an encoded frame. a client whose queue is full is closed
func (c *Client) Send(data []byte) (err error) {
	// recover from panic if channel is closed
	defer func() {
		if r := recover(); r != nil {
			err = ErrConnectionClosed
		}
	}()

	if c.State() != StateActive {
		return ErrConnectionClosed
	}

	select {
	case c.send <- data:
		return nil
	default:
		logger.Warn("client send buffer full, closing connection",
			"client_id", c.ID,
			"username", c.Username,
		)

		c.Close()
		return ErrConnectionClosed
	}
}

// closes the client connection
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateClosed {
		c.state = StateClosed
		close(c.send)
	}
}

func (c *Client) State() ConnState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// checks if the client is closed
func (c *Client) IsClosed() bool {
	return c.State() == StateClosed
}

// moves a connecting client to active. closed clients stay closed
func (c *Client) activate() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateConnecting {
		return false
	}

	c.state = StateActive
	return true
}

// reports whether the client receives roomID in room scope. hub loop only
func (c *Client) inRoom(roomID string) bool {
	_, ok := c.rooms[roomID]
	return ok
}

// hub loop only
func (c *Client) join(roomID string) {
	c.rooms[roomID] = struct{}{}
}
