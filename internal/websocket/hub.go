package websocket

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"codeberg.org/roomchat/server/internal/logger"
	"codeberg.org/roomchat/server/roomchat/conversations"
)

// creates a hub relaying messages in scope and handing them to archiver
func NewHub(archiver MessageArchiver, scope string) *Hub {
	if scope != ScopeRoom {
		scope = ScopeAll
	}

	return &Hub{
		clients:    make(map[string]*Client),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Inbound:    make(chan *Inbound, 256),
		archiver:   archiver,
		scope:      scope,
		shutdown:   make(chan struct{}),
		stopped:    make(chan struct{}),
		dropLog:    rate.Sometimes{First: 3, Interval: 10 * time.Second},
	}
}

func (h *Hub) Scope() string {
	return h.scope
}

// starts the hub's main loop
func (h *Hub) Run() {
	h.mu.Lock()
	h.running = true
	h.mu.Unlock()

	defer close(h.stopped)

	for {
		select {
		case client := <-h.Register:
			h.registerClient(client)

		case client := <-h.Unregister:
			h.unregisterClient(client)

		case in := <-h.Inbound:
			h.handleInbound(in)

		case <-h.shutdown:
			h.closeAllConnections()
			return
		}
	}
}

// adds a client to the live set and marks it active
func (h *Hub) registerClient(client *Client) {
	if !client.activate() {
		return
	}

	h.mu.Lock()
	h.clients[client.ID] = client
	count := len(h.clients)
	h.mu.Unlock()

	logger.Info("client registered",
		"client_id", client.ID,
		"username", client.Username,
		"clients", count,
	)
}

// removes a client from the live set. buffers are left alone
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()

	if _, exists := h.clients[client.ID]; !exists {
		h.mu.Unlock()
		client.Close()
		return
	}

	delete(h.clients, client.ID)
	count := len(h.clients)
	h.mu.Unlock()

	client.Close()

	logger.Info("client unregistered",
		"client_id", client.ID,
		"username", client.Username,
		"clients", count,
	)
}

// decodes, archives and relays one inbound frame
func (h *Hub) handleInbound(in *Inbound) {
	sender := in.Client

	h.mu.RLock()
	_, registered := h.clients[sender.ID]
	h.mu.RUnlock()

	if !registered || sender.State() != StateActive {
		return
	}

	var frame InboundMessage
	if err := json.Unmarshal(in.Data, &frame); err != nil {
		h.drop(sender, ErrInvalidMessage, err)
		return
	}

	frame.RoomID = strings.TrimSpace(frame.RoomID)
	if frame.RoomID == "" {
		h.drop(sender, ErrMissingRoom, nil)
		return
	}

	msg := conversations.Message{
		Username: sender.Username,
		Text:     Sanitize(frame.Text),
	}

	ctx, cancel := context.WithTimeout(context.Background(), appendTimeout)
	_, err := h.archiver.Append(ctx, frame.RoomID, msg)
	cancel()

	if err != nil {
		// live delivery does not depend on the buffer
		logger.ErrorErr(err, "failed to buffer message",
			"room_id", frame.RoomID,
			"username", sender.Username,
		)
	}

	sender.join(frame.RoomID)

	data, err := json.Marshal(OutboundMessage{
		RoomID:   frame.RoomID,
		Username: msg.Username,
		Text:     msg.Text,
	})
	if err != nil {
		logger.ErrorErr(err, "failed to encode outbound message", "room_id", frame.RoomID)
		return
	}

	h.relay(sender, frame.RoomID, data)
}

// sends data to every other active client in scope
func (h *Hub) relay(sender *Client, roomID string, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for clientID, client := range h.clients {
		if clientID == sender.ID {
			continue
		}

		if client.IsClosed() {
			continue
		}

		if h.scope == ScopeRoom && !client.inRoom(roomID) {
			continue
		}

		if err := client.Send(data); err != nil {
			logger.Debug("failed to relay to client",
				"client_id", clientID,
				"room_id", roomID,
			)
		}
	}
}

func (h *Hub) drop(sender *Client, reason, cause error) {
	h.dropLog.Do(func() {
		logger.Warn("dropped malformed frame",
			"client_id", sender.ID,
			"username", sender.Username,
			"reason", reason.Error(),
			"error", cause,
		)
	})
}

// closed once Run has returned
func (h *Hub) Done() <-chan struct{} {
	return h.stopped
}

// returns the number of active clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// returns the active clients
func (h *Hub) Clients() []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients := make([]*Client, 0, len(h.clients))
	for _, client := range h.clients {
		clients = append(clients, client)
	}

	return clients
}

// stops the loop and closes every connection. safe to call more than once
func (h *Hub) Shutdown() {
	h.stopOnce.Do(func() {
		close(h.shutdown)
	})

	h.mu.RLock()
	running := h.running
	h.mu.RUnlock()

	if running {
		<-h.stopped
	}
}

func (h *Hub) closeAllConnections() {
	h.mu.Lock()
	defer h.mu.Unlock()

	logger.Info("closing all websocket connections", "clients", len(h.clients))

	for clientID, client := range h.clients {
		client.Close()
		logger.Debug("closed client", "client_id", clientID)
	}

	h.clients = make(map[string]*Client)
}
