package websocket

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"codeberg.org/roomchat/server/roomchat/conversations"
)

// client connection constants
const (
	// time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// maximum frame size accepted from a peer
	maxMessageSize = 64 * 1024

	// outbound frames queued per client before it is dropped
	sendBufferSize = 256

	// upper bound on a buffer append made from the hub loop
	appendTimeout = 5 * time.Second
)

// fan-out scopes
const (
	// every other connection receives every message
	ScopeAll = "all"

	// a connection receives a room's messages once it has joined that room
	ScopeRoom = "room"
)

var (
	ErrConnectionClosed = errors.New("connection closed")
	ErrInvalidMessage   = errors.New("invalid message format")
	ErrMissingRoom      = errors.New("message has no roomId")
)

// lifecycle of a connection as seen by the hub
type ConnState int

const (
	StateConnecting ConnState = iota
	StateActive
	StateClosed
)

func (s ConnState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateActive:
		return "active"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// frame sent by a client
type InboundMessage struct {
	RoomID string `json:"roomId"`
	Text   string `json:"text"`
}

// frame relayed to peers. roomId lets clients route it to the right view
type OutboundMessage struct {
	RoomID   string `json:"roomId"`
	Username string `json:"username"`
	Text     string `json:"text"`
}

// where the hub hands accepted messages before relaying them
type MessageArchiver interface {
	Append(ctx context.Context, roomID string, msg conversations.Message) (*conversations.Conversation, error)
}

// a raw frame read from a client, queued for the hub loop
type Inbound struct {
	Client *Client
	Data   []byte
}

// represents a websocket client connection
type Client struct {
	// unique identifier for this connection
	ID string

	// authenticated username, fixed at handshake
	Username string

	// IP address of the client
	IPAddress string

	// websocket connection
	conn *websocket.Conn

	// hub reference for message broadcasting
	hub *Hub

	// buffered channel of outbound messages
	send chan []byte

	// guards state
	mu    sync.RWMutex
	state ConnState

	// rooms this connection receives in room scope. owned by the hub loop
	rooms map[string]struct{}
}

// owns the set of live connections. register, unregister and every
// inbound message are processed one at a time by Run
type Hub struct {
	// active clients by ID
	clients map[string]*Client

	// register requests from clients
	Register chan *Client

	// unregister requests from clients
	Unregister chan *Client

	// frames read from clients
	Inbound chan *Inbound

	// guards clients for readers outside the loop
	mu sync.RWMutex

	archiver MessageArchiver
	scope    string

	running  bool
	shutdown chan struct{}
	stopped  chan struct{}
	stopOnce sync.Once

	// samples logging of dropped frames
	dropLog rate.Sometimes
}
