package main

import (
	"github.com/gin-gonic/gin"

	"codeberg.org/roomchat/server/internal/auth"
	"codeberg.org/roomchat/server/internal/buffer"
	"codeberg.org/roomchat/server/internal/config"
	"codeberg.org/roomchat/server/internal/history"
	"codeberg.org/roomchat/server/internal/sessions"
	"codeberg.org/roomchat/server/internal/storage"
	ws "codeberg.org/roomchat/server/internal/websocket"
)

// holds all dependencies and state for the chat server
type Server struct {
	config *config.Config

	store *storage.Client

	// nil when buffering in memory
	redis *buffer.RedisBuffer

	sessions  *sessions.Store
	gate      *auth.Gate
	hasher    *auth.PasswordHasher
	buffer    buffer.Buffer
	archiver  *buffer.Archiver
	paginator *history.Paginator
	hub       *ws.Hub

	router *gin.Engine

	// serves only the websocket broker. nil when the broker shares the api listener
	brokerRouter *gin.Engine
}
