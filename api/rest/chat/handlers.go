package chat

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"codeberg.org/roomchat/server/internal/errors"
	"codeberg.org/roomchat/server/internal/history"
	"codeberg.org/roomchat/server/internal/logger"
	"codeberg.org/roomchat/server/roomchat/rooms"
)

// lists every room with its buffered messages merged in
func ListRoomsHandler(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		list, err := deps.Rooms.List(ctx)
		if err != nil {
			errors.InternalError(c, "failed to list rooms", err)
			return
		}

		response := make([]RoomResponse, 0, len(list))

		for _, room := range list {
			messages, err := deps.Buffer.Peek(ctx, room.ID)
			if err != nil {
				errors.InternalError(c, "failed to read room buffer", err)
				return
			}

			response = append(response, RoomResponse{Room: room, Messages: messages})
		}

		c.JSON(http.StatusOK, response)
	}
}

// creates a room and gives it an empty buffer
func CreateRoomHandler(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req rooms.CreateRoomRequest
		if err := c.ShouldBind(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		room := &rooms.Room{Name: req.Name, Image: req.Image}

		err := deps.Rooms.Create(c.Request.Context(), room)
		switch {
		case stderrors.Is(err, rooms.ErrNameMissing):
			errors.BadRequest(c, "room name is required", nil)
			return
		case stderrors.Is(err, rooms.ErrDuplicateID):
			errors.Conflict(c, "room already exists")
			return
		case err != nil:
			errors.InternalError(c, "failed to create room", err)
			return
		}

		if err := deps.Buffer.Ensure(c.Request.Context(), room.ID); err != nil {
			errors.InternalError(c, "failed to create room buffer", err)
			return
		}

		logger.Info("room created",
			"room_id", room.ID,
			"name", room.Name,
			"username", c.GetString("username"),
		)

		c.JSON(http.StatusOK, room)
	}
}

func GetRoomHandler(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		room, err := deps.Rooms.Get(c.Request.Context(), c.Param("room_id"))
		if stderrors.Is(err, rooms.ErrNotFound) {
			errors.NotFound(c, "room")
			return
		}

		if err != nil {
			errors.InternalError(c, "failed to get room", err)
			return
		}

		c.JSON(http.StatusOK, room)
	}
}

// returns the newest archived block older than ?before= (epoch ms, default now)
func HistoryHandler(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		roomID := c.Param("room_id")

		before, err := history.ParseBefore(c.Query("before"))
		if err != nil {
			errors.BadRequest(c, err.Error(), nil)
			return
		}

		conv, err := deps.Paginator.LastConversation(c.Request.Context(), roomID, before)
		if stderrors.Is(err, history.ErrNoConversation) {
			errors.NotFound(c, "conversation")
			return
		}

		if err != nil {
			errors.InternalError(c, "failed to load conversation", err)
			return
		}

		c.JSON(http.StatusOK, conv)
	}
}
