package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/roomchat/server/internal/buffer"
	"codeberg.org/roomchat/server/internal/history"
	"codeberg.org/roomchat/server/roomchat/conversations"
	"codeberg.org/roomchat/server/roomchat/rooms"
)

type testEnv struct {
	router *gin.Engine
	rooms  *rooms.MemoryRepository
	buffer *buffer.MemoryBuffer
	convs  *conversations.MemoryRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	gin.SetMode(gin.TestMode)

	env := &testEnv{
		rooms:  rooms.NewMemoryRepository(),
		buffer: buffer.NewMemoryBuffer(),
		convs:  conversations.NewMemoryRepository(),
	}

	env.router = gin.New()
	RegisterRoutes(env.router, &Deps{
		Rooms:     env.rooms,
		Buffer:    env.buffer,
		Paginator: history.NewPaginator(env.convs),
	})

	return env
}

func (e *testEnv) get(path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func (e *testEnv) postJSON(path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func TestCreateRoom(t *testing.T) {
	env := newTestEnv(t)

	rec := env.postJSON("/chat", `{"name":"General","image":"general.png"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var room rooms.Room
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &room))
	assert.NotEmpty(t, room.ID)
	assert.Equal(t, "General", room.Name)
	assert.Equal(t, "general.png", room.Image)

	// the new room has an empty buffer straight away
	buffered, err := env.buffer.Rooms(context.Background())
	require.NoError(t, err)
	assert.Contains(t, buffered, room.ID)
}

func TestCreateRoomWithoutName(t *testing.T) {
	env := newTestEnv(t)

	rec := env.postJSON("/chat", `{"image":"x.png"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.postJSON("/chat", `{"name":"   "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	list, err := env.rooms.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestListRoomsMergesBuffer(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.rooms.Create(ctx, &rooms.Room{ID: "r1", Name: "one"}))
	require.NoError(t, env.rooms.Create(ctx, &rooms.Room{ID: "r2", Name: "two"}))

	_, err := env.buffer.Append(ctx, "r1", conversations.Message{Username: "alice", Text: "hi"})
	require.NoError(t, err)

	rec := env.get("/chat")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.JSONEq(t, `[
		{"_id":"r1","name":"one","image":"","messages":[{"username":"alice","text":"hi"}]},
		{"_id":"r2","name":"two","image":"","messages":[]}
	]`, rec.Body.String())
}

func TestGetRoom(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.rooms.Create(context.Background(), &rooms.Room{ID: "r1", Name: "one", Image: "one.png"}))

	rec := env.get("/chat/r1")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"_id":"r1","name":"one","image":"one.png"}`, rec.Body.String())

	assert.Equal(t, http.StatusNotFound, env.get("/chat/missing").Code)
}

func TestHistory(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.convs.Insert(ctx, &conversations.Conversation{
		RoomID:    "r1",
		Timestamp: 100,
		Messages:  []conversations.Message{{Username: "alice", Text: "first"}},
	}))
	require.NoError(t, env.convs.Insert(ctx, &conversations.Conversation{
		RoomID:    "r1",
		Timestamp: 200,
		Messages:  []conversations.Message{{Username: "bob", Text: "second"}},
	}))

	tests := []struct {
		name   string
		query  string
		status int
		stamp  int64
	}{
		{"between blocks", "?before=150", http.StatusOK, 100},
		{"before everything", "?before=50", http.StatusNotFound, 0},
		{"omitted returns the newest", "", http.StatusOK, 200},
		{"equal is excluded", "?before=200", http.StatusOK, 100},
		{"not a number", "?before=yesterday", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.get("/chat/r1/messages" + tt.query)
			require.Equal(t, tt.status, rec.Code)

			if tt.status != http.StatusOK {
				return
			}

			var conv conversations.Conversation
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &conv))
			assert.Equal(t, "r1", conv.RoomID)
			assert.Equal(t, tt.stamp, conv.Timestamp)
		})
	}
}

func TestHistoryUnknownRoom(t *testing.T) {
	env := newTestEnv(t)
	assert.Equal(t, http.StatusNotFound, env.get("/chat/nowhere/messages").Code)
}

type failingConversations struct{}

func (failingConversations) Insert(context.Context, *conversations.Conversation) error {
	return errors.New("db down")
}

func (failingConversations) LastBefore(context.Context, string, int64) (*conversations.Conversation, error) {
	return nil, errors.New("db down")
}

func TestHistoryStorageFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	RegisterRoutes(router, &Deps{
		Rooms:     rooms.NewMemoryRepository(),
		Buffer:    buffer.NewMemoryBuffer(),
		Paginator: history.NewPaginator(failingConversations{}),
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/chat/r1/messages", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "server_error")
}
