package errors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		category string
	}{
		{"no rows", fmt.Errorf("find room: %w", pgx.ErrNoRows), CategoryNotFound},
		{"deadline", context.DeadlineExceeded, CategoryTimeout},
		{"canceled", context.Canceled, CategoryTimeout},
		{"redis text", errors.New("redis: connection pool timeout"), CategoryTimeout},
		{"redis", errors.New("failed to append to redis list"), CategoryCache},
		{"dial", errors.New("dial tcp 127.0.0.1:5432: refused"), CategoryNetwork},
		{"invalid", errors.New("invalid cursor"), CategoryValidation},
		{"unknown", errors.New("boom"), CategoryUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.category, Category(tt.err))
		})
	}
}

func TestSanitizeErrorProduction(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")

	assert.Equal(t, "resource not found", sanitizeError(pgx.ErrNoRows))
	assert.Equal(t, "an error occurred", sanitizeError(errors.New("boom")))
	assert.Equal(t, "", sanitizeError(nil))
}

func TestSanitizeErrorDevelopment(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")

	assert.Equal(t, "boom", sanitizeError(errors.New("boom")))
}

func TestResponders(t *testing.T) {
	tests := []struct {
		name   string
		handle func(c *gin.Context)
		status int
		code   string
	}{
		{"unauthorized", func(c *gin.Context) { Unauthorized(c, "") }, http.StatusUnauthorized, CodeUnauthorized},
		{"not found", func(c *gin.Context) { NotFound(c, "room") }, http.StatusNotFound, CodeNotFound},
		{"bad request", func(c *gin.Context) { BadRequest(c, "", nil) }, http.StatusBadRequest, CodeBadRequest},
		{"internal", func(c *gin.Context) { InternalError(c, "", errors.New("boom")) }, http.StatusInternalServerError, CodeServerError},
		{"too many", func(c *gin.Context) { TooManyRequests(c, "") }, http.StatusTooManyRequests, CodeTooManyRequests},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)

			tt.handle(c)

			assert.Equal(t, tt.status, w.Code)

			var body ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.code, body.Error)
			assert.NotEmpty(t, body.Message)
		})
	}
}

func TestNotFoundMessage(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	NotFound(c, "conversation")

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "conversation not found", body.Message)
}
