package ratelimit

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"

	"codeberg.org/roomchat/server/internal/errors"
	"codeberg.org/roomchat/server/internal/logger"
)

const keyPrefix = "ratelimit:"

// builds a per-ip limiter middleware for rate ("10-M", "100-H", ...).
// counters live in redis when client is non-nil, otherwise in memory
func Middleware(name, rate string, client *redis.Client) (gin.HandlerFunc, error) {
	parsed, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		return nil, fmt.Errorf("invalid rate %q: %w", rate, err)
	}

	prefix := keyPrefix + name

	var store limiter.Store
	if client != nil {
		store, err = sredis.NewStoreWithOptions(client, limiter.StoreOptions{Prefix: prefix})
		if err != nil {
			return nil, fmt.Errorf("failed to create redis limiter store: %w", err)
		}
	} else {
		store = memory.NewStoreWithOptions(limiter.StoreOptions{Prefix: prefix})
	}

	return mgin.NewMiddleware(limiter.New(store, parsed),
		mgin.WithLimitReachedHandler(func(c *gin.Context) {
			logger.Warn("rate limit exceeded",
				"limiter", name,
				"ip", c.ClientIP(),
				"path", c.Request.URL.Path,
			)

			errors.TooManyRequests(c, "too many attempts, try again later")
		}),
		mgin.WithErrorHandler(func(c *gin.Context, err error) {
			// fail open
			logger.ErrorErr(err, "rate limiter store failed", "limiter", name)
			c.Next()
		}),
	), nil
}
