package middleware

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	redisclient "github.com/nexkart/marketplace/config/redis"
	"github.com/nexkart/marketplace/logger"
	"github.com/ulule/limiter/v3"
	ginmiddleware "github.com/ulule/limiter/v3/drivers/middleware/gin"
	redisstore "github.com/ulule/limiter/v3/drivers/store/redis"
)

// NewRateLimiter builds a per-user rate limiting middleware for a route.
// rateStr uses the limiter format, e.g. "5-M" for five requests per minute.
// If Redis is unavailable the middleware passes requests through, so rate
// limiting never takes the financial endpoints down with it.
func NewRateLimiter(rateStr, routeID string) gin.HandlerFunc {
	rate, err := limiter.NewRateFromFormatted(rateStr)
	if err != nil {
		logger.ErrorLogger.Errorf("Invalid rate %q for route %s: %v", rateStr, routeID, err)
		return func(c *gin.Context) { c.Next() }
	}

	rdb, err := redisclient.GetRedisClient(context.Background())
	if err != nil {
		logger.WarnLogger.Warnf("Rate limiter disabled for route %s: %v", routeID, err)
		return func(c *gin.Context) { c.Next() }
	}

	store, err := redisstore.NewStoreWithOptions(rdb, limiter.StoreOptions{
		Prefix:   fmt.Sprintf("rate_limiter:%s", routeID),
		MaxRetry: 3,
	})
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to create redis store for route %s: %v", routeID, err)
		return func(c *gin.Context) { c.Next() }
	}

	instance := limiter.New(store, rate)

	return ginmiddleware.NewMiddleware(instance, ginmiddleware.WithKeyGetter(func(c *gin.Context) string {
		// Key on the authenticated user when present, client IP otherwise.
		if sub, exists := c.Get("sub"); exists {
			if s, ok := sub.(string); ok {
				return s
			}
		}
		return c.ClientIP()
	}))
}
