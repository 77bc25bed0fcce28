package security

import (
	"fmt"
	"strings"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/redis/go-redis/v9"
)

type RateLimiter struct {
	redis     *redis.Client
	perMinute int64
}

func NewRateLimiter(redisClient *redis.Client) *RateLimiter {
	return &RateLimiter{redis: redisClient, perMinute: 60}
}

// ScrapeRateLimit caps requests per client IP on the metrics/admin surface.
// The window is a one-minute Redis counter keyed by IP.
func (r *RateLimiter) ScrapeRateLimit() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			key := fmt.Sprintf("ratelimit:metrics:%s", ip)
			ctx := c.Request().Context()

			count, err := r.redis.Incr(ctx, key).Result()
			if err == nil {
				if count == 1 {
					r.redis.Expire(ctx, key, time.Minute)
				}
				if count > r.perMinute {
					return c.JSON(429, map[string]string{
						"error": "Too many requests",
					})
				}
			}
			// Redis being down never blocks scrapes

			return next(c)
		}
	}
}

// BlockScrapers rejects obvious bot user agents on public surfaces.
func (r *RateLimiter) BlockScrapers() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if isSuspiciousUserAgent(c.Request().Header.Get("User-Agent")) {
				return c.JSON(403, map[string]string{
					"error": "Access denied",
				})
			}
			return next(c)
		}
	}
}

func isSuspiciousUserAgent(ua string) bool {
	suspicious := []string{"bot", "crawler", "spider", "scraper"}
	for _, pattern := range suspicious {
		if strings.Contains(strings.ToLower(ua), pattern) {
			return true
		}
	}
	return false
}
