package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	gocache "github.com/patrickmn/go-cache"
	pubnub "github.com/pubnub/go"
	"github.com/redis/go-redis/v9"

	"talleres-system/calendar"
	"talleres-system/config"
	"talleres-system/models"
	"talleres-system/monitoring"
	"talleres-system/utils"
)

// BuildFunc produces the raw schedule records for one cache key when the
// layout is not cached.
type BuildFunc func(ctx context.Context) ([]models.ScheduleRecord, error)

// CalendarService serves precomputed week layouts. Redis is the shared
// cache tier; a small in-process TTL cache keeps layouts available while
// Redis is unreachable (the circuit breaker decides when to stop trying).
type CalendarService struct {
	Redis   *redis.Client
	local   *gocache.Cache
	breaker *utils.CircuitBreaker
	pubnub  *pubnub.PubNub
	monitor *monitoring.Monitor
	Config  *config.Config
	grid    calendar.GridConfig
}

func NewCalendarService(redisClient *redis.Client, pn *pubnub.PubNub, monitor *monitoring.Monitor, cfg *config.Config, grid calendar.GridConfig) *CalendarService {
	return &CalendarService{
		Redis:   redisClient,
		local:   gocache.New(cfg.LocalCacheTTL, cfg.CacheCleanupInterval),
		breaker: utils.NewCircuitBreaker("calendario-redis"),
		pubnub:  pn,
		monitor: monitor,
		Config:  cfg,
		grid:    grid,
	}
}

// Grid exposes the configured layout window.
func (s *CalendarService) Grid() calendar.GridConfig {
	return s.grid
}

// WeekLayout returns the layout for cacheKey, serving from Redis, then the
// local tier, then computing from build. The returned source is one of
// "redis", "local" or "computed".
func (s *CalendarService) WeekLayout(ctx context.Context, cacheKey string, build BuildFunc) (models.WeekLayout, string, error) {
	key := "calendario:" + cacheKey

	if layout, ok := s.fromRedis(ctx, key); ok {
		s.track("redis", 0)
		return layout, "redis", nil
	}

	if cached, ok := s.local.Get(key); ok {
		if layout, ok := cached.(models.WeekLayout); ok {
			s.track("local", 0)
			return layout, "local", nil
		}
	}

	started := time.Now()

	records, err := build(ctx)
	if err != nil {
		return models.WeekLayout{}, "", fmt.Errorf("build schedule records: %w", err)
	}

	events, skipped := calendar.ToCalendarEvents(records)
	layout := calendar.Layout(events, s.grid)

	if s.monitor != nil {
		s.monitor.TrackDropped("normalizacion", skipped)
		s.monitor.TrackDropped("grid", layout.Dropped)
	}
	s.track("computed", time.Since(started))

	s.store(ctx, key, layout)
	return layout, "computed", nil
}

// InvalidateTaller drops every cached layout the taller can appear in and
// notifies subscribed clients. Layouts are cheap to recompute, so the whole
// calendario keyspace goes.
func (s *CalendarService) InvalidateTaller(ctx context.Context, tallerID string) {
	s.local.Flush()

	_, err := s.breaker.Execute(ctx, func() (any, error) {
		keys, err := s.Redis.Keys(ctx, "calendario:*").Result()
		if err != nil {
			return nil, err
		}
		if len(keys) > 0 {
			if err := s.Redis.Del(ctx, keys...).Err(); err != nil {
				return nil, err
			}
		}
		return len(keys), nil
	})
	if err != nil {
		log.Printf("Error invalidating calendar cache: %v", err)
		s.trackCacheOp("invalidate", "error")
	} else {
		s.trackCacheOp("invalidate", "ok")
	}

	if s.pubnub != nil && tallerID != "" {
		channel := fmt.Sprintf("taller-%s", tallerID)
		s.pubnub.Publish().
			Channel(channel).
			Message(map[string]any{
				"type":      "calendario_actualizado",
				"taller_id": tallerID,
			}).
			Execute()
	}
}

func (s *CalendarService) fromRedis(ctx context.Context, key string) (models.WeekLayout, bool) {
	res, err := s.breaker.Execute(ctx, func() (any, error) {
		val, err := s.Redis.Get(ctx, key).Result()
		if err == redis.Nil {
			return nil, nil // a miss is not a Redis failure
		}
		if err != nil {
			return nil, err
		}
		return val, nil
	})
	if err != nil {
		s.trackCacheOp("get", "error")
		return models.WeekLayout{}, false
	}
	if res == nil {
		s.trackCacheOp("get", "miss")
		return models.WeekLayout{}, false
	}

	var layout models.WeekLayout
	if err := json.Unmarshal([]byte(res.(string)), &layout); err != nil {
		s.trackCacheOp("get", "corrupt")
		return models.WeekLayout{}, false
	}
	s.trackCacheOp("get", "hit")
	return layout, true
}

func (s *CalendarService) store(ctx context.Context, key string, layout models.WeekLayout) {
	s.local.Set(key, layout, s.Config.LocalCacheTTL)

	data, err := json.Marshal(layout)
	if err != nil {
		return
	}

	_, err = s.breaker.Execute(ctx, func() (any, error) {
		return nil, s.Redis.Set(ctx, key, data, s.Config.CacheTTL).Err()
	})
	if err != nil {
		log.Printf("Error caching layout %s: %v", key, err)
		s.trackCacheOp("set", "error")
		return
	}
	s.trackCacheOp("set", "ok")
}

func (s *CalendarService) track(source string, duration time.Duration) {
	if s.monitor != nil {
		s.monitor.TrackLayout(source, duration)
	}
}

func (s *CalendarService) trackCacheOp(operation, status string) {
	if s.monitor != nil {
		s.monitor.TrackCacheOperation(operation, status)
	}
}
