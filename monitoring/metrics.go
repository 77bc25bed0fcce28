package monitoring

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
)

var (
	layoutComputations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "calendar_layouts_total",
			Help: "Week layouts served, by source tier",
		},
		[]string{"source"}, // redis, local, computed
	)

	layoutDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "calendar_layout_duration_seconds",
			Help:    "Duration of full layout computations",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12),
		},
	)

	droppedEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "calendar_events_dropped_total",
			Help: "Events dropped from rendering",
		},
		[]string{"reason"}, // normalizacion, grid
	)

	cacheOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "calendar_cache_operations_total",
			Help: "Layout cache operations",
		},
		[]string{"operation", "status"},
	)

	talleresActivos = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "talleres_activos_total",
			Help: "Currently active talleres",
		},
	)

	layoutsEnCache = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "calendar_layouts_cached_total",
			Help: "Week layouts currently cached in Redis",
		},
	)

	clasesGeneradas = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "clases_generadas_total",
			Help: "Clase records generated from horarios",
		},
	)

	checkinAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkin_attempts_total",
			Help: "Self check-in attempts",
		},
		[]string{"status"}, // ok, invalid
	)
)

type Monitor struct {
	redis *redis.Client
}

func NewMonitor(ctx context.Context, redisClient *redis.Client) *Monitor {
	monitor := &Monitor{redis: redisClient}

	go monitor.collectMetrics(ctx)

	return monitor
}

func (m *Monitor) collectMetrics(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.collectRedisGauges(ctx)
		}
	}
}

func (m *Monitor) collectRedisGauges(ctx context.Context) {
	if activos, err := m.redis.SCard(ctx, "talleres:activos").Result(); err == nil {
		talleresActivos.Set(float64(activos))
	}

	cached, _ := m.redis.Keys(ctx, "calendario:*").Result()
	layoutsEnCache.Set(float64(len(cached)))
}

// TrackLayout records one served layout and, for full computations, its
// duration.
func (m *Monitor) TrackLayout(source string, duration time.Duration) {
	layoutComputations.WithLabelValues(source).Inc()
	if source == "computed" {
		layoutDuration.Observe(duration.Seconds())
	}
}

func (m *Monitor) TrackDropped(reason string, count int) {
	if count > 0 {
		droppedEvents.WithLabelValues(reason).Add(float64(count))
	}
}

func (m *Monitor) TrackCacheOperation(operation, status string) {
	cacheOperations.WithLabelValues(operation, status).Inc()
}

func (m *Monitor) TrackClasesGeneradas(count int) {
	clasesGeneradas.Add(float64(count))
}

func (m *Monitor) TrackCheckin(status string) {
	checkinAttempts.WithLabelValues(status).Inc()
}
