package monitoring

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
)

func TestCollectMetricsStopsOnCancel(t *testing.T) {
	db, _ := redismock.NewClientMock()
	monitor := &Monitor{redis: db}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		monitor.collectMetrics(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("collectMetrics kept running after cancel")
	}
}

func TestCollectRedisGauges(t *testing.T) {
	db, mock := redismock.NewClientMock()
	monitor := &Monitor{redis: db}

	mock.ExpectSCard("talleres:activos").SetVal(3)
	mock.ExpectKeys("calendario:*").SetVal([]string{"calendario:horarios", "calendario:semana:2025-11-17"})

	monitor.collectRedisGauges(context.Background())
	assert.NoError(t, mock.ExpectationsWereMet())
}
