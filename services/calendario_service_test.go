package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talleres-system/calendar"
	"talleres-system/config"
	"talleres-system/models"
)

func testConfig() *config.Config {
	return &config.Config{
		CacheTTL:             10 * time.Minute,
		LocalCacheTTL:        time.Minute,
		CacheCleanupInterval: time.Minute,
	}
}

func buildOneSlot(ctx context.Context) ([]models.ScheduleRecord, error) {
	return []models.ScheduleRecord{
		models.RecurringSlot{
			ID:           "h1",
			TallerNombre: "Yoga",
			DiaSemana:    "lunes",
			HoraInicio:   "10:00",
			HoraFin:      "11:00",
		},
	}, nil
}

func TestWeekLayoutRedisHit(t *testing.T) {
	db, mock := redismock.NewClientMock()
	svc := NewCalendarService(db, nil, nil, testConfig(), calendar.DefaultGridConfig())

	cached := calendar.Layout(nil, calendar.DefaultGridConfig())
	data, err := json.Marshal(cached)
	require.NoError(t, err)

	mock.ExpectGet("calendario:semana:2025-11-17:escritorio").SetVal(string(data))

	layout, source, err := svc.WeekLayout(context.Background(), "semana:2025-11-17:escritorio", func(ctx context.Context) ([]models.ScheduleRecord, error) {
		t.Fatal("build should not run on a cache hit")
		return nil, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "redis", source)
	assert.Equal(t, cached.GridStart, layout.GridStart)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWeekLayoutMissComputesAndStores(t *testing.T) {
	db, mock := redismock.NewClientMock()
	svc := NewCalendarService(db, nil, nil, testConfig(), calendar.DefaultGridConfig())

	key := "calendario:semana:2025-11-17:escritorio"
	mock.ExpectGet(key).RedisNil()
	mock.Regexp().ExpectSet(key, `.*`, 10*time.Minute).SetVal("OK")

	layout, source, err := svc.WeekLayout(context.Background(), "semana:2025-11-17:escritorio", buildOneSlot)
	require.NoError(t, err)
	assert.Equal(t, "computed", source)
	require.Len(t, layout.Days, 7)
	assert.Len(t, layout.Days[0].Events, 1)
	assert.Equal(t, "Yoga", layout.Days[0].Events[0].Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWeekLayoutLocalTierWhenRedisDown(t *testing.T) {
	db, mock := redismock.NewClientMock()
	svc := NewCalendarService(db, nil, nil, testConfig(), calendar.DefaultGridConfig())

	key := "calendario:semana:2025-11-17:movil"
	down := errors.New("connection refused")
	mock.ExpectGet(key).SetErr(down)
	mock.Regexp().ExpectSet(key, `.*`, 10*time.Minute).SetErr(down)
	mock.ExpectGet(key).SetErr(down)

	_, source, err := svc.WeekLayout(context.Background(), "semana:2025-11-17:movil", buildOneSlot)
	require.NoError(t, err)
	assert.Equal(t, "computed", source)

	// second call should come out of the in-process tier
	_, source, err = svc.WeekLayout(context.Background(), "semana:2025-11-17:movil", func(ctx context.Context) ([]models.ScheduleRecord, error) {
		t.Fatal("build should not run when the local tier has the layout")
		return nil, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "local", source)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWeekLayoutBuildError(t *testing.T) {
	db, mock := redismock.NewClientMock()
	svc := NewCalendarService(db, nil, nil, testConfig(), calendar.DefaultGridConfig())

	mock.ExpectGet("calendario:semana:x").RedisNil()

	_, _, err := svc.WeekLayout(context.Background(), "semana:x", func(ctx context.Context) ([]models.ScheduleRecord, error) {
		return nil, errors.New("db unavailable")
	})
	assert.Error(t, err)
}

func TestInvalidateTaller(t *testing.T) {
	db, mock := redismock.NewClientMock()
	svc := NewCalendarService(db, nil, nil, testConfig(), calendar.DefaultGridConfig())

	keys := []string{"calendario:semana:2025-11-17:movil", "calendario:taller:t1:escritorio"}
	mock.ExpectKeys("calendario:*").SetVal(keys)
	mock.ExpectDel(keys...).SetVal(int64(len(keys)))

	svc.local.Set("calendario:semana:2025-11-17:movil", models.WeekLayout{}, time.Minute)
	svc.InvalidateTaller(context.Background(), "t1")

	_, found := svc.local.Get("calendario:semana:2025-11-17:movil")
	assert.False(t, found, "local tier should be flushed")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvalidateTallerEmptyKeyspace(t *testing.T) {
	db, mock := redismock.NewClientMock()
	svc := NewCalendarService(db, nil, nil, testConfig(), calendar.DefaultGridConfig())

	mock.ExpectKeys("calendario:*").SetVal([]string{})

	svc.InvalidateTaller(context.Background(), "t1")
	assert.NoError(t, mock.ExpectationsWereMet())
}
