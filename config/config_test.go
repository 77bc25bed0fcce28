package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talleres-system/models"
)

func TestGridConfigDefaults(t *testing.T) {
	cfg := &Config{GridStart: "08:00", GridEnd: "22:00"}

	grid, err := cfg.GridConfig()
	require.NoError(t, err)
	assert.Equal(t, 8*60, grid.DayStartMin)
	assert.Equal(t, 22*60, grid.DayEndMin)
	assert.Equal(t, models.WeekDays, grid.Days)
}

func TestGridConfigInvalidTimesKeepDefaults(t *testing.T) {
	cfg := &Config{GridStart: "banana", GridEnd: "22:00"}

	grid, err := cfg.GridConfig()
	require.NoError(t, err)
	assert.Equal(t, 8*60, grid.DayStartMin)
}

func TestGridConfigEmptyWindow(t *testing.T) {
	cfg := &Config{GridStart: "22:00", GridEnd: "08:00"}

	_, err := cfg.GridConfig()
	assert.Error(t, err)
}

func TestGridConfigYAMLOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grid.yml")
	data := []byte("hora_desde: \"07:30\"\nhora_hasta: \"23:00\"\ndias: [lunes, miércoles, Viernes]\n")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg := &Config{GridStart: "08:00", GridEnd: "22:00", GridConfigPath: path}

	grid, err := cfg.GridConfig()
	require.NoError(t, err)
	assert.Equal(t, 7*60+30, grid.DayStartMin)
	assert.Equal(t, 23*60, grid.DayEndMin)
	assert.Equal(t, []models.DayKey{models.DayLunes, models.DayMiercoles, models.DayViernes}, grid.Days)
}

func TestGridConfigMissingFile(t *testing.T) {
	cfg := &Config{GridStart: "08:00", GridEnd: "22:00", GridConfigPath: "/no/such/file.yml"}

	_, err := cfg.GridConfig()
	assert.Error(t, err)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("GRID_START", "09:00")
	t.Setenv("GENERATION_HORIZON_DAYS", "45")
	t.Setenv("ENABLE_METRICS", "false")

	cfg := LoadConfig()
	assert.Equal(t, "09:00", cfg.GridStart)
	assert.Equal(t, 45, cfg.GenerationHorizonDays)
	assert.False(t, cfg.EnableMetrics)
}
