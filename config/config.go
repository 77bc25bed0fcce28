package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"talleres-system/calendar"
	"talleres-system/models"
)

type Config struct {
	// Server configuration
	Port        string
	Environment string

	// Redis configuration
	RedisURL      string
	RedisPassword string
	RedisDB       int

	// PubNub configuration
	PubNubPublishKey   string
	PubNubSubscribeKey string
	PubNubSecretKey    string

	// MinIO configuration (report exports)
	MinIOEndpoint   string
	MinIOAccessKey  string
	MinIOSecretKey  string
	MinIOUseSSL     bool
	ReportsBucket   string
	PresignedURLTTL time.Duration

	// Calendar cache configuration
	CacheTTL             time.Duration
	LocalCacheTTL        time.Duration
	CacheCleanupInterval time.Duration

	// Grid window configuration
	GridStart      string // HH:MM
	GridEnd        string // HH:MM
	GridConfigPath string // optional YAML overlay

	// Class generation
	GenerationHorizonDays int
	GenerationCronSpec    string

	// Check-in codes
	CheckinCodeTTL time.Duration

	// Monitoring
	EnableMetrics bool
	MetricsPort   string
}

func LoadConfig() *Config {
	// .env is optional; ignore the error in production
	_ = godotenv.Load()

	return &Config{
		// Server
		Port:        getEnv("PORT", "8090"),
		Environment: getEnv("ENVIRONMENT", "development"),

		// Redis
		RedisURL:      getEnv("REDIS_URL", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		// PubNub
		PubNubPublishKey:   getEnv("PUBNUB_PUBLISH_KEY", ""),
		PubNubSubscribeKey: getEnv("PUBNUB_SUBSCRIBE_KEY", ""),
		PubNubSecretKey:    getEnv("PUBNUB_SECRET_KEY", ""),

		// MinIO
		MinIOEndpoint:   getEnv("MINIO_ENDPOINT", "localhost:9000"),
		MinIOAccessKey:  getEnv("MINIO_ACCESS_KEY", "minioadmin"),
		MinIOSecretKey:  getEnv("MINIO_SECRET_KEY", "minioadmin"),
		MinIOUseSSL:     getEnvAsBool("MINIO_USE_SSL", false),
		ReportsBucket:   getEnv("REPORTS_BUCKET", "talleres-reportes"),
		PresignedURLTTL: getEnvAsDuration("PRESIGNED_URL_TTL", "15m"),

		// Cache
		CacheTTL:             getEnvAsDuration("CALENDAR_CACHE_TTL", "10m"),
		LocalCacheTTL:        getEnvAsDuration("LOCAL_CACHE_TTL", "2m"),
		CacheCleanupInterval: getEnvAsDuration("CACHE_CLEANUP_INTERVAL", "5m"),

		// Grid window
		GridStart:      getEnv("GRID_START", "08:00"),
		GridEnd:        getEnv("GRID_END", "22:00"),
		GridConfigPath: getEnv("GRID_CONFIG_PATH", ""),

		// Class generation
		GenerationHorizonDays: getEnvAsInt("GENERATION_HORIZON_DAYS", 30),
		GenerationCronSpec:    getEnv("GENERATION_CRON", "0 3 * * *"),

		// Check-in
		CheckinCodeTTL: getEnvAsDuration("CHECKIN_CODE_TTL", "3h"),

		// Monitoring
		EnableMetrics: getEnvAsBool("ENABLE_METRICS", true),
		MetricsPort:   getEnv("METRICS_PORT", "9090"),
	}
}

// gridFile is the optional YAML overlay for the grid window, e.g.:
//
//	hora_desde: "07:00"
//	hora_hasta: "23:00"
//	dias: [lunes, martes, miercoles, jueves, viernes, sabado]
type gridFile struct {
	HoraDesde string   `yaml:"hora_desde"`
	HoraHasta string   `yaml:"hora_hasta"`
	Dias      []string `yaml:"dias"`
}

// GridConfig resolves the layout window: defaults, then env, then the YAML
// file when configured.
func (c *Config) GridConfig() (calendar.GridConfig, error) {
	grid := calendar.DefaultGridConfig()

	start, end := c.GridStart, c.GridEnd
	var dias []string

	if c.GridConfigPath != "" {
		data, err := os.ReadFile(c.GridConfigPath)
		if err != nil {
			return grid, fmt.Errorf("read grid config %s: %w", c.GridConfigPath, err)
		}
		var gf gridFile
		if err := yaml.Unmarshal(data, &gf); err != nil {
			return grid, fmt.Errorf("parse grid config %s: %w", c.GridConfigPath, err)
		}
		if gf.HoraDesde != "" {
			start = gf.HoraDesde
		}
		if gf.HoraHasta != "" {
			end = gf.HoraHasta
		}
		dias = gf.Dias
	}

	if min, ok := calendar.ToMinutes(start); ok {
		grid.DayStartMin = min
	} else {
		log.Printf("Invalid grid start %q, keeping %s", start, calendar.MinutesToClock(grid.DayStartMin))
	}
	if min, ok := calendar.ToMinutes(end); ok {
		grid.DayEndMin = min
	} else {
		log.Printf("Invalid grid end %q, keeping %s", end, calendar.MinutesToClock(grid.DayEndMin))
	}
	if grid.DayEndMin <= grid.DayStartMin {
		return grid, fmt.Errorf("grid window %s-%s is empty", start, end)
	}

	if len(dias) > 0 {
		grid.Days = make([]models.DayKey, 0, len(dias))
		for _, d := range dias {
			grid.Days = append(grid.Days, calendar.NormalizeDay(d))
		}
	}

	return grid, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
