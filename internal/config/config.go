package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Backend
	BackendURL         string
	HTTPTimeoutSeconds int

	// Credentials
	DriverUsername  string
	DriverPassword  string
	ManagerUsername string
	ManagerPassword string

	// Simulation
	RouteFile      string
	TickIntervalMS int
	Seed           int64

	// Recall
	DepotLat      float64
	DepotLng      float64
	RecallStatus  string
	RecallDelayMS int

	// Redis live state, disabled when RedisAddr is empty
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// TimescaleDB history
	DBEnabled  bool
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBMaxConns int32

	// Snapshot fan-out
	SnapshotChannelSize int
	DBBatchSize         int
	DBFlushIntervalMS   int

	// Metrics and WebSocket listener, disabled when HTTPPort is empty
	HTTPPort string

	// Logging
	LogLevel  string
	LogFile   string
	LogStderr bool
}

func Load() *Config {
	return &Config{
		BackendURL:          getEnv("BACKEND_URL", "http://localhost:8080"),
		HTTPTimeoutSeconds:  getEnvInt("HTTP_TIMEOUT_SECONDS", 10),
		DriverUsername:      getEnv("DRIVER_USERNAME", "Dragos"),
		DriverPassword:      getEnv("DRIVER_PASSWORD", ""),
		ManagerUsername:     getEnv("MANAGER_USERNAME", "eric"),
		ManagerPassword:     getEnv("MANAGER_PASSWORD", ""),
		RouteFile:           getEnv("ROUTE_FILE", ""),
		TickIntervalMS:      getEnvInt("TICK_INTERVAL_MS", 500),
		Seed:                int64(getEnvInt("SIM_SEED", 0)),
		DepotLat:            getEnvFloat("DEPOT_LAT", 46.7712),
		DepotLng:            getEnvFloat("DEPOT_LNG", 23.5889),
		RecallStatus:        getEnv("RECALL_STATUS", "AVAILABLE"),
		RecallDelayMS:       getEnvInt("RECALL_DELAY_MS", 100),
		RedisAddr:           getEnv("REDIS_ADDR", ""),
		RedisPassword:       getEnv("REDIS_PASSWORD", ""),
		RedisDB:             getEnvInt("REDIS_DB", 0),
		DBEnabled:           getEnvBool("DB_ENABLED", false),
		DBHost:              getEnv("DB_HOST", "localhost"),
		DBPort:              getEnv("DB_PORT", "5432"),
		DBUser:              getEnv("DB_USER", "fleet_user"),
		DBPassword:          getEnv("DB_PASSWORD", "fleet_password"),
		DBName:              getEnv("DB_NAME", "fleet_monitor"),
		DBMaxConns:          int32(getEnvInt("DB_MAX_CONNS", 4)),
		SnapshotChannelSize: getEnvInt("SNAPSHOT_CHANNEL_SIZE", 1024),
		DBBatchSize:         getEnvInt("DB_BATCH_SIZE", 50),
		DBFlushIntervalMS:   getEnvInt("DB_FLUSH_INTERVAL_MS", 1000),
		HTTPPort:            getEnv("HTTP_PORT", ""),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		LogFile:             getEnv("LOG_FILE", ""),
		LogStderr:           getEnvBool("LOG_STDERR", false),
	}
}

func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}

func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.TickIntervalMS) * time.Millisecond
}

func (c *Config) RecallDelay() time.Duration {
	return time.Duration(c.RecallDelayMS) * time.Millisecond
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
