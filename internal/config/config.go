package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is loaded once at startup and passed by reference; no component
// reads the environment after this.
type Config struct {
	HospitalID  string
	ProductCode string

	// Stock and simulation
	DailyConsumptionAvg  int
	ReorderThresholdDays float64
	InitialStock         int
	ConsumptionVariation float64
	SpikeProbability     float64
	SpikeMultiplier      float64

	// Monitor loop
	CheckInterval time.Duration

	// Sync channel
	SyncAddr       string
	SyncTimeout    time.Duration
	SyncRetryCount int
	SyncRetryDelay time.Duration

	// Redis channels
	RedisAddr          string
	InventoryStream    string
	OrderCommandStream string
	ConsumerGroup      string
	ConsumerName       string
	ConsumerBlock      time.Duration

	MySQLDSN string

	HTTPPort string
	LogLevel string
}

func Load() *Config {
	godotenv.Load()

	return &Config{
		HospitalID:  getEnv("HOSPITAL_ID", "Hospital-E"),
		ProductCode: getEnv("PRODUCT_CODE", "PHYSIO-SALINE-500ML"),

		DailyConsumptionAvg:  getEnvInt("DAILY_CONSUMPTION_AVG", 68),
		ReorderThresholdDays: getEnvFloat("REORDER_THRESHOLD_DAYS", 2.0),
		InitialStock:         getEnvInt("INITIAL_STOCK", 200),
		ConsumptionVariation: getEnvFloat("CONSUMPTION_VARIATION", 0.15),
		SpikeProbability:     getEnvFloat("SPIKE_PROBABILITY", 0.05),
		SpikeMultiplier:      getEnvFloat("SPIKE_MULTIPLIER", 1.5),

		CheckInterval: getEnvDuration("STOCK_CHECK_INTERVAL", 60*time.Second),

		SyncAddr:       getEnv("SYNC_CHANNEL_ADDR", "localhost:50051"),
		SyncTimeout:    getEnvDuration("SYNC_TIMEOUT", 30*time.Second),
		SyncRetryCount: getEnvInt("SYNC_RETRY_COUNT", 3),
		SyncRetryDelay: getEnvDuration("SYNC_RETRY_DELAY", 5*time.Second),

		RedisAddr:          getEnv("REDIS_ADDR", "localhost:6379"),
		InventoryStream:    getEnv("INVENTORY_STREAM", "inventory-low-events"),
		OrderCommandStream: getEnv("ORDER_COMMAND_STREAM", "order-commands"),
		ConsumerGroup:      getEnv("CONSUMER_GROUP", "hospital-e-consumer"),
		ConsumerName:       getEnv("CONSUMER_NAME", "order-ms-1"),
		ConsumerBlock:      getEnvDuration("CONSUMER_BLOCK", 5*time.Second),

		MySQLDSN: getEnv("MYSQL_DSN", "root:root@tcp(localhost:3306)/hospital_e?parseTime=true"),

		HTTPPort: getEnv("HTTP_PORT", "8081"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return def
}
