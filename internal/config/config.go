// backend-go/internal/config/config.go
package config

import (
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Backend   BackendConfig
	Poll      PollConfig
	Threshold ThresholdConfig
	Cache     CacheConfig
	Archive   ArchiveConfig
	Snapshot  SnapshotConfig
}

type ServerConfig struct {
	Port           string
	OpsPort        string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

// BackendConfig points at the POS document-store backend.
type BackendConfig struct {
	BaseURL   string
	TimeoutMS int
}

type PollConfig struct {
	IntervalMS     int
	MaxRetries     int
	RetryBackoffMS int
}

// ThresholdConfig seeds the severity bounds at process start.
type ThresholdConfig struct {
	CriticalFloor int
	WarningLow    int
	WarningHigh   int
}

type CacheConfig struct {
	Enabled            bool
	RedisURL           string
	RedisHost          string
	RedisPort          string
	RedisPassword      string
	RedisDB            int
	MovementTTLSeconds int
}

// ArchiveConfig is the optional postgres sink for per-tick audit rows.
type ArchiveConfig struct {
	Enabled  bool
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// SnapshotConfig is the optional object-store sink for raw snapshots.
type SnapshotConfig struct {
	Enabled   bool
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		// Set default values
		viper.SetDefault("SERVER_PORT", "8080")
		viper.SetDefault("OPS_PORT", "8081")
		viper.SetDefault("SERVER_MODE", "debug")
		viper.SetDefault("SERVER_READ_TIMEOUT", 15)
		viper.SetDefault("SERVER_WRITE_TIMEOUT", 15)
		viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
		viper.SetDefault("BACKEND_BASE_URL", "http://localhost:3000")
		viper.SetDefault("BACKEND_TIMEOUT_MS", 10000)
		viper.SetDefault("POLL_INTERVAL_MS", 2000)
		viper.SetDefault("POLL_MAX_RETRIES", 2)
		viper.SetDefault("POLL_RETRY_BACKOFF_MS", 500)
		viper.SetDefault("THRESHOLD_CRITICAL", 200)
		viper.SetDefault("THRESHOLD_WARNING_LOW", 90)
		viper.SetDefault("THRESHOLD_WARNING_HIGH", 110)
		viper.SetDefault("CACHE_ENABLED", false)
		viper.SetDefault("REDIS_URL", "")
		viper.SetDefault("REDIS_HOST", "127.0.0.1")
		viper.SetDefault("REDIS_PORT", "6379")
		viper.SetDefault("REDIS_PASSWORD", "")
		viper.SetDefault("REDIS_DB", 0)
		viper.SetDefault("CACHE_MOVEMENT_TTL_SECONDS", 30)
		viper.SetDefault("ARCHIVE_ENABLED", false)
		viper.SetDefault("ARCHIVE_DB_HOST", "localhost")
		viper.SetDefault("ARCHIVE_DB_PORT", "5432")
		viper.SetDefault("ARCHIVE_DB_USER", "postgres")
		viper.SetDefault("ARCHIVE_DB_PASSWORD", "postgres")
		viper.SetDefault("ARCHIVE_DB_NAME", "pos_reconcile")
		viper.SetDefault("ARCHIVE_DB_SSLMODE", "disable")
		viper.SetDefault("SNAPSHOT_ENABLED", false)
		viper.SetDefault("SNAPSHOT_ENDPOINT", "")
		viper.SetDefault("SNAPSHOT_ACCESS_KEY", "")
		viper.SetDefault("SNAPSHOT_SECRET_KEY", "")
		viper.SetDefault("SNAPSHOT_BUCKET", "pos-snapshots")
		viper.SetDefault("SNAPSHOT_USE_SSL", true)

		// Read from environment variables
		viper.AutomaticEnv()

		instance = &Config{
			Server: ServerConfig{
				Port:           viper.GetString("SERVER_PORT"),
				OpsPort:        viper.GetString("OPS_PORT"),
				Mode:           viper.GetString("SERVER_MODE"),
				ReadTimeout:    viper.GetInt("SERVER_READ_TIMEOUT"),
				WriteTimeout:   viper.GetInt("SERVER_WRITE_TIMEOUT"),
				AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
			},
			Backend: BackendConfig{
				BaseURL:   viper.GetString("BACKEND_BASE_URL"),
				TimeoutMS: viper.GetInt("BACKEND_TIMEOUT_MS"),
			},
			Poll: PollConfig{
				IntervalMS:     viper.GetInt("POLL_INTERVAL_MS"),
				MaxRetries:     viper.GetInt("POLL_MAX_RETRIES"),
				RetryBackoffMS: viper.GetInt("POLL_RETRY_BACKOFF_MS"),
			},
			Threshold: ThresholdConfig{
				CriticalFloor: viper.GetInt("THRESHOLD_CRITICAL"),
				WarningLow:    viper.GetInt("THRESHOLD_WARNING_LOW"),
				WarningHigh:   viper.GetInt("THRESHOLD_WARNING_HIGH"),
			},
			Cache: CacheConfig{
				Enabled:            viper.GetBool("CACHE_ENABLED"),
				RedisURL:           viper.GetString("REDIS_URL"),
				RedisHost:          viper.GetString("REDIS_HOST"),
				RedisPort:          viper.GetString("REDIS_PORT"),
				RedisPassword:      viper.GetString("REDIS_PASSWORD"),
				RedisDB:            viper.GetInt("REDIS_DB"),
				MovementTTLSeconds: viper.GetInt("CACHE_MOVEMENT_TTL_SECONDS"),
			},
			Archive: ArchiveConfig{
				Enabled:  viper.GetBool("ARCHIVE_ENABLED"),
				Host:     viper.GetString("ARCHIVE_DB_HOST"),
				Port:     viper.GetString("ARCHIVE_DB_PORT"),
				User:     viper.GetString("ARCHIVE_DB_USER"),
				Password: viper.GetString("ARCHIVE_DB_PASSWORD"),
				DBName:   viper.GetString("ARCHIVE_DB_NAME"),
				SSLMode:  viper.GetString("ARCHIVE_DB_SSLMODE"),
			},
			Snapshot: SnapshotConfig{
				Enabled:   viper.GetBool("SNAPSHOT_ENABLED"),
				Endpoint:  viper.GetString("SNAPSHOT_ENDPOINT"),
				AccessKey: viper.GetString("SNAPSHOT_ACCESS_KEY"),
				SecretKey: viper.GetString("SNAPSHOT_SECRET_KEY"),
				Bucket:    viper.GetString("SNAPSHOT_BUCKET"),
				UseSSL:    viper.GetBool("SNAPSHOT_USE_SSL"),
			},
		}
	})

	return instance
}
