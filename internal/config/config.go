package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultUploadMaxBytes is the largest accepted attachment (10 MiB).
	DefaultUploadMaxBytes int64 = 10 << 20

	defaultJWTExpiry    = 24 * time.Hour
	defaultUserCacheTTL = 10 * time.Minute
)

// Config holds application configuration
type Config struct {
	Env  string `yaml:"env"`
	Port string `yaml:"port"`

	// LogLevel overrides the environment's default level when set.
	LogLevel string `yaml:"log_level"`

	// Database
	DBDriver   string `yaml:"db_driver"`
	DBHost     string `yaml:"db_host"`
	DBPort     string `yaml:"db_port"`
	DBUser     string `yaml:"db_user"`
	DBPassword string `yaml:"db_password"`
	DBName     string `yaml:"db_name"`
	DBSSLMode  string `yaml:"db_sslmode"`
	SQLitePath string `yaml:"sqlite_path"`

	// JWT
	JWTSecret        string        `yaml:"jwt_secret"`
	JWTExpirationDur time.Duration `yaml:"-"`

	// Object storage
	StorageDriver      string `yaml:"storage_driver"`
	GCSBucket          string `yaml:"gcs_bucket_name"`
	GCSProjectID       string `yaml:"gcs_project_id"`
	GCSCredentialsJSON string `yaml:"-"`
	GCSCredentialsFile string `yaml:"gcs_credentials_file"`
	StoragePublicURL   string `yaml:"storage_public_base_url"`
	UploadMaxBytes     int64  `yaml:"upload_max_bytes"`

	// Redis user cache, disabled when RedisAddr is empty
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"-"`
	UserCacheTTL  time.Duration `yaml:"-"`

	// AMQP orphaned-blob events, disabled when AMQPURL is empty
	AMQPURL         string `yaml:"amqp_url"`
	AMQPExchange    string `yaml:"amqp_exchange"`
	AMQPOrphanQueue string `yaml:"amqp_orphan_queue"`

	CORSAllowedOrigin string `yaml:"cors_allowed_origin"`
}

var appConfig *Config

// Defaults returns the configuration used when nothing else is set.
func Defaults() *Config {
	return &Config{
		Env:               "development",
		Port:              "8080",
		DBDriver:          "postgres",
		DBHost:            "localhost",
		DBPort:            "5432",
		DBUser:            "fintrack",
		DBPassword:        "fintrack",
		DBName:            "fintrack",
		DBSSLMode:         "disable",
		SQLitePath:        "fintrack.db",
		JWTSecret:         "fallback-secret-key-for-dev-only",
		JWTExpirationDur:  defaultJWTExpiry,
		StorageDriver:     "gcs",
		StoragePublicURL:  "https://storage.googleapis.com",
		UploadMaxBytes:    DefaultUploadMaxBytes,
		UserCacheTTL:      defaultUserCacheTTL,
		AMQPExchange:      "fintrack",
		AMQPOrphanQueue:   "fintrack.orphaned-blobs",
		CORSAllowedOrigin: "*",
	}
}

// Load loads configuration from defaults, an optional YAML file named by
// FINTRACK_CONFIG, and environment variables, in that order of precedence.
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := Defaults()

	if path := os.Getenv("FINTRACK_CONFIG"); path != "" {
		if err := config.mergeFile(path); err != nil {
			return nil, err
		}
	}

	config.applyEnv()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	appConfig = config
	return config, nil
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

// Validate rejects combinations the server cannot start with.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (use postgres or sqlite)", c.DBDriver)
	}
	switch c.StorageDriver {
	case "gcs":
		if c.GCSBucket == "" {
			return fmt.Errorf("GCS_BUCKET_NAME is required when STORAGE_DRIVER=gcs")
		}
	case "memory":
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER %q (use gcs or memory)", c.StorageDriver)
	}
	if c.UploadMaxBytes <= 0 {
		return fmt.Errorf("upload max bytes must be positive, got %d", c.UploadMaxBytes)
	}
	return nil
}

// IsProduction reports whether the server runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Env = getEnv("ENV", c.Env)
	c.Port = getEnv("PORT", c.Port)
	c.LogLevel = strings.ToLower(getEnv("LOG_LEVEL", c.LogLevel))

	c.DBDriver = strings.ToLower(getEnv("DB_DRIVER", c.DBDriver))
	c.DBHost = getEnv("DB_HOST", c.DBHost)
	c.DBPort = getEnv("DB_PORT", c.DBPort)
	c.DBUser = getEnv("DB_USER", c.DBUser)
	c.DBPassword = getEnv("DB_PASSWORD", c.DBPassword)
	c.DBName = getEnv("DB_NAME", c.DBName)
	c.DBSSLMode = getEnv("DB_SSLMODE", c.DBSSLMode)
	c.SQLitePath = getEnv("SQLITE_PATH", c.SQLitePath)

	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
	c.JWTExpirationDur = getDuration("JWT_EXPIRES_IN", c.JWTExpirationDur)

	c.StorageDriver = strings.ToLower(getEnv("STORAGE_DRIVER", c.StorageDriver))
	c.GCSBucket = getEnv("GCS_BUCKET_NAME", c.GCSBucket)
	c.GCSProjectID = getEnv("GCS_PROJECT_ID", c.GCSProjectID)
	c.GCSCredentialsJSON = getEnv("GCS_CREDENTIALS", c.GCSCredentialsJSON)
	c.GCSCredentialsFile = getEnv("GCS_CREDENTIALS_FILE", c.GCSCredentialsFile)
	c.StoragePublicURL = strings.TrimRight(getEnv("STORAGE_PUBLIC_BASE_URL", c.StoragePublicURL), "/")

	if v := os.Getenv("UPLOAD_MAX_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			log.Printf("Warning: invalid UPLOAD_MAX_BYTES value '%s', falling back to %d\n", v, DefaultUploadMaxBytes)
			n = DefaultUploadMaxBytes
		}
		c.UploadMaxBytes = n
	}

	c.RedisAddr = getEnv("REDIS_ADDR", c.RedisAddr)
	c.RedisPassword = getEnv("REDIS_PASSWORD", c.RedisPassword)
	c.UserCacheTTL = getDuration("USER_CACHE_TTL", c.UserCacheTTL)

	c.AMQPURL = getEnv("AMQP_URL", c.AMQPURL)
	c.AMQPExchange = getEnv("AMQP_EXCHANGE", c.AMQPExchange)
	c.AMQPOrphanQueue = getEnv("AMQP_ORPHAN_QUEUE", c.AMQPOrphanQueue)

	c.CORSAllowedOrigin = getEnv("CORS_ALLOWED_ORIGIN", c.CORSAllowedOrigin)
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Printf("Warning: invalid %s value '%s', falling back to %s\n", key, v, defaultValue)
		return defaultValue
	}
	return d
}
