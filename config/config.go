package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/yourusername/invoice-drafts/models"
	"github.com/yourusername/invoice-drafts/repository"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type Config struct {
	Port             string
	DatabaseURL      string
	JWTSecret        string
	JWTRefreshSecret string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	DraftTTL      time.Duration
	StorePrefix   string

	OCRProvider string
	OCRAPIURL   string
	OCRAPIToken string
	OCRTimeout  time.Duration
	GeminiKey   string
	GeminiModel string

	Minio MinioConfig

	UploadDir             string
	MaxUploadMB           int64
	SerializeUserCommands bool

	LogLevel  string
	LogFormat string
}

// MinioConfig describes the optional source-file archive. An empty Endpoint
// disables archiving.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

func (m MinioConfig) Enabled() bool {
	return m.Endpoint != ""
}

func LoadConfig() (*Config, error) {
	godotenv.Load()

	cfg := &Config{
		Port:             getEnvOrDefault("PORT", "8080"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		JWTRefreshSecret: os.Getenv("JWT_REFRESH_SECRET"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		StorePrefix:   getEnvOrDefault("STORE_PREFIX", "invoice-drafts"),

		OCRProvider: strings.ToLower(getEnvOrDefault("OCR_PROVIDER", "http")),
		OCRAPIURL:   getEnvOrDefault("OCR_API_URL", "http://localhost:8000"),
		OCRAPIToken: os.Getenv("OCR_API_TOKEN"),
		GeminiKey:   os.Getenv("GEMINI_API_KEY"),
		GeminiModel: getEnvOrDefault("GEMINI_MODEL", "gemini-1.5-flash"),

		Minio: MinioConfig{
			Endpoint:  os.Getenv("MINIO_ENDPOINT"),
			AccessKey: os.Getenv("MINIO_ACCESS_KEY"),
			SecretKey: os.Getenv("MINIO_SECRET_KEY"),
			Bucket:    getEnvOrDefault("MINIO_BUCKET", "invoices"),
		},

		UploadDir: getEnvOrDefault("UPLOAD_DIR", "uploads"),
		LogLevel:  getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "json"),
	}

	var err error
	if cfg.RedisDB, err = getEnvInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.DraftTTL, err = getEnvDuration("DRAFT_TTL", 72*time.Hour); err != nil {
		return nil, err
	}
	if cfg.OCRTimeout, err = getEnvDuration("OCR_TIMEOUT", 120*time.Second); err != nil {
		return nil, err
	}
	maxUpload, err := getEnvInt("MAX_UPLOAD_MB", 20)
	if err != nil {
		return nil, err
	}
	cfg.MaxUploadMB = int64(maxUpload)
	if cfg.Minio.UseSSL, err = getEnvBool("MINIO_USE_SSL", false); err != nil {
		return nil, err
	}
	if cfg.SerializeUserCommands, err = getEnvBool("SERIALIZE_USER_COMMANDS", false); err != nil {
		return nil, err
	}

	switch cfg.OCRProvider {
	case "http":
	case "gemini":
		if cfg.GeminiKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required when OCR_PROVIDER=gemini")
		}
	default:
		return nil, fmt.Errorf("unsupported OCR_PROVIDER %q", cfg.OCRProvider)
	}

	return cfg, nil
}

func InitDB(cfg *Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&models.User{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	if err := repository.Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

// InitRedis returns nil when no Redis address is configured; callers fall
// back to in-memory stores then.
func InitRedis(cfg *Config) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
