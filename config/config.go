package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	DatabaseDriver string
	DatabaseURL    string
	JWTSecret      string
	Port           string
	Environment    string
	LogLevel       string
	LogFormat      string
	Upload         UploadLimits
	RateLimit      RateLimit
	Kafka          Kafka
}

type UploadLimits struct {
	Dir          string
	MaxFileSize  int64
	MaxFiles     int
	ParseTimeout time.Duration
}

type RateLimit struct {
	RequestsPerSecond float64
	Burst             int
}

type Kafka struct {
	Brokers []string
	Topic   string
}

const defaultJWTSecret = "regportal-dev-secret-change-in-production"

// Load reads configuration from the environment, falling back to defaults.
// Call godotenv.Load first to pick up a .env file.
func Load() *Config {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("DATABASE_DRIVER", "sqlite")
	v.SetDefault("DATABASE_URL", "regportal.db")
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("UPLOAD_DIR", "uploads")
	v.SetDefault("MAX_FILE_SIZE", 10<<20)
	v.SetDefault("MAX_FILES", 10)
	v.SetDefault("PARSE_TIMEOUT", "30s")
	v.SetDefault("RATE_LIMIT_RPS", 10.0)
	v.SetDefault("RATE_LIMIT_BURST", 50)
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("KAFKA_TOPIC", "submission-events")

	return &Config{
		DatabaseDriver: v.GetString("DATABASE_DRIVER"),
		DatabaseURL:    v.GetString("DATABASE_URL"),
		JWTSecret:      v.GetString("JWT_SECRET"),
		Port:           v.GetString("PORT"),
		Environment:    v.GetString("ENVIRONMENT"),
		LogLevel:       v.GetString("LOG_LEVEL"),
		LogFormat:      v.GetString("LOG_FORMAT"),
		Upload: UploadLimits{
			Dir:          v.GetString("UPLOAD_DIR"),
			MaxFileSize:  v.GetInt64("MAX_FILE_SIZE"),
			MaxFiles:     v.GetInt("MAX_FILES"),
			ParseTimeout: v.GetDuration("PARSE_TIMEOUT"),
		},
		RateLimit: RateLimit{
			RequestsPerSecond: v.GetFloat64("RATE_LIMIT_RPS"),
			Burst:             v.GetInt("RATE_LIMIT_BURST"),
		},
		Kafka: Kafka{
			Brokers: splitList(v.GetString("KAFKA_BROKERS")),
			Topic:   v.GetString("KAFKA_TOPIC"),
		},
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ValidateConfig rejects unusable settings and warns about unsafe ones.
func ValidateConfig(cfg *Config, logger *slog.Logger) error {
	switch cfg.DatabaseDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("DATABASE_DRIVER must be sqlite or postgres, got %q", cfg.DatabaseDriver)
	}
	if cfg.Upload.MaxFileSize <= 0 {
		return fmt.Errorf("MAX_FILE_SIZE must be positive, got %d", cfg.Upload.MaxFileSize)
	}
	if cfg.Upload.MaxFiles <= 0 {
		return fmt.Errorf("MAX_FILES must be positive, got %d", cfg.Upload.MaxFiles)
	}
	if cfg.Upload.Dir == "" {
		return fmt.Errorf("UPLOAD_DIR must not be empty")
	}
	if cfg.RateLimit.RequestsPerSecond <= 0 || cfg.RateLimit.Burst <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	if len(cfg.JWTSecret) < 32 {
		logger.Warn("JWT_SECRET should be at least 32 characters for security", "length", len(cfg.JWTSecret))
	}
	if cfg.Environment == "production" && cfg.JWTSecret == defaultJWTSecret {
		logger.Warn("change JWT_SECRET in production environment")
	}
	return nil
}
