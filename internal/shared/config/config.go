package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	Port             string
	Env              string
	CORSAllowOrigins []string

	DatabaseURL   string
	MigrateOnBoot bool

	JWTSecret string
	JWTTTL    time.Duration

	ObjectStoreType string
	LocalStoreDir   string
	AWSRegion       string
	S3Bucket        string
	S3Prefix        string
	SignedURLTTL    time.Duration

	LoginWindow      time.Duration
	LoginMaxAttempts int
}

// Load reads configuration from environment variables. Secrets have no
// defaults: JWT_SECRET and DATABASE_URL must be present or Load fails.
func Load() (Config, error) {
	// Best-effort load of a local env file for dev convenience.
	_ = godotenv.Load()

	cfg := Config{
		Port:             getEnv("PORT", "8080"),
		Env:              normalizeEnv(getEnv("ENV", "dev")),
		CORSAllowOrigins: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:4200")),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		MigrateOnBoot:    getEnvBool("MIGRATE_ON_BOOT", true),
		JWTSecret:        strings.TrimSpace(os.Getenv("JWT_SECRET")),
		JWTTTL:           getEnvDuration("JWT_TTL", time.Hour),
		ObjectStoreType:  normalizeStoreType(getEnv("OBJECT_STORE", "local")),
		LocalStoreDir:    getEnv("LOCAL_STORE_DIR", "./data"),
		AWSRegion:        getEnv("AWS_REGION", ""),
		S3Bucket:         getEnv("S3_BUCKET", ""),
		S3Prefix:         getEnv("S3_PREFIX", ""),
		SignedURLTTL:     getEnvDuration("SIGNED_URL_TTL", 60*time.Second),
		LoginWindow:      getEnvDuration("LOGIN_RATE_WINDOW", 15*time.Minute),
		LoginMaxAttempts: getEnvInt("LOGIN_RATE_MAX", 5),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.ObjectStoreType == "s3" && strings.TrimSpace(cfg.S3Bucket) == "" {
		return Config{}, fmt.Errorf("OBJECT_STORE=s3 requires S3_BUCKET")
	}
	return cfg, nil
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return val
}

func getEnvInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return val
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := time.ParseDuration(raw)
	if err != nil {
		return def
	}
	return val
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}
