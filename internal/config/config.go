package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	ServerPort     string
	DatabaseType   string
	DatabaseURL    string
	DatabasePath   string
	MigrationsPath string

	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	AWSRegion      string
	SESFromEmail   string
	SESFromName    string
	S3Bucket       string
	SNSPlatformARN string

	AppBaseURL           string
	OAuthRedirectBaseURL string
	GoogleClientID       string
	GoogleClientSecret   string
	FacebookClientID     string
	FacebookClientSecret string

	// Cron expression for the daily allowance sweep.
	AllowanceSchedule string

	UploadMaxSize int64
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is applied first when present.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	return &Config{
		ServerPort:     getEnv("PORT", "8080"),
		DatabaseType:   getEnv("DB_TYPE", "sqlite"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		DatabasePath:   getEnv("DB_PATH", "./pennyjar.db"),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "./migrations"),

		JWTSecret:       getEnv("JWT_SECRET", "dev-only-secret-change-me"),
		AccessTokenTTL:  getDuration("ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTokenTTL: getDuration("REFRESH_TOKEN_TTL", 30*24*time.Hour),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		SESFromEmail:   getEnv("SES_FROM_EMAIL", ""),
		SESFromName:    getEnv("SES_FROM_NAME", "PennyJar"),
		S3Bucket:       getEnv("S3_BUCKET", ""),
		SNSPlatformARN: getEnv("SNS_PLATFORM_ARN", ""),

		AppBaseURL:           getEnv("APP_BASE_URL", "http://localhost:8080"),
		OAuthRedirectBaseURL: getEnv("OAUTH_REDIRECT_BASE_URL", ""),
		GoogleClientID:       getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret:   getEnv("GOOGLE_CLIENT_SECRET", ""),
		FacebookClientID:     getEnv("FACEBOOK_CLIENT_ID", ""),
		FacebookClientSecret: getEnv("FACEBOOK_CLIENT_SECRET", ""),

		AllowanceSchedule: getEnv("ALLOWANCE_SCHEDULE", "0 7 * * *"),

		UploadMaxSize: getInt64("UPLOAD_MAX_SIZE", 5*1024*1024), // 5MB
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDuration reads a duration environment variable or returns a default value
func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("Invalid duration for %s: %v, using default", key, err)
		return defaultValue
	}
	return d
}

// getInt64 reads an integer environment variable or returns a default value
func getInt64(key string, defaultValue int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		log.Printf("Invalid integer for %s: %v, using default", key, err)
		return defaultValue
	}
	return n
}
