package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port               string
	Env                string
	LogLevel           string
	DatabaseURL        string
	AuthJWTSecret      string
	CORSAllowedOrigins []string

	// Payment provider (razorpay-compatible orders API)
	PaymentKeyID     string
	PaymentKeySecret string
	PaymentBaseURL   string
	PaymentCurrency  string
	AllowFakeOrders  bool

	// Dashboard cache
	RedisAddr         string
	RedisPassword     string
	DashboardCacheTTL time.Duration

	// Notifications
	UseMemoryQueue    bool
	NotifyQueueURL    string
	NotifyWorkerCount int
	EmailProvider     string
	FromEmail         string
	FromName          string
	SendGridAPIKey    string

	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string
}

// Load reads configuration from environment variables.
// A .env file is honored when present so local runs match docker/CI.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:               getEnv("PORT", "8080"),
		Env:                getEnv("ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		AuthJWTSecret:      getEnv("AUTH_JWT_SECRET", ""),
		CORSAllowedOrigins: splitAndTrim(getEnv("CORS_ALLOWED_ORIGINS", "")),

		PaymentKeyID:     getEnv("PAYMENT_KEY_ID", ""),
		PaymentKeySecret: getEnv("PAYMENT_KEY_SECRET", ""),
		PaymentBaseURL:   getEnv("PAYMENT_BASE_URL", ""),
		PaymentCurrency:  getEnv("PAYMENT_CURRENCY", "INR"),
		AllowFakeOrders:  getEnvAsBool("ALLOW_FAKE_ORDERS", false),

		RedisAddr:         getEnv("REDIS_ADDR", ""),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		DashboardCacheTTL: getEnvAsDuration("DASHBOARD_CACHE_TTL", 30*time.Second),

		UseMemoryQueue:    getEnvAsBool("USE_MEMORY_QUEUE", true),
		NotifyQueueURL:    getEnv("NOTIFY_QUEUE_URL", ""),
		NotifyWorkerCount: getEnvAsInt("NOTIFY_WORKER_COUNT", 2),
		EmailProvider:     getEnv("EMAIL_PROVIDER", "stub"),
		FromEmail:         getEnv("FROM_EMAIL", "no-reply@clinicore.dev"),
		FromName:          getEnv("FROM_NAME", "Clinicore"),
		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// splitAndTrim parses a comma-separated list, dropping empty entries.
func splitAndTrim(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
