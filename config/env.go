package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv   string
	Port     string
	LogLevel string

	StoreDriver  string
	DatabaseURL  string
	DBHost       string
	DBPort       string
	DBUser       string
	DBPassword   string
	DBName       string
	DBSSLMode    string
	MigrationDir string

	RedisURL         string
	RedisAddr        string
	RedisPassword    string
	SnapshotCacheKey string

	RabbitMQURL string
	PrintQueue  string

	JWTSecret     string
	JWTExpiry     time.Duration
	OwnerPasscode string

	AutoPrint     bool
	AutoPrintMode string
	Timezone      string
	Location      *time.Location
	Tables        []string
	WriteTimeout  time.Duration

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	SMTPFrom string

	OriginURL string
}

var AppConfig *Config

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Warn(".env file not found, using system environment variables")
	}

	cfg := &Config{
		AppEnv:   getEnv("APP_ENV", "development"),
		Port:     getEnv("APP_PORT", getEnv("PORT", "8082")),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		StoreDriver:  strings.ToLower(getEnv("STORE_DRIVER", "postgres")),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		DBHost:       getEnv("DB_HOST", "localhost"),
		DBPort:       getEnv("DB_PORT", "5454"),
		DBUser:       getEnv("DB_USER", "postgres"),
		DBPassword:   getEnv("DB_PASSWORD", "postgres"),
		DBName:       getEnv("DB_NAME", "snack_shop"),
		DBSSLMode:    getEnv("DB_SSLMODE", "disable"),
		MigrationDir: getEnv("MIGRATION_DIR", "database/migration"),

		RedisURL:         os.Getenv("REDIS_URL"),
		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		SnapshotCacheKey: getEnv("SNAPSHOT_CACHE_KEY", "snack_orders"),

		RabbitMQURL: os.Getenv("RABBITMQ_URL"),
		PrintQueue:  getEnv("PRINT_QUEUE", "print_jobs"),

		JWTSecret:     getEnv("JWT_SECRET", "secret"),
		JWTExpiry:     getDuration("JWT_EXPIRY", 12*time.Hour),
		OwnerPasscode: getEnv("OWNER_PASSCODE", "8888"),

		AutoPrint:     getBool("AUTO_PRINT", false),
		AutoPrintMode: strings.ToLower(getEnv("AUTO_PRINT_MODE", "latest")),
		Timezone:      getEnv("VENUE_TIMEZONE", "Asia/Taipei"),
		Tables:        splitList(getEnv("TABLES", "1,2,3,5,6,7,8,9,10,外帶")),
		WriteTimeout:  getDuration("WRITE_TIMEOUT", 10*time.Second),

		SMTPHost: os.Getenv("SMTP_HOST"),
		SMTPPort: getInt("SMTP_PORT", 587),
		SMTPUser: os.Getenv("SMTP_USER"),
		SMTPPass: os.Getenv("SMTP_PASS"),
		SMTPFrom: os.Getenv("SMTP_FROM"),

		OriginURL: os.Getenv("ORIGIN_URL"),
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		slog.Warn("unknown VENUE_TIMEZONE, falling back to UTC", "timezone", cfg.Timezone, "error", err)
		loc = time.UTC
		cfg.Timezone = "UTC"
	}
	cfg.Location = loc

	if cfg.AutoPrintMode != "latest" && cfg.AutoPrintMode != "queue" {
		slog.Warn("unknown AUTO_PRINT_MODE, using latest", "mode", cfg.AutoPrintMode)
		cfg.AutoPrintMode = "latest"
	}

	AppConfig = cfg

	slog.Info("Configuration loaded successfully", "environment", cfg.AppEnv, "port", cfg.Port, "store", cfg.StoreDriver)
	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return n
}

func getBool(key string, defaultValue bool) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return b
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}

func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
