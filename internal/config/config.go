// Package config loads application settings from .env and the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Dias221467/Message_Catalog/internal/models"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const placeholderSecret = "change-me"

// Config holds all application configuration values.
type Config struct {
	Env  string
	Port string

	MongoURI      string
	DBName        string
	StorageDriver string // "mongo" or "memory"

	JWTSecret   string
	TokenExpiry time.Duration

	AppURL         string
	AllowedOrigins []string

	SMTPHost     string
	SMTPPort     string
	SMTPSender   string
	SMTPPassword string

	RedisAddr     string
	RedisPassword string
	CacheTTL      time.Duration

	ImportBatchSize            int
	ImportTimeout              time.Duration
	ImportMaxBytes             int64
	ImportDefaultStatus        models.Status
	EnglishImportDefaultStatus models.Status

	NotificationRetention time.Duration
	DigestSchedule        string

	LogLevel string
}

// LoadConfig reads .env when present and then the environment.
// Malformed numeric values fall back to their defaults with a warning.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found, using environment")
	}

	return &Config{
		Env:  envOrDefault("APP_ENV", "development"),
		Port: envOrDefault("PORT", "8080"),

		MongoURI:      envOrDefault("MONGODB_URI", "mongodb://localhost:27017"),
		DBName:        envOrDefault("MONGODB_DB", "message_catalog"),
		StorageDriver: strings.ToLower(envOrDefault("STORAGE_DRIVER", "mongo")),

		JWTSecret:   envOrDefault("JWT_SECRET", placeholderSecret),
		TokenExpiry: durationOrDefault("TOKEN_EXPIRY", 7*24*time.Hour),

		AppURL:         envOrDefault("APP_URL", "http://localhost:3000"),
		AllowedOrigins: listOrDefault("ALLOWED_ORIGINS", []string{"http://localhost:3000"}),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     envOrDefault("SMTP_PORT", "587"),
		SMTPSender:   os.Getenv("SMTP_SENDER"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		CacheTTL:      durationOrDefault("CACHE_TTL", 5*time.Minute),

		ImportBatchSize:            intOrDefault("IMPORT_BATCH_SIZE", 50),
		ImportTimeout:              durationOrDefault("IMPORT_TIMEOUT", 2*time.Minute),
		ImportMaxBytes:             int64(intOrDefault("IMPORT_MAX_BYTES", 10<<20)),
		ImportDefaultStatus:        models.Status(envOrDefault("IMPORT_DEFAULT_STATUS", string(models.StatusDisapproved))),
		EnglishImportDefaultStatus: models.Status(envOrDefault("ENGLISH_IMPORT_DEFAULT_STATUS", string(models.StatusApproved))),

		NotificationRetention: durationOrDefault("NOTIFICATION_RETENTION", 30*24*time.Hour),
		DigestSchedule:        os.Getenv("DIGEST_SCHEDULE"),

		LogLevel: envOrDefault("LOG_LEVEL", "info"),
	}
}

// Validate rejects settings the server cannot run with. Import default
// statuses are normalised to their canonical spelling.
func (c *Config) Validate() error {
	if c.IsProduction() && (c.JWTSecret == "" || c.JWTSecret == placeholderSecret) {
		return fmt.Errorf("JWT_SECRET must be set in production")
	}
	if c.StorageDriver != "mongo" && c.StorageDriver != "memory" {
		return fmt.Errorf("STORAGE_DRIVER must be mongo or memory, got %q", c.StorageDriver)
	}
	if c.ImportBatchSize <= 0 {
		return fmt.Errorf("IMPORT_BATCH_SIZE must be positive")
	}

	status, err := models.ParseStatus(string(c.ImportDefaultStatus))
	if err != nil {
		return fmt.Errorf("IMPORT_DEFAULT_STATUS: %v", err)
	}
	c.ImportDefaultStatus = status

	status, err = models.ParseStatus(string(c.EnglishImportDefaultStatus))
	if err != nil {
		return fmt.Errorf("ENGLISH_IMPORT_DEFAULT_STATUS: %v", err)
	}
	c.EnglishImportDefaultStatus = status
	return nil
}

// ImportDefault returns the import default status of a taxonomy.
func (c *Config) ImportDefault(t models.Taxonomy) models.Status {
	if t == models.TaxonomyEnglish {
		return c.EnglishImportDefaultStatus
	}
	return c.ImportDefaultStatus
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func envOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func intOrDefault(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		logrus.WithField("key", key).Warnf("Invalid integer %q, using %d", v, fallback)
		return fallback
	}
	return n
}

func durationOrDefault(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		logrus.WithField("key", key).Warnf("Invalid duration %q, using %s", v, fallback)
		return fallback
	}
	return d
}

func listOrDefault(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
