package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

// Config holds all application configuration
type Config struct {
	// API
	APIPort string

	// Database: memory, sqlite or postgres
	DatabaseDriver string
	DatabaseURL    string

	// Redis (conversion guard); empty uses the in-process guard
	RedisURL string

	// RabbitMQ (lead events); empty wires a no-op publisher
	RabbitMQURL string

	// JWT
	JWTSecret          string
	JWTExpirationHours int

	// CORS
	CORSAllowedOrigins []string

	// Rate limiting on mutating routes
	RateLimitRequestsPerMinute int
	RateLimitBurst             int

	// CRM
	Vocabulary       string
	VocabularyFile   string
	ConversionPolicy string
	FollowUpSchedule string
	SeedDemo         bool

	// Mail; empty host means log-only notifications
	MailHost     string
	MailPort     int
	MailUser     string
	MailPassword string
	MailFrom     string
	NotifyTo     []string

	// Logging
	LogLevel  string
	LogFormat string
}

// Load reads .env (if present) and then the environment.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		APIPort: getEnv("API_PORT", "8080"),

		DatabaseDriver: strings.ToLower(getEnv("DATABASE_DRIVER", "memory")),
		DatabaseURL:    getEnv("DATABASE_URL", ""),

		RedisURL:    getEnv("REDIS_URL", ""),
		RabbitMQURL: getEnv("RABBITMQ_URL", ""),

		JWTSecret:          getEnv("JWT_SECRET", "change-this-in-production"),
		JWTExpirationHours: getEnvAsInt("JWT_EXPIRATION_HOURS", 24),

		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),

		RateLimitRequestsPerMinute: getEnvAsInt("RATE_LIMIT_REQUESTS_PER_MINUTE", 60),
		RateLimitBurst:             getEnvAsInt("RATE_LIMIT_BURST", 10),

		Vocabulary:       getEnv("CRM_VOCABULARY", "short"),
		VocabularyFile:   getEnv("CRM_VOCABULARY_FILE", ""),
		ConversionPolicy: getEnv("CONVERSION_POLICY", string(usecase.PolicyReject)),
		FollowUpSchedule: getEnv("FOLLOWUP_SCHEDULE", "@every 5m"),
		SeedDemo:         getEnvAsBool("SEED_DEMO", false),

		MailHost:     getEnv("MAIL_HOST", ""),
		MailPort:     getEnvAsInt("MAIL_PORT", 587),
		MailUser:     getEnv("MAIL_USER", ""),
		MailPassword: getEnv("MAIL_PASSWORD", ""),
		MailFrom:     getEnv("MAIL_FROM", "nao-responda@ligue-crm.local"),
		NotifyTo:     getEnvAsList("NOTIFY_TO", nil),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}
}

// Validate catches settings that would otherwise fail deep inside start-up.
func (c *Config) Validate() error {
	switch c.DatabaseDriver {
	case "memory":
	case "sqlite", "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for driver %s", c.DatabaseDriver)
		}
	default:
		return fmt.Errorf("unknown DATABASE_DRIVER %q", c.DatabaseDriver)
	}
	if _, err := usecase.ParseConversionPolicy(c.ConversionPolicy); err != nil {
		return err
	}
	if c.MailHost != "" && len(c.NotifyTo) == 0 {
		return fmt.Errorf("NOTIFY_TO is required when MAIL_HOST is set")
	}
	return nil
}

// Vocabularies resolves the deployment vocabulary: a file wins over a preset.
func (c *Config) Vocabularies() (*entity.Vocabularies, error) {
	if c.VocabularyFile != "" {
		return entity.LoadVocabularies(c.VocabularyFile)
	}
	return entity.PresetVocabularies(c.Vocabulary)
}

func (c *Config) Policy() usecase.ConversionPolicy {
	p, err := usecase.ParseConversionPolicy(c.ConversionPolicy)
	if err != nil {
		return usecase.PolicyReject
	}
	return p
}

func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.JWTExpirationHours) * time.Hour
}

// Helper functions
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, v := range strings.Split(valueStr, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
