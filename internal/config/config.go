package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// Config is the bot's runtime configuration
type Config struct {
	Provider string

	// command layer
	Prefix        string
	Cooldown      time.Duration
	MaxCodeLength int

	// execution
	ExecutorBackend string
	WandboxURL      string
	ExecTimeout     time.Duration
	ExecMemoryMB    int64
	ExecCPUs        float64

	// guards around external calls
	MaxConcurrent    int
	FailureThreshold int
	OpenTimeout      time.Duration

	// http gateway
	Port           string
	AllowedOrigins []string

	// feedback store
	DBDriver         string
	SQLitePath       string
	Postgres         PostgresConfig
	FeedbackCacheTTL time.Duration

	// jobs
	ExportEnabled        bool
	ExportSchedule       string
	ExportDir            string
	SessionAuditSchedule string
}

type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN renders the libpq keyword/value connection string
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		p.Host, p.User, p.Password, p.DBName, p.Port, p.SSLMode)
}

// loads configuration from environment variables
func LoadConfig() (*Config, error) {
	config := &Config{
		Provider: getEnvOrDefault("AI_PROVIDER", "gemini"),

		Prefix:        getEnvOrDefault("BOT_PREFIX", "!"),
		Cooldown:      getEnvDuration("COMMAND_COOLDOWN", 5*time.Second),
		MaxCodeLength: getEnvInt("MAX_CODE_LENGTH", 5000),

		ExecutorBackend: strings.ToLower(getEnvOrDefault("EXECUTOR_BACKEND", "wandbox")),
		WandboxURL:      getEnvOrDefault("WANDBOX_URL", "https://wandbox.org/api/compile.json"),
		ExecTimeout:     getEnvDuration("EXEC_TIMEOUT", 10*time.Second),
		ExecMemoryMB:    int64(getEnvInt("EXEC_MEMORY_MB", 256)),
		ExecCPUs:        getEnvFloat("EXEC_CPUS", 1),

		MaxConcurrent:    getEnvInt("GUARD_MAX_CONCURRENT", 5),
		FailureThreshold: getEnvInt("GUARD_FAILURE_THRESHOLD", 3),
		OpenTimeout:      getEnvDuration("GUARD_OPEN_TIMEOUT", 30*time.Second),

		Port:           getEnvOrDefault("PORT", "8080"),
		AllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),

		DBDriver:   strings.ToLower(getEnvOrDefault("DB_DRIVER", "sqlite")),
		SQLitePath: getEnvOrDefault("SQLITE_PATH", "zia.db"),
		Postgres: PostgresConfig{
			Host:     getEnvOrDefault("POSTGRES_HOST", "localhost"),
			Port:     getEnvOrDefault("POSTGRES_PORT", "5432"),
			User:     getEnvOrDefault("POSTGRES_USER", "postgres"),
			Password: getEnvOrDefault("POSTGRES_PASSWORD", "postgres"),
			DBName:   getEnvOrDefault("POSTGRES_DB", "postgres"),
			SSLMode:  getEnvOrDefault("POSTGRES_SSLMODE", "disable"),
		},
		FeedbackCacheTTL: getEnvDuration("FEEDBACK_CACHE_TTL", 15*time.Minute),

		ExportEnabled:        getEnvBool("FEEDBACK_EXPORT_ENABLED", false),
		ExportSchedule:       getEnvOrDefault("FEEDBACK_EXPORT_SCHEDULE", "0 2 * * *"),
		ExportDir:            getEnvOrDefault("FEEDBACK_EXPORT_DIR", "./exports"),
		SessionAuditSchedule: getEnvOrDefault("SESSION_AUDIT_SCHEDULE", "*/15 * * * *"),
	}
	if err := validateConfig(config); err != nil {
		return nil, err
	}
	return config, nil
}

func validateConfig(config *Config) error {
	if config.Provider != "gemini" {
		return errors.New("unsupported AI provider: " + config.Provider + ". Currently supported: gemini")
	}
	// Gemini validation is handled by gemini.NewConfig()

	switch config.ExecutorBackend {
	case "wandbox", "docker":
	default:
		return errors.New("unsupported executor backend: " + config.ExecutorBackend + ". Currently supported: wandbox, docker")
	}
	switch config.DBDriver {
	case "sqlite", "postgres", "none":
	default:
		return errors.New("unsupported database driver: " + config.DBDriver + ". Currently supported: sqlite, postgres, none")
	}

	if strings.TrimSpace(config.Prefix) == "" || strings.ContainsAny(config.Prefix, " \t\n") {
		return errors.New("BOT_PREFIX must be non-empty and contain no whitespace")
	}
	if config.Cooldown < 0 {
		return errors.New("COMMAND_COOLDOWN must not be negative")
	}
	if config.MaxCodeLength <= 0 {
		return errors.New("MAX_CODE_LENGTH must be positive")
	}
	if config.ExecTimeout <= 0 {
		return errors.New("EXEC_TIMEOUT must be positive")
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if config.ExportEnabled {
		if _, err := parser.Parse(config.ExportSchedule); err != nil {
			return fmt.Errorf("invalid FEEDBACK_EXPORT_SCHEDULE %q: %w", config.ExportSchedule, err)
		}
	}
	if config.SessionAuditSchedule != "" {
		if _, err := parser.Parse(config.SessionAuditSchedule); err != nil {
			return fmt.Errorf("invalid SESSION_AUDIT_SCHEDULE %q: %w", config.SessionAuditSchedule, err)
		}
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
