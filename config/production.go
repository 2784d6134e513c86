// Package config provides configuration management and environment variable handling for the application
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ProductionConfig holds all configuration for the leads API
type ProductionConfig struct {
	Database   DatabaseConfig   `json:"database"`
	Server     ServerConfig     `json:"server"`
	Security   SecurityConfig   `json:"security"`
	Email      EmailConfig      `json:"email"`
	Cache      CacheConfig      `json:"cache"`
	Links      LinksConfig      `json:"links"`
	AntiSpam   AntiSpamConfig   `json:"anti_spam"`
	Logging    LoggingConfig    `json:"logging"`
	Metrics    MetricsConfig    `json:"metrics"`
	Deployment DeploymentConfig `json:"deployment"`
}

type DatabaseConfig struct {
	Host            string        `json:"host"`
	Port            int           `json:"port"`
	Name            string        `json:"name"`
	User            string        `json:"user"`
	Password        string        `json:"password"`
	SSLMode         string        `json:"ssl_mode"`
	MaxOpenConns    int           `json:"max_open_conns"`
	MaxIdleConns    int           `json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `json:"conn_max_idle_time"`
}

type ServerConfig struct {
	Host            string        `json:"host"`
	Port            int           `json:"port"`
	ReadTimeout     time.Duration `json:"read_timeout"`
	WriteTimeout    time.Duration `json:"write_timeout"`
	IdleTimeout     time.Duration `json:"idle_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
	BodyLimit       int           `json:"body_limit"`
}

type SecurityConfig struct {
	// CORS
	AllowedOrigins []string `json:"allowed_origins"`
	AllowedMethods []string `json:"allowed_methods"`
	AllowedHeaders []string `json:"allowed_headers"`
	CORSMaxAge     int      `json:"cors_max_age"`

	// Transport-level rate limiting (nginx-aligned, independent of the
	// spam-score limiter)
	GlobalRateLimit int           `json:"global_rate_limit"` // requests per window
	RateLimitWindow time.Duration `json:"rate_limit_window"`
}

type EmailConfig struct {
	Host      string `json:"host"`
	Port      int    `json:"port"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	FromEmail string `json:"from_email"`
	FromName  string `json:"from_name"`
	UseMock   bool   `json:"use_mock"`
}

type CacheConfig struct {
	Provider      string `json:"provider"` // redis, memory
	RedisAddr     string `json:"redis_addr"`
	RedisPassword string `json:"redis_password"`
	RedisDB       int    `json:"redis_db"`
}

// LinksConfig holds the funnel URL settings
type LinksConfig struct {
	CalendlyBaseURL  string `json:"calendly_base_url"`
	WhatsAppPhone    string `json:"whatsapp_phone"`
	WhatsAppTemplate string `json:"whatsapp_template"`
	FrontendURL      string `json:"frontend_url"`
}

// AntiSpamConfig holds the spam scoring and rate limit tunables
type AntiSpamConfig struct {
	IPHashSecret       string        `json:"-"`
	SpamScoreThreshold int           `json:"spam_score_threshold"`
	RateLimitCount     int           `json:"rate_limit_count"`
	RateLimitWindow    time.Duration `json:"rate_limit_window"`
	EmailCooldown      time.Duration `json:"email_cooldown"`
	ConfirmTokenTTL    time.Duration `json:"confirm_token_ttl"`
}

type LoggingConfig struct {
	Output     string `json:"output"` // stdout, file, both
	FilePath   string `json:"file_path"`
	MaxSize    int    `json:"max_size"` // MB
	MaxBackups int    `json:"max_backups"`
	MaxAge     int    `json:"max_age"` // days
	Compress   bool   `json:"compress"`
}

type MetricsConfig struct {
	Enabled bool   `json:"enabled"`
	Port    int    `json:"port"`
	Path    string `json:"path"`
}

type DeploymentConfig struct {
	Environment string `json:"environment"`
	Version     string `json:"version"`
}

// LoadProductionConfig loads and validates configuration from environment variables
func LoadProductionConfig() (*ProductionConfig, error) {
	// Load .env if present; real environment variables win
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg := &ProductionConfig{
		Database: DatabaseConfig{
			Host:            getEnvString("DB_HOST", "localhost"),
			Port:            getEnvInt("DB_PORT", 5432),
			Name:            getEnvString("DB_NAME", "villex_leads"),
			User:            getEnvString("DB_USER", "postgres"),
			Password:        getEnvString("DB_PASSWORD", ""),
			SSLMode:         getEnvString("DB_SSL_MODE", "require"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 50),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 10),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			ConnMaxIdleTime: getEnvDuration("DB_CONN_MAX_IDLE_TIME", 15*time.Minute),
		},
		Server: ServerConfig{
			Host:            getEnvString("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:     getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
			BodyLimit:       getEnvInt("SERVER_BODY_LIMIT", 1*1024*1024), // 1MB
		},
		Security: SecurityConfig{
			AllowedOrigins:  getEnvStringSlice("CORS_ALLOWED_ORIGINS", []string{"https://villex.com.ar", "https://www.villex.com.ar"}),
			AllowedMethods:  getEnvStringSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "OPTIONS"}),
			AllowedHeaders:  getEnvStringSlice("CORS_ALLOWED_HEADERS", []string{"Origin", "Content-Type", "Accept", "X-Request-ID"}),
			CORSMaxAge:      getEnvInt("CORS_MAX_AGE", 86400),
			GlobalRateLimit: getEnvInt("GLOBAL_RATE_LIMIT", 300),
			RateLimitWindow: getEnvDuration("RATE_LIMIT_WINDOW", 1*time.Minute),
		},
		Email: EmailConfig{
			Host:      getEnvString("EMAIL_HOST", "smtp.sendgrid.net"),
			Port:      getEnvInt("EMAIL_PORT", 587),
			Username:  getEnvString("EMAIL_HOST_USER", "apikey"),
			Password:  getEnvString("EMAIL_HOST_PASSWORD", ""),
			FromEmail: getEnvString("DEFAULT_FROM_EMAIL", "noreply@villex.com.ar"),
			FromName:  getEnvString("DEFAULT_FROM_NAME", "VILLEX"),
			UseMock:   getEnvBool("EMAIL_USE_MOCK", false),
		},
		Cache: CacheConfig{
			Provider:      getEnvString("CACHE_PROVIDER", "redis"),
			RedisAddr:     getEnvString("CACHE_REDIS_ADDR", "localhost:6379"),
			RedisPassword: getEnvString("CACHE_REDIS_PASSWORD", ""),
			RedisDB:       getEnvInt("CACHE_REDIS_DB", 0),
		},
		Links: LinksConfig{
			CalendlyBaseURL:  getEnvString("CALENDLY_BASE_URL", "https://calendly.com/villellijulian/30min"),
			WhatsAppPhone:    getEnvString("WHATSAPP_PHONE", "5491123456789"),
			WhatsAppTemplate: getEnvString("WHATSAPP_TEMPLATE", "¡Hola! Soy {name}. Me interesa {project_type}. {message}"),
			FrontendURL:      getEnvString("FRONTEND_URL", "https://villex.com.ar"),
		},
		AntiSpam: AntiSpamConfig{
			IPHashSecret:       getEnvString("IP_HASH_SECRET", ""),
			SpamScoreThreshold: getEnvInt("SPAM_SCORE_THRESHOLD", 5),
			RateLimitCount:     getEnvInt("SPAM_RATE_LIMIT_COUNT", 3),
			RateLimitWindow:    getEnvDuration("SPAM_RATE_LIMIT_WINDOW", 10*time.Minute),
			EmailCooldown:      getEnvDuration("EMAIL_COOLDOWN", 60*time.Second),
			ConfirmTokenTTL:    getEnvDuration("EMAIL_CONFIRM_TOKEN_TTL", 24*time.Hour),
		},
		Logging: LoggingConfig{
			Output:     getEnvString("LOG_OUTPUT", "stdout"),
			FilePath:   getEnvString("LOG_FILE_PATH", "/var/log/villex/leads-api.log"),
			MaxSize:    getEnvInt("LOG_MAX_SIZE", 100),
			MaxBackups: getEnvInt("LOG_MAX_BACKUPS", 10),
			MaxAge:     getEnvInt("LOG_MAX_AGE", 30),
			Compress:   getEnvBool("LOG_COMPRESS", true),
		},
		Metrics: MetricsConfig{
			Enabled: getEnvBool("METRICS_ENABLED", true),
			Port:    getEnvInt("METRICS_PORT", 9090),
			Path:    getEnvString("METRICS_PATH", "/metrics"),
		},
		Deployment: DeploymentConfig{
			Environment: getEnvString("APP_ENV", "production"),
			Version:     getEnvString("VERSION", "1.0.0"),
		},
	}

	// Validate the loaded configuration
	if err := ValidateProductionConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Helper functions for environment variable parsing
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvStringSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		var result []string
		for _, item := range strings.Split(value, ",") {
			if trimmed := strings.TrimSpace(item); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return defaultValue
}

// ValidateProductionConfig validates the production configuration
func ValidateProductionConfig(cfg *ProductionConfig) error {
	var errors []string

	// Validate database configuration
	if cfg.Database.Host == "" {
		errors = append(errors, "DB_HOST is required")
	}
	if cfg.Database.Port <= 0 || cfg.Database.Port > 65535 {
		errors = append(errors, "DB_PORT must be between 1 and 65535")
	}
	if cfg.Database.Name == "" {
		errors = append(errors, "DB_NAME is required")
	}
	if cfg.Database.User == "" {
		errors = append(errors, "DB_USER is required")
	}

	// Validate server configuration
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		errors = append(errors, "SERVER_PORT must be between 1 and 65535")
	}
	if cfg.Server.ReadTimeout <= 0 {
		errors = append(errors, "SERVER_READ_TIMEOUT must be positive")
	}
	if cfg.Server.WriteTimeout <= 0 {
		errors = append(errors, "SERVER_WRITE_TIMEOUT must be positive")
	}

	// Validate anti-spam configuration
	if cfg.AntiSpam.IPHashSecret == "" {
		errors = append(errors, "IP_HASH_SECRET is required")
	}
	if cfg.AntiSpam.SpamScoreThreshold <= 0 {
		errors = append(errors, "SPAM_SCORE_THRESHOLD must be positive")
	}
	if cfg.AntiSpam.RateLimitCount <= 0 {
		errors = append(errors, "SPAM_RATE_LIMIT_COUNT must be positive")
	}
	if cfg.AntiSpam.ConfirmTokenTTL <= 0 {
		errors = append(errors, "EMAIL_CONFIRM_TOKEN_TTL must be positive")
	}

	// Validate email configuration unless the mock provider is used
	if !cfg.Email.UseMock {
		if cfg.Email.Host == "" {
			errors = append(errors, "EMAIL_HOST is required")
		}
		if cfg.Email.Password == "" {
			errors = append(errors, "EMAIL_HOST_PASSWORD is required")
		}
		if cfg.Email.FromEmail == "" {
			errors = append(errors, "DEFAULT_FROM_EMAIL is required")
		}
	}

	// Validate cache configuration
	if cfg.Cache.Provider != "redis" && cfg.Cache.Provider != "memory" {
		errors = append(errors, "CACHE_PROVIDER must be redis or memory")
	}
	if cfg.Cache.Provider == "redis" && cfg.Cache.RedisAddr == "" {
		errors = append(errors, "CACHE_REDIS_ADDR is required when cache provider is redis")
	}

	// Validate link configuration
	if cfg.Links.CalendlyBaseURL == "" {
		errors = append(errors, "CALENDLY_BASE_URL is required")
	}
	if cfg.Links.FrontendURL == "" {
		errors = append(errors, "FRONTEND_URL is required")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errors, "; "))
	}

	return nil
}
