package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"replate-api/internal/pkg/logger"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	AppMode     string
	Port        string
	FrontendURL string
	Database    DatabaseConfig
	JWT         JWTConfig
	Mail        MailConfig
	Storage     StorageConfig
	Google      GoogleConfig
	Redis       RedisConfig
	Password    PasswordConfig
	Admin       AdminConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver   string // mysql, postgres or sqlite
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	Path     string // sqlite only
}

// JWTConfig holds token signing configuration
type JWTConfig struct {
	Secret       string
	SessionDays  int
	VerifyHours  int
	ResetMinutes int
}

// MailConfig holds SMTP configuration
type MailConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	FromName string
}

// StorageConfig holds upload storage configuration
type StorageConfig struct {
	Driver       string // local or s3
	LocalDir     string
	PublicPrefix string
	S3Bucket     string
	S3Region     string
	S3Key        string
	S3Secret     string
	S3Endpoint   string
	S3URL        string
}

// GoogleConfig holds Google sign-in configuration
type GoogleConfig struct {
	ClientID string
}

// RedisConfig holds Redis configuration (rate limiter storage)
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// PasswordConfig is the single password policy applied to every flow
type PasswordConfig struct {
	MinLength    int
	RequireMixed bool
}

// AdminConfig holds credentials for the seed-admin command
type AdminConfig struct {
	Email    string
	Password string
	Name     string
}

// Load reads configuration from .env file and environment variables
func Load() (*Config, error) {
	// Load .env file (ignore error if file doesn't exist in production)
	if err := godotenv.Load(); err != nil {
		logger.Warn(".env file not found, using environment variables")
	}

	// trim spaces for Windows compatibility
	appMode := strings.TrimSpace(getEnv("APP_MODE", "dev"))
	if appMode != "dev" && appMode != "prod" {
		return nil, fmt.Errorf("invalid APP_MODE: '%s' (must be 'dev' or 'prod')", appMode)
	}

	cfg := &Config{
		AppMode:     appMode,
		Port:        getEnv("PORT", "5000"),
		FrontendURL: strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:5173"), "/"),
		Database:    loadDatabaseConfig(appMode),
		JWT:         loadJWTConfig(appMode),
		Mail:        loadMailConfig(),
		Storage:     loadStorageConfig(),
		Google:      GoogleConfig{ClientID: getEnv("GOOGLE_CLIENT_ID", "")},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Password: PasswordConfig{
			MinLength:    getEnvInt("PASSWORD_MIN_LENGTH", 8),
			RequireMixed: getEnvBool("PASSWORD_REQUIRE_MIXED", false),
		},
		Admin: AdminConfig{
			Email:    getEnv("ADMIN_EMAIL", ""),
			Password: getEnv("ADMIN_PASSWORD", ""),
			Name:     getEnv("ADMIN_NAME", "Replate Admin"),
		},
	}

	if cfg.IsProd() && cfg.JWT.Secret == defaultJWTSecret {
		return nil, fmt.Errorf("PROD_JWT_SECRET must be set in prod mode")
	}

	return cfg, nil
}

const defaultJWTSecret = "default_secret"

// loadDatabaseConfig loads database config based on mode
func loadDatabaseConfig(mode string) DatabaseConfig {
	prefix := modePrefix(mode)

	return DatabaseConfig{
		Driver:   getEnv("DB_DRIVER", "mysql"),
		Host:     getEnv(prefix+"DB_HOST", "localhost"),
		Port:     getEnv(prefix+"DB_PORT", "3306"),
		User:     getEnv(prefix+"DB_USER", "root"),
		Password: getEnv(prefix+"DB_PASS", ""),
		DBName:   getEnv(prefix+"DB_NAME", "replate"),
		Path:     getEnv(prefix+"DB_PATH", "replate.db"),
	}
}

// loadJWTConfig loads JWT config based on mode
func loadJWTConfig(mode string) JWTConfig {
	prefix := modePrefix(mode)

	return JWTConfig{
		Secret:       getEnv(prefix+"JWT_SECRET", defaultJWTSecret),
		SessionDays:  getEnvInt("SESSION_TOKEN_DAYS", 7),
		VerifyHours:  getEnvInt("VERIFY_TOKEN_HOURS", 24),
		ResetMinutes: getEnvInt("RESET_TOKEN_MINUTES", 60),
	}
}

func loadMailConfig() MailConfig {
	return MailConfig{
		Host:     getEnv("MAIL_HOST", "smtp.gmail.com"),
		Port:     getEnv("MAIL_PORT", "587"),
		Username: getEnv("MAIL_USERNAME", ""),
		Password: getEnv("MAIL_PASSWORD", ""),
		From:     getEnv("MAIL_FROM", getEnv("MAIL_USERNAME", "no-reply@replate.id")),
		FromName: getEnv("MAIL_FROM_NAME", "Replate - Bakery Marketplace"),
	}
}

func loadStorageConfig() StorageConfig {
	return StorageConfig{
		Driver:       getEnv("STORAGE_DRIVER", "local"),
		LocalDir:     getEnv("UPLOAD_DIR", "uploads"),
		PublicPrefix: getEnv("UPLOAD_PUBLIC_PREFIX", "/uploads"),
		S3Bucket:     getEnv("S3_BUCKET", ""),
		S3Region:     getEnv("S3_REGION", "ap-southeast-1"),
		S3Key:        getEnv("S3_KEY", ""),
		S3Secret:     getEnv("S3_SECRET", ""),
		S3Endpoint:   getEnv("S3_ENDPOINT", ""),
		S3URL:        getEnv("S3_URL", ""),
	}
}

func modePrefix(mode string) string {
	if mode == "prod" {
		return "PROD_"
	}
	return "DEV_"
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}

// IsDev returns true if running in development mode
func (c *Config) IsDev() bool {
	return c.AppMode == "dev"
}

// IsProd returns true if running in production mode
func (c *Config) IsProd() bool {
	return c.AppMode == "prod"
}

// SessionTTL returns the lifetime of a session token
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.JWT.SessionDays) * 24 * time.Hour
}

// VerifyTTL returns the lifetime of an email verification token
func (c *Config) VerifyTTL() time.Duration {
	return time.Duration(c.JWT.VerifyHours) * time.Hour
}

// ResetTTL returns the lifetime of a password reset token
func (c *Config) ResetTTL() time.Duration {
	return time.Duration(c.JWT.ResetMinutes) * time.Minute
}

// GetAllowedOrigins returns allowed origins for CORS
func (c *Config) GetAllowedOrigins() string {
	origins := getEnv("ALLOWED_ORIGINS", "")
	if origins == "" {
		if c.IsDev() {
			return "*"
		}
		return c.FrontendURL
	}
	return origins
}
