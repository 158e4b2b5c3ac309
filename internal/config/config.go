package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

type Config struct {
	Server  ServerConfig
	Storage StorageConfig
	Redis   RedisConfig
	JWT     JWTConfig
	Auth    AuthConfig
	Email   EmailConfig
	Log     LogConfig
	Metrics MetricsConfig
}

type ServerConfig struct {
	Port         string
	Environment  string
	AppName      string
	BaseURL      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	AllowOrigins string
	// Timezone is used for the timestamp printed in WhatsApp messages.
	Timezone string
}

type StorageConfig struct {
	// Driver is one of postgrest, postgres, sqlite or memory.
	Driver       string
	PostgRESTURL string
	PostgRESTKey string
	Timeout      time.Duration
	Database     DatabaseConfig
	SQLitePath   string
	AutoMigrate  bool
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret string
	Expiry time.Duration
	Issuer string
}

type AuthConfig struct {
	BcryptCost int
}

type EmailConfig struct {
	Enabled   bool
	APIKey    string
	FromEmail string
	FromName  string
}

type LogConfig struct {
	Level string
}

type MetricsConfig struct {
	Enabled bool
}

const (
	DriverPostgREST = "postgrest"
	DriverPostgres  = "postgres"
	DriverSQLite    = "sqlite"
	DriverMemory    = "memory"
)

func Load() (*Config, error) {
	// .env is optional in production
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "5000"),
			Environment:  getEnv("ENVIRONMENT", "development"),
			AppName:      getEnv("APP_NAME", "FormApp"),
			BaseURL:      strings.TrimRight(getEnv("BASE_URL", "http://localhost:5000"), "/"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 10*time.Second),
			AllowOrigins: getEnv("CORS_ALLOW_ORIGINS", "*"),
			Timezone:     getEnv("TIMEZONE", "America/Sao_Paulo"),
		},
		Storage: StorageConfig{
			Driver:       strings.ToLower(getEnv("STORAGE_DRIVER", DriverPostgREST)),
			PostgRESTURL: postgrestURL(),
			PostgRESTKey: getEnv("SUPABASE_KEY", ""),
			Timeout:      getDurationEnv("STORAGE_TIMEOUT", 10*time.Second),
			Database: DatabaseConfig{
				Host:     getEnv("DB_HOST", "localhost"),
				Port:     getEnv("DB_PORT", "5432"),
				User:     getEnv("DB_USER", "appform"),
				Password: getEnv("DB_PASSWORD", "appform"),
				DBName:   getEnv("DB_NAME", "appform"),
				SSLMode:  getEnv("DB_SSLMODE", "disable"),
			},
			SQLitePath:  getEnv("SQLITE_PATH", "./data/appform.db"),
			AutoMigrate: getBoolEnv("STORAGE_AUTO_MIGRATE", true),
		},
		Redis: RedisConfig{
			Enabled:  getBoolEnv("REDIS_ENABLED", false),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret: getEnv("SECRET_KEY", "dev-secret-key-change-in-production"),
			Expiry: getDurationEnv("JWT_EXPIRY", 12*time.Hour),
			Issuer: getEnv("JWT_ISSUER", "app-form"),
		},
		Auth: AuthConfig{
			BcryptCost: getIntEnv("AUTH_BCRYPT_COST", 12),
		},
		Email: EmailConfig{
			Enabled:   getBoolEnv("EMAIL_ENABLED", false),
			APIKey:    getEnv("RESEND_API_KEY", ""),
			FromEmail: getEnv("EMAIL_FROM", ""),
			FromName:  getEnv("EMAIL_FROM_NAME", "FormApp"),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Metrics: MetricsConfig{
			Enabled: getBoolEnv("METRICS_ENABLED", true),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects combinations the server cannot start with.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverPostgREST:
		if c.Storage.PostgRESTURL == "" {
			return fmt.Errorf("SUPABASE_URL is required for the %s driver", DriverPostgREST)
		}
	case DriverPostgres, DriverSQLite, DriverMemory:
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.Storage.Driver)
	}

	if c.Server.Environment == "production" && c.JWT.Secret == "dev-secret-key-change-in-production" {
		return fmt.Errorf("SECRET_KEY must be set in production")
	}
	if c.Email.Enabled && (c.Email.APIKey == "" || c.Email.FromEmail == "") {
		return fmt.Errorf("RESEND_API_KEY and EMAIL_FROM are required when EMAIL_ENABLED is set")
	}
	if _, err := time.LoadLocation(c.Server.Timezone); err != nil {
		return fmt.Errorf("invalid TIMEZONE %q: %w", c.Server.Timezone, err)
	}
	return nil
}

// Location returns the configured time zone, UTC when it cannot be loaded.
func (c *ServerConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// postgrestURL accepts either POSTGREST_URL or the Supabase project URL.
func postgrestURL() string {
	if u := getEnv("POSTGREST_URL", ""); u != "" {
		return strings.TrimRight(u, "/")
	}
	if u := getEnv("SUPABASE_URL", ""); u != "" {
		return strings.TrimRight(u, "/") + "/rest/v1"
	}
	return ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
