package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	App      AppConfig
	Payroll  PayrollConfig
	Holiday  HolidayConfig
	Jobs     JobsConfig
}

type DatabaseConfig struct {
	// URL takes precedence over the individual fields when set.
	URL             string
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	AutoMigrate     bool
}

// RedisConfig is optional; without a URL the in-memory cache and locker are used.
type RedisConfig struct {
	URL    string
	Prefix string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration time.Duration
}

// AppConfig holds application configuration
type AppConfig struct {
	Port           int
	Env            string
	LogLevel       string
	AllowedOrigins []string
	SeedDefaults   bool
}

type PayrollConfig struct {
	Timezone    string
	Location    *time.Location
	Concurrency int
	LockTTL     time.Duration
}

// HolidayConfig selects the official holiday source. Without credentials the
// computed South African calendar is used.
type HolidayConfig struct {
	GoogleCredentialsFile string
	GoogleCalendarID      string
}

type JobsConfig struct {
	Enabled             bool
	StaleShiftInterval  time.Duration
	HolidaySyncInterval time.Duration
	BackupInterval      time.Duration
	BackupDir           string
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	} else if err != nil {
		slog.Debug("no .env file, using process environment")
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	maxConns, err := strconv.Atoi(getEnv("DB_MAX_CONNS", "25"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}
	minConns, err := strconv.Atoi(getEnv("DB_MIN_CONNS", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIN_CONNS: %w", err)
	}
	connLifetime, err := time.ParseDuration(getEnv("DB_MAX_CONN_LIFETIME", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONN_LIFETIME: %w", err)
	}

	config.Database = DatabaseConfig{
		URL:             getEnv("DATABASE_URL", ""),
		Host:            getEnv("DB_HOST", "localhost"),
		Port:            dbPort,
		User:            getEnv("DB_USER", "postgres"),
		Password:        getEnv("DB_PASSWORD", ""),
		Name:            getEnv("DB_NAME", "staffpay"),
		SSLMode:         getEnv("DB_SSL_MODE", "disable"),
		MaxConns:        int32(maxConns),
		MinConns:        int32(minConns),
		MaxConnLifetime: connLifetime,
		AutoMigrate:     getEnvBool("DB_AUTO_MIGRATE", true),
	}

	// Redis configuration
	config.Redis = RedisConfig{
		URL:    getEnv("REDIS_URL", ""),
		Prefix: getEnv("REDIS_PREFIX", "staffpay:"),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:           appPort,
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		SeedDefaults:   getEnvBool("SEED_DEFAULTS", true),
	}

	// JWT configuration
	accessExpiration, err := time.ParseDuration(getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_ACCESS_EXPIRATION_TIME: %w", err)
	}

	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: accessExpiration,
	}

	// Payroll configuration
	concurrency, err := strconv.Atoi(getEnv("PAYROLL_CONCURRENCY", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid PAYROLL_CONCURRENCY: %w", err)
	}
	lockTTL, err := time.ParseDuration(getEnv("PAYROLL_LOCK_TTL", "2m"))
	if err != nil {
		return nil, fmt.Errorf("invalid PAYROLL_LOCK_TTL: %w", err)
	}

	config.Payroll = PayrollConfig{
		Timezone:    getEnv("TIMEZONE", "Africa/Johannesburg"),
		Concurrency: concurrency,
		LockTTL:     lockTTL,
	}
	config.Payroll.Location, err = time.LoadLocation(config.Payroll.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}

	// Holiday source configuration
	config.Holiday = HolidayConfig{
		GoogleCredentialsFile: getEnv("GOOGLE_CREDENTIALS_FILE", ""),
		GoogleCalendarID:      getEnv("GOOGLE_HOLIDAY_CALENDAR_ID", ""),
	}

	// Background jobs
	staleInterval, err := time.ParseDuration(getEnv("JOB_STALE_SHIFT_INTERVAL", "15m"))
	if err != nil {
		return nil, fmt.Errorf("invalid JOB_STALE_SHIFT_INTERVAL: %w", err)
	}
	syncInterval, err := time.ParseDuration(getEnv("JOB_HOLIDAY_SYNC_INTERVAL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid JOB_HOLIDAY_SYNC_INTERVAL: %w", err)
	}
	backupInterval, err := time.ParseDuration(getEnv("JOB_BACKUP_INTERVAL", "10m"))
	if err != nil {
		return nil, fmt.Errorf("invalid JOB_BACKUP_INTERVAL: %w", err)
	}

	config.Jobs = JobsConfig{
		Enabled:             getEnvBool("JOBS_ENABLED", true),
		StaleShiftInterval:  staleInterval,
		HolidaySyncInterval: syncInterval,
		BackupInterval:      backupInterval,
		BackupDir:           getEnv("BACKUP_DIR", "./storage"),
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.URL == "" && c.Database.Password == "" {
		return fmt.Errorf("DATABASE_URL or DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if len(c.JWT.Secret) < 32 && c.App.Env == "production" {
		return fmt.Errorf("JWT_SECRET_KEY must be at least 32 characters in production")
	}
	if c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("DB_MIN_CONNS must not exceed DB_MAX_CONNS")
	}
	if c.Payroll.LockTTL < time.Second {
		return fmt.Errorf("PAYROLL_LOCK_TTL must be at least 1s")
	}
	if c.Jobs.Enabled && (c.Jobs.StaleShiftInterval <= 0 || c.Jobs.HolidaySyncInterval <= 0 || c.Jobs.BackupInterval <= 0) {
		return fmt.Errorf("job intervals must be positive")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	if c.Database.URL != "" {
		return c.Database.URL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// SlogLevel maps LOG_LEVEL onto a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.App.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return b
}

func getEnvSlice(key string, fallback []string) []string {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	var result []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			result = append(result, item)
		}
	}
	return result
}
