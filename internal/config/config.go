package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	// Environment
	GoEnv string `env:"GO_ENV" default:"development"`

	// HTTP
	HTTPHost        string        `env:"HTTP_HOST" default:"0.0.0.0"`
	HTTPPort        int           `env:"HTTP_PORT" default:"8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" default:"10s"`
	CORSOrigins     []string      `env:"CORS_ORIGINS" default:"http://localhost:3000"`
	DefaultPageSize int           `env:"DEFAULT_PAGE_SIZE" default:"20"`

	// Database
	DatabaseURL       string        `env:"DATABASE_URL" required:"true"`
	DBMaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" default:"25"`
	DBMaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" default:"5"`
	DBConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" default:"1h"`
	DBLogLevel        string        `env:"DB_LOG_LEVEL" default:"warn"`

	// Authentication
	JWTSecret                 string        `env:"JWT_SECRET" required:"true"`
	AccessTokenTTL            time.Duration `env:"ACCESS_TOKEN_TTL" default:"24h"`
	ConfirmationCodeLength    int           `env:"CONFIRMATION_CODE_LENGTH" default:"8"`
	ConfirmationCodeSingleUse bool          `env:"CONFIRMATION_CODE_SINGLE_USE" default:"false"`
	AuthRateLimitRPS          float64       `env:"AUTH_RATE_LIMIT_RPS" default:"1"`
	AuthRateLimitBurst        int           `env:"AUTH_RATE_LIMIT_BURST" default:"5"`

	// Redis mail outbox, empty URL disables the queue
	RedisURL      string `env:"REDIS_URL"`
	MailOutboxKey string `env:"MAIL_OUTBOX_KEY" default:"reviewhub:mail:outbox"`

	// SMTP
	SMTPHost     string `env:"SMTP_HOST" default:"localhost"`
	SMTPPort     int    `env:"SMTP_PORT" default:"587"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	SMTPFrom     string `env:"SMTP_FROM" default:"ReviewHub <noreply@reviewhub.local>"`
	SMTPTLS      bool   `env:"SMTP_TLS" default:"true"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"json"`
	LogFile   string `env:"LOG_FILE"`
}

// LoadConfig reads .env, then the optional YAML file at configPath, then the
// process environment. Later sources win. Keys are the lower-cased variable
// names, so HTTP_PORT in the environment and http_port in YAML are the same key.
func LoadConfig(configPath string) (*Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("warning: could not load .env file: %v", err)
	}

	k := koanf.New(".")

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", strings.ToLower), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	l := loader{k: k}
	config := &Config{}

	l.String(&config.GoEnv, "GO_ENV", "development")

	l.String(&config.HTTPHost, "HTTP_HOST", "0.0.0.0")
	l.Int(&config.HTTPPort, "HTTP_PORT", 8080)
	l.Duration(&config.ShutdownTimeout, "SHUTDOWN_TIMEOUT", 10*time.Second)
	l.StringSlice(&config.CORSOrigins, "CORS_ORIGINS", []string{"http://localhost:3000"})
	l.Int(&config.DefaultPageSize, "DEFAULT_PAGE_SIZE", 20)

	l.StringRequired(&config.DatabaseURL, "DATABASE_URL")
	l.Int(&config.DBMaxOpenConns, "DB_MAX_OPEN_CONNS", 25)
	l.Int(&config.DBMaxIdleConns, "DB_MAX_IDLE_CONNS", 5)
	l.Duration(&config.DBConnMaxLifetime, "DB_CONN_MAX_LIFETIME", time.Hour)
	l.String(&config.DBLogLevel, "DB_LOG_LEVEL", "warn")

	l.StringRequired(&config.JWTSecret, "JWT_SECRET")
	l.Duration(&config.AccessTokenTTL, "ACCESS_TOKEN_TTL", 24*time.Hour)
	l.Int(&config.ConfirmationCodeLength, "CONFIRMATION_CODE_LENGTH", 8)
	l.Bool(&config.ConfirmationCodeSingleUse, "CONFIRMATION_CODE_SINGLE_USE", false)
	l.Float(&config.AuthRateLimitRPS, "AUTH_RATE_LIMIT_RPS", 1)
	l.Int(&config.AuthRateLimitBurst, "AUTH_RATE_LIMIT_BURST", 5)

	l.String(&config.RedisURL, "REDIS_URL", "")
	l.String(&config.MailOutboxKey, "MAIL_OUTBOX_KEY", "reviewhub:mail:outbox")

	l.String(&config.SMTPHost, "SMTP_HOST", "localhost")
	l.Int(&config.SMTPPort, "SMTP_PORT", 587)
	l.String(&config.SMTPUsername, "SMTP_USERNAME", "")
	l.String(&config.SMTPPassword, "SMTP_PASSWORD", "")
	l.String(&config.SMTPFrom, "SMTP_FROM", "ReviewHub <noreply@reviewhub.local>")
	l.Bool(&config.SMTPTLS, "SMTP_TLS", true)

	l.String(&config.LogLevel, "LOG_LEVEL", "info")
	l.String(&config.LogFormat, "LOG_FORMAT", "json")
	l.String(&config.LogFile, "LOG_FILE", "")

	if l.err != nil {
		return nil, l.err
	}
	return config, nil
}

// loader applies defaults and type conversion on top of koanf. The first
// error sticks and later calls become no-ops.
type loader struct {
	k   *koanf.Koanf
	err error
}

func (l *loader) raw(key string) (string, bool) {
	v := l.k.Get(strings.ToLower(key))
	if v == nil {
		return "", false
	}
	if items, ok := v.([]any); ok {
		parts := make([]string, 0, len(items))
		for _, item := range items {
			parts = append(parts, fmt.Sprint(item))
		}
		return strings.Join(parts, ","), true
	}
	s := fmt.Sprint(v)
	return s, s != ""
}

func (l *loader) String(target *string, key, defaultValue string) {
	if value, ok := l.raw(key); ok {
		*target = value
	} else {
		*target = defaultValue
	}
}

func (l *loader) StringRequired(target *string, key string) {
	if l.err != nil {
		return
	}
	value, ok := l.raw(key)
	if !ok {
		l.err = fmt.Errorf("required environment variable %s is not set", key)
		return
	}
	*target = value
}

func (l *loader) Int(target *int, key string, defaultValue int) {
	if l.err != nil {
		return
	}
	if value, ok := l.raw(key); ok {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			l.err = fmt.Errorf("invalid integer value for %s: %v", key, err)
			return
		}
		*target = parsed
	} else {
		*target = defaultValue
	}
}

func (l *loader) Float(target *float64, key string, defaultValue float64) {
	if l.err != nil {
		return
	}
	if value, ok := l.raw(key); ok {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			l.err = fmt.Errorf("invalid float value for %s: %v", key, err)
			return
		}
		*target = parsed
	} else {
		*target = defaultValue
	}
}

func (l *loader) Bool(target *bool, key string, defaultValue bool) {
	if l.err != nil {
		return
	}
	if value, ok := l.raw(key); ok {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			l.err = fmt.Errorf("invalid boolean value for %s: %v", key, err)
			return
		}
		*target = parsed
	} else {
		*target = defaultValue
	}
}

func (l *loader) Duration(target *time.Duration, key string, defaultValue time.Duration) {
	if l.err != nil {
		return
	}
	if value, ok := l.raw(key); ok {
		parsed, err := time.ParseDuration(value)
		if err != nil {
			l.err = fmt.Errorf("invalid duration value for %s: %v", key, err)
			return
		}
		*target = parsed
	} else {
		*target = defaultValue
	}
}

func (l *loader) StringSlice(target *[]string, key string, defaultValue []string) {
	value, ok := l.raw(key)
	if !ok {
		*target = defaultValue
		return
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	*target = out
}

// Validate performs validation on the loaded configuration
func (c *Config) Validate() error {
	var errs []string

	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		errs = append(errs, "HTTP_PORT must be between 1 and 65535")
	}
	if c.SMTPPort < 1 || c.SMTPPort > 65535 {
		errs = append(errs, "SMTP_PORT must be between 1 and 65535")
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLogLevels, c.LogLevel) {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL must be one of: %s", strings.Join(validLogLevels, ", ")))
	}
	validLogFormats := []string{"console", "json"}
	if !contains(validLogFormats, c.LogFormat) {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT must be one of: %s", strings.Join(validLogFormats, ", ")))
	}
	validDBLogLevels := []string{"silent", "error", "warn", "info"}
	if !contains(validDBLogLevels, c.DBLogLevel) {
		errs = append(errs, fmt.Sprintf("DB_LOG_LEVEL must be one of: %s", strings.Join(validDBLogLevels, ", ")))
	}

	if len(c.JWTSecret) < 32 {
		errs = append(errs, "JWT_SECRET should be at least 32 characters long")
	}
	if c.AccessTokenTTL <= 0 {
		errs = append(errs, "ACCESS_TOKEN_TTL must be positive")
	}
	if c.ConfirmationCodeLength < 6 {
		errs = append(errs, "CONFIRMATION_CODE_LENGTH must be at least 6")
	}
	if c.AuthRateLimitRPS <= 0 || c.AuthRateLimitBurst < 1 {
		errs = append(errs, "AUTH_RATE_LIMIT_RPS and AUTH_RATE_LIMIT_BURST must be positive")
	}
	if c.DefaultPageSize < 1 || c.DefaultPageSize > 100 {
		errs = append(errs, "DEFAULT_PAGE_SIZE must be between 1 and 100")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GoEnv == "development"
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GoEnv == "production"
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.HTTPHost, c.HTTPPort)
}

// ConfigPath returns the YAML config path from CONFIG_FILE, or "" when unset
// or missing on disk.
func ConfigPath() string {
	p := os.Getenv("CONFIG_FILE")
	if p == "" {
		p = "config.yaml"
	}
	if _, err := os.Stat(p); err != nil {
		return ""
	}
	return p
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
