package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers.
const (
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

type Config struct {
	Port        string
	GinMode     string
	LogLevel    string
	StoreDriver string
	MongoURI    string
	DBName      string
	JWTSecret   string
	CORSOrigins []string

	DefaultTTL         time.Duration
	SweepInterval      time.Duration
	AutoRejectSiblings bool

	RedisURL         string
	RabbitURL        string
	RabbitExchange   string
	CloudinaryURL    string
	CloudinaryName   string
	CloudinaryKey    string
	CloudinarySecret string
	ZeptoAPIURL      string
	ZeptoAPIKey      string
	EmailFrom        string
	ModerationInbox  string
}

// Load reads .env when present, then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:             getenv("APP_PORT", "8080"),
		GinMode:          getenv("GIN_MODE", "release"),
		LogLevel:         getenv("LOG_LEVEL", "info"),
		StoreDriver:      getenv("STORE_DRIVER", DriverMongo),
		MongoURI:         getenv("MONGO_URI", "mongodb://localhost:27017"),
		DBName:           getenv("MONGO_DB", "campus"),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		CORSOrigins:      splitList(getenv("CORS_ALLOWED_ORIGINS", "*")),
		RedisURL:         os.Getenv("REDIS_URL"),
		RabbitURL:        os.Getenv("RABBITMQ_URL"),
		RabbitExchange:   getenv("RABBITMQ_EXCHANGE", "campus.events"),
		CloudinaryURL:    os.Getenv("CLOUDINARY_URL"),
		CloudinaryName:   os.Getenv("CLOUDINARY_CLOUD_NAME"),
		CloudinaryKey:    os.Getenv("CLOUDINARY_API_KEY"),
		CloudinarySecret: os.Getenv("CLOUDINARY_API_SECRET"),
		ZeptoAPIURL:      os.Getenv("ZEPTO_API_URL"),
		ZeptoAPIKey:      os.Getenv("ZEPTO_API_KEY"),
		EmailFrom:        os.Getenv("EMAIL_FROM"),
		ModerationInbox:  os.Getenv("MODERATION_INBOX"),
	}

	var err error
	if cfg.DefaultTTL, err = duration("LOSTFOUND_DEFAULT_TTL", "720h"); err != nil {
		return nil, err
	}
	if cfg.SweepInterval, err = duration("LOSTFOUND_SWEEP_INTERVAL", "0"); err != nil {
		return nil, err
	}
	if cfg.AutoRejectSiblings, err = boolean("MODERATION_AUTO_REJECT_SIBLINGS", "false"); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.StoreDriver {
	case DriverMongo, DriverMemory:
	default:
		return fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", DriverMongo, DriverMemory, c.StoreDriver)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.DefaultTTL <= 0 {
		return fmt.Errorf("LOSTFOUND_DEFAULT_TTL must be positive")
	}
	if c.SweepInterval < 0 {
		return fmt.Errorf("LOSTFOUND_SWEEP_INTERVAL must not be negative")
	}
	return nil
}

// CloudinaryEnabled reports whether image uploads have credentials.
func (c *Config) CloudinaryEnabled() bool {
	return c.CloudinaryURL != "" || (c.CloudinaryName != "" && c.CloudinaryKey != "" && c.CloudinarySecret != "")
}

// EmailEnabled reports whether moderation mail can be sent.
func (c *Config) EmailEnabled() bool {
	return c.ZeptoAPIURL != "" && c.ZeptoAPIKey != "" && c.EmailFrom != "" && c.ModerationInbox != ""
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func duration(k, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenv(k, def))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", k, err)
	}
	return d, nil
}

func boolean(k, def string) (bool, error) {
	b, err := strconv.ParseBool(getenv(k, def))
	if err != nil {
		return false, fmt.Errorf("%s: %w", k, err)
	}
	return b, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
