package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Env       string `env:"APP_ENV" envDefault:"development"`
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Identity  IdentityConfig
	Calendar  CalendarConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	OTEL      OTELConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	Port int    `env:"SERVER_PORT" envDefault:"8080"`
	// TrustProxyHeaders honours X-Forwarded-For for client addresses
	TrustProxyHeaders bool `env:"TRUST_PROXY_HEADERS" envDefault:"false"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host           string `env:"DB_HOST" envDefault:"localhost"`
	Port           int    `env:"DB_PORT" envDefault:"5432"`
	User           string `env:"DB_USER" envDefault:"postgres"`
	Password       string `env:"DB_PASSWORD"`
	Database       string `env:"DB_NAME" envDefault:"workshop"`
	SSLMode        string `env:"DB_SSLMODE" envDefault:"disable"`
	MigrationsPath string `env:"MIGRATIONS_PATH" envDefault:"./migrations"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string `env:"REDIS_HOST" envDefault:"localhost"`
	Port     int    `env:"REDIS_PORT" envDefault:"6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

// IdentityConfig holds the hosted identity service configuration
type IdentityConfig struct {
	URL            string        `env:"IDENTITY_URL" envDefault:"http://localhost:9999"`
	AnonKey        string        `env:"IDENTITY_ANON_KEY"`
	ServiceRoleKey string        `env:"IDENTITY_SERVICE_ROLE_KEY"`
	JWTSecret      string        `env:"IDENTITY_JWT_SECRET"`
	JWTAudience    string        `env:"IDENTITY_JWT_AUDIENCE" envDefault:"authenticated"`
	Timeout        time.Duration `env:"IDENTITY_TIMEOUT" envDefault:"10s"`
	RoleCacheTTL   time.Duration `env:"ROLE_CACHE_TTL" envDefault:"1m"`
	RoleLookupWait time.Duration `env:"ROLE_LOOKUP_TIMEOUT" envDefault:"3s"`
}

// CalendarConfig holds booking rules
type CalendarConfig struct {
	// ExcludeFirstSaturday disables Saturdays falling in the first week of a month.
	ExcludeFirstSaturday bool          `env:"CALENDAR_EXCLUDE_FIRST_SATURDAY" envDefault:"true"`
	MaxSelectedDates     int           `env:"CALENDAR_MAX_SELECTED_DATES" envDefault:"6"`
	UserPageSize         int           `env:"ADMIN_USER_PAGE_SIZE" envDefault:"20"`
	SelectionTTL         time.Duration `env:"SELECTION_TTL" envDefault:"1h"`
	Location             string        `env:"CALENDAR_TIMEZONE" envDefault:"Europe/Paris"`
}

// CORSConfig holds allowed origins for browser clients
type CORSConfig struct {
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
}

// RateLimitConfig holds the auth endpoint limiter settings
type RateLimitConfig struct {
	AuthPerMinute int `env:"AUTH_RATE_PER_MINUTE" envDefault:"10"`
	AuthBurst     int `env:"AUTH_RATE_BURST" envDefault:"5"`
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string `env:"OTEL_SERVICE_NAME" envDefault:"workshop-booking"`
	ServiceVersion string `env:"OTEL_SERVICE_VERSION" envDefault:"1.0.0"`
	Endpoint       string `env:"OTEL_ENDPOINT"`
	Enabled        bool   `env:"OTEL_ENABLED" envDefault:"false"`
}

// Load loads configuration from environment variables, reading a .env file
// first when one is present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if cfg.Calendar.MaxSelectedDates <= 0 {
		return nil, fmt.Errorf("CALENDAR_MAX_SELECTED_DATES must be positive")
	}
	if cfg.Calendar.UserPageSize <= 0 {
		return nil, fmt.Errorf("ADMIN_USER_PAGE_SIZE must be positive")
	}
	if ttl := cfg.Identity.RoleCacheTTL; ttl < 0 || (ttl > 0 && ttl < time.Second) {
		return nil, fmt.Errorf("ROLE_CACHE_TTL must be 0 (disabled) or at least 1s")
	}
	if cfg.Calendar.SelectionTTL < time.Second {
		return nil, fmt.Errorf("SELECTION_TTL must be at least 1s")
	}
	if _, err := time.LoadLocation(cfg.Calendar.Location); err != nil {
		return nil, fmt.Errorf("invalid CALENDAR_TIMEZONE: %w", err)
	}
	return &cfg, nil
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// DatabaseURL returns the URL form used by the migration runner
func (c *DatabaseConfig) DatabaseURL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
