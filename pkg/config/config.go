package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config is the storefront server configuration.
type Config struct {
	App           AppConfig
	Upstream      UpstreamConfig
	Redis         RedisConfig
	Session       SessionConfig
	AuthRateLimit AuthRateLimitConfig
	CORS          CORSConfig
}

// CLIConfig is the subset the shopctl binary needs; it never talks to redis.
type CLIConfig struct {
	App      AppConfig
	Upstream UpstreamConfig
	CLI      CLISessionConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Upstream.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func LoadCLI() (*CLIConfig, error) {
	var cfg CLIConfig
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Upstream.normalize(); err != nil {
		return nil, err
	}
	if cfg.CLI.SessionFile == "" {
		cfg.CLI.SessionFile = defaultSessionFile()
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"STOREFRONT_APP_ENV" default:"dev"`
	Port         string `envconfig:"STOREFRONT_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"STOREFRONT_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"STOREFRONT_LOG_FORMAT"`
	LogWarnStack bool   `envconfig:"STOREFRONT_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// Format is the configured log format, defaulting to console output in dev
// and JSON elsewhere.
func (a AppConfig) Format() string {
	if a.LogFormat != "" {
		return a.LogFormat
	}
	if a.IsDev() {
		return "console"
	}
	return "json"
}

// UpstreamConfig points at the shop REST API. Requests go to BaseURL + "/api".
type UpstreamConfig struct {
	BaseURL   string        `envconfig:"STOREFRONT_UPSTREAM_BASE_URL" required:"true"`
	Timeout   time.Duration `envconfig:"STOREFRONT_UPSTREAM_TIMEOUT" default:"15s"`
	AssetHost string        `envconfig:"STOREFRONT_ASSET_HOST"`
}

func (u *UpstreamConfig) normalize() error {
	u.BaseURL = strings.TrimRight(strings.TrimSpace(u.BaseURL), "/")
	if u.BaseURL == "" {
		return fmt.Errorf("%s is required", EnvUpstreamBaseURL)
	}
	if u.AssetHost == "" {
		u.AssetHost = u.BaseURL
	}
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"STOREFRONT_REDIS_URL" required:"true"`
	Address      string        `envconfig:"STOREFRONT_REDIS_ADDR"`
	Password     string        `envconfig:"STOREFRONT_REDIS_PASSWORD"`
	DB           int           `envconfig:"STOREFRONT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STOREFRONT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STOREFRONT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"STOREFRONT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// SessionConfig controls the browser cookie and in-memory session registry.
type SessionConfig struct {
	Secret        string        `envconfig:"STOREFRONT_SESSION_SECRET" required:"true"`
	CookieName    string        `envconfig:"STOREFRONT_SESSION_COOKIE_NAME" default:"storefront_sid"`
	Secure        bool          `envconfig:"STOREFRONT_SESSION_SECURE" default:"false"`
	MaxAge        time.Duration `envconfig:"STOREFRONT_SESSION_MAX_AGE" default:"168h"`
	IdleTimeout   time.Duration `envconfig:"STOREFRONT_SESSION_IDLE_TIMEOUT" default:"30m"`
	PruneInterval time.Duration `envconfig:"STOREFRONT_SESSION_PRUNE_INTERVAL" default:"1m"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"STOREFRONT_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"STOREFRONT_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"STOREFRONT_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"STOREFRONT_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"STOREFRONT_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"STOREFRONT_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"STOREFRONT_CORS_ALLOWED_ORIGINS" default:"http://localhost:5173"`
}

type CLISessionConfig struct {
	SessionFile string `envconfig:"STOREFRONT_CLI_SESSION_FILE"`
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "shopctl", "session.json")
}
