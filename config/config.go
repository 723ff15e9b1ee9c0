package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Availability sources understood by ReservasConfig.AvailabilitySource.
const (
	AvailabilityFromService      = "service"
	AvailabilityFromReservations = "reservations"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Reservas   ReservasConfig   `yaml:"reservas"`
	Database   DatabaseConfig   `yaml:"database"`
	Auth       AuthConfig       `yaml:"auth"`
	Push       PushConfig       `yaml:"push"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
}

// WorkerPoolConfig holds the configuration for the notification worker pool.
type WorkerPoolConfig struct {
	Size      int `yaml:"size"`
	QueueSize int `yaml:"queue_size"`
}

// PushConfig holds the VAPID keys for web push notifications.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// ServerConfig holds the HTTP-facing configuration.
type ServerConfig struct {
	Port            int            `yaml:"port"`
	RateLimitPerSec float64        `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int            `yaml:"rate_limit_burst"`
	CacheTTLSeconds int            `yaml:"cache_ttl_seconds"`
	CacheTTL        time.Duration  `yaml:"-"`
	AllowedOrigins  []string       `yaml:"allowed_origins"`
	UIURL           string         `yaml:"ui_url"`
	Timezone        string         `yaml:"timezone"`
	Location        *time.Location `yaml:"-"`
}

// ReservasConfig describes the external reservation service.
type ReservasConfig struct {
	BaseURL                  string            `yaml:"base_url"`
	TimeoutSeconds           int               `yaml:"timeout_seconds"`
	Timeout                  time.Duration     `yaml:"-"`
	HTTPProxy                string            `yaml:"http_proxy"`
	Headers                  map[string]string `yaml:"headers"`
	SharedSecret             string            `yaml:"shared_secret"`
	AvailabilitySource       string            `yaml:"availability_source"`
	AvailabilityCacheSeconds int               `yaml:"availability_cache_seconds"`
	AvailabilityCacheTTL     time.Duration     `yaml:"-"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	Driver                 string `yaml:"driver"`
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// AuthConfig holds the identity provider and session settings.
type AuthConfig struct {
	GoogleClientID     string        `yaml:"google_client_id"`
	GoogleClientSecret string        `yaml:"google_client_secret"`
	RedirectURL        string        `yaml:"redirect_url"`
	SessionSecret      string        `yaml:"session_secret"`
	SessionTTLHours    int           `yaml:"session_ttl_hours"`
	SessionTTL         time.Duration `yaml:"-"`
	CookieName         string        `yaml:"cookie_name"`
	CookieSecure       bool          `yaml:"cookie_secure"`
}

// secrets may be supplied through ROOMY_* environment variables instead of
// the YAML file. Non-empty values win.
type secrets struct {
	DatabaseDSN          string `envconfig:"DATABASE_DSN"`
	GoogleClientSecret   string `envconfig:"GOOGLE_CLIENT_SECRET"`
	SessionSecret        string `envconfig:"SESSION_SECRET"`
	ReservasSharedSecret string `envconfig:"RESERVAS_SHARED_SECRET"`
	VAPIDPrivateKey      string `envconfig:"VAPID_PRIVATE_KEY"`
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *Config) applyEnv() error {
	var s secrets
	if err := envconfig.Process("ROOMY", &s); err != nil {
		return fmt.Errorf("failed to read environment overrides: %w", err)
	}
	override := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	override(&cfg.Database.DSN, s.DatabaseDSN)
	override(&cfg.Auth.GoogleClientSecret, s.GoogleClientSecret)
	override(&cfg.Auth.SessionSecret, s.SessionSecret)
	override(&cfg.Reservas.SharedSecret, s.ReservasSharedSecret)
	override(&cfg.Push.PrivateKey, s.VAPIDPrivateKey)
	return nil
}

func (cfg *Config) applyDefaults() error {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 300
	}
	cfg.Server.CacheTTL = time.Duration(cfg.Server.CacheTTLSeconds) * time.Second

	if cfg.Server.Timezone == "" {
		cfg.Server.Timezone = "UTC"
	}
	loc, err := time.LoadLocation(cfg.Server.Timezone)
	if err != nil {
		return fmt.Errorf("failed to load timezone %q: %w", cfg.Server.Timezone, err)
	}
	cfg.Server.Location = loc

	if cfg.Reservas.BaseURL == "" {
		return fmt.Errorf("reservas.base_url must be set")
	}
	if cfg.Reservas.TimeoutSeconds <= 0 {
		cfg.Reservas.TimeoutSeconds = 10
	}
	cfg.Reservas.Timeout = time.Duration(cfg.Reservas.TimeoutSeconds) * time.Second

	switch cfg.Reservas.AvailabilitySource {
	case "":
		cfg.Reservas.AvailabilitySource = AvailabilityFromService
	case AvailabilityFromService, AvailabilityFromReservations:
	default:
		return fmt.Errorf("unknown reservas.availability_source %q", cfg.Reservas.AvailabilitySource)
	}
	if cfg.Reservas.AvailabilityCacheSeconds <= 0 {
		cfg.Reservas.AvailabilityCacheSeconds = 30
	}
	cfg.Reservas.AvailabilityCacheTTL = time.Duration(cfg.Reservas.AvailabilityCacheSeconds) * time.Second

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "postgres"
	}

	if cfg.Auth.SessionTTLHours <= 0 {
		cfg.Auth.SessionTTLHours = 24
	}
	cfg.Auth.SessionTTL = time.Duration(cfg.Auth.SessionTTLHours) * time.Hour
	if cfg.Auth.CookieName == "" {
		cfg.Auth.CookieName = "roomy_session"
	}

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.WorkerPool.Size <= 0 {
		log.Printf("worker_pool.size is not set or invalid; defaulting to 1")
		cfg.WorkerPool.Size = 1
	}
	if cfg.WorkerPool.QueueSize < cfg.WorkerPool.Size {
		cfg.WorkerPool.QueueSize = cfg.WorkerPool.Size
	}

	return nil
}
