package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Settings store backends.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
	StoreSQLite = "sqlite"
)

// Vehicle sources.
const (
	VehiclesStatic   = "static"
	VehiclesUpstream = "upstream"
)

// Server captures everything main needs to wire the gateway.
type Server struct {
	Addr        string `yaml:"addr"`
	Environment string `yaml:"environment"`
	LogLevel    string `yaml:"log_level"`

	Session      SessionConfig      `yaml:"session"`
	Upstream     UpstreamConfig     `yaml:"upstream"`
	Connectivity ConnectivityConfig `yaml:"connectivity"`
	Settings     SettingsConfig     `yaml:"settings"`
	Redis        RedisConfig        `yaml:"redis"`

	VehicleSource string `yaml:"vehicle_source"`
}

type SessionConfig struct {
	SigningKey    string        `yaml:"signing_key"`
	TTL           time.Duration `yaml:"ttl"`
	HydrationWait time.Duration `yaml:"hydration_wait"`
	LoginPath     string        `yaml:"login_path"`
	SecureCookies bool          `yaml:"secure_cookies"`
}

type UpstreamConfig struct {
	BaseURL    string        `yaml:"base_url"`
	Timeout    time.Duration `yaml:"timeout"`
	RetryCount int           `yaml:"retry_count"`
}

type ConnectivityConfig struct {
	// DefaultClientID is the tenant whose healthcheck decides online/offline.
	DefaultClientID  string        `yaml:"default_client_id"`
	PollInterval     time.Duration `yaml:"poll_interval"`
	FailureThreshold int           `yaml:"failure_threshold"`
}

type SettingsConfig struct {
	Store      string `yaml:"store"`
	FilePath   string `yaml:"file_path"`
	SQLitePath string `yaml:"sqlite_path"`
}

type RedisConfig struct {
	URL          string        `yaml:"url"`
	PoolSize     int           `yaml:"pool_size"`
	MinIdleConns int           `yaml:"min_idle_conns"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

const devSigningKey = "dev-session-key-change-in-production"

// Defaults returns the configuration used when nothing is set.
func Defaults() Server {
	return Server{
		Addr:        ":8080",
		Environment: "dev",
		LogLevel:    "info",
		Session: SessionConfig{
			SigningKey:    devSigningKey,
			TTL:           15 * time.Minute,
			HydrationWait: 2 * time.Second,
			LoginPath:     "/login",
		},
		Upstream: UpstreamConfig{
			BaseURL:    "http://localhost:5000/api",
			Timeout:    15 * time.Second,
			RetryCount: 2,
		},
		Connectivity: ConnectivityConfig{
			PollInterval:     30 * time.Second,
			FailureThreshold: 3,
		},
		Settings: SettingsConfig{
			Store:      StoreFile,
			FilePath:   "data/settings.json",
			SQLitePath: "data/settings.db",
		},
		Redis: RedisConfig{
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		VehicleSource: VehiclesStatic,
	}
}

// Load builds the config from defaults, then the optional YAML file named by
// CHECKLIST_CONFIG, then environment variables.
func Load() (Server, error) {
	cfg := Defaults()
	if path := os.Getenv("CHECKLIST_CONFIG"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Server{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Server{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

// Validate rejects combinations main cannot wire.
func (c Server) Validate() error {
	switch c.Settings.Store {
	case StoreMemory, StoreFile, StoreSQLite:
	case StoreRedis:
		if c.Redis.URL == "" {
			return fmt.Errorf("settings store %q requires REDIS_URL", StoreRedis)
		}
	default:
		return fmt.Errorf("unknown settings store %q", c.Settings.Store)
	}
	if c.VehicleSource != VehiclesStatic && c.VehicleSource != VehiclesUpstream {
		return fmt.Errorf("unknown vehicle source %q", c.VehicleSource)
	}
	if c.Environment != "dev" && c.Session.SigningKey == devSigningKey {
		return fmt.Errorf("SESSION_SIGNING_KEY must be set outside dev")
	}
	return nil
}

func applyEnv(cfg *Server) {
	setString(&cfg.Addr, "CHECKLIST_ADDR")
	setString(&cfg.Environment, "CHECKLIST_ENV")
	setString(&cfg.LogLevel, "LOG_LEVEL")

	setString(&cfg.Session.SigningKey, "SESSION_SIGNING_KEY")
	setDuration(&cfg.Session.TTL, "SESSION_TTL")
	setDuration(&cfg.Session.HydrationWait, "HYDRATION_WAIT")
	setString(&cfg.Session.LoginPath, "LOGIN_PATH")
	setBool(&cfg.Session.SecureCookies, "SECURE_COOKIES")

	setString(&cfg.Upstream.BaseURL, "UPSTREAM_BASE_URL")
	setDuration(&cfg.Upstream.Timeout, "UPSTREAM_TIMEOUT")
	setInt(&cfg.Upstream.RetryCount, "UPSTREAM_RETRY_COUNT")

	setString(&cfg.Connectivity.DefaultClientID, "DEFAULT_CLIENT_ID")
	setDuration(&cfg.Connectivity.PollInterval, "HEALTHCHECK_INTERVAL")
	setInt(&cfg.Connectivity.FailureThreshold, "HEALTHCHECK_FAILURE_THRESHOLD")

	setString(&cfg.Settings.Store, "SETTINGS_STORE")
	setString(&cfg.Settings.FilePath, "SETTINGS_FILE")
	setString(&cfg.Settings.SQLitePath, "SETTINGS_SQLITE_PATH")
	setString(&cfg.Redis.URL, "REDIS_URL")

	setString(&cfg.VehicleSource, "VEHICLE_SOURCE")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Unparseable values are ignored and the previous value is kept.
func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}
