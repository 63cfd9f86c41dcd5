package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	// HTTP server
	Server ServerConfig `mapstructure:"server"`

	// PostgreSQL
	Postgres PostgresConfig `mapstructure:"postgres"`

	// Redis
	Redis RedisConfig `mapstructure:"redis"`

	// NATS
	NATS NATSConfig `mapstructure:"nats"`

	// Prometheus
	Prometheus PrometheusConfig `mapstructure:"prometheus"`

	// Beacon cookies and identity
	Beacon BeaconConfig `mapstructure:"beacon"`

	// Background task queue
	Queue QueueConfig `mapstructure:"queue"`

	// Duplicate identity scan
	Integrity IntegrityConfig `mapstructure:"integrity"`
}

type ServerConfig struct {
	Addr           string   `mapstructure:"addr"`
	ProxyHeader    string   `mapstructure:"proxy_header"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type PostgresConfig struct {
	Host              string `mapstructure:"host"`
	User              string `mapstructure:"user"`
	Password          string `mapstructure:"password"`
	Database          string `mapstructure:"database"`
	Port              int    `mapstructure:"port"`
	SSLMode           string `mapstructure:"sslmode"`
	MaxConns          int32  `mapstructure:"max_conns"`
	MinConns          int32  `mapstructure:"min_conns"`
	MaxConnLifetime   string `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime   string `mapstructure:"max_conn_idle_time"`
	HealthCheckPeriod string `mapstructure:"health_check_period"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type NATSConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	User        string `mapstructure:"user"`
	Password    string `mapstructure:"password"`
	MonitorPort int    `mapstructure:"monitor_port"`
}

type PrometheusConfig struct {
	Port int    `mapstructure:"port"`
	Path string `mapstructure:"path"`
}

type BeaconConfig struct {
	CookieName         string        `mapstructure:"cookie_name"`
	CookieDomain       string        `mapstructure:"cookie_domain"`
	CookieMaxAgeYears  int           `mapstructure:"cookie_max_age_years"`
	CookieSecure       bool          `mapstructure:"cookie_secure"`
	SessionCookieName  string        `mapstructure:"session_cookie_name"`
	SessionIdleMinutes int           `mapstructure:"session_idle_minutes"`
	IdentityCacheTTL   time.Duration `mapstructure:"identity_cache_ttl"`
}

// QueueConfig selects the background task driver. "jetstream" survives
// restarts; "local" runs tasks on an in-process worker pool.
type QueueConfig struct {
	Driver     string        `mapstructure:"driver"`
	Workers    int           `mapstructure:"workers"`
	Buffer     int           `mapstructure:"buffer"`
	FetchBatch int           `mapstructure:"fetch_batch"`
	FetchWait  time.Duration `mapstructure:"fetch_wait"`
	// PublishTimeout bounds the wait for a JetStream ack on the request path.
	PublishTimeout time.Duration `mapstructure:"publish_timeout"`
}

type IntegrityConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

const (
	QueueDriverJetStream = "jetstream"
	QueueDriverLocal     = "local"
)

func Load() (*Config, error) {
	// Load local .env for development (ignored when missing).
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()

	// Search for config/config.yaml (plus root for overrides).
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// Allow environment variables to override YAML entries.
	v.SetEnvPrefix("")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Preserve legacy env variable names.
	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Queue.Driver != QueueDriverJetStream && cfg.Queue.Driver != QueueDriverLocal {
		return nil, fmt.Errorf("unsupported queue driver %q", cfg.Queue.Driver)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")

	v.SetDefault("beacon.cookie_name", "Beacon")
	v.SetDefault("beacon.cookie_max_age_years", 11)
	v.SetDefault("beacon.cookie_secure", true)
	v.SetDefault("beacon.session_cookie_name", "BeaconSession")
	v.SetDefault("beacon.session_idle_minutes", 20)
	v.SetDefault("beacon.identity_cache_ttl", 24*time.Hour)

	v.SetDefault("prometheus.port", 9090)
	v.SetDefault("prometheus.path", "/metrics")

	v.SetDefault("queue.driver", QueueDriverJetStream)
	v.SetDefault("queue.workers", 4)
	v.SetDefault("queue.buffer", 1024)
	v.SetDefault("queue.fetch_batch", 10)
	v.SetDefault("queue.fetch_wait", 5*time.Second)
	v.SetDefault("queue.publish_timeout", 2*time.Second)

	v.SetDefault("integrity.interval", 5*time.Minute)
}

func bindEnvVars(v *viper.Viper) {
	// Server
	v.BindEnv("server.addr", "HTTP_ADDR")
	v.BindEnv("server.proxy_header", "HTTP_PROXY_HEADER")

	// PostgreSQL
	v.BindEnv("postgres.host", "PG_HOST")
	v.BindEnv("postgres.user", "PG_USER")
	v.BindEnv("postgres.password", "PG_PASSWORD")
	v.BindEnv("postgres.database", "PG_DB")
	v.BindEnv("postgres.port", "PG_PORT")
	v.BindEnv("postgres.sslmode", "PG_SSLMODE")
	v.BindEnv("postgres.max_conns", "PG_MAX_CONNS")

	// Redis
	v.BindEnv("redis.host", "REDIS_HOST")
	v.BindEnv("redis.port", "REDIS_PORT")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("redis.db", "REDIS_DB")

	// NATS
	v.BindEnv("nats.host", "NATS_HOST")
	v.BindEnv("nats.port", "NATS_PORT")
	v.BindEnv("nats.user", "NATS_USER")
	v.BindEnv("nats.password", "NATS_PASSWORD")
	v.BindEnv("nats.monitor_port", "NATS_MONITOR_PORT")

	// Prometheus
	v.BindEnv("prometheus.port", "PROM_PORT")

	// Beacon
	v.BindEnv("beacon.cookie_domain", "BEACON_COOKIE_DOMAIN")
	v.BindEnv("beacon.cookie_secure", "BEACON_COOKIE_SECURE")

	// Queue
	v.BindEnv("queue.driver", "QUEUE_DRIVER")
	v.BindEnv("queue.workers", "QUEUE_WORKERS")
}
