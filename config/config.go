package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	scheduledomain "github.com/Black-And-White-Club/league-scheduler/app/modules/schedule/domain"
	"github.com/Black-And-White-Club/league-scheduler/pkg/observability"
)

// Config struct to hold the configuration settings
type Config struct {
	Postgres      PostgresConfig      `yaml:"postgres"`
	NATS          NATSConfig          `yaml:"nats"`
	Redis         RedisConfig         `yaml:"redis"`
	HTTP          HTTPConfig          `yaml:"http"`
	JWT           JWTConfig           `yaml:"jwt"`
	Observability ObservabilityConfig `yaml:"observability"`
	Schedule      ScheduleConfig      `yaml:"schedule"`
}

// PostgresConfig holds Postgres configuration.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
	// MaxWorkers caps concurrent River jobs.
	MaxWorkers int `yaml:"max_workers"`
}

// NATSConfig holds NATS configuration.
type NATSConfig struct {
	URL     string        `yaml:"url"`
	Durable string        `yaml:"durable"`
	AckWait time.Duration `yaml:"ack_wait"`
}

// RedisConfig holds Redis configuration. An empty URL disables the analysis
// cache and falls back to an in-process build lock.
type RedisConfig struct {
	URL string `yaml:"url"`
}

// HTTPConfig holds the admin API configuration.
type HTTPConfig struct {
	Address        string        `yaml:"address"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	RateLimit      float64       `yaml:"rate_limit"`
	RateBurst      int           `yaml:"rate_burst"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// JWTConfig holds JWT configuration.
type JWTConfig struct {
	Secret     string        `yaml:"secret"`
	DefaultTTL time.Duration `yaml:"default_ttl"`
}

// ObservabilityConfig holds configuration for observability components
type ObservabilityConfig struct {
	MetricsAddress string `yaml:"metrics_address"`
	Environment    string `yaml:"environment"`
	LogLevel       string `yaml:"log_level"`
}

// ScheduleConfig holds the auto-build tunables.
type ScheduleConfig struct {
	AgegroupNaming       string        `yaml:"agegroup_naming"`
	AgegroupYearDelta    int           `yaml:"agegroup_year_delta"`
	DefaultMinGapMinutes int           `yaml:"default_min_gap_minutes"`
	AnalysisCacheTTL     time.Duration `yaml:"analysis_cache_ttl"`
	BuildLockTTL         time.Duration `yaml:"build_lock_ttl"`
	// TimeZone is the IANA zone for seasons that do not set their own.
	TimeZone string `yaml:"time_zone"`
}

// Normalizer returns the configured agegroup name normalizer.
func (s ScheduleConfig) Normalizer() (scheduledomain.NameNormalizer, error) {
	return scheduledomain.NormalizerFor(s.AgegroupNaming, s.AgegroupYearDelta)
}

// DefaultMinGap is the rest gap used for divisions that do not set one.
func (s ScheduleConfig) DefaultMinGap() time.Duration {
	return time.Duration(s.DefaultMinGapMinutes) * time.Minute
}

// Location loads the default season time zone.
func (s ScheduleConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(s.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid schedule time zone %q: %w", s.TimeZone, err)
	}
	return loc, nil
}

// LoadConfig loads the configuration from a YAML file. Environment variables
// override file values; a missing file means environment-only loading.
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return loadConfigFromEnv()
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

// loadConfigFromEnv loads the configuration from environment variables.
func loadConfigFromEnv() (*Config, error) {
	var cfg Config
	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}

	if cfg.Postgres.DSN == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable not set")
	}
	if cfg.NATS.URL == "" {
		return nil, fmt.Errorf("NATS_URL environment variable not set")
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Redis.URL = v
	}
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.JWT.Secret = v
	}
	if v := os.Getenv("METRICS_ADDRESS"); v != "" {
		cfg.Observability.MetricsAddress = v
	}
	if v := os.Getenv("ENV"); v != "" {
		cfg.Observability.Environment = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}
	if v := os.Getenv("AGEGROUP_NAMING"); v != "" {
		cfg.Schedule.AgegroupNaming = v
	}
	if v := os.Getenv("AGEGROUP_YEAR_DELTA"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid AGEGROUP_YEAR_DELTA value: %w", err)
		}
		cfg.Schedule.AgegroupYearDelta = n
	}
	if v := os.Getenv("DEFAULT_MIN_GAP_MINUTES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid DEFAULT_MIN_GAP_MINUTES value: %w", err)
		}
		cfg.Schedule.DefaultMinGapMinutes = n
	}
	if v := os.Getenv("ANALYSIS_CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid ANALYSIS_CACHE_TTL value: %w", err)
		}
		cfg.Schedule.AnalysisCacheTTL = d
	}
	if v := os.Getenv("BUILD_LOCK_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid BUILD_LOCK_TTL value: %w", err)
		}
		cfg.Schedule.BuildLockTTL = d
	}
	if v := os.Getenv("SCHEDULE_TIME_ZONE"); v != "" {
		cfg.Schedule.TimeZone = v
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.HTTP.Address == "" {
		cfg.HTTP.Address = ":8080"
	}
	if cfg.JWT.DefaultTTL == 0 {
		cfg.JWT.DefaultTTL = 24 * time.Hour
	}
	if cfg.NATS.Durable == "" {
		cfg.NATS.Durable = "league-scheduler"
	}
	if cfg.Schedule.AnalysisCacheTTL == 0 {
		cfg.Schedule.AnalysisCacheTTL = 10 * time.Minute
	}
	if cfg.Schedule.BuildLockTTL == 0 {
		cfg.Schedule.BuildLockTTL = 15 * time.Minute
	}
	if cfg.Schedule.TimeZone == "" {
		cfg.Schedule.TimeZone = "UTC"
	}
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// ToObsConfig maps the observability section onto the logger settings.
func ToObsConfig(appCfg *Config) observability.Config {
	return observability.Config{
		Environment: appCfg.Observability.Environment,
		LogLevel:    appCfg.Observability.LogLevel,
	}
}
