package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the full process configuration, read once at startup.
type Config struct {
	Server    Server
	Dataset   DatasetConfig
	Log       LogConfig
	Auth      AuthConfig
	Redis     RedisConfig
	Postgres  PostgresConfig
	Kafka     KafkaConfig
	RateLimit RateLimitConfig
	CacheTTL  time.Duration
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	ShutdownTimeout time.Duration
	RequestTimeout  time.Duration
}

// DatasetConfig points at the source files and the optional cleaning rules.
type DatasetConfig struct {
	DataPath          string
	CoordsPath        string
	CleaningRulesPath string
	// ReloadInterval re-reads the files periodically; zero disables it.
	ReloadInterval time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

type AuthConfig struct {
	JWTSigningKey string
	Issuer        string
	Audience      string
}

// RedisConfig is empty-URL disabled; the in-memory cache is used instead.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// PostgresConfig is empty-URL disabled; snapshots stay in memory.
type PostgresConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// KafkaConfig is disabled when no brokers are listed.
type KafkaConfig struct {
	Brokers    []string
	AuditTopic string
}

// RateLimitConfig holds per-class request budgets; zero disables a class.
type RateLimitConfig struct {
	ReadRequests  int
	AdminRequests int
	Window        time.Duration
}

// DefaultCacheTTL bounds how long an analysis result may outlive its snapshot.
const DefaultCacheTTL = 10 * time.Minute

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() (Config, error) {
	var errs []string
	dur := func(key string, def time.Duration) time.Duration {
		v, err := durationEnv(key, def)
		if err != nil {
			errs = append(errs, err.Error())
		}
		return v
	}
	num := func(key string, def int) int {
		v, err := intEnv(key, def)
		if err != nil {
			errs = append(errs, err.Error())
		}
		return v
	}

	cfg := Config{
		Server: Server{
			Addr:            stringEnv("PODIUM_ADDR", ":8080"),
			ShutdownTimeout: dur("PODIUM_SHUTDOWN_TIMEOUT", 10*time.Second),
			RequestTimeout:  dur("PODIUM_REQUEST_TIMEOUT", 30*time.Second),
		},
		Dataset: DatasetConfig{
			DataPath:          stringEnv("PODIUM_DATA_PATH", "jjoo.csv"),
			CoordsPath:        stringEnv("PODIUM_COORDS_PATH", "noc_coordinates.csv"),
			CleaningRulesPath: os.Getenv("PODIUM_CLEANING_RULES"),
			ReloadInterval:    dur("PODIUM_RELOAD_INTERVAL", 0),
		},
		Log: LogConfig{
			Level:  stringEnv("PODIUM_LOG_LEVEL", "info"),
			Format: stringEnv("PODIUM_LOG_FORMAT", "text"),
		},
		Auth: AuthConfig{
			// Development default; production deployments must override it.
			JWTSigningKey: stringEnv("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
			Issuer:        stringEnv("JWT_ISSUER", "podium"),
			Audience:      stringEnv("JWT_AUDIENCE", "podium-admin"),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     num("REDIS_POOL_SIZE", 10),
			MinIdleConns: num("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  dur("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  dur("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: dur("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Postgres: PostgresConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    num("DATABASE_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    num("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: dur("DATABASE_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Kafka: KafkaConfig{
			Brokers:    listEnv("KAFKA_BROKERS"),
			AuditTopic: stringEnv("KAFKA_AUDIT_TOPIC", "podium.audit"),
		},
		RateLimit: RateLimitConfig{
			ReadRequests:  num("PODIUM_RATE_LIMIT_READ", 300),
			AdminRequests: num("PODIUM_RATE_LIMIT_ADMIN", 10),
			Window:        dur("PODIUM_RATE_LIMIT_WINDOW", time.Minute),
		},
		CacheTTL: dur("PODIUM_CACHE_TTL", DefaultCacheTTL),
	}

	if len(errs) > 0 {
		return Config{}, fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}
	return cfg, nil
}

func stringEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func listEnv(key string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		return def, fmt.Errorf("%s: invalid duration %q", key, raw)
	}
	return d, nil
}

func intEnv(key string, def int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return def, fmt.Errorf("%s: invalid integer %q", key, raw)
	}
	return n, nil
}
