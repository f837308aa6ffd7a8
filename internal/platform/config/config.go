package config

import (
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/caarlos0/env/v11"

	pkgstrings "authgate/pkg/platform/strings"
)

// Store drivers accepted in AUTH_STORE.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

// Server captures HTTP server level configuration.
type Server struct {
	Port            int           `env:"PORT" envDefault:"3000"`
	RequestTimeout  time.Duration `env:"HTTP_REQUEST_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	// TrustProxyHeaders must only be set behind a proxy that overwrites
	// X-Forwarded-For; otherwise callers choose their audited IP.
	TrustProxyHeaders bool `env:"TRUST_PROXY_HEADERS" envDefault:"false"`
}

// Addr is the listen address derived from Port.
func (s Server) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

// Auth configures hashing and token issuance.
type Auth struct {
	JWTSecret       string        `env:"JWT_SECRET,required,notEmpty"`
	TokenIssuer     string        `env:"AUTH_TOKEN_ISSUER" envDefault:"authgate"`
	TokenTTL        time.Duration `env:"AUTH_TOKEN_TTL" envDefault:"1h"`
	BcryptCost      int           `env:"AUTH_BCRYPT_COST" envDefault:"10"`
	HashConcurrency int           `env:"AUTH_HASH_CONCURRENCY"`
}

// Store selects the credential store backend.
type Store struct {
	Driver      string `env:"AUTH_STORE" envDefault:"memory"`
	DatabaseURL string `env:"DATABASE_URL"`
}

// RedisConfig holds connection settings for the Redis store.
type RedisConfig struct {
	URL          string        `env:"REDIS_URL"`
	PoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`
}

// Audit configures where audit events go. With no brokers they are only
// logged.
type Audit struct {
	KafkaBrokers      []string      `env:"AUDIT_KAFKA_BROKERS" envSeparator:","`
	KafkaTopic        string        `env:"AUDIT_KAFKA_TOPIC" envDefault:"authgate.audit"`
	KafkaWriteTimeout time.Duration `env:"AUDIT_KAFKA_WRITE_TIMEOUT" envDefault:"5s"`
	BufferSize        int           `env:"AUDIT_BUFFER_SIZE" envDefault:"1024"`
}

// Log configures the process logger.
type Log struct {
	Level  string `env:"AUTH_LOG_LEVEL" envDefault:"info"`
	Format string `env:"AUTH_LOG_FORMAT" envDefault:"json"`
}

// Config is the full process configuration.
type Config struct {
	Server Server
	Auth   Auth
	Store  Store
	Redis  RedisConfig
	Audit  Audit
	Log    Log
}

// Load reads configuration from the process environment.
func Load() (*Config, error) {
	return load(env.Options{})
}

// LoadFrom reads configuration from the given variables only.
func LoadFrom(environ map[string]string) (*Config, error) {
	return load(env.Options{Environment: environ})
}

func load(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.Audit.KafkaBrokers = pkgstrings.CleanList(cfg.Audit.KafkaBrokers)
	if cfg.Auth.HashConcurrency <= 0 {
		cfg.Auth.HashConcurrency = runtime.NumCPU()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints that struct tags cannot express.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT out of range: %d", c.Server.Port))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("AUTH_TOKEN_TTL must be positive"))
	}
	switch c.Store.Driver {
	case StoreMemory:
	case StorePostgres:
		if c.Store.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required when AUTH_STORE=postgres"))
		}
	case StoreRedis:
		if c.Redis.URL == "" {
			errs = append(errs, errors.New("REDIS_URL is required when AUTH_STORE=redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown AUTH_STORE %q", c.Store.Driver))
	}
	return errors.Join(errs...)
}
