package config

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the full service configuration, read from the environment.
type Config struct {
	Server    Server
	Log       Log
	Redis     RedisConfig
	RateLimit RateLimit
	Audit     Audit
	Telemetry Telemetry
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr              string        `env:"RISK_ADDR" envDefault:":8080"`
	ReadHeaderTimeout time.Duration `env:"READ_HEADER_TIMEOUT" envDefault:"5s"`
	ShutdownTimeout   time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

// RedisConfig holds the optional Redis connection. An empty URL keeps rate
// limiting in process memory.
type RedisConfig struct {
	URL          string        `env:"REDIS_URL"`
	PoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`
}

type RateLimit struct {
	Requests        int           `env:"RATE_LIMIT_REQUESTS" envDefault:"100"`
	Window          time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1m"`
	Disabled        bool          `env:"RATE_LIMIT_DISABLED" envDefault:"false"`
	BreakerCooldown time.Duration `env:"RATE_LIMIT_BREAKER_COOLDOWN" envDefault:"5s"`
}

// Audit selects the audit sink. Events go to Kafka when brokers are set and
// to the structured log otherwise.
type Audit struct {
	KafkaBrokers  []string `env:"KAFKA_BROKERS" envSeparator:","`
	Topic         string   `env:"AUDIT_TOPIC" envDefault:"risk-profile-audit"`
	Buffer        int      `env:"AUDIT_BUFFER" envDefault:"1024"`
	OpsSampleRate float64  `env:"AUDIT_OPS_SAMPLE_RATE" envDefault:"1"`
}

// Telemetry is opt-in: tracing is exported only when an endpoint is set.
type Telemetry struct {
	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	ServiceName  string `env:"OTEL_SERVICE_NAME" envDefault:"riskprofile"`
}

// FromEnv builds the Config from environment variables so main stays lean.
func FromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.Audit.KafkaBrokers = normalizeList(cfg.Audit.KafkaBrokers)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or text, got %q", c.Log.Format)
	}
	if c.RateLimit.Requests <= 0 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be positive, got %d", c.RateLimit.Requests)
	}
	if c.RateLimit.Window <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive, got %s", c.RateLimit.Window)
	}
	if c.Audit.Buffer < 0 {
		return fmt.Errorf("AUDIT_BUFFER must not be negative, got %d", c.Audit.Buffer)
	}
	if c.Audit.OpsSampleRate < 0 || c.Audit.OpsSampleRate > 1 {
		return fmt.Errorf("AUDIT_OPS_SAMPLE_RATE must be within [0,1], got %v", c.Audit.OpsSampleRate)
	}
	return nil
}

// normalizeList trims entries and drops blanks and duplicates, keeping order.
func normalizeList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" && !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}
