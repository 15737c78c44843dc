package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"

	pstrings "keyworker/pkg/platform/strings"
)

// Config is the full process configuration.
type Config struct {
	Server     Server
	Database   DatabaseConfig
	Redis      RedisConfig
	Kafka      KafkaConfig
	Gateways   GatewayConfig
	Statistics StatisticsConfig
	Log        LogConfig
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr string `envconfig:"KEYWORKER_ADDR" default:":8080"`

	// Use a default for development - should be overridden in production
	JWTSigningKey string `envconfig:"JWT_SIGNING_KEY" default:"dev-secret-key-change-in-production"`

	// AllowedOrigins feeds the CORS middleware. Empty disables CORS headers.
	AllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS"`
}

// DatabaseConfig points at Postgres. An empty URL selects in-memory stores.
type DatabaseConfig struct {
	URL             string        `envconfig:"DATABASE_URL"`
	MaxOpenConns    int           `envconfig:"DATABASE_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"DATABASE_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"DATABASE_CONN_MAX_LIFETIME" default:"30m"`
}

// RedisConfig configures the prison register cache. An empty URL disables it.
type RedisConfig struct {
	URL          string        `envconfig:"REDIS_URL"`
	PoolSize     int           `envconfig:"REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"REDIS_WRITE_TIMEOUT" default:"3s"`
	CacheTTL     time.Duration `envconfig:"PRISON_REGISTER_CACHE_TTL" default:"12h"`
}

// KafkaConfig configures the domain event consumer and the statistics producer.
// Empty Brokers disables both.
type KafkaConfig struct {
	Brokers           []string `envconfig:"KAFKA_BROKERS"`
	ConsumerGroup     string   `envconfig:"KAFKA_GROUP" default:"keyworker-api"`
	DomainEventsTopic string   `envconfig:"KAFKA_DOMAIN_EVENTS_TOPIC" default:"domain-events"`
	StatisticsTopic   string   `envconfig:"KAFKA_STATS_TOPIC" default:"prison-statistics"`

	// PublishBatchSize caps how many records go into one produce call.
	PublishBatchSize int `envconfig:"KAFKA_PUBLISH_BATCH_SIZE" default:"10"`
}

// GatewayConfig holds base URLs of the external APIs and the shared retry policy.
type GatewayConfig struct {
	PrisonerSearchURL   string        `envconfig:"PRISONER_SEARCH_URL" default:"http://localhost:8091"`
	PrisonAPIURL        string        `envconfig:"PRISON_API_URL" default:"http://localhost:8092"`
	ComplexityOfNeedURL string        `envconfig:"COMPLEXITY_OF_NEED_URL" default:"http://localhost:8093"`
	CaseNotesURL        string        `envconfig:"CASE_NOTES_URL" default:"http://localhost:8094"`
	PrisonRegisterURL   string        `envconfig:"PRISON_REGISTER_URL" default:"http://localhost:8095"`
	Timeout             time.Duration `envconfig:"GATEWAY_TIMEOUT" default:"10s"`
	RetryAttempts       int           `envconfig:"GATEWAY_RETRY_ATTEMPTS" default:"3"`
	RetryBackoff        time.Duration `envconfig:"GATEWAY_RETRY_BACKOFF" default:"250ms"`
}

// StatisticsConfig controls the daily calculation trigger.
type StatisticsConfig struct {
	ScheduleInterval time.Duration `envconfig:"STATS_SCHEDULE_INTERVAL" default:"24h"`
	PrisonConfigFile string        `envconfig:"PRISON_CONFIG_FILE"`
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Format string `envconfig:"LOG_FORMAT" default:"json"`
}

// FromEnv builds a Config from environment variables. A variable that is
// set but cannot be parsed is an error rather than a silent default.
func FromEnv() (Config, error) {
	var cfg Config
	sections := []any{
		&cfg.Server,
		&cfg.Database,
		&cfg.Redis,
		&cfg.Kafka,
		&cfg.Gateways,
		&cfg.Statistics,
		&cfg.Log,
	}
	for _, section := range sections {
		if err := envconfig.Process("", section); err != nil {
			return Config{}, fmt.Errorf("load config: %w", err)
		}
	}
	cfg.Server.AllowedOrigins = pstrings.DedupeAndTrim(cfg.Server.AllowedOrigins)
	cfg.Kafka.Brokers = pstrings.DedupeAndTrim(cfg.Kafka.Brokers)
	return cfg, nil
}
