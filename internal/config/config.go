package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	CartBackendMemory = "memory"
	CartBackendMongo  = "mongo"

	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"

	LLMProviderNone   = "none"
	LLMProviderGenkit = "genkit"
	LLMProviderOpenAI = "openai"
)

type Config struct {
	Env         string            `env:"ENV" envDefault:"development"`
	Log         LogConfig         `envPrefix:"LOG_"`
	Server      ServerConfig      `envPrefix:"SERVER_"`
	Sources     SourcesConfig     `envPrefix:"SOURCES_"`
	Aggregator  AggregatorConfig  `envPrefix:"AGGREGATOR_"`
	Interpreter InterpreterConfig `envPrefix:"INTERPRETER_"`
	LLM         LLMConfig         `envPrefix:"LLM_"`
	Cart        CartConfig        `envPrefix:"CART_"`
	Dialog      DialogConfig      `envPrefix:"DIALOG_"`
	Database    DatabaseConfig    `envPrefix:"DATABASE_"`
	Redis       RedisConfig       `envPrefix:"REDIS_"`
	Kafka       KafkaConfig       `envPrefix:"KAFKA_"`
}

type LogConfig struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"json"`
}

type ServerConfig struct {
	Addr       string `env:"ADDR" envDefault:":8080"`
	CORSOrigin string `env:"CORS_ORIGIN" envDefault:".*"`
	Pprof      bool   `env:"PPROF" envDefault:"false"`
	StatsdAddr string `env:"STATSD_ADDR"`
}

type SourcesConfig struct {
	Enabled       []string          `env:"ENABLED" envSeparator:"," envDefault:"amazon,flipkart,blinkit,zepto,meesho,nykaa"`
	QuickCommerce []string          `env:"QUICK_COMMERCE" envSeparator:"," envDefault:"blinkit,zepto"`
	Endpoints     map[string]string `env:"ENDPOINTS" envSeparator:"," envKeyValSeparator:"|"`
	RateLimit     float64           `env:"RATE_LIMIT" envDefault:"2"`
	RateBurst     int               `env:"RATE_BURST" envDefault:"4"`
	RetryCount    int               `env:"RETRY_COUNT" envDefault:"1"`
	UserAgent     string            `env:"USER_AGENT" envDefault:"smart-cart/1.0"`
}

type AggregatorConfig struct {
	CallTimeout       time.Duration `env:"CALL_TIMEOUT" envDefault:"10s"`
	Budget            time.Duration `env:"BUDGET" envDefault:"15s"`
	MaxConcurrency    int           `env:"MAX_CONCURRENCY" envDefault:"4"`
	FallbackEnabled   bool          `env:"FALLBACK_ENABLED" envDefault:"true"`
	DefaultLimit      int           `env:"DEFAULT_LIMIT" envDefault:"10"`
	MaxLimit          int           `env:"MAX_LIMIT" envDefault:"50"`
	TemplatePerSource int           `env:"TEMPLATE_PER_SOURCE" envDefault:"3"`
	TemplateSources   int           `env:"TEMPLATE_SOURCES" envDefault:"2"`
}

type InterpreterConfig struct {
	Timeout time.Duration `env:"TIMEOUT" envDefault:"5s"`
}

type LLMConfig struct {
	Provider       string `env:"PROVIDER" envDefault:"none"`
	Model          string `env:"MODEL"`
	GoogleAIAPIKey string `env:"GOOGLE_AI_API_KEY"`
	OpenAIAPIKey   string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL  string `env:"OPENAI_BASE_URL"`
}

type CartConfig struct {
	Backend string `env:"BACKEND" envDefault:"memory"`
}

type DialogConfig struct {
	MaxCandidates int           `env:"MAX_CANDIDATES" envDefault:"5"`
	CandidateTTL  time.Duration `env:"CANDIDATE_TTL" envDefault:"10m"`
	CacheBackend  string        `env:"CACHE_BACKEND" envDefault:"memory"`
}

type DatabaseConfig struct {
	Hosts    []string `env:"HOSTS" envSeparator:"," envDefault:"localhost:27017"`
	Direct   bool     `env:"DIRECT" envDefault:"true"`
	Username string   `env:"USERNAME"`
	Password string   `env:"PASSWORD"`
	AuthDB   string   `env:"AUTH_DB" envDefault:"admin"`
	Database string   `env:"DATABASE" envDefault:"smartcart"`
}

type RedisConfig struct {
	Addr     string `env:"ADDR" envDefault:"localhost:6379"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
	Prefix   string `env:"PREFIX" envDefault:"smartcart:"`
}

type KafkaConfig struct {
	Enabled    bool     `env:"ENABLED" envDefault:"false"`
	Brokers    []string `env:"BROKERS" envSeparator:"," envDefault:"localhost:9092"`
	Topic      string   `env:"TOPIC" envDefault:"smartcart.robot.turns"`
	ReplyTopic string   `env:"REPLY_TOPIC" envDefault:"smartcart.robot.replies"`
	GroupID    string   `env:"GROUP_ID" envDefault:"smart-cart"`
	Workers    int      `env:"WORKERS" envDefault:"4"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if len(c.Sources.Enabled) == 0 {
		errs = append(errs, errors.New("SOURCES_ENABLED must not be empty"))
	}
	if c.Aggregator.CallTimeout <= 0 {
		errs = append(errs, errors.New("AGGREGATOR_CALL_TIMEOUT must be positive"))
	}
	if c.Aggregator.Budget <= c.Aggregator.CallTimeout {
		errs = append(errs, fmt.Errorf("AGGREGATOR_BUDGET (%s) must exceed AGGREGATOR_CALL_TIMEOUT (%s)",
			c.Aggregator.Budget, c.Aggregator.CallTimeout))
	}
	if c.Aggregator.MaxConcurrency < 1 {
		errs = append(errs, errors.New("AGGREGATOR_MAX_CONCURRENCY must be at least 1"))
	}
	if c.Aggregator.DefaultLimit < 1 || c.Aggregator.MaxLimit < c.Aggregator.DefaultLimit {
		errs = append(errs, errors.New("AGGREGATOR_DEFAULT_LIMIT must be in [1, AGGREGATOR_MAX_LIMIT]"))
	}
	if c.Interpreter.Timeout <= 0 {
		errs = append(errs, errors.New("INTERPRETER_TIMEOUT must be positive"))
	}
	switch c.Cart.Backend {
	case CartBackendMemory, CartBackendMongo:
	default:
		errs = append(errs, fmt.Errorf("unknown CART_BACKEND %q", c.Cart.Backend))
	}
	switch c.Dialog.CacheBackend {
	case CacheBackendMemory, CacheBackendRedis:
	default:
		errs = append(errs, fmt.Errorf("unknown DIALOG_CACHE_BACKEND %q", c.Dialog.CacheBackend))
	}
	switch c.LLM.Provider {
	case LLMProviderNone, LLMProviderGenkit, LLMProviderOpenAI:
	default:
		errs = append(errs, fmt.Errorf("unknown LLM_PROVIDER %q", c.LLM.Provider))
	}
	if c.Dialog.MaxCandidates < 1 {
		errs = append(errs, errors.New("DIALOG_MAX_CANDIDATES must be at least 1"))
	}
	return errors.Join(errs...)
}
