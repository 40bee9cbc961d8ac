package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Port        string `env:"PORT" envDefault:"3000"`
	DatabaseURL string `env:"DATABASE_URL"`

	ERP ERPConfig

	SyncInterval time.Duration `env:"SYNC_INTERVAL" envDefault:"60s"`

	OpenAIKey      string        `env:"OPENAI_API_KEY"`
	OpenAIModel    string        `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	LLMTimeout     time.Duration `env:"LLM_TIMEOUT" envDefault:"45s"`
	ContextRecords int           `env:"CONTEXT_RECORDS" envDefault:"200"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
}

// ERPConfig describes the upstream sales-order endpoint and the fixed
// parameters embedded in every page request.
type ERPConfig struct {
	URL        string        `env:"ERP_URL"`
	Token      string        `env:"ERP_TOKEN"`
	Subsidiary string        `env:"ERP_SUBSIDIARY"`
	Location   string        `env:"ERP_LOCATION"`
	Employee   string        `env:"ERP_EMPLOYEE"`
	PageSize   int           `env:"ERP_PAGE_SIZE" envDefault:"500"`
	StartYear  int           `env:"ERP_START_YEAR" envDefault:"2020"`
	RatePerSec float64       `env:"ERP_RATE_PER_SEC" envDefault:"5"`
	Timeout    time.Duration `env:"ERP_TIMEOUT" envDefault:"30s"`
}

// Load reads .env (if present) and the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var missing []string
	if c.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if c.ERP.URL == "" {
		missing = append(missing, "ERP_URL")
	}
	if c.ERP.Token == "" {
		missing = append(missing, "ERP_TOKEN")
	}
	if c.OpenAIKey == "" {
		missing = append(missing, "OPENAI_API_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required env: %s", strings.Join(missing, ", "))
	}
	if c.ERP.PageSize < 1 {
		return fmt.Errorf("ERP_PAGE_SIZE must be positive, got %d", c.ERP.PageSize)
	}
	if c.SyncInterval <= 0 {
		return fmt.Errorf("SYNC_INTERVAL must be positive, got %s", c.SyncInterval)
	}
	return nil
}

// SetupLogger configures the global zerolog logger.
func SetupLogger(level, format string) {
	zerolog.TimeFieldFormat = time.RFC3339
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	if format == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}
