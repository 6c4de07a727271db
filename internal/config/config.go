package config

import (
	"context"
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// App holds core runtime configuration shared across services.
type App struct {
	Name                    string        `env:"APP_NAME" envDefault:"math-quiz"`
	Env                     string        `env:"APP_ENV" envDefault:"development"`
	LogLevel                string        `env:"LOG_LEVEL" envDefault:"info"`
	HTTPAddr                string        `env:"HTTP_ADDR" envDefault:"0.0.0.0:8080"`
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_SECONDS" envDefault:"20s"`

	Questions Questions
	Quiz      Quiz
	Redis     Redis
}

// Questions locates the question bank and its image assets.
type Questions struct {
	Path           string        `env:"QUESTIONS_PATH" envDefault:"data/questions.json"`
	ImageRoot      string        `env:"IMAGE_ROOT" envDefault:"data"`
	Fallback       string        `env:"QUESTION_FALLBACK" envDefault:"sample"`
	ReloadInterval time.Duration `env:"BANK_RELOAD_INTERVAL" envDefault:"5s"`
}

// Quiz groups per-session defaults.
type Quiz struct {
	Strategy     string        `env:"QUIZ_STRATEGY" envDefault:"sequential"`
	Timed        bool          `env:"QUIZ_TIMED" envDefault:"false"`
	TimerSeconds int           `env:"QUIZ_TIMER_SECONDS" envDefault:"300"`
	SessionTTL   time.Duration `env:"SESSION_TTL" envDefault:"2h"`
	// SweepInterval applies to in-memory sessions only; Redis expires keys itself.
	SweepInterval time.Duration `env:"SESSION_SWEEP_INTERVAL" envDefault:"1m"`
}

// Redis is optional; when Addr is empty sessions stay in process memory.
type Redis struct {
	Addr     string `env:"REDIS_ADDR"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
	PoolSize int    `env:"REDIS_POOL_SIZE" envDefault:"20"`
	Channel  string `env:"REDIS_CHANNEL" envDefault:"quiz:bank:reloaded"`
}

// Load parses environment variables into App config.
func Load(ctx context.Context) (*App, error) {
	cfg := &App{}
	if err := env.ParseWithOptions(cfg, env.Options{RequiredIfNoDef: false}); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *App) validate() error {
	switch c.Questions.Fallback {
	case "sample", "empty":
	default:
		return fmt.Errorf("QUESTION_FALLBACK must be sample or empty, got %q", c.Questions.Fallback)
	}
	switch c.Quiz.Strategy {
	case "sequential", "random":
	default:
		return fmt.Errorf("QUIZ_STRATEGY must be sequential or random, got %q", c.Quiz.Strategy)
	}
	if c.Quiz.Timed && c.Quiz.TimerSeconds <= 0 {
		return fmt.Errorf("QUIZ_TIMER_SECONDS must be positive when QUIZ_TIMED is set")
	}
	return nil
}
