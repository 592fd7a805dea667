package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL"`

	FrameRate    int `env:"FRAME_RATE" envDefault:"60"`
	WindowWidth  int `env:"WINDOW_WIDTH" envDefault:"800"`
	WindowHeight int `env:"WINDOW_HEIGHT" envDefault:"600"`

	JournalCapacity int  `env:"JOURNAL_CAPACITY" envDefault:"1024"`
	JournalFrames   bool `env:"JOURNAL_FRAMES" envDefault:"false"`

	// IsolateHandlerFailures posts with PostAll so one failing handler does not
	// stop the rest.
	IsolateHandlerFailures bool `env:"ISOLATE_HANDLER_FAILURES" envDefault:"false"`

	IdempotencyTTL time.Duration `env:"IDEMPOTENCY_TTL" envDefault:"24h"`
	LogLevel       slog.Level    `env:"LOG_LEVEL" envDefault:"info"`
}

// Load reads an optional .env file from the working directory, then parses the
// environment into a Config.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("loading .env: %w", err)
	}
	return Parse()
}

// Parse builds a Config from the current environment only.
func Parse() (Config, error) {
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
	var errs []error
	if c.Port == "" {
		errs = append(errs, errors.New("PORT must not be empty"))
	}
	if c.FrameRate <= 0 || c.FrameRate > 1000 {
		errs = append(errs, fmt.Errorf("FRAME_RATE must be in 1..1000, got %d", c.FrameRate))
	}
	if c.WindowWidth <= 0 || c.WindowHeight <= 0 {
		errs = append(errs, fmt.Errorf("window size must be positive, got %dx%d", c.WindowWidth, c.WindowHeight))
	}
	if c.JournalCapacity <= 0 {
		errs = append(errs, fmt.Errorf("JOURNAL_CAPACITY must be positive, got %d", c.JournalCapacity))
	}
	if c.IdempotencyTTL <= 0 {
		errs = append(errs, fmt.Errorf("IDEMPOTENCY_TTL must be positive, got %s", c.IdempotencyTTL))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
