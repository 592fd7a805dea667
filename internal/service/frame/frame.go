package frame

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/alanyang/polybus/internal/domain/event"
	porteventbus "github.com/alanyang/polybus/internal/port/eventbus"
)

const (
	DefaultFrameRate = 60
	DefaultWidth     = 800
	DefaultHeight    = 600
)

type Config struct {
	FrameRate int
	Width     int
	Height    int

	// Clock drives the frame ticker. Nil means the wall clock.
	Clock clock.Clock
}

// Service drives the frame loop: it is the producer of LoadGame, ResizeWindow
// and UpdateFrame events, and the entry point for input events.
type Service struct {
	bus    porteventbus.EventBus
	cfg    Config
	frames atomic.Uint64
}

func NewService(bus porteventbus.EventBus, cfg Config) *Service {
	if cfg.FrameRate <= 0 {
		cfg.FrameRate = DefaultFrameRate
	}
	if cfg.Width <= 0 {
		cfg.Width = DefaultWidth
	}
	if cfg.Height <= 0 {
		cfg.Height = DefaultHeight
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}
	return &Service{bus: bus, cfg: cfg}
}

// Start posts LoadGame and the initial ResizeWindow. Listeners that need a viewport
// before the first frame see it here.
func (s *Service) Start() error {
	if err := s.bus.Post(event.LoadGame{}); err != nil {
		return fmt.Errorf("posting load game: %w", err)
	}
	if err := s.Resize(s.cfg.Width, s.cfg.Height); err != nil {
		return err
	}
	return nil
}

// Run calls Start, then posts one UpdateFrame per tick until ctx is done.
// Frame failures are logged and the loop keeps going.
func (s *Service) Run(ctx context.Context) error {
	if err := s.Start(); err != nil {
		return err
	}

	interval := time.Second / time.Duration(s.cfg.FrameRate)
	ticker := s.cfg.Clock.Ticker(interval)
	defer ticker.Stop()

	slog.InfoContext(ctx, "frame loop started", "frame_rate", s.cfg.FrameRate)
	last := s.cfg.Clock.Now()
	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "frame loop stopped", "frames", s.frames.Load())
			return nil
		case <-ticker.C:
			now := s.cfg.Clock.Now()
			dt := now.Sub(last).Seconds()
			last = now
			if err := s.Step(dt); err != nil {
				slog.ErrorContext(ctx, "frame dispatch failed", "error", err)
			}
		}
	}
}

// Step posts a single UpdateFrame with the given delta in seconds.
func (s *Service) Step(dt float64) error {
	s.frames.Add(1)
	if err := s.bus.Post(event.UpdateFrame{DeltaTime: dt}); err != nil {
		return fmt.Errorf("posting update frame: %w", err)
	}
	return nil
}

// Frames reports how many UpdateFrame events Step has posted.
func (s *Service) Frames() uint64 {
	return s.frames.Load()
}
