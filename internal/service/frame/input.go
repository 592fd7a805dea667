package frame

import (
	"fmt"

	"github.com/alanyang/polybus/internal/domain/event"
)

func (s *Service) Press(key string) error {
	return s.post(event.Keyboard{Key: key, Action: event.KeyPressed})
}

func (s *Service) Release(key string) error {
	return s.post(event.Keyboard{Key: key, Action: event.KeyReleased})
}

func (s *Service) MoveMouse(x, y float64) error {
	return s.post(event.MouseMove{X: x, Y: y})
}

// Click posts a press followed by a release of button. A failed press skips the release.
func (s *Service) Click(button string) error {
	if err := s.post(event.MouseButton{Button: button, Action: event.ButtonPressed}); err != nil {
		return err
	}
	return s.post(event.MouseButton{Button: button, Action: event.ButtonReleased})
}

func (s *Service) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("resize to %dx%d: dimensions must be positive", width, height)
	}
	return s.post(event.ResizeWindow{Width: width, Height: height})
}

func (s *Service) post(e any) error {
	if err := s.bus.Post(e); err != nil {
		return fmt.Errorf("posting %s: %w", event.DisplayName(event.CategoryOf(e)), err)
	}
	return nil
}
