package console

import (
	"log/slog"
	"sync"

	"github.com/alanyang/polybus/internal/domain/event"
)

// Listener logs keyboard input and asks the host to quit when Escape is pressed.
type Listener struct {
	logger *slog.Logger
	quit   func()
	once   sync.Once
}

func NewListener(logger *slog.Logger, quit func()) *Listener {
	if logger == nil {
		logger = slog.Default()
	}
	return &Listener{logger: logger, quit: quit}
}

func (l *Listener) OnKeyboard(e event.Keyboard) {
	l.logger.Info("keyboard event", "key", e.Key, "action", e.Action)

	if e.Key == event.KeyEscape && e.Action == event.KeyPressed && l.quit != nil {
		l.once.Do(func() {
			l.logger.Info("escape pressed, shutting down")
			l.quit()
		})
	}
}
