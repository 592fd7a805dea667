// Package overlay queues text draw commands and flushes them once per frame.
//
// Commands are accepted only after LoadGame has been seen. Each UpdateFrame drains
// the queue, culls commands that lie entirely outside the viewport, and hands the
// remainder to the broadcaster as one Batch.
package overlay

import (
	"errors"
	"fmt"
	"sync"

	"github.com/alanyang/polybus/internal/domain/event"
	"github.com/alanyang/polybus/internal/port/notifier"
)

const (
	// GlyphHeight and GlyphAdvance are the pixel metrics of one character at scale 1.
	GlyphHeight  = 48
	GlyphAdvance = 24

	DefaultWidth  = 800
	DefaultHeight = 600
)

var ErrNotReady = errors.New("overlay: not ready")

type Color [3]float32

var White = Color{1, 1, 1}

// TextCommand draws Text with its baseline at (X, Y); the origin is the bottom-left corner.
type TextCommand struct {
	Text  string  `json:"text"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Scale float64 `json:"scale"`
	Color Color   `json:"color"`
}

type Viewport struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Batch is what one frame drew.
type Batch struct {
	Type     string        `json:"type"`
	Frame    uint64        `json:"frame"`
	Viewport Viewport      `json:"viewport"`
	Commands []TextCommand `json:"commands"`
}

const BatchType = "overlay_batch"

type Service struct {
	out notifier.Broadcaster

	mu       sync.Mutex
	ready    bool
	viewport Viewport
	frame    uint64
	queue    []TextCommand
	culled   uint64
}

func NewService(out notifier.Broadcaster) *Service {
	return &Service{
		out:      out,
		viewport: Viewport{Width: DefaultWidth, Height: DefaultHeight},
	}
}

func (s *Service) OnLoadGame(event.LoadGame) {
	s.mu.Lock()
	s.ready = true
	s.mu.Unlock()
}

func (s *Service) OnResizeWindow(e event.ResizeWindow) {
	s.mu.Lock()
	s.viewport = Viewport{Width: e.Width, Height: e.Height}
	s.mu.Unlock()
}

func (s *Service) OnUpdateFrame(event.UpdateFrame) {
	s.mu.Lock()
	if !s.ready {
		s.mu.Unlock()
		return
	}
	s.frame++
	queued := s.queue
	s.queue = nil
	vp := s.viewport
	frame := s.frame

	visible := make([]TextCommand, 0, len(queued))
	for _, cmd := range queued {
		if vp.contains(cmd) {
			visible = append(visible, cmd)
		} else {
			s.culled++
		}
	}
	s.mu.Unlock()

	if len(visible) == 0 {
		return
	}
	s.out.Broadcast(Batch{Type: BatchType, Frame: frame, Viewport: vp, Commands: visible})
}

// DrawText queues cmd for the next frame. A zero Scale means 1 and a zero Color means white.
func (s *Service) DrawText(cmd TextCommand) error {
	if cmd.Text == "" {
		return fmt.Errorf("draw text: text is empty")
	}
	if cmd.Scale < 0 {
		return fmt.Errorf("draw text: negative scale %v", cmd.Scale)
	}
	if cmd.Scale == 0 {
		cmd.Scale = 1
	}
	if cmd.Color == (Color{}) {
		cmd.Color = White
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return ErrNotReady
	}
	s.queue = append(s.queue, cmd)
	return nil
}

func (s *Service) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}

func (s *Service) Viewport() Viewport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewport
}

// Pending reports the number of queued commands.
func (s *Service) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Culled reports how many commands were dropped for lying outside the viewport.
func (s *Service) Culled() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.culled
}

func (vp Viewport) contains(cmd TextCommand) bool {
	w := float64(len([]rune(cmd.Text))*GlyphAdvance) * cmd.Scale
	h := GlyphHeight * cmd.Scale
	return cmd.X+w > 0 && cmd.Y+h > 0 &&
		cmd.X < float64(vp.Width) && cmd.Y < float64(vp.Height)
}
