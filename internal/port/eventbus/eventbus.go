package eventbus

import (
	"github.com/alanyang/polybus/internal/domain/event"
)

// EventBus routes posted events to the handlers listeners declared for the event's
// exact dynamic type. Handlers run synchronously on the posting goroutine.
type EventBus interface {
	Subscribe(listener any) error
	Unsubscribe(listener any)

	// Post stops at the first failing handler and returns its error.
	Post(e any) error
	// PostAll runs every handler and returns the aggregated failures.
	PostAll(e any) error
}

// Inspector exposes registry state for diagnostics.
type Inspector interface {
	Categories() []event.CategoryStats
}
