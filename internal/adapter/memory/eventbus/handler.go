package eventbus

import (
	"runtime/debug"

	"github.com/alanyang/polybus/internal/domain/event"
)

// HandlerSet is implemented by listeners that declare their handlers explicitly.
// A listener implementing it is not scanned for On-prefixed methods.
type HandlerSet interface {
	Handlers() []Handler
}

// Handler is one explicitly declared handler. Build it with On or Func.
type Handler struct {
	name     string
	category event.Category
	call     func(any) error
	fn       any
}

// On declares a statically typed handler for events of type E.
func On[E any](fn func(E) error) Handler {
	c := event.CategoryFor[E]()
	h := Handler{name: "On[" + c.String() + "]", category: c}
	if fn != nil {
		h.call = func(e any) error { return fn(e.(E)) }
	}
	return h
}

// Func declares a handler from an arbitrary function value. Its shape is checked
// when the owning listener subscribes: exactly one parameter, returning nothing or error.
func Func(name string, fn any) Handler {
	return Handler{name: name, fn: fn}
}

// binding is a handler bound to its owning listener.
type binding struct {
	owner    any
	listener string
	method   string
	category event.Category
	call     func(any) error
}

func (b binding) invoke(e any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return b.call(e)
}

func (b binding) fail(err error) *HandlerInvocationError {
	return &HandlerInvocationError{
		Listener: b.listener,
		Method:   b.method,
		Category: b.category,
		Err:      err,
	}
}
