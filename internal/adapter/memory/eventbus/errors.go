package eventbus

import (
	"errors"
	"fmt"

	"github.com/alanyang/polybus/internal/domain/event"
)

var (
	ErrInvalidListener = errors.New("eventbus: listener must be a non-nil pointer")
	ErrNilEvent        = errors.New("eventbus: cannot post a nil event")
)

// MalformedHandlerError reports a declared handler whose signature the bus cannot bind.
// Subscribe returns it before touching the registry.
type MalformedHandlerError struct {
	Listener string
	Method   string
	Reason   string
}

func (e *MalformedHandlerError) Error() string {
	return fmt.Sprintf("eventbus: handler %s.%s is malformed: %s", e.Listener, e.Method, e.Reason)
}

// HandlerInvocationError wraps the failure of a single handler during dispatch.
type HandlerInvocationError struct {
	Listener string
	Method   string
	Category event.Category
	Err      error
}

func (e *HandlerInvocationError) Error() string {
	return fmt.Sprintf("eventbus: handler %s.%s failed on %s: %v", e.Listener, e.Method, e.Category, e.Err)
}

func (e *HandlerInvocationError) Unwrap() error { return e.Err }

// PanicError carries a panic recovered from a handler.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}
