// Package eventbus is the in-process implementation of port/eventbus.EventBus.
//
// A listener is any non-nil pointer. Its handlers are either its exported methods
// named On<Something> taking exactly one parameter, or, when it implements
// HandlerSet, the handlers it returns. The parameter type of a handler is the
// category it receives; dispatch matches the posted value's dynamic type exactly.
//
// Subscribe is all-or-nothing: a malformed handler aborts the call before any of
// the listener's handlers are registered.
package eventbus

import (
	"go.uber.org/multierr"

	"github.com/alanyang/polybus/internal/domain/event"
)

type Bus struct {
	registry *registry
}

func New() *Bus {
	return &Bus{registry: newRegistry()}
}

// Subscribe binds every handler the listener declares. Subscribing the same
// listener twice binds its handlers twice.
func (b *Bus) Subscribe(listener any) error {
	bindings, err := scan(listener)
	if err != nil {
		return err
	}
	b.registry.add(bindings...)
	return nil
}

// Unsubscribe removes all of the listener's bindings. It is a no-op for a listener
// with no bindings.
func (b *Bus) Unsubscribe(listener any) {
	if !isListener(listener) {
		return
	}
	b.registry.removeOwner(listener)
}

// Post invokes the handlers bound to the dynamic type of e, in registration order,
// on the calling goroutine. The first failing handler aborts the dispatch and its
// error is returned as a *HandlerInvocationError.
func (b *Bus) Post(e any) error {
	if e == nil {
		return ErrNilEvent
	}
	for _, bnd := range b.registry.lookup(event.CategoryOf(e)) {
		if err := bnd.invoke(e); err != nil {
			return bnd.fail(err)
		}
	}
	return nil
}

// PostAll is Post without the abort: every handler runs and the failures come back
// combined, in registration order.
func (b *Bus) PostAll(e any) error {
	if e == nil {
		return ErrNilEvent
	}
	var errs error
	for _, bnd := range b.registry.lookup(event.CategoryOf(e)) {
		if err := bnd.invoke(e); err != nil {
			errs = multierr.Append(errs, bnd.fail(err))
		}
	}
	return errs
}

// Categories reports every bucket created so far, including emptied ones.
func (b *Bus) Categories() []event.CategoryStats {
	return b.registry.stats()
}
