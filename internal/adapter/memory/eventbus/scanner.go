package eventbus

import (
	"fmt"
	"reflect"
	"unicode"
	"unicode/utf8"

	"github.com/alanyang/polybus/internal/domain/event"
)

var errorType = reflect.TypeFor[error]()

// scan collects every binding the listener declares. It returns either all of them
// or an error, never a partial set.
func scan(listener any) ([]binding, error) {
	if !isListener(listener) {
		return nil, ErrInvalidListener
	}
	v := reflect.ValueOf(listener)
	name := v.Type().String()

	if hs, ok := listener.(HandlerSet); ok {
		return scanHandlerSet(listener, name, hs.Handlers())
	}
	return scanMethods(listener, name, v)
}

// scanMethods binds exported On<Name> methods in method-set order (sorted by name).
func scanMethods(owner any, listener string, v reflect.Value) ([]binding, error) {
	t := v.Type()
	var bindings []binding
	for i := range t.NumMethod() {
		m := t.Method(i)
		if !isHandlerName(m.Name) {
			continue
		}
		b, err := bindFunc(owner, listener, m.Name, v.Method(i))
		if err != nil {
			return nil, err
		}
		bindings = append(bindings, b)
	}
	return bindings, nil
}

func scanHandlerSet(owner any, listener string, handlers []Handler) ([]binding, error) {
	bindings := make([]binding, 0, len(handlers))
	for _, h := range handlers {
		switch {
		case h.call != nil:
			bindings = append(bindings, binding{
				owner:    owner,
				listener: listener,
				method:   h.name,
				category: h.category,
				call:     h.call,
			})
		case h.fn != nil:
			b, err := bindFunc(owner, listener, h.name, reflect.ValueOf(h.fn))
			if err != nil {
				return nil, err
			}
			bindings = append(bindings, b)
		default:
			return nil, &MalformedHandlerError{Listener: listener, Method: h.name, Reason: "handler function is nil"}
		}
	}
	return bindings, nil
}

func bindFunc(owner any, listener, method string, fn reflect.Value) (binding, error) {
	malformed := func(format string, args ...any) (binding, error) {
		return binding{}, &MalformedHandlerError{
			Listener: listener,
			Method:   method,
			Reason:   fmt.Sprintf(format, args...),
		}
	}

	ft := fn.Type()
	if ft.Kind() != reflect.Func {
		return malformed("%s is not a function", ft)
	}
	if fn.IsNil() {
		return malformed("handler function is nil")
	}
	if ft.NumIn() != 1 {
		return malformed("takes %d parameters, want exactly 1", ft.NumIn())
	}
	if ft.IsVariadic() {
		return malformed("variadic parameter %s", ft.In(0))
	}
	switch {
	case ft.NumOut() == 0:
	case ft.NumOut() == 1 && ft.Out(0) == errorType:
	default:
		return malformed("must return nothing or error, returns %s", ft)
	}

	returnsError := ft.NumOut() == 1
	return binding{
		owner:    owner,
		listener: listener,
		method:   method,
		category: event.CategoryOfType(ft.In(0)),
		call: func(e any) error {
			out := fn.Call([]reflect.Value{reflect.ValueOf(e)})
			if !returnsError || out[0].IsNil() {
				return nil
			}
			return out[0].Interface().(error)
		},
	}, nil
}

// isHandlerName reports whether a method name marks a handler: "On" followed by an
// upper-case letter, so OnKeyboard qualifies and Online does not.
func isHandlerName(name string) bool {
	if len(name) < 3 || name[:2] != "On" {
		return false
	}
	r, _ := utf8.DecodeRuneInString(name[2:])
	return unicode.IsUpper(r)
}

func isListener(listener any) bool {
	if listener == nil {
		return false
	}
	v := reflect.ValueOf(listener)
	return v.Kind() == reflect.Pointer && !v.IsNil()
}
