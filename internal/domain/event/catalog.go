package event

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
)

var (
	ErrUnknownCategory = errors.New("event: unknown category")
	ErrInvalidPayload  = errors.New("event: invalid payload")
)

const (
	NameUpdateFrame  = "update_frame"
	NameKeyboard     = "keyboard"
	NameMouseMove    = "mouse_move"
	NameMouseButton  = "mouse_button"
	NameLoadGame     = "load_game"
	NameResizeWindow = "resize_window"
)

// catalog maps wire names to the concrete categories the host knows how to decode.
var catalog = map[string]Category{
	NameUpdateFrame:  CategoryFor[UpdateFrame](),
	NameKeyboard:     CategoryFor[Keyboard](),
	NameMouseMove:    CategoryFor[MouseMove](),
	NameMouseButton:  CategoryFor[MouseButton](),
	NameLoadGame:     CategoryFor[LoadGame](),
	NameResizeWindow: CategoryFor[ResizeWindow](),
}

var namesByCategory = func() map[Category]string {
	m := make(map[Category]string, len(catalog))
	for name, c := range catalog {
		m[c] = name
	}
	return m
}()

// Names returns the catalog names in sorted order.
func Names() []string {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the category registered under name.
func Lookup(name string) (Category, bool) {
	c, ok := catalog[name]
	return c, ok
}

// NameOf returns the catalog name for a category, or "" if it is not a catalog category.
func NameOf(c Category) string {
	return namesByCategory[c]
}

// Decode builds the event value named by name from a JSON object. An empty or null
// payload yields the zero value. Unknown fields are rejected.
func Decode(name string, payload []byte) (any, error) {
	c, ok := catalog[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, name)
	}

	ptr := reflect.New(c.typ)
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null")) {
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.DisallowUnknownFields()
		if err := dec.Decode(ptr.Interface()); err != nil {
			return nil, fmt.Errorf("%w: decoding %s: %w", ErrInvalidPayload, name, err)
		}
	}
	return ptr.Elem().Interface(), nil
}
