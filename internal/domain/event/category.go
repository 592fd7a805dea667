package event

import "reflect"

// Category identifies an event by its dynamic Go type. Two events share a category
// only if their types are identical: T and *T differ, and so does a type embedding T.
type Category struct {
	typ reflect.Type
}

// CategoryOf returns the category of e. The zero Category is returned for a nil e.
func CategoryOf(e any) Category {
	return Category{typ: reflect.TypeOf(e)}
}

// CategoryFor returns the category of values of type E.
func CategoryFor[E any]() Category {
	return Category{typ: reflect.TypeFor[E]()}
}

// CategoryOfType wraps an already resolved reflect.Type.
func CategoryOfType(t reflect.Type) Category {
	return Category{typ: t}
}

func (c Category) Type() reflect.Type { return c.typ }

func (c Category) IsZero() bool { return c.typ == nil }

func (c Category) String() string {
	if c.typ == nil {
		return "<nil>"
	}
	return c.typ.String()
}

// CategoryStats describes one registry bucket.
type CategoryStats struct {
	Category string `json:"category"`
	Name     string `json:"name,omitempty"`
	Bindings int    `json:"bindings"`
}
