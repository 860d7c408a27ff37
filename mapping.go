package fieldmap

import (
	"errors"
	"iter"
	"maps"
	"reflect"
	"slices"
)

// ObjectContext pairs one field's extracted value with its declared
// TypeDescriptor. It is the unit handed to a codec.
type ObjectContext struct {
	// Value is the field value. Pointers are followed one level, matching
	// the descriptor. Nil pointers, interfaces, slices, maps, channels and
	// funcs yield a nil Value.
	Value any

	// Present is false when the field held a nil value.
	Present bool

	// Declared describes the field's static type.
	Declared TypeDescriptor

	// Type is the field's static type.
	Type reflect.Type
}

func newObjectContext(v reflect.Value, t reflect.Type, d TypeDescriptor) ObjectContext {
	oc := ObjectContext{Declared: d, Type: t}
	if !v.IsValid() || isNil(v) {
		return oc
	}
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}
	oc.Value = v.Interface()
	oc.Present = true
	return oc
}

func isNil(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Slice, reflect.Map, reflect.Chan, reflect.Func:
		return v.IsNil()
	default:
		return false
	}
}

// Mapping is the result of mapping one instance: field name to
// ObjectContext in field order, plus the fields that could not be read.
//
// A name seen twice (a field shadowing a promoted one) keeps its first
// position and its last value.
type Mapping struct {
	typ     reflect.Type
	names   []string
	entries map[string]ObjectContext
	skipped []*FieldError
}

func newMapping(t reflect.Type, size int) *Mapping {
	return &Mapping{
		typ:     t,
		names:   make([]string, 0, size),
		entries: make(map[string]ObjectContext, size),
	}
}

func (m *Mapping) put(name string, oc ObjectContext) {
	if _, ok := m.entries[name]; !ok {
		m.names = append(m.names, name)
	}
	m.entries[name] = oc
}

func (m *Mapping) skip(err *FieldError) {
	m.skipped = append(m.skipped, err)
}

// Type returns the mapped struct type.
func (m *Mapping) Type() reflect.Type {
	return m.typ
}

// Len returns the number of mapped fields.
func (m *Mapping) Len() int {
	return len(m.names)
}

// Get returns the context for name.
func (m *Mapping) Get(name string) (ObjectContext, bool) {
	oc, ok := m.entries[name]
	return oc, ok
}

// Names returns the mapped field names in order.
func (m *Mapping) Names() []string {
	return slices.Clone(m.names)
}

// All iterates the mapping in field order.
func (m *Mapping) All() iter.Seq2[string, ObjectContext] {
	return func(yield func(string, ObjectContext) bool) {
		for _, name := range m.names {
			if !yield(name, m.entries[name]) {
				return
			}
		}
	}
}

// Map returns the mapping as a plain map.
func (m *Mapping) Map() map[string]ObjectContext {
	return maps.Clone(m.entries)
}

// Skipped returns the names of fields left out because their value could
// not be read.
func (m *Mapping) Skipped() []string {
	names := make([]string, len(m.skipped))
	for i, err := range m.skipped {
		names[i] = err.Field
	}
	return names
}

// Err joins the errors of skipped fields, or returns nil when the mapping
// is complete. Each joined error is a *FieldError wrapping
// ErrInaccessibleField.
func (m *Mapping) Err() error {
	if len(m.skipped) == 0 {
		return nil
	}
	errs := make([]error, len(m.skipped))
	for i, err := range m.skipped {
		errs[i] = err
	}
	return errors.Join(errs...)
}
