package fieldmap

import (
	"context"
	"fmt"
	"reflect"
)

// enumSet is the registered constants of one enum type.
type enumSet struct {
	byName map[string]any
	names  []string
}

// RegisterEnum registers the constants of enum type E with r. Each
// constant is known by its String() value; later constants with the same
// name replace earlier ones.
//
// Once registered, fields of type E (or *E) describe as EnumType and their
// values are written by name in a Record. When String has a pointer
// receiver, register the pointer type: RegisterEnum(r, &a, &b); the enum
// is still keyed by the type pointed to.
func RegisterEnum[E fmt.Stringer](r *Resolver, constants ...E) {
	set := &enumSet{
		byName: make(map[string]any, len(constants)),
		names:  make([]string, 0, len(constants)),
	}
	for _, c := range constants {
		name := c.String()
		if _, dup := set.byName[name]; !dup {
			set.names = append(set.names, name)
		}
		set.byName[name] = c
	}

	r.enums.Store(deref(reflect.TypeFor[E]()), set)
	r.invalidate()
}

// EnumNames returns the constant names registered for t, in registration order.
func (r *Resolver) EnumNames(t reflect.Type) ([]string, bool) {
	if t == nil {
		return nil, false
	}
	set, ok := r.enums.Load(deref(t))
	if !ok {
		return nil, false
	}
	return append([]string(nil), set.(*enumSet).names...), true
}

// ParseEnum returns the constant of E whose String() is exactly text.
// Matching is case-sensitive and text is not trimmed.
func ParseEnum[E fmt.Stringer](r *Resolver, text string) (E, error) {
	var zero E
	v, err := ParseEnumType(r, text, reflect.TypeFor[E]())
	if err != nil {
		return zero, err
	}
	return v.(E), nil
}

// ParseEnumType is ParseEnum for a type known only at run time.
// It fails with ErrUnresolvableType when t is not a registered enum and
// with an *EnumError wrapping ErrInvalidEnumLiteral when text matches no
// constant.
func ParseEnumType(r *Resolver, text string, t reflect.Type) (any, error) {
	if t == nil {
		return nil, newTypeError(ErrUnresolvableType, t, "no enum type")
	}

	set, ok := r.enums.Load(deref(t))
	if !ok {
		return nil, newTypeError(ErrUnresolvableType, t, "not a registered enum")
	}

	v, ok := set.(*enumSet).byName[text]
	if !ok {
		emitEnumInvalid(context.Background(), t.String(), text)
		return nil, &EnumError{Err: ErrInvalidEnumLiteral, Type: t.String(), Text: text}
	}
	return v, nil
}
