package fieldmap

import (
	"encoding"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"
)

// maxDescribeDepth bounds descriptor recursion for self-referential
// declarations such as type Tree []Tree.
const maxDescribeDepth = 32

var textMarshalerType = reflect.TypeFor[encoding.TextMarshaler]()

// IsPrimitive reports whether t is int, bool, char, float, double, long or
// byte, either as a value or behind one pointer.
func IsPrimitive(t reflect.Type) bool {
	if t == nil {
		return false
	}
	_, ok := primitiveKinds[deref(t).Kind()]
	return ok
}

// IsArrayType reports whether t is a fixed-length array.
func IsArrayType(t reflect.Type) bool {
	return t != nil && t.Kind() == reflect.Array
}

// IsIterableType reports whether values of t can be iterated: arrays,
// slices, maps, channels, iter.Seq/iter.Seq2 functions, and types exposing
// a Values or All method that returns one.
func IsIterableType(t reflect.Type) bool {
	if t == nil {
		return false
	}
	base := deref(t)
	switch base.Kind() {
	case reflect.Array, reflect.Slice, reflect.Map, reflect.Chan:
		return true
	}
	_, _, ok := iteratorTypes(base)
	return ok
}

// IsCollectionType reports whether t is collection-shaped: a slice, a map,
// or a type with Len() int, Add(E) and Contains(E) bool methods.
// Arrays are iterable but not collections.
func IsCollectionType(t reflect.Type) bool {
	if t == nil {
		return false
	}
	base := deref(t)
	switch base.Kind() {
	case reflect.Slice, reflect.Map:
		return true
	case reflect.Array, reflect.Chan:
		return false
	}
	return collectionShaped(base)
}

// ElementTypeOf returns the declared element type of a container type.
//
// Arrays, slices and channels yield their element type, maps their value
// type, iter.Seq[E] yields E and iter.Seq2[K, V] yields V. Named containers
// are resolved through their Values/All iterator methods and then through
// the parameter of Add. A container whose element is only recoverable as the
// empty interface is treated as erased and fails with ErrUnresolvableType.
func ElementTypeOf(t reflect.Type) (reflect.Type, error) {
	if t == nil {
		return nil, newTypeError(ErrUnresolvableType, t, "no declared type")
	}

	base := deref(t)
	var elem reflect.Type

	switch base.Kind() {
	case reflect.Array, reflect.Slice, reflect.Chan, reflect.Map:
		elem = base.Elem()
	default:
		if _, e, ok := iteratorTypes(base); ok {
			elem = e
		} else if e, ok := addParam(base); ok {
			elem = e
		}
	}

	if elem == nil {
		return nil, newTypeError(ErrUnresolvableType, t, "no element type argument found")
	}
	if isEmptyInterface(elem) {
		return nil, newTypeError(ErrUnresolvableType, t, "element type erased to "+elem.String())
	}
	return elem, nil
}

// KeyTypeOf returns the declared key type of a map or iter.Seq2 container.
func KeyTypeOf(t reflect.Type) (reflect.Type, error) {
	if t == nil {
		return nil, newTypeError(ErrUnresolvableType, t, "no declared type")
	}

	base := deref(t)
	if base.Kind() == reflect.Map {
		return base.Key(), nil
	}
	if k, _, ok := iteratorTypes(base); ok && k != nil {
		return k, nil
	}
	return nil, newTypeError(ErrUnresolvableType, t, "no key type argument found")
}

// RawTypeOf returns the unparameterized base of t.
//
// Arrays resolve to their element type. Instantiated generic types resolve
// to the generic name without type arguments, and the built-in type
// constructors to "[]", "map" and "chan". A struct that embeds a generic
// instantiation resolves to that instantiation's base.
func RawTypeOf(t reflect.Type) (TypeID, error) {
	if t == nil {
		return "", newTypeError(ErrUnresolvableType, t, "no declared type")
	}

	if IsArrayType(t) {
		elem, err := ElementTypeOf(t)
		if err != nil {
			return "", err
		}
		return TypeIDOf(elem), nil
	}

	base := deref(t)
	if id, ok := genericBase(base); ok {
		return id, nil
	}

	switch base.Kind() {
	case reflect.Slice:
		return "[]", nil
	case reflect.Map:
		return "map", nil
	case reflect.Chan:
		return "chan", nil
	case reflect.Struct:
		for i := 0; i < base.NumField(); i++ {
			sf := base.Field(i)
			if !sf.Anonymous {
				continue
			}
			if id, ok := genericBase(deref(sf.Type)); ok {
				return id, nil
			}
		}
	}

	return "", newTypeError(ErrUnresolvableType, t, "no type argument found")
}

// Resolver turns declared types into TypeDescriptors.
// Descriptors are computed once per type and cached for the life of the
// Resolver. It also owns the enum registry.
//
// A Resolver is safe for concurrent use. Registering an enum starts a new
// cache generation: a Describe that began before the registration may
// return the old descriptor, but never stores it, so every Describe that
// starts after RegisterEnum returns sees the enum.
type Resolver struct {
	descriptors sync.Map // map[reflect.Type]descriptorEntry
	enums       sync.Map // map[reflect.Type]*enumSet
	generation  atomic.Uint64
}

// descriptorEntry is a cached descriptor and the generation it was
// computed in.
type descriptorEntry struct {
	gen  uint64
	desc TypeDescriptor
}

// NewResolver returns an empty Resolver.
func NewResolver() *Resolver {
	return &Resolver{}
}

// Describe classifies the declared type t.
func (r *Resolver) Describe(t reflect.Type) (TypeDescriptor, error) {
	if t == nil {
		return nil, newTypeError(ErrUnresolvableType, t, "no declared type")
	}

	gen := r.generation.Load()
	if cached, ok := r.descriptors.Load(t); ok {
		if entry := cached.(descriptorEntry); entry.gen == gen {
			return entry.desc, nil
		}
	}

	d, err := r.describe(t, 0)
	if err != nil {
		return nil, err
	}

	if r.generation.Load() == gen {
		r.descriptors.Store(t, descriptorEntry{gen: gen, desc: d})
	}
	return d, nil
}

// invalidate starts a new descriptor generation and drops the old entries.
func (r *Resolver) invalidate() {
	r.generation.Add(1)
	r.descriptors.Clear()
}

// IsEnumType reports whether t (or the type t points to) is a registered enum.
func (r *Resolver) IsEnumType(t reflect.Type) bool {
	if t == nil {
		return false
	}
	_, ok := r.enums.Load(deref(t))
	return ok
}

func (r *Resolver) describe(t reflect.Type, depth int) (TypeDescriptor, error) {
	if depth > maxDescribeDepth {
		return nil, newTypeError(ErrUnresolvableType, t, "declaration nests too deeply")
	}

	base := deref(t)

	if r.IsEnumType(base) {
		return EnumType{ID: TypeIDOf(base)}, nil
	}
	if selfEncoding(base) {
		return Opaque{ID: TypeIDOf(base)}, nil
	}
	if kind, ok := primitiveKinds[base.Kind()]; ok {
		return Primitive{Kind: kind}, nil
	}

	switch base.Kind() {
	case reflect.Array:
		elem, err := r.describeElem(base, depth)
		if err != nil {
			return nil, err
		}
		return ArrayOf{Elem: elem, Len: base.Len()}, nil

	case reflect.Slice:
		elem, err := r.describeElem(base, depth)
		if err != nil {
			return nil, err
		}
		return CollectionOf{Elem: elem}, nil

	case reflect.Map:
		key, err := r.describe(base.Key(), depth+1)
		if err != nil {
			return nil, err
		}
		elem, err := r.describeElem(base, depth)
		if err != nil {
			return nil, err
		}
		return MapOf{Key: key, Elem: elem}, nil

	case reflect.Struct, reflect.Interface:
		if collectionShaped(base) {
			elem, err := r.describeElem(base, depth)
			if err != nil {
				return nil, err
			}
			return CollectionOf{Elem: elem}, nil
		}
	}

	return Opaque{ID: TypeIDOf(base)}, nil
}

func (r *Resolver) describeElem(t reflect.Type, depth int) (TypeDescriptor, error) {
	elem, err := ElementTypeOf(t)
	if err != nil {
		return nil, err
	}
	return r.describe(elem, depth+1)
}

// deref strips one level of pointer.
func deref(t reflect.Type) reflect.Type {
	if t.Kind() == reflect.Pointer {
		return t.Elem()
	}
	return t
}

func isEmptyInterface(t reflect.Type) bool {
	return t.Kind() == reflect.Interface && t.NumMethod() == 0
}

// selfEncoding reports whether a named type renders itself as text.
func selfEncoding(t reflect.Type) bool {
	if t.Name() == "" || t.Kind() == reflect.Interface {
		return false
	}
	return t.Implements(textMarshalerType) || reflect.PointerTo(t).Implements(textMarshalerType)
}

// genericBase strips type arguments from an instantiated generic type name.
func genericBase(t reflect.Type) (TypeID, bool) {
	name := t.Name()
	i := strings.IndexByte(name, '[')
	if i <= 0 {
		return "", false
	}
	if t.PkgPath() == "" {
		return TypeID(name[:i]), true
	}
	return TypeID(t.PkgPath() + "." + name[:i]), true
}

// method looks name up in the method set of t, including pointer-receiver
// methods, and returns its signature without the receiver.
func method(t reflect.Type, name string) (in, out []reflect.Type, ok bool) {
	mt := t
	if t.Kind() != reflect.Interface && t.Kind() != reflect.Pointer {
		mt = reflect.PointerTo(t)
	}

	m, found := mt.MethodByName(name)
	if !found {
		return nil, nil, false
	}

	skip := 1
	if mt.Kind() == reflect.Interface {
		skip = 0
	}
	for i := skip; i < m.Type.NumIn(); i++ {
		in = append(in, m.Type.In(i))
	}
	for i := 0; i < m.Type.NumOut(); i++ {
		out = append(out, m.Type.Out(i))
	}
	return in, out, true
}

// seqTypes matches iter.Seq[E] and iter.Seq2[K, V] shapes.
// For Seq the key is nil.
func seqTypes(f reflect.Type) (key, elem reflect.Type, ok bool) {
	if f.Kind() != reflect.Func || f.NumIn() != 1 || f.NumOut() != 0 {
		return nil, nil, false
	}

	yield := f.In(0)
	if yield.Kind() != reflect.Func || yield.NumOut() != 1 || yield.Out(0).Kind() != reflect.Bool {
		return nil, nil, false
	}

	switch yield.NumIn() {
	case 1:
		return nil, yield.In(0), true
	case 2:
		return yield.In(0), yield.In(1), true
	default:
		return nil, nil, false
	}
}

// iteratorTypes finds the iteration types of a range-over-func type or of a
// type exposing a Values or All method.
func iteratorTypes(t reflect.Type) (key, elem reflect.Type, ok bool) {
	if t.Kind() == reflect.Func {
		return seqTypes(t)
	}
	for _, name := range []string{"Values", "All"} {
		in, out, found := method(t, name)
		if !found || len(in) != 0 || len(out) != 1 {
			continue
		}
		if k, e, ok := seqTypes(out[0]); ok {
			return k, e, true
		}
	}
	return nil, nil, false
}

// addParam returns the parameter type of a single-argument Add method.
func addParam(t reflect.Type) (reflect.Type, bool) {
	in, _, ok := method(t, "Add")
	if !ok || len(in) != 1 {
		return nil, false
	}
	return in[0], true
}

// collectionShaped reports whether t has Len() int, Add(E) and Contains(E) bool.
func collectionShaped(t reflect.Type) bool {
	in, out, ok := method(t, "Len")
	if !ok || len(in) != 0 || len(out) != 1 || out[0].Kind() != reflect.Int {
		return false
	}
	if _, ok := addParam(t); !ok {
		return false
	}
	in, out, ok = method(t, "Contains")
	return ok && len(in) == 1 && len(out) == 1 && out[0].Kind() == reflect.Bool
}
