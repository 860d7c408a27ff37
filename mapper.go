package fieldmap

import (
	"context"
	"reflect"
	"time"
)

// Mapper builds field-name to ObjectContext mappings for live instances.
//
// Mappers are safe for concurrent use. The FieldCache and Resolver may be
// shared between mappers.
type Mapper struct {
	cache    *FieldCache
	resolver *Resolver
}

// NewMapper creates a Mapper. A nil cache or resolver is replaced by a
// fresh default one.
func NewMapper(cache *FieldCache, resolver *Resolver) *Mapper {
	if cache == nil {
		cache = NewFieldCache()
	}
	if resolver == nil {
		resolver = NewResolver()
	}
	return &Mapper{cache: cache, resolver: resolver}
}

// Cache returns the mapper's field cache.
func (m *Mapper) Cache() *FieldCache {
	return m.cache
}

// Resolver returns the mapper's resolver.
func (m *Mapper) Resolver() *Resolver {
	return m.resolver
}

// Map reads every persisted field of v that filter keeps and pairs each
// value with its declared TypeDescriptor. v must be a struct or a non-nil
// pointer to one.
//
// A field whose declared type cannot be described aborts the mapping with
// a *FieldError wrapping ErrUnresolvableType. A field whose value cannot be
// read is left out and reported through Mapping.Skipped and Mapping.Err;
// the rest of the mapping is still returned.
func (m *Mapper) Map(ctx context.Context, v any, filter Filter) (*Mapping, error) {
	rv, err := instance(v)
	if err != nil {
		return nil, err
	}

	st := rv.Type()
	fields, err := m.cache.FieldsFor(st, filter)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	typeName := st.String()
	mapping := newMapping(st, len(fields))

	for _, f := range fields {
		desc, err := m.resolver.Describe(f.Type)
		if err != nil {
			ferr := newFieldError(ErrUnresolvableType, st, f.Name, err)
			emitMapComplete(ctx, typeName, mapping.Len(), len(mapping.skipped), time.Since(start), ferr)
			return nil, ferr
		}

		val, err := f.Read(rv)
		if err != nil {
			ferr := newFieldError(ErrInaccessibleField, st, f.Name, err)
			mapping.skip(ferr)
			emitFieldSkipped(ctx, typeName, f.Name, ferr)
			continue
		}

		mapping.put(f.Name, newObjectContext(val, f.Type, desc))
	}

	emitMapComplete(ctx, typeName, mapping.Len(), len(mapping.skipped), time.Since(start), nil)
	return mapping, nil
}

// instance dereferences v to an addressable struct value.
func instance(v any) (reflect.Value, error) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return reflect.Value{}, &TypeError{Err: ErrNilInstance, Type: typeName(nil)}
	}

	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return reflect.Value{}, newTypeError(ErrNilInstance, rv.Type(), "")
		}
		rv = rv.Elem()
	}

	if rv.Kind() != reflect.Struct {
		return reflect.Value{}, newTypeError(ErrUnresolvableType, rv.Type(), "cannot enumerate fields of "+rv.Kind().String())
	}

	if !rv.CanAddr() {
		cp := reflect.New(rv.Type()).Elem()
		cp.Set(rv)
		rv = cp
	}
	return rv, nil
}
