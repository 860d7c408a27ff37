package fieldmap

import (
	"context"
	"fmt"
	"reflect"
	"time"
)

// Entry is one named value of a Record.
type Entry struct {
	Name     string
	Value    any
	Declared TypeDescriptor
}

// Record is an ordered list of named values ready for a Codec.
type Record []Entry

// Names returns the entry names in order.
func (r Record) Names() []string {
	names := make([]string, len(r))
	for i, e := range r {
		names[i] = e.Name
	}
	return names
}

// Get returns the value of the entry called name.
func (r Record) Get(name string) (any, bool) {
	for _, e := range r {
		if e.Name == name {
			return e.Value, true
		}
	}
	return nil, false
}

// Record converts the mapping into a Record in field order.
//
// Enum values are written as their String() names so that ParseEnum
// reverses them. Arrays, collections and map values of enums are written
// the same way; map keys are kept as they are. Absent values are nil.
func (m *Mapping) Record() Record {
	rec := make(Record, 0, len(m.names))
	for name, oc := range m.All() {
		rec = append(rec, Entry{
			Name:     name,
			Value:    recordValue(oc),
			Declared: oc.Declared,
		})
	}
	return rec
}

func recordValue(oc ObjectContext) any {
	if !oc.Present {
		return nil
	}

	switch d := oc.Declared.(type) {
	case EnumType:
		return enumName(oc.Value)
	case ArrayOf:
		if _, ok := d.Elem.(EnumType); ok {
			return enumNames(oc.Value)
		}
	case CollectionOf:
		if _, ok := d.Elem.(EnumType); ok {
			return enumNames(oc.Value)
		}
	case MapOf:
		if _, ok := d.Elem.(EnumType); ok {
			return enumValues(oc.Value)
		}
	}
	return oc.Value
}

// enumName returns the String() name of an enum value, addressing a copy
// when String has a pointer receiver. Nil pointers stay nil.
func enumName(v any) any {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer && rv.IsNil() {
		return nil
	}
	if s, ok := v.(fmt.Stringer); ok {
		return s.String()
	}
	if rv.IsValid() && rv.Kind() != reflect.Pointer {
		p := reflect.New(rv.Type())
		p.Elem().Set(rv)
		if s, ok := p.Interface().(fmt.Stringer); ok {
			return s.String()
		}
	}
	return v
}

// enumNames maps the elements of an iterable of enums to their names.
// Values Iterate cannot walk are returned unchanged.
func enumNames(v any) any {
	seq, err := Iterate(v)
	if err != nil {
		return v
	}
	names := make([]any, 0)
	for e := range seq {
		names = append(names, enumName(e))
	}
	return names
}

var anyType = reflect.TypeFor[any]()

// enumValues maps the values of a map of enums to their names, keeping
// the keys.
func enumValues(v any) any {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map {
		return v
	}

	out := reflect.MakeMapWithSize(reflect.MapOf(rv.Type().Key(), anyType), rv.Len())
	it := rv.MapRange()
	for it.Next() {
		name := reflect.New(anyType).Elem()
		if n := enumName(it.Value().Interface()); n != nil {
			name.Set(reflect.ValueOf(n))
		}
		out.SetMapIndex(it.Key(), name)
	}
	return out.Interface()
}

// Encode maps v, converts the mapping to a Record and marshals it with c.
// The mapping is returned alongside the bytes so callers can inspect
// skipped fields.
func Encode(ctx context.Context, c Codec, m *Mapper, v any, filter Filter) ([]byte, *Mapping, error) {
	start := time.Now()

	mapping, err := m.Map(ctx, v, filter)
	if err != nil {
		emitEncodeComplete(ctx, c.ContentType(), fmt.Sprintf("%T", v), 0, time.Since(start), err)
		return nil, nil, err
	}

	data, err := c.Marshal(mapping.Record())
	if err != nil {
		err = fmt.Errorf("marshal %s: %w", mapping.Type(), err)
	}
	emitEncodeComplete(ctx, c.ContentType(), mapping.Type().String(), len(data), time.Since(start), err)
	if err != nil {
		return nil, mapping, err
	}
	return data, mapping, nil
}
