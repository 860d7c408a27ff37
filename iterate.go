package fieldmap

import (
	"iter"
	"reflect"
)

// Iterate returns the elements of v as a sequence:
//
//   - arrays and slices yield their elements by index
//   - maps yield their values, in map order
//   - channels yield received values until closed
//   - iter.Seq yields its values; iter.Seq2 yields its second values
//   - types with a Values or All method yield that method's sequence
//
// A pointer to any of these is followed. Anything else fails with
// ErrUnresolvableType, and a nil pointer or function with ErrNilInstance.
func Iterate(v any) (iter.Seq[any], error) {
	if v == nil {
		return nil, newTypeError(ErrUnresolvableType, nil, "not iterable")
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, newTypeError(ErrNilInstance, rv.Type(), "nil pointer")
		}
		switch rv.Elem().Kind() {
		case reflect.Array, reflect.Slice, reflect.Map, reflect.Chan, reflect.Func:
			rv = rv.Elem()
		}
	}

	switch rv.Kind() {
	case reflect.Array, reflect.Slice:
		return func(yield func(any) bool) {
			for i := 0; i < rv.Len(); i++ {
				if !yield(rv.Index(i).Interface()) {
					return
				}
			}
		}, nil

	case reflect.Map:
		return func(yield func(any) bool) {
			it := rv.MapRange()
			for it.Next() {
				if !yield(it.Value().Interface()) {
					return
				}
			}
		}, nil

	case reflect.Chan:
		if rv.Type().ChanDir()&reflect.RecvDir == 0 {
			return nil, newTypeError(ErrUnresolvableType, rv.Type(), "send-only channel")
		}
		return func(yield func(any) bool) {
			for {
				x, ok := rv.Recv()
				if !ok || !yield(x.Interface()) {
					return
				}
			}
		}, nil

	case reflect.Func:
		if _, _, ok := seqTypes(rv.Type()); ok {
			if rv.IsNil() {
				return nil, newTypeError(ErrNilInstance, rv.Type(), "nil sequence")
			}
			return funcSeq(rv), nil
		}
	}

	for _, name := range []string{"Values", "All"} {
		m := methodValue(rv, name)
		if !m.IsValid() || m.Type().NumIn() != 0 || m.Type().NumOut() != 1 {
			continue
		}
		if _, _, ok := seqTypes(m.Type().Out(0)); !ok {
			continue
		}
		seq := m.Call(nil)[0]
		if seq.IsNil() {
			return nil, newTypeError(ErrNilInstance, rv.Type(), name+" returned a nil sequence")
		}
		return funcSeq(seq), nil
	}

	return nil, newTypeError(ErrUnresolvableType, rv.Type(), "not iterable")
}

// funcSeq adapts a reflected iter.Seq or iter.Seq2 to iter.Seq[any],
// yielding the last value of each step.
func funcSeq(seq reflect.Value) iter.Seq[any] {
	yieldType := seq.Type().In(0)
	return func(yield func(any) bool) {
		fn := reflect.MakeFunc(yieldType, func(args []reflect.Value) []reflect.Value {
			more := yield(args[len(args)-1].Interface())
			return []reflect.Value{reflect.ValueOf(more).Convert(yieldType.Out(0))}
		})
		seq.Call([]reflect.Value{fn})
	}
}

// methodValue finds name on rv, taking the address of a copy when the
// method has a pointer receiver.
func methodValue(rv reflect.Value, name string) reflect.Value {
	if m := rv.MethodByName(name); m.IsValid() {
		return m
	}
	if rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		return reflect.Value{}
	}
	p := reflect.New(rv.Type())
	p.Elem().Set(rv)
	return p.MethodByName(name)
}
