package fieldmap

import (
	"fmt"
	"reflect"
)

// Shape identifies which TypeDescriptor variant a value is.
// Codecs switch on Shape to select an encode/decode strategy.
type Shape int

const (
	ShapePrimitive Shape = iota + 1
	ShapeArray
	ShapeCollection
	ShapeMap
	ShapeEnum
	ShapeOpaque
)

var shapeNames = map[Shape]string{
	ShapePrimitive:  "primitive",
	ShapeArray:      "array",
	ShapeCollection: "collection",
	ShapeMap:        "map",
	ShapeEnum:       "enum",
	ShapeOpaque:     "opaque",
}

func (s Shape) String() string {
	if name, ok := shapeNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Shape(%d)", int(s))
}

// PrimitiveKind is the closed set of primitive kinds.
// Pointer ("boxed") and value declarations share a kind.
type PrimitiveKind int

const (
	KindInt    PrimitiveKind = iota + 1 // int, int32
	KindBool                            // bool
	KindChar                            // uint16
	KindFloat                           // float32
	KindDouble                          // float64
	KindLong                            // int64
	KindByte                            // int8, uint8
)

var primitiveNames = map[PrimitiveKind]string{
	KindInt:    "int",
	KindBool:   "bool",
	KindChar:   "char",
	KindFloat:  "float",
	KindDouble: "double",
	KindLong:   "long",
	KindByte:   "byte",
}

func (k PrimitiveKind) String() string {
	if name, ok := primitiveNames[k]; ok {
		return name
	}
	return fmt.Sprintf("PrimitiveKind(%d)", int(k))
}

// primitiveKinds maps reflect kinds onto primitive kinds.
// Kinds absent from the table are not primitive.
var primitiveKinds = map[reflect.Kind]PrimitiveKind{
	reflect.Int:     KindInt,
	reflect.Int32:   KindInt,
	reflect.Bool:    KindBool,
	reflect.Uint16:  KindChar,
	reflect.Float32: KindFloat,
	reflect.Float64: KindDouble,
	reflect.Int64:   KindLong,
	reflect.Int8:    KindByte,
	reflect.Uint8:   KindByte,
}

// TypeID names a type: "pkgpath.Name" for named types, the reflect
// spelling for unnamed ones.
type TypeID string

// TypeIDOf returns the TypeID of t.
func TypeIDOf(t reflect.Type) TypeID {
	if t == nil {
		return ""
	}
	if t.Name() != "" && t.PkgPath() != "" {
		return TypeID(t.PkgPath() + "." + t.Name())
	}
	return TypeID(t.String())
}

// TypeDescriptor classifies a declared type for codec dispatch.
// It is derived from the static declaration only, so it is stable when
// the live value is nil or empty. Descriptors are comparable with ==.
//
// The variants are Primitive, ArrayOf, CollectionOf, MapOf, EnumType and
// Opaque; the set is closed.
type TypeDescriptor interface {
	Shape() Shape
	String() string
	descriptor()
}

// Primitive describes int, bool, char, float, double, long and byte.
type Primitive struct {
	Kind PrimitiveKind
}

// ArrayOf describes a fixed-length array.
type ArrayOf struct {
	Elem TypeDescriptor
	Len  int
}

// CollectionOf describes a slice or a collection-shaped container.
type CollectionOf struct {
	Elem TypeDescriptor
}

// MapOf describes a keyed container.
type MapOf struct {
	Key  TypeDescriptor
	Elem TypeDescriptor
}

// EnumType describes a registered enum.
type EnumType struct {
	ID TypeID
}

// Opaque describes any other type, resolved no further.
type Opaque struct {
	ID TypeID
}

func (Primitive) Shape() Shape    { return ShapePrimitive }
func (ArrayOf) Shape() Shape      { return ShapeArray }
func (CollectionOf) Shape() Shape { return ShapeCollection }
func (MapOf) Shape() Shape        { return ShapeMap }
func (EnumType) Shape() Shape     { return ShapeEnum }
func (Opaque) Shape() Shape       { return ShapeOpaque }

func (d Primitive) String() string { return "Primitive(" + d.Kind.String() + ")" }
func (d ArrayOf) String() string   { return fmt.Sprintf("ArrayOf(%d, %s)", d.Len, d.Elem) }
func (d CollectionOf) String() string {
	return "CollectionOf(" + d.Elem.String() + ")"
}
func (d MapOf) String() string    { return "MapOf(" + d.Key.String() + ", " + d.Elem.String() + ")" }
func (d EnumType) String() string { return "EnumType(" + string(d.ID) + ")" }
func (d Opaque) String() string   { return "Opaque(" + string(d.ID) + ")" }

func (Primitive) descriptor()    {}
func (ArrayOf) descriptor()      {}
func (CollectionOf) descriptor() {}
func (MapOf) descriptor()        {}
func (EnumType) descriptor()     {}
func (Opaque) descriptor()       {}

// ElemOf returns the element descriptor of a container descriptor.
func ElemOf(d TypeDescriptor) (TypeDescriptor, bool) {
	switch v := d.(type) {
	case ArrayOf:
		return v.Elem, true
	case CollectionOf:
		return v.Elem, true
	case MapOf:
		return v.Elem, true
	default:
		return nil, false
	}
}
