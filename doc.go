// Package fieldmap maps arbitrary struct instances to ordered field-name to
// value mappings, each value paired with a descriptor of its declared type.
//
// The mapping is the contract a generic persistence layer consumes: it reads
// any domain object without per-type serialization code, and the descriptors
// let a codec pick an encoding even when a container field is nil or empty.
//
// # Fields
//
// A FieldCache lists the persisted fields of a struct type once and keeps
// the list for the life of the cache. Embedded structs act as ancestors:
// their promoted fields come first, then the fields the type declares.
//
//	type TownyObject struct {
//	    UUID    uuid.UUID `persist:"-"`       // transient
//	    Version int       `persist:"version"`
//	}
//
//	type Town struct {
//	    TownyObject
//	    Name      string     `persist:"name"`
//	    Residents []Resident `persist:"residents"`
//	}
//
//	fields, _ := cache.FieldsFor(reflect.TypeFor[Town](), nil)
//	// version, name, residents
//
// # Descriptors
//
// A Resolver classifies declared types into a closed set of descriptors:
//
//   - Primitive: int, bool, char, float, double, long, byte (value or pointer)
//   - ArrayOf: fixed-length arrays
//   - CollectionOf: slices and collection-shaped types
//   - MapOf: maps
//   - EnumType: types registered with RegisterEnum
//   - Opaque: everything else
//
// Element types come from the declaration. A container whose element type
// is erased to the empty interface fails with ErrUnresolvableType rather
// than being guessed.
//
// # Mapping
//
//	m := fieldmap.NewMapper(fieldmap.NewFieldCache(), fieldmap.NewResolver())
//	mapping, err := m.Map(ctx, town, nil)
//	for name, oc := range mapping.All() {
//	    fmt.Println(name, oc.Value, oc.Declared)
//	}
//
// Fields that cannot be read (for example, promoted through a nil embedded
// pointer) are skipped and listed by Mapping.Skipped.
//
// # Codecs
//
// Mapping.Record produces an ordered Record which the json, yaml, msgpack,
// bson and xml packages encode with field order preserved:
//
//	data, mapping, err := fieldmap.Encode(ctx, json.New(), m, town, nil)
package fieldmap
