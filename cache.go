package fieldmap

import (
	"context"
	"errors"
	"fmt"
	"go/token"
	"reflect"
	"slices"
	"strings"
	"sync"
	"time"
	"unsafe"

	"github.com/zoobzio/sentinel"
)

// DefaultTagKey is the struct tag consulted for field names and the
// transient marker:
//
//	Version int       `persist:"version"` // stored as "version"
//	Cache   []byte    `persist:"-"`       // transient, never listed
const DefaultTagKey = "persist"

// transientTag marks a field as non-persistent.
const transientTag = "-"

func init() {
	sentinel.Tag(DefaultTagKey)
}

// Filter selects fields. A nil Filter keeps every field.
type Filter func(FieldRecord) bool

// accessor reads one field from an addressable root struct value.
type accessor func(root reflect.Value) (reflect.Value, error)

// FieldRecord is the cached description of one persisted field.
// Records are immutable once published by a FieldCache; Index is shared
// and must not be modified.
type FieldRecord struct {
	Name   string                 // key in the produced mapping
	GoName string                 // Go identifier
	Index  []int                  // reflect.Value.FieldByIndex path from the root type
	Type   reflect.Type           // declared type
	Owner  reflect.Type           // struct type declaring the field
	Depth  int                    // embedding depth of Owner; 0 for the root type
	Meta   sentinel.FieldMetadata // scanned field metadata
	read   accessor
}

// Exported reports whether the Go field is exported.
func (f FieldRecord) Exported() bool {
	return token.IsExported(f.GoName)
}

// Read returns the field's value from root, which must be a value of the
// type the record was built for.
func (f FieldRecord) Read(root reflect.Value) (reflect.Value, error) {
	if f.read == nil {
		return reflect.Value{}, errors.New("field record has no accessor")
	}
	return f.read(root)
}

// Option configures a FieldCache.
type Option func(*FieldCache)

// WithTagKey sets the struct tag consulted for names and the transient marker.
func WithTagKey(key string) Option {
	return func(c *FieldCache) {
		c.tagKey = key
	}
}

// WithUnexported includes unexported fields. They are read through their
// address, so the mapper copies non-addressable instances first.
func WithUnexported() Option {
	return func(c *FieldCache) {
		c.unexported = true
	}
}

// FieldCache holds the ordered persisted field list of each struct type.
//
// Lists are built once per type on first use and published fully built;
// concurrent first calls for the same type may both build, and the first
// published list wins. Entries are never evicted.
type FieldCache struct {
	tagKey     string
	unexported bool
	entries    sync.Map // map[reflect.Type][]FieldRecord
}

// NewFieldCache creates an empty FieldCache.
func NewFieldCache(opts ...Option) *FieldCache {
	c := &FieldCache{tagKey: DefaultTagKey}
	for _, opt := range opts {
		opt(c)
	}
	if c.tagKey != DefaultTagKey {
		sentinel.Tag(c.tagKey)
	}
	return c
}

// FieldsOf returns the fields of v's dynamic type.
func (c *FieldCache) FieldsOf(v any, filter Filter) ([]FieldRecord, error) {
	if v == nil {
		return nil, &TypeError{Err: ErrNilInstance, Type: typeName(nil)}
	}
	return c.FieldsFor(reflect.TypeOf(v), filter)
}

// FieldsFor returns the persisted fields of t in ancestor-first order:
// fields promoted from embedded structs precede the fields t declares,
// and declaration order is kept within each struct. Pointer types are
// followed to their struct. The returned slice is a copy.
func (c *FieldCache) FieldsFor(t reflect.Type, filter Filter) ([]FieldRecord, error) {
	st, err := structType(t)
	if err != nil {
		return nil, err
	}

	fields := c.lookup(st)
	if filter == nil {
		return slices.Clone(fields), nil
	}

	out := make([]FieldRecord, 0, len(fields))
	for _, f := range fields {
		if filter(f) {
			out = append(out, f)
		}
	}
	return out, nil
}

// Len returns the number of cached types.
func (c *FieldCache) Len() int {
	n := 0
	c.entries.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// Reset drops every cached entry.
// This is primarily useful for test isolation.
func (c *FieldCache) Reset() {
	c.entries.Clear()
}

func (c *FieldCache) lookup(st reflect.Type) []FieldRecord {
	if cached, ok := c.entries.Load(st); ok {
		return cached.([]FieldRecord)
	}

	start := time.Now()
	fields := c.build(st)

	actual, loaded := c.entries.LoadOrStore(st, fields)
	if !loaded {
		emitCacheBuilt(context.Background(), st.String(), len(fields), time.Since(start))
	}
	return actual.([]FieldRecord)
}

// lineage is one struct on the embedding path being walked.
type lineage struct {
	typ   reflect.Type
	index []int
	depth int
}

// build walks st and its embedded ancestors.
func (c *FieldCache) build(st reflect.Type) []FieldRecord {
	fields := make([]FieldRecord, 0, st.NumField())
	onPath := map[reflect.Type]bool{st: true}
	c.collect(lineage{typ: st}, onPath, &fields)
	return fields
}

// collect appends the fields of frame.typ: ancestors first, then its own.
func (c *FieldCache) collect(frame lineage, onPath map[reflect.Type]bool, out *[]FieldRecord) {
	st := frame.typ
	metas := c.structMetadata(st)

	for i := 0; i < st.NumField(); i++ {
		sf := st.Field(i)
		anc, ok := embeddedStruct(sf)
		if !ok || c.transient(metas[i]) || onPath[anc] {
			continue
		}

		index := appendIndex(frame.index, i)
		before := len(*out)
		onPath[anc] = true
		c.collect(lineage{
			typ:   anc,
			index: index,
			depth: frame.depth + 1,
		}, onPath, out)
		delete(onPath, anc)

		// An ancestor whose data is all unexported would vanish; list it
		// with an accessor that always fails so the mapper reports it.
		if len(*out) == before && !c.unexported && hasHiddenFields(anc) {
			rec := c.record(frame, sf, metas[i], index)
			rec.read = hiddenAccessor(anc)
			*out = append(*out, rec)
		}
	}

	for i := 0; i < st.NumField(); i++ {
		sf := st.Field(i)
		if _, ok := embeddedStruct(sf); ok {
			continue
		}
		if sf.Name == "_" || c.transient(metas[i]) {
			continue
		}
		if !sf.IsExported() && !c.unexported {
			continue
		}
		index := appendIndex(frame.index, i)
		*out = append(*out, c.record(frame, sf, metas[i], index))
	}
}

func (c *FieldCache) record(frame lineage, sf reflect.StructField, meta sentinel.FieldMetadata, index []int) FieldRecord {
	name := sf.Name
	if n, _, _ := strings.Cut(meta.Tags[c.tagKey], ","); n != "" {
		name = n
	}
	meta.Index = index

	return FieldRecord{
		Name:   name,
		GoName: sf.Name,
		Index:  index,
		Type:   sf.Type,
		Owner:  frame.typ,
		Depth:  frame.depth,
		Meta:   meta,
		read:   newAccessor(index),
	}
}

func (c *FieldCache) transient(meta sentinel.FieldMetadata) bool {
	return meta.Tags[c.tagKey] == transientTag
}

// structMetadata returns one sentinel.FieldMetadata per field of st, in
// field order. Metadata already scanned by sentinel is reused; fields it
// does not cover (unexported ones, or types scanned under a colliding
// name) are described from reflect. The cache's tag is filled in when the
// scan predates its registration.
func (c *FieldCache) structMetadata(st reflect.Type) []sentinel.FieldMetadata {
	var scanned map[string]sentinel.FieldMetadata
	// sentinel keys metadata by the bare type name.
	if spec, ok := sentinel.Lookup(st.Name()); ok && spec.PackageName == st.PkgPath() {
		scanned = make(map[string]sentinel.FieldMetadata, len(spec.Fields))
		for _, fm := range spec.Fields {
			scanned[fm.Name] = fm
		}
	}

	metas := make([]sentinel.FieldMetadata, st.NumField())
	for i := range metas {
		sf := st.Field(i)
		fm, ok := scanned[sf.Name]
		if !ok || fm.ReflectType != sf.Type {
			metas[i] = fieldMetadata(sf, c.tagKey)
			continue
		}
		if _, has := fm.Tags[c.tagKey]; !has {
			if val, tagged := sf.Tag.Lookup(c.tagKey); tagged {
				tags := make(map[string]string, len(fm.Tags)+1)
				for k, v := range fm.Tags {
					tags[k] = v
				}
				tags[c.tagKey] = val
				fm.Tags = tags
			}
		}
		metas[i] = fm
	}
	return metas
}

// hiddenAccessor fails every read of an embedded struct that has no
// exported fields.
func hiddenAccessor(anc reflect.Type) accessor {
	return func(reflect.Value) (reflect.Value, error) {
		return reflect.Value{}, fmt.Errorf("embedded %s has only unexported fields", anc)
	}
}

// hasHiddenFields reports whether t declares unexported fields that would
// carry data.
func hasHiddenFields(t reflect.Type) bool {
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() && sf.Name != "_" {
			return true
		}
	}
	return false
}

// newAccessor binds a read of the field at index. Values that are not
// interface-safe (unexported fields) are re-read through their address.
func newAccessor(index []int) accessor {
	return func(root reflect.Value) (v reflect.Value, err error) {
		defer func() {
			if r := recover(); r != nil {
				v, err = reflect.Value{}, fmt.Errorf("%v", r)
			}
		}()

		v, err = root.FieldByIndexErr(index)
		if err != nil {
			return reflect.Value{}, err
		}
		if v.CanInterface() {
			return v, nil
		}
		if !v.CanAddr() {
			return reflect.Value{}, errors.New("unexported field is not addressable")
		}
		return reflect.NewAt(v.Type(), unsafe.Pointer(v.UnsafeAddr())).Elem(), nil
	}
}

// structType follows pointers to a struct type.
func structType(t reflect.Type) (reflect.Type, error) {
	if t == nil {
		return nil, newTypeError(ErrUnresolvableType, t, "no type")
	}
	st := t
	for st.Kind() == reflect.Pointer {
		st = st.Elem()
	}
	if st.Kind() != reflect.Struct {
		return nil, newTypeError(ErrUnresolvableType, t, "cannot enumerate fields of "+st.Kind().String())
	}
	return st, nil
}

// embeddedStruct returns the struct type of an embedded T or *T field.
// Types that encode themselves as text, such as time.Time, are leaf
// fields rather than ancestors.
func embeddedStruct(sf reflect.StructField) (reflect.Type, bool) {
	if !sf.Anonymous {
		return nil, false
	}
	t := sf.Type
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct || selfEncoding(t) {
		return nil, false
	}
	return t, true
}

// fieldMetadata describes sf the way sentinel scans struct fields.
func fieldMetadata(sf reflect.StructField, tagKey string) sentinel.FieldMetadata {
	fm := sentinel.FieldMetadata{
		Name:        sf.Name,
		Type:        sf.Type.String(),
		ReflectType: sf.Type,
		Index:       sf.Index,
		Tags:        make(map[string]string),
	}
	if val, ok := sf.Tag.Lookup(tagKey); ok {
		fm.Tags[tagKey] = val
	}

	switch sf.Type.Kind() {
	case reflect.Struct:
		fm.Kind = sentinel.KindStruct
	case reflect.Ptr:
		fm.Kind = sentinel.KindPointer
	case reflect.Slice, reflect.Array:
		fm.Kind = sentinel.KindSlice
	case reflect.Map:
		fm.Kind = sentinel.KindMap
	case reflect.Interface:
		fm.Kind = sentinel.KindInterface
	default:
		fm.Kind = sentinel.KindScalar
	}

	return fm
}

func appendIndex(prefix []int, i int) []int {
	return append(append(make([]int, 0, len(prefix)+1), prefix...), i)
}
