package fieldmap

import (
	"errors"
	"reflect"
	"slices"
	"sync"
	"testing"

	"github.com/zoobzio/sentinel"
)

func fieldNames(fields []FieldRecord) []string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return names
}

func TestFieldsFor_Order(t *testing.T) {
	tests := []struct {
		name string
		typ  reflect.Type
		want []string
	}{
		{"ancestor first", reflect.TypeFor[Town](), []string{"version", "name", "residents"}},
		{"two levels", reflect.TypeFor[Nation](), []string{"version", "name", "residents", "capital"}},
		{"pointer to struct", reflect.TypeFor[*Town](), []string{"version", "name", "residents"}},
		{"pointer ancestor", reflect.TypeFor[Holder](), []string{"version", "name"}},
		{"self embedding", reflect.TypeFor[Node](), []string{"Value"}},
		{"generic ancestor", reflect.TypeFor[Crate](), []string{"Value", "Label"}},
		{"no tags", reflect.TypeFor[Box[int]](), []string{"Value"}},
		{"text encoding ancestor is a leaf", reflect.TypeFor[Stamped](), []string{"Time", "name"}},
		{"hidden ancestor is listed", reflect.TypeFor[Wrapped](), []string{"sealed", "name"}},
	}

	c := NewFieldCache()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields, err := c.FieldsFor(tt.typ, nil)
			if err != nil {
				t.Fatalf("FieldsFor() error: %v", err)
			}
			if got := fieldNames(fields); !slices.Equal(got, tt.want) {
				t.Errorf("FieldsFor() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFieldsFor_Transient(t *testing.T) {
	type withTransient struct {
		Keep  string `persist:"keep"`
		Drop  string `persist:"-"`
		Plain int
		_     int
	}

	fields, err := NewFieldCache().FieldsFor(reflect.TypeFor[withTransient](), nil)
	if err != nil {
		t.Fatalf("FieldsFor() error: %v", err)
	}

	want := []string{"keep", "Plain"}
	if got := fieldNames(fields); !slices.Equal(got, want) {
		t.Errorf("FieldsFor() = %v, want %v", got, want)
	}
}

func TestFieldsFor_TransientAncestor(t *testing.T) {
	type skipsAncestor struct {
		TownyObject `persist:"-"`

		Name string `persist:"name"`
	}

	fields, err := NewFieldCache().FieldsFor(reflect.TypeFor[skipsAncestor](), nil)
	if err != nil {
		t.Fatalf("FieldsFor() error: %v", err)
	}
	if got := fieldNames(fields); !slices.Equal(got, []string{"name"}) {
		t.Errorf("FieldsFor() = %v, want [name]", got)
	}
}

func TestFieldsFor_Record(t *testing.T) {
	fields, err := NewFieldCache().FieldsFor(reflect.TypeFor[Town](), nil)
	if err != nil {
		t.Fatalf("FieldsFor() error: %v", err)
	}

	version := fields[0]
	if version.GoName != "Version" {
		t.Errorf("GoName = %q, want Version", version.GoName)
	}
	if !slices.Equal(version.Index, []int{0, 1}) {
		t.Errorf("Index = %v, want [0 1]", version.Index)
	}
	if version.Owner != reflect.TypeFor[TownyObject]() {
		t.Errorf("Owner = %v, want TownyObject", version.Owner)
	}
	if version.Depth != 1 {
		t.Errorf("Depth = %d, want 1", version.Depth)
	}
	if version.Type != reflect.TypeFor[int]() {
		t.Errorf("Type = %v, want int", version.Type)
	}
	if !version.Exported() {
		t.Error("Version should be exported")
	}
	if version.Meta.Tags[DefaultTagKey] != "version" {
		t.Errorf("Meta.Tags = %v", version.Meta.Tags)
	}
	if version.Meta.Kind != sentinel.KindScalar {
		t.Errorf("Meta.Kind = %v, want scalar", version.Meta.Kind)
	}

	residents := fields[2]
	if residents.Depth != 0 || residents.Owner != reflect.TypeFor[Town]() {
		t.Errorf("residents owner = %v depth %d", residents.Owner, residents.Depth)
	}
	if residents.Meta.Kind != sentinel.KindSlice {
		t.Errorf("Meta.Kind = %v, want slice", residents.Meta.Kind)
	}
}

func TestFieldsFor_Idempotent(t *testing.T) {
	c := NewFieldCache()
	typ := reflect.TypeFor[Nation]()

	first, err := c.FieldsFor(typ, nil)
	if err != nil {
		t.Fatalf("FieldsFor() error: %v", err)
	}
	second, err := c.FieldsFor(typ, nil)
	if err != nil {
		t.Fatalf("FieldsFor() error: %v", err)
	}

	if !slices.Equal(fieldNames(first), fieldNames(second)) {
		t.Errorf("FieldsFor() changed between calls: %v vs %v", fieldNames(first), fieldNames(second))
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}

	// Mutating a returned slice must not leak into the cache.
	first[0].Name = "mutated"
	third, _ := c.FieldsFor(typ, nil)
	if third[0].Name != "version" {
		t.Errorf("cache was mutated through returned slice: %q", third[0].Name)
	}
}

func TestFieldsFor_Concurrent(t *testing.T) {
	c := NewFieldCache()
	typ := reflect.TypeFor[Nation]()
	want := []string{"version", "name", "residents", "capital"}

	const workers = 32
	results := make([][]string, workers)
	errs := make([]error, workers)

	var start, done sync.WaitGroup
	start.Add(1)
	for i := 0; i < workers; i++ {
		done.Add(1)
		go func(i int) {
			defer done.Done()
			start.Wait()
			fields, err := c.FieldsFor(typ, nil)
			results[i], errs[i] = fieldNames(fields), err
		}(i)
	}
	start.Done()
	done.Wait()

	for i := 0; i < workers; i++ {
		if errs[i] != nil {
			t.Fatalf("worker %d: FieldsFor() error: %v", i, errs[i])
		}
		if !slices.Equal(results[i], want) {
			t.Errorf("worker %d: FieldsFor() = %v, want %v", i, results[i], want)
		}
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestFieldsFor_Filter(t *testing.T) {
	c := NewFieldCache()
	own := func(f FieldRecord) bool { return f.Depth == 0 }

	fields, err := c.FieldsFor(reflect.TypeFor[Town](), own)
	if err != nil {
		t.Fatalf("FieldsFor() error: %v", err)
	}
	if got := fieldNames(fields); !slices.Equal(got, []string{"name", "residents"}) {
		t.Errorf("FieldsFor() = %v, want [name residents]", got)
	}

	all, _ := c.FieldsFor(reflect.TypeFor[Town](), nil)
	if len(all) != 3 {
		t.Errorf("filter should not affect the cached list, got %d fields", len(all))
	}
}

func TestFieldsFor_Unexported(t *testing.T) {
	type secretive struct {
		Public string
		secret int
	}
	typ := reflect.TypeFor[secretive]()

	fields, err := NewFieldCache().FieldsFor(typ, nil)
	if err != nil {
		t.Fatalf("FieldsFor() error: %v", err)
	}
	if got := fieldNames(fields); !slices.Equal(got, []string{"Public"}) {
		t.Errorf("default FieldsFor() = %v, want [Public]", got)
	}

	fields, err = NewFieldCache(WithUnexported()).FieldsFor(typ, nil)
	if err != nil {
		t.Fatalf("FieldsFor() error: %v", err)
	}
	if got := fieldNames(fields); !slices.Equal(got, []string{"Public", "secret"}) {
		t.Errorf("WithUnexported FieldsFor() = %v, want [Public secret]", got)
	}
	if fields[1].Exported() {
		t.Error("secret should not be exported")
	}

	got, err := fields[1].Read(reflect.ValueOf(&secretive{secret: 7}).Elem())
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if got.Interface() != 7 {
		t.Errorf("Read() = %v, want 7", got.Interface())
	}
}

func TestFieldsFor_TagKey(t *testing.T) {
	type tagged struct {
		Name string `db:"full_name" persist:"name"`
		Skip string `db:"-"`
	}

	fields, err := NewFieldCache(WithTagKey("db")).FieldsFor(reflect.TypeFor[tagged](), nil)
	if err != nil {
		t.Fatalf("FieldsFor() error: %v", err)
	}
	if got := fieldNames(fields); !slices.Equal(got, []string{"full_name"}) {
		t.Errorf("FieldsFor() = %v, want [full_name]", got)
	}
}

func TestFieldsFor_TagOptions(t *testing.T) {
	type withOptions struct {
		Name  string `persist:"name,omitempty"`
		Other string `persist:",omitempty"`
	}

	fields, err := NewFieldCache().FieldsFor(reflect.TypeFor[withOptions](), nil)
	if err != nil {
		t.Fatalf("FieldsFor() error: %v", err)
	}
	if got := fieldNames(fields); !slices.Equal(got, []string{"name", "Other"}) {
		t.Errorf("FieldsFor() = %v, want [name Other]", got)
	}
}

func TestFieldsFor_NotStruct(t *testing.T) {
	c := NewFieldCache()

	tests := []struct {
		name string
		typ  reflect.Type
	}{
		{"nil", nil},
		{"int", reflect.TypeFor[int]()},
		{"slice", reflect.TypeFor[[]Town]()},
		{"pointer to int", reflect.TypeFor[*int]()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.FieldsFor(tt.typ, nil)
			if !errors.Is(err, ErrUnresolvableType) {
				t.Errorf("FieldsFor() error = %v, want ErrUnresolvableType", err)
			}
		})
	}
}

func TestFieldsOf(t *testing.T) {
	c := NewFieldCache()

	fields, err := c.FieldsOf(&Town{}, nil)
	if err != nil {
		t.Fatalf("FieldsOf() error: %v", err)
	}
	if len(fields) != 3 {
		t.Errorf("FieldsOf() returned %d fields, want 3", len(fields))
	}

	if _, err := c.FieldsOf(nil, nil); !errors.Is(err, ErrNilInstance) {
		t.Errorf("FieldsOf(nil) error = %v, want ErrNilInstance", err)
	}
}

func TestFieldCache_Reset(t *testing.T) {
	c := NewFieldCache()
	_, _ = c.FieldsFor(reflect.TypeFor[Town](), nil)
	_, _ = c.FieldsFor(reflect.TypeFor[Resident](), nil)

	if c.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", c.Len())
	}
	c.Reset()
	if c.Len() != 0 {
		t.Errorf("Len() after Reset() = %d, want 0", c.Len())
	}
}

func TestFieldRecord_ReadNilAncestor(t *testing.T) {
	fields, err := NewFieldCache().FieldsFor(reflect.TypeFor[Holder](), nil)
	if err != nil {
		t.Fatalf("FieldsFor() error: %v", err)
	}

	root := reflect.ValueOf(&Holder{Name: "orphan"}).Elem()
	if _, err := fields[0].Read(root); err == nil {
		t.Error("Read() through a nil embedded pointer should fail")
	}

	v, err := fields[1].Read(root)
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if v.String() != "orphan" {
		t.Errorf("Read() = %q, want orphan", v.String())
	}
}

func TestFieldRecord_ReadZero(t *testing.T) {
	var f FieldRecord
	if _, err := f.Read(reflect.ValueOf(Town{})); err == nil {
		t.Error("Read() on a zero FieldRecord should fail")
	}
}

type scannedCrew struct {
	Leader string `persist:"chief" json:"leader"`
	Notes  string `persist:"-"`
	Size   int    `roster:"headcount"`
}

func TestFieldsFor_ScannedMetadata(t *testing.T) {
	sentinel.Scan[scannedCrew]()

	fields, err := NewFieldCache().FieldsFor(reflect.TypeFor[scannedCrew](), nil)
	if err != nil {
		t.Fatalf("FieldsFor() error: %v", err)
	}
	if got := fieldNames(fields); !slices.Equal(got, []string{"chief", "Size"}) {
		t.Fatalf("FieldsFor() = %v, want [chief Size]", got)
	}
	// json is only present when the scanned metadata was used.
	if fields[0].Meta.Tags["json"] != "leader" {
		t.Errorf("Meta.Tags = %v, want scanned json tag", fields[0].Meta.Tags)
	}
	if !slices.Equal(fields[0].Meta.Index, []int{0}) {
		t.Errorf("Meta.Index = %v, want [0]", fields[0].Meta.Index)
	}

	// The roster key is registered after the scan.
	fields, err = NewFieldCache(WithTagKey("roster")).FieldsFor(reflect.TypeFor[scannedCrew](), nil)
	if err != nil {
		t.Fatalf("FieldsFor() error: %v", err)
	}
	if got := fieldNames(fields); !slices.Equal(got, []string{"Leader", "Notes", "headcount"}) {
		t.Fatalf("FieldsFor() = %v, want [Leader Notes headcount]", got)
	}
	if fields[2].Meta.Tags["roster"] != "headcount" {
		t.Errorf("Meta.Tags = %v, want roster tag filled in", fields[2].Meta.Tags)
	}

	meta, ok := sentinel.Lookup("scannedCrew")
	if !ok {
		t.Fatal("scannedCrew should be scanned")
	}
	if _, has := meta.Fields[2].Tags["roster"]; has {
		t.Error("scanned metadata should not be modified")
	}
}

func TestFieldsFor_HiddenAncestor(t *testing.T) {
	fields, err := NewFieldCache().FieldsFor(reflect.TypeFor[Wrapped](), nil)
	if err != nil {
		t.Fatalf("FieldsFor() error: %v", err)
	}

	root := reflect.ValueOf(&Wrapped{sealed: sealed{secret: 3}}).Elem()
	if _, err := fields[0].Read(root); err == nil {
		t.Error("Read() of a hidden ancestor should fail")
	}

	fields, err = NewFieldCache(WithUnexported()).FieldsFor(reflect.TypeFor[Wrapped](), nil)
	if err != nil {
		t.Fatalf("FieldsFor() error: %v", err)
	}
	if got := fieldNames(fields); !slices.Equal(got, []string{"secret", "name"}) {
		t.Errorf("FieldsFor() = %v, want [secret name]", got)
	}
}
