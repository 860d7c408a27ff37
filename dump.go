package fieldmap

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/davecgh/go-spew/spew"
)

// dumpConfig renders composite values on a single line.
var dumpConfig = spew.ConfigState{
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// Dump writes one "name = value" line per mapped field of v, framed by a
// banner naming the type. Strings are quoted. Fields whose value cannot be
// read are listed as <inaccessible> in their place, the same best-effort
// policy Map applies.
func (m *Mapper) Dump(w io.Writer, v any) error {
	mapping, err := m.Map(context.Background(), v, nil)
	if err != nil {
		return err
	}

	banner := "================= " + mapping.Type().String() + " ================="

	var b strings.Builder
	b.WriteString(banner)
	b.WriteByte('\n')
	if err := m.dumpFields(&b, mapping); err != nil {
		return err
	}
	b.WriteString(banner)
	b.WriteByte('\n')

	_, err = io.WriteString(w, b.String())
	return err
}

func dumpValue(oc ObjectContext) string {
	if !oc.Present {
		return "<nil>"
	}
	if s, ok := oc.Value.(string); ok {
		return strconv.Quote(s)
	}
	return dumpConfig.Sprint(oc.Value)
}

// dumpFields writes the mapping in field order. A name shared by several
// fields is written once, at its first position.
func (m *Mapper) dumpFields(b *strings.Builder, mapping *Mapping) error {
	fields, err := m.cache.FieldsFor(mapping.Type(), nil)
	if err != nil {
		return err
	}

	skipped := make(map[string]bool, len(mapping.skipped))
	for _, name := range mapping.Skipped() {
		skipped[name] = true
	}

	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if seen[f.Name] {
			continue
		}
		seen[f.Name] = true

		if oc, ok := mapping.Get(f.Name); ok {
			fmt.Fprintf(b, "%s = %s\n", f.Name, dumpValue(oc))
		} else if skipped[f.Name] {
			fmt.Fprintf(b, "%s = <inaccessible>\n", f.Name)
		}
	}
	return nil
}
