// Package xml provides an XML codec implementation.
package xml

import (
	"bytes"
	"cmp"
	"encoding/xml"
	"fmt"
	"reflect"
	"slices"

	"github.com/zoobzio/fieldmap"
)

// RecordElement names the root element of an encoded fieldmap.Record.
const RecordElement = "record"

// EntryElement names the element written for each key of a map value.
// The key is carried in the KeyAttr attribute.
const (
	EntryElement = "entry"
	KeyAttr      = "key"
)

// xmlCodec implements fieldmap.Codec for XML.
type xmlCodec struct{}

// New returns an XML codec.
func New() fieldmap.Codec {
	return &xmlCodec{}
}

// ContentType returns the MIME type for XML.
func (c *xmlCodec) ContentType() string {
	return "application/xml"
}

// Marshal encodes v as XML. A fieldmap.Record becomes a <record> element
// with one child per entry, in the record's order. Absent values are
// written as empty elements. Map values are written as one <entry key="k">
// child per key, sorted by key.
func (c *xmlCodec) Marshal(v any) ([]byte, error) {
	if rec, ok := v.(fieldmap.Record); ok {
		return marshalRecord(rec)
	}
	return xml.Marshal(v)
}

// Unmarshal decodes XML data into v.
func (c *xmlCodec) Unmarshal(data []byte, v any) error {
	return xml.Unmarshal(data, v)
}

func marshalRecord(rec fieldmap.Record) ([]byte, error) {
	var buf bytes.Buffer
	enc := xml.NewEncoder(&buf)

	root := xml.StartElement{Name: xml.Name{Local: RecordElement}}
	if err := enc.EncodeToken(root); err != nil {
		return nil, err
	}
	for _, e := range rec {
		start := xml.StartElement{Name: xml.Name{Local: e.Name}}
		if err := encodeValue(enc, start, e.Value); err != nil {
			return nil, fmt.Errorf("%s: %w", e.Name, err)
		}
	}
	if err := enc.EncodeToken(root.End()); err != nil {
		return nil, err
	}
	if err := enc.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeValue(enc *xml.Encoder, start xml.StartElement, v any) error {
	if v == nil {
		if err := enc.EncodeToken(start); err != nil {
			return err
		}
		return enc.EncodeToken(start.End())
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map {
		return enc.EncodeElement(v, start)
	}

	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	for _, kv := range sortedEntries(rv) {
		entry := xml.StartElement{
			Name: xml.Name{Local: EntryElement},
			Attr: []xml.Attr{{Name: xml.Name{Local: KeyAttr}, Value: kv.key}},
		}
		if err := encodeValue(enc, entry, kv.value); err != nil {
			return err
		}
	}
	return enc.EncodeToken(start.End())
}

type mapEntry struct {
	key   string
	value any
}

// sortedEntries returns the entries of a map ordered by the text of the key.
func sortedEntries(rv reflect.Value) []mapEntry {
	entries := make([]mapEntry, 0, rv.Len())
	it := rv.MapRange()
	for it.Next() {
		entries = append(entries, mapEntry{
			key:   fmt.Sprint(it.Key().Interface()),
			value: it.Value().Interface(),
		})
	}
	slices.SortFunc(entries, func(a, b mapEntry) int {
		return cmp.Compare(a.key, b.key)
	})
	return entries
}
