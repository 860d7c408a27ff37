// Package json provides a JSON codec implementation.
package json

import (
	"bytes"
	"encoding/json"

	"github.com/zoobzio/fieldmap"
)

// jsonCodec implements fieldmap.Codec for JSON.
type jsonCodec struct{}

// New returns a JSON codec.
func New() fieldmap.Codec {
	return &jsonCodec{}
}

// ContentType returns the MIME type for JSON.
func (c *jsonCodec) ContentType() string {
	return "application/json"
}

// Marshal encodes v as JSON. A fieldmap.Record becomes an object whose
// keys follow the record's order.
func (c *jsonCodec) Marshal(v any) ([]byte, error) {
	if rec, ok := v.(fieldmap.Record); ok {
		return marshalRecord(rec)
	}
	return json.Marshal(v)
}

// Unmarshal decodes JSON data into v.
func (c *jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func marshalRecord(rec fieldmap.Record) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range rec {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(e.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
