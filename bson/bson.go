// Package bson provides a BSON codec implementation.
package bson

import (
	"github.com/zoobzio/fieldmap"
	"go.mongodb.org/mongo-driver/bson"
)

// bsonCodec implements fieldmap.Codec for BSON.
type bsonCodec struct{}

// New returns a BSON codec.
func New() fieldmap.Codec {
	return &bsonCodec{}
}

// ContentType returns the MIME type for BSON.
func (c *bsonCodec) ContentType() string {
	return "application/bson"
}

// Marshal encodes v as BSON. A fieldmap.Record becomes an ordered document.
func (c *bsonCodec) Marshal(v any) ([]byte, error) {
	if rec, ok := v.(fieldmap.Record); ok {
		return bson.Marshal(Document(rec))
	}
	return bson.Marshal(v)
}

// Unmarshal decodes BSON data into v.
func (c *bsonCodec) Unmarshal(data []byte, v any) error {
	return bson.Unmarshal(data, v)
}

// Document converts a record into an ordered BSON document.
func Document(rec fieldmap.Record) bson.D {
	doc := make(bson.D, 0, len(rec))
	for _, e := range rec {
		doc = append(doc, bson.E{Key: e.Name, Value: e.Value})
	}
	return doc
}
