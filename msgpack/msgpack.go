// Package msgpack provides a MessagePack codec implementation.
package msgpack

import (
	"bytes"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/zoobzio/fieldmap"
)

// msgpackCodec implements fieldmap.Codec for MessagePack.
type msgpackCodec struct{}

// New returns a MessagePack codec.
func New() fieldmap.Codec {
	return &msgpackCodec{}
}

// ContentType returns the MIME type for MessagePack.
func (c *msgpackCodec) ContentType() string {
	return "application/msgpack"
}

// Marshal encodes v as MessagePack. A fieldmap.Record becomes a map whose
// keys are written in the record's order.
func (c *msgpackCodec) Marshal(v any) ([]byte, error) {
	if rec, ok := v.(fieldmap.Record); ok {
		return marshalRecord(rec)
	}
	return msgpack.Marshal(v)
}

// Unmarshal decodes MessagePack data into v.
func (c *msgpackCodec) Unmarshal(data []byte, v any) error {
	return msgpack.Unmarshal(data, v)
}

func marshalRecord(rec fieldmap.Record) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	if err := enc.EncodeMapLen(len(rec)); err != nil {
		return nil, err
	}
	for _, e := range rec {
		if err := enc.EncodeString(e.Name); err != nil {
			return nil, err
		}
		if err := enc.Encode(e.Value); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}
