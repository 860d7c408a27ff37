package fieldmap

// Codec provides content-type aware marshaling.
//
// Codecs in this module's sibling packages encode a Record as an ordered
// document keyed by field name. Other values are marshaled as-is.
type Codec interface {
	// ContentType returns the MIME type for this codec (e.g., "application/json").
	ContentType() string

	// Marshal encodes v into bytes.
	Marshal(v any) ([]byte, error)

	// Unmarshal decodes data into v.
	Unmarshal(data []byte, v any) error
}
