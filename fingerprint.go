package fieldmap

import (
	"encoding/hex"
	"fmt"
	"reflect"

	"golang.org/x/crypto/blake2b"
)

// Fingerprint returns a hex BLAKE2b-256 digest of t's persisted layout:
// each field's name and declared descriptor, in field order. Types with the
// same layout share a fingerprint; adding, removing, reordering or retyping
// a field changes it. Consumers that store fields positionally can compare
// fingerprints to detect layout drift.
func (m *Mapper) Fingerprint(t reflect.Type) (string, error) {
	fields, err := m.cache.FieldsFor(t, nil)
	if err != nil {
		return "", err
	}

	h, err := blake2b.New256(nil)
	if err != nil {
		return "", err
	}

	for _, f := range fields {
		desc, err := m.resolver.Describe(f.Type)
		if err != nil {
			return "", newFieldError(ErrUnresolvableType, f.Owner, f.Name, err)
		}
		fmt.Fprintf(h, "%s:%s\n", f.Name, desc)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
