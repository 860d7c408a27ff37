package fieldmap

import (
	"errors"
	"fmt"
	"reflect"
)

// Sentinel errors for programmatic error handling.
// Use errors.Is() to check for these error types.
var (
	// ErrUnresolvableType indicates a declared type's structure or element
	// type cannot be recovered.
	ErrUnresolvableType = errors.New("unresolvable type")

	// ErrInaccessibleField indicates a field value could not be read.
	ErrInaccessibleField = errors.New("inaccessible field")

	// ErrInvalidEnumLiteral indicates text that matches no enum constant.
	ErrInvalidEnumLiteral = errors.New("invalid enum literal")

	// ErrNilInstance indicates a nil value was passed where an instance is required.
	ErrNilInstance = errors.New("nil instance")
)

// TypeError represents a failure to classify or enumerate a type.
type TypeError struct {
	Err    error  // Underlying sentinel error
	Type   string // Offending type
	Detail string // What could not be recovered
}

func (e *TypeError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s %s: %s", e.Err.Error(), e.Type, e.Detail)
	}
	return fmt.Sprintf("%s %s", e.Err.Error(), e.Type)
}

func (e *TypeError) Unwrap() error {
	return e.Err
}

// FieldError represents a failure tied to a single field of a type.
type FieldError struct {
	Err   error  // Underlying sentinel error (ErrInaccessibleField, ErrUnresolvableType)
	Type  string // Type declaring the field
	Field string // Field name as it appears in the mapping
	Cause error  // Original error
}

func (e *FieldError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s %s.%s: %v", e.Err.Error(), e.Type, e.Field, e.Cause)
	}
	return fmt.Sprintf("%s %s.%s", e.Err.Error(), e.Type, e.Field)
}

func (e *FieldError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Err, e.Cause}
	}
	return []error{e.Err}
}

// EnumError represents a failed enum parse.
type EnumError struct {
	Err  error  // Underlying sentinel error
	Type string // Enum type
	Text string // Rejected literal
}

func (e *EnumError) Error() string {
	return fmt.Sprintf("%s %q for %s", e.Err.Error(), e.Text, e.Type)
}

func (e *EnumError) Unwrap() error {
	return e.Err
}

// newTypeError creates a TypeError for t.
func newTypeError(sentinel error, t reflect.Type, detail string) error {
	return &TypeError{
		Err:    sentinel,
		Type:   typeName(t),
		Detail: detail,
	}
}

// newFieldError creates a FieldError for a field of owner.
func newFieldError(sentinel error, owner reflect.Type, field string, cause error) *FieldError {
	return &FieldError{
		Err:   sentinel,
		Type:  typeName(owner),
		Field: field,
		Cause: cause,
	}
}

// typeName renders t for error messages, tolerating nil.
func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
