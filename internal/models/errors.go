package models

import "errors"

// Rejection kinds. A FieldError unwraps to exactly one of these.
var (
	ErrDuplicateValue = errors.New("duplicate value")
	ErrInvalidFormat  = errors.New("invalid format")
	ErrTooShort       = errors.New("too short")
	ErrTooLong        = errors.New("too long")
	ErrInvalidEnum    = errors.New("invalid enum")
	ErrMissingValue   = errors.New("missing value")
)

// FieldError reports a value rejected for a single field.
type FieldError struct {
	Field   string
	Kind    error
	Message string
}

func (e *FieldError) Error() string { return e.Message }

func (e *FieldError) Unwrap() error { return e.Kind }

// KindName returns a short machine-readable name for the rejection kind.
func (e *FieldError) KindName() string {
	switch e.Kind {
	case ErrDuplicateValue:
		return "duplicate_value"
	case ErrInvalidFormat:
		return "invalid_format"
	case ErrTooShort:
		return "too_short"
	case ErrTooLong:
		return "too_long"
	case ErrInvalidEnum:
		return "invalid_enum"
	case ErrMissingValue:
		return "missing_value"
	}
	return "invalid"
}

func reject(field string, kind error, msg string) *FieldError {
	return &FieldError{Field: field, Kind: kind, Message: msg}
}

// FieldErrors flattens err (possibly built with errors.Join) into its field errors.
func FieldErrors(err error) []*FieldError {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []*FieldError
		for _, e := range joined.Unwrap() {
			out = append(out, FieldErrors(e)...)
		}
		return out
	}
	var fe *FieldError
	if errors.As(err, &fe) {
		return []*FieldError{fe}
	}
	return nil
}
