package iso8583

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrSchemaNotFound   = errors.New("schema not found")
	ErrTypeMismatch     = errors.New("type mismatch")
	ErrLengthExceeded   = errors.New("length exceeded")
	ErrDigitOverflow    = errors.New("digit overflow")
	ErrSignNotAllowed   = errors.New("sign not allowed")
	ErrCharsetViolation = errors.New("charset violation")
	ErrLengthMismatch   = errors.New("length mismatch")
	ErrMalformedBitmap  = errors.New("malformed bitmap")
	ErrTruncatedInput   = errors.New("truncated input")
	ErrDateFormat       = errors.New("date format")
	ErrFieldNotPresent  = errors.New("field not present")

	ErrInvalidMTI      = errors.New("invalid MTI")
	ErrInvalidField    = errors.New("invalid field number")
	ErrInvalidSchema   = errors.New("invalid schema")
	ErrDuplicateSchema = errors.New("duplicate schema")
	ErrInvalidTLV      = errors.New("invalid TLV data")
	ErrTrailingData    = errors.New("trailing data after last field")
)

// FieldError reports a value rejected for a field. Expected and Actual hold
// the compared lengths or digit counts when the failure is a size check.
type FieldError struct {
	Field    int
	Err      error
	Expected int
	Actual   int
	Detail   string
}

func (fe *FieldError) Error() string {
	msg := fmt.Sprintf("field %d: %v", fe.Field, fe.Err)
	if fe.Expected != 0 || fe.Actual != 0 {
		msg += fmt.Sprintf(" (expected %d, got %d)", fe.Expected, fe.Actual)
	}
	if fe.Detail != "" {
		msg += ": " + fe.Detail
	}
	return msg
}

func (fe *FieldError) Unwrap() error { return fe.Err }

// EncodingError is returned by the codec when a message cannot be written.
// Field is 0 for failures in the MTI.
type EncodingError struct {
	Field int
	Err   error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("encode field %d: %v", e.Field, e.Err)
}

func (e *EncodingError) Unwrap() error { return e.Err }

// DecodingError is returned by the codec when input cannot be parsed.
// Field is 0 for the MTI and 1 for the bitmap.
type DecodingError struct {
	Field  int
	Offset int
	Err    error
}

func (e *DecodingError) Error() string {
	return fmt.Sprintf("decode field %d at offset %d: %v", e.Field, e.Offset, e.Err)
}

func (e *DecodingError) Unwrap() error { return e.Err }

// DateFormatError is returned by the date helpers.
type DateFormatError struct {
	Pattern string
	Value   string
	Err     error
}

func (e *DateFormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("date pattern %q value %q: %v", e.Pattern, e.Value, e.Err)
	}
	return fmt.Sprintf("date pattern %q value %q", e.Pattern, e.Value)
}

func (e *DateFormatError) Unwrap() error { return ErrDateFormat }

// SchemaError reports a table entry rejected by NewRegistry.
type SchemaError struct {
	Field  int
	Reason string
	Err    error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema for field %d: %s", e.Field, e.Reason)
}

func (e *SchemaError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidSchema
}

// BatchError ties a decode failure to its position in a batch.
type BatchError struct {
	Index int
	Err   error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("batch entry %d: %v", e.Index, e.Err)
}

func (e *BatchError) Unwrap() error { return e.Err }
