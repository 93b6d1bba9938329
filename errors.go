package qrcard

import (
	"errors"
	"fmt"
)

// Sentinel errors for programmatic error handling.
// Use errors.Is() to check for these error types.
var (
	// ErrNotFound indicates the record source has no record for an identifier.
	ErrNotFound = errors.New("record not found")

	// ErrMissingPayload indicates no serialized text was supplied to decode.
	ErrMissingPayload = errors.New("no QR data provided")

	// ErrMalformedStructured indicates tagged-dialect text failed to parse.
	ErrMalformedStructured = errors.New("malformed structured payload")

	// ErrMalformedFlattened indicates a flattened line failed to parse in strict mode.
	ErrMalformedFlattened = errors.New("malformed flattened payload")

	// ErrInvalidLink indicates a carrier link could not be parsed or percent-decoded.
	ErrInvalidLink = errors.New("invalid carrier link")

	// ErrMarshal indicates the codec failed to marshal output data.
	ErrMarshal = errors.New("marshal failed")

	// ErrUnmarshal indicates the codec failed to unmarshal input data.
	ErrUnmarshal = errors.New("unmarshal failed")

	// ErrInvalidMask indicates a sanitizer mask names an unknown mask type.
	ErrInvalidMask = errors.New("invalid mask")

	// ErrPayloadTooLarge indicates text exceeds the capacity of a QR code.
	ErrPayloadTooLarge = errors.New("payload too large for QR code")

	// ErrNotDecodable indicates no QR code could be read from an image.
	ErrNotDecodable = errors.New("no QR code found in image")
)

// NotFoundError reports a lookup miss for a specific identifier.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("user with ID %s not found", e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// NotFound returns a NotFoundError for id.
func NotFound(id string) error {
	return &NotFoundError{ID: id}
}

// DecodeErrorKind classifies a decode failure.
type DecodeErrorKind string

const (
	MissingPayload      DecodeErrorKind = "missing_payload"
	MalformedStructured DecodeErrorKind = "malformed_structured"
	MalformedFlattened  DecodeErrorKind = "malformed_flattened"
)

// DecodeError represents a failure to turn payload text into a record.
type DecodeError struct {
	Kind  DecodeErrorKind
	Line  int   // 1-based line for flattened failures, 0 otherwise
	Cause error // Underlying parser error, if any
}

func (e *DecodeError) Error() string {
	msg := e.sentinel().Error()
	if e.Line > 0 {
		msg = fmt.Sprintf("%s (line %d)", msg, e.Line)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *DecodeError) Unwrap() error {
	return e.sentinel()
}

func (e *DecodeError) sentinel() error {
	switch e.Kind {
	case MissingPayload:
		return ErrMissingPayload
	case MalformedFlattened:
		return ErrMalformedFlattened
	default:
		return ErrMalformedStructured
	}
}

// CodecError represents a marshal/unmarshal error.
type CodecError struct {
	Err   error // Underlying sentinel error (ErrMarshal, ErrUnmarshal)
	Cause error // Original error from the codec
}

func (e *CodecError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Err.Error(), e.Cause)
	}
	return e.Err.Error()
}

func (e *CodecError) Unwrap() error {
	return e.Err
}

// ConfigError represents a sanitizer or processor configuration error.
type ConfigError struct {
	Err   error  // Underlying sentinel error
	Field string // Field name the option targets
	Value string // Offending option value
}

func (e *ConfigError) Error() string {
	if e.Field != "" && e.Value != "" {
		return fmt.Sprintf("%s %q (field %s)", e.Err.Error(), e.Value, e.Field)
	}
	if e.Value != "" {
		return fmt.Sprintf("%s %q", e.Err.Error(), e.Value)
	}
	if e.Field != "" {
		return fmt.Sprintf("%s (field %s)", e.Err.Error(), e.Field)
	}
	return e.Err.Error()
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

func newDecodeError(kind DecodeErrorKind, line int, cause error) error {
	return &DecodeError{Kind: kind, Line: line, Cause: cause}
}

func newCodecError(sentinel error, cause error) error {
	return &CodecError{Err: sentinel, Cause: cause}
}

func newConfigError(sentinel error, field, value string) error {
	return &ConfigError{Err: sentinel, Field: field, Value: value}
}
