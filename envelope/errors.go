package envelope

import (
	"errors"
	"fmt"
)

var (
	// ErrChecksumMismatch is returned when a payload digest does not match
	// the value carried in the metadata.
	ErrChecksumMismatch = errors.New("payload checksum mismatch")

	// ErrMissingChecksumValue is returned when metadata names a checksum
	// algorithm but carries no digest value.
	ErrMissingChecksumValue = errors.New("metadata names a checksum algorithm but carries no checksum value")

	// ErrMissingChecksumAlgorithm is returned when metadata carries a
	// digest value but names no checksum algorithm.
	ErrMissingChecksumAlgorithm = errors.New("metadata carries a checksum value but names no checksum algorithm")
)

// MalformedMetadataError is returned when a metadata string cannot be
// tokenized: blank input, a segment without '=', an empty key, or an
// empty value where one is required.
type MalformedMetadataError struct {
	Raw string
}

func (e *MalformedMetadataError) Error() string {
	return fmt.Sprintf("malformed codec metadata: %q", e.Raw)
}

// DuplicateKeyError is returned when a normalized metadata key appears
// more than once in one metadata string.
type DuplicateKeyError struct {
	Key string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate codec metadata key: %q", e.Key)
}

// UnsupportedVersionError is returned when the metadata version field is
// not a number or names a version this implementation does not speak.
type UnsupportedVersionError struct {
	Raw string
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("unsupported codec version: %q", e.Raw)
}

// InvalidPayloadError is returned when a message body cannot be decoded
// or decompressed according to its metadata.
type InvalidPayloadError struct {
	Cause error
}

func (e *InvalidPayloadError) Error() string {
	return "invalid payload: " + e.Cause.Error()
}

func (e *InvalidPayloadError) Unwrap() error {
	return e.Cause
}

// AttributeLimitError is returned when attaching codec metadata would
// push a message over the transport's attribute ceiling.
type AttributeLimitError struct {
	Actual int
	Limit  int
}

func (e *AttributeLimitError) Error() string {
	return fmt.Sprintf("message carries %d attributes but the transport allows at most %d; reduce custom attributes", e.Actual, e.Limit)
}
