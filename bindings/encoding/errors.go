// Package encoding implements the compact, fixed-layout wire codecs for the
// L1 proposal and proof event payloads described in the protocol's event
// log ABI, plus the small set of hashing helpers the rest of the client
// needs to treat those payloads as opaque-but-decodable blobs.
package encoding

import "fmt"

// InsufficientDataError is returned whenever a decoder runs out of bytes
// before a field it expected to read.
type InsufficientDataError struct {
	Field     string
	Expected  int
	Available int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf(
		"insufficient data decoding field %q: expected %d bytes, have %d",
		e.Field, e.Expected, e.Available,
	)
}

func newInsufficientData(field string, expected, available int) error {
	return &InsufficientDataError{Field: field, Expected: expected, Available: available}
}

// InvalidDataError is returned when a field decodes but fails a semantic
// constraint (e.g. a length cap, a reserved enum value).
type InvalidDataError struct {
	Field   string
	Details string
}

func (e *InvalidDataError) Error() string {
	return fmt.Sprintf("invalid data in field %q: %s", e.Field, e.Details)
}

func newInvalidData(field, details string) error {
	return &InvalidDataError{Field: field, Details: details}
}
