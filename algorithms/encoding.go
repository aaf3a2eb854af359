package algorithms

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// Encoding identifies a binary-to-text payload encoding.
type Encoding string

const (
	// Base64 is URL-safe base64 (RFC 4648 section 5) with padding. It is
	// the canonical form because queue transports restrict message bodies
	// to a conservative character set.
	Base64 Encoding = "base64"
	// Base64Std is standard base64 (RFC 4648 section 4) with padding,
	// kept for producers that cannot emit the URL-safe alphabet.
	Base64Std Encoding = "base64-std"
	// NoEncoding leaves the payload as raw text.
	NoEncoding Encoding = "none"
)

// base64URLAlias is an accepted spelling for the URL-safe form. It never
// appears in produced metadata; Base64 is the canonical identifier.
const base64URLAlias = "base64-url"

// ParseEncoding resolves an encoding identifier case-insensitively.
// Blank or unknown identifiers return UnsupportedAlgorithmError.
func ParseEncoding(value string) (Encoding, error) {
	switch Encoding(strings.ToLower(value)) {
	case Base64, Encoding(base64URLAlias):
		return Base64, nil
	case Base64Std:
		return Base64Std, nil
	case NoEncoding:
		return NoEncoding, nil
	default:
		return "", &UnsupportedAlgorithmError{Family: FamilyEncoding, Value: value}
	}
}

// String returns the canonical wire identifier.
func (e Encoding) String() string { return string(e) }

// Effective returns the encoding that must actually be applied when the
// payload is compressed with c. Compressed bytes are binary, so a
// compressed payload with no explicit encoding is carried as URL-safe
// base64.
func (e Encoding) Effective(c Compression) Encoding {
	if c != NoCompression && e == NoEncoding {
		return Base64
	}
	return e
}

// Encode converts payload to its transport-safe textual form.
func (e Encoding) Encode(payload []byte) ([]byte, error) {
	switch e {
	case NoEncoding:
		return payload, nil
	case Base64:
		return encodeBase64(base64.URLEncoding, payload), nil
	case Base64Std:
		return encodeBase64(base64.StdEncoding, payload), nil
	default:
		return nil, &UnsupportedAlgorithmError{Family: FamilyEncoding, Value: string(e)}
	}
}

// Decode reverses Encode. Input that is not valid in the chosen alphabet
// returns an error.
func (e Encoding) Decode(payload []byte) ([]byte, error) {
	switch e {
	case NoEncoding:
		return payload, nil
	case Base64:
		return decodeBase64(base64.URLEncoding, payload)
	case Base64Std:
		return decodeBase64(base64.StdEncoding, payload)
	default:
		return nil, &UnsupportedAlgorithmError{Family: FamilyEncoding, Value: string(e)}
	}
}

func encodeBase64(enc *base64.Encoding, payload []byte) []byte {
	out := make([]byte, enc.EncodedLen(len(payload)))
	enc.Encode(out, payload)
	return out
}

func decodeBase64(enc *base64.Encoding, payload []byte) ([]byte, error) {
	out := make([]byte, enc.DecodedLen(len(payload)))
	n, err := enc.Decode(out, payload)
	if err != nil {
		return nil, fmt.Errorf("base64 decode: %w", err)
	}
	return out[:n], nil
}
