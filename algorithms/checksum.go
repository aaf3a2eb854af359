package algorithms

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"
)

// Checksum identifies a payload digest algorithm.
type Checksum string

const (
	// MD5 is a 128-bit digest. It detects transport corruption; it is
	// not meant to resist deliberate tampering.
	MD5 Checksum = "md5"
	// SHA256 is a 256-bit digest.
	SHA256 Checksum = "sha256"
	// NoChecksum disables payload digests.
	NoChecksum Checksum = "none"
)

// ParseChecksum resolves a checksum identifier case-insensitively.
// Blank or unknown identifiers return UnsupportedAlgorithmError.
func ParseChecksum(value string) (Checksum, error) {
	switch Checksum(strings.ToLower(value)) {
	case MD5:
		return MD5, nil
	case SHA256:
		return SHA256, nil
	case NoChecksum:
		return NoChecksum, nil
	default:
		return "", &UnsupportedAlgorithmError{Family: FamilyChecksum, Value: value}
	}
}

// String returns the canonical wire identifier.
func (c Checksum) String() string { return string(c) }

// Sum computes the digest of payload and returns it as URL-safe base64.
// Calling Sum on NoChecksum is a programming error and returns an error.
func (c Checksum) Sum(payload []byte) (string, error) {
	switch c {
	case MD5:
		digest := md5.Sum(payload)
		return base64.URLEncoding.EncodeToString(digest[:]), nil
	case SHA256:
		digest := sha256.Sum256(payload)
		return base64.URLEncoding.EncodeToString(digest[:]), nil
	case NoChecksum:
		return "", fmt.Errorf("no checksum algorithm configured")
	default:
		return "", &UnsupportedAlgorithmError{Family: FamilyChecksum, Value: string(c)}
	}
}
