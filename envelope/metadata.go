package envelope

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/envelo/envelo-go/algorithms"
)

// MetaAttribute is the single message attribute the codec reads and
// writes. Everything a decoder needs travels in its value.
const MetaAttribute = "x-codec-meta"

// AllAttributes is the transport wildcard that requests every message
// attribute on receive.
const AllAttributes = "All"

// Metadata field keys as they appear on the wire.
const (
	keyVersion       = "v"
	keyCompression   = "c"
	keyEncoding      = "e"
	keyChecksum      = "h"
	keyChecksumValue = "s"
	keyRawLength     = "l"
)

// Metadata describes how one message body was transformed for transport.
type Metadata struct {
	Configuration Configuration

	// ChecksumValue is the URL-safe base64 digest of the payload before
	// compression. Empty exactly when the checksum algorithm is none.
	ChecksumValue string

	// RawLength is the pre-compression payload size in bytes. It is
	// advisory: decoders never validate it.
	RawLength int
}

// NewOutboundMetadata builds the metadata describing a payload about to
// be transformed with cfg. The checksum is computed over the raw payload,
// before compression or encoding.
func NewOutboundMetadata(cfg Configuration, payload []byte) (Metadata, error) {
	cfg = cfg.Effective()
	meta := Metadata{Configuration: cfg, RawLength: len(payload)}
	if cfg.Checksum != algorithms.NoChecksum {
		sum, err := cfg.Checksum.Sum(payload)
		if err != nil {
			return Metadata{}, err
		}
		meta.ChecksumValue = sum
	}
	return meta, nil
}

// HasMetadata reports whether attributes carry codec metadata.
func HasMetadata(attributes map[string]string) bool {
	_, ok := attributes[MetaAttribute]
	return ok
}

// Format renders the metadata in its canonical wire form, for example
// "v=1;c=zstd;e=base64;h=md5;s=<digest>;l=128". The checksum value field
// is present exactly when a checksum algorithm is named.
func (m Metadata) Format() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s=%d;%s=%s;%s=%s;%s=%s",
		keyVersion, m.Configuration.Version,
		keyCompression, m.Configuration.Compression,
		keyEncoding, m.Configuration.Encoding,
		keyChecksum, m.Configuration.Checksum)
	if m.Configuration.Checksum != algorithms.NoChecksum {
		fmt.Fprintf(&b, ";%s=%s", keyChecksumValue, m.ChecksumValue)
	}
	fmt.Fprintf(&b, ";%s=%d", keyRawLength, m.RawLength)
	return b.String()
}

// ParseMetadata parses a metadata attribute value. The grammar is lenient
// where leniency is safe (whitespace, segment order, empty segments,
// unknown keys, the advisory raw length) and strict about everything that
// affects decoding: duplicate keys, segments without '=', empty values
// for algorithm fields, and unsupported versions or identifiers are all
// errors.
func ParseMetadata(raw string) (Metadata, error) {
	fields, err := tokenize(raw)
	if err != nil {
		return Metadata{}, err
	}

	version, err := parseVersion(fields)
	if err != nil {
		return Metadata{}, err
	}

	compression := algorithms.NoCompression
	if value, ok := fields[keyCompression]; ok {
		if compression, err = algorithms.ParseCompression(value); err != nil {
			return Metadata{}, err
		}
	}

	encoding := algorithms.NoEncoding
	if value, ok := fields[keyEncoding]; ok {
		if encoding, err = algorithms.ParseEncoding(value); err != nil {
			return Metadata{}, err
		}
	}

	checksum := algorithms.NoChecksum
	if value, ok := fields[keyChecksum]; ok {
		if checksum, err = algorithms.ParseChecksum(value); err != nil {
			return Metadata{}, err
		}
	}

	checksumValue, err := parseChecksumValue(fields, checksum)
	if err != nil {
		return Metadata{}, err
	}

	return Metadata{
		Configuration: Configuration{
			Version:     version,
			Compression: compression,
			Encoding:    encoding,
			Checksum:    checksum,
		},
		ChecksumValue: checksumValue,
		RawLength:     parseRawLength(fields),
	}, nil
}

// tokenize splits raw into key/value fields. Keys are lowercased, keys
// and values trimmed, empty segments skipped. Empty values survive only
// for the checksum value and raw length keys, whose emptiness has a
// defined meaning.
func tokenize(raw string) (map[string]string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, &MalformedMetadataError{Raw: raw}
	}

	fields := make(map[string]string)
	for _, segment := range strings.Split(trimmed, ";") {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}

		key, value, found := strings.Cut(segment, "=")
		if !found {
			return nil, &MalformedMetadataError{Raw: raw}
		}

		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)
		if key == "" {
			return nil, &MalformedMetadataError{Raw: raw}
		}
		if value == "" && key != keyChecksumValue && key != keyRawLength {
			return nil, &MalformedMetadataError{Raw: raw}
		}

		if _, exists := fields[key]; exists {
			return nil, &DuplicateKeyError{Key: key}
		}
		fields[key] = value
	}
	return fields, nil
}

func parseVersion(fields map[string]string) (int, error) {
	value, ok := fields[keyVersion]
	if !ok {
		return CurrentVersion, nil
	}
	version, err := strconv.Atoi(value)
	if err != nil || version != CurrentVersion {
		return 0, &UnsupportedVersionError{Raw: value}
	}
	return version, nil
}

func parseChecksumValue(fields map[string]string, checksum algorithms.Checksum) (string, error) {
	value, present := fields[keyChecksumValue]
	if checksum == algorithms.NoChecksum {
		if present {
			return "", ErrMissingChecksumAlgorithm
		}
		return "", nil
	}
	if value == "" {
		return "", ErrMissingChecksumValue
	}
	return value, nil
}

// parseRawLength is deliberately forgiving: the raw length is advisory,
// so a missing, blank, malformed, or negative value degrades to zero
// instead of failing the parse.
func parseRawLength(fields map[string]string) int {
	value := fields[keyRawLength]
	if value == "" {
		return 0
	}
	length, err := strconv.Atoi(value)
	if err != nil || length < 0 {
		return 0
	}
	return length
}
