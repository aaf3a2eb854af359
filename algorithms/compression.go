package algorithms

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/zstd"
)

// Compression identifies a payload compression algorithm.
type Compression string

const (
	// Zstd is Zstandard at the default speed/ratio tradeoff.
	Zstd Compression = "zstd"
	// Snappy is Snappy block compression, wire-compatible with the
	// Snappy block format used by other platforms.
	Snappy Compression = "snappy"
	// Gzip is gzip at the default level.
	Gzip Compression = "gzip"
	// NoCompression leaves payloads uncompressed.
	NoCompression Compression = "none"
)

// zstdEncoder and zstdDecoder are reused across calls to avoid repeated
// initialization overhead. Both are safe for concurrent use.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("algorithms: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("algorithms: zstd decoder initialization failed: " + err.Error())
	}
}

// ParseCompression resolves a compression identifier case-insensitively.
// Blank or unknown identifiers return UnsupportedAlgorithmError.
func ParseCompression(value string) (Compression, error) {
	switch Compression(strings.ToLower(value)) {
	case Zstd:
		return Zstd, nil
	case Snappy:
		return Snappy, nil
	case Gzip:
		return Gzip, nil
	case NoCompression:
		return NoCompression, nil
	default:
		return "", &UnsupportedAlgorithmError{Family: FamilyCompression, Value: value}
	}
}

// String returns the canonical wire identifier.
func (c Compression) String() string { return string(c) }

// Compress compresses payload. NoCompression returns the payload
// unchanged.
func (c Compression) Compress(payload []byte) ([]byte, error) {
	switch c {
	case NoCompression:
		return payload, nil
	case Zstd:
		return zstdEncoder.EncodeAll(payload, nil), nil
	case Snappy:
		return s2.EncodeSnappy(nil, payload), nil
	case Gzip:
		return gzipCompress(payload)
	default:
		return nil, &UnsupportedAlgorithmError{Family: FamilyCompression, Value: string(c)}
	}
}

// Decompress reverses Compress. Corrupt input returns an error describing
// the failing stage.
func (c Compression) Decompress(payload []byte) ([]byte, error) {
	switch c {
	case NoCompression:
		return payload, nil
	case Zstd:
		result, err := zstdDecoder.DecodeAll(payload, nil)
		if err != nil {
			return nil, fmt.Errorf("zstd decompress: %w", err)
		}
		return result, nil
	case Snappy:
		result, err := s2.Decode(nil, payload)
		if err != nil {
			return nil, fmt.Errorf("snappy decompress: %w", err)
		}
		return result, nil
	case Gzip:
		return gzipDecompress(payload)
	default:
		return nil, &UnsupportedAlgorithmError{Family: FamilyCompression, Value: string(c)}
	}
}

func gzipCompress(payload []byte) ([]byte, error) {
	var buf bytes.Buffer
	writer := gzip.NewWriter(&buf)
	if _, err := writer.Write(payload); err != nil {
		writer.Close()
		return nil, fmt.Errorf("gzip compress: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("gzip compress: %w", err)
	}
	return buf.Bytes(), nil
}

func gzipDecompress(payload []byte) ([]byte, error) {
	reader, err := gzip.NewReader(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("gzip decompress: %w", err)
	}
	defer reader.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, reader); err != nil {
		return nil, fmt.Errorf("gzip decompress: %w", err)
	}
	return buf.Bytes(), nil
}
