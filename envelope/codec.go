package envelope

import "github.com/envelo/envelo-go/algorithms"

// Codec transforms payloads between their raw and transport forms for one
// compression/encoding pair.
type Codec struct {
	compression algorithms.Compression
	encoding    algorithms.Encoding
}

// NewCodec creates a codec for the given compression and encoding. The
// encoding is adjusted to the effective one, so a compressing codec never
// emits raw binary.
func NewCodec(compression algorithms.Compression, encoding algorithms.Encoding) Codec {
	return Codec{
		compression: compression,
		encoding:    encoding.Effective(compression),
	}
}

// Compression returns the codec's compression algorithm.
func (c Codec) Compression() algorithms.Compression { return c.compression }

// Encoding returns the codec's effective encoding.
func (c Codec) Encoding() algorithms.Encoding { return c.encoding }

// Encode compresses and then encodes payload into its transport form.
func (c Codec) Encode(payload []byte) ([]byte, error) {
	compressed, err := c.compression.Compress(payload)
	if err != nil {
		return nil, err
	}
	return c.encoding.Encode(compressed)
}

// Decode reverses Encode: it decodes and then decompresses data.
// Failures are reported as InvalidPayloadError.
func (c Codec) Decode(data []byte) ([]byte, error) {
	decoded, err := c.encoding.Decode(data)
	if err != nil {
		return nil, &InvalidPayloadError{Cause: err}
	}
	payload, err := c.compression.Decompress(decoded)
	if err != nil {
		return nil, &InvalidPayloadError{Cause: err}
	}
	return payload, nil
}
