package envelope

import "github.com/envelo/envelo-go/algorithms"

// CurrentVersion is the metadata format version this package produces and
// the only version it accepts.
const CurrentVersion = 1

// Configuration is the set of algorithm choices applied to one message.
// It is a value type: two configurations are equal when all fields match.
type Configuration struct {
	Version     int
	Compression algorithms.Compression
	Encoding    algorithms.Encoding
	Checksum    algorithms.Checksum
}

// NewConfiguration creates a configuration at the current version.
func NewConfiguration(compression algorithms.Compression, encoding algorithms.Encoding, checksum algorithms.Checksum) Configuration {
	return Configuration{
		Version:     CurrentVersion,
		Compression: compression,
		Encoding:    encoding,
		Checksum:    checksum,
	}
}

// Effective returns the configuration with the encoding the payload
// actually needs: compressed bytes cannot travel as raw text, so
// compression without an explicit encoding forces URL-safe base64.
func (c Configuration) Effective() Configuration {
	c.Encoding = c.Encoding.Effective(c.Compression)
	return c
}

// ShouldDecode reports whether an inbound body has to be transformed
// before it can be consumed.
func (c Configuration) ShouldDecode() bool {
	return c.Compression != algorithms.NoCompression || c.Encoding != algorithms.NoEncoding
}

// ShouldValidateChecksum reports whether an inbound payload digest has to
// be verified.
func (c Configuration) ShouldValidateChecksum() bool {
	return c.Checksum != algorithms.NoChecksum
}
