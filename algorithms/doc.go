// Package algorithms defines the closed families of payload transforms the
// envelope codec composes: compression, binary-to-text encoding, and
// checksums.
//
// Each family is a small fixed set of identifiers resolved
// case-insensitively from their wire form:
//   - Compression: zstd, snappy, gzip, none
//   - Encoding: base64 (URL-safe), base64-std, none
//   - Checksum: md5, sha256, none
//
// Identifiers outside these sets fail resolution with
// UnsupportedAlgorithmError. There is no extension point for registering
// additional algorithms: decoders on other platforms must be able to
// rely on the full set being known in advance.
package algorithms
