// Package envelope implements the message envelope codec: it transforms
// message bodies for attribute-capped queue transports and records how in
// a single metadata attribute.
//
// Outbound, a payload is compressed, then encoded to transport-safe text,
// and described by metadata of the form
//
//	v=1;c=zstd;e=base64;h=md5;s=<digest>;l=<raw length>
//
// carried in the MetaAttribute message attribute. Inbound, that metadata
// alone drives decoding, so producers and consumers interoperate without
// sharing configuration.
//
// Key properties:
//   - Checksums cover the raw payload, before compression and encoding.
//   - A compressed payload always carries a binary-to-text encoding;
//     compression with e=none is normalized to URL-safe base64.
//   - Messages without the metadata attribute pass through untouched.
//   - The advisory raw length field is never validated on decode.
//
// Engine applies the codec to whole messages. Codec and Metadata expose
// the payload and metadata halves separately for callers that need them.
package envelope
