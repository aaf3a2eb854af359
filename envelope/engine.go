package envelope

import (
	"github.com/envelo/envelo-go/algorithms"
	"github.com/envelo/envelo-go/contracts"
)

// DefaultAttributeLimit is the ceiling on message attributes enforced
// when attaching codec metadata. Ten matches the strictest queue
// transports.
const DefaultAttributeLimit = 10

// Engine applies the envelope codec to whole messages: bodies are
// transformed and the describing metadata travels in the MetaAttribute
// message attribute.
//
// An Engine is immutable after construction and safe for concurrent use.
type Engine struct {
	compression          algorithms.Compression
	encoding             algorithms.Encoding
	checksum             algorithms.Checksum
	preferSmallerPayload bool
	attributeLimit       int
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithCompression sets the outbound compression algorithm.
func WithCompression(compression algorithms.Compression) EngineOption {
	return func(e *Engine) { e.compression = compression }
}

// WithEncoding sets the outbound encoding.
func WithEncoding(encoding algorithms.Encoding) EngineOption {
	return func(e *Engine) { e.encoding = encoding }
}

// WithChecksum sets the outbound checksum algorithm.
func WithChecksum(checksum algorithms.Checksum) EngineOption {
	return func(e *Engine) { e.checksum = checksum }
}

// WithPreferSmallerPayload controls the fallback to the raw body when the
// encoded form comes out larger. Enabled by default.
func WithPreferSmallerPayload(enabled bool) EngineOption {
	return func(e *Engine) { e.preferSmallerPayload = enabled }
}

// WithAttributeLimit sets the transport's attribute ceiling.
func WithAttributeLimit(limit int) EngineOption {
	return func(e *Engine) { e.attributeLimit = limit }
}

// NewEngine creates an engine. Without options it compresses nothing,
// encodes nothing, and checksums payloads with MD5.
func NewEngine(options ...EngineOption) *Engine {
	e := &Engine{
		compression:          algorithms.NoCompression,
		encoding:             algorithms.NoEncoding,
		checksum:             algorithms.MD5,
		preferSmallerPayload: true,
		attributeLimit:       DefaultAttributeLimit,
	}
	for _, opt := range options {
		opt(e)
	}
	return e
}

// EncodeMessage prepares one outbound message: the body is compressed and
// encoded per the engine configuration and the describing metadata is
// attached as a message attribute. The input message is not modified.
//
// A message already carrying codec metadata is treated as pre-encoded: it
// is verified (body decodes, digest matches, attribute count fits) and
// returned unchanged rather than encoded a second time.
func (e *Engine) EncodeMessage(msg contracts.Message) (contracts.Message, error) {
	if HasMetadata(msg.Attributes) {
		if err := e.verifyPreEncoded(msg); err != nil {
			return contracts.Message{}, err
		}
		return msg, nil
	}

	payload := []byte(msg.Body)
	cfg := NewConfiguration(e.compression, e.encoding, e.checksum)

	encoded, err := NewCodec(e.compression, e.encoding).Encode(payload)
	if err != nil {
		return contracts.Message{}, err
	}

	// An incompressible body can grow when compressed and encoded. Fall
	// back to the raw form; the checksum covers the pre-compression
	// payload either way.
	if e.preferSmallerPayload && e.compression != algorithms.NoCompression && len(encoded) > len(payload) {
		encoded = payload
		cfg = NewConfiguration(algorithms.NoCompression, algorithms.NoEncoding, e.checksum)
	}

	meta, err := NewOutboundMetadata(cfg, payload)
	if err != nil {
		return contracts.Message{}, err
	}

	attributes := msg.CloneAttributes()
	attributes[MetaAttribute] = meta.Format()
	if len(attributes) > e.attributeLimit {
		return contracts.Message{}, &AttributeLimitError{Actual: len(attributes), Limit: e.attributeLimit}
	}

	return contracts.Message{Body: string(encoded), Attributes: attributes}, nil
}

// DecodeMessage restores one inbound message. Messages without codec
// metadata, and messages whose metadata calls for no decoding and no
// checksum validation, pass through unchanged. The metadata attribute is
// left in place either way.
func (e *Engine) DecodeMessage(msg contracts.Message) (contracts.Message, error) {
	raw, ok := msg.Attribute(MetaAttribute)
	if !ok {
		return msg, nil
	}

	meta, err := ParseMetadata(raw)
	if err != nil {
		return contracts.Message{}, err
	}

	shouldDecode := meta.Configuration.ShouldDecode()
	if !shouldDecode && !meta.Configuration.ShouldValidateChecksum() {
		return msg, nil
	}

	payload, err := decodePayload(meta, msg.Body)
	if err != nil {
		return contracts.Message{}, err
	}

	if meta.Configuration.ShouldValidateChecksum() {
		if err := verifyChecksum(meta, payload); err != nil {
			return contracts.Message{}, err
		}
	}

	if !shouldDecode {
		return msg, nil
	}
	return contracts.Message{Body: string(payload), Attributes: msg.Attributes}, nil
}

// EnsureMetadataRequested returns the attribute names a receive call must
// ask for so codec metadata is delivered. The input is returned unchanged
// when it already includes the metadata attribute or the AllAttributes
// wildcard; otherwise a new slice is returned and the input is never
// mutated.
func (e *Engine) EnsureMetadataRequested(names []string) []string {
	for _, name := range names {
		if name == AllAttributes || name == MetaAttribute {
			return names
		}
	}
	out := make([]string, 0, len(names)+1)
	out = append(out, names...)
	return append(out, MetaAttribute)
}

// verifyPreEncoded checks a message that already carries codec metadata:
// the body must decode per that metadata, the digest must match, and the
// attribute count must fit the transport.
func (e *Engine) verifyPreEncoded(msg contracts.Message) error {
	meta, err := ParseMetadata(msg.Attributes[MetaAttribute])
	if err != nil {
		return err
	}

	payload, err := decodePayload(meta, msg.Body)
	if err != nil {
		return err
	}

	if meta.Configuration.ShouldValidateChecksum() {
		if err := verifyChecksum(meta, payload); err != nil {
			return err
		}
	}

	if len(msg.Attributes) > e.attributeLimit {
		return &AttributeLimitError{Actual: len(msg.Attributes), Limit: e.attributeLimit}
	}
	return nil
}

// decodePayload returns the raw payload bytes for a body described by
// meta, decoding only when the metadata calls for it.
func decodePayload(meta Metadata, body string) ([]byte, error) {
	if !meta.Configuration.ShouldDecode() {
		return []byte(body), nil
	}
	return NewCodec(meta.Configuration.Compression, meta.Configuration.Encoding).Decode([]byte(body))
}

func verifyChecksum(meta Metadata, payload []byte) error {
	sum, err := meta.Configuration.Checksum.Sum(payload)
	if err != nil {
		return err
	}
	if sum != meta.ChecksumValue {
		return ErrChecksumMismatch
	}
	return nil
}
