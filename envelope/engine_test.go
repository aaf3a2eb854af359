package envelope

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/envelo/envelo-go/algorithms"
	"github.com/envelo/envelo-go/contracts"
)

func mustSum(t *testing.T, checksum algorithms.Checksum, payload string) string {
	t.Helper()
	sum, err := checksum.Sum([]byte(payload))
	require.NoError(t, err)
	return sum
}

func TestEncodeMessageDefaults(t *testing.T) {
	engine := NewEngine()
	body := "hello world"

	encoded, err := engine.EncodeMessage(contracts.NewMessage(body))
	require.NoError(t, err)

	assert.Equal(t, body, encoded.Body)

	want := fmt.Sprintf("v=1;c=none;e=none;h=md5;s=%s;l=%d", mustSum(t, algorithms.MD5, body), len(body))
	assert.Equal(t, want, encoded.Attributes[MetaAttribute])
}

func TestEncodeMessage(t *testing.T) {
	t.Run("compresses and encodes the body", func(t *testing.T) {
		engine := NewEngine(WithCompression(algorithms.Zstd))
		body := strings.Repeat("a compressible stretch of text. ", 40)

		encoded, err := engine.EncodeMessage(contracts.NewMessage(body))
		require.NoError(t, err)

		assert.NotEqual(t, body, encoded.Body)
		assert.Less(t, len(encoded.Body), len(body))

		meta, err := ParseMetadata(encoded.Attributes[MetaAttribute])
		require.NoError(t, err)
		assert.Equal(t, algorithms.Zstd, meta.Configuration.Compression)
		assert.Equal(t, algorithms.Base64, meta.Configuration.Encoding)
		assert.Equal(t, len(body), meta.RawLength)
	})

	t.Run("labels a small json payload exactly", func(t *testing.T) {
		body := `{"value":42}`
		engine := NewEngine(WithCompression(algorithms.Zstd), WithPreferSmallerPayload(false))

		encoded, err := engine.EncodeMessage(contracts.NewMessage(body))
		require.NoError(t, err)

		want := fmt.Sprintf("v=1;c=zstd;e=base64;h=md5;s=%s;l=12", mustSum(t, algorithms.MD5, body))
		assert.Equal(t, want, encoded.Attributes[MetaAttribute])

		decoded, err := NewEngine().DecodeMessage(encoded)
		require.NoError(t, err)
		assert.Equal(t, body, decoded.Body)
	})

	t.Run("checksums the payload before compression", func(t *testing.T) {
		engine := NewEngine(WithCompression(algorithms.Zstd), WithChecksum(algorithms.SHA256))
		body := strings.Repeat("checksum covers the raw bytes. ", 20)

		encoded, err := engine.EncodeMessage(contracts.NewMessage(body))
		require.NoError(t, err)

		meta, err := ParseMetadata(encoded.Attributes[MetaAttribute])
		require.NoError(t, err)
		assert.Equal(t, mustSum(t, algorithms.SHA256, body), meta.ChecksumValue)
	})

	t.Run("preserves custom attributes without mutating the input", func(t *testing.T) {
		engine := NewEngine()
		msg := contracts.Message{
			Body:       "payload",
			Attributes: map[string]string{"trace-id": "t-1"},
		}

		encoded, err := engine.EncodeMessage(msg)
		require.NoError(t, err)

		assert.Equal(t, "t-1", encoded.Attributes["trace-id"])
		assert.Contains(t, encoded.Attributes, MetaAttribute)
		assert.Equal(t, map[string]string{"trace-id": "t-1"}, msg.Attributes)
	})

	t.Run("handles an empty body", func(t *testing.T) {
		engine := NewEngine(WithCompression(algorithms.Gzip), WithPreferSmallerPayload(false))

		encoded, err := engine.EncodeMessage(contracts.NewMessage(""))
		require.NoError(t, err)

		decoded, err := NewEngine().DecodeMessage(encoded)
		require.NoError(t, err)
		assert.Empty(t, decoded.Body)
	})
}

func TestEncodeMessagePreferSmallerPayload(t *testing.T) {
	t.Run("falls back to the raw body when encoding grows it", func(t *testing.T) {
		engine := NewEngine(WithCompression(algorithms.Zstd))

		encoded, err := engine.EncodeMessage(contracts.NewMessage("hi"))
		require.NoError(t, err)

		assert.Equal(t, "hi", encoded.Body)

		meta, err := ParseMetadata(encoded.Attributes[MetaAttribute])
		require.NoError(t, err)
		assert.Equal(t, algorithms.NoCompression, meta.Configuration.Compression)
		assert.Equal(t, algorithms.NoEncoding, meta.Configuration.Encoding)
		assert.Equal(t, algorithms.MD5, meta.Configuration.Checksum)
		assert.Equal(t, mustSum(t, algorithms.MD5, "hi"), meta.ChecksumValue)
	})

	t.Run("keeps the encoded form when disabled", func(t *testing.T) {
		engine := NewEngine(WithCompression(algorithms.Zstd), WithPreferSmallerPayload(false))

		encoded, err := engine.EncodeMessage(contracts.NewMessage("hi"))
		require.NoError(t, err)

		assert.NotEqual(t, "hi", encoded.Body)

		meta, err := ParseMetadata(encoded.Attributes[MetaAttribute])
		require.NoError(t, err)
		assert.Equal(t, algorithms.Zstd, meta.Configuration.Compression)

		decoded, err := NewEngine().DecodeMessage(encoded)
		require.NoError(t, err)
		assert.Equal(t, "hi", decoded.Body)
	})

	t.Run("never falls back without compression", func(t *testing.T) {
		engine := NewEngine(WithEncoding(algorithms.Base64))

		encoded, err := engine.EncodeMessage(contracts.NewMessage("hi"))
		require.NoError(t, err)

		meta, err := ParseMetadata(encoded.Attributes[MetaAttribute])
		require.NoError(t, err)
		assert.Equal(t, algorithms.Base64, meta.Configuration.Encoding)
		assert.NotEqual(t, "hi", encoded.Body)
	})
}

func TestEncodeMessageAttributeLimit(t *testing.T) {
	newMessage := func(attributeCount int) contracts.Message {
		attributes := make(map[string]string, attributeCount)
		for i := 0; i < attributeCount; i++ {
			attributes[fmt.Sprintf("attr-%d", i)] = "value"
		}
		return contracts.Message{Body: "payload", Attributes: attributes}
	}

	t.Run("allows filling the ceiling exactly", func(t *testing.T) {
		engine := NewEngine()

		encoded, err := engine.EncodeMessage(newMessage(9))
		require.NoError(t, err)
		assert.Len(t, encoded.Attributes, 10)
	})

	t.Run("rejects exceeding the ceiling", func(t *testing.T) {
		engine := NewEngine()

		_, err := engine.EncodeMessage(newMessage(10))

		var limit *AttributeLimitError
		require.ErrorAs(t, err, &limit)
		assert.Equal(t, 11, limit.Actual)
		assert.Equal(t, 10, limit.Limit)
	})

	t.Run("honors a custom limit", func(t *testing.T) {
		engine := NewEngine(WithAttributeLimit(3))

		_, err := engine.EncodeMessage(newMessage(3))

		var limit *AttributeLimitError
		require.ErrorAs(t, err, &limit)
		assert.Equal(t, 4, limit.Actual)
		assert.Equal(t, 3, limit.Limit)

		_, err = engine.EncodeMessage(newMessage(2))
		assert.NoError(t, err)
	})
}

func TestEncodeMessagePreEncoded(t *testing.T) {
	t.Run("returns an already encoded message unchanged", func(t *testing.T) {
		body := strings.Repeat("encode once, forward many times. ", 30)
		first := NewEngine(WithCompression(algorithms.Zstd))

		encoded, err := first.EncodeMessage(contracts.NewMessage(body))
		require.NoError(t, err)

		second := NewEngine(WithCompression(algorithms.Gzip), WithChecksum(algorithms.SHA256))
		forwarded, err := second.EncodeMessage(encoded)
		require.NoError(t, err)

		assert.Equal(t, encoded, forwarded)
	})

	t.Run("rejects a tampered body", func(t *testing.T) {
		engine := NewEngine(WithCompression(algorithms.Zstd))
		body := strings.Repeat("original content. ", 30)

		encoded, err := engine.EncodeMessage(contracts.NewMessage(body))
		require.NoError(t, err)

		tamperedBody, err := NewCodec(algorithms.Zstd, algorithms.Base64).Encode([]byte("someone else's content"))
		require.NoError(t, err)
		encoded.Body = string(tamperedBody)

		_, err = engine.EncodeMessage(encoded)
		assert.ErrorIs(t, err, ErrChecksumMismatch)
	})

	t.Run("rejects an undecodable body", func(t *testing.T) {
		engine := NewEngine(WithCompression(algorithms.Zstd))

		encoded, err := engine.EncodeMessage(contracts.NewMessage(strings.Repeat("content ", 30)))
		require.NoError(t, err)
		encoded.Body = "!!! not base64 !!!"

		_, err = engine.EncodeMessage(encoded)

		var invalid *InvalidPayloadError
		assert.ErrorAs(t, err, &invalid)
	})

	t.Run("still enforces the attribute ceiling", func(t *testing.T) {
		engine := NewEngine()

		encoded, err := engine.EncodeMessage(contracts.NewMessage("payload"))
		require.NoError(t, err)

		for i := 0; i < 10; i++ {
			encoded = encoded.WithAttribute(fmt.Sprintf("attr-%d", i), "value")
		}

		_, err = engine.EncodeMessage(encoded)

		var limit *AttributeLimitError
		require.ErrorAs(t, err, &limit)
		assert.Equal(t, 11, limit.Actual)
	})
}

func TestDecodeMessage(t *testing.T) {
	t.Run("round trips what the engine encoded", func(t *testing.T) {
		body := strings.Repeat("queue transports cap attributes, not ambition. ", 25)

		compressions := []algorithms.Compression{algorithms.NoCompression, algorithms.Zstd, algorithms.Snappy, algorithms.Gzip}
		encodings := []algorithms.Encoding{algorithms.NoEncoding, algorithms.Base64, algorithms.Base64Std}

		for _, compression := range compressions {
			for _, encoding := range encodings {
				t.Run(string(compression)+"-"+string(encoding), func(t *testing.T) {
					engine := NewEngine(
						WithCompression(compression),
						WithEncoding(encoding),
						WithChecksum(algorithms.SHA256),
					)

					encoded, err := engine.EncodeMessage(contracts.NewMessage(body))
					require.NoError(t, err)

					decoded, err := NewEngine().DecodeMessage(encoded)
					require.NoError(t, err)

					assert.Equal(t, body, decoded.Body)
					assert.Contains(t, decoded.Attributes, MetaAttribute)
				})
			}
		}
	})

	t.Run("is driven by metadata, not engine configuration", func(t *testing.T) {
		body := strings.Repeat("the decoder reads the label on the box. ", 20)
		producer := NewEngine(WithCompression(algorithms.Gzip), WithEncoding(algorithms.Base64Std))

		encoded, err := producer.EncodeMessage(contracts.NewMessage(body))
		require.NoError(t, err)

		consumer := NewEngine(WithCompression(algorithms.Zstd))
		decoded, err := consumer.DecodeMessage(encoded)
		require.NoError(t, err)

		assert.Equal(t, body, decoded.Body)
	})

	t.Run("passes through a message without metadata", func(t *testing.T) {
		engine := NewEngine()
		msg := contracts.Message{Body: "plain", Attributes: map[string]string{"other": "x"}}

		decoded, err := engine.DecodeMessage(msg)
		require.NoError(t, err)
		assert.Equal(t, msg, decoded)
	})

	t.Run("passes through when nothing needs doing", func(t *testing.T) {
		engine := NewEngine()
		msg := contracts.Message{
			Body:       "not even valid base64 !!!",
			Attributes: map[string]string{MetaAttribute: "v=1;c=none;e=none;h=none;l=0"},
		}

		decoded, err := engine.DecodeMessage(msg)
		require.NoError(t, err)
		assert.Equal(t, msg, decoded)
	})

	t.Run("handles a unicode body", func(t *testing.T) {
		body := "héllo wörld 你好 " + strings.Repeat("ascii padding ", 20)
		engine := NewEngine(WithCompression(algorithms.Zstd))

		encoded, err := engine.EncodeMessage(contracts.NewMessage(body))
		require.NoError(t, err)

		decoded, err := NewEngine().DecodeMessage(encoded)
		require.NoError(t, err)
		assert.Equal(t, body, decoded.Body)
	})

	t.Run("applies the effective encoding rule", func(t *testing.T) {
		body := strings.Repeat("metadata written by a sloppy producer. ", 20)
		transportForm, err := NewCodec(algorithms.Zstd, algorithms.Base64).Encode([]byte(body))
		require.NoError(t, err)

		msg := contracts.Message{
			Body: string(transportForm),
			Attributes: map[string]string{
				MetaAttribute: fmt.Sprintf("v=1;c=zstd;e=none;h=none;l=%d", len(body)),
			},
		}

		decoded, err := NewEngine().DecodeMessage(msg)
		require.NoError(t, err)
		assert.Equal(t, body, decoded.Body)
	})
}

func TestDecodeMessageChecksum(t *testing.T) {
	t.Run("validates without decoding when only a checksum is set", func(t *testing.T) {
		body := "uncompressed but checksummed"
		meta := fmt.Sprintf("v=1;c=none;e=none;h=md5;s=%s;l=%d", mustSum(t, algorithms.MD5, body), len(body))
		msg := contracts.Message{Body: body, Attributes: map[string]string{MetaAttribute: meta}}

		decoded, err := NewEngine().DecodeMessage(msg)
		require.NoError(t, err)
		assert.Equal(t, body, decoded.Body)
	})

	t.Run("rejects a digest mismatch", func(t *testing.T) {
		meta := fmt.Sprintf("v=1;c=none;e=none;h=md5;s=%s;l=5", mustSum(t, algorithms.MD5, "other"))
		msg := contracts.Message{Body: "mine!", Attributes: map[string]string{MetaAttribute: meta}}

		_, err := NewEngine().DecodeMessage(msg)
		assert.ErrorIs(t, err, ErrChecksumMismatch)
	})

	t.Run("rejects a tampered compressed body", func(t *testing.T) {
		engine := NewEngine(WithCompression(algorithms.Zstd))

		encoded, err := engine.EncodeMessage(contracts.NewMessage(strings.Repeat("tamper evident. ", 30)))
		require.NoError(t, err)
		encoded.Body = "!!! garbage !!!"

		_, err = NewEngine().DecodeMessage(encoded)

		var invalid *InvalidPayloadError
		assert.ErrorAs(t, err, &invalid)
	})
}

func TestDecodeMessageMetadataErrors(t *testing.T) {
	withMeta := func(value string) contracts.Message {
		return contracts.Message{Body: "body", Attributes: map[string]string{MetaAttribute: value}}
	}

	t.Run("unsupported version", func(t *testing.T) {
		_, err := NewEngine().DecodeMessage(withMeta("v=2;c=zstd;e=base64;h=none"))

		var version *UnsupportedVersionError
		require.ErrorAs(t, err, &version)
		assert.Equal(t, "2", version.Raw)
	})

	t.Run("unknown compression", func(t *testing.T) {
		_, err := NewEngine().DecodeMessage(withMeta("v=1;c=lz4;e=base64;h=none"))

		var unsupported *algorithms.UnsupportedAlgorithmError
		require.ErrorAs(t, err, &unsupported)
		assert.Equal(t, "lz4", unsupported.Value)
	})

	t.Run("missing checksum value", func(t *testing.T) {
		_, err := NewEngine().DecodeMessage(withMeta("v=1;c=none;e=none;h=md5"))
		assert.ErrorIs(t, err, ErrMissingChecksumValue)
	})

	t.Run("blank metadata attribute", func(t *testing.T) {
		_, err := NewEngine().DecodeMessage(withMeta("  "))

		var malformed *MalformedMetadataError
		assert.ErrorAs(t, err, &malformed)
	})
}

func TestEnsureMetadataRequested(t *testing.T) {
	engine := NewEngine()

	t.Run("appends the metadata attribute", func(t *testing.T) {
		names := engine.EnsureMetadataRequested([]string{"trace-id"})
		assert.Equal(t, []string{"trace-id", MetaAttribute}, names)
	})

	t.Run("starts from an empty list", func(t *testing.T) {
		assert.Equal(t, []string{MetaAttribute}, engine.EnsureMetadataRequested(nil))
	})

	t.Run("leaves a list with the wildcard alone", func(t *testing.T) {
		names := []string{AllAttributes}
		assert.Equal(t, names, engine.EnsureMetadataRequested(names))
	})

	t.Run("leaves a list already naming the attribute alone", func(t *testing.T) {
		names := []string{"trace-id", MetaAttribute}
		assert.Equal(t, names, engine.EnsureMetadataRequested(names))
	})

	t.Run("never mutates its input", func(t *testing.T) {
		names := make([]string, 1, 4)
		names[0] = "trace-id"

		_ = engine.EnsureMetadataRequested(names)

		assert.Equal(t, []string{"trace-id"}, names)
		assert.Len(t, names, 1)
	})
}
