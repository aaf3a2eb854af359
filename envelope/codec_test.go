package envelope

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/envelo/envelo-go/algorithms"
)

func TestNewCodec(t *testing.T) {
	t.Run("forces base64 when compressing without encoding", func(t *testing.T) {
		codec := NewCodec(algorithms.Zstd, algorithms.NoEncoding)

		assert.Equal(t, algorithms.Zstd, codec.Compression())
		assert.Equal(t, algorithms.Base64, codec.Encoding())
	})

	t.Run("keeps explicit choices otherwise", func(t *testing.T) {
		codec := NewCodec(algorithms.NoCompression, algorithms.Base64Std)

		assert.Equal(t, algorithms.NoCompression, codec.Compression())
		assert.Equal(t, algorithms.Base64Std, codec.Encoding())
	})
}

func TestCodecRoundTrip(t *testing.T) {
	payload := []byte(strings.Repeat("lorem ipsum dolor sit amet. ", 30))

	cases := []struct {
		name        string
		compression algorithms.Compression
		encoding    algorithms.Encoding
	}{
		{"zstd with base64", algorithms.Zstd, algorithms.Base64},
		{"gzip with standard base64", algorithms.Gzip, algorithms.Base64Std},
		{"snappy with implied encoding", algorithms.Snappy, algorithms.NoEncoding},
		{"encoding only", algorithms.NoCompression, algorithms.Base64},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			codec := NewCodec(tc.compression, tc.encoding)

			encoded, err := codec.Encode(payload)
			require.NoError(t, err)
			assert.NotEqual(t, payload, encoded)

			decoded, err := codec.Decode(encoded)
			require.NoError(t, err)
			assert.Equal(t, payload, decoded)
		})
	}

	t.Run("pass-through codec leaves payload untouched", func(t *testing.T) {
		codec := NewCodec(algorithms.NoCompression, algorithms.NoEncoding)

		encoded, err := codec.Encode(payload)
		require.NoError(t, err)
		assert.Equal(t, payload, encoded)
	})
}

func TestCodecEncodeProducesTransportSafeText(t *testing.T) {
	codec := NewCodec(algorithms.Zstd, algorithms.NoEncoding)

	encoded, err := codec.Encode([]byte(strings.Repeat("binary goes in, text comes out. ", 20)))
	require.NoError(t, err)

	decoded, err := base64.URLEncoding.DecodeString(string(encoded))
	require.NoError(t, err)
	assert.NotEmpty(t, decoded)
}

func TestCodecDecodeErrors(t *testing.T) {
	t.Run("invalid base64 is an invalid payload", func(t *testing.T) {
		codec := NewCodec(algorithms.Zstd, algorithms.Base64)

		_, err := codec.Decode([]byte("!!! not base64 !!!"))

		var invalid *InvalidPayloadError
		require.ErrorAs(t, err, &invalid)
		assert.NotNil(t, invalid.Cause)
	})

	t.Run("valid base64 of garbage is an invalid payload", func(t *testing.T) {
		codec := NewCodec(algorithms.Zstd, algorithms.Base64)
		garbage := base64.URLEncoding.EncodeToString([]byte("this is not a zstd frame"))

		_, err := codec.Decode([]byte(garbage))

		var invalid *InvalidPayloadError
		assert.ErrorAs(t, err, &invalid)
	})
}
