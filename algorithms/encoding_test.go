package algorithms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEncoding(t *testing.T) {
	t.Run("resolves known identifiers", func(t *testing.T) {
		cases := map[string]Encoding{
			"base64":     Base64,
			"base64-std": Base64Std,
			"none":       NoEncoding,
		}
		for value, want := range cases {
			got, err := ParseEncoding(value)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		}
	})

	t.Run("accepts base64-url as alias for base64", func(t *testing.T) {
		got, err := ParseEncoding("base64-url")
		require.NoError(t, err)
		assert.Equal(t, Base64, got)
	})

	t.Run("is case insensitive", func(t *testing.T) {
		got, err := ParseEncoding("BASE64-STD")
		require.NoError(t, err)
		assert.Equal(t, Base64Std, got)
	})

	t.Run("rejects unknown identifier", func(t *testing.T) {
		_, err := ParseEncoding("hex")

		var unsupported *UnsupportedAlgorithmError
		require.ErrorAs(t, err, &unsupported)
		assert.Equal(t, FamilyEncoding, unsupported.Family)
		assert.Equal(t, "hex", unsupported.Value)
	})
}

func TestEncodingRoundTrip(t *testing.T) {
	payload := []byte{0xfb, 0xef, 0xbe, 0x00, 0x7f, 0xfa, 0xde, 0xd0}

	for _, encoding := range []Encoding{Base64, Base64Std} {
		t.Run(string(encoding), func(t *testing.T) {
			encoded, err := encoding.Encode(payload)
			require.NoError(t, err)

			decoded, err := encoding.Decode(encoded)
			require.NoError(t, err)
			assert.Equal(t, payload, decoded)
		})
	}

	t.Run("none returns payload unchanged", func(t *testing.T) {
		encoded, err := NoEncoding.Encode(payload)
		require.NoError(t, err)
		assert.Equal(t, payload, encoded)
	})
}

func TestBase64UsesURLSafeAlphabet(t *testing.T) {
	payload := []byte{0xfb, 0xff, 0xfe, 0xfd, 0xfc, 0xfb}

	urlSafe, err := Base64.Encode(payload)
	require.NoError(t, err)
	assert.NotContains(t, string(urlSafe), "+")
	assert.NotContains(t, string(urlSafe), "/")

	std, err := Base64Std.Encode(payload)
	require.NoError(t, err)
	assert.NotEqual(t, string(urlSafe), string(std))
}

func TestDecodeInvalidBase64(t *testing.T) {
	_, err := Base64.Decode([]byte("not base64!!"))
	assert.Error(t, err)

	_, err = Base64Std.Decode([]byte("not base64!!"))
	assert.Error(t, err)
}

func TestEffectiveEncoding(t *testing.T) {
	t.Run("compressed payload with no encoding becomes base64", func(t *testing.T) {
		assert.Equal(t, Base64, NoEncoding.Effective(Zstd))
		assert.Equal(t, Base64, NoEncoding.Effective(Gzip))
	})

	t.Run("explicit encoding is preserved", func(t *testing.T) {
		assert.Equal(t, Base64Std, Base64Std.Effective(Zstd))
		assert.Equal(t, Base64, Base64.Effective(Snappy))
	})

	t.Run("uncompressed payload keeps none", func(t *testing.T) {
		assert.Equal(t, NoEncoding, NoEncoding.Effective(NoCompression))
	})
}
