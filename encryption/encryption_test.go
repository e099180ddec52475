package encryption

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey(b byte) Key {
	var key Key
	for i := range key {
		key[i] = b
	}
	return key
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	key := testKey(0x42)

	tests := []struct {
		name      string
		plaintext string
	}{
		{"simple name", "Jan Janssens"},
		{"email", "jan.janssens@example.be"},
		{"unicode", "Aïcha Benaïssa – Liège"},
		{"multiline notes", "Week 1: reduce sodium.\nWeek 2: reintroduce dairy."},
		{"json payload", `["allergies","intolerances"]`},
		{"single character", "x"},
		{"long value", strings.Repeat("dieetadvies ", 500)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blob, err := Encrypt(tt.plaintext, key)
			require.NoError(t, err)
			require.NotEmpty(t, blob)
			assert.NotEqual(t, tt.plaintext, blob)

			decrypted, err := Decrypt(blob, key)
			require.NoError(t, err)
			assert.Equal(t, tt.plaintext, decrypted)
		})
	}
}

func TestEncryptEmptyStringSentinel(t *testing.T) {
	key := testKey(0x42)

	blob, err := Encrypt("", key)
	require.NoError(t, err)
	assert.Equal(t, "", blob)

	plaintext, err := Decrypt("", key)
	require.NoError(t, err)
	assert.Equal(t, "", plaintext)
}

func TestEncryptProducesUniqueBlobs(t *testing.T) {
	key := testKey(0x42)

	first, err := Encrypt("Jan Janssens", key)
	require.NoError(t, err)
	second, err := Encrypt("Jan Janssens", key)
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "fresh nonce per encryption")

	for _, blob := range []string{first, second} {
		plaintext, err := Decrypt(blob, key)
		require.NoError(t, err)
		assert.Equal(t, "Jan Janssens", plaintext)
	}
}

func TestEncryptBlobFormat(t *testing.T) {
	key := testKey(0x42)

	blob, err := Encrypt("hello", key)
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(blob)
	require.NoError(t, err)
	// nonce || ciphertext+tag
	assert.Greater(t, len(raw), NonceSize)
}

func TestDecryptRejectsTampering(t *testing.T) {
	key := testKey(0x42)

	blob, err := Encrypt("sensitive value", key)
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(blob)
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func([]byte) []byte
	}{
		{"flipped ciphertext byte", func(b []byte) []byte {
			out := append([]byte(nil), b...)
			out[len(out)-1] ^= 0xFF
			return out
		}},
		{"flipped nonce byte", func(b []byte) []byte {
			out := append([]byte(nil), b...)
			out[0] ^= 0xFF
			return out
		}},
		{"truncated tag", func(b []byte) []byte {
			return b[:len(b)-4]
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tampered := base64.StdEncoding.EncodeToString(tt.mutate(raw))
			_, err := Decrypt(tampered, key)
			require.Error(t, err)
			assert.True(t, IsDecryptionError(err))
		})
	}
}

func TestDecryptWrongKey(t *testing.T) {
	blob, err := Encrypt("sensitive value", testKey(0x42))
	require.NoError(t, err)

	_, err = Decrypt(blob, testKey(0x43))
	require.Error(t, err)
	assert.True(t, IsDecryptionError(err))
}

func TestDecryptMalformedBlob(t *testing.T) {
	key := testKey(0x42)

	tests := []struct {
		name string
		blob string
	}{
		{"not base64", "not-valid-base64!!!"},
		{"decodes too short", base64.StdEncoding.EncodeToString([]byte("short"))},
		{"nonce only", base64.StdEncoding.EncodeToString(make([]byte, NonceSize))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decrypt(tt.blob, key)
			require.Error(t, err)
			assert.True(t, IsDecryptionError(err))
		})
	}
}

func TestKeyZero(t *testing.T) {
	key := testKey(0x42)
	key.Zero()
	assert.Equal(t, Key{}, key)
}
