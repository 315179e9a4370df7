package secretbox

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HerbCaudill/journal-calendar/internal/core/domain"
)

func testKey(t *testing.T) []byte {
	t.Helper()
	return DeriveKey([]byte("device-secret-for-tests-0123456789ab"), []byte("0123456789abcdef"))
}

func TestEncryptDecrypt_Roundtrip(t *testing.T) {
	key := testKey(t)

	cases := []struct {
		name      string
		plaintext string
	}{
		{"empty", ""},
		{"short", "hello"},
		{"json tokens", `{"access_token":"ya29.a0","refresh_token":"1//0g"}`},
		{"unicode", "café ☕ 日本語 🎉"},
		{"large", strings.Repeat("abcdefghij", 1100)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			blob, err := Encrypt(tc.plaintext, key)
			require.NoError(t, err)
			require.Equal(t, BlobVersion, blob.Version)

			got, err := Decrypt(blob, key)
			require.NoError(t, err)
			assert.Equal(t, tc.plaintext, got)
		})
	}
}

func TestEncrypt_FreshIVPerCall(t *testing.T) {
	key := testKey(t)

	a, err := Encrypt("same plaintext", key)
	require.NoError(t, err)
	b, err := Encrypt("same plaintext", key)
	require.NoError(t, err)

	assert.NotEqual(t, a.IV, b.IV)
	assert.NotEqual(t, a.Ciphertext, b.Ciphertext)
}

func TestDecrypt_WrongKey(t *testing.T) {
	key := testKey(t)
	other := DeriveKey([]byte("a different device secret entirely"), []byte("0123456789abcdef"))

	blob, err := Encrypt("secret", key)
	require.NoError(t, err)

	_, err = Decrypt(blob, other)
	assert.ErrorIs(t, err, domain.ErrDecryptFailed)
}

func TestDecrypt_TamperedCiphertext(t *testing.T) {
	key := testKey(t)
	blob, err := Encrypt("payload under test", key)
	require.NoError(t, err)

	ct, err := base64.StdEncoding.DecodeString(blob.Ciphertext)
	require.NoError(t, err)

	// Flipping any single byte must fail authentication.
	for i := range ct {
		mutated := make([]byte, len(ct))
		copy(mutated, ct)
		mutated[i] ^= 0x01

		tampered := &EncryptedBlob{
			IV:         blob.IV,
			Ciphertext: base64.StdEncoding.EncodeToString(mutated),
			Version:    blob.Version,
		}
		_, err := Decrypt(tampered, key)
		require.ErrorIs(t, err, domain.ErrDecryptFailed, "byte %d", i)
	}
}

func TestDecrypt_TamperedIV(t *testing.T) {
	key := testKey(t)
	blob, err := Encrypt("payload", key)
	require.NoError(t, err)

	iv, err := base64.StdEncoding.DecodeString(blob.IV)
	require.NoError(t, err)
	iv[0] ^= 0x01
	blob.IV = base64.StdEncoding.EncodeToString(iv)

	_, err = Decrypt(blob, key)
	assert.ErrorIs(t, err, domain.ErrDecryptFailed)
}

func TestDecrypt_MalformedBlob(t *testing.T) {
	key := testKey(t)

	cases := []struct {
		name string
		blob *EncryptedBlob
	}{
		{"nil", nil},
		{"wrong version", &EncryptedBlob{IV: "aaaa", Ciphertext: "bbbb", Version: 99}},
		{"bad iv base64", &EncryptedBlob{IV: "not base64!!", Ciphertext: "bbbb", Version: BlobVersion}},
		{"short iv", &EncryptedBlob{IV: base64.StdEncoding.EncodeToString([]byte("short")), Ciphertext: "bbbb", Version: BlobVersion}},
		{"bad ciphertext base64", &EncryptedBlob{IV: base64.StdEncoding.EncodeToString(make([]byte, 12)), Ciphertext: "not base64!!", Version: BlobVersion}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decrypt(tc.blob, key)
			assert.ErrorIs(t, err, domain.ErrDecryptFailed)
		})
	}
}

func TestDeriveKey_Deterministic(t *testing.T) {
	secret := []byte("device-secret")
	salt := []byte("0123456789abcdef")

	k1 := DeriveKey(secret, salt)
	k2 := DeriveKey(secret, salt)
	assert.Equal(t, k1, k2)
	assert.Len(t, k1, 32)

	// Different salt, different key.
	k3 := DeriveKey(secret, []byte("fedcba9876543210"))
	assert.NotEqual(t, k1, k3)
}

func TestLooksEncrypted(t *testing.T) {
	key := testKey(t)
	blob, err := Encrypt("x", key)
	require.NoError(t, err)

	raw, err := json.Marshal(blob)
	require.NoError(t, err)
	assert.True(t, LooksEncrypted(string(raw)))

	assert.False(t, LooksEncrypted(""))
	assert.False(t, LooksEncrypted("not json"))
	assert.False(t, LooksEncrypted(`{"access_token":"plain"}`))
	assert.False(t, LooksEncrypted(`{"iv":"a","ciphertext":"b","version":2}`))
	assert.False(t, LooksEncrypted(`{"iv":"","ciphertext":"b","version":1}`))
}

func TestDecrypt_WrongKeyNoPartialPlaintext(t *testing.T) {
	key := testKey(t)
	blob, err := Encrypt("must never leak", key)
	require.NoError(t, err)

	bad := DeriveKey([]byte("wrong"), []byte("0123456789abcdef"))
	got, err := Decrypt(blob, bad)
	require.Error(t, err)
	assert.Empty(t, got)
}

func TestErrorsAreWrapped(t *testing.T) {
	key := testKey(t)
	_, err := Decrypt(&EncryptedBlob{Version: 99}, key)
	assert.True(t, errors.Is(err, domain.ErrDecryptFailed))
}
