// Package secretbox encrypts small secrets at rest using a key derived
// from a persisted device secret. This is local-at-rest protection, not
// server-grade secrecy: anyone with full access to the data directory
// can re-derive the key. The threat model is casual inspection and
// accidental disclosure of the storage file, and it is documented as
// such.
package secretbox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"golang.org/x/crypto/pbkdf2"

	"github.com/HerbCaudill/journal-calendar/internal/core/domain"
)

const (
	// BlobVersion is the current encrypted blob format version.
	BlobVersion = 1

	keyLen     = 32
	ivLen      = 12
	iterations = 100_000

	// appMarker binds derived keys to this application.
	appMarker = "journal-calendar/v1"
)

// EncryptedBlob is the self-describing at-rest format. IV and
// ciphertext are base64 (std) encoded for storage.
type EncryptedBlob struct {
	IV         string `json:"iv"`
	Ciphertext string `json:"ciphertext"`
	Version    int    `json:"version"`
}

// DeriveKey derives a 32-byte AES key from the device secret and salt
// via PBKDF2-SHA256. Deterministic: the same inputs always yield the
// same key, so the key itself is never stored.
func DeriveKey(deviceSecret, salt []byte) []byte {
	material := make([]byte, 0, len(deviceSecret)+len(appMarker))
	material = append(material, deviceSecret...)
	material = append(material, appMarker...)
	return pbkdf2.Key(material, salt, iterations, keyLen, sha256.New)
}

// Encrypt seals plaintext with AES-256-GCM under a fresh random IV.
func Encrypt(plaintext string, key []byte) (*EncryptedBlob, error) {
	aead, err := newAEAD(key)
	if err != nil {
		return nil, err
	}

	iv := make([]byte, ivLen)
	if _, err := rand.Read(iv); err != nil {
		return nil, fmt.Errorf("generate iv: %w", err)
	}

	ct := aead.Seal(nil, iv, []byte(plaintext), nil)
	return &EncryptedBlob{
		IV:         base64.StdEncoding.EncodeToString(iv),
		Ciphertext: base64.StdEncoding.EncodeToString(ct),
		Version:    BlobVersion,
	}, nil
}

// Decrypt opens a blob. Any tampering with the IV or ciphertext, a
// wrong key, or a malformed blob yields domain.ErrDecryptFailed,
// never silently corrupted plaintext.
func Decrypt(blob *EncryptedBlob, key []byte) (string, error) {
	if blob == nil || blob.Version != BlobVersion {
		return "", fmt.Errorf("%w: unsupported blob", domain.ErrDecryptFailed)
	}

	iv, err := base64.StdEncoding.DecodeString(blob.IV)
	if err != nil || len(iv) != ivLen {
		return "", fmt.Errorf("%w: bad iv", domain.ErrDecryptFailed)
	}
	ct, err := base64.StdEncoding.DecodeString(blob.Ciphertext)
	if err != nil {
		return "", fmt.Errorf("%w: bad ciphertext", domain.ErrDecryptFailed)
	}

	aead, err := newAEAD(key)
	if err != nil {
		return "", err
	}

	pt, err := aead.Open(nil, iv, ct, nil)
	if err != nil {
		// Authentication tag mismatch. Do not leak details.
		return "", domain.ErrDecryptFailed
	}
	return string(pt), nil
}

// LooksEncrypted reports whether raw parses as the encrypted blob
// shape. Used to tell legacy plaintext data from the encrypted format
// during migration.
func LooksEncrypted(raw string) bool {
	var blob EncryptedBlob
	if err := json.Unmarshal([]byte(raw), &blob); err != nil {
		return false
	}
	return blob.IV != "" && blob.Ciphertext != "" && blob.Version == BlobVersion
}

func newAEAD(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create gcm: %w", err)
	}
	return aead, nil
}
