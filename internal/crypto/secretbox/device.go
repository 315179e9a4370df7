package secretbox

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/HerbCaudill/journal-calendar/internal/core/domain"
	"github.com/HerbCaudill/journal-calendar/internal/core/ports/driven"
)

// Storage keys for key-derivation material. Neither value is a secret
// in the cryptographic sense: PBKDF2 salts are public, and the device
// secret only protects against the token blob leaking without the rest
// of the data directory.
const (
	saltKey         = "gcal.salt"
	deviceSecretKey = "gcal.device_secret"

	saltLen         = 16
	deviceSecretLen = 32
)

// KeySource derives the process-lifetime encryption key from material
// persisted in a KeyValueStore. The key is re-derived per operation,
// never cached across it.
type KeySource struct {
	kv driven.KeyValueStore
}

// NewKeySource creates a key source over the given store.
func NewKeySource(kv driven.KeyValueStore) *KeySource {
	return &KeySource{kv: kv}
}

// Key returns the derived encryption key, creating the salt and device
// secret on first use.
func (s *KeySource) Key(ctx context.Context) ([]byte, error) {
	secret, err := s.loadOrCreate(ctx, deviceSecretKey, deviceSecretLen)
	if err != nil {
		return nil, fmt.Errorf("device secret: %w", err)
	}
	salt, err := s.loadOrCreate(ctx, saltKey, saltLen)
	if err != nil {
		return nil, fmt.Errorf("salt: %w", err)
	}
	return DeriveKey(secret, salt), nil
}

// loadOrCreate reads base64 bytes under key, generating and persisting
// a fresh random value if absent or unreadable.
func (s *KeySource) loadOrCreate(ctx context.Context, key string, n int) ([]byte, error) {
	raw, err := s.kv.Get(ctx, key)
	if err == nil {
		if b, decErr := base64.StdEncoding.DecodeString(raw); decErr == nil && len(b) == n {
			return b, nil
		}
		// Unreadable material means previously encrypted data is lost
		// anyway. Regenerate rather than fail forever.
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("generate random bytes: %w", err)
	}
	if err := s.kv.Set(ctx, key, base64.StdEncoding.EncodeToString(b)); err != nil {
		return nil, err
	}
	return b, nil
}
