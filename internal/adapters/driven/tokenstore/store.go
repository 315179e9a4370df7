// Package tokenstore persists OAuth tokens encrypted at rest, with a
// one-time transparent migration of legacy plaintext tokens.
package tokenstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/HerbCaudill/journal-calendar/internal/core/domain"
	"github.com/HerbCaudill/journal-calendar/internal/core/ports/driven"
	"github.com/HerbCaudill/journal-calendar/internal/crypto/secretbox"
)

// tokensKey is the storage key holding the encrypted token blob.
const tokensKey = "gcal.tokens"

// Ensure Store implements the interface.
var _ driven.TokenStore = (*Store)(nil)

// Store is the encrypted TokenStore implementation over a
// KeyValueStore.
type Store struct {
	kv   driven.KeyValueStore
	keys *secretbox.KeySource
	log  *zap.Logger
}

// New creates a token store. The encryption key is derived through
// keys on every operation, never cached.
func New(kv driven.KeyValueStore, keys *secretbox.KeySource, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{kv: kv, keys: keys, log: log}
}

// Store serialises tokens to JSON, encrypts them, and replaces the
// stored value.
func (s *Store) Store(ctx context.Context, tokens *domain.OAuthToken) error {
	if tokens == nil || tokens.AccessToken == "" {
		return domain.ErrInvalidInput
	}

	plaintext, err := json.Marshal(tokens)
	if err != nil {
		return fmt.Errorf("marshal tokens: %w", err)
	}

	key, err := s.keys.Key(ctx)
	if err != nil {
		return fmt.Errorf("derive key: %w", err)
	}

	blob, err := secretbox.Encrypt(string(plaintext), key)
	if err != nil {
		return fmt.Errorf("encrypt tokens: %w", err)
	}

	raw, err := json.Marshal(blob)
	if err != nil {
		return fmt.Errorf("marshal blob: %w", err)
	}
	return s.kv.Set(ctx, tokensKey, string(raw))
}

// Retrieve returns the stored tokens, decrypting the blob. Legacy
// plaintext tokens are re-encrypted in place before being returned.
// Anything unreadable clears the stored value and reports
// domain.ErrNotFound: a corrupt token is never surfaced.
func (s *Store) Retrieve(ctx context.Context) (*domain.OAuthToken, error) {
	raw, err := s.kv.Get(ctx, tokensKey)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("read tokens: %w", err)
	}

	if secretbox.LooksEncrypted(raw) {
		return s.decrypt(ctx, raw)
	}
	return s.migrateLegacy(ctx, raw)
}

// Clear removes the stored tokens unconditionally.
func (s *Store) Clear(ctx context.Context) error {
	return s.kv.Delete(ctx, tokensKey)
}

func (s *Store) decrypt(ctx context.Context, raw string) (*domain.OAuthToken, error) {
	var blob secretbox.EncryptedBlob
	if err := json.Unmarshal([]byte(raw), &blob); err != nil {
		return s.reset(ctx, "unparseable blob")
	}

	key, err := s.keys.Key(ctx)
	if err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}

	plaintext, err := secretbox.Decrypt(&blob, key)
	if err != nil {
		return s.reset(ctx, "decryption failed")
	}

	var tokens domain.OAuthToken
	if err := json.Unmarshal([]byte(plaintext), &tokens); err != nil || tokens.AccessToken == "" {
		return s.reset(ctx, "decrypted payload is not a token")
	}
	return &tokens, nil
}

// migrateLegacy handles pre-encryption data: plain JSON matching the
// token shape is re-encrypted in place, anything else is discarded.
func (s *Store) migrateLegacy(ctx context.Context, raw string) (*domain.OAuthToken, error) {
	var tokens domain.OAuthToken
	if err := json.Unmarshal([]byte(raw), &tokens); err != nil || tokens.AccessToken == "" {
		return s.reset(ctx, "stored value is neither encrypted nor a legacy token")
	}

	if err := s.Store(ctx, &tokens); err != nil {
		// Migration is best-effort; the parsed token is still good.
		s.log.Warn("legacy token migration failed", zap.Error(err))
	} else {
		s.log.Info("migrated legacy plaintext tokens to encrypted storage")
	}
	return &tokens, nil
}

// reset clears the stored value and reports absence. The reason is
// logged, never returned: errors here must not carry secrets.
func (s *Store) reset(ctx context.Context, reason string) (*domain.OAuthToken, error) {
	s.log.Warn("clearing unreadable token storage", zap.String("reason", reason))
	if err := s.kv.Delete(ctx, tokensKey); err != nil {
		return nil, fmt.Errorf("clear tokens: %w", err)
	}
	return nil, domain.ErrNotFound
}
