package driven

import (
	"context"

	"github.com/HerbCaudill/journal-calendar/internal/core/domain"
)

// TokenStore persists OAuth tokens encrypted at rest.
//
// Implementations fail closed: any ambiguity about the integrity of
// the stored value clears it and reports domain.ErrNotFound rather
// than returning a partial token.
type TokenStore interface {
	// Store serialises and encrypts tokens, replacing the stored value.
	Store(ctx context.Context, tokens *domain.OAuthToken) error

	// Retrieve decrypts and returns the stored tokens.
	// Returns domain.ErrNotFound if nothing usable is stored.
	Retrieve(ctx context.Context) (*domain.OAuthToken, error)

	// Clear removes the stored tokens. Idempotent.
	Clear(ctx context.Context) error
}
