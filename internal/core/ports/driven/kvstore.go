package driven

import "context"

// KeyValueStore is a byte-oriented persistence substrate keyed by
// string. Implementations include an in-memory store (tests, session
// scope) and a SQLite-backed store (durable).
//
// Get returns domain.ErrNotFound when the key is absent.
type KeyValueStore interface {
	// Get retrieves the value stored under key.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key, replacing any existing value.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
