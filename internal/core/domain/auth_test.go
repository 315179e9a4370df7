package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOAuthToken_IsExpired(t *testing.T) {
	cases := []struct {
		name   string
		expiry time.Time
		want   bool
	}{
		{"zero expiry never expires", time.Time{}, false},
		{"well in the future", time.Now().Add(time.Hour), false},
		{"already past", time.Now().Add(-time.Minute), true},
		{"inside the refresh buffer", time.Now().Add(4 * time.Minute), true},
		{"just outside the refresh buffer", time.Now().Add(6 * time.Minute), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tok := OAuthToken{AccessToken: "a", Expiry: tc.expiry}
			assert.Equal(t, tc.want, tok.IsExpired())
		})
	}
}

func TestOAuthToken_IsUsable(t *testing.T) {
	assert.False(t, (&OAuthToken{}).IsUsable())
	assert.True(t, (&OAuthToken{AccessToken: "a"}).IsUsable())
	assert.True(t, (&OAuthToken{AccessToken: "a", Expiry: time.Now().Add(time.Minute)}).IsUsable())
	assert.False(t, (&OAuthToken{AccessToken: "a", Expiry: time.Now().Add(-time.Minute)}).IsUsable())

	// Usable inside the refresh buffer even though IsExpired is true.
	soon := &OAuthToken{AccessToken: "a", Expiry: time.Now().Add(2 * time.Minute)}
	assert.True(t, soon.IsUsable())
	assert.True(t, soon.IsExpired())
}
