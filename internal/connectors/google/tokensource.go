package google

import (
	"golang.org/x/oauth2"

	"github.com/HerbCaudill/journal-calendar/internal/core/domain"
)

// TokenSource adapts a domain.OAuthToken to oauth2.TokenSource so the
// Google API client can authenticate requests. The session is
// responsible for handing over tokens it has already validated and
// refreshed; this adapter never refreshes.
func TokenSource(tokens *domain.OAuthToken) oauth2.TokenSource {
	return oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: tokens.AccessToken,
		TokenType:   tokens.TokenType,
		Expiry:      tokens.Expiry,
	})
}
