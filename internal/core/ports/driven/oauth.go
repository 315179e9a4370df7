package driven

import (
	"context"

	"github.com/HerbCaudill/journal-calendar/internal/core/domain"
)

// AuthorizationRequest is the output of starting an OAuth flow.
type AuthorizationRequest struct {
	// URL is the provider authorization URL to navigate to.
	URL string
	// State is the CSRF token embedded in the URL.
	State string
	// CodeVerifier is the PKCE verifier to present during exchange.
	CodeVerifier string
}

// OAuthClient performs the OAuth 2.0 authorization-code flow with PKCE.
type OAuthClient interface {
	// BuildAuthorizationRequest generates state and PKCE values and
	// constructs the authorization URL. Returns domain.ErrNoClientID
	// if the config has no client id.
	BuildAuthorizationRequest(cfg domain.OAuthConfig) (*AuthorizationRequest, error)

	// ExchangeCode exchanges an authorization code for tokens.
	ExchangeCode(ctx context.Context, code, codeVerifier string, cfg domain.OAuthConfig) (*domain.OAuthToken, error)

	// Refresh obtains new tokens using a refresh token. The returned
	// tokens carry the original refresh token if the provider omits it.
	Refresh(ctx context.Context, refreshToken string, cfg domain.OAuthConfig) (*domain.OAuthToken, error)

	// Revoke invalidates a token at the provider. A provider response
	// of 400 means the token was already invalid and is treated as
	// success.
	Revoke(ctx context.Context, token string, cfg domain.OAuthConfig) error
}
