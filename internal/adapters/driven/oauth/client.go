// Package oauth implements the Google OAuth 2.0 authorization-code
// flow with PKCE: authorization URL construction, code exchange, token
// refresh, and revocation. PKCE removes the need for a client secret
// in an installed app.
package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/HerbCaudill/journal-calendar/internal/core/domain"
	"github.com/HerbCaudill/journal-calendar/internal/core/ports/driven"
)

// Ensure Client implements the interface.
var _ driven.OAuthClient = (*Client)(nil)

// Client performs OAuth operations against the configured endpoints.
type Client struct {
	httpClient *http.Client
}

// NewClient creates an OAuth client. A nil httpClient gets a 30-second
// timeout default.
func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{httpClient: httpClient}
}

// BuildAuthorizationRequest generates fresh state and PKCE values and
// constructs the provider authorization URL.
func (c *Client) BuildAuthorizationRequest(cfg domain.OAuthConfig) (*driven.AuthorizationRequest, error) {
	if !cfg.IsConfigured() {
		return nil, domain.ErrNoClientID
	}
	cfg = cfg.WithDefaults()

	state, err := GenerateState()
	if err != nil {
		return nil, err
	}
	verifier, err := GenerateCodeVerifier()
	if err != nil {
		return nil, err
	}

	params := url.Values{
		"client_id":             {cfg.ClientID},
		"redirect_uri":          {cfg.RedirectURI},
		"response_type":         {"code"},
		"scope":                 {strings.Join(cfg.Scopes, " ")},
		"state":                 {state},
		"code_challenge":        {CodeChallenge(verifier)},
		"code_challenge_method": {"S256"},
		// Google-specific: offline access yields a refresh token, and
		// prompt=consent forces one even on re-authorization.
		"access_type": {"offline"},
		"prompt":      {"consent"},
	}

	return &driven.AuthorizationRequest{
		URL:          cfg.AuthURL + "?" + params.Encode(),
		State:        state,
		CodeVerifier: verifier,
	}, nil
}

// ExchangeCode exchanges an authorization code for tokens.
func (c *Client) ExchangeCode(
	ctx context.Context,
	code, codeVerifier string,
	cfg domain.OAuthConfig,
) (*domain.OAuthToken, error) {
	if !cfg.IsConfigured() {
		return nil, domain.ErrNoClientID
	}
	cfg = cfg.WithDefaults()

	data := url.Values{}
	data.Set("grant_type", "authorization_code")
	data.Set("client_id", cfg.ClientID)
	data.Set("code", code)
	data.Set("code_verifier", codeVerifier)
	data.Set("redirect_uri", cfg.RedirectURI)

	return c.postTokenRequest(ctx, cfg.TokenURL, data, "")
}

// Refresh obtains new tokens using a refresh token. Google omits the
// refresh token from refresh responses, so the original is preserved
// in the returned tokens.
func (c *Client) Refresh(
	ctx context.Context,
	refreshToken string,
	cfg domain.OAuthConfig,
) (*domain.OAuthToken, error) {
	if !cfg.IsConfigured() {
		return nil, domain.ErrNoClientID
	}
	cfg = cfg.WithDefaults()

	data := url.Values{}
	data.Set("grant_type", "refresh_token")
	data.Set("client_id", cfg.ClientID)
	data.Set("refresh_token", refreshToken)

	return c.postTokenRequest(ctx, cfg.TokenURL, data, refreshToken)
}

// Revoke invalidates a token at the provider. HTTP 400 means the token
// was already invalid, which is success for our purposes.
func (c *Client) Revoke(ctx context.Context, token string, cfg domain.OAuthConfig) error {
	cfg = cfg.WithDefaults()

	data := url.Values{}
	data.Set("token", token)

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, cfg.RevokeURL, strings.NewReader(data.Encode()))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("revoke request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusBadRequest {
		return nil
	}
	return fmt.Errorf("revoke failed with status %d", resp.StatusCode)
}

// postTokenRequest posts a token grant and decodes the response.
// keepRefreshToken, if non-empty, fills a missing refresh token in the
// response.
func (c *Client) postTokenRequest(
	ctx context.Context,
	tokenURL string,
	data url.Values,
	keepRefreshToken string,
) (*domain.OAuthToken, error) {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, tokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errResp struct {
			Error       string `json:"error"`
			Description string `json:"error_description"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Error != "" {
			return nil, fmt.Errorf("token error: %s - %s", errResp.Error, errResp.Description)
		}
		return nil, fmt.Errorf("token request failed with status %d", resp.StatusCode)
	}

	var tokenResp struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		TokenType    string `json:"token_type"`
		ExpiresIn    int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return nil, fmt.Errorf("token response missing access token")
	}

	tokens := &domain.OAuthToken{
		AccessToken:  tokenResp.AccessToken,
		RefreshToken: tokenResp.RefreshToken,
		TokenType:    tokenResp.TokenType,
	}
	if tokens.RefreshToken == "" {
		tokens.RefreshToken = keepRefreshToken
	}
	if tokens.TokenType == "" {
		tokens.TokenType = "Bearer"
	}
	if tokenResp.ExpiresIn > 0 {
		tokens.Expiry = time.Now().Add(time.Duration(tokenResp.ExpiresIn) * time.Second)
	}
	return tokens, nil
}
