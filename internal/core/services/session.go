package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/HerbCaudill/journal-calendar/internal/core/domain"
	"github.com/HerbCaudill/journal-calendar/internal/core/ports/driven"
	"github.com/HerbCaudill/journal-calendar/internal/core/ports/driving"
)

// sessionGrantKey is the session-scoped storage key holding the
// pending PKCE grant as JSON.
const sessionGrantKey = "oauth.grant"

// Ensure Session implements the interface.
var _ driving.CalendarSession = (*Session)(nil)

// Session is the authentication state machine. It owns the AuthState
// and is the only component allowed to transition it. State changes
// are linearised under a single mutex; identical in-flight fetches are
// coalesced per date.
type Session struct {
	tokens  driven.TokenStore
	oauth   driven.OAuthClient
	fetcher driven.EventFetcher
	// session is the session-scoped store holding the PKCE grant
	// between Authenticate and HandleCallback. It must not survive
	// the process.
	session driven.KeyValueStore
	log     *zap.Logger

	mu      sync.Mutex
	cfg     domain.OAuthConfig
	state   domain.AuthState
	lastErr string

	flights singleflight.Group
}

// NewSession wires a session from its collaborators. Call Initialize
// before anything else.
func NewSession(
	cfg domain.OAuthConfig,
	tokens driven.TokenStore,
	oauth driven.OAuthClient,
	fetcher driven.EventFetcher,
	sessionStore driven.KeyValueStore,
	log *zap.Logger,
) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{
		tokens:  tokens,
		oauth:   oauth,
		fetcher: fetcher,
		session: sessionStore,
		log:     log,
		cfg:     cfg,
		state:   domain.StateUnauthenticated,
	}
}

// Initialize probes stored tokens and settles the initial state.
// A best-effort proactive rotation runs here; its failure never
// downgrades the state decision while the existing token is usable.
func (s *Session) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.probe(ctx)
	return nil
}

// Reconfigure swaps the OAuth configuration and re-runs the initial
// probe. This is the only path into or out of unconfigured.
func (s *Session) Reconfigure(ctx context.Context, cfg domain.OAuthConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
	s.lastErr = ""
	s.probe(ctx)
	return nil
}

// probe decides the state from configuration and stored tokens.
// Caller holds s.mu.
func (s *Session) probe(ctx context.Context) {
	if !s.cfg.IsConfigured() {
		s.state = domain.StateUnconfigured
		return
	}

	tokens, err := s.tokens.Retrieve(ctx)
	if err != nil {
		s.state = domain.StateUnauthenticated
		return
	}

	if !tokens.IsUsable() && tokens.RefreshToken == "" {
		s.state = domain.StateUnauthenticated
		return
	}
	s.state = domain.StateAuthenticated

	// Proactive rotation. Failure is logged, not acted on: the
	// stored token may still be technically valid.
	if tokens.IsExpired() && tokens.RefreshToken != "" {
		if _, err := s.refreshAndStore(ctx, tokens); err != nil {
			s.log.Warn("proactive token rotation failed", zap.Error(err))
		}
	}
}

// Authenticate starts an authorization flow and returns the provider
// URL. The PKCE grant is persisted to session-scoped storage for the
// callback. Only legal from unauthenticated (or authenticating, which
// restarts the flow with a fresh grant): an authenticated session must
// sign out first, so a login attempt can never demote valid tokens.
func (s *Session) Authenticate(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == domain.StateUnconfigured {
		return "", s.fail(domain.ErrNoClientID)
	}
	if s.state == domain.StateAuthenticated {
		return "", s.fail(domain.ErrAlreadyAuthenticated)
	}

	req, err := s.oauth.BuildAuthorizationRequest(s.cfg)
	if err != nil {
		s.state = domain.StateUnauthenticated
		return "", s.fail(err)
	}

	grant, err := json.Marshal(domain.PKCEGrant{State: req.State, CodeVerifier: req.CodeVerifier})
	if err != nil {
		s.state = domain.StateUnauthenticated
		return "", s.fail(err)
	}
	if err := s.session.Set(ctx, sessionGrantKey, string(grant)); err != nil {
		s.state = domain.StateUnauthenticated
		return "", s.fail(err)
	}

	s.state = domain.StateAuthenticating
	s.lastErr = ""
	return req.URL, nil
}

// HandleCallback completes the flow. The stored PKCE grant is
// consumed exactly once: it is cleared before this method returns,
// success or failure.
func (s *Session) HandleCallback(ctx context.Context, code, returnedState string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, grantErr := s.session.Get(ctx, sessionGrantKey)

	// Single-use: clear the grant no matter how the callback ends.
	_ = s.session.Delete(ctx, sessionGrantKey)

	var grant domain.PKCEGrant
	if grantErr == nil {
		if err := json.Unmarshal([]byte(raw), &grant); err != nil {
			grant = domain.PKCEGrant{}
		}
	}

	if returnedState == "" || returnedState != grant.State {
		s.state = domain.StateUnauthenticated
		return s.fail(domain.ErrCSRFMismatch)
	}
	if grant.CodeVerifier == "" {
		s.state = domain.StateUnauthenticated
		return s.fail(domain.ErrVerifierMissing)
	}

	tokens, err := s.oauth.ExchangeCode(ctx, code, grant.CodeVerifier, s.cfg)
	if err != nil {
		s.state = domain.StateUnauthenticated
		return s.fail(err)
	}

	if err := s.tokens.Store(ctx, tokens); err != nil {
		s.state = domain.StateUnauthenticated
		return s.fail(err)
	}

	s.state = domain.StateAuthenticated
	s.lastErr = ""
	return nil
}

// FetchEvents returns the day's events across all calendars.
// Concurrent calls for the same date share a single in-flight fetch;
// calls for different dates proceed independently.
func (s *Session) FetchEvents(ctx context.Context, date string) ([]domain.CalendarEvent, error) {
	s.mu.Lock()
	if s.state != domain.StateAuthenticated {
		err := s.fail(domain.ErrNotAuthenticated)
		s.mu.Unlock()
		return nil, err
	}
	s.mu.Unlock()

	result, err, _ := s.flights.Do(date, func() (any, error) {
		return s.fetchOnce(ctx, date)
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.CalendarEvent), nil
}

// fetchOnce is the non-coalesced fetch path: obtain valid tokens
// (rotating if needed), then delegate to the fetcher.
func (s *Session) fetchOnce(ctx context.Context, date string) ([]domain.CalendarEvent, error) {
	tokens, err := s.validTokens(ctx)
	if err != nil {
		s.mu.Lock()
		s.state = domain.StateUnauthenticated
		err = s.fail(domain.ErrAuthExpired)
		s.mu.Unlock()
		return nil, err
	}

	events, err := s.fetcher.FetchAll(ctx, tokens, date)
	if err != nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		if errors.Is(err, domain.ErrAuthExpired) {
			s.state = domain.StateUnauthenticated
		}
		return nil, s.fail(err)
	}

	s.mu.Lock()
	s.lastErr = ""
	s.mu.Unlock()
	return events, nil
}

// validTokens returns tokens good for an API call, refreshing through
// the OAuth client when inside the expiry buffer. A successful refresh
// fully replaces the stored value. A failed refresh falls back to the
// existing token only while it is still technically valid.
func (s *Session) validTokens(ctx context.Context) (*domain.OAuthToken, error) {
	tokens, err := s.tokens.Retrieve(ctx)
	if err != nil {
		return nil, domain.ErrAuthExpired
	}

	if !tokens.IsExpired() {
		return tokens, nil
	}

	if tokens.RefreshToken == "" {
		if tokens.IsUsable() {
			return tokens, nil
		}
		return nil, domain.ErrAuthExpired
	}

	refreshed, err := s.refreshAndStore(ctx, tokens)
	if err != nil {
		if tokens.IsUsable() {
			return tokens, nil
		}
		return nil, domain.ErrAuthExpired
	}
	return refreshed, nil
}

// refreshAndStore rotates tokens and persists the replacement.
func (s *Session) refreshAndStore(ctx context.Context, tokens *domain.OAuthToken) (*domain.OAuthToken, error) {
	refreshed, err := s.oauth.Refresh(ctx, tokens.RefreshToken, s.cfg)
	if err != nil {
		return nil, err
	}
	if err := s.tokens.Store(ctx, refreshed); err != nil {
		return nil, err
	}
	return refreshed, nil
}

// SignOut revokes the refresh token (preferred) or access token
// best-effort, then always clears local state. Local state is never
// left authenticated past this call, whatever the provider said.
func (s *Session) SignOut(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if tokens, err := s.tokens.Retrieve(ctx); err == nil {
		revocable := tokens.RefreshToken
		if revocable == "" {
			revocable = tokens.AccessToken
		}
		if revocable != "" {
			if err := s.oauth.Revoke(ctx, revocable, s.cfg); err != nil {
				s.log.Warn("token revocation failed", zap.Error(err))
			}
		}
	}

	err := s.tokens.Clear(ctx)
	_ = s.session.Delete(ctx, sessionGrantKey)

	if s.state != domain.StateUnconfigured {
		s.state = domain.StateUnauthenticated
	}
	s.lastErr = ""
	return err
}

// State returns the current authentication state.
func (s *Session) State() domain.AuthState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LastError returns the last recorded user-facing error string.
func (s *Session) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// ClearError clears the recorded error without changing state.
func (s *Session) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = ""
}

// fail records a short stable error string for the UI and returns the
// error. Caller holds s.mu.
func (s *Session) fail(err error) error {
	s.lastErr = userMessage(err)
	return err
}

// userMessage maps an error to the short stable string surfaced to the
// UI. Raw provider payloads never reach the caller through this path.
func userMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrNoClientID):
		return "no OAuth client ID configured"
	case errors.Is(err, domain.ErrCSRFMismatch):
		return "authorization state mismatch"
	case errors.Is(err, domain.ErrVerifierMissing):
		return "authorization session expired, try again"
	case errors.Is(err, domain.ErrAuthExpired):
		return "authentication expired"
	case errors.Is(err, domain.ErrNotAuthenticated):
		return "not signed in"
	case errors.Is(err, domain.ErrAlreadyAuthenticated):
		return "already signed in"
	case errors.Is(err, domain.ErrInvalidDate):
		return "invalid date"
	case domain.IsRateLimited(err):
		return "calendar temporarily rate limited"
	default:
		return "calendar request failed"
	}
}
