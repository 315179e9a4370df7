package cli

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	drivingoauth "github.com/HerbCaudill/journal-calendar/internal/adapters/driving/oauth"
	"github.com/HerbCaudill/journal-calendar/internal/core/domain"
)

// callbackTimeout is how long login waits for the browser redirect.
const callbackTimeout = 5 * time.Minute

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage Google Calendar authentication",
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to Google Calendar",
	Long: `Sign in to Google Calendar using OAuth with PKCE.

Opens your browser for Google's consent screen and receives the
authorization code on a local callback server. Tokens are stored
encrypted in the journal data directory.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		eng, err := newEngine(cmd)
		if err != nil {
			return err
		}
		defer eng.close()
		return runLogin(cmd, eng)
	},
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show authentication state",
	RunE: func(cmd *cobra.Command, _ []string) error {
		eng, err := newEngine(cmd)
		if err != nil {
			return err
		}
		defer eng.close()

		fmt.Printf("State: %s\n", eng.session.State())
		if tokens, err := eng.tokens.Retrieve(cmd.Context()); err == nil && !tokens.Expiry.IsZero() {
			fmt.Printf("Token expires: %s\n", tokens.Expiry.Local().Format(time.RFC1123))
		}
		if msg := eng.session.LastError(); msg != "" {
			fmt.Printf("Last error: %s\n", msg)
		}
		return nil
	},
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and clear stored tokens",
	RunE: func(cmd *cobra.Command, _ []string) error {
		eng, err := newEngine(cmd)
		if err != nil {
			return err
		}
		defer eng.close()

		if err := eng.session.SignOut(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("Signed out.")
		return nil
	},
}

func init() {
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authStatusCmd)
	authCmd.AddCommand(authLogoutCmd)
	rootCmd.AddCommand(authCmd)
}

// runLogin drives the full authorize-callback exchange.
func runLogin(cmd *cobra.Command, eng *engine) error {
	if eng.session.State() == domain.StateAuthenticated {
		fmt.Println("Already signed in. Run 'journalcal auth logout' first to switch accounts.")
		return nil
	}

	cfg := eng.config.OAuthConfig()

	server := drivingoauth.NewCallbackServer(redirectPort(cfg.RedirectURI))
	if err := server.Start(); err != nil {
		return fmt.Errorf("start callback server: %w", err)
	}
	defer server.Stop()

	// A configured redirect URI must match the OAuth app registration;
	// otherwise use the loopback server's own address.
	if cfg.RedirectURI == "" {
		cfg.RedirectURI = server.RedirectURI()
		if err := eng.session.Reconfigure(cmd.Context(), cfg); err != nil {
			return err
		}
	}

	authURL, err := eng.session.Authenticate(cmd.Context())
	if err != nil {
		return fmt.Errorf("start authorization: %s", eng.session.LastError())
	}

	fmt.Println("Opening your browser for Google sign-in...")
	if err := drivingoauth.OpenBrowser(authURL); err != nil {
		fmt.Printf("Could not open a browser. Visit:\n\n  %s\n\n", authURL)
	}

	callback, err := server.Wait(callbackTimeout)
	if err != nil {
		return fmt.Errorf("waiting for authorization: %w", err)
	}

	if err := eng.session.HandleCallback(cmd.Context(), callback.Code, callback.State); err != nil {
		return fmt.Errorf("complete authorization: %s", eng.session.LastError())
	}

	fmt.Println("Signed in to Google Calendar.")
	return nil
}

// redirectPort extracts the port from a configured redirect URI,
// falling back to an ephemeral port.
func redirectPort(redirectURI string) int {
	if redirectURI == "" {
		return 0
	}
	u, err := url.Parse(redirectURI)
	if err != nil {
		return 0
	}
	port, err := strconv.Atoi(u.Port())
	if err != nil {
		return 0
	}
	return port
}
