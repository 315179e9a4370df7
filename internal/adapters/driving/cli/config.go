package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage journal calendar configuration",
}

var configSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Set OAuth configuration values",
	Long: `Set OAuth configuration values and save them to the config file.

Only flags that are provided are changed; the rest keep their current
values. A Google OAuth client ID is the minimum required to sign in.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		eng, err := newEngine(cmd)
		if err != nil {
			return err
		}
		defer eng.close()

		cfg := eng.config.OAuthConfig()
		if cmd.Flags().Changed("client-id") {
			cfg.ClientID, _ = cmd.Flags().GetString("client-id")
		}
		if cmd.Flags().Changed("redirect-uri") {
			cfg.RedirectURI, _ = cmd.Flags().GetString("redirect-uri")
		}
		if cmd.Flags().Changed("scopes") {
			raw, _ := cmd.Flags().GetString("scopes")
			cfg.Scopes = splitScopes(raw)
		}

		if err := eng.config.Save(cfg); err != nil {
			return fmt.Errorf("save config: %w", err)
		}
		if err := eng.session.Reconfigure(cmd.Context(), cfg); err != nil {
			return err
		}
		fmt.Printf("Saved %s\n", eng.config.Path())
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current configuration",
	RunE: func(cmd *cobra.Command, _ []string) error {
		eng, err := newEngine(cmd)
		if err != nil {
			return err
		}
		defer eng.close()

		cfg := eng.config.OAuthConfig().WithDefaults()
		fmt.Printf("Config file:  %s\n", eng.config.Path())
		fmt.Printf("Client ID:    %s\n", orUnset(cfg.ClientID))
		fmt.Printf("Redirect URI: %s\n", orUnset(cfg.RedirectURI))
		fmt.Printf("Scopes:       %s\n", strings.Join(cfg.Scopes, " "))
		return nil
	},
}

func init() {
	configSetCmd.Flags().String("client-id", "", "Google OAuth client ID")
	configSetCmd.Flags().String("redirect-uri", "", "OAuth redirect URI (empty uses a local callback server)")
	configSetCmd.Flags().String("scopes", "", "comma-separated OAuth scopes")

	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}

func splitScopes(raw string) []string {
	var scopes []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			scopes = append(scopes, s)
		}
	}
	return scopes
}

func orUnset(v string) string {
	if v == "" {
		return "(unset)"
	}
	return v
}
