// Package cli implements the journalcal command line interface.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/HerbCaudill/journal-calendar/internal/adapters/driven/config/file"
	drivenoauth "github.com/HerbCaudill/journal-calendar/internal/adapters/driven/oauth"
	"github.com/HerbCaudill/journal-calendar/internal/adapters/driven/storage/memory"
	"github.com/HerbCaudill/journal-calendar/internal/adapters/driven/storage/sqlite"
	"github.com/HerbCaudill/journal-calendar/internal/adapters/driven/tokenstore"
	"github.com/HerbCaudill/journal-calendar/internal/connectors/google/calendar"
	"github.com/HerbCaudill/journal-calendar/internal/core/services"
	"github.com/HerbCaudill/journal-calendar/internal/crypto/secretbox"
	"github.com/HerbCaudill/journal-calendar/internal/logger"
)

var (
	verbose    bool
	configPath string
	dataDir    string
)

var rootCmd = &cobra.Command{
	Use:   "journalcal",
	Short: "Google Calendar engine for the journal",
	Long: `journalcal manages the journal's Google Calendar integration:
OAuth sign-in with PKCE, encrypted local token storage, and rate-limited
event fetching across all of your calendars.

Examples:
  # Configure the OAuth client
  journalcal config set --client-id "xxx.apps.googleusercontent.com"

  # Sign in (opens a browser)
  journalcal auth login

  # Fetch a day's events
  journalcal events 2026-09-01`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default: XDG config dir)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory (default: XDG data dir)")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// engine bundles the wired components behind the CLI commands.
type engine struct {
	session *services.Session
	config  *file.ConfigStore
	tokens  *tokenstore.Store
	kv      *sqlite.KVStore
	log     *zap.Logger
}

func (e *engine) close() {
	if e.kv != nil {
		e.kv.Close()
	}
	if e.log != nil {
		_ = e.log.Sync()
	}
}

// newEngine wires the session from durable storage and configuration.
// The caller must close() it.
func newEngine(cmd *cobra.Command) (*engine, error) {
	log, err := logger.New(verbose)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	configStore, err := file.NewConfigStore(configPath)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}

	dir := dataDir
	if dir == "" {
		dir = filepath.Join(xdg.DataHome, "journal-calendar")
	}
	kv, err := sqlite.NewKVStore(dir)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	keys := secretbox.NewKeySource(kv)
	tokens := tokenstore.New(kv, keys, log)
	oauthClient := drivenoauth.NewClient(nil)
	fetcher := calendar.NewFetcher(calendar.DefaultConfig(), log)
	// PKCE state lives in memory only: it must not outlive the process.
	sessionStore := memory.NewKVStore()

	session := services.NewSession(
		configStore.OAuthConfig(), tokens, oauthClient, fetcher, sessionStore, log)
	if err := session.Initialize(cmd.Context()); err != nil {
		kv.Close()
		return nil, err
	}

	return &engine{session: session, config: configStore, tokens: tokens, kv: kv, log: log}, nil
}
