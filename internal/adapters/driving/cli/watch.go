package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/HerbCaudill/journal-calendar/internal/core/domain"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the config file and keep the auth state current",
	Long: `Watch the configuration file and re-evaluate the authentication
state whenever it changes, without restarting.

Useful while setting up: edit the config file in another terminal and
watch the session leave the unconfigured state as soon as a client ID
appears.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		eng, err := newEngine(cmd)
		if err != nil {
			return err
		}
		defer eng.close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Printf("State: %s\n", eng.session.State())
		fmt.Printf("Watching %s (ctrl-c to stop)\n", eng.config.Path())

		err = eng.config.Watch(ctx, eng.log, func(cfg domain.OAuthConfig) {
			if err := eng.session.Reconfigure(ctx, cfg); err != nil {
				eng.log.Warn("reconfigure failed", zap.Error(err))
				return
			}
			fmt.Printf("State: %s\n", eng.session.State())
		})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
