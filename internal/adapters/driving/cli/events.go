package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var eventsCmd = &cobra.Command{
	Use:   "events <date>",
	Short: "List calendar events for a day",
	Long: `List events across all visible calendars for one day.

The date is given as YYYY-MM-DD and interpreted in the local timezone.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := newEngine(cmd)
		if err != nil {
			return err
		}
		defer eng.close()

		events, err := eng.session.FetchEvents(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("fetch events: %s", eng.session.LastError())
		}

		if len(events) == 0 {
			fmt.Println("No events.")
			return nil
		}

		for _, ev := range events {
			when := "all day"
			if !ev.AllDay {
				when = fmt.Sprintf("%s - %s", ev.Start.Format("15:04"), ev.End.Format("15:04"))
			}
			fmt.Printf("%-15s %s", when, ev.Summary)
			if ev.Location != "" {
				fmt.Printf("  (%s)", ev.Location)
			}
			fmt.Println()
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)
}
