/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"annoflow/internal/bootstrap"
	"annoflow/internal/errs"
	"annoflow/internal/usecase/workflow"
)

var eventsLimit int

// eventsCmd represents the events command
var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Show the most recent audit events",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *workflow.Service) error {
		items, err := svc.RecentEvents(cmd.Context(), eventsLimit)
		if err != nil {
			return errs.Wrap(err, "list recent events")
		}

		out := cmd.OutOrStdout()
		for _, ev := range items {
			meta := ""
			if ev.EventMetadata != nil {
				meta = " " + *ev.EventMetadata
			}
			if _, err := fmt.Fprintf(out, "%s %s %s/%d%s\n",
				ev.EventTime.Format(time.RFC3339), ev.EventType, ev.EntityType, ev.EntityID, meta); err != nil {
				return errs.Wrap(err, "write events output")
			}
		}
		if len(items) == 0 {
			if _, err := fmt.Fprintln(out, "no events recorded"); err != nil {
				return errs.Wrap(err, "write events output")
			}
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.Flags().IntVar(&eventsLimit, "limit", 20, "Maximum number of events to show")
}
