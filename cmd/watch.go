package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var watchJSON bool

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print the itinerary again after every change",
	Args:  cobra.NoArgs,
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchJSON, "json", false, "Print every snapshot as one JSON line")
}

func runWatch(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	feed, err := a.service.Watch(ctx)
	if err != nil {
		return err
	}
	defer feed.Close()

	out := cmd.OutOrStdout()
	encoder := json.NewEncoder(out)

	for groups := range feed.Updates() {
		if watchJSON {
			if err = encoder.Encode(groups); err != nil {
				return fmt.Errorf("failed to write snapshot: %w", err)
			}
			continue
		}

		fmt.Fprintln(out, "----")
		printItinerary(out, groups)
	}

	if err = feed.Err(); err != nil && !errors.Is(err, ctx.Err()) {
		return fmt.Errorf("itinerary feed stopped: %w", err)
	}

	return nil
}
