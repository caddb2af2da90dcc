package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/UnknownOlympus/itinera/internal/itinerary"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the itinerary grouped by month",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func runList(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer a.Close()

	groups, err := a.service.Itinerary(cmd.Context())
	if err != nil {
		return err
	}

	printItinerary(cmd.OutOrStdout(), groups)

	return nil
}

// printItinerary writes one block per month with a line per place.
func printItinerary(out io.Writer, groups []itinerary.Group) {
	if len(groups) == 0 {
		fmt.Fprintln(out, "No places in the itinerary.")
		return
	}

	for i, group := range groups {
		if i > 0 {
			fmt.Fprintln(out)
		}

		if group.Month == "" {
			fmt.Fprintln(out, "Unscheduled")
		} else {
			fmt.Fprintln(out, group.Month)
		}

		for _, entry := range group.Places {
			mark := " "
			if entry.Visited {
				mark = "x"
			}

			when := strings.Repeat(" ", len("00 Mon 00:00"))
			if entry.Label != nil {
				when = fmt.Sprintf("%-12s", strings.TrimSpace(entry.Label.Day+" "+entry.Label.Weekday+" "+entry.Label.Time))
			}

			fmt.Fprintf(out, "  [%s] %s  %s", mark, when, entry.Name)
			if entry.ShortAddress != "" {
				fmt.Fprintf(out, " (%s)", entry.ShortAddress)
			}
			fmt.Fprintln(out)
		}
	}
}
