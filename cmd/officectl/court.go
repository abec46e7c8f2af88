package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"law_office_desk/services"
	"law_office_desk/services/jobs"
	"law_office_desk/services/judicial"

	"github.com/spf13/cobra"
)

func newCourtCmd(a *app) *cobra.Command {
	var open bool
	var pause time.Duration

	cmd := &cobra.Command{
		Use:   "court [NUMBER]",
		Short: "Show the latest court movements of a case, or of every open case with --open",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch {
			case open && len(args) == 0:
				return runCourtSweep(cmd.Context(), a.backends, pause, cmd.OutOrStdout())
			case !open && len(args) == 1:
				printMovements(cmd.OutOrStdout(), args[0], judicial.RecentMovements(cmd.Context(), a.backends.Court, args[0]))
				return nil
			default:
				return errors.New("pass a case number or --open")
			}
		},
	}
	cmd.Flags().BoolVar(&open, "open", false, "check every open case in the store")
	cmd.Flags().DurationVar(&pause, "pause", jobs.DefaultSweepPause, "wait between two lookups")
	return cmd
}

func runCourtSweep(ctx context.Context, b *services.Backends, pause time.Duration, w io.Writer) error {
	cases, err := b.Store.Cases(ctx)
	if err != nil {
		return err
	}
	for _, check := range jobs.SweepOpenCases(ctx, cases, b.Court, pause) {
		printMovements(w, check.Number+" ("+check.Client+")", check.Movements)
	}
	return ctx.Err()
}

func printMovements(w io.Writer, header string, lines []string) {
	fmt.Fprintln(w, header)
	for _, l := range lines {
		fmt.Fprintf(w, "  - %s\n", l)
	}
}
