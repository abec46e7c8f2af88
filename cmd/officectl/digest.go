package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"law_office_desk/services"
	"law_office_desk/services/i18n"
	"law_office_desk/services/jobs"

	"github.com/spf13/cobra"
)

func newDigestCmd(a *app) *cobra.Command {
	var opts jobs.DigestOptions

	cmd := &cobra.Command{
		Use:   "digest",
		Short: "Email each office the cases that are overdue or due soon",
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Lang == "" {
				opts.Lang = i18n.Default()
			}
			return runDigest(cmd.Context(), a.backends, opts, cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "print the digests instead of sending them")
	cmd.Flags().StringVar(&opts.Lang, "lang", "", "digest language (pt-BR or en)")
	return cmd
}

func runDigest(ctx context.Context, b *services.Backends, opts jobs.DigestOptions, w io.Writer) error {
	results, err := jobs.SendDeadlineDigests(ctx, b.Store, b.Classifier, b.Mailer, opts)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Fprintln(w, "No digests to send")
		return nil
	}

	failed := 0
	for _, r := range results {
		state := "sent"
		switch {
		case r.Err != nil:
			state = "failed: " + r.Err.Error()
			failed++
		case opts.DryRun:
			state = "dry run"
		}
		fmt.Fprintf(w, "%s: %d pending -> %s (%s)\n", r.Office, r.Pending, strings.Join(r.Recipients, ", "), state)
		if opts.DryRun && r.Email != nil {
			fmt.Fprintf(w, "%s\n", r.Email.TextBody)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d digest(s) failed", failed)
	}
	return nil
}
