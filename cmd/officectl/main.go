package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"law_office_desk/config"
	"law_office_desk/services"
	"law_office_desk/services/i18n"

	"github.com/spf13/cobra"
)

// app holds what every subcommand needs. Backends are built on first use.
type app struct {
	cfg      *config.Config
	backends *services.Backends
}

func (a *app) init(ctx context.Context) error {
	if a.backends != nil {
		return nil
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	config.SetupLogger(cfg)
	if err := i18n.Load(); err != nil {
		return fmt.Errorf("load translations: %w", err)
	}
	i18n.SetDefault(cfg.DefaultLocale)

	backends, err := services.NewBackends(ctx, cfg)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.backends = backends
	return nil
}

func (a *app) close() {
	if a.backends != nil {
		a.backends.Close()
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:          "officectl",
		Short:        "Operator CLI for the law office desk",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd.Context())
		},
	}
	root.AddCommand(newFetchCmd(a), newDraftCmd(a), newDigestCmd(a), newCourtCmd(a))
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	a := &app{}

	err := newRootCmd(a).ExecuteContext(ctx)
	a.close()
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
