package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lugondev/go-dexterity/internal/datasource"
	"github.com/lugondev/go-dexterity/internal/graph"
	"github.com/lugondev/go-dexterity/internal/vault"
)

var serveSnapshot bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Keep a router loaded and refresh its vault set",
	Long: `Load the vault set, then poll the source every vaults.refresh_interval and
rebuild the graph whenever the set changes. With metrics.backend prometheus
the router metrics are served on metrics.addr.

With --snapshot every reloaded set is also stored in the database.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().BoolVar(&serveSnapshot, "snapshot", false, "store every reloaded vault set in the database")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	src, err := a.source()
	if err != nil {
		return err
	}
	r, err := a.buildRouter()
	if err != nil {
		return err
	}
	if serveSnapshot {
		if _, err := a.requireRepository(); err != nil {
			return err
		}
	}

	loader := datasource.LoaderFunc(func(vaults []vault.Vault) graph.Stats {
		stats := r.LoadVaults(vaults)
		if serveSnapshot {
			if err := datasource.Snapshot(ctx, a.repo, vaults); err != nil {
				a.logger.Warn("failed to snapshot vault set", "error", err)
			}
		}
		return stats
	})

	refresher := datasource.NewRefresher(src, loader, a.cfg.Vaults.RefreshInterval)
	refresher.SetLogger(a.logger)

	err = refresher.Run(ctx)
	a.logger.Info("router stopped", "diagnostics", r.Diagnostics())
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
