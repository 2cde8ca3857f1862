package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/lugondev/go-dexterity/internal/storage"
)

var (
	journalLimit  int
	journalOffset int
	journalJSON   bool
)

var journalCmd = &cobra.Command{
	Use:   "journal [FROM TO]",
	Short: "Show journaled routes",
	Long: `Show the routes recorded by previous route queries, newest first.

With FROM and TO only routes for that pair are shown.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 0 && len(args) != 2 {
			return fmt.Errorf("accepts 0 or 2 arg(s), received %d", len(args))
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		repo, err := a.requireRepository()
		if err != nil {
			return err
		}

		var routes []*storage.RouteModel
		if len(args) == 2 {
			routes, err = repo.Routes().FindByPair(ctx, args[0], args[1], journalLimit, journalOffset)
		} else {
			routes, err = repo.Routes().FindRecent(ctx, journalLimit)
		}
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if journalJSON {
			return writeJSON(out, routes)
		}
		if len(routes) == 0 {
			fmt.Fprintln(out, "No routes journaled")
			return nil
		}
		for _, rt := range routes {
			fmt.Fprintf(out, "%s  %s  %d -> %d (min %d, %d hops)\n",
				rt.CreatedAt.Format(time.RFC3339), rt.Path, rt.AmountIn, rt.AmountOut, rt.MinimumReceived, rt.Hops)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(journalCmd)

	journalCmd.Flags().IntVar(&journalLimit, "limit", 20, "maximum routes to show")
	journalCmd.Flags().IntVar(&journalOffset, "offset", 0, "routes to skip (pair queries only)")
	journalCmd.Flags().BoolVar(&journalJSON, "json", false, "print as JSON")
}
