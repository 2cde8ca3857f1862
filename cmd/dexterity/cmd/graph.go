package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var graphJSON bool

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Token graph commands",
	Long:  `Commands for inspecting the token graph built from the vault set.`,
}

var graphStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print graph statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		r, src, err := a.loadRouter(ctx)
		if err != nil {
			return err
		}

		stats := r.Stats()
		out := cmd.OutOrStdout()
		if graphJSON {
			return writeJSON(out, stats)
		}
		fmt.Fprintf(out, "Source: %s\n", src.Name())
		fmt.Fprintf(out, "  Tokens: %d\n", stats.NodeCount)
		fmt.Fprintf(out, "  Vaults: %d\n", stats.VaultCount)
		fmt.Fprintf(out, "  Edges:  %d\n", stats.EdgeCount)
		return nil
	},
}

var graphTokensCmd = &cobra.Command{
	Use:   "tokens",
	Short: "List the tokens in the graph",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		r, _, err := a.loadRouter(ctx)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if graphJSON {
			return writeJSON(out, r.Tokens())
		}
		for _, t := range r.Tokens() {
			fmt.Fprintf(out, "%-8s %s (%d decimals, %d vaults)\n", t.Symbol, t.ID, t.Decimals, len(r.VaultsForToken(t.ID)))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.AddCommand(graphStatsCmd)
	graphCmd.AddCommand(graphTokensCmd)

	graphCmd.PersistentFlags().BoolVar(&graphJSON, "json", false, "print as JSON")
}
