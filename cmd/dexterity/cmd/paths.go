package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var pathsCmd = &cobra.Command{
	Use:   "paths FROM TO",
	Short: "List candidate paths between two tokens",
	Long:  `List every path from FROM to TO within the hop budget, in discovery order.`,
	Args:  cobra.ExactArgs(2),
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

		paths := r.FindAllPaths(args[0], args[1])
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%d path(s), max hops %d, strategy %s\n", len(paths), r.Config().MaxHops, r.Config().Strategy)
		for i, p := range paths {
			fmt.Fprintf(out, "  %d. %s\n", i+1, p)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pathsCmd)
}
