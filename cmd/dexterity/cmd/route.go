package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	routererrors "github.com/lugondev/go-dexterity/internal/errors"
	"github.com/lugondev/go-dexterity/internal/processor"
	"github.com/lugondev/go-dexterity/pkg/types"
)

var (
	routeJSON     bool
	routeUnits    bool
	routeRank     bool
	routeSlippage uint32
)

var routeCmd = &cobra.Command{
	Use:   "route FROM TO AMOUNT",
	Short: "Find the best route between two tokens",
	Long: `Find the route that converts AMOUNT of FROM into the most TO.

AMOUNT is in raw integer units unless --units is given.

Example:
  dexterity route .stx SP2ZNGJ85ENDY6QRHQ5P2D4FXKGZWCKTB2T0Z55KS.charisma-token 1000000
  dexterity route .stx SP2ZNGJ85ENDY6QRHQ5P2D4FXKGZWCKTB2T0Z55KS.charisma-token 1.5 --units --json`,
	Args: cobra.ExactArgs(3),
	RunE: runRoute,
}

func init() {
	rootCmd.AddCommand(routeCmd)

	routeCmd.Flags().BoolVar(&routeJSON, "json", false, "print the route as JSON")
	routeCmd.Flags().BoolVar(&routeUnits, "units", false, "AMOUNT is in whole token units")
	routeCmd.Flags().BoolVar(&routeRank, "rank", false, "print every priced route, best first")
	routeCmd.Flags().Uint32Var(&routeSlippage, "slippage", 50, "slippage tolerance in basis points")
}

func runRoute(cmd *cobra.Command, args []string) error {
	if routeSlippage > 10_000 {
		return fmt.Errorf("slippage must be at most 10000 bps, got %d", routeSlippage)
	}

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

	from, to := args[0], args[1]
	token, ok := r.Token(from)
	if !ok {
		token = types.Token{ID: from}
	}
	amount, err := parseAmount(args[2], token, routeUnits)
	if err != nil {
		return routererrors.InvalidAmount(err.Error())
	}

	out := cmd.OutOrStdout()
	strategy := r.Config().Strategy

	if routeRank {
		routes, err := r.RankRoutes(ctx, from, to, amount)
		if err != nil {
			return err
		}
		views := make([]routeView, len(routes))
		for i, rt := range routes {
			views[i] = newRouteView(processor.NewResult(rt, strategy, routeSlippage))
		}
		if routeJSON {
			return writeJSON(out, views)
		}
		for i, v := range views {
			fmt.Fprintf(out, "%d. %s -> %d\n", i+1, v.Route, v.AmountOut)
		}
		return nil
	}

	rt, err := r.FindBestRoute(ctx, from, to, amount)
	if err != nil {
		return err
	}
	res := processor.NewResult(rt, strategy, routeSlippage)
	if err := a.processor().Process(ctx, res, a.metrics); err != nil {
		return err
	}

	if routeJSON {
		return writeJSON(out, newRouteView(res))
	}
	printRoute(out, res)
	return nil
}
