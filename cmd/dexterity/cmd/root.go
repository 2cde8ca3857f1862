package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lugondev/go-dexterity/internal/config"
)

var (
	cfgFile    string
	sourceKind string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "dexterity",
	Short: "Dexterity - swap route finder for two-asset vaults",
	Long: `Dexterity finds the best multi-hop swap route across a network of
two-asset liquidity vaults.

It provides commands for:
- Quoting the best route between two tokens
- Listing candidate paths and vaults
- Inspecting the token graph
- Encoding and decoding vault opcodes
- Snapshotting vaults and browsing the route journal`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	defaults := config.DefaultConfig()
	flags := rootCmd.PersistentFlags()

	flags.StringVar(&cfgFile, "config", "", "config file (default is ./.dexterity.yaml or $HOME/.dexterity.yaml)")
	flags.StringVar(&sourceKind, "source", "manifest", "vault source (manifest, database)")
	flags.String("manifest", defaults.Vaults.Manifest, "vault manifest file")
	flags.Int("max-hops", defaults.Router.MaxHops, "maximum number of vaults in a route")
	flags.String("strategy", defaults.Router.Strategy, "path strategy (vault-sequence, asset-sequence)")
	flags.String("log-level", defaults.Log.Level, "log level (debug, info, warn, error)")
	flags.String("log-format", defaults.Log.Format, "log format (text, json)")

	bind := map[string]string{
		"vaults.manifest": "manifest",
		"router.max_hops": "max-hops",
		"router.strategy": "strategy",
		"log.level":       "log-level",
		"log.format":      "log-format",
	}
	for key, flag := range bind {
		if err := viper.BindPFlag(key, flags.Lookup(flag)); err != nil {
			fmt.Fprintf(os.Stderr, "Error binding flag: %v\n", err)
		}
	}
}
