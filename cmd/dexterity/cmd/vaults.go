package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lugondev/go-dexterity/internal/datasource"
	"github.com/lugondev/go-dexterity/internal/vault"
)

var (
	vaultsToken string
	vaultsJSON  bool
)

var vaultsCmd = &cobra.Command{
	Use:   "vaults",
	Short: "Vault set commands",
}

var vaultsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the loaded vaults",
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

		var vaults []vault.Vault
		if vaultsToken != "" {
			vaults = r.VaultsForToken(vaultsToken)
		} else {
			vaults = r.Graph().Vaults()
		}

		descriptors := make([]vault.Descriptor, len(vaults))
		for i, v := range vaults {
			descriptors[i] = vault.Describe(v)
		}

		out := cmd.OutOrStdout()
		if vaultsJSON {
			return writeJSON(out, descriptors)
		}
		for _, d := range descriptors {
			fmt.Fprintf(out, "%-24s %-16s %s/%s reserves %d/%d fee %d\n",
				d.ID, d.Kind, d.TokenA, d.TokenB, d.ReserveA, d.ReserveB, d.Fee)
		}
		return nil
	},
}

var vaultsSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Store the manifest vault set in the database",
	Long: `Load the vault manifest and upsert its tokens and vaults into the
configured database, so that --source database serves the same set.`,
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

		src := datasource.NewManifestSource(a.cfg.Vaults.Manifest, nil)
		vaults, err := src.Vaults(ctx)
		if err != nil {
			return err
		}
		if err := datasource.Snapshot(ctx, repo, vaults); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Stored %d vault(s) from %s\n", len(vaults), src.Name())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(vaultsCmd)
	vaultsCmd.AddCommand(vaultsListCmd)
	vaultsCmd.AddCommand(vaultsSyncCmd)

	vaultsListCmd.Flags().StringVar(&vaultsToken, "token", "", "only vaults trading this token")
	vaultsListCmd.Flags().BoolVar(&vaultsJSON, "json", false, "print as JSON")
}
