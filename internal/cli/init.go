package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/decyphertek-ai/adminotaur/internal/branding"
	"github.com/decyphertek-ai/adminotaur/internal/config"
	"github.com/decyphertek-ai/adminotaur/internal/userdata"
)

func init() {
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the home directory and store layout",
	Long: fmt.Sprintf(`Create ~/%s with the store (app/, mcp/, agent/) and a secure env/ directory.
Existing directories and files are left untouched.`, branding.HomeDir()),
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.EnsureDir(); err != nil {
			return err
		}
		store, err := settings.ResolveStoreRoot()
		if err != nil {
			return err
		}
		if err := userdata.InitHome(cmd.OutOrStdout(), store); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Done.")
		return nil
	},
}
