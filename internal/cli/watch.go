package cli

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/decyphertek-ai/adminotaur/internal/registry"
)

func init() {
	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rescan the store whenever it changes",
	Long: `Watch the skill and application roots and print the refreshed catalog after
each change. Stops on interrupt.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, _, err := newRegistry()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		out := cmd.OutOrStdout()
		printCatalog := func(c *registry.Catalog) {
			fmt.Fprintf(out, "[%s] skills: %s | apps: %s\n",
				c.ScannedAt.Local().Format("15:04:05"),
				joinOrNone(c.SkillIDs()), joinOrNone(c.AppIDs()))
		}
		printCatalog(reg.Catalog())

		return reg.Watch(ctx, printCatalog)
	},
}

func joinOrNone(ids []string) string {
	if len(ids) == 0 {
		return "(none)"
	}
	return strings.Join(ids, ", ")
}
