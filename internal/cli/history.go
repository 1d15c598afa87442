package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	historyLimit int
	historyJSON  bool
)

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Number of invocations to show")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(historyCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent skill invocations",
	Long:  `Show the most recent invocations recorded in the journal, newest first.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !settings.Journal.Enabled {
			return failf(cmd, "The invocation journal is disabled (journal.enabled=false).")
		}
		j, err := openJournal()
		if err != nil {
			return err
		}
		defer j.Close()

		entries, err := j.Recent(cmd.Context(), historyLimit)
		if err != nil {
			return fmt.Errorf("reading journal: %w", err)
		}
		if historyJSON {
			return printJSON(cmd, entries)
		}
		if len(entries) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No invocations recorded.")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "WHEN\tSKILL\tMODE\tSTATUS\tLATENCY\tPREVIEW")
		for _, e := range entries {
			status := "ok"
			if !e.Succeeded {
				status = string(e.FailureKind)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.2fs\t%s\n",
				e.CreatedAt.Local().Format("2006-01-02 15:04:05"),
				e.SkillID, e.Mode, status, e.Latency.Seconds(), e.Preview)
		}
		return w.Flush()
	},
}
