package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/decyphertek-ai/adminotaur/internal/registry"
)

var (
	skillsJSON bool
	appsJSON   bool
)

func init() {
	skillsCmd.Flags().BoolVar(&skillsJSON, "json", false, "Output in JSON format")
	appsCmd.Flags().BoolVar(&appsJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(skillsCmd)
	rootCmd.AddCommand(appsCmd)
}

var skillsCmd = &cobra.Command{
	Use:   "skills",
	Short: "List installed skill servers",
	Long:  `List the skill servers discovered under <store>/mcp/ and the legacy skills root.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, _, err := newRegistry()
		if err != nil {
			return err
		}
		cat := reg.Catalog()

		entries := make([]registry.SkillEntry, 0, len(cat.Skills))
		for _, id := range cat.SkillIDs() {
			entries = append(entries, cat.Skills[id])
		}
		if skillsJSON {
			return printJSON(cmd, entries)
		}
		if len(entries) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No skills installed.")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tTITLE\tMODE\tVERSION\tENTRY")
		for _, e := range entries {
			title, version := "-", "-"
			if m := e.Manifest; m != nil {
				if m.Name != "" {
					title = m.Name
				}
				if m.Version != "" {
					version = m.Version
				}
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", e.ID, e.DisplayName, title, e.Mode, version, e.EntryPoint)
		}
		return w.Flush()
	},
}

var appsCmd = &cobra.Command{
	Use:   "apps",
	Short: "List launchable applications",
	Long:  `List the applications discovered under <store>/app/.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, _, err := newRegistry()
		if err != nil {
			return err
		}
		cat := reg.Catalog()

		entries := make([]registry.AppEntry, 0, len(cat.Apps))
		for _, id := range cat.AppIDs() {
			entries = append(entries, cat.Apps[id])
		}
		if appsJSON {
			return printJSON(cmd, entries)
		}
		if len(entries) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No applications installed.")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tMAIN")
		for _, e := range entries {
			fmt.Fprintf(w, "%s\t%s\t%s\n", e.ID, e.DisplayName, e.MainEntryFile)
		}
		return w.Flush()
	},
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}
