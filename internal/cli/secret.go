package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/decyphertek-ai/adminotaur/internal/userdata"
)

var secretNoRedact bool

func init() {
	secretShowCmd.Flags().BoolVar(&secretNoRedact, "no-redact", false, "Print the value without redaction")
	secretListCmd.Flags().BoolVar(&secretNoRedact, "no-redact", false, "Print values without redaction")
	secretCmd.AddCommand(secretSetCmd)
	secretCmd.AddCommand(secretShowCmd)
	secretCmd.AddCommand(secretListCmd)
	rootCmd.AddCommand(secretCmd)
}

var secretCmd = &cobra.Command{
	Use:   "secret",
	Short: "Manage credentials used by the host",
	Long: `Credentials are resolved from the process environment, then env/*.env files
under the home directory, then the OS keyring.`,
}

var secretSetCmd = &cobra.Command{
	Use:   "set <name> <value>",
	Short: "Store a credential in the OS keyring",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := userdata.StoreSecret(args[0], args[1]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Stored %s in the keyring\n", args[0])
		return nil
	},
}

var secretShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show where a credential resolves from",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		value, source, err := userdata.LookupSecret(name)
		if errors.Is(err, userdata.ErrSecretNotFound) {
			return failf(cmd, "%s not configured", name)
		}
		if err != nil {
			return err
		}
		if !secretNoRedact {
			value = userdata.RedactValue(name, value)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s=%s (%s)\n", name, value, source)
		return nil
	},
}

var secretListCmd = &cobra.Command{
	Use:   "list",
	Short: "List variables defined in env files",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := userdata.ListEnvFiles()
		if err != nil {
			return err
		}
		if len(files) == 0 {
			dir, _ := userdata.GetEnvDir()
			fmt.Fprintf(cmd.OutOrStdout(), "No env files found in %s\n", dir)
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "FILE\tKEY\tVALUE")
		for _, path := range files {
			entries, err := userdata.ParseEnvFile(path)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
				continue
			}
			for _, e := range entries {
				value := e.Value
				if !secretNoRedact {
					value = userdata.RedactValue(e.Key, value)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", filepath.Base(path), e.Key, value)
			}
		}
		return w.Flush()
	},
}
