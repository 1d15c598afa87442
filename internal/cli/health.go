package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/decyphertek-ai/adminotaur/internal/health"
	"github.com/decyphertek-ai/adminotaur/internal/userdata"
)

var (
	healthCheckStore bool
	healthFix        bool
	healthJSON       bool
	healthSkipSkills bool
	healthSkipAI     bool
	healthParallel   int
	healthVerbose    bool
)

func init() {
	healthCmd.Flags().BoolVar(&healthCheckStore, "check-store", false, "Verify the store directories before probing")
	healthCmd.Flags().BoolVar(&healthFix, "fix", false, "Create missing store directories (with --check-store)")
	healthCmd.Flags().BoolVar(&healthJSON, "json", false, "Output the report as JSON")
	healthCmd.Flags().BoolVar(&healthSkipSkills, "skip-skills", false, "Do not probe skill servers")
	healthCmd.Flags().BoolVar(&healthSkipAI, "skip-ai", false, "Do not probe the AI endpoint")
	healthCmd.Flags().IntVar(&healthParallel, "parallel", 0, "Concurrent skill probes (default health.parallelism)")
	healthCmd.Flags().BoolVar(&healthVerbose, "verbose", false, "Show raw skill stdout and stderr (implied by --log-level debug)")
	rootCmd.AddCommand(healthCmd)
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Probe every skill and the AI endpoint",
	Long: `Run the health harness: list the catalog, read the agent capability file,
send a canned probe to every skill server and check the AI completion endpoint.
Exits non-zero when any check fails.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, store, err := newRegistry()
		if err != nil {
			return err
		}
		roots := reg.Roots()

		if healthCheckStore {
			userdata.CheckStore(cmd.OutOrStdout(), []userdata.StoreRoot{
				{Label: "store", Path: store},
				{Label: "skills", Path: roots.Skills},
				{Label: "apps", Path: roots.Apps},
				{Label: "agent", Path: userdata.GetAgentRoot(store)},
			}, healthFix)
			if healthFix {
				reg.Refresh()
			}
		}

		inv, closeInvoker, err := newInvoker(reg)
		if err != nil {
			return err
		}
		defer closeInvoker()

		parallel := settings.Health.Parallelism
		if healthParallel > 0 {
			parallel = healthParallel
		}

		h := health.New(reg.Catalog, inv, health.Config{
			StoreRoot:   store,
			Roots:       roots,
			Probes:      settings.Health.Probes,
			Parallelism: parallel,
			Verbose:     healthVerbose || strings.EqualFold(settings.Logging.Level, "debug"),
			SkipSkills:  healthSkipSkills,
			SkipAI:      healthSkipAI,
			Logger:      logger.Named("health"),
			Endpoint: health.EndpointConfig{
				KeyName: settings.AI.APIKeyName,
				BaseURL: settings.AI.BaseURL,
				Model:   settings.AI.Model,
				Prompt:  settings.AI.ProbePrompt,
				Timeout: settings.AI.Timeout,
			},
		})
		report := h.Run(cmd.Context())

		if healthJSON {
			if err := printJSON(cmd, report); err != nil {
				return err
			}
		} else if err := report.Render(cmd.OutOrStdout()); err != nil {
			return err
		}

		if !report.OK() {
			return ErrFailed
		}
		return nil
	},
}
