package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/decyphertek-ai/adminotaur/internal/branding"
	"github.com/decyphertek-ai/adminotaur/internal/config"
	"github.com/decyphertek-ai/adminotaur/internal/logging"
)

// ErrFailed is returned by commands that already reported their failure on
// stdout; callers should exit non-zero without printing it again.
var ErrFailed = errors.New("command reported failure")

var (
	buildVersion string
	buildCommit  string
	buildDate    string
)

var (
	flagStore    string
	flagLogLevel string

	settings *config.Settings
	logger   = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` discovers installed skill servers and applications, invokes skills over
their stdin/stdout JSON protocol and checks the health of the whole installation.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := config.Load()
		if err != nil {
			return err
		}
		if flagStore != "" {
			s.StoreRoot = flagStore
		}
		if flagLogLevel != "" {
			s.Logging.Level = flagLogLevel
		}
		settings = s

		l, err := logging.New(s.Logging.Level, s.Logging.Format)
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagStore, "store", "", "Store root (default ~/"+branding.HomeDir()+"/store)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")
}

// Execute runs the root command with build info injected via ldflags.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date
	return rootCmd.Execute()
}

// hostVersion is the version checked against skill manifest constraints.
func hostVersion() string {
	if buildVersion == "" {
		return "dev"
	}
	return buildVersion
}

func failf(cmd *cobra.Command, format string, args ...any) error {
	fmt.Fprintf(cmd.ErrOrStderr(), format+"\n", args...)
	return ErrFailed
}
