package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/decyphertek-ai/adminotaur/internal/runtime"
)

var (
	invokeContext    string
	invokeTimeout    time.Duration
	invokeDiagnostic bool
	invokeRaw        bool
	invokeJSON       bool
)

func init() {
	invokeCmd.Flags().StringVar(&invokeContext, "context", "", "Opaque context string passed to the skill")
	invokeCmd.Flags().DurationVar(&invokeTimeout, "timeout", 0, "Override the invocation timeout")
	invokeCmd.Flags().BoolVar(&invokeDiagnostic, "diagnostic", false, "Force the skill's debug output on")
	invokeCmd.Flags().BoolVar(&invokeRaw, "raw", false, "Print the unparsed stdout of the skill")
	invokeCmd.Flags().BoolVar(&invokeJSON, "json", false, "Print the full result as JSON")
	rootCmd.AddCommand(invokeCmd)
}

var invokeCmd = &cobra.Command{
	Use:   "invoke <skill> <message...>",
	Short: "Send one request to a skill server",
	Long: `Invoke a skill server with a single message and print its reply.

  adminotaur invoke echo ping
  adminotaur invoke web-search "web search Describe Neuromancer 1984" --diagnostic`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, _, err := newRegistry()
		if err != nil {
			return err
		}
		inv, closeInvoker, err := newInvoker(reg)
		if err != nil {
			return err
		}
		defer closeInvoker()

		var opts []runtime.Option
		if invokeTimeout > 0 {
			opts = append(opts, runtime.WithTimeout(invokeTimeout))
		}
		if invokeDiagnostic {
			opts = append(opts, runtime.WithDiagnostics())
		}

		req := runtime.Request{Message: strings.Join(args[1:], " "), Context: invokeContext}
		res := inv.Invoke(cmd.Context(), args[0], req, opts...)

		out := cmd.OutOrStdout()
		switch {
		case invokeJSON:
			if err := printJSON(cmd, res); err != nil {
				return err
			}
		case invokeRaw && len(res.RawOutput) > 0:
			fmt.Fprintln(out, string(res.RawOutput))
		default:
			fmt.Fprintln(out, res.Text)
		}

		if !res.Succeeded {
			return ErrFailed
		}
		return nil
	},
}
