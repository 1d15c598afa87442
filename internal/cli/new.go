package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/decyphertek-ai/adminotaur/internal/registry"
	"github.com/decyphertek-ai/adminotaur/internal/scaffold"
)

var (
	newMode        string
	newDescription string
	newDir         string
)

func init() {
	newCmd.Flags().StringVar(&newMode, "mode", "script", "Entry point kind: script (Python) or native (Go)")
	newCmd.Flags().StringVar(&newDescription, "description", "", "Description written to skill.yaml")
	newCmd.Flags().StringVar(&newDir, "dir", "", "Output directory (default <store>/mcp/<id>)")
	rootCmd.AddCommand(newCmd)
}

var newCmd = &cobra.Command{
	Use:   "new <id>",
	Short: "Scaffold a new skill server",
	Long: `Generate a skill directory with a skill.yaml manifest and an entry point
that reads one JSON request from stdin and writes one JSON reply.

  adminotaur new web-search            # mcp/web-search/web.py
  adminotaur new counter --mode native # mcp/counter/main.go, build counter.mcp`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := strings.ToLower(args[0])
		if id == "" || strings.HasPrefix(id, ".") || strings.ContainsAny(id, `/\`) {
			return fmt.Errorf("invalid skill id %q", args[0])
		}
		mode, err := registry.ParseExecutionMode(newMode)
		if err != nil {
			return err
		}

		outDir := newDir
		if outDir == "" {
			_, roots, err := storeRoots()
			if err != nil {
				return err
			}
			outDir = filepath.Join(roots.Skills, id)
		}

		data := scaffold.NewData(id, mode, settings.Skills.Aliases)
		data.BinaryExt = settings.Skills.BinaryExt
		if newDescription != "" {
			data.Description = newDescription
		}

		result, err := scaffold.Generate(data, outDir)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Created %s skill %q in %s\n", mode, id, result.OutputDir)
		for _, f := range result.Files {
			fmt.Fprintf(out, "  %s\n", f)
		}
		for _, w := range result.Warnings {
			fmt.Fprintf(out, "  [WARN] %s\n", w)
		}
		if mode == registry.NativeBinary {
			fmt.Fprintf(out, "\nBuild it with: (cd %s && go build -o %s%s .)\n", result.OutputDir, data.Stem, data.BinaryExt)
		}
		return nil
	},
}
