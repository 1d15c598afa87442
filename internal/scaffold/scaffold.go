package scaffold

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/decyphertek-ai/adminotaur/internal/manifest"
	"github.com/decyphertek-ai/adminotaur/internal/registry"
)

//go:embed templates
var templateFS embed.FS

// stemToken in a template file name is replaced by the entry stem.
const stemToken = "ENTRY"

// Data holds all template variables available to scaffold templates.
type Data struct {
	ID          string // e.g. "web-search"
	Stem        string // entry file stem after aliasing, e.g. "web"
	DisplayName string
	Description string
	Version     string
	Mode        registry.ExecutionMode
	BinaryExt   string // e.g. ".mcp"
	ModuleName  string // native skills only
	Year        int
}

// Result holds the outcome of a scaffold generation.
type Result struct {
	OutputDir string
	Files     []string
	Warnings  []string
}

// NewData creates Data for a skill with derived fields populated.
func NewData(id string, mode registry.ExecutionMode, aliases map[string]string) *Data {
	id = strings.ToLower(id)
	return &Data{
		ID:          id,
		Stem:        registry.EntryStem(id, aliases),
		DisplayName: displayName(id),
		Description: fmt.Sprintf("Skill server %s", id),
		Version:     "0.1.0",
		Mode:        mode,
		BinaryExt:   ".mcp",
		ModuleName:  "example.com/skills/" + id,
		Year:        time.Now().Year(),
	}
}

// displayName turns "web-search" into "Web Search".
func displayName(id string) string {
	parts := strings.FieldsFunc(id, func(r rune) bool { return r == '-' || r == '_' })
	for i, p := range parts {
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}

// templateSetName returns the embedded directory name for a mode.
func templateSetName(mode registry.ExecutionMode) (string, error) {
	switch mode {
	case registry.InterpretedScript, registry.NativeBinary:
		return mode.String(), nil
	}
	return "", fmt.Errorf("%w: %d", registry.ErrUnknownMode, int(mode))
}

// Generate writes a new skill into outputDir, which must be empty or missing.
func Generate(data *Data, outputDir string) (*Result, error) {
	setName, err := templateSetName(data.Mode)
	if err != nil {
		return nil, err
	}
	templatesDir := path.Join("templates", setName)

	entries, err := fs.ReadDir(templateFS, templatesDir)
	if err != nil {
		return nil, fmt.Errorf("template set %q not found: %w", setName, err)
	}

	// Refuse to overwrite an existing skill.
	if existing, err := os.ReadDir(outputDir); err == nil && len(existing) > 0 {
		return nil, fmt.Errorf("output directory %s is not empty; remove existing files first", outputDir)
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	result := &Result{OutputDir: outputDir}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		tmplPath := path.Join(templatesDir, entry.Name())
		tmplBytes, err := fs.ReadFile(templateFS, tmplPath)
		if err != nil {
			return nil, fmt.Errorf("reading template %s: %w", tmplPath, err)
		}

		outName := strings.TrimSuffix(entry.Name(), ".tmpl")
		outName = strings.ReplaceAll(outName, stemToken, data.Stem)
		outPath := filepath.Join(outputDir, outName)

		tmpl, err := template.New(entry.Name()).Parse(string(tmplBytes))
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", entry.Name(), err)
		}

		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, data); err != nil {
			return nil, fmt.Errorf("executing template %s: %w", entry.Name(), err)
		}

		perm := os.FileMode(0644)
		if strings.HasPrefix(entry.Name(), stemToken) {
			perm = 0755
		}
		if err := os.WriteFile(outPath, buf.Bytes(), perm); err != nil {
			return nil, fmt.Errorf("writing %s: %w", outPath, err)
		}

		result.Files = append(result.Files, outName)
	}

	// Validate the generated manifest against the schema.
	manifestFile := filepath.Join(outputDir, manifest.FileName)
	if _, err := os.Stat(manifestFile); err == nil {
		valResult, valErr := manifest.ValidateFile(manifestFile)
		if valErr != nil {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("Could not validate manifest: %v", valErr))
		} else if !valResult.Valid {
			for _, issue := range valResult.Issues {
				result.Warnings = append(result.Warnings, issue.String())
			}
		}
	}

	return result, nil
}
