// Package branding holds the product identity baked into the binary from
// branding.yaml.
package branding

import (
	_ "embed"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"
)

//go:embed branding.yaml
var rawBranding []byte

type identity struct {
	CLIName     string `yaml:"cli_name"`
	DisplayName string `yaml:"display_name"`
	Description string `yaml:"description"`
	HomeDir     string `yaml:"home_dir"`
	EnvPrefix   string `yaml:"env_prefix"`
}

var fallback = identity{
	CLIName:     "adminotaur",
	DisplayName: "Adminotaur",
	Description: "Skill host and supervisor agent",
	HomeDir:     ".decyphertek-ai",
	EnvPrefix:   "ADMINOTAUR",
}

var current = sync.OnceValue(func() identity { return parse(rawBranding) })

// parse overlays data on the fallback identity. Blank or unparsable fields
// keep their fallback value.
func parse(data []byte) identity {
	var in identity
	if err := yaml.Unmarshal(data, &in); err != nil {
		return fallback
	}
	out := fallback
	for _, f := range []struct{ dst *string; src string }{
		{&out.CLIName, in.CLIName},
		{&out.DisplayName, in.DisplayName},
		{&out.Description, in.Description},
		{&out.HomeDir, in.HomeDir},
		{&out.EnvPrefix, in.EnvPrefix},
	} {
		if s := strings.TrimSpace(f.src); s != "" {
			*f.dst = s
		}
	}
	return out
}

// CLIName returns the root command name.
func CLIName() string { return current().CLIName }

// DisplayName returns the human-readable product name.
func DisplayName() string { return current().DisplayName }

func Description() string { return current().Description }

// HomeDir returns the dot-directory name under $HOME.
func HomeDir() string { return current().HomeDir }

func EnvPrefix() string { return current().EnvPrefix }

// EnvVar qualifies suffix with the env prefix: EnvVar("store") is ADMINOTAUR_STORE.
func EnvVar(suffix string) string {
	return current().EnvPrefix + "_" + strings.ToUpper(suffix)
}
