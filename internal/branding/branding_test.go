package branding

import "testing"

func TestEmbeddedValues(t *testing.T) {
	if got := CLIName(); got != "adminotaur" {
		t.Errorf("CLIName() = %q, want %q", got, "adminotaur")
	}
	if got := HomeDir(); got != ".decyphertek-ai" {
		t.Errorf("HomeDir() = %q, want %q", got, ".decyphertek-ai")
	}
}

func TestEnvVar(t *testing.T) {
	if got := EnvVar("store"); got != "ADMINOTAUR_STORE" {
		t.Errorf("EnvVar(store) = %q, want %q", got, "ADMINOTAUR_STORE")
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		data string
		want identity
	}{
		{"empty keeps fallback", "", fallback},
		{"invalid yaml keeps fallback", "cli_name: [", fallback},
		{"partial overlay", "cli_name: skillhost\nenv_prefix: ' '\n", identity{
			CLIName:     "skillhost",
			DisplayName: fallback.DisplayName,
			Description: fallback.Description,
			HomeDir:     fallback.HomeDir,
			EnvPrefix:   fallback.EnvPrefix,
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parse([]byte(tt.data)); got != tt.want {
				t.Errorf("parse() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
