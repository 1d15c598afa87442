package manifest

import (
	"fmt"
	"time"
)

// FileName is the sidecar file looked up in every skill directory.
const FileName = "skill.yaml"

// SkillManifest is the decoded form of skill.yaml. Every field is optional.
type SkillManifest struct {
	Name        string `yaml:"name,omitempty" json:"name,omitempty"`
	Version     string `yaml:"version,omitempty" json:"version,omitempty"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Requires    string `yaml:"requires,omitempty" json:"requires,omitempty"`
	Probe       string `yaml:"probe,omitempty" json:"probe,omitempty"`
	Timeout     string `yaml:"timeout,omitempty" json:"timeout,omitempty"`
}

// TimeoutDuration returns the per-skill timeout override, or zero when unset.
func (m *SkillManifest) TimeoutDuration() (time.Duration, error) {
	if m == nil || m.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(m.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: %w", m.Timeout, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("timeout %q must be positive", m.Timeout)
	}
	return d, nil
}
