package manifest

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// DevVersion is the host version reported by unreleased builds.
const DevVersion = "dev"

// ErrIncompatible is returned when the host does not satisfy a manifest's
// requires constraint.
var ErrIncompatible = errors.New("incompatible host version")

// CheckCompatibility reports whether hostVersion satisfies the manifest's
// requires constraint. An empty constraint or a dev host always passes.
func (m *SkillManifest) CheckCompatibility(hostVersion string) error {
	if m == nil || strings.TrimSpace(m.Requires) == "" {
		return nil
	}
	if hostVersion == "" || hostVersion == DevVersion {
		return nil
	}

	constraint, err := semver.NewConstraint(m.Requires)
	if err != nil {
		return fmt.Errorf("parsing requires constraint %q: %w", m.Requires, err)
	}
	host, err := parseSemver(hostVersion)
	if err != nil {
		return fmt.Errorf("parsing host version %q: %w", hostVersion, err)
	}
	if !constraint.Check(host) {
		return fmt.Errorf("%w: host %s does not satisfy %s", ErrIncompatible, host, m.Requires)
	}
	return nil
}

// parseSemver strips a leading "v" and parses the version string.
func parseSemver(version string) (*semver.Version, error) {
	version = strings.TrimPrefix(version, "v")
	return semver.NewVersion(version)
}
