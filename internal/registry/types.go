package registry

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/decyphertek-ai/adminotaur/internal/manifest"
)

// ExecutionMode selects how a skill's entry point is launched.
type ExecutionMode int

const (
	// NativeBinary entries are executed directly.
	NativeBinary ExecutionMode = iota + 1
	// InterpretedScript entries are run through an interpreter.
	InterpretedScript
)

// ErrUnknownMode is returned when parsing an unrecognised mode name.
var ErrUnknownMode = errors.New("unknown execution mode")

func (m ExecutionMode) String() string {
	switch m {
	case NativeBinary:
		return "native"
	case InterpretedScript:
		return "script"
	default:
		return fmt.Sprintf("ExecutionMode(%d)", int(m))
	}
}

// MarshalText renders the mode by name for JSON output.
func (m ExecutionMode) MarshalText() ([]byte, error) {
	switch m {
	case NativeBinary, InterpretedScript:
		return []byte(m.String()), nil
	}
	return nil, fmt.Errorf("%w: %d", ErrUnknownMode, int(m))
}

// UnmarshalText parses a mode name.
func (m *ExecutionMode) UnmarshalText(b []byte) error {
	mode, err := ParseExecutionMode(string(b))
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

// ParseExecutionMode maps "native" or "script" to its ExecutionMode.
func ParseExecutionMode(s string) (ExecutionMode, error) {
	switch s {
	case "native":
		return NativeBinary, nil
	case "script":
		return InterpretedScript, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// SkillEntry is one discovered skill server.
type SkillEntry struct {
	ID          string                  `json:"id"`
	DisplayName string                  `json:"display_name"`
	InstallPath string                  `json:"install_path"`
	Mode        ExecutionMode           `json:"mode"`
	EntryPoint  string                  `json:"entry_point"`
	Root        string                  `json:"root"` // "primary" or "legacy"
	Manifest    *manifest.SkillManifest `json:"manifest,omitempty"`
}

// AppEntry is one launchable sibling application.
type AppEntry struct {
	ID            string `json:"id"`
	DisplayName   string `json:"display_name"`
	InstallPath   string `json:"install_path"`
	MainEntryFile string `json:"main_entry_file"`
}

// Skip records a directory the scan passed over and why.
type Skip struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// Roots are the directories a scan reads. Any of them may be empty or missing.
type Roots struct {
	Skills       string
	Apps         string
	LegacySkills string
}

// Catalog is the result of one scan. It is never mutated after Scan returns.
type Catalog struct {
	Skills    map[string]SkillEntry
	Apps      map[string]AppEntry
	Skipped   []Skip
	ScannedAt time.Time
}

// Skill looks up a skill by lower-cased id.
func (c *Catalog) Skill(id string) (SkillEntry, bool) {
	if c == nil {
		return SkillEntry{}, false
	}
	e, ok := c.Skills[normalizeID(id)]
	return e, ok
}

// App looks up an application by lower-cased id.
func (c *Catalog) App(id string) (AppEntry, bool) {
	if c == nil {
		return AppEntry{}, false
	}
	e, ok := c.Apps[normalizeID(id)]
	return e, ok
}

// SkillIDs returns the skill ids in sorted order.
func (c *Catalog) SkillIDs() []string {
	if c == nil {
		return nil
	}
	return sortedKeys(c.Skills)
}

// AppIDs returns the application ids in sorted order.
func (c *Catalog) AppIDs() []string {
	if c == nil {
		return nil
	}
	return sortedKeys(c.Apps)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
