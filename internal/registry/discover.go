package registry

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/decyphertek-ai/adminotaur/internal/manifest"
	"github.com/decyphertek-ai/adminotaur/internal/platform"
)

// Root labels recorded on SkillEntry.Root.
const (
	RootPrimary = "primary"
	RootLegacy  = "legacy"
)

// Skip reasons.
const (
	ReasonNoEntryPoint  = "no entry point"
	ReasonNotExecutable = "not executable"
	ReasonDuplicate     = "duplicate id"
	ReasonShadowed      = "shadowed by primary root"
	ReasonNoMainFile    = "no main entry file"
)

// Options tune a scan.
type Options struct {
	BinaryExt     string
	ScriptExt     string
	Aliases       map[string]string // directory id -> entry-point stem
	AppEntryFiles []string          // candidates under <app>/src/, first match wins
	HostVersion   string            // checked against skill.yaml requires
	Debounce      time.Duration     // Watch coalescing window
	Logger        *zap.Logger
}

// DefaultDebounce coalesces bursts of filesystem events into one rescan.
const DefaultDebounce = 500 * time.Millisecond

// DefaultOptions returns the stock extension and alias table.
func DefaultOptions() Options {
	return Options{
		BinaryExt:     ".mcp",
		ScriptExt:     ".py",
		Aliases:       map[string]string{"web-search": "web"},
		AppEntryFiles: []string{"main.py"},
		HostVersion:   manifest.DevVersion,
		Debounce:      DefaultDebounce,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.BinaryExt == "" {
		o.BinaryExt = d.BinaryExt
	}
	if o.ScriptExt == "" {
		o.ScriptExt = d.ScriptExt
	}
	if o.Aliases == nil {
		o.Aliases = d.Aliases
	}
	if len(o.AppEntryFiles) == 0 {
		o.AppEntryFiles = d.AppEntryFiles
	}
	if o.HostVersion == "" {
		o.HostVersion = d.HostVersion
	}
	if o.Debounce <= 0 {
		o.Debounce = d.Debounce
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// Scan reads the roots once and returns a new Catalog. It never fails:
// missing roots yield empty maps and unusable directories are recorded
// in Catalog.Skipped.
func Scan(roots Roots, opts Options) *Catalog {
	opts = opts.withDefaults()
	s := &scanner{
		opts: opts,
		log:  opts.Logger,
		cat: &Catalog{
			Skills:    make(map[string]SkillEntry),
			Apps:      make(map[string]AppEntry),
			ScannedAt: time.Now(),
		},
	}

	s.scanSkills(roots.Skills, RootPrimary)
	if roots.LegacySkills != "" && filepath.Clean(roots.LegacySkills) != filepath.Clean(roots.Skills) {
		s.scanSkills(roots.LegacySkills, RootLegacy)
	}
	s.scanApps(roots.Apps)

	s.log.Debug("registry scan complete",
		zap.Int("skills", len(s.cat.Skills)),
		zap.Int("apps", len(s.cat.Apps)),
		zap.Int("skipped", len(s.cat.Skipped)))
	return s.cat
}

type scanner struct {
	opts Options
	log  *zap.Logger
	cat  *Catalog
}

func (s *scanner) skip(path, reason string) {
	s.cat.Skipped = append(s.cat.Skipped, Skip{Path: path, Reason: reason})
	s.log.Debug("skipping directory", zap.String("path", path), zap.String("reason", reason))
}

// subdirs lists the visible immediate subdirectories of root, sorted by name.
// A missing or unreadable root yields nil.
func (s *scanner) subdirs(root, kind string) []os.DirEntry {
	if root == "" {
		return nil
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.log.Debug("root missing", zap.String("kind", kind), zap.String("path", root))
		} else {
			s.log.Warn("root unreadable", zap.String("kind", kind), zap.String("path", root), zap.Error(err))
		}
		return nil
	}

	var dirs []os.DirEntry
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		dirs = append(dirs, e)
	}
	return dirs
}

func (s *scanner) scanSkills(root, label string) {
	for _, d := range s.subdirs(root, "skills") {
		dir := filepath.Join(root, d.Name())
		id := normalizeID(d.Name())

		if existing, ok := s.cat.Skills[id]; ok {
			if existing.Root != label {
				s.skip(dir, ReasonShadowed)
			} else {
				s.skip(dir, ReasonDuplicate)
			}
			continue
		}

		mode, entry, reason := s.resolveEntryPoint(dir, id)
		if mode == 0 {
			s.skip(dir, reason)
			continue
		}

		m, err := manifest.Load(dir, s.opts.HostVersion)
		if err != nil {
			s.log.Warn("ignoring skill manifest", zap.String("skill", id), zap.Error(err))
			m = nil
		}

		s.cat.Skills[id] = SkillEntry{
			ID:          id,
			DisplayName: d.Name(),
			InstallPath: dir,
			Mode:        mode,
			EntryPoint:  entry,
			Root:        label,
			Manifest:    m,
		}
	}
}

// resolveEntryPoint tests the native binary first, then the script. A binary
// without an executable bit does not count as present.
func (s *scanner) resolveEntryPoint(dir, id string) (ExecutionMode, string, string) {
	stem := EntryStem(id, s.opts.Aliases)
	reason := ReasonNoEntryPoint

	bin := filepath.Join(dir, stem+s.opts.BinaryExt)
	if info, err := os.Stat(bin); err == nil && info.Mode().IsRegular() {
		if platform.IsExecutable(info) {
			return NativeBinary, bin, ""
		}
		reason = ReasonNotExecutable
	}

	script := filepath.Join(dir, stem+s.opts.ScriptExt)
	if info, err := os.Stat(script); err == nil && info.Mode().IsRegular() {
		return InterpretedScript, script, ""
	}
	return 0, "", reason
}

// EntryStem returns the entry-point file stem for a skill id, honouring the
// alias table for skills whose files are named differently from their
// directory.
func EntryStem(id string, aliases map[string]string) string {
	if stem, ok := aliases[id]; ok && stem != "" {
		return stem
	}
	return id
}

func (s *scanner) scanApps(root string) {
	for _, d := range s.subdirs(root, "apps") {
		dir := filepath.Join(root, d.Name())
		id := normalizeID(d.Name())

		if _, ok := s.cat.Apps[id]; ok {
			s.skip(dir, ReasonDuplicate)
			continue
		}

		entry := s.findMainFile(dir)
		if entry == "" {
			s.skip(dir, ReasonNoMainFile)
			continue
		}

		s.cat.Apps[id] = AppEntry{
			ID:            id,
			DisplayName:   d.Name(),
			InstallPath:   dir,
			MainEntryFile: entry,
		}
	}
}

func (s *scanner) findMainFile(dir string) string {
	for _, name := range s.opts.AppEntryFiles {
		p := filepath.Join(dir, "src", name)
		if info, err := os.Stat(p); err == nil && info.Mode().IsRegular() {
			return p
		}
	}
	return ""
}

func normalizeID(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
