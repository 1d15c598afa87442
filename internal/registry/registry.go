package registry

import (
	"sync"
	"sync/atomic"
)

// Registry owns the current Catalog. Readers get an immutable snapshot;
// Refresh replaces it wholesale.
type Registry struct {
	roots   Roots
	opts    Options
	mu      sync.Mutex // serialises Refresh
	current atomic.Pointer[Catalog]
}

// New builds a Registry and performs the initial scan.
func New(roots Roots, opts Options) *Registry {
	r := &Registry{roots: roots, opts: opts.withDefaults()}
	r.Refresh()
	return r
}

// Refresh rescans the roots and installs the new Catalog.
func (r *Registry) Refresh() *Catalog {
	r.mu.Lock()
	defer r.mu.Unlock()
	cat := Scan(r.roots, r.opts)
	r.current.Store(cat)
	return cat
}

// Catalog returns the current snapshot.
func (r *Registry) Catalog() *Catalog {
	return r.current.Load()
}

// Skill looks up a skill in the current snapshot.
func (r *Registry) Skill(id string) (SkillEntry, bool) {
	return r.Catalog().Skill(id)
}

// App looks up an application in the current snapshot.
func (r *Registry) App(id string) (AppEntry, bool) {
	return r.Catalog().App(id)
}

// Roots returns the directories this registry scans.
func (r *Registry) Roots() Roots {
	return r.roots
}
