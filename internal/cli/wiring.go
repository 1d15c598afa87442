package cli

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/decyphertek-ai/adminotaur/internal/journal"
	"github.com/decyphertek-ai/adminotaur/internal/registry"
	"github.com/decyphertek-ai/adminotaur/internal/runtime"
	"github.com/decyphertek-ai/adminotaur/internal/userdata"
)

// storeRoots resolves the store and its scan roots from settings.
func storeRoots() (string, registry.Roots, error) {
	store, err := settings.ResolveStoreRoot()
	if err != nil {
		return "", registry.Roots{}, fmt.Errorf("resolving store root: %w", err)
	}
	return store, registry.Roots{
		Skills:       userdata.GetSkillsRoot(store),
		Apps:         userdata.GetAppsRoot(store),
		LegacySkills: settings.LegacySkillsRoot,
	}, nil
}

func newRegistry() (*registry.Registry, string, error) {
	store, roots, err := storeRoots()
	if err != nil {
		return nil, "", err
	}
	reg := registry.New(roots, registry.Options{
		BinaryExt:     settings.Skills.BinaryExt,
		ScriptExt:     settings.Skills.ScriptExt,
		Aliases:       settings.Skills.Aliases,
		AppEntryFiles: settings.Apps.EntryFiles,
		HostVersion:   hostVersion(),
		Logger:        logger.Named("registry"),
	})
	return reg, store, nil
}

// newInvoker builds an invoker over reg. The returned closer releases the
// journal when one is enabled and must always be called.
func newInvoker(reg *registry.Registry) (*runtime.Invoker, func(), error) {
	cfg := runtime.Config{
		Timeout:       settings.Invoke.Timeout,
		KillGrace:     settings.Invoke.KillGrace,
		StderrPreview: settings.Invoke.StderrPreview,
		Interpreter:   settings.Skills.Interpreter,
		Logger:        logger.Named("invoker"),
	}
	closer := func() {}

	if settings.Journal.Enabled {
		j, err := openJournal()
		if err != nil {
			return nil, nil, err
		}
		cfg.Recorder = j
		closer = func() {
			if err := j.Close(); err != nil {
				logger.Warn("closing journal", zap.Error(err))
			}
		}
	}
	return runtime.NewInvoker(reg, cfg), closer, nil
}

func openJournal() (*journal.Journal, error) {
	path, err := settings.ResolveJournalPath()
	if err != nil {
		return nil, fmt.Errorf("resolving journal path: %w", err)
	}
	j, err := journal.Open(path)
	if err != nil {
		return nil, err
	}
	return j, nil
}
