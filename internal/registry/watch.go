package registry

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watch rescans whenever the skill or app roots change and calls onChange
// with the new Catalog. It blocks until ctx is done. Roots that do not exist
// when Watch starts are not watched.
func (r *Registry) Watch(ctx context.Context, onChange func(*Catalog)) error {
	log := r.opts.Logger
	debounce := r.opts.Debounce

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer w.Close()

	watched := 0
	for _, root := range []string{r.roots.Skills, r.roots.LegacySkills, r.roots.Apps} {
		n, err := addTree(w, root)
		if err != nil {
			return err
		}
		watched += n
	}
	if watched == 0 {
		log.Warn("no existing roots to watch")
	}

	var (
		mu    sync.Mutex
		timer *time.Timer
		wg    sync.WaitGroup
	)
	fire := func() {
		defer wg.Done()
		if ctx.Err() != nil {
			return
		}
		cat := r.Refresh()
		if onChange != nil {
			onChange(cat)
		}
	}
	defer func() {
		mu.Lock()
		if timer != nil && timer.Stop() {
			wg.Done()
		}
		mu.Unlock()
		wg.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Chmod == fsnotify.Chmod {
				continue
			}
			// New skill directories need their own watch to see entry points land.
			if event.Op&fsnotify.Create == fsnotify.Create {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = w.Add(event.Name)
				}
			}
			log.Debug("store changed", zap.String("path", event.Name), zap.String("op", event.Op.String()))

			mu.Lock()
			if timer != nil && timer.Stop() {
				wg.Done()
			}
			wg.Add(1)
			timer = time.AfterFunc(debounce, fire)
			mu.Unlock()
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("watcher error", zap.Error(err))
		}
	}
}

// addTree watches root and its immediate visible subdirectories.
func addTree(w *fsnotify.Watcher, root string) (int, error) {
	if root == "" {
		return 0, nil
	}
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return 0, nil
	}
	if err := w.Add(root); err != nil {
		return 0, fmt.Errorf("watching %s: %w", root, err)
	}
	n := 1
	entries, err := os.ReadDir(root)
	if err != nil {
		return n, nil
	}
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if err := w.Add(filepath.Join(root, e.Name())); err == nil {
			n++
		}
	}
	return n, nil
}
