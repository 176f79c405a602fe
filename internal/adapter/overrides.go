package adapter

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Chat platforms redesign their DOM without notice. The override file
// lets operators ship replacement selector lists for a platform without
// a redeploy; the watcher applies them on every write.

// LoadOverrides parses a selector override file: a YAML map of platform
// id to SelectorSet.
func LoadOverrides(path string) (map[string]SelectorSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read overrides: %w", err)
	}
	sets := make(map[string]SelectorSet)
	if err := yaml.Unmarshal(data, &sets); err != nil {
		return nil, fmt.Errorf("parse overrides: %w", err)
	}
	return sets, nil
}

// WatchOverrides loads the file now and reapplies it whenever it
// changes. The returned stop function ends the watch.
func WatchOverrides(path string, reg *Registry, log *zap.Logger) (func(), error) {
	if log == nil {
		log = zap.NewNop()
	}

	apply := func() {
		sets, err := LoadOverrides(path)
		if err != nil {
			log.Warn("selector overrides unreadable", zap.String("path", path), zap.Error(err))
			return
		}
		n := reg.ApplyOverrides(sets)
		log.Info("selector overrides applied", zap.String("path", path), zap.Int("platforms", n))
	}

	if _, err := os.Stat(path); err == nil {
		apply()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	// Watch the directory: editors replace files, which drops a watch
	// on the file itself.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}

	done := make(chan struct{})
	go func() {
		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != filepath.Clean(path) {
					continue
				}
				if ev.Op.Has(fsnotify.Write) || ev.Op.Has(fsnotify.Create) {
					apply()
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warn("override watcher error", zap.Error(err))
			case <-done:
				return
			}
		}
	}()

	return func() {
		close(done)
		watcher.Close()
	}, nil
}
