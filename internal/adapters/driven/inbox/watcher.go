// Package inbox watches an intake folder for new client files.
package inbox

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/kyc-onboard/internal/adapters/driven/storage/file"
	"github.com/custodia-labs/kyc-onboard/internal/logger"
)

// Watcher reports client files created or rewritten in a directory.
type Watcher struct {
	dir string
}

// New creates a watcher for dir.
func New(dir string) *Watcher {
	return &Watcher{dir: dir}
}

// Dir returns the watched directory.
func (w *Watcher) Dir() string {
	return w.dir
}

// Existing returns the client files already in the directory, sorted by name.
func (w *Watcher) Existing() ([]string, error) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return nil, fmt.Errorf("read inbox: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || isHidden(e.Name()) {
			continue
		}
		path := filepath.Join(w.dir, e.Name())
		if file.IsClientFile(path) {
			paths = append(paths, path)
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// Watch emits the path of each client file created or written until ctx is
// cancelled. The same path may be emitted more than once while a file is
// being written.
func (w *Watcher) Watch(ctx context.Context) (<-chan string, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(w.dir); err != nil {
		_ = fw.Close() //nolint:errcheck // already failing
		return nil, fmt.Errorf("watch %s: %w", w.dir, err)
	}

	paths := make(chan string)
	go func() {
		defer close(paths)
		defer fw.Close() //nolint:errcheck // shutdown path

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-fw.Events:
				if !ok {
					return
				}
				path, ok := w.handleEvent(event)
				if !ok {
					continue
				}
				select {
				case paths <- path:
				case <-ctx.Done():
					return
				}
			case err, ok := <-fw.Errors:
				if !ok {
					return
				}
				logger.Warn("inbox watcher: %v", err)
			}
		}
	}()
	return paths, nil
}

// handleEvent filters raw events down to created or written client files.
func (w *Watcher) handleEvent(event fsnotify.Event) (string, bool) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return "", false
	}
	if isHidden(filepath.Base(event.Name)) || !file.IsClientFile(event.Name) {
		return "", false
	}
	info, err := os.Stat(event.Name)
	if err != nil || info.IsDir() {
		return "", false
	}
	return event.Name, true
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
