package routing

import (
	"context"
	"fmt"
	"log"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/good-yellow-bee/blazealert/internal/models"
)

// Watcher reloads a routing rules file when it changes on disk and
// hands the parsed rules to a callback. The callback owns applying
// them (the aggregator swaps its router's custom rules under its own
// lock).
type Watcher struct {
	path    string
	watcher *fsnotify.Watcher
	apply   func([]models.RoutingRule)
}

// NewWatcher creates a watcher for the given rules file. The file's
// directory is watched so editor rename-and-replace saves are seen.
func NewWatcher(path string, apply func([]models.RoutingRule)) (*Watcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve rules path: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	if err := fw.Add(filepath.Dir(absPath)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch rules directory: %w", err)
	}

	return &Watcher{
		path:    absPath,
		watcher: fw,
		apply:   apply,
	}, nil
}

// Run watches until the context is cancelled. A rules file that fails
// to parse is logged and skipped; the previous rules stay in effect.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			rules, err := LoadRulesFromFile(w.path)
			if err != nil {
				log.Printf("warning: reload routing rules: %v", err)
				continue
			}
			w.apply(rules)
			log.Printf("reloaded %d routing rules from %s", len(rules), w.path)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("warning: rules watcher: %v", err)
		}
	}
}
