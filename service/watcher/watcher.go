// Package watcher re-imports local note sources when they are saved.
package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is the quiet period collecting rapid saves into one batch
const DefaultDebounce = 300 * time.Millisecond

// Handler is called with sorted, deduplicated paths changed within one
// debounce window
type Handler func(ctx context.Context, paths []string) error

// Watcher watches local files and folders for writes
type Watcher struct {
	watcher    *fsnotify.Watcher
	handler    Handler
	logger     *zap.Logger
	debounce   time.Duration
	extensions []string
	mu         sync.Mutex
	pending    map[string]bool
	batches    int
}

// Add watches files and folders; folders are watched recursively
func (w *Watcher) Add(paths ...string) error {
	for _, path := range paths {
		path = strings.TrimPrefix(path, "file://")
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		if !info.IsDir() {
			if err = w.watcher.Add(path); err != nil {
				return fmt.Errorf("failed to watch %s: %w", path, err)
			}
			continue
		}
		if err = w.addTree(path); err != nil {
			return err
		}
	}
	return nil
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.IsDir() {
			return nil
		}
		if err = w.watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		w.logger.Debug("watching", zap.String("path", path))
		return nil
	})
}

// Batches returns number of handler invocations
func (w *Watcher) Batches() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.batches
}

// Close releases the watcher when Run is not used
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

// Run dispatches changes until ctx is done, then closes the watcher.
// Handler errors are logged and do not stop the loop.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if w.track(event) {
				timer.Reset(w.debounce)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", zap.Error(err))
		case <-timer.C:
			w.flush(ctx)
		}
	}
}

func (w *Watcher) track(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return false
	}
	info, err := os.Stat(event.Name)
	if err != nil {
		return false
	}
	if info.IsDir() {
		if event.Has(fsnotify.Create) {
			if err = w.addTree(event.Name); err != nil {
				w.logger.Warn("failed to watch new folder", zap.String("path", event.Name), zap.Error(err))
			}
		}
		return false
	}
	if !w.matches(event.Name) {
		return false
	}
	w.mu.Lock()
	w.pending[event.Name] = true
	w.mu.Unlock()
	return true
}

func (w *Watcher) flush(ctx context.Context) {
	w.mu.Lock()
	paths := make([]string, 0, len(w.pending))
	for path := range w.pending {
		paths = append(paths, path)
	}
	w.pending = map[string]bool{}
	if len(paths) > 0 {
		w.batches++
	}
	w.mu.Unlock()
	if len(paths) == 0 {
		return
	}
	sort.Strings(paths)
	w.logger.Debug("sources changed", zap.Strings("paths", paths))
	if err := w.handler(ctx, paths); err != nil {
		w.logger.Warn("failed to handle changes", zap.Strings("paths", paths), zap.Error(err))
	}
}

func (w *Watcher) matches(path string) bool {
	if len(w.extensions) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, candidate := range w.extensions {
		if ext == candidate {
			return true
		}
	}
	return false
}

// New creates a watcher
func New(handler Handler, options ...Option) (*Watcher, error) {
	if handler == nil {
		return nil, fmt.Errorf("handler cannot be nil")
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	ret := &Watcher{
		watcher:  watcher,
		handler:  handler,
		logger:   zap.NewNop(),
		debounce: DefaultDebounce,
		pending:  map[string]bool{},
	}
	for _, option := range options {
		option(ret)
	}
	return ret, nil
}

// Option represents watcher option
type Option func(w *Watcher)

// WithDebounce sets the quiet period
func WithDebounce(debounce time.Duration) Option {
	return func(w *Watcher) {
		if debounce > 0 {
			w.debounce = debounce
		}
	}
}

// WithExtensions restricts watched files to the lower-cased extensions
func WithExtensions(extensions ...string) Option {
	return func(w *Watcher) {
		w.extensions = nil
		for _, ext := range extensions {
			w.extensions = append(w.extensions, strings.ToLower(ext))
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}
