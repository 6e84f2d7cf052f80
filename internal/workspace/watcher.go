package workspace

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/standardbeagle/sourcepawn-studio-go/internal/config"
	"github.com/standardbeagle/sourcepawn-studio-go/internal/splog"
	"github.com/standardbeagle/sourcepawn-studio-go/internal/vfs"
)

// Watcher follows on-disk changes under a workspace's roots and mirrors
// them into a vfs.VFS via SetFileText/DeleteFile, the same two calls
// Load uses for the initial scan. Grounded on the teacher's
// internal/indexing.FileWatcher: one fsnotify.Watcher, one watch per
// directory (fsnotify has no recursive mode), one goroutine draining
// events until Stop cancels the context.
type Watcher struct {
	fs       *fsnotify.Watcher
	vfs      *vfs.VFS
	excluder *config.Excluder

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWatcher creates a Watcher and adds a recursive fsnotify watch under
// every directory in roots that Excluder doesn't reject.
func NewWatcher(v *vfs.VFS, cfg *config.Config) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{fs: fsw, vfs: v, excluder: config.NewExcluder(cfg)}

	visited := map[string]bool{}
	for _, root := range cfg.Roots {
		if err := w.addDirs(root, visited); err != nil {
			fsw.Close()
			return nil, err
		}
	}
	return w, nil
}

func (w *Watcher) addDirs(root string, visited map[string]bool) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil || !d.IsDir() {
			return nil
		}
		real, err := filepath.EvalSymlinks(path)
		if err != nil {
			return nil
		}
		if visited[real] {
			return filepath.SkipDir
		}
		visited[real] = true
		if w.excluder.Match(path) {
			return filepath.SkipDir
		}
		return w.fs.Add(path)
	})
}

// Start runs the event loop until ctx is done or Stop is called.
func (w *Watcher) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.wg.Add(1)
	go w.run(ctx)
}

// Stop cancels the event loop and closes the underlying fsnotify watcher.
func (w *Watcher) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
	w.fs.Close()
}

func (w *Watcher) run(ctx context.Context) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			splog.VFS("watcher error: %v", err)
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if w.excluder.Match(ev.Name) {
		return
	}
	switch {
	case ev.Op&fsnotify.Remove != 0, ev.Op&fsnotify.Rename != 0:
		w.vfs.DeleteFile(abs(ev.Name))
	case ev.Op&fsnotify.Write != 0, ev.Op&fsnotify.Create != 0:
		if !sourceExtensions[strings.ToLower(filepath.Ext(ev.Name))] {
			return
		}
		text, err := os.ReadFile(ev.Name)
		if err != nil {
			return
		}
		w.vfs.SetFileText(abs(ev.Name), string(text))
	}
}

func abs(path string) string {
	a, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return a
}
