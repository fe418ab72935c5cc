package engine

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/pacpan/internal/logfields"
)

const defaultDebounce = 100 * time.Millisecond

// sourceWatcher reports changes to the files a build read.
type sourceWatcher struct {
	w        *fsnotify.Watcher
	debounce time.Duration
	ignore   []string
	emit     func(Event)

	mu      sync.Mutex
	files   map[string]struct{}
	dirs    map[string]struct{}
	pending []string
	timer   *time.Timer
	stopped bool

	done chan struct{}
}

func newSourceWatcher(debounce time.Duration, ignore []string, emit func(Event)) (*sourceWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("fsnotify: %w", err)
	}
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	abs := make([]string, 0, len(ignore))
	for _, p := range ignore {
		if a, err := filepath.Abs(p); err == nil {
			abs = append(abs, a)
		}
	}
	sw := &sourceWatcher{
		w:        w,
		debounce: debounce,
		ignore:   abs,
		emit:     emit,
		files:    map[string]struct{}{},
		dirs:     map[string]struct{}{},
		done:     make(chan struct{}),
	}
	go sw.loop()
	return sw, nil
}

// track replaces the watched file set and watches every directory holding one.
func (sw *sourceWatcher) track(files []string) {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	if sw.stopped {
		return
	}
	sw.files = make(map[string]struct{}, len(files))
	for _, f := range files {
		f = filepath.Clean(f)
		sw.files[f] = struct{}{}
		dir := filepath.Dir(f)
		if _, ok := sw.dirs[dir]; ok {
			continue
		}
		if err := sw.w.Add(dir); err != nil {
			slog.Warn("watch add failed", logfields.Path(dir), logfields.Error(err))
			continue
		}
		sw.dirs[dir] = struct{}{}
	}
}

func (sw *sourceWatcher) loop() {
	for {
		select {
		case ev, ok := <-sw.w.Events:
			if !ok {
				return
			}
			sw.handle(ev)
		case err, ok := <-sw.w.Errors:
			if !ok {
				return
			}
			sw.emit(Failed{Err: fmt.Errorf("watch sources: %w", err)})
		case <-sw.done:
			return
		}
	}
}

func (sw *sourceWatcher) handle(ev fsnotify.Event) {
	if ev.Op == fsnotify.Chmod || shouldIgnoreEvent(ev.Name) {
		return
	}
	path := filepath.Clean(ev.Name)
	if slices.Contains(sw.ignore, path) {
		return
	}

	sw.mu.Lock()
	defer sw.mu.Unlock()
	if sw.stopped {
		return
	}
	_, tracked := sw.files[path]
	// A new file may satisfy an import that failed to resolve.
	created := ev.Op.Has(fsnotify.Create) || ev.Op.Has(fsnotify.Rename)
	if !tracked && !created {
		return
	}
	slog.Debug("Source change detected", logfields.Path(path), slog.String("op", ev.Op.String()))
	if !slices.Contains(sw.pending, path) {
		sw.pending = append(sw.pending, path)
	}
	if sw.timer != nil {
		sw.timer.Stop()
	}
	sw.timer = time.AfterFunc(sw.debounce, sw.flush)
}

func (sw *sourceWatcher) flush() {
	sw.mu.Lock()
	if sw.stopped || len(sw.pending) == 0 {
		sw.mu.Unlock()
		return
	}
	paths := sw.pending
	sw.pending = nil
	sw.mu.Unlock()
	sw.emit(Updated{Paths: paths})
}

func (sw *sourceWatcher) close() error {
	sw.mu.Lock()
	if sw.stopped {
		sw.mu.Unlock()
		return nil
	}
	sw.stopped = true
	if sw.timer != nil {
		sw.timer.Stop()
	}
	sw.mu.Unlock()
	close(sw.done)
	return sw.w.Close()
}

// shouldIgnoreEvent returns true for hidden, editor swap and temp files.
func shouldIgnoreEvent(path string) bool {
	base := filepath.Base(path)

	if strings.HasPrefix(base, ".") {
		return true
	}
	if strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		strings.HasSuffix(base, ".tmp") ||
		strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#") {
		return true
	}
	return base == ".DS_Store" || base == "Thumbs.db"
}
