// Package watch re-checks files as they are saved, the way an editor
// integration would: each save replaces the previous diagnostics of the file.
package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Op is the kind of filesystem change.
type Op int

const (
	OpCreate Op = iota
	OpWrite
	OpRemove
	OpRename
)

func (op Op) String() string {
	switch op {
	case OpCreate:
		return "create"
	case OpWrite:
		return "write"
	case OpRemove:
		return "remove"
	case OpRename:
		return "rename"
	default:
		return "unknown"
	}
}

// Change is one filesystem event.
type Change struct {
	Path string
	Op   Op
	Time time.Time
}

// Options configure a Watcher.
type Options struct {
	Debounce   time.Duration // quiet period before a batch is delivered
	Ignore     []string      // base names or globs
	BufferSize int
	OnError    func(error) // fsnotify errors; nil drops them
}

// DefaultOptions returns the settings used by the watch command.
func DefaultOptions() Options {
	return Options{
		Debounce:   100 * time.Millisecond,
		Ignore:     []string{".git", "node_modules", ".idea", "*.swp", "*.tmp", "*~"},
		BufferSize: 1024,
	}
}

// Watcher delivers debounced, deduplicated batches of changes under a root
// directory. The handler is called from a single goroutine.
type Watcher struct {
	root    string
	fsw     *fsnotify.Watcher
	handler func([]Change)
	opts    Options

	changes  chan Change
	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// New creates a watcher for root. Call Start to begin watching.
func New(root string, handler func([]Change), opts *Options) (*Watcher, error) {
	o := DefaultOptions()
	if opts != nil {
		o = *opts
		if o.Debounce <= 0 {
			o.Debounce = DefaultOptions().Debounce
		}
		if o.BufferSize <= 0 {
			o.BufferSize = DefaultOptions().BufferSize
		}
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		root:    root,
		fsw:     fsw,
		handler: handler,
		opts:    o,
		changes: make(chan Change, o.BufferSize),
		done:    make(chan struct{}),
	}, nil
}

// Start watches root and its subdirectories until ctx ends or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.addRecursive(w.root); err != nil {
		return err
	}
	w.wg.Add(2)
	go w.processEvents(ctx)
	go w.debounceLoop(ctx)
	return nil
}

// Stop ends watching and waits for the goroutines. Pending changes are
// flushed to the handler first.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		_ = w.fsw.Close()
	})
	w.wg.Wait()
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // каталог исчез во время обхода
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && w.ignored(path) {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}

func (w *Watcher) ignored(path string) bool {
	base := filepath.Base(path)
	for _, pattern := range w.opts.Ignore {
		if base == pattern {
			return true
		}
		if ok, _ := filepath.Match(pattern, base); ok {
			return true
		}
	}
	return false
}

func (w *Watcher) processEvents(ctx context.Context) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if w.ignored(ev.Name) || ev.Op == fsnotify.Chmod {
				continue
			}
			select {
			case w.changes <- Change{Path: ev.Name, Op: convertOp(ev.Op), Time: time.Now()}:
			default:
				// буфер полон: событие теряется, следующий save его повторит
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					_ = w.addRecursive(ev.Name)
				}
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			if w.opts.OnError != nil {
				w.opts.OnError(err)
			}
		}
	}
}

func convertOp(op fsnotify.Op) Op {
	switch {
	case op.Has(fsnotify.Create):
		return OpCreate
	case op.Has(fsnotify.Write):
		return OpWrite
	case op.Has(fsnotify.Remove):
		return OpRemove
	case op.Has(fsnotify.Rename):
		return OpRename
	default:
		return OpWrite
	}
}

func (w *Watcher) debounceLoop(ctx context.Context) {
	defer w.wg.Done()
	var (
		batch  []Change
		timer  *time.Timer
		timerC <-chan time.Time
	)
	flush := func() {
		if len(batch) > 0 && w.handler != nil {
			w.handler(Dedup(batch))
		}
		batch = nil
		if timer != nil {
			timer.Stop()
			timer, timerC = nil, nil
		}
	}
	for {
		select {
		case <-ctx.Done():
			flush()
			return
		case <-w.done:
			flush()
			return
		case c := <-w.changes:
			batch = append(batch, c)
			if timer == nil {
				timer = time.NewTimer(w.opts.Debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.opts.Debounce)
			}
		case <-timerC:
			timer, timerC = nil, nil
			flush()
		}
	}
}

// Dedup keeps the last change per path, ordered by first appearance.
func Dedup(batch []Change) []Change {
	index := make(map[string]int, len(batch))
	out := make([]Change, 0, len(batch))
	for _, c := range batch {
		if i, ok := index[c.Path]; ok {
			out[i] = c
			continue
		}
		index[c.Path] = len(out)
		out = append(out, c)
	}
	return out
}
