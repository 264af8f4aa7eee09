package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/shopforge/shopforge/internal/logging"
)

// ThemeWatcher watches a themes directory and reports debounced batches of
// asset changes. Rapid editor saves collapse into a single batch so the
// preview reloads once, not once per write.
type ThemeWatcher struct {
	watcher   *fsnotify.Watcher
	debouncer *debouncer
	root      string
	logger    logging.Logger

	mu       sync.RWMutex
	filters  []Filter
	handlers []Handler
}

// Change describes a single file change inside the themes directory.
type Change struct {
	Path    string
	ThemeID string
	Op      Op
	// Manifest is true when the change touched a theme.yml, which may
	// alter the set of sections the theme declares.
	Manifest bool
}

// Op classifies a change.
type Op int

const (
	OpCreated Op = iota
	OpModified
	OpDeleted
	OpRenamed
)

func (o Op) String() string {
	switch o {
	case OpCreated:
		return "created"
	case OpModified:
		return "modified"
	case OpDeleted:
		return "deleted"
	case OpRenamed:
		return "renamed"
	default:
		return "unknown"
	}
}

// Filter decides whether a path is worth reporting.
type Filter func(path string) bool

// Handler receives a debounced batch of changes.
type Handler func(changes []Change)

// New creates a watcher over the given themes directory. Call Start to
// begin delivering events and Stop to release the inotify handle.
func New(themesDir string, debounce time.Duration, logger logging.Logger) (*ThemeWatcher, error) {
	if logger == nil {
		logger = logging.Nop()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	root, err := filepath.Abs(filepath.Clean(themesDir))
	if err != nil {
		fsw.Close()
		return nil, err
	}

	tw := &ThemeWatcher{
		watcher: fsw,
		debouncer: &debouncer{
			delay:  debounce,
			events: make(chan Change, 100),
			output: make(chan []Change, 10),
		},
		root:    root,
		logger:  logger.WithComponent("watcher"),
		filters: []Filter{AssetFilter},
	}

	if err := tw.addRecursive(root); err != nil {
		fsw.Close()
		return nil, err
	}

	return tw, nil
}

// AddFilter narrows the set of reported paths. All filters must accept a
// path for it to be reported.
func (tw *ThemeWatcher) AddFilter(f Filter) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	tw.filters = append(tw.filters, f)
}

// AddHandler registers a handler for debounced change batches.
func (tw *ThemeWatcher) AddHandler(h Handler) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	tw.handlers = append(tw.handlers, h)
}

func (tw *ThemeWatcher) addRecursive(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return tw.watcher.Add(path)
		}
		return nil
	})
}

// Start launches the watch loop. It returns immediately; the loop stops
// when ctx is cancelled.
func (tw *ThemeWatcher) Start(ctx context.Context) {
	go tw.debouncer.run(ctx)
	go tw.dispatch(ctx)
	go tw.watchLoop(ctx)
}

// Stop releases the underlying fsnotify watcher.
func (tw *ThemeWatcher) Stop() error {
	tw.debouncer.stop()
	return tw.watcher.Close()
}

func (tw *ThemeWatcher) watchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-tw.watcher.Events:
			if !ok {
				return
			}
			tw.handleEvent(ctx, event)
		case err, ok := <-tw.watcher.Errors:
			if !ok {
				return
			}
			tw.logger.Warn(ctx, err, "watch error")
		}
	}
}

func (tw *ThemeWatcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	// New subdirectories (a freshly installed theme) need their own watch.
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := tw.watcher.Add(event.Name); err != nil {
				tw.logger.Warn(ctx, err, "watch new directory", "path", event.Name)
			}
			return
		}
	}

	tw.mu.RLock()
	filters := tw.filters
	tw.mu.RUnlock()

	for _, f := range filters {
		if !f(event.Name) {
			return
		}
	}

	var op Op
	switch {
	case event.Op&fsnotify.Create != 0:
		op = OpCreated
	case event.Op&fsnotify.Remove != 0:
		op = OpDeleted
	case event.Op&fsnotify.Rename != 0:
		op = OpRenamed
	default:
		op = OpModified
	}

	change := Change{
		Path:     event.Name,
		ThemeID:  tw.themeID(event.Name),
		Op:       op,
		Manifest: filepath.Base(event.Name) == "theme.yml",
	}

	select {
	case tw.debouncer.events <- change:
	default:
		// Burst beyond the buffer; the surviving events still trigger
		// the same reload.
	}
}

// themeID maps a path to the theme directory it lives under, or "" for
// paths directly in the themes root.
func (tw *ThemeWatcher) themeID(path string) string {
	rel, err := filepath.Rel(tw.root, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return ""
	}

	parts := strings.SplitN(filepath.ToSlash(rel), "/", 2)
	if len(parts) < 2 {
		return ""
	}

	return parts[0]
}

func (tw *ThemeWatcher) dispatch(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case changes := <-tw.debouncer.output:
			tw.mu.RLock()
			handlers := tw.handlers
			tw.mu.RUnlock()

			for _, h := range handlers {
				h(changes)
			}
		}
	}
}

// debouncer batches changes that arrive within delay of each other,
// deduplicated by path.
type debouncer struct {
	delay  time.Duration
	events chan Change
	output chan []Change

	mu      sync.Mutex
	timer   *time.Timer
	pending []Change
}

func (d *debouncer) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case change := <-d.events:
			d.add(change)
		}
	}
}

func (d *debouncer) add(change Change) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending = append(d.pending, change)

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.flush)
}

func (d *debouncer) flush() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.pending) == 0 {
		return
	}

	byPath := make(map[string]Change, len(d.pending))
	order := make([]string, 0, len(d.pending))
	for _, change := range d.pending {
		if _, seen := byPath[change.Path]; !seen {
			order = append(order, change.Path)
		}
		byPath[change.Path] = change
	}

	batch := make([]Change, 0, len(order))
	for _, path := range order {
		batch = append(batch, byPath[path])
	}

	select {
	case d.output <- batch:
	default:
	}

	d.pending = d.pending[:0]
}

func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
}

// AssetFilter accepts the file types a theme is made of.
func AssetFilter(path string) bool {
	switch filepath.Ext(path) {
	case ".yml", ".yaml", ".css", ".js", ".svg", ".woff2":
		return true
	default:
		return false
	}
}

// ManifestFilter accepts only theme manifests.
func ManifestFilter(path string) bool {
	return filepath.Base(path) == "theme.yml"
}
