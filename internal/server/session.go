package server

import (
	"context"
	"sync"

	"github.com/shopforge/shopforge/internal/blocks"
	"github.com/shopforge/shopforge/internal/draft"
	"github.com/shopforge/shopforge/internal/editor"
	"github.com/shopforge/shopforge/internal/logging"
	"github.com/shopforge/shopforge/internal/preview"
	"github.com/shopforge/shopforge/internal/renderer"
	"github.com/shopforge/shopforge/internal/store"
)

// Session is the single editing session the preview host serves. The editor
// and draft carry no locking of their own; the session mutex serializes
// every mutation and read that crosses the HTTP boundary, and every
// successful structural or content change is republished to the preview
// channel before the call returns.
type Session struct {
	mu      sync.Mutex
	editor  *editor.Editor
	sync    *preview.Synchronizer
	themes  *renderer.Registry
	gateway store.Gateway
	logger  logging.Logger
}

// NewSession wires a draft to the preview synchronizer. sink receives each
// serialized publication; the caller connects it to the websocket channel.
func NewSession(d *draft.Draft, themes *renderer.Registry, gateway store.Gateway, sink preview.Sink, logger logging.Logger) *Session {
	if logger == nil {
		logger = logging.Nop()
	}

	s := &Session{
		sync:    preview.New(sink, logger),
		themes:  themes,
		gateway: gateway,
		logger:  logger.WithComponent("session"),
	}
	s.editor = editor.New(d, logger, s.onChange, themes.Has)

	return s
}

// onChange runs inside editor mutations, which in turn run under s.mu.
func (s *Session) onChange(editor.Change) {
	s.publishLocked()
}

func (s *Session) publishLocked() {
	if err := s.sync.Publish(s.editor.Draft().Snapshot()); err != nil {
		s.logger.Error(context.Background(), err, "publish draft")
	}
}

// Publish pushes the current draft to the preview channel unconditionally.
// Used on startup and when a renderer reconnects.
func (s *Session) Publish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.publishLocked()
}

// InvalidatePreview drops the running renderer instance and republishes,
// forcing a hard reload. Called when assets of the active theme change.
func (s *Session) InvalidatePreview() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sync.Invalidate()
	s.publishLocked()
}

// Ready forwards a renderer ready signal into the synchronizer.
func (s *Session) Ready(generation uint64) bool {
	return s.sync.Ready(generation)
}

// AwaitReady blocks until the renderer reports ready for the current
// generation or ctx expires. Deliberately not under s.mu: edits must keep
// flowing while a caller waits.
func (s *Session) AwaitReady(ctx context.Context) error {
	return s.sync.AwaitReady(ctx)
}

// PreviewState reports the synchronizer lifecycle for the loading
// indicator.
func (s *Session) PreviewState() (preview.State, uint64) {
	return s.sync.State(), s.sync.Generation()
}

// Sections lists the editor's section views in render order.
func (s *Session) Sections() []editor.SectionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editor.Sections()
}

// Reorder applies a full permutation of the section order.
func (s *Session) Reorder(order []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editor.ReorderSections(order)
}

// Toggle sets a builtin section's visibility.
func (s *Session) Toggle(builtinID string, visible bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editor.ToggleSection(builtinID, visible)
}

// AddBlock creates a custom block and appends it to the composition.
func (s *Session) AddBlock(t blocks.Type, title string, cfg blocks.Config) (*blocks.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editor.AddBlock(t, title, cfg)
}

// EditBlock patches a block's title or config.
func (s *Session) EditBlock(id string, patch blocks.Patch) (*blocks.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editor.EditBlock(id, patch)
}

// Block returns a copy of a stored block.
func (s *Session) Block(id string) (blocks.Block, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	block, ok := s.editor.Draft().Blocks().Get(id)
	if !ok {
		return blocks.Block{}, false
	}
	return *block, true
}

// Blocks returns copies of all stored blocks, ordered by id.
func (s *Session) Blocks() []blocks.Block {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := s.editor.Draft().Blocks().All()
	result := make([]blocks.Block, 0, len(stored))
	for _, block := range stored {
		result = append(result, *block)
	}
	return result
}

// RemoveBlock removes a block from the store and the composition.
func (s *Session) RemoveBlock(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editor.RemoveBlock(id)
}

// SetTheme switches the active theme.
func (s *Session) SetTheme(themeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editor.SetTheme(themeID)
}

// SetIdentity replaces the shop identity.
func (s *Session) SetIdentity(identity draft.Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editor.SetIdentity(identity)
}

// SetDesign replaces the design settings.
func (s *Session) SetDesign(design draft.Design) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editor.SetDesign(design)
}

// UpdateContent applies a content mutation.
func (s *Session) UpdateContent(mutate func(*draft.Content)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editor.UpdateContent(mutate)
}

// Snapshot returns a detached copy of the draft.
func (s *Session) Snapshot() draft.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editor.Draft().Snapshot()
}

// ShopID returns the shop this session edits.
func (s *Session) ShopID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editor.Draft().ShopID
}

// ActiveTheme returns the draft's current theme id.
func (s *Session) ActiveTheme() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editor.Draft().ThemeID
}

// Dirty reports whether the draft has unsaved changes.
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editor.Draft().Dirty()
}

// Save persists the draft through the gateway.
func (s *Session) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editor.Save(ctx, s.gateway)
}
