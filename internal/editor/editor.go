// Package editor is the façade the editing surface calls. It orchestrates
// the composition model and the custom block store so the two can never
// diverge, marks the draft dirty on every mutation, and notifies the
// preview synchronizer of changes.
package editor

import (
	"context"

	"github.com/shopforge/shopforge/internal/blocks"
	"github.com/shopforge/shopforge/internal/draft"
	"github.com/shopforge/shopforge/internal/errors"
	"github.com/shopforge/shopforge/internal/logging"
	"github.com/shopforge/shopforge/internal/registry"
	"github.com/shopforge/shopforge/internal/store"
)

// Change describes a draft mutation for the preview synchronizer.
// Structural changes (a theme switch) force a renderer reload; everything
// else is pushed into the running renderer.
type Change struct {
	Structural bool
	Reason     string
}

// Notifier receives change notifications after each successful mutation.
type Notifier func(Change)

// ThemeChecker reports whether a theme id has a registered renderer.
type ThemeChecker func(id string) bool

// Editor mediates all mutations of one editing session's draft.
type Editor struct {
	draft      *draft.Draft
	logger     logging.Logger
	notify     Notifier
	themeKnown ThemeChecker
}

// New creates an editor over the given draft. notify and themeKnown may be
// nil; a nil themeKnown accepts any theme id.
func New(d *draft.Draft, logger logging.Logger, notify Notifier, themeKnown ThemeChecker) *Editor {
	if logger == nil {
		logger = logging.Nop()
	}

	return &Editor{
		draft:      d,
		logger:     logger.WithComponent("editor"),
		notify:     notify,
		themeKnown: themeKnown,
	}
}

// Draft returns the session's draft aggregate.
func (e *Editor) Draft() *draft.Draft {
	return e.draft
}

func (e *Editor) changed(c Change) {
	e.draft.MarkDirty()
	if e.notify != nil {
		e.notify(c)
	}
}

// AddBlock creates a custom block in the store and appends its id to the
// composition. If creation fails the composition is left untouched; if the
// append fails the created block is rolled back, so there is never a
// partial insert.
func (e *Editor) AddBlock(t blocks.Type, title string, cfg blocks.Config) (*blocks.Block, error) {
	block, err := e.draft.Blocks().Create(t, title, cfg)
	if err != nil {
		return nil, err
	}

	if err := e.draft.Model().InsertCustomBlockID(block.ID); err != nil {
		e.draft.Blocks().Remove(block.ID)
		return nil, err
	}

	e.changed(Change{Reason: "block added"})

	return block, nil
}

// RemoveBlock removes a block from the composition and the store. Both
// removals are idempotent, so calling this twice produces the same end
// state as calling it once.
func (e *Editor) RemoveBlock(id string) {
	existed := e.draft.Model().Contains(id)

	e.draft.Model().RemoveID(id)
	e.draft.Blocks().Remove(id)

	if existed {
		e.changed(Change{Reason: "block removed"})
	}
}

// EditBlock merges a patch into a block's title/config. Editing never
// changes position, so the composition is untouched.
func (e *Editor) EditBlock(id string, patch blocks.Patch) (*blocks.Block, error) {
	block, err := e.draft.Blocks().Update(id, patch)
	if err != nil {
		return nil, err
	}

	e.changed(Change{Reason: "block edited"})

	return block, nil
}

// ToggleSection flips a builtin section's visibility. Unknown ids and
// custom blocks are ignored by the model, and an ignored toggle neither
// dirties the draft nor publishes.
func (e *Editor) ToggleSection(builtinID string, visible bool) {
	if !e.draft.Model().SetVisibility(builtinID, visible) {
		return
	}

	e.changed(Change{Reason: "visibility toggled"})
}

// ReorderSections replaces the section order wholesale. A payload that is
// not a permutation of the current ids is a bug in the editing surface; it
// is logged and rejected, and the prior order stands.
func (e *Editor) ReorderSections(newOrder []string) error {
	if err := e.draft.Model().Reorder(newOrder); err != nil {
		e.logger.Error(context.Background(), err, "rejected reorder payload",
			"got", len(newOrder), "want", e.draft.Model().Len())
		return err
	}

	e.changed(Change{Reason: "sections reordered"})

	return nil
}

// SetTheme switches the active theme. This is the only structural change:
// the preview renderer cannot hot-apply it and must be reloaded.
func (e *Editor) SetTheme(themeID string) error {
	if e.themeKnown != nil && !e.themeKnown(themeID) {
		return errors.UnknownTheme(themeID)
	}
	if themeID == e.draft.ThemeID {
		return nil
	}

	e.draft.ThemeID = themeID
	e.changed(Change{Structural: true, Reason: "theme changed"})

	return nil
}

// SetIdentity replaces the shop identity fields.
func (e *Editor) SetIdentity(identity draft.Identity) {
	e.draft.Identity = identity
	e.changed(Change{Reason: "identity updated"})
}

// SetDesign replaces the design tokens.
func (e *Editor) SetDesign(design draft.Design) {
	e.draft.Design = design
	e.changed(Change{Reason: "design updated"})
}

// UpdateContent applies a content mutation under the editor so the change
// is dirty-tracked and pushed to the preview.
func (e *Editor) UpdateContent(mutate func(*draft.Content)) {
	mutate(&e.draft.Content)
	e.changed(Change{Reason: "content updated"})
}

// Save hands an immutable snapshot of the draft to the persistence
// gateway. On success the draft is marked clean; on failure it stays dirty
// so no work is lost and the save can be retried.
func (e *Editor) Save(ctx context.Context, gateway store.Gateway) error {
	snap := e.draft.Snapshot()

	if err := gateway.Save(ctx, snap); err != nil {
		e.logger.Error(ctx, err, "save failed", "shop", snap.ShopID)
		return errors.NewIOError(errors.CodeGatewaySaveFailed, "save failed", err)
	}

	e.draft.ClearDirty()
	e.logger.Info(ctx, "draft saved", "shop", snap.ShopID, "sections", len(snap.SectionOrder))

	return nil
}

// SectionView is one row of the editor's section list: a composition entry
// joined with its display metadata.
type SectionView struct {
	ID      string `json:"id"`
	Kind    string `json:"kind"`
	Label   string `json:"label"`
	Icon    string `json:"icon,omitempty"`
	Visible bool   `json:"visible"`
	// BlockType is set for custom block entries only.
	BlockType string `json:"blockType,omitempty"`
}

// Sections returns the ordered section list with human labels, resolving
// builtin metadata through the registry and block titles through the store.
func (e *Editor) Sections() []SectionView {
	entries := e.draft.Model().Entries()
	views := make([]SectionView, 0, len(entries))

	for _, entry := range entries {
		view := SectionView{ID: entry.ID, Kind: entry.Kind.String(), Visible: entry.Visible}

		if meta, ok := registry.Lookup(registry.Kind(entry.ID)); ok {
			view.Label = meta.Label
			view.Icon = meta.Icon
		} else if block, ok := e.draft.Blocks().Get(entry.ID); ok {
			view.Label = block.Title
			view.BlockType = string(block.Type)
		}

		views = append(views, view)
	}

	return views
}
