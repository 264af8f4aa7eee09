// Package composition holds the ordered, mixed-type list of storefront
// sections. The order is the single source of truth for render sequence;
// visibility is orthogonal and only meaningful for builtin sections, because
// hiding a custom block is expressed by removing it.
//
// The model is not safe for concurrent use. It belongs to a single editing
// session; the server serializes access at the session boundary.
package composition

import (
	"fmt"

	"github.com/shopforge/shopforge/internal/errors"
	"github.com/shopforge/shopforge/internal/registry"
)

// EntryKind distinguishes builtin sections from user-authored blocks.
type EntryKind int

const (
	EntryBuiltin EntryKind = iota
	EntryCustomBlock
)

// String returns the string representation of the entry kind.
func (k EntryKind) String() string {
	switch k {
	case EntryBuiltin:
		return "builtin"
	case EntryCustomBlock:
		return "customBlock"
	default:
		return "unknown"
	}
}

// Entry is one element of the ordered composition. For builtin entries the
// ID is the kind id; for custom blocks it is the block's generated id.
type Entry struct {
	ID      string    `json:"id"`
	Kind    EntryKind `json:"kind"`
	Visible bool      `json:"visible"`
}

// Model is the ordered section sequence with per-builtin visibility.
type Model struct {
	entries []Entry
	index   map[string]int
}

// New creates a model seeded with the given builtin kind ids, in order,
// using the provided visibility flags. Unknown visibility entries default
// to visible.
func New(builtinOrder []string, visibility map[string]bool) *Model {
	m := &Model{
		entries: make([]Entry, 0, len(builtinOrder)),
		index:   make(map[string]int, len(builtinOrder)),
	}

	for _, id := range builtinOrder {
		if _, dup := m.index[id]; dup {
			continue
		}
		visible, ok := visibility[id]
		if !ok {
			visible = true
		}
		m.index[id] = len(m.entries)
		m.entries = append(m.entries, Entry{ID: id, Kind: EntryBuiltin, Visible: visible})
	}

	return m
}

// Default creates a model seeded from the section registry defaults.
func Default() *Model {
	return New(registry.DefaultOrder(), registry.DefaultVisibility())
}

// Restore rebuilds a model from explicit entries, validating id uniqueness.
// Used when rehydrating a persisted configuration.
func Restore(entries []Entry) (*Model, error) {
	m := &Model{
		entries: make([]Entry, 0, len(entries)),
		index:   make(map[string]int, len(entries)),
	}

	for _, e := range entries {
		if e.ID == "" {
			return nil, errors.NewValidationError(errors.CodeIllegalReorder, "entry id is required")
		}
		if _, dup := m.index[e.ID]; dup {
			return nil, errors.NewValidationError(errors.CodeIllegalReorder,
				fmt.Sprintf("duplicate entry id %q", e.ID))
		}
		if e.Kind == EntryCustomBlock {
			e.Visible = true
		}
		m.index[e.ID] = len(m.entries)
		m.entries = append(m.entries, e)
	}

	return m, nil
}

// Len returns the number of entries.
func (m *Model) Len() int {
	return len(m.entries)
}

// Entries returns a copy of the ordered entries.
func (m *Model) Entries() []Entry {
	result := make([]Entry, len(m.entries))
	copy(result, m.entries)

	return result
}

// Order returns the ordered section ids.
func (m *Model) Order() []string {
	result := make([]string, len(m.entries))
	for i, e := range m.entries {
		result[i] = e.ID
	}

	return result
}

// Contains reports whether id is present in the composition.
func (m *Model) Contains(id string) bool {
	_, ok := m.index[id]
	return ok
}

// Visible reports the visibility flag for id; ok is false if id is absent.
// Custom block entries always report visible.
func (m *Model) Visible(id string) (visible, ok bool) {
	i, present := m.index[id]
	if !present {
		return false, false
	}

	return m.entries[i].Visible, true
}

// CustomBlockIDs returns the ids of all custom block entries, in order.
func (m *Model) CustomBlockIDs() []string {
	var result []string
	for _, e := range m.entries {
		if e.Kind == EntryCustomBlock {
			result = append(result, e.ID)
		}
	}

	return result
}

// Reorder replaces the order wholesale. The new order must be a permutation
// of the current id set: no additions, removals, or duplicates. On a
// violation the prior order is preserved and an illegal_reorder error is
// returned; the editing surface never produces this input, so the failure is
// a caller bug, not a user-facing condition.
func (m *Model) Reorder(newOrder []string) error {
	if len(newOrder) != len(m.entries) {
		return errors.IllegalReorder(fmt.Sprintf("expected %d ids, got %d", len(m.entries), len(newOrder)))
	}

	seen := make(map[string]bool, len(newOrder))
	for _, id := range newOrder {
		if seen[id] {
			return errors.IllegalReorder(fmt.Sprintf("duplicate id %q", id))
		}
		seen[id] = true
		if _, ok := m.index[id]; !ok {
			return errors.IllegalReorder(fmt.Sprintf("id %q is not in the composition", id))
		}
	}

	reordered := make([]Entry, len(newOrder))
	for i, id := range newOrder {
		reordered[i] = m.entries[m.index[id]]
	}

	m.entries = reordered
	m.reindex()

	return nil
}

// SetVisibility flips the visibility flag for a builtin entry and reports
// whether the id named one. Unknown ids and custom block entries are
// ignored: custom blocks have no independent visibility flag.
func (m *Model) SetVisibility(builtinID string, visible bool) bool {
	i, ok := m.index[builtinID]
	if !ok || m.entries[i].Kind != EntryBuiltin {
		return false
	}

	m.entries[i].Visible = visible

	return true
}

// InsertCustomBlockID appends a custom block entry at the end of the order.
// New content is always added last so existing structure is never
// reshuffled. Inserting an id already present is rejected: ids are unique
// for the lifetime of the composition.
func (m *Model) InsertCustomBlockID(blockID string) error {
	if blockID == "" {
		return errors.NewValidationError(errors.CodeInvalidSectionID, "block id is required")
	}
	if _, exists := m.index[blockID]; exists {
		return errors.NewStateError(errors.CodeDuplicateSectionID, fmt.Sprintf("id %q already in composition", blockID))
	}

	m.index[blockID] = len(m.entries)
	m.entries = append(m.entries, Entry{ID: blockID, Kind: EntryCustomBlock, Visible: true})

	return nil
}

// RemoveID removes the matching entry if present. Removing an absent id is
// a no-op: deletion is idempotent.
func (m *Model) RemoveID(id string) {
	i, ok := m.index[id]
	if !ok {
		return
	}

	m.entries = append(m.entries[:i], m.entries[i+1:]...)
	m.reindex()
}

// Clone returns a deep copy of the model.
func (m *Model) Clone() *Model {
	clone := &Model{
		entries: make([]Entry, len(m.entries)),
		index:   make(map[string]int, len(m.index)),
	}
	copy(clone.entries, m.entries)
	for id, i := range m.index {
		clone.index[id] = i
	}

	return clone
}

// HiddenBuiltins returns the builtin kind ids currently toggled off.
func (m *Model) HiddenBuiltins() []string {
	var result []string
	for _, e := range m.entries {
		if e.Kind == EntryBuiltin && !e.Visible {
			result = append(result, e.ID)
		}
	}

	return result
}

func (m *Model) reindex() {
	for i, e := range m.entries {
		m.index[e.ID] = i
	}
	// Drop stale keys after removals.
	if len(m.index) != len(m.entries) {
		m.index = make(map[string]int, len(m.entries))
		for i, e := range m.entries {
			m.index[e.ID] = i
		}
	}
}
