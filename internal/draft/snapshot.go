package draft

import (
	"fmt"

	"github.com/shopforge/shopforge/internal/blocks"
	"github.com/shopforge/shopforge/internal/composition"
	"github.com/shopforge/shopforge/internal/errors"
	"github.com/shopforge/shopforge/internal/registry"
)

// ConfigVersion is the version tag of the serialized configuration
// contract consumed by theme renderers and the persistence gateway.
const ConfigVersion = 1

// Snapshot is an immutable, serializable copy of a draft. It is the single
// configuration shape shared by the live-preview channel and the
// persistence gateway, so the two can never diverge.
type Snapshot struct {
	Version        int            `json:"configVersion"`
	ShopID         string         `json:"shopId"`
	ThemeID        string         `json:"themeId"`
	Identity       Identity       `json:"identity"`
	Design         Design         `json:"design"`
	Content        Content        `json:"content"`
	SectionOrder   []string       `json:"sectionOrder"`
	HiddenSections []string       `json:"hiddenSections,omitempty"`
	Blocks         []blocks.Block `json:"blocks,omitempty"`
}

// Snapshot captures the draft's current state as an independent copy.
// Further edits to the draft must not alter a snapshot already taken:
// slices are copied, and block configs are safe to share because the store
// replaces config values wholesale instead of mutating them in place.
func (d *Draft) Snapshot() Snapshot {
	snap := Snapshot{
		Version:        ConfigVersion,
		ShopID:         d.ShopID,
		ThemeID:        d.ThemeID,
		Identity:       d.Identity,
		Design:         d.Design,
		Content:        d.Content,
		SectionOrder:   d.model.Order(),
		HiddenSections: d.model.HiddenBuiltins(),
	}

	snap.Content.Hero.Stats = append([]HeroStat(nil), d.Content.Hero.Stats...)
	snap.Content.Hero.Features = append([]HeroFeature(nil), d.Content.Hero.Features...)
	snap.Content.TrustBar = append([]TrustBarItem(nil), d.Content.TrustBar...)
	snap.Content.Marquee.Messages = append([]string(nil), d.Content.Marquee.Messages...)
	snap.Content.Footer.Links = append([]FooterLink(nil), d.Content.Footer.Links...)

	for _, b := range d.blocks.All() {
		snap.Blocks = append(snap.Blocks, *b)
	}

	return snap
}

// FromSnapshot rebuilds an editable draft from a persisted snapshot,
// validating the order/store consistency invariants: every custom block id
// in the order refers to a stored block and vice versa.
func FromSnapshot(snap Snapshot) (*Draft, error) {
	if snap.Version != ConfigVersion {
		return nil, errors.NewValidationError(errors.CodeConfigNotFound,
			fmt.Sprintf("unsupported config version %d", snap.Version))
	}
	if snap.ThemeID == "" {
		return nil, errors.NewValidationError(errors.CodeUnknownTheme, "theme id is required")
	}

	store := blocks.NewStore()
	for _, b := range snap.Blocks {
		if err := store.Restore(b); err != nil {
			return nil, err
		}
	}

	hidden := make(map[string]bool, len(snap.HiddenSections))
	for _, id := range snap.HiddenSections {
		hidden[id] = true
	}

	entries := make([]composition.Entry, 0, len(snap.SectionOrder))
	for _, id := range snap.SectionOrder {
		if registry.IsBuiltin(id) {
			entries = append(entries, composition.Entry{
				ID:      id,
				Kind:    composition.EntryBuiltin,
				Visible: !hidden[id],
			})
			continue
		}
		if _, ok := store.Get(id); !ok {
			return nil, errors.NewValidationError(errors.CodeBlockNotFound,
				fmt.Sprintf("section order references unknown block %q", id))
		}
		entries = append(entries, composition.Entry{ID: id, Kind: composition.EntryCustomBlock})
	}

	model, err := composition.Restore(entries)
	if err != nil {
		return nil, err
	}

	ordered := make(map[string]bool, len(snap.SectionOrder))
	for _, id := range snap.SectionOrder {
		ordered[id] = true
	}
	for _, id := range store.IDs() {
		if !ordered[id] {
			return nil, errors.NewValidationError(errors.CodeBlockNotFound,
				fmt.Sprintf("block %q has no section order entry", id))
		}
	}

	d := &Draft{
		ShopID:   snap.ShopID,
		ThemeID:  snap.ThemeID,
		Identity: snap.Identity,
		Design:   snap.Design,
		Content:  snap.Content,
		model:    model,
		blocks:   store,
	}

	return d, nil
}
