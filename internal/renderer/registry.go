// Package renderer turns a serialized shop configuration into storefront
// HTML. Themes are pluggable: each is described by a manifest naming the
// builtin section kinds it renders, and all themes consume the same
// versioned configuration contract, in both persisted-config and
// draft-preview mode.
package renderer

import (
	"context"
	"io"
	"sort"

	"github.com/shopforge/shopforge/internal/draft"
	"github.com/shopforge/shopforge/internal/errors"
	"github.com/shopforge/shopforge/internal/logging"
)

// Theme renders a storefront from a configuration snapshot. Rendering must
// be pure: snapshot in, HTML out, no retained state between calls — the
// same renderer serves saved configs and unsaved drafts.
type Theme interface {
	ID() string
	Manifest() Manifest
	Render(ctx context.Context, w io.Writer, snap draft.Snapshot) error
}

// Registry holds the available themes.
type Registry struct {
	themes map[string]Theme
	logger logging.Logger
}

// NewRegistry creates a registry pre-populated with the builtin themes.
func NewRegistry(logger logging.Logger) *Registry {
	if logger == nil {
		logger = logging.Nop()
	}

	r := &Registry{
		themes: make(map[string]Theme),
		logger: logger.WithComponent("renderer"),
	}
	for _, m := range builtinManifests {
		r.themes[m.ID] = &htmlTheme{manifest: m}
	}

	return r
}

// LoadDir registers every theme manifest found under dir, replacing any
// builtin manifest with the same id so themes can be customized on disk.
func (r *Registry) LoadDir(dir string) error {
	manifests, err := LoadManifests(dir)
	if err != nil {
		return err
	}

	for _, m := range manifests {
		r.themes[m.ID] = &htmlTheme{manifest: m}
		r.logger.Debug(context.Background(), "registered theme", "theme", m.ID)
	}

	return nil
}

// Has reports whether a theme id is registered.
func (r *Registry) Has(id string) bool {
	_, ok := r.themes[id]
	return ok
}

// Get retrieves a theme by id.
func (r *Registry) Get(id string) (Theme, bool) {
	t, ok := r.themes[id]
	return t, ok
}

// IDs returns the registered theme ids, sorted.
func (r *Registry) IDs() []string {
	result := make([]string, 0, len(r.themes))
	for id := range r.themes {
		result = append(result, id)
	}
	sort.Strings(result)

	return result
}

// Manifests returns the registered manifests, sorted by id.
func (r *Registry) Manifests() []Manifest {
	result := make([]Manifest, 0, len(r.themes))
	for _, id := range r.IDs() {
		result = append(result, r.themes[id].Manifest())
	}

	return result
}

// Render renders the snapshot with its configured theme.
func (r *Registry) Render(ctx context.Context, w io.Writer, snap draft.Snapshot) error {
	theme, ok := r.themes[snap.ThemeID]
	if !ok {
		return errors.UnknownTheme(snap.ThemeID)
	}

	return theme.Render(ctx, w, snap)
}

// builtinManifests back the stock themes when no themes directory is
// configured. A themes dir with the same ids overrides them.
var builtinManifests = []Manifest{
	{
		ID:          "modern",
		Label:       "Modern",
		Description: "Bold type, airy spacing, full-bleed hero.",
		Kinds: []string{
			"hero", "marquee", "trustBar", "newArrivals",
			"categories", "products", "promoBanner", "newsletter",
		},
		PromoBanner: true,
	},
	{
		ID:          "classic",
		Label:       "Classic",
		Description: "Compact, serif-led storefront without banner sections.",
		Kinds: []string{
			"hero", "trustBar", "newArrivals", "categories",
			"products", "newsletter",
		},
	},
}
