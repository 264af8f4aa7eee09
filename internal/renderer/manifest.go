package renderer

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/shopforge/shopforge/internal/registry"
)

// Manifest describes a theme: its identity and which builtin section kinds
// it renders. Themes that do not declare the theme-dependent promo banner
// simply skip that section when rendering.
type Manifest struct {
	ID          string   `yaml:"id"`
	Label       string   `yaml:"label"`
	Description string   `yaml:"description"`
	Kinds       []string `yaml:"kinds"`
	PromoBanner bool     `yaml:"promoBanner"`
}

// Validate checks the manifest for gaps that would break rendering.
func (m Manifest) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("theme manifest: id is required")
	}
	if m.Label == "" {
		return fmt.Errorf("theme %q: label is required", m.ID)
	}
	if len(m.Kinds) == 0 {
		return fmt.Errorf("theme %q: at least one section kind is required", m.ID)
	}

	seen := make(map[string]bool, len(m.Kinds))
	for _, kind := range m.Kinds {
		if !registry.IsBuiltin(kind) {
			return fmt.Errorf("theme %q: unknown section kind %q", m.ID, kind)
		}
		if seen[kind] {
			return fmt.Errorf("theme %q: duplicate section kind %q", m.ID, kind)
		}
		seen[kind] = true
	}
	if m.PromoBanner && !seen[string(registry.KindPromoBanner)] {
		return fmt.Errorf("theme %q: promoBanner declared but kind not listed", m.ID)
	}

	return nil
}

// Supports reports whether the theme renders the given builtin kind.
func (m Manifest) Supports(kind string) bool {
	for _, k := range m.Kinds {
		if k == kind {
			return true
		}
	}

	return false
}

// LoadManifests reads every <dir>/<theme>/theme.yml under the themes
// directory. Subdirectories without a manifest are skipped.
func LoadManifests(dir string) ([]Manifest, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read themes dir: %w", err)
	}

	var manifests []Manifest
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		path := filepath.Join(dir, entry.Name(), "theme.yml")
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("read %s: %w", path, err)
		}

		var m Manifest
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		if err := m.Validate(); err != nil {
			return nil, err
		}

		manifests = append(manifests, m)
	}

	return manifests, nil
}
