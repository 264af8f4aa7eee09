package draft

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/shopforge/shopforge/internal/errors"
)

// Caps for the repeated-list entities. Each list also has a floor of one
// item: the last item cannot be removed, only edited.
const (
	MaxTrustBarItems = 4
	MaxHeroStats     = 5
	MaxHeroFeatures  = 5
	MaxFooterLinks   = 6
	MinListItems     = 1
)

func newID() string {
	return uuid.NewString()
}

func capError(label string, max int) *errors.Error {
	return errors.NewValidationError(errors.CodeBoundedList,
		fmt.Sprintf("%s is limited to %d items", label, max))
}

func floorError(label string) *errors.Error {
	return errors.NewValidationError(errors.CodeBoundedList,
		fmt.Sprintf("%s must keep at least %d item", label, MinListItems))
}

// AddTrustBarItem appends a trust bar item, enforcing the cap of four.
func (d *Draft) AddTrustBarItem(icon, text string) (TrustBarItem, error) {
	if len(d.Content.TrustBar) >= MaxTrustBarItems {
		return TrustBarItem{}, capError("trust bar", MaxTrustBarItems)
	}

	item := TrustBarItem{ID: newID(), Icon: icon, Text: text}
	d.Content.TrustBar = append(d.Content.TrustBar, item)
	d.MarkDirty()

	return item, nil
}

// RemoveTrustBarItem removes a trust bar item by id. Removal at the floor
// of one item is rejected; an unknown id is a no-op.
func (d *Draft) RemoveTrustBarItem(id string) error {
	idx := indexByID(d.Content.TrustBar, id, func(i TrustBarItem) string { return i.ID })
	if idx < 0 {
		return nil
	}
	if len(d.Content.TrustBar) <= MinListItems {
		return floorError("trust bar")
	}

	d.Content.TrustBar = append(d.Content.TrustBar[:idx], d.Content.TrustBar[idx+1:]...)
	d.MarkDirty()

	return nil
}

// TrustBarCount exposes the current item count so callers can disable
// add/remove controls at the cap and floor.
func (d *Draft) TrustBarCount() int {
	return len(d.Content.TrustBar)
}

// AddHeroStat appends a hero stat, enforcing the cap of five.
func (d *Draft) AddHeroStat(value, label string) (HeroStat, error) {
	if len(d.Content.Hero.Stats) >= MaxHeroStats {
		return HeroStat{}, capError("hero stats", MaxHeroStats)
	}

	stat := HeroStat{ID: newID(), Value: value, Label: label}
	d.Content.Hero.Stats = append(d.Content.Hero.Stats, stat)
	d.MarkDirty()

	return stat, nil
}

// RemoveHeroStat removes a hero stat by id, keeping at least one.
func (d *Draft) RemoveHeroStat(id string) error {
	idx := indexByID(d.Content.Hero.Stats, id, func(s HeroStat) string { return s.ID })
	if idx < 0 {
		return nil
	}
	if len(d.Content.Hero.Stats) <= MinListItems {
		return floorError("hero stats")
	}

	d.Content.Hero.Stats = append(d.Content.Hero.Stats[:idx], d.Content.Hero.Stats[idx+1:]...)
	d.MarkDirty()

	return nil
}

// AddHeroFeature appends a hero feature, enforcing the cap of five.
func (d *Draft) AddHeroFeature(text string) (HeroFeature, error) {
	if len(d.Content.Hero.Features) >= MaxHeroFeatures {
		return HeroFeature{}, capError("hero features", MaxHeroFeatures)
	}

	feature := HeroFeature{ID: newID(), Text: text}
	d.Content.Hero.Features = append(d.Content.Hero.Features, feature)
	d.MarkDirty()

	return feature, nil
}

// RemoveHeroFeature removes a hero feature by id, keeping at least one.
func (d *Draft) RemoveHeroFeature(id string) error {
	idx := indexByID(d.Content.Hero.Features, id, func(f HeroFeature) string { return f.ID })
	if idx < 0 {
		return nil
	}
	if len(d.Content.Hero.Features) <= MinListItems {
		return floorError("hero features")
	}

	d.Content.Hero.Features = append(d.Content.Hero.Features[:idx], d.Content.Hero.Features[idx+1:]...)
	d.MarkDirty()

	return nil
}

// AddFooterLink appends a footer link, enforcing the cap of six.
func (d *Draft) AddFooterLink(label, url string) (FooterLink, error) {
	if len(d.Content.Footer.Links) >= MaxFooterLinks {
		return FooterLink{}, capError("footer links", MaxFooterLinks)
	}

	link := FooterLink{ID: newID(), Label: label, URL: url}
	d.Content.Footer.Links = append(d.Content.Footer.Links, link)
	d.MarkDirty()

	return link, nil
}

// RemoveFooterLink removes a footer link by id, keeping at least one.
func (d *Draft) RemoveFooterLink(id string) error {
	idx := indexByID(d.Content.Footer.Links, id, func(l FooterLink) string { return l.ID })
	if idx < 0 {
		return nil
	}
	if len(d.Content.Footer.Links) <= MinListItems {
		return floorError("footer links")
	}

	d.Content.Footer.Links = append(d.Content.Footer.Links[:idx], d.Content.Footer.Links[idx+1:]...)
	d.MarkDirty()

	return nil
}

func indexByID[T any](list []T, id string, key func(T) string) int {
	for i, item := range list {
		if key(item) == id {
			return i
		}
	}

	return -1
}
