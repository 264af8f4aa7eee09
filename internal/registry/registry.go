// Package registry is the static catalog of builtin storefront section
// kinds. It provides display metadata and default content seeds for each
// kind, and the fixed participation order used to seed a new shop's
// composition. The catalog is immutable; anything user-authored lives in the
// blocks package instead.
package registry

// Kind identifies a builtin section. The set is closed: adding a kind means
// adding it here, to the metadata table, and to every theme that supports it.
type Kind string

const (
	KindHero        Kind = "hero"
	KindTrustBar    Kind = "trustBar"
	KindNewArrivals Kind = "newArrivals"
	KindCategories  Kind = "categories"
	KindProducts    Kind = "products"
	KindNewsletter  Kind = "newsletter"
	KindMarquee     Kind = "marquee"
	// KindPromoBanner is theme-dependent: it participates in ordering only
	// for themes whose manifest declares it.
	KindPromoBanner Kind = "promoBanner"
)

// Metadata describes a builtin section kind for the editor surface.
type Metadata struct {
	Kind           Kind
	Label          string
	Icon           string
	Description    string
	RequiresTitle  bool
	ThemeDependent bool
	DefaultVisible bool
}

// kinds lists every builtin kind in default composition order.
var kinds = []Kind{
	KindHero,
	KindMarquee,
	KindTrustBar,
	KindNewArrivals,
	KindCategories,
	KindProducts,
	KindPromoBanner,
	KindNewsletter,
}

var metadata = map[Kind]Metadata{
	KindHero: {
		Kind:           KindHero,
		Label:          "Hero",
		Icon:           "sparkles",
		Description:    "Headline, call to action, and supporting stats at the top of the page.",
		RequiresTitle:  true,
		DefaultVisible: true,
	},
	KindMarquee: {
		Kind:           KindMarquee,
		Label:          "Announcement marquee",
		Icon:           "megaphone",
		Description:    "Scrolling announcement strip under the header.",
		DefaultVisible: false,
	},
	KindTrustBar: {
		Kind:           KindTrustBar,
		Label:          "Trust bar",
		Icon:           "shield-check",
		Description:    "Up to four short trust signals such as shipping and returns.",
		DefaultVisible: true,
	},
	KindNewArrivals: {
		Kind:           KindNewArrivals,
		Label:          "New arrivals",
		Icon:           "tag",
		Description:    "Latest products, newest first.",
		RequiresTitle:  true,
		DefaultVisible: true,
	},
	KindCategories: {
		Kind:           KindCategories,
		Label:          "Categories",
		Icon:           "grid",
		Description:    "Category tiles linking into the catalog.",
		RequiresTitle:  true,
		DefaultVisible: true,
	},
	KindProducts: {
		Kind:           KindProducts,
		Label:          "Products",
		Icon:           "shopping-bag",
		Description:    "Main product grid with a configurable layout.",
		RequiresTitle:  true,
		DefaultVisible: true,
	},
	KindPromoBanner: {
		Kind:           KindPromoBanner,
		Label:          "Promo banner",
		Icon:           "percent",
		Description:    "Full-width promotional banner with an offer.",
		ThemeDependent: true,
		DefaultVisible: false,
	},
	KindNewsletter: {
		Kind:           KindNewsletter,
		Label:          "Newsletter",
		Icon:           "mail",
		Description:    "Email capture above the footer.",
		DefaultVisible: true,
	},
}

// All returns the metadata for every builtin kind in default order.
func All() []Metadata {
	result := make([]Metadata, 0, len(kinds))
	for _, k := range kinds {
		result = append(result, metadata[k])
	}

	return result
}

// Lookup retrieves the metadata for a kind.
func Lookup(k Kind) (Metadata, bool) {
	m, ok := metadata[k]
	return m, ok
}

// IsBuiltin reports whether id names a builtin section kind.
func IsBuiltin(id string) bool {
	_, ok := metadata[Kind(id)]
	return ok
}

// DefaultOrder returns the builtin kind ids in default composition order.
func DefaultOrder() []string {
	result := make([]string, 0, len(kinds))
	for _, k := range kinds {
		result = append(result, string(k))
	}

	return result
}

// DefaultVisibility returns the default visibility flag per builtin kind id.
func DefaultVisibility() map[string]bool {
	result := make(map[string]bool, len(kinds))
	for _, k := range kinds {
		result[string(k)] = metadata[k].DefaultVisible
	}

	return result
}
