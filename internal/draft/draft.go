// Package draft holds the full shop configuration in editable form: the
// draft aggregate. A draft is exclusively owned by one editing session,
// mutated in place, and handed to the persistence gateway as an immutable
// snapshot at save time. It is distinct from the last-saved configuration
// and superseded wholesale by a successful save.
package draft

import (
	"github.com/shopforge/shopforge/internal/blocks"
	"github.com/shopforge/shopforge/internal/composition"
)

// Identity holds the shop's public identity fields.
type Identity struct {
	Name     string `json:"name"`
	Tagline  string `json:"tagline,omitempty"`
	LogoURL  string `json:"logoUrl,omitempty"`
	Currency string `json:"currency"`
	Locale   string `json:"locale"`
}

// Design holds the shop's design tokens.
type Design struct {
	PaletteID     string `json:"paletteId"`
	FontID        string `json:"fontId"`
	ButtonStyleID string `json:"buttonStyleId"`
	HeaderStyleID string `json:"headerStyleId"`
	Spacing       string `json:"spacing"`
	Radius        string `json:"radius"`
	Animations    bool   `json:"animations"`
}

// HeroContent is the copy and supporting data for the hero section.
type HeroContent struct {
	Headline    string        `json:"headline"`
	Subheadline string        `json:"subheadline,omitempty"`
	CTALabel    string        `json:"ctaLabel,omitempty"`
	CTAURL      string        `json:"ctaUrl,omitempty"`
	ImageURL    string        `json:"imageUrl,omitempty"`
	Stats       []HeroStat    `json:"stats,omitempty"`
	Features    []HeroFeature `json:"features,omitempty"`
}

// HeroStat is one headline figure under the hero copy.
type HeroStat struct {
	ID    string `json:"id"`
	Value string `json:"value"`
	Label string `json:"label"`
}

// HeroFeature is one short selling point under the hero copy.
type HeroFeature struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// TrustBarItem is one trust signal in the trust bar.
type TrustBarItem struct {
	ID   string `json:"id"`
	Icon string `json:"icon"`
	Text string `json:"text"`
}

// FooterLink is one link in the storefront footer.
type FooterLink struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	URL   string `json:"url"`
}

// MarqueeContent is the scrolling announcement strip.
type MarqueeContent struct {
	Messages []string `json:"messages,omitempty"`
	Speed    string   `json:"speed,omitempty"`
}

// SectionHeading is shared title copy for simple list sections.
type SectionHeading struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle,omitempty"`
}

// ProductsContent configures the main product grid.
type ProductsContent struct {
	Title      string `json:"title"`
	LayoutID   string `json:"layoutId"`
	Columns    int    `json:"columns"`
	ShowPrices bool   `json:"showPrices"`
}

// PromoBannerContent configures the theme-dependent promo banner.
type PromoBannerContent struct {
	Heading         string `json:"heading"`
	Text            string `json:"text,omitempty"`
	CTALabel        string `json:"ctaLabel,omitempty"`
	CTAURL          string `json:"ctaUrl,omitempty"`
	OfferPriceCents int64  `json:"offerPriceCents,omitempty"`
}

// NewsletterContent configures the email capture section.
type NewsletterContent struct {
	Heading     string `json:"heading"`
	Subheading  string `json:"subheading,omitempty"`
	Placeholder string `json:"placeholder,omitempty"`
	ButtonLabel string `json:"buttonLabel"`
}

// FooterContent configures the storefront footer.
type FooterContent struct {
	AboutText string       `json:"aboutText,omitempty"`
	Links     []FooterLink `json:"links,omitempty"`
}

// Content groups the per-builtin-section content fields.
type Content struct {
	Hero        HeroContent        `json:"hero"`
	Marquee     MarqueeContent     `json:"marquee"`
	TrustBar    []TrustBarItem     `json:"trustBar"`
	NewArrivals SectionHeading     `json:"newArrivals"`
	Categories  SectionHeading     `json:"categories"`
	Products    ProductsContent    `json:"products"`
	PromoBanner PromoBannerContent `json:"promoBanner"`
	Newsletter  NewsletterContent  `json:"newsletter"`
	Footer      FooterContent      `json:"footer"`
}

// Draft is the full in-progress shop configuration.
type Draft struct {
	ShopID   string
	ThemeID  string
	Identity Identity
	Design   Design
	Content  Content

	model  *composition.Model
	blocks *blocks.Store
	dirty  bool
}

// New creates an empty draft with a default composition for the given shop
// and theme.
func New(shopID, themeID string) *Draft {
	return &Draft{
		ShopID:  shopID,
		ThemeID: themeID,
		model:   composition.Default(),
		blocks:  blocks.NewStore(),
	}
}

// Default creates a draft seeded with starter content, used when a shop has
// no saved configuration yet.
func Default(shopID, themeID string) *Draft {
	d := New(shopID, themeID)
	d.Identity = Identity{
		Name:     "My Shop",
		Tagline:  "Quality goods, shipped fast",
		Currency: "USD",
		Locale:   "en-US",
	}
	d.Design = Design{
		PaletteID:     "slate",
		FontID:        "inter",
		ButtonStyleID: "rounded",
		HeaderStyleID: "centered",
		Spacing:       "comfortable",
		Radius:        "medium",
		Animations:    true,
	}
	d.Content = Content{
		Hero: HeroContent{
			Headline: "Welcome to My Shop",
			CTALabel: "Shop now",
			CTAURL:   "/products",
			Stats:    []HeroStat{{ID: newID(), Value: "10k+", Label: "Happy customers"}},
			Features: []HeroFeature{{ID: newID(), Text: "Free returns"}},
		},
		TrustBar: []TrustBarItem{
			{ID: newID(), Icon: "truck", Text: "Free shipping over $50"},
		},
		NewArrivals: SectionHeading{Title: "New arrivals"},
		Categories:  SectionHeading{Title: "Shop by category"},
		Products:    ProductsContent{Title: "Our products", LayoutID: "grid", Columns: 3, ShowPrices: true},
		Newsletter:  NewsletterContent{Heading: "Stay in the loop", ButtonLabel: "Subscribe"},
		Footer: FooterContent{
			Links: []FooterLink{{ID: newID(), Label: "About", URL: "/about"}},
		},
	}

	return d
}

// Model returns the draft's composition model.
func (d *Draft) Model() *composition.Model {
	return d.model
}

// Blocks returns the draft's custom block store.
func (d *Draft) Blocks() *blocks.Store {
	return d.blocks
}

// MarkDirty flags the draft as having unsaved changes.
func (d *Draft) MarkDirty() {
	d.dirty = true
}

// ClearDirty flags the draft as saved.
func (d *Draft) ClearDirty() {
	d.dirty = false
}

// Dirty reports whether the draft has unsaved changes.
func (d *Draft) Dirty() bool {
	return d.dirty
}
