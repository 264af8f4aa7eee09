package renderer

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"github.com/shopforge/shopforge/internal/blocks"
	"github.com/shopforge/shopforge/internal/draft"
	"github.com/shopforge/shopforge/internal/registry"
)

// htmlTheme is the manifest-driven HTML engine behind every theme. The
// manifest decides which sections render; the theme id scopes the CSS so
// stylesheets can restyle the same markup per theme.
type htmlTheme struct {
	manifest Manifest
}

func (t *htmlTheme) ID() string {
	return t.manifest.ID
}

func (t *htmlTheme) Manifest() Manifest {
	return t.manifest
}

// urlAttr sanitizes a merchant-authored URL for use inside a quoted
// attribute. templ.URL rejects unsafe schemes (javascript:, data:) by
// rewriting them to about:invalid, and the escape neutralizes quotes.
func urlAttr(u string) string {
	return templ.EscapeString(string(templ.URL(u)))
}

func (t *htmlTheme) Render(ctx context.Context, w io.Writer, snap draft.Snapshot) error {
	return t.page(snap).Render(ctx, w)
}

func (t *htmlTheme) page(snap draft.Snapshot) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hidden := make(map[string]bool, len(snap.HiddenSections))
		for _, id := range snap.HiddenSections {
			hidden[id] = true
		}
		blockByID := make(map[string]blocks.Block, len(snap.Blocks))
		for _, b := range snap.Blocks {
			blockByID[b.ID] = b
		}

		if _, err := fmt.Fprintf(w,
			`<div class="shop theme-%s palette-%s font-%s" data-shop="%s">`,
			templ.EscapeString(t.manifest.ID),
			templ.EscapeString(snap.Design.PaletteID),
			templ.EscapeString(snap.Design.FontID),
			templ.EscapeString(snap.ShopID),
		); err != nil {
			return err
		}

		if err := t.header(w, snap); err != nil {
			return err
		}

		for _, id := range snap.SectionOrder {
			if block, ok := blockByID[id]; ok {
				if err := renderBlock(w, block); err != nil {
					return err
				}
				continue
			}
			if hidden[id] || !t.manifest.Supports(id) {
				continue
			}
			if err := t.section(w, registry.Kind(id), snap); err != nil {
				return err
			}
		}

		if err := t.footer(w, snap); err != nil {
			return err
		}

		_, err := io.WriteString(w, `</div>`)
		return err
	})
}

func (t *htmlTheme) header(w io.Writer, snap draft.Snapshot) error {
	_, err := fmt.Fprintf(w,
		`<header class="shop-header header-%s"><h1>%s</h1><p class="tagline">%s</p></header>`,
		templ.EscapeString(snap.Design.HeaderStyleID),
		templ.EscapeString(snap.Identity.Name),
		templ.EscapeString(snap.Identity.Tagline),
	)

	return err
}

func (t *htmlTheme) footer(w io.Writer, snap draft.Snapshot) error {
	if _, err := fmt.Fprintf(w, `<footer class="shop-footer"><p>%s</p><nav>`,
		templ.EscapeString(snap.Content.Footer.AboutText)); err != nil {
		return err
	}
	for _, link := range snap.Content.Footer.Links {
		if _, err := fmt.Fprintf(w, `<a href="%s">%s</a>`,
			urlAttr(link.URL), templ.EscapeString(link.Label)); err != nil {
			return err
		}
	}

	_, err := io.WriteString(w, `</nav></footer>`)
	return err
}

func (t *htmlTheme) section(w io.Writer, kind registry.Kind, snap draft.Snapshot) error {
	switch kind {
	case registry.KindHero:
		return renderHero(w, snap)
	case registry.KindMarquee:
		return renderMarquee(w, snap.Content.Marquee)
	case registry.KindTrustBar:
		return renderTrustBar(w, snap.Content.TrustBar)
	case registry.KindNewArrivals:
		return renderHeading(w, "new-arrivals", snap.Content.NewArrivals)
	case registry.KindCategories:
		return renderHeading(w, "categories", snap.Content.Categories)
	case registry.KindProducts:
		return renderProducts(w, snap.Content.Products)
	case registry.KindPromoBanner:
		return renderPromoBanner(w, snap)
	case registry.KindNewsletter:
		return renderNewsletter(w, snap.Content.Newsletter)
	default:
		// Unsupported kinds are skipped by the caller; reaching here means
		// the registry and this switch are out of sync.
		return fmt.Errorf("no renderer for section kind %q", kind)
	}
}

func renderHero(w io.Writer, snap draft.Snapshot) error {
	hero := snap.Content.Hero
	if _, err := fmt.Fprintf(w,
		`<section class="hero"><h2>%s</h2><p>%s</p>`,
		templ.EscapeString(hero.Headline),
		templ.EscapeString(hero.Subheadline),
	); err != nil {
		return err
	}

	if hero.CTALabel != "" {
		if _, err := fmt.Fprintf(w, `<a class="cta" href="%s">%s</a>`,
			urlAttr(hero.CTAURL), templ.EscapeString(hero.CTALabel)); err != nil {
			return err
		}
	}

	if len(hero.Stats) > 0 {
		if _, err := io.WriteString(w, `<ul class="hero-stats">`); err != nil {
			return err
		}
		for _, stat := range hero.Stats {
			if _, err := fmt.Fprintf(w, `<li><strong>%s</strong> %s</li>`,
				templ.EscapeString(stat.Value), templ.EscapeString(stat.Label)); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, `</ul>`); err != nil {
			return err
		}
	}

	for _, feature := range hero.Features {
		if _, err := fmt.Fprintf(w, `<span class="hero-feature">%s</span>`,
			templ.EscapeString(feature.Text)); err != nil {
			return err
		}
	}

	_, err := io.WriteString(w, `</section>`)
	return err
}

func renderMarquee(w io.Writer, m draft.MarqueeContent) error {
	if _, err := fmt.Fprintf(w, `<section class="marquee" data-speed="%s">`,
		templ.EscapeString(m.Speed)); err != nil {
		return err
	}
	for _, msg := range m.Messages {
		if _, err := fmt.Fprintf(w, `<span>%s</span>`, templ.EscapeString(msg)); err != nil {
			return err
		}
	}

	_, err := io.WriteString(w, `</section>`)
	return err
}

func renderTrustBar(w io.Writer, items []draft.TrustBarItem) error {
	if _, err := io.WriteString(w, `<section class="trust-bar">`); err != nil {
		return err
	}
	for _, item := range items {
		if _, err := fmt.Fprintf(w, `<span class="trust-item" data-icon="%s">%s</span>`,
			templ.EscapeString(item.Icon), templ.EscapeString(item.Text)); err != nil {
			return err
		}
	}

	_, err := io.WriteString(w, `</section>`)
	return err
}

func renderHeading(w io.Writer, class string, h draft.SectionHeading) error {
	_, err := fmt.Fprintf(w, `<section class="%s"><h2>%s</h2><p>%s</p></section>`,
		templ.EscapeString(class), templ.EscapeString(h.Title), templ.EscapeString(h.Subtitle))

	return err
}

func renderProducts(w io.Writer, p draft.ProductsContent) error {
	_, err := fmt.Fprintf(w,
		`<section class="products layout-%s" data-columns="%d" data-prices="%t"><h2>%s</h2></section>`,
		templ.EscapeString(p.LayoutID), p.Columns, p.ShowPrices, templ.EscapeString(p.Title))

	return err
}

func renderPromoBanner(w io.Writer, snap draft.Snapshot) error {
	promo := snap.Content.PromoBanner
	if _, err := fmt.Fprintf(w, `<section class="promo-banner"><h2>%s</h2><p>%s</p>`,
		templ.EscapeString(promo.Heading), templ.EscapeString(promo.Text)); err != nil {
		return err
	}

	if promo.OfferPriceCents > 0 {
		price := formatPrice(promo.OfferPriceCents, snap.Identity.Currency, snap.Identity.Locale)
		if _, err := fmt.Fprintf(w, `<span class="offer-price">%s</span>`,
			templ.EscapeString(price)); err != nil {
			return err
		}
	}
	if promo.CTALabel != "" {
		if _, err := fmt.Fprintf(w, `<a class="cta" href="%s">%s</a>`,
			urlAttr(promo.CTAURL), templ.EscapeString(promo.CTALabel)); err != nil {
			return err
		}
	}

	_, err := io.WriteString(w, `</section>`)
	return err
}

func renderNewsletter(w io.Writer, n draft.NewsletterContent) error {
	_, err := fmt.Fprintf(w,
		`<section class="newsletter"><h2>%s</h2><p>%s</p><form><input placeholder="%s"><button>%s</button></form></section>`,
		templ.EscapeString(n.Heading),
		templ.EscapeString(n.Subheading),
		templ.EscapeString(n.Placeholder),
		templ.EscapeString(n.ButtonLabel),
	)

	return err
}
