package renderer

import (
	"fmt"
	"io"

	"github.com/a-h/templ"

	"github.com/shopforge/shopforge/internal/blocks"
)

// renderBlock renders a custom block entry. Custom blocks are present in
// every theme: they carry their own structure and the theme styles them
// through the block-type class.
func renderBlock(w io.Writer, block blocks.Block) error {
	if _, err := fmt.Fprintf(w, `<section class="block block-%s" data-block="%s"><h2>%s</h2>`,
		templ.EscapeString(string(block.Type)), templ.EscapeString(block.ID),
		templ.EscapeString(block.Title)); err != nil {
		return err
	}

	var err error
	switch cfg := block.Config.(type) {
	case *blocks.TestimonialCarouselConfig:
		err = renderTestimonials(w, cfg)
	case *blocks.SocialEmbedConfig:
		err = renderSocialEmbed(w, cfg)
	case *blocks.FAQConfig:
		err = renderFAQ(w, cfg)
	case *blocks.MediaEmbedConfig:
		err = renderMediaEmbed(w, cfg)
	case *blocks.TextImageConfig:
		err = renderTextImage(w, cfg)
	default:
		err = fmt.Errorf("no renderer for block type %q", block.Type)
	}
	if err != nil {
		return err
	}

	_, err = io.WriteString(w, `</section>`)
	return err
}

func renderTestimonials(w io.Writer, cfg *blocks.TestimonialCarouselConfig) error {
	if _, err := io.WriteString(w, `<div class="carousel">`); err != nil {
		return err
	}
	for _, q := range cfg.Quotes {
		if _, err := fmt.Fprintf(w,
			`<blockquote data-rating="%d"><p>%s</p><cite>%s</cite></blockquote>`,
			q.Rating, templ.EscapeString(q.Text), templ.EscapeString(q.Author)); err != nil {
			return err
		}
	}

	_, err := io.WriteString(w, `</div>`)
	return err
}

// renderSocialEmbed writes the embed snippet unescaped: the config
// validator already rejected anything beyond the provider's official embed
// markup, and that validation is the only gate user HTML passes through.
func renderSocialEmbed(w io.Writer, cfg *blocks.SocialEmbedConfig) error {
	_, err := fmt.Fprintf(w, `<div class="social-embed" data-provider="%s">%s</div>`,
		templ.EscapeString(cfg.Provider), cfg.EmbedHTML)

	return err
}

func renderFAQ(w io.Writer, cfg *blocks.FAQConfig) error {
	if _, err := io.WriteString(w, `<dl class="faq">`); err != nil {
		return err
	}
	for _, item := range cfg.Items {
		if _, err := fmt.Fprintf(w, `<dt>%s</dt><dd>%s</dd>`,
			templ.EscapeString(item.Question), templ.EscapeString(item.Answer)); err != nil {
			return err
		}
	}

	_, err := io.WriteString(w, `</dl>`)
	return err
}

func renderMediaEmbed(w io.Writer, cfg *blocks.MediaEmbedConfig) error {
	var err error
	if cfg.Kind == "video" {
		_, err = fmt.Fprintf(w, `<video controls src="%s"></video>`, urlAttr(cfg.URL))
	} else {
		_, err = fmt.Fprintf(w, `<img src="%s" alt="%s">`, urlAttr(cfg.URL), templ.EscapeString(cfg.Caption))
	}
	if err != nil {
		return err
	}

	if cfg.Caption != "" {
		_, err = fmt.Fprintf(w, `<figcaption>%s</figcaption>`, templ.EscapeString(cfg.Caption))
	}

	return err
}

func renderTextImage(w io.Writer, cfg *blocks.TextImageConfig) error {
	_, err := fmt.Fprintf(w,
		`<div class="text-image image-%s"><img src="%s" alt=""><div><h3>%s</h3><p>%s</p></div></div>`,
		templ.EscapeString(cfg.ImagePosition), urlAttr(cfg.ImageURL),
		templ.EscapeString(cfg.Heading), templ.EscapeString(cfg.Body))

	return err
}
