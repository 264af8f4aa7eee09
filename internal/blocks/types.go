// Package blocks owns user-authored custom block instances: their closed
// set of types, per-type validated config schemas, and the store that holds
// authoritative block content keyed by id. Ordering lives in the
// composition package; a block here must always have a matching entry
// there, which the editor façade guarantees.
package blocks

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/shopforge/shopforge/internal/errors"
)

// Type tags a custom block variant. The set is closed; each type owns its
// own config schema and validator, dispatched through the decoder registry.
type Type string

const (
	TypeTestimonialCarousel Type = "testimonial-carousel"
	TypeSocialEmbed         Type = "social-embed"
	TypeFAQ                 Type = "faq"
	TypeMediaEmbed          Type = "media-embed"
	TypeTextImage           Type = "text-image"
)

// Config is the type-specific payload of a custom block.
type Config interface {
	BlockType() Type
	Validate() error
}

// decoders maps each block type to its config decoder. An unknown type is
// caught here once rather than duck-typed at every call site.
var decoders = map[Type]func(json.RawMessage) (Config, error){
	TypeTestimonialCarousel: decodeInto[*TestimonialCarouselConfig],
	TypeSocialEmbed:         decodeInto[*SocialEmbedConfig],
	TypeFAQ:                 decodeInto[*FAQConfig],
	TypeMediaEmbed:          decodeInto[*MediaEmbedConfig],
	TypeTextImage:           decodeInto[*TextImageConfig],
}

func decodeInto[T Config](raw json.RawMessage) (Config, error) {
	var cfg T
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// KnownType reports whether t names a registered block type.
func KnownType(t Type) bool {
	_, ok := decoders[t]
	return ok
}

// Types returns the registered block types.
func Types() []Type {
	return []Type{
		TypeTestimonialCarousel,
		TypeSocialEmbed,
		TypeFAQ,
		TypeMediaEmbed,
		TypeTextImage,
	}
}

// ParseConfig decodes and validates a raw config payload for the given type.
func ParseConfig(t Type, raw json.RawMessage) (Config, error) {
	decode, ok := decoders[t]
	if !ok {
		return nil, errors.NewValidationError(errors.CodeUnknownBlockType,
			fmt.Sprintf("unknown block type %q", t))
	}

	cfg, err := decode(raw)
	if err != nil {
		return nil, errors.InvalidBlockConfig(string(t), "malformed payload").WithCause(err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Quote is one testimonial in a carousel.
type Quote struct {
	Text   string `json:"text"`
	Author string `json:"author"`
	Rating int    `json:"rating,omitempty"`
}

// TestimonialCarouselConfig holds 1-8 customer quotes.
type TestimonialCarouselConfig struct {
	Quotes []Quote `json:"quotes"`
}

func (c *TestimonialCarouselConfig) BlockType() Type { return TypeTestimonialCarousel }

func (c *TestimonialCarouselConfig) Validate() error {
	if len(c.Quotes) < 1 || len(c.Quotes) > 8 {
		return errors.InvalidBlockConfig(string(c.BlockType()),
			fmt.Sprintf("between 1 and 8 quotes required, got %d", len(c.Quotes)))
	}
	for i, q := range c.Quotes {
		if strings.TrimSpace(q.Text) == "" {
			return errors.InvalidBlockConfig(string(c.BlockType()), fmt.Sprintf("quote %d has no text", i))
		}
		if strings.TrimSpace(q.Author) == "" {
			return errors.InvalidBlockConfig(string(c.BlockType()), fmt.Sprintf("quote %d has no author", i))
		}
		if q.Rating != 0 && (q.Rating < 1 || q.Rating > 5) {
			return errors.InvalidBlockConfig(string(c.BlockType()), fmt.Sprintf("quote %d rating must be 1-5", i))
		}
	}

	return nil
}

// SocialEmbedConfig embeds a post from a supported social network. The
// embed HTML is validated structurally, see embed.go.
type SocialEmbedConfig struct {
	Provider  string `json:"provider"`
	URL       string `json:"url"`
	EmbedHTML string `json:"embedHtml"`
}

func (c *SocialEmbedConfig) BlockType() Type { return TypeSocialEmbed }

func (c *SocialEmbedConfig) Validate() error {
	if _, ok := embedProviders[c.Provider]; !ok {
		return errors.InvalidBlockConfig(string(c.BlockType()),
			fmt.Sprintf("unsupported provider %q", c.Provider))
	}
	if err := requireAbsoluteHTTPURL(c.URL); err != nil {
		return errors.InvalidBlockConfig(string(c.BlockType()), "url: "+err.Error())
	}
	if strings.TrimSpace(c.EmbedHTML) == "" {
		return errors.InvalidBlockConfig(string(c.BlockType()), "embedHtml is required")
	}
	if err := validateEmbedHTML(c.Provider, c.EmbedHTML); err != nil {
		return errors.InvalidBlockConfig(string(c.BlockType()), "embedHtml: "+err.Error())
	}

	return nil
}

// FAQItem is one question/answer pair.
type FAQItem struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// FAQConfig holds 1-12 question/answer pairs.
type FAQConfig struct {
	Items []FAQItem `json:"items"`
}

func (c *FAQConfig) BlockType() Type { return TypeFAQ }

func (c *FAQConfig) Validate() error {
	if len(c.Items) < 1 || len(c.Items) > 12 {
		return errors.InvalidBlockConfig(string(c.BlockType()),
			fmt.Sprintf("between 1 and 12 items required, got %d", len(c.Items)))
	}
	for i, item := range c.Items {
		if strings.TrimSpace(item.Question) == "" {
			return errors.InvalidBlockConfig(string(c.BlockType()), fmt.Sprintf("item %d has no question", i))
		}
		if strings.TrimSpace(item.Answer) == "" {
			return errors.InvalidBlockConfig(string(c.BlockType()), fmt.Sprintf("item %d has no answer", i))
		}
	}

	return nil
}

// MediaEmbedConfig embeds a hosted video or image by URL.
type MediaEmbedConfig struct {
	URL     string `json:"url"`
	Kind    string `json:"kind"`
	Caption string `json:"caption,omitempty"`
}

func (c *MediaEmbedConfig) BlockType() Type { return TypeMediaEmbed }

func (c *MediaEmbedConfig) Validate() error {
	if err := requireAbsoluteHTTPURL(c.URL); err != nil {
		return errors.InvalidBlockConfig(string(c.BlockType()), "url: "+err.Error())
	}
	if c.Kind != "video" && c.Kind != "image" {
		return errors.InvalidBlockConfig(string(c.BlockType()),
			fmt.Sprintf("kind must be video or image, got %q", c.Kind))
	}
	if len(c.Caption) > 280 {
		return errors.InvalidBlockConfig(string(c.BlockType()), "caption exceeds 280 characters")
	}

	return nil
}

// TextImageConfig pairs copy with an image on either side.
type TextImageConfig struct {
	Heading       string `json:"heading"`
	Body          string `json:"body,omitempty"`
	ImageURL      string `json:"imageUrl"`
	ImagePosition string `json:"imagePosition"`
}

func (c *TextImageConfig) BlockType() Type { return TypeTextImage }

func (c *TextImageConfig) Validate() error {
	if strings.TrimSpace(c.Heading) == "" {
		return errors.InvalidBlockConfig(string(c.BlockType()), "heading is required")
	}
	if len(c.Body) > 2000 {
		return errors.InvalidBlockConfig(string(c.BlockType()), "body exceeds 2000 characters")
	}
	if err := requireAbsoluteHTTPURL(c.ImageURL); err != nil {
		return errors.InvalidBlockConfig(string(c.BlockType()), "imageUrl: "+err.Error())
	}
	if c.ImagePosition != "left" && c.ImagePosition != "right" {
		return errors.InvalidBlockConfig(string(c.BlockType()),
			fmt.Sprintf("imagePosition must be left or right, got %q", c.ImagePosition))
	}

	return nil
}

func requireAbsoluteHTTPURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return fmt.Errorf("required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("not a valid url")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("must be absolute http(s)")
	}
	if u.Host == "" {
		return fmt.Errorf("must be absolute http(s)")
	}

	return nil
}
