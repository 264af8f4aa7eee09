package blocks

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopforge/shopforge/internal/errors"
)

func TestTestimonialCarouselValidate(t *testing.T) {
	valid := &TestimonialCarouselConfig{Quotes: []Quote{
		{Text: "Great shop", Author: "Ana", Rating: 5},
		{Text: "Fast shipping", Author: "Ben"},
	}}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name string
		cfg  *TestimonialCarouselConfig
	}{
		{"no quotes", &TestimonialCarouselConfig{}},
		{"too many quotes", &TestimonialCarouselConfig{Quotes: make([]Quote, 9)}},
		{"empty text", &TestimonialCarouselConfig{Quotes: []Quote{{Text: " ", Author: "Ana"}}}},
		{"empty author", &TestimonialCarouselConfig{Quotes: []Quote{{Text: "Nice", Author: ""}}}},
		{"rating out of range", &TestimonialCarouselConfig{Quotes: []Quote{{Text: "Nice", Author: "Ana", Rating: 6}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			assert.True(t, errors.HasCode(err, errors.CodeInvalidBlockConfig))
		})
	}
}

func TestFAQValidate(t *testing.T) {
	assert.NoError(t, (&FAQConfig{Items: []FAQItem{{Question: "Q", Answer: "A"}}}).Validate())
	assert.Error(t, (&FAQConfig{}).Validate())
	assert.Error(t, (&FAQConfig{Items: make([]FAQItem, 13)}).Validate())
	assert.Error(t, (&FAQConfig{Items: []FAQItem{{Question: "Q", Answer: " "}}}).Validate())
}

func TestMediaEmbedValidate(t *testing.T) {
	assert.NoError(t, (&MediaEmbedConfig{URL: "https://cdn.example.com/v.mp4", Kind: "video"}).Validate())
	assert.Error(t, (&MediaEmbedConfig{URL: "/v.mp4", Kind: "video"}).Validate())
	assert.Error(t, (&MediaEmbedConfig{URL: "ftp://cdn.example.com/v.mp4", Kind: "video"}).Validate())
	assert.Error(t, (&MediaEmbedConfig{URL: "https://cdn.example.com/v.mp4", Kind: "audio"}).Validate())
	assert.Error(t, (&MediaEmbedConfig{
		URL:     "https://cdn.example.com/v.mp4",
		Kind:    "video",
		Caption: strings.Repeat("x", 281),
	}).Validate())
}

func TestTextImageValidate(t *testing.T) {
	valid := &TextImageConfig{
		Heading:       "Our story",
		Body:          "Founded in a garage.",
		ImageURL:      "https://cdn.example.com/story.jpg",
		ImagePosition: "left",
	}
	assert.NoError(t, valid.Validate())

	assert.Error(t, (&TextImageConfig{Heading: "", ImageURL: valid.ImageURL, ImagePosition: "left"}).Validate())
	assert.Error(t, (&TextImageConfig{Heading: "H", ImageURL: valid.ImageURL, ImagePosition: "center"}).Validate())
	assert.Error(t, (&TextImageConfig{Heading: "H", ImageURL: "not a url at all ://", ImagePosition: "left"}).Validate())

	long := *valid
	long.Body = strings.Repeat("x", 2001)
	assert.Error(t, long.Validate())
}

func TestSocialEmbedValidate(t *testing.T) {
	valid := &SocialEmbedConfig{
		Provider:  "instagram",
		URL:       "https://www.instagram.com/p/abc123/",
		EmbedHTML: `<blockquote class="instagram-media"><a href="https://www.instagram.com/p/abc123/">Post</a></blockquote><script async src="//www.instagram.com/embed.js"></script>`,
	}
	assert.NoError(t, valid.Validate())

	t.Run("unsupported provider", func(t *testing.T) {
		cfg := *valid
		cfg.Provider = "myspace"
		assert.Error(t, cfg.Validate())
	})

	t.Run("relative url", func(t *testing.T) {
		cfg := *valid
		cfg.URL = "/p/abc123/"
		assert.Error(t, cfg.Validate())
	})

	t.Run("inline script", func(t *testing.T) {
		cfg := *valid
		cfg.EmbedHTML = `<blockquote></blockquote><script>alert(1)</script>`
		assert.Error(t, cfg.Validate())
	})

	t.Run("script from foreign host", func(t *testing.T) {
		cfg := *valid
		cfg.EmbedHTML = `<script src="https://evil.example.com/embed.js"></script>`
		assert.Error(t, cfg.Validate())
	})

	t.Run("event handler attribute", func(t *testing.T) {
		cfg := *valid
		cfg.EmbedHTML = `<img src="https://www.instagram.com/x.png" onerror="alert(1)">`
		assert.Error(t, cfg.Validate())
	})

	t.Run("javascript url", func(t *testing.T) {
		cfg := *valid
		cfg.EmbedHTML = `<a href="javascript:alert(1)">click</a>`
		assert.Error(t, cfg.Validate())
	})

	t.Run("youtube iframe without script", func(t *testing.T) {
		cfg := SocialEmbedConfig{
			Provider:  "youtube",
			URL:       "https://www.youtube.com/watch?v=xyz",
			EmbedHTML: `<iframe src="https://www.youtube.com/embed/xyz" allowfullscreen></iframe>`,
		}
		assert.NoError(t, cfg.Validate())
	})

	t.Run("srcdoc iframe is rejected", func(t *testing.T) {
		cfg := SocialEmbedConfig{
			Provider:  "youtube",
			URL:       "https://www.youtube.com/watch?v=xyz",
			EmbedHTML: `<iframe srcdoc="&lt;script&gt;alert(1)&lt;/script&gt;"></iframe>`,
		}
		assert.Error(t, cfg.Validate())
	})

	t.Run("iframe from foreign host is rejected", func(t *testing.T) {
		cfg := SocialEmbedConfig{
			Provider:  "youtube",
			URL:       "https://www.youtube.com/watch?v=xyz",
			EmbedHTML: `<iframe src="https://evil.example.com/embed/xyz"></iframe>`,
		}
		assert.Error(t, cfg.Validate())
	})

	t.Run("iframe without src is rejected", func(t *testing.T) {
		cfg := SocialEmbedConfig{
			Provider:  "youtube",
			URL:       "https://www.youtube.com/watch?v=xyz",
			EmbedHTML: `<iframe></iframe>`,
		}
		assert.Error(t, cfg.Validate())
	})

	t.Run("youtube with script is rejected", func(t *testing.T) {
		cfg := SocialEmbedConfig{
			Provider:  "youtube",
			URL:       "https://www.youtube.com/watch?v=xyz",
			EmbedHTML: `<script src="https://www.youtube.com/embed.js"></script>`,
		}
		assert.Error(t, cfg.Validate())
	})
}

func TestParseConfigDispatch(t *testing.T) {
	raw := json.RawMessage(`{"items":[{"question":"Q","answer":"A"}]}`)

	cfg, err := ParseConfig(TypeFAQ, raw)
	require.NoError(t, err)
	assert.Equal(t, TypeFAQ, cfg.BlockType())

	_, err = ParseConfig(Type("countdown"), raw)
	assert.True(t, errors.HasCode(err, errors.CodeUnknownBlockType))

	_, err = ParseConfig(TypeFAQ, json.RawMessage(`{"items":`))
	assert.True(t, errors.HasCode(err, errors.CodeInvalidBlockConfig))

	_, err = ParseConfig(TypeFAQ, json.RawMessage(`{"items":[]}`))
	assert.True(t, errors.HasCode(err, errors.CodeInvalidBlockConfig))
}

func TestBlockJSONRoundTrip(t *testing.T) {
	original := Block{
		ID:    "blk-1",
		Type:  TypeTextImage,
		Title: "Our story",
		Config: &TextImageConfig{
			Heading:       "Our story",
			ImageURL:      "https://cdn.example.com/story.jpg",
			ImagePosition: "right",
		},
	}

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded Block
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, original.ID, decoded.ID)
	assert.Equal(t, original.Type, decoded.Type)
	require.IsType(t, &TextImageConfig{}, decoded.Config)
	assert.Equal(t, "right", decoded.Config.(*TextImageConfig).ImagePosition)
}

func TestKnownTypes(t *testing.T) {
	for _, typ := range Types() {
		assert.True(t, KnownType(typ))
	}
	assert.False(t, KnownType(Type("countdown")))
}
