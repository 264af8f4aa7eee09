package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopforge/shopforge/internal/blocks"
	"github.com/shopforge/shopforge/internal/draft"
	"github.com/shopforge/shopforge/internal/preview"
	"github.com/shopforge/shopforge/internal/renderer"
)

func newTestSession(t *testing.T) (*Session, *[]preview.Publication) {
	t.Helper()

	pubs := &[]preview.Publication{}
	sink := func(p preview.Publication) { *pubs = append(*pubs, p) }

	s := NewSession(draft.Default("shop-1", "modern"), renderer.NewRegistry(nil),
		&memGateway{}, sink, nil)

	return s, pubs
}

func TestEveryMutationPublishes(t *testing.T) {
	s, pubs := newTestSession(t)

	s.Toggle("marquee", true)
	assert.Len(t, *pubs, 1)

	block, err := s.AddBlock(blocks.TypeFAQ, "FAQ", &blocks.FAQConfig{
		Items: []blocks.FAQItem{{Question: "Q", Answer: "A"}},
	})
	require.NoError(t, err)
	assert.Len(t, *pubs, 2)

	s.RemoveBlock(block.ID)
	assert.Len(t, *pubs, 3)

	s.UpdateContent(func(c *draft.Content) {
		c.Hero.Headline = "Hi"
	})
	assert.Len(t, *pubs, 4)
}

func TestFailedMutationDoesNotPublish(t *testing.T) {
	s, pubs := newTestSession(t)

	err := s.Reorder([]string{"hero"})
	require.Error(t, err)
	assert.Empty(t, *pubs)

	// Removing an unknown block is a no-op and publishes nothing.
	s.RemoveBlock("missing")
	assert.Empty(t, *pubs)
}

func TestFirstPublishReloadsLaterOnesDoNot(t *testing.T) {
	s, pubs := newTestSession(t)

	s.Publish()
	require.Len(t, *pubs, 1)
	assert.True(t, (*pubs)[0].Reload)

	s.Ready((*pubs)[0].Generation)
	s.Toggle("hero", false)
	require.Len(t, *pubs, 2)
	assert.False(t, (*pubs)[1].Reload, "content edits hot-apply")
}

func TestInvalidatePreviewForcesReload(t *testing.T) {
	s, pubs := newTestSession(t)

	s.Publish()
	s.Ready((*pubs)[0].Generation)

	s.InvalidatePreview()
	require.Len(t, *pubs, 2)
	assert.True(t, (*pubs)[1].Reload)

	state, _ := s.PreviewState()
	assert.Equal(t, preview.StateLoading, state)
}

func TestSnapshotIsDetached(t *testing.T) {
	s, _ := newTestSession(t)

	snap := s.Snapshot()
	snap.Content.Hero.Headline = "mutated copy"

	assert.NotEqual(t, "mutated copy", s.Snapshot().Content.Hero.Headline)
}
