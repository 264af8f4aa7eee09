package editor

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopforge/shopforge/internal/blocks"
	"github.com/shopforge/shopforge/internal/draft"
	"github.com/shopforge/shopforge/internal/errors"
	"github.com/shopforge/shopforge/internal/store"
)

func newTestEditor(t *testing.T) (*Editor, *[]Change) {
	t.Helper()

	changes := &[]Change{}
	d := draft.Default("shop-1", "modern")
	e := New(d, nil, func(c Change) { *changes = append(*changes, c) }, func(id string) bool {
		return id == "modern" || id == "classic"
	})

	return e, changes
}

func faqConfig() *blocks.FAQConfig {
	return &blocks.FAQConfig{Items: []blocks.FAQItem{{Question: "Q", Answer: "A"}}}
}

func TestScenarioAAddBlock(t *testing.T) {
	e, _ := newTestEditor(t)
	before := e.Draft().Model().Order()

	block, err := e.AddBlock(blocks.TypeFAQ, "FAQ", faqConfig())
	require.NoError(t, err)

	order := e.Draft().Model().Order()
	require.Len(t, order, len(before)+1)
	assert.Equal(t, before, order[:len(before)], "existing order is untouched")
	assert.Equal(t, block.ID, order[len(order)-1], "new block is appended last")

	stored, ok := e.Draft().Blocks().Get(block.ID)
	require.True(t, ok)
	assert.Equal(t, "FAQ", stored.Title)
	assert.True(t, e.Draft().Dirty())
}

func TestScenarioBRemoveBlockIsIdempotent(t *testing.T) {
	e, _ := newTestEditor(t)
	before := e.Draft().Model().Order()

	block, err := e.AddBlock(blocks.TypeFAQ, "FAQ", faqConfig())
	require.NoError(t, err)

	e.RemoveBlock(block.ID)
	assert.Equal(t, before, e.Draft().Model().Order())
	_, ok := e.Draft().Blocks().Get(block.ID)
	assert.False(t, ok)

	// Removing again changes nothing.
	e.RemoveBlock(block.ID)
	assert.Equal(t, before, e.Draft().Model().Order())
	assert.Equal(t, 0, e.Draft().Blocks().Len())
}

func TestAddBlockFailureLeavesModelUntouched(t *testing.T) {
	e, changes := newTestEditor(t)
	before := e.Draft().Model().Order()

	_, err := e.AddBlock(blocks.TypeFAQ, "FAQ", &blocks.FAQConfig{})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeInvalidBlockConfig))

	assert.Equal(t, before, e.Draft().Model().Order())
	assert.Equal(t, 0, e.Draft().Blocks().Len())
	assert.False(t, e.Draft().Dirty(), "failed operations leave the draft clean")
	assert.Empty(t, *changes)
}

func TestOrderStoreConsistency(t *testing.T) {
	e, _ := newTestEditor(t)

	var ids []string
	for i := 0; i < 5; i++ {
		block, err := e.AddBlock(blocks.TypeFAQ, "FAQ", faqConfig())
		require.NoError(t, err)
		ids = append(ids, block.ID)
	}
	e.RemoveBlock(ids[1])
	e.RemoveBlock(ids[3])
	e.RemoveBlock(ids[3]) // double removal

	// Every custom id in the order exists in the store, and vice versa.
	orderIDs := e.Draft().Model().CustomBlockIDs()
	assert.ElementsMatch(t, orderIDs, e.Draft().Blocks().IDs())
}

func TestEditBlock(t *testing.T) {
	e, _ := newTestEditor(t)
	block, err := e.AddBlock(blocks.TypeFAQ, "FAQ", faqConfig())
	require.NoError(t, err)
	orderBefore := e.Draft().Model().Order()

	title := "Common questions"
	updated, err := e.EditBlock(block.ID, blocks.Patch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Common questions", updated.Title)

	// Editing never changes position.
	assert.Equal(t, orderBefore, e.Draft().Model().Order())

	_, err = e.EditBlock("missing", blocks.Patch{Title: &title})
	assert.True(t, errors.HasCode(err, errors.CodeBlockNotFound))
}

func TestReorderSections(t *testing.T) {
	e, changes := newTestEditor(t)
	order := e.Draft().Model().Order()

	reversed := make([]string, len(order))
	for i, id := range order {
		reversed[len(order)-1-i] = id
	}

	require.NoError(t, e.ReorderSections(reversed))
	assert.Equal(t, reversed, e.Draft().Model().Order())

	// A bad payload is rejected, logged, and the prior order stands.
	mutations := len(*changes)
	err := e.ReorderSections(reversed[1:])
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeIllegalReorder))
	assert.Equal(t, reversed, e.Draft().Model().Order())
	assert.Len(t, *changes, mutations, "failed reorders do not notify the preview")
}

func TestToggleSection(t *testing.T) {
	e, _ := newTestEditor(t)

	e.ToggleSection("trustBar", false)
	visible, ok := e.Draft().Model().Visible("trustBar")
	require.True(t, ok)
	assert.False(t, visible)
}

func TestToggleSectionIgnoresNonBuiltinIDs(t *testing.T) {
	e, changes := newTestEditor(t)

	block, err := e.AddBlock(blocks.TypeFAQ, "FAQ", faqConfig())
	require.NoError(t, err)
	e.Draft().ClearDirty()
	*changes = (*changes)[:0]

	e.ToggleSection("no-such-section", false)
	e.ToggleSection(block.ID, false)

	assert.Empty(t, *changes, "ignored toggles publish nothing")
	assert.False(t, e.Draft().Dirty())
	visible, ok := e.Draft().Model().Visible(block.ID)
	require.True(t, ok)
	assert.True(t, visible, "custom blocks keep no visibility flag")
}

func TestSetTheme(t *testing.T) {
	e, changes := newTestEditor(t)

	require.NoError(t, e.SetTheme("classic"))
	assert.Equal(t, "classic", e.Draft().ThemeID)
	require.NotEmpty(t, *changes)
	assert.True(t, (*changes)[len(*changes)-1].Structural)

	err := e.SetTheme("brutalist")
	assert.True(t, errors.HasCode(err, errors.CodeUnknownTheme))
	assert.Equal(t, "classic", e.Draft().ThemeID)

	// Setting the same theme again is a no-op, not a reload.
	n := len(*changes)
	require.NoError(t, e.SetTheme("classic"))
	assert.Len(t, *changes, n)
}

func TestContentMutationsNotify(t *testing.T) {
	e, changes := newTestEditor(t)

	e.SetIdentity(draft.Identity{Name: "New Name", Currency: "EUR", Locale: "de-DE"})
	e.SetDesign(draft.Design{PaletteID: "forest"})
	e.UpdateContent(func(c *draft.Content) {
		c.Hero.Headline = "Spring sale"
	})

	assert.Equal(t, "New Name", e.Draft().Identity.Name)
	assert.Equal(t, "Spring sale", e.Draft().Content.Hero.Headline)
	assert.Len(t, *changes, 3)
	for _, c := range *changes {
		assert.False(t, c.Structural)
	}
}

type fakeGateway struct {
	saved []draft.Snapshot
	err   error
}

func (g *fakeGateway) Save(_ context.Context, snap draft.Snapshot) error {
	if g.err != nil {
		return g.err
	}
	g.saved = append(g.saved, snap)
	return nil
}

func (g *fakeGateway) Load(context.Context, string) (draft.Snapshot, error) {
	return draft.Snapshot{}, store.ErrNotFound
}

func (g *fakeGateway) Close() error { return nil }

func TestSaveClearsDirty(t *testing.T) {
	e, _ := newTestEditor(t)
	gw := &fakeGateway{}

	e.ToggleSection("trustBar", false)
	require.True(t, e.Draft().Dirty())

	require.NoError(t, e.Save(context.Background(), gw))
	assert.False(t, e.Draft().Dirty())
	require.Len(t, gw.saved, 1)
	assert.Contains(t, gw.saved[0].HiddenSections, "trustBar")
}

func TestSaveFailureKeepsDraftDirty(t *testing.T) {
	e, _ := newTestEditor(t)
	gw := &fakeGateway{err: stderrors.New("disk full")}

	e.ToggleSection("trustBar", false)

	err := e.Save(context.Background(), gw)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeGatewaySaveFailed))
	assert.True(t, e.Draft().Dirty(), "no work is lost on a failed save")
}

func TestSaveSnapshotIsolation(t *testing.T) {
	e, _ := newTestEditor(t)
	gw := &fakeGateway{}

	require.NoError(t, e.Save(context.Background(), gw))

	// Edits after the save call must not retroactively alter the payload.
	e.SetIdentity(draft.Identity{Name: "Changed After Save"})

	require.Len(t, gw.saved, 1)
	assert.Equal(t, "My Shop", gw.saved[0].Identity.Name)
}

func TestSectionsViews(t *testing.T) {
	e, _ := newTestEditor(t)
	block, err := e.AddBlock(blocks.TypeFAQ, "Customer FAQ", faqConfig())
	require.NoError(t, err)

	views := e.Sections()
	require.NotEmpty(t, views)

	assert.Equal(t, "hero", views[0].ID)
	assert.Equal(t, "Hero", views[0].Label)
	assert.Equal(t, "builtin", views[0].Kind)

	last := views[len(views)-1]
	assert.Equal(t, block.ID, last.ID)
	assert.Equal(t, "Customer FAQ", last.Label)
	assert.Equal(t, "customBlock", last.Kind)
	assert.Equal(t, "faq", last.BlockType)
	assert.True(t, last.Visible)
}
