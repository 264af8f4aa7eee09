package draft

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopforge/shopforge/internal/blocks"
	"github.com/shopforge/shopforge/internal/errors"
)

func draftWithBlock(t *testing.T) (*Draft, *blocks.Block) {
	t.Helper()

	d := Default("shop-1", "modern")
	block, err := d.Blocks().Create(blocks.TypeFAQ, "FAQ", &blocks.FAQConfig{
		Items: []blocks.FAQItem{{Question: "Shipping?", Answer: "Worldwide."}},
	})
	require.NoError(t, err)
	require.NoError(t, d.Model().InsertCustomBlockID(block.ID))

	return d, block
}

func TestSnapshotCapturesState(t *testing.T) {
	d, block := draftWithBlock(t)
	d.Model().SetVisibility("marquee", false)

	snap := d.Snapshot()

	assert.Equal(t, ConfigVersion, snap.Version)
	assert.Equal(t, "shop-1", snap.ShopID)
	assert.Equal(t, "modern", snap.ThemeID)
	assert.Contains(t, snap.SectionOrder, block.ID)
	assert.Contains(t, snap.HiddenSections, "marquee")
	require.Len(t, snap.Blocks, 1)
	assert.Equal(t, block.ID, snap.Blocks[0].ID)
}

func TestSnapshotIsIsolatedFromLaterEdits(t *testing.T) {
	d, block := draftWithBlock(t)

	snap := d.Snapshot()

	// Mutate the draft after the snapshot was taken.
	d.Identity.Name = "Renamed Shop"
	_, err := d.AddTrustBarItem("star", "New signal")
	require.NoError(t, err)
	d.Model().RemoveID(block.ID)
	d.Blocks().Remove(block.ID)
	title := "Changed"
	_, _ = d.Blocks().Update(block.ID, blocks.Patch{Title: &title})

	assert.Equal(t, "My Shop", snap.Identity.Name)
	assert.Len(t, snap.Content.TrustBar, 1)
	assert.Contains(t, snap.SectionOrder, block.ID)
	require.Len(t, snap.Blocks, 1)
	assert.Equal(t, "FAQ", snap.Blocks[0].Title)
}

func TestSnapshotJSONRoundTrip(t *testing.T) {
	d, block := draftWithBlock(t)
	d.Model().SetVisibility("trustBar", false)

	data, err := json.Marshal(d.Snapshot())
	require.NoError(t, err)
	assert.Contains(t, string(data), `"configVersion":1`)

	var decoded Snapshot
	require.NoError(t, json.Unmarshal(data, &decoded))

	restored, err := FromSnapshot(decoded)
	require.NoError(t, err)

	assert.Equal(t, d.Model().Order(), restored.Model().Order())
	visible, ok := restored.Model().Visible("trustBar")
	require.True(t, ok)
	assert.False(t, visible)

	got, ok := restored.Blocks().Get(block.ID)
	require.True(t, ok)
	assert.Equal(t, "FAQ", got.Title)
	assert.False(t, restored.Dirty())
}

func TestFromSnapshotRejectsOrphans(t *testing.T) {
	d, block := draftWithBlock(t)
	snap := d.Snapshot()

	t.Run("order references unknown block", func(t *testing.T) {
		bad := snap
		bad.Blocks = nil
		_, err := FromSnapshot(bad)
		assert.True(t, errors.HasCode(err, errors.CodeBlockNotFound))
	})

	t.Run("block with no order entry", func(t *testing.T) {
		bad := snap
		bad.SectionOrder = nil
		for _, id := range snap.SectionOrder {
			if id != block.ID {
				bad.SectionOrder = append(bad.SectionOrder, id)
			}
		}
		_, err := FromSnapshot(bad)
		assert.True(t, errors.HasCode(err, errors.CodeBlockNotFound))
	})
}

func TestFromSnapshotRejectsBadVersions(t *testing.T) {
	d, _ := draftWithBlock(t)
	snap := d.Snapshot()

	snap.Version = 99
	_, err := FromSnapshot(snap)
	assert.Error(t, err)

	snap = d.Snapshot()
	snap.ThemeID = ""
	_, err = FromSnapshot(snap)
	assert.True(t, errors.HasCode(err, errors.CodeUnknownTheme))
}

func TestFromSnapshotRejectsDuplicateOrderIDs(t *testing.T) {
	d, _ := draftWithBlock(t)
	snap := d.Snapshot()
	snap.SectionOrder = append(snap.SectionOrder, "hero")

	_, err := FromSnapshot(snap)
	assert.True(t, errors.HasCode(err, errors.CodeIllegalReorder))
}
