package bbolt

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopforge/shopforge/internal/blocks"
	"github.com/shopforge/shopforge/internal/draft"
	"github.com/shopforge/shopforge/internal/store"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(filepath.Join(t.TempDir(), "shops.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return s
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	_, err := Open("  ")
	assert.Error(t, err)
}

func TestOpenCreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "shops.db")
	s, err := Open(path)
	require.NoError(t, err)
	assert.NoError(t, s.Close())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	d := draft.Default("shop-1", "modern")
	block, err := d.Blocks().Create(blocks.TypeFAQ, "FAQ", &blocks.FAQConfig{
		Items: []blocks.FAQItem{{Question: "Returns?", Answer: "30 days."}},
	})
	require.NoError(t, err)
	require.NoError(t, d.Model().InsertCustomBlockID(block.ID))
	d.Model().SetVisibility("marquee", false)

	require.NoError(t, s.Save(ctx, d.Snapshot()))

	loaded, err := s.Load(ctx, "shop-1")
	require.NoError(t, err)
	assert.Equal(t, "modern", loaded.ThemeID)
	assert.Contains(t, loaded.SectionOrder, block.ID)
	assert.Contains(t, loaded.HiddenSections, "marquee")

	// The loaded snapshot rehydrates into a draft.
	restored, err := draft.FromSnapshot(loaded)
	require.NoError(t, err)
	assert.Equal(t, d.Model().Order(), restored.Model().Order())
}

func TestSaveReplacesWholesale(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	d := draft.Default("shop-1", "modern")
	require.NoError(t, s.Save(ctx, d.Snapshot()))

	d.ThemeID = "classic"
	d.Identity.Name = "Renamed"
	require.NoError(t, s.Save(ctx, d.Snapshot()))

	loaded, err := s.Load(ctx, "shop-1")
	require.NoError(t, err)
	assert.Equal(t, "classic", loaded.ThemeID)
	assert.Equal(t, "Renamed", loaded.Identity.Name)
}

func TestLoadMissingShop(t *testing.T) {
	s := openTestStore(t)

	_, err := s.Load(context.Background(), "missing")
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestSaveValidatesShopID(t *testing.T) {
	s := openTestStore(t)

	d := draft.Default("", "modern")
	assert.Error(t, s.Save(context.Background(), d.Snapshot()))
}

func TestCancelledContext(t *testing.T) {
	s := openTestStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := draft.Default("shop-1", "modern")
	assert.Error(t, s.Save(ctx, d.Snapshot()))
	_, err := s.Load(ctx, "shop-1")
	assert.Error(t, err)
}
