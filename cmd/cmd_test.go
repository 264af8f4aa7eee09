package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopforge/shopforge/internal/draft"
)

func writeSnapshot(t *testing.T, snap draft.Snapshot) string {
	t.Helper()

	data, err := json.Marshal(snap)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	return path
}

func TestValidateAcceptsSavedConfig(t *testing.T) {
	path := writeSnapshot(t, draft.Default("shop-1", "modern").Snapshot())

	err := runValidate(validateCmd, []string{path})
	assert.NoError(t, err)
}

func TestValidateRejectsUnknownTheme(t *testing.T) {
	path := writeSnapshot(t, draft.Default("shop-1", "brutalist").Snapshot())

	err := runValidate(validateCmd, []string{path})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown theme")
}

func TestValidateRejectsWrongVersion(t *testing.T) {
	snap := draft.Default("shop-1", "modern").Snapshot()
	snap.Version = 99
	path := writeSnapshot(t, snap)

	err := runValidate(validateCmd, []string{path})
	assert.Error(t, err)
}

func TestValidateRejectsMissingFile(t *testing.T) {
	err := runValidate(validateCmd, []string{filepath.Join(t.TempDir(), "nope.json")})
	assert.Error(t, err)
}

func TestValidateRejectsOrphanedOrderEntry(t *testing.T) {
	snap := draft.Default("shop-1", "modern").Snapshot()
	snap.SectionOrder = append(snap.SectionOrder, "block-with-no-config")
	path := writeSnapshot(t, snap)

	err := runValidate(validateCmd, []string{path})
	assert.Error(t, err)
}
