package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shopforge/shopforge/internal/draft"
	"github.com/shopforge/shopforge/internal/renderer"
)

var validateCmd = &cobra.Command{
	Use:   "validate <config.json>",
	Short: "Validate a saved shop configuration file",
	Long: `Validate a shop configuration exported from storage: checks the
serialization version, rehydrates the draft (block configs included), and
verifies the referenced theme is a known builtin or present in the themes
directory.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().String("themes", "", "themes directory to resolve the theme against")
}

func runValidate(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}

	var snap draft.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("parsing %s: %w", args[0], err)
	}

	d, err := draft.FromSnapshot(snap)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	themes := renderer.NewRegistry(nil)
	if dir, _ := cmd.Flags().GetString("themes"); dir != "" {
		if err := themes.LoadDir(dir); err != nil {
			return fmt.Errorf("loading themes from %s: %w", dir, err)
		}
	}
	if !themes.Has(d.ThemeID) {
		return fmt.Errorf("configuration references unknown theme %q", d.ThemeID)
	}

	fmt.Printf("%s is valid: shop %q, theme %q, %d sections, %d custom blocks\n",
		args[0], d.ShopID, d.ThemeID, d.Model().Len(), d.Blocks().Len())

	return nil
}
