package cmd

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/shopforge/shopforge/internal/config"
	"github.com/shopforge/shopforge/internal/draft"
	"github.com/shopforge/shopforge/internal/logging"
	"github.com/shopforge/shopforge/internal/renderer"
	"github.com/shopforge/shopforge/internal/server"
	"github.com/shopforge/shopforge/internal/store"
	"github.com/shopforge/shopforge/internal/store/bbolt"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"s"},
	Short:   "Start the editor and preview server",
	Long: `Start the editing session for one shop. Loads the shop's saved
configuration from storage (or seeds a fresh draft from the section
registry defaults), serves the editor API and the rendered preview, and
pushes every edit to connected preview renderers over /ws.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("shop", "default", "shop id to edit")
	serveCmd.Flags().IntP("port", "p", 0, "server port")
	serveCmd.Flags().String("host", "", "server host")
	serveCmd.Flags().String("themes", "", "themes directory")
	serveCmd.Flags().Bool("watch", true, "watch the themes directory for changes")

	bindViperFlags(serveCmd.Flags(), map[string]string{
		"server.port":  "port",
		"server.host":  "host",
		"themes.dir":   "themes",
		"themes.watch": "watch",
	})
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := logging.New(&logging.Config{
		Level:  logging.ParseLevel(cfg.Log.Level),
		Format: cfg.Log.Format,
	})

	shopID, _ := cmd.Flags().GetString("shop")

	gateway, err := bbolt.Open(cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("opening storage at %s: %w", cfg.Storage.Path, err)
	}
	defer gateway.Close()

	themes := renderer.NewRegistry(logger)
	if _, statErr := os.Stat(cfg.Themes.Dir); statErr == nil {
		if err := themes.LoadDir(cfg.Themes.Dir); err != nil {
			return fmt.Errorf("loading themes from %s: %w", cfg.Themes.Dir, err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d, err := loadOrSeedDraft(ctx, gateway, shopID, cfg.Themes.Default, logger)
	if err != nil {
		return err
	}

	srv, err := server.New(cfg, d, themes, gateway, logger)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(ctx)
	}()

	select {
	case <-ctx.Done():
		logger.Info(context.Background(), "shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// loadOrSeedDraft restores the shop's saved configuration, or seeds a
// starter draft when the shop has never been saved.
func loadOrSeedDraft(ctx context.Context, gateway store.Gateway, shopID, defaultTheme string, logger logging.Logger) (*draft.Draft, error) {
	snap, err := gateway.Load(ctx, shopID)
	if stderrors.Is(err, store.ErrNotFound) {
		logger.Info(ctx, "no saved configuration, seeding defaults", "shop", shopID)
		return draft.Default(shopID, defaultTheme), nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading shop %s: %w", shopID, err)
	}

	d, err := draft.FromSnapshot(snap)
	if err != nil {
		return nil, fmt.Errorf("restoring shop %s: %w", shopID, err)
	}

	logger.Info(ctx, "loaded saved configuration",
		"shop", shopID, "theme", d.ThemeID, "sections", len(snap.SectionOrder))

	return d, nil
}
