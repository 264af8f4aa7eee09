package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/shopforge/shopforge/internal/config"
	"github.com/shopforge/shopforge/internal/draft"
	"github.com/shopforge/shopforge/internal/logging"
	"github.com/shopforge/shopforge/internal/preview"
	"github.com/shopforge/shopforge/internal/renderer"
	"github.com/shopforge/shopforge/internal/store"
	"github.com/shopforge/shopforge/internal/watcher"
)

// Client is one connected preview renderer (a browser tab).
type Client struct {
	conn   *websocket.Conn
	send   chan []byte
	server *PreviewServer
}

// PreviewServer hosts the editing session: JSON endpoints for the editor
// surface, the rendered preview page, and the websocket channel carrying
// publish and ready frames.
type PreviewServer struct {
	config  *config.Config
	session *Session
	themes  *renderer.Registry
	watcher *watcher.ThemeWatcher
	logger  logging.Logger

	httpServer  *http.Server
	serverMutex sync.RWMutex

	clients      map[*websocket.Conn]*Client
	clientsMutex sync.RWMutex
	broadcast    chan []byte
	register     chan *Client
	unregister   chan *websocket.Conn

	lastPub      []byte
	lastPubMutex sync.RWMutex

	shutdownOnce sync.Once
}

// publishFrame is the server-to-renderer websocket message.
type publishFrame struct {
	Type string `json:"type"`
	preview.Publication
}

// readyFrame is the renderer-to-server websocket message.
type readyFrame struct {
	Type       string `json:"type"`
	Generation uint64 `json:"generation"`
}

// New creates a preview server for one shop draft. The watcher may be nil
// when theme watching is disabled.
func New(cfg *config.Config, d *draft.Draft, themes *renderer.Registry, gateway store.Gateway, logger logging.Logger) (*PreviewServer, error) {
	if logger == nil {
		logger = logging.Nop()
	}

	s := &PreviewServer{
		config:     cfg,
		themes:     themes,
		logger:     logger.WithComponent("server"),
		clients:    make(map[*websocket.Conn]*Client),
		broadcast:  make(chan []byte, 16),
		register:   make(chan *Client),
		unregister: make(chan *websocket.Conn),
	}
	s.session = NewSession(d, themes, gateway, s.sink, logger)

	if cfg.Themes.Watch {
		tw, err := watcher.New(cfg.Themes.Dir, cfg.Preview.Debounce, logger)
		if err != nil {
			// Missing themes dir is not fatal, the registry still serves
			// its compiled-in themes without live reload.
			s.logger.Warn(context.Background(), err, "theme watching disabled",
				"dir", cfg.Themes.Dir)
		} else {
			tw.AddHandler(s.handleThemeChanges)
			s.watcher = tw
		}
	}

	return s, nil
}

// Session exposes the editing session, mainly for handlers and tests.
func (s *PreviewServer) Session() *Session {
	return s.session
}

// sink receives each publication from the synchronizer. It must not block:
// the frame is cached for late-joining renderers and offered to the hub.
func (s *PreviewServer) sink(pub preview.Publication) {
	frame, err := json.Marshal(publishFrame{Type: "publish", Publication: pub})
	if err != nil {
		s.logger.Error(context.Background(), err, "encode publish frame")
		return
	}

	s.lastPubMutex.Lock()
	s.lastPub = frame
	s.lastPubMutex.Unlock()

	select {
	case s.broadcast <- frame:
	default:
		// Hub backlogged; the cached frame reaches clients on reconnect.
	}
}

// handleThemeChanges reacts to debounced theme-asset batches. A manifest
// change reloads the theme registry; if the active theme was touched the
// running renderer is invalidated, otherwise the draft is republished so
// non-structural asset edits show up.
func (s *PreviewServer) handleThemeChanges(changes []watcher.Change) {
	ctx := context.Background()
	activeTouched := false
	manifestTouched := false
	active := s.session.ActiveTheme()

	for _, change := range changes {
		s.logger.Debug(ctx, "theme asset changed",
			"path", change.Path, "theme", change.ThemeID, "op", change.Op.String())
		if change.Manifest {
			manifestTouched = true
		}
		if change.ThemeID == active {
			activeTouched = true
		}
	}

	if manifestTouched {
		if err := s.themes.LoadDir(s.config.Themes.Dir); err != nil {
			s.logger.Error(ctx, err, "reload theme manifests")
			return
		}
	}

	if activeTouched {
		s.session.InvalidatePreview()
	} else {
		s.session.Publish()
	}
}

// Start runs the server until ctx is cancelled or ListenAndServe fails.
func (s *PreviewServer) Start(ctx context.Context) error {
	if s.watcher != nil {
		s.watcher.Start(ctx)
	}

	go s.runHub(ctx)

	// Seed the preview channel so the first renderer to connect has a
	// publication waiting.
	s.session.Publish()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	mux.HandleFunc("GET /preview/{shopID}", s.handlePreview)
	mux.HandleFunc("GET /api/sections", s.handleSections)
	mux.HandleFunc("POST /api/sections/reorder", s.handleReorder)
	mux.HandleFunc("POST /api/sections/{id}/visibility", s.handleVisibility)
	mux.HandleFunc("GET /api/blocks", s.handleListBlocks)
	mux.HandleFunc("POST /api/blocks", s.handleCreateBlock)
	mux.HandleFunc("PATCH /api/blocks/{id}", s.handleEditBlock)
	mux.HandleFunc("DELETE /api/blocks/{id}", s.handleRemoveBlock)
	mux.HandleFunc("GET /api/themes", s.handleThemes)
	mux.HandleFunc("PUT /api/theme", s.handleSetTheme)
	mux.HandleFunc("PUT /api/identity", s.handleSetIdentity)
	mux.HandleFunc("PUT /api/design", s.handleSetDesign)
	mux.HandleFunc("GET /api/draft", s.handleDraft)
	mux.HandleFunc("POST /api/save", s.handleSave)
	mux.HandleFunc("GET /api/preview/state", s.handlePreviewState)
	mux.HandleFunc("GET /api/preview/await", s.handleAwaitReady)
	mux.Handle("GET /themes/", http.StripPrefix("/themes/",
		http.FileServer(http.Dir(s.config.Themes.Dir))))

	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)

	s.serverMutex.Lock()
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.withMiddleware(mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
	server := s.httpServer
	s.serverMutex.Unlock()

	s.logger.Info(ctx, "preview server listening", "addr", addr, "shop", s.session.ShopID())

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Shutdown drains the HTTP server and stops the watcher.
func (s *PreviewServer) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		if s.watcher != nil {
			if werr := s.watcher.Stop(); werr != nil {
				s.logger.Warn(ctx, werr, "stop theme watcher")
			}
		}

		s.serverMutex.RLock()
		server := s.httpServer
		s.serverMutex.RUnlock()

		if server != nil {
			err = server.Shutdown(ctx)
		}
	})

	return err
}

func (s *PreviewServer) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error(r.Context(), fmt.Errorf("panic: %v", rec),
					"handler panic", "path", r.URL.Path)
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
		}()

		next.ServeHTTP(w, r)

		s.logger.Debug(r.Context(), "request",
			"method", r.Method, "path", r.URL.Path, "duration", time.Since(start).String())
	})
}
