package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/shopforge/shopforge/internal/blocks"
	"github.com/shopforge/shopforge/internal/draft"
	"github.com/shopforge/shopforge/internal/errors"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the error taxonomy onto HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	var fe *errors.Error
	if !stderrors.As(err, &fe) {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	status := http.StatusInternalServerError
	switch {
	case fe.Code == errors.CodeBlockNotFound || fe.Code == errors.CodeConfigNotFound:
		status = http.StatusNotFound
	case fe.Code == errors.CodeIllegalReorder || fe.Code == errors.CodeDuplicateSectionID:
		status = http.StatusConflict
	case fe.Type == errors.TypeValidation:
		status = http.StatusBadRequest
	case fe.Type == errors.TypeIO || fe.Type == errors.TypeNetwork:
		status = http.StatusBadGateway
	}

	writeJSON(w, status, errorResponse{Error: fe.Message, Code: fe.Code})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return false
	}
	return true
}

func (s *PreviewServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	state, generation := s.session.PreviewState()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":     "ok",
		"shop":       s.session.ShopID(),
		"preview":    state.String(),
		"generation": generation,
		"dirty":      s.session.Dirty(),
	})
}

func (s *PreviewServer) handleSections(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sections": s.session.Sections(),
	})
}

func (s *PreviewServer) handleReorder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Order []string `json:"order"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if err := s.session.Reorder(req.Order); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sections": s.session.Sections(),
	})
}

func (s *PreviewServer) handleVisibility(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Visible bool `json:"visible"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	s.session.Toggle(r.PathValue("id"), req.Visible)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sections": s.session.Sections(),
	})
}

func (s *PreviewServer) handleListBlocks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"blocks": s.session.Blocks(),
	})
}

func (s *PreviewServer) handleCreateBlock(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type   blocks.Type     `json:"type"`
		Title  string          `json:"title"`
		Config json.RawMessage `json:"config"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	cfg, err := blocks.ParseConfig(req.Type, req.Config)
	if err != nil {
		writeError(w, err)
		return
	}

	block, err := s.session.AddBlock(req.Type, req.Title, cfg)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, block)
}

func (s *PreviewServer) handleEditBlock(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req struct {
		Title  *string         `json:"title"`
		Config json.RawMessage `json:"config"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	patch := blocks.Patch{Title: req.Title}
	if len(req.Config) > 0 {
		existing, ok := s.session.Block(id)
		if !ok {
			writeError(w, errors.BlockNotFound(id))
			return
		}

		cfg, err := blocks.ParseConfig(existing.Type, req.Config)
		if err != nil {
			writeError(w, err)
			return
		}
		patch.Config = cfg
	}

	block, err := s.session.EditBlock(id, patch)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, block)
}

func (s *PreviewServer) handleRemoveBlock(w http.ResponseWriter, r *http.Request) {
	s.session.RemoveBlock(r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *PreviewServer) handleThemes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"active": s.session.ActiveTheme(),
		"themes": s.themes.Manifests(),
	})
}

func (s *PreviewServer) handleSetTheme(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ThemeID string `json:"themeId"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if err := s.session.SetTheme(req.ThemeID); err != nil {
		writeError(w, err)
		return
	}

	state, generation := s.session.PreviewState()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"active":     req.ThemeID,
		"preview":    state.String(),
		"generation": generation,
	})
}

func (s *PreviewServer) handleSetIdentity(w http.ResponseWriter, r *http.Request) {
	var identity draft.Identity
	if !decodeBody(w, r, &identity) {
		return
	}

	s.session.SetIdentity(identity)
	w.WriteHeader(http.StatusNoContent)
}

func (s *PreviewServer) handleSetDesign(w http.ResponseWriter, r *http.Request) {
	var design draft.Design
	if !decodeBody(w, r, &design) {
		return
	}

	s.session.SetDesign(design)
	w.WriteHeader(http.StatusNoContent)
}

func (s *PreviewServer) handleDraft(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Snapshot())
}

func (s *PreviewServer) handleSave(w http.ResponseWriter, r *http.Request) {
	if err := s.session.Save(r.Context()); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"saved": true,
		"shop":  s.session.ShopID(),
	})
}

// handleAwaitReady long-polls the renderer lifecycle: it returns once the
// current generation is ready, or reports a persistent loading state when
// the configured timeout elapses. Editing continues either way.
func (s *PreviewServer) handleAwaitReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.config.Preview.ReadyTimeout)
	defer cancel()

	timedOut := s.session.AwaitReady(ctx) != nil

	state, generation := s.session.PreviewState()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"state":      state.String(),
		"generation": generation,
		"timedOut":   timedOut,
	})
}

func (s *PreviewServer) handlePreviewState(w http.ResponseWriter, r *http.Request) {
	state, generation := s.session.PreviewState()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"state":      state.String(),
		"generation": generation,
		"theme":      s.session.ActiveTheme(),
	})
}
