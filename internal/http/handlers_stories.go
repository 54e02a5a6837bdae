// Package httpx provides HTTP handlers and routing for the story API.
package httpx

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/inkhouse/storyapi/internal/data"
	"github.com/inkhouse/storyapi/internal/domain/model"
	"github.com/inkhouse/storyapi/internal/service"
)

// StoryHandlers provides HTTP handlers for story CRUD and navigation.
type StoryHandlers struct {
	Svc    *service.StoryService
	Logger *slog.Logger
}

// List handles GET /stories with limit, offset, q, and published params.
func (h *StoryHandlers) List(w http.ResponseWriter, r *http.Request, _ Match) {
	limit, offset := ParseLimitOffset(r, 50, 200)
	opts := model.StoriesListOptions{
		Limit:  limit,
		Offset: offset,
		Sort:   r.URL.Query().Get("sort"),
		Dir:    r.URL.Query().Get("dir"),
	}
	if q := r.URL.Query().Get("q"); q != "" {
		opts.Q = &q
	}
	if p := r.URL.Query().Get("published"); p != "" {
		published, err := strconv.ParseBool(p)
		if err != nil {
			WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_published", Err: errors.New("published must be a boolean")})
			return
		}
		opts.Published = &published
	}

	page, err := h.Svc.List(r.Context(), opts)
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "list_failed", Err: err})
		return
	}
	WriteJSON(w, http.StatusOK, page)
}

// Create handles POST /stories. Editor only.
func (h *StoryHandlers) Create(w http.ResponseWriter, r *http.Request, m Match) {
	if !requireEditor(w, m) {
		return
	}

	var req *model.CreateStoryRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	story, err := h.Svc.Create(r.Context(), req)
	if err != nil {
		writeStorySaveErr(w, err, "create_failed")
		return
	}
	WriteJSON(w, http.StatusCreated, story)
}

// Get handles GET /stories/{id}.
func (h *StoryHandlers) Get(w http.ResponseWriter, r *http.Request, m Match) {
	id, ok := storyID(w, m)
	if !ok {
		return
	}
	story, err := h.Svc.GetByID(r.Context(), id)
	if err != nil {
		writeStoryErr(w, err, "get_failed")
		return
	}
	WriteJSON(w, http.StatusOK, story)
}

// Next handles GET /stories/{id}/next.
func (h *StoryHandlers) Next(w http.ResponseWriter, r *http.Request, m Match) {
	h.adjacent(w, r, m, 1)
}

// Prev handles GET /stories/{id}/prev.
func (h *StoryHandlers) Prev(w http.ResponseWriter, r *http.Request, m Match) {
	h.adjacent(w, r, m, -1)
}

func (h *StoryHandlers) adjacent(w http.ResponseWriter, r *http.Request, m Match, dir int) {
	id, ok := storyID(w, m)
	if !ok {
		return
	}
	story, err := h.Svc.Adjacent(r.Context(), id, dir)
	if err != nil {
		writeStoryErr(w, err, "navigate_failed")
		return
	}
	WriteJSON(w, http.StatusOK, story)
}

// Update handles PUT /stories/{id}. Editor only.
func (h *StoryHandlers) Update(w http.ResponseWriter, r *http.Request, m Match) {
	if !requireEditor(w, m) {
		return
	}
	id, ok := storyID(w, m)
	if !ok {
		return
	}

	var req model.UpdateStoryRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	story, err := h.Svc.Update(r.Context(), id, req)
	if err != nil {
		writeStorySaveErr(w, err, "update_failed")
		return
	}
	WriteJSON(w, http.StatusOK, story)
}

// Delete handles DELETE /stories/{id}. Editor only.
func (h *StoryHandlers) Delete(w http.ResponseWriter, r *http.Request, m Match) {
	if !requireEditor(w, m) {
		return
	}
	id, ok := storyID(w, m)
	if !ok {
		return
	}

	deleted, err := h.Svc.Delete(r.Context(), id)
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "delete_failed", Err: err})
		return
	}
	if !deleted {
		WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "not_found", Err: errors.New("story not found")})
		return
	}
	if h.Logger != nil {
		h.Logger.InfoContext(r.Context(), "story deleted",
			"story_id", id,
			"actor", IdentityFromContext(r.Context()).Email)
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeStorySaveErr maps create/update failures onto the error envelope.
func writeStorySaveErr(w http.ResponseWriter, err error, code string) {
	switch {
	case errors.Is(err, data.ErrStoryNotFound):
		WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "not_found", Err: err})
	case errors.Is(err, data.ErrStorySlugExists):
		WriteError(w, ErrorParams{Code: http.StatusConflict, ErrCode: "slug_conflict", Err: err})
	case isValidationError(err):
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "validation_failed", Err: err})
	default:
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: code, Err: err})
	}
}

func writeStoryErr(w http.ResponseWriter, err error, code string) {
	if errors.Is(err, data.ErrStoryNotFound) {
		WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "not_found", Err: err})
		return
	}
	WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: code, Err: err})
}

// storyID parses the numeric id capture from the route pattern.
func storyID(w http.ResponseWriter, m Match) (int64, bool) {
	id, err := strconv.ParseInt(m.Param(1), 10, 64)
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_id", Err: errors.New("story id must be numeric")})
		return 0, false
	}
	return id, true
}

// requireEditor answers 403 for callers without write access.
func requireEditor(w http.ResponseWriter, m Match) bool {
	if !m.Identity.Role.CanEdit() {
		WriteError(w, ErrorParams{Code: http.StatusForbidden, ErrCode: "forbidden", Err: errors.New("editor role required")})
		return false
	}
	return true
}
