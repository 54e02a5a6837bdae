package httpx

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/inkhouse/storyapi/internal/data"
	"github.com/inkhouse/storyapi/internal/domain/model"
	apperrors "github.com/inkhouse/storyapi/internal/errors"
	"github.com/inkhouse/storyapi/internal/service"
)

// maxUploadBytes bounds media uploads (64 MiB).
const maxUploadBytes = 64 << 20

// MediaHandlers provides HTTP handlers for media upload and byte-range
// passthrough.
type MediaHandlers struct {
	Svc *service.MediaService
}

// Get handles GET /media/{id}, passing an optional Range header through to
// the object store so video seeks stay partial reads.
func (h *MediaHandlers) Get(w http.ResponseWriter, r *http.Request, m Match) {
	obj, rng, err := h.Svc.Open(r.Context(), m.Param(1), r.Header.Get("Range"))
	if err != nil {
		if errors.Is(err, data.ErrMediaNotFound) {
			WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "not_found", Err: err})
			return
		}
		if apperrors.IsUpstream(err) {
			WriteError(w, ErrorParams{Code: http.StatusBadGateway, ErrCode: "upstream", Err: errors.New("object store unavailable")})
			return
		}
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "media_failed", Err: errors.New("media unavailable")})
		return
	}
	defer rng.Body.Close()

	contentType := rng.ContentType
	if contentType == "" {
		contentType = obj.ContentType
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Accept-Ranges", "bytes")
	if rng.ContentLength > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(rng.ContentLength, 10))
	}

	status := http.StatusOK
	if rng.ContentRange != "" {
		w.Header().Set("Content-Range", rng.ContentRange)
		status = http.StatusPartialContent
	}
	w.WriteHeader(status)

	if _, err := io.Copy(w, rng.Body); err != nil {
		// client went away mid-stream; nothing to do
		return
	}
}

// Upload handles POST /media. Editor only. The request body is the object;
// kind, content type, and optional story attachment come from query params
// and headers.
func (h *MediaHandlers) Upload(w http.ResponseWriter, r *http.Request, m Match) {
	if !requireEditor(w, m) {
		return
	}
	handleMediaUpload(h.Svc, w, r)
}

// decodeMediaUpload builds a CreateMediaRequest from the kind/story_id query
// params and the Content-Type header.
func decodeMediaUpload(w http.ResponseWriter, r *http.Request) (*model.CreateMediaRequest, bool) {
	kind, ok := model.ParseMediaKind(r.URL.Query().Get("kind"))
	if !ok {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_kind", Err: errors.New("kind must be one of: image, video")})
		return nil, false
	}

	req := &model.CreateMediaRequest{
		Kind:        kind,
		ContentType: r.Header.Get("Content-Type"),
	}
	if s := r.URL.Query().Get("story_id"); s != "" {
		storyID, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_story_id", Err: errors.New("story_id must be numeric")})
			return nil, false
		}
		req.StoryID = &storyID
	}
	return req, true
}

// handleMediaUpload runs a decoded upload through the service and writes the
// outcome. Shared by the editor endpoint and the automation intake.
func handleMediaUpload(svc *service.MediaService, w http.ResponseWriter, r *http.Request) {
	req, ok := decodeMediaUpload(w, r)
	if !ok {
		return
	}

	obj, err := svc.Upload(r.Context(), req, http.MaxBytesReader(w, r.Body, maxUploadBytes))
	if err != nil {
		if isValidationError(err) {
			WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "validation_failed", Err: err})
			return
		}
		if apperrors.IsUpstream(err) {
			WriteError(w, ErrorParams{Code: http.StatusBadGateway, ErrCode: "upstream", Err: errors.New("object store unavailable")})
			return
		}
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "upload_failed", Err: errors.New("upload failed")})
		return
	}
	WriteJSON(w, http.StatusCreated, obj)
}

// Delete handles DELETE /media/{id}. Editor only.
func (h *MediaHandlers) Delete(w http.ResponseWriter, r *http.Request, m Match) {
	if !requireEditor(w, m) {
		return
	}

	deleted, err := h.Svc.Delete(r.Context(), m.Param(1))
	if err != nil && !errors.Is(err, data.ErrMediaNotFound) {
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "delete_failed", Err: errors.New("delete failed")})
		return
	}
	if err != nil || !deleted {
		WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "not_found", Err: errors.New("media not found")})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
