package httpx

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/inkhouse/storyapi/internal/domain/model"
	"github.com/inkhouse/storyapi/internal/service"
)

// HookHandlers serves the automation endpoints used by the story generation
// pipeline. They sit on the pre-auth list and carry their own bearer token
// instead of a session, so the pipeline can deliver a draft, attach its
// rendered media, and revise the draft without a browser login.
type HookHandlers struct {
	Svc   *service.StoryService
	Media *service.MediaService
	Token string
}

// Generate handles POST /hooks/generate: the pipeline drops a finished story
// draft here. Drafts land unpublished unless the payload says otherwise.
func (h *HookHandlers) Generate(w http.ResponseWriter, r *http.Request, _ Match) {
	if !h.authorized(r) {
		WriteError(w, ErrorParams{Code: http.StatusUnauthorized, ErrCode: "unauthorized", Err: errors.New("missing or invalid bearer token")})
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

// UploadMedia handles POST /hooks/media: the pipeline attaches a generated
// image or video, usually to the story it just created via story_id.
func (h *HookHandlers) UploadMedia(w http.ResponseWriter, r *http.Request, _ Match) {
	if !h.authorized(r) {
		WriteError(w, ErrorParams{Code: http.StatusUnauthorized, ErrCode: "unauthorized", Err: errors.New("missing or invalid bearer token")})
		return
	}
	handleMediaUpload(h.Media, w, r)
}

// UpdateStory handles PUT /hooks/stories/{id}: the pipeline revises a draft,
// e.g. to set the cover image after the upload or to publish it.
func (h *HookHandlers) UpdateStory(w http.ResponseWriter, r *http.Request, m Match) {
	if !h.authorized(r) {
		WriteError(w, ErrorParams{Code: http.StatusUnauthorized, ErrCode: "unauthorized", Err: errors.New("missing or invalid bearer token")})
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

func (h *HookHandlers) authorized(r *http.Request) bool {
	if h.Token == "" {
		// endpoints disabled until a token is configured
		return false
	}
	auth := r.Header.Get("Authorization")
	presented, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(presented), []byte(h.Token)) == 1
}
