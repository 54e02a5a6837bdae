package model

import (
	"errors"
	"strings"
	"time"
)

// MediaKind classifies a stored media object.
type MediaKind string

const (
	MediaKindImage MediaKind = "image"
	MediaKindVideo MediaKind = "video"
)

// Valid reports whether the media kind is supported.
func (k MediaKind) Valid() bool {
	switch k {
	case MediaKindImage, MediaKindVideo:
		return true
	default:
		return false
	}
}

// ParseMediaKind normalizes a kind string and reports whether it is supported.
func ParseMediaKind(value string) (MediaKind, bool) {
	kind := MediaKind(strings.ToLower(strings.TrimSpace(value)))
	if kind.Valid() {
		return kind, true
	}
	return "", false
}

// MediaObject is metadata for a binary object held in the object store.
// The bytes themselves live under Key in the configured bucket.
type MediaObject struct {
	ID          string    `json:"id"                 db:"id"`
	StoryID     *int64    `json:"story_id,omitempty" db:"story_id"`
	Kind        MediaKind `json:"kind"               db:"kind"`
	Key         string    `json:"key"                db:"object_key"`
	ContentType string    `json:"content_type"       db:"content_type"`
	SizeBytes   int64     `json:"size_bytes"         db:"size_bytes"`
	CreatedAt   time.Time `json:"created_at"         db:"created_at"`
}

// CreateMediaRequest represents parameters to register an uploaded media object.
type CreateMediaRequest struct {
	StoryID     *int64    `json:"story_id,omitempty"`
	Kind        MediaKind `json:"kind"`
	ContentType string    `json:"content_type"`
}

// Validate validates CreateMediaRequest.
func (r *CreateMediaRequest) Validate() error {
	if !r.Kind.Valid() {
		return errors.New("kind must be one of: image, video")
	}
	ct := strings.TrimSpace(r.ContentType)
	if ct == "" {
		return errors.New("content_type is required and cannot be empty")
	}
	switch r.Kind {
	case MediaKindImage:
		if !strings.HasPrefix(ct, "image/") {
			return errors.New("content_type must start with image/ for image media")
		}
	case MediaKindVideo:
		if !strings.HasPrefix(ct, "video/") {
			return errors.New("content_type must start with video/ for video media")
		}
	}
	r.ContentType = ct
	return nil
}
