package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"path"

	"github.com/google/uuid"

	"github.com/inkhouse/storyapi/internal/core"
	"github.com/inkhouse/storyapi/internal/domain/model"
)

// MediaServiceOptions groups dependencies for MediaService.
type MediaServiceOptions struct {
	Repo   core.MediaRepository
	Store  core.ObjectStore
	Logger *slog.Logger
}

// MediaService pairs media metadata rows with the bytes in the object store.
type MediaService struct {
	repo   core.MediaRepository
	store  core.ObjectStore
	logger *slog.Logger
}

// NewMediaService constructs a new MediaService.
func NewMediaService(opts MediaServiceOptions) *MediaService {
	if opts.Repo == nil || opts.Store == nil {
		panic("MediaService requires a repository and an object store")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &MediaService{repo: opts.Repo, store: opts.Store, logger: logger}
}

// Upload writes the object bytes to the store and records metadata.
func (s *MediaService) Upload(ctx context.Context, req *model.CreateMediaRequest, body io.Reader) (*model.MediaObject, error) {
	if req == nil {
		return nil, fmt.Errorf("upload request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	key := objectKey(req.Kind, req.ContentType)
	size, err := s.store.Put(ctx, key, body, req.ContentType)
	if err != nil {
		return nil, fmt.Errorf("store object: %w", err)
	}

	obj, err := s.repo.Create(ctx, req, key, size)
	if err != nil {
		// Orphaned bytes are cleaned up eagerly; a failure here only leaves
		// an unreferenced object behind.
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			s.logger.ErrorContext(ctx, "failed to remove orphaned object", "key", key, "error", delErr)
		}
		return nil, err
	}
	return obj, nil
}

// Open returns the object bytes for a media ID, honoring an optional Range
// header value.
func (s *MediaService) Open(ctx context.Context, id, byteRange string) (*model.MediaObject, *core.ObjectRange, error) {
	obj, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	rng, err := s.store.Get(ctx, obj.Key, byteRange)
	if err != nil {
		return nil, nil, fmt.Errorf("read object: %w", err)
	}
	return obj, rng, nil
}

// ListByStory returns media metadata attached to a story.
func (s *MediaService) ListByStory(ctx context.Context, storyID int64) ([]*model.MediaObject, error) {
	return s.repo.ListByStory(ctx, storyID)
}

// Delete removes both the metadata row and the stored bytes.
func (s *MediaService) Delete(ctx context.Context, id string) (bool, error) {
	obj, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	ok, err := s.repo.Delete(ctx, id)
	if err != nil || !ok {
		return ok, err
	}
	if delErr := s.store.Delete(ctx, obj.Key); delErr != nil {
		// Metadata is already gone; log and report success.
		s.logger.ErrorContext(ctx, "failed to delete stored object", "key", obj.Key, "error", delErr)
	}
	return true, nil
}

// objectKey derives a unique store key, keeping a useful extension when the
// content type maps to one.
func objectKey(kind model.MediaKind, contentType string) string {
	ext := ""
	if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
		ext = exts[0]
	}
	return path.Join("media", string(kind), uuid.NewString()+ext)
}
