package core

import (
	"context"
	"io"

	"github.com/inkhouse/storyapi/internal/domain/model"
)

// This file contains repository interface definitions (ports in hexagonal architecture).
// These interfaces define the contracts between the service layer and data layer.
// Service implementations should depend on these interfaces, not concrete implementations.

// StoryRepository defines the interface for story data operations.
type StoryRepository interface {
	Create(ctx context.Context, req *model.CreateStoryRequest) (*model.Story, error)
	GetByID(ctx context.Context, id int64) (*model.Story, error)
	GetBySlug(ctx context.Context, slug string) (*model.Story, error)
	List(ctx context.Context, opts model.StoriesListOptions) ([]*model.Story, error)
	Count(ctx context.Context, opts model.StoriesListOptions) (int, error)
	// Adjacent returns the next (dir > 0) or previous (dir < 0) story by
	// creation order relative to the given id, or ErrStoryNotFound at the ends.
	Adjacent(ctx context.Context, id int64, dir int) (*model.Story, error)
	Update(ctx context.Context, id int64, req model.UpdateStoryRequest) (*model.Story, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

// AccountRepository defines the interface for allow-list data operations.
// Lookup is case-insensitive on email.
type AccountRepository interface {
	Lookup(ctx context.Context, email string) (*model.AllowedAccount, error)
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, req *model.CreateAccountRequest) (*model.AllowedAccount, error)
	List(ctx context.Context) ([]*model.AllowedAccount, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// MediaRepository defines the interface for media metadata operations.
// key and size describe the object already written to the object store.
type MediaRepository interface {
	Create(ctx context.Context, req *model.CreateMediaRequest, key string, size int64) (*model.MediaObject, error)
	GetByID(ctx context.Context, id string) (*model.MediaObject, error)
	ListByStory(ctx context.Context, storyID int64) ([]*model.MediaObject, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// ObjectRange is one (possibly partial) read of a stored object.
type ObjectRange struct {
	Body          io.ReadCloser
	ContentType   string
	ContentLength int64
	// ContentRange is the bytes spec echoed by the store; empty for full reads.
	ContentRange string
}

// ObjectStore defines the interface for binary media storage.
// byteRange is a raw Range header value ("bytes=0-1023") or empty for a full read.
type ObjectStore interface {
	Put(ctx context.Context, key string, body io.Reader, contentType string) (int64, error)
	Get(ctx context.Context, key, byteRange string) (*ObjectRange, error)
	Delete(ctx context.Context, key string) error
}

// ListCache caches rendered story-list pages. It is best-effort: callers
// treat every miss and every cache error the same way and never fail a
// request on cache trouble.
type ListCache interface {
	GetPage(ctx context.Context, key string) ([]byte, bool)
	SetPage(ctx context.Context, key string, payload []byte)
	Invalidate(ctx context.Context)
}
