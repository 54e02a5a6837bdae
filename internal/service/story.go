package service

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/inkhouse/storyapi/internal/core"
	"github.com/inkhouse/storyapi/internal/data"
	"github.com/inkhouse/storyapi/internal/domain/model"
)

// StoriesPage is one page of list results plus the unpaged total.
type StoriesPage struct {
	Stories []*model.Story `json:"stories"`
	Total   int            `json:"total"`
	Limit   int            `json:"limit"`
	Offset  int            `json:"offset"`
}

// StoryServiceOptions groups dependencies for StoryService.
type StoryServiceOptions struct {
	Repo   core.StoryRepository
	Cache  core.ListCache // optional
	Logger *slog.Logger
}

// StoryService orchestrates story CRUD with best-effort list caching.
type StoryService struct {
	repo   core.StoryRepository
	cache  core.ListCache
	logger *slog.Logger
}

// NewStoryService constructs a new StoryService.
func NewStoryService(opts StoryServiceOptions) *StoryService {
	if opts.Repo == nil {
		panic("StoryService requires a repository")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &StoryService{repo: opts.Repo, cache: opts.Cache, logger: logger}
}

// Create creates a story and invalidates cached list pages.
func (s *StoryService) Create(ctx context.Context, req *model.CreateStoryRequest) (*model.Story, error) {
	story, err := s.repo.Create(ctx, req)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return story, nil
}

// GetByID retrieves a story by ID.
func (s *StoryService) GetByID(ctx context.Context, id int64) (*model.Story, error) {
	return s.repo.GetByID(ctx, id)
}

// GetBySlug retrieves a story by slug.
func (s *StoryService) GetBySlug(ctx context.Context, slug string) (*model.Story, error) {
	return s.repo.GetBySlug(ctx, slug)
}

// Adjacent returns the next (dir > 0) or previous (dir < 0) story relative
// to the given id.
func (s *StoryService) Adjacent(ctx context.Context, id int64, dir int) (*model.Story, error) {
	return s.repo.Adjacent(ctx, id, dir)
}

// List returns one page of stories, serving repeat reads from the cache when
// one is configured. Cache trouble degrades to the database.
func (s *StoryService) List(ctx context.Context, opts model.StoriesListOptions) (*StoriesPage, error) {
	opts = normalizeStoryListOptions(opts)
	key := data.PageKey(opts)

	if s.cache != nil {
		if payload, ok := s.cache.GetPage(ctx, key); ok {
			var page StoriesPage
			if err := json.Unmarshal(payload, &page); err == nil {
				return &page, nil
			}
			s.logger.WarnContext(ctx, "discarding undecodable cached page", "key", key)
		}
	}

	stories, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, err
	}
	total, err := s.repo.Count(ctx, opts)
	if err != nil {
		return nil, err
	}

	page := &StoriesPage{Stories: stories, Total: total, Limit: opts.Limit, Offset: opts.Offset}
	if s.cache != nil {
		if payload, err := json.Marshal(page); err == nil {
			s.cache.SetPage(ctx, key, payload)
		}
	}
	return page, nil
}

// Update updates a story and invalidates cached list pages.
func (s *StoryService) Update(ctx context.Context, id int64, req model.UpdateStoryRequest) (*model.Story, error) {
	story, err := s.repo.Update(ctx, id, req)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return story, nil
}

// Delete deletes a story and invalidates cached list pages.
func (s *StoryService) Delete(ctx context.Context, id int64) (bool, error) {
	ok, err := s.repo.Delete(ctx, id)
	if err != nil || !ok {
		return ok, err
	}
	s.invalidate(ctx)
	return ok, nil
}

// WarmList refreshes the cached first page of published stories. Used by the
// scheduled cache warmer.
func (s *StoryService) WarmList(ctx context.Context) error {
	published := true
	_, err := s.List(ctx, model.StoriesListOptions{Limit: 50, Published: &published})
	return err
}

func (s *StoryService) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
}

func normalizeStoryListOptions(opts model.StoriesListOptions) model.StoriesListOptions {
	if opts.Limit <= 0 || opts.Limit > 200 {
		opts.Limit = 50
	}
	if opts.Offset < 0 {
		opts.Offset = 0
	}
	if opts.Sort == "" {
		opts.Sort = "created_at"
	}
	if opts.Dir == "" {
		opts.Dir = "desc"
	}
	return opts
}
