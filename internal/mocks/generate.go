// Package mocks provides mock implementations for testing the story API.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for
// the repository interfaces in internal/core. The mocks are generated using
// go:generate directives and provide a fluent API for setting up test
// expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
package mocks

// Generate mock for StoryRepository interface from internal/core package.
// This creates MockStoryRepository with methods for all StoryRepository interface methods:
// Create, GetByID, GetBySlug, List, Count, Adjacent, Update, Delete
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=story_repository_mock.go github.com/inkhouse/storyapi/internal/core StoryRepository

// Generate mock for ListCache interface from internal/core package.
// This creates MockListCache with methods for all ListCache interface methods:
// GetPage, SetPage, Invalidate
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=list_cache_mock.go github.com/inkhouse/storyapi/internal/core ListCache
