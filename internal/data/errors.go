package data

import "errors"

// Shared sentinel errors for data-layer repositories.
var (
	// ErrStoryNotFound is returned when a story is not found.
	ErrStoryNotFound = errors.New("story not found")
	// ErrStorySlugExists is returned when a story slug collides with an existing one.
	ErrStorySlugExists = errors.New("story slug already exists")

	// ErrAccountNotFound is returned when an allow-list entry is not found.
	ErrAccountNotFound = errors.New("account not found")
	// ErrAccountExists is returned when an allow-list email is already present.
	ErrAccountExists = errors.New("account already exists")

	// ErrMediaNotFound is returned when a media object is not found.
	ErrMediaNotFound = errors.New("media not found")
)
