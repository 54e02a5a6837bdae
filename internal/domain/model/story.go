//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	maxStoryTitleLen   = 255
	maxStorySummaryLen = 1024
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Story represents one illustrated story record.
type Story struct {
	ID           int64      `json:"id"                       db:"id"`
	Title        string     `json:"title"                    db:"title"`
	Slug         string     `json:"slug"                     db:"slug"`
	Summary      string     `json:"summary"                  db:"summary"`
	Body         string     `json:"body"                     db:"body"`
	CoverMediaID *string    `json:"cover_media_id,omitempty" db:"cover_media_id"`
	Published    bool       `json:"published"                db:"published"`
	PublishedAt  *time.Time `json:"published_at,omitempty"   db:"published_at"`
	CreatedAt    time.Time  `json:"created_at"               db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"               db:"updated_at"`
}

// CreateStoryRequest represents parameters to create a Story.
type CreateStoryRequest struct {
	Title        string  `json:"title"`
	Slug         string  `json:"slug,omitempty"`
	Summary      string  `json:"summary,omitempty"`
	Body         string  `json:"body"`
	CoverMediaID *string `json:"cover_media_id,omitempty"`
	Published    *bool   `json:"published,omitempty"`
}

// UpdateStoryRequest represents parameters to update a Story.
// Nil fields are left unchanged.
type UpdateStoryRequest struct {
	Title        *string `json:"title,omitempty"`
	Slug         *string `json:"slug,omitempty"`
	Summary      *string `json:"summary,omitempty"`
	Body         *string `json:"body,omitempty"`
	CoverMediaID *string `json:"cover_media_id,omitempty"`
	Published    *bool   `json:"published,omitempty"`
}

// StoriesListOptions controls paging, search, and filtering for listing stories.
// Notes:
// - Q matches title and summary via ILIKE substring.
// - Sort supports: "created_at", "title" (case-insensitive).
// - Dir supports: "asc", "desc" (case-insensitive).
type StoriesListOptions struct {
	Limit     int
	Offset    int
	Q         *string
	Published *bool
	Sort      string
	Dir       string
}

// Validate validates CreateStoryRequest and normalizes the slug.
func (r *CreateStoryRequest) Validate() error {
	title := strings.TrimSpace(r.Title)
	if title == "" {
		return errors.New("title is required and cannot be empty")
	}
	if utf8.RuneCountInString(title) > maxStoryTitleLen {
		return errors.New("title cannot exceed 255 characters")
	}
	if utf8.RuneCountInString(r.Summary) > maxStorySummaryLen {
		return errors.New("summary cannot exceed 1024 characters")
	}
	if strings.TrimSpace(r.Body) == "" {
		return errors.New("body is required and cannot be empty")
	}
	r.Title = title
	if r.Slug == "" {
		r.Slug = Slugify(title)
	}
	if !slugPattern.MatchString(r.Slug) {
		return errors.New("slug must contain only lowercase letters, digits, and hyphens")
	}
	return nil
}

// Validate validates UpdateStoryRequest.
func (r *UpdateStoryRequest) Validate() error {
	if r.Title == nil && r.Slug == nil && r.Summary == nil && r.Body == nil &&
		r.CoverMediaID == nil && r.Published == nil {
		return errors.New("at least one field must be updated")
	}
	if r.Title != nil {
		title := strings.TrimSpace(*r.Title)
		if title == "" {
			return errors.New("title is required and cannot be empty")
		}
		if utf8.RuneCountInString(title) > maxStoryTitleLen {
			return errors.New("title cannot exceed 255 characters")
		}
		*r.Title = title
	}
	if r.Summary != nil && utf8.RuneCountInString(*r.Summary) > maxStorySummaryLen {
		return errors.New("summary cannot exceed 1024 characters")
	}
	if r.Body != nil && strings.TrimSpace(*r.Body) == "" {
		return errors.New("body is required and cannot be empty")
	}
	if r.Slug != nil && !slugPattern.MatchString(*r.Slug) {
		return errors.New("slug must contain only lowercase letters, digits, and hyphens")
	}
	return nil
}

// Slugify derives a URL-safe slug from a title.
func Slugify(title string) string {
	var b strings.Builder
	lastHyphen := true // suppress leading hyphen
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
