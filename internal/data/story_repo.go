package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/inkhouse/storyapi/internal/data/pgxutil"
	"github.com/inkhouse/storyapi/internal/domain/model"
)

// StoryRepo provides database operations for stories.
type StoryRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewStoryRepo creates a new StoryRepo with real time provider.
func NewStoryRepo(db *sql.DB) *StoryRepo {
	return &StoryRepo{DB: db, timeProvider: RealTimeProvider{}}
}

// NewStoryRepoWithTimeProvider creates a new StoryRepo with a custom time provider (useful for tests).
func NewStoryRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *StoryRepo {
	return &StoryRepo{DB: db, timeProvider: tp}
}

const storyColumns = `id, title, slug, summary, body, cover_media_id, published, published_at, created_at, updated_at`

// SQL query constants for static queries (no dynamic WHERE/ORDER BY).
const (
	storyGetByIDQuery = `
		SELECT ` + storyColumns + `
		FROM stories
		WHERE id = $1`

	storyGetBySlugQuery = `
		SELECT ` + storyColumns + `
		FROM stories
		WHERE slug = $1`

	storyNextQuery = `
		SELECT ` + storyColumns + `
		FROM stories
		WHERE id > $1
		ORDER BY id ASC
		LIMIT 1`

	storyPrevQuery = `
		SELECT ` + storyColumns + `
		FROM stories
		WHERE id < $1
		ORDER BY id DESC
		LIMIT 1`
)

// Create inserts a new story.
func (r *StoryRepo) Create(ctx context.Context, req *model.CreateStoryRequest) (*model.Story, error) {
	if req == nil {
		return nil, errors.New("create story request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	published := false
	if req.Published != nil {
		published = *req.Published
	}
	now := r.timeProvider.Now().UTC()

	var out model.Story
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO stories (
				title, slug, summary, body, cover_media_id, published, published_at, created_at, updated_at
			) VALUES (
				$1, $2, $3, $4, $5, $6, $7, $8, $8
			) RETURNING `+storyColumns,
			req.Title,
			req.Slug,
			req.Summary,
			req.Body,
			req.CoverMediaID,
			published,
			publishedAt(published, now),
			now,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Story])
		return err
	}); err != nil {
		return nil, r.mapWriteErr(err, false)
	}
	return &out, nil
}

// GetByID retrieves a story by ID.
func (r *StoryRepo) GetByID(ctx context.Context, id int64) (*model.Story, error) {
	return r.getByQuery(ctx, storyGetByIDQuery, "failed to get story by ID", id)
}

// GetBySlug retrieves a story by slug.
func (r *StoryRepo) GetBySlug(ctx context.Context, slug string) (*model.Story, error) {
	return r.getByQuery(ctx, storyGetBySlugQuery, "failed to get story by slug", slug)
}

// List retrieves stories with search, filtering, and pagination.
func (r *StoryRepo) List(ctx context.Context, opts model.StoriesListOptions) ([]*model.Story, error) {
	query, args := buildStoryListQuery(opts, false)

	var rowsOut []model.Story
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.Story])
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to list stories: %w", err)
	}

	res := make([]*model.Story, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}

// Count returns the total number of stories matching the list filters.
func (r *StoryRepo) Count(ctx context.Context, opts model.StoriesListOptions) (int, error) {
	query, args := buildStoryListQuery(opts, true)

	var count int
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		return conn.QueryRow(ctx, query, args...).Scan(&count)
	}); err != nil {
		return 0, fmt.Errorf("failed to count stories: %w", err)
	}
	return count, nil
}

// Adjacent returns the neighboring story by id order: next for dir > 0,
// previous for dir < 0. Returns ErrStoryNotFound at either end.
func (r *StoryRepo) Adjacent(ctx context.Context, id int64, dir int) (*model.Story, error) {
	q := storyNextQuery
	if dir < 0 {
		q = storyPrevQuery
	}
	return r.getByQuery(ctx, q, "failed to get adjacent story", id)
}

// Update updates fields of a story. Setting Published updates published_at.
func (r *StoryRepo) Update(ctx context.Context, id int64, req model.UpdateStoryRequest) (*model.Story, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	setClause, args := r.buildUpdateClause(req)
	args = append(args, id)
	query := "UPDATE stories SET " + setClause +
		" WHERE id = $" + strconv.Itoa(len(args)) +
		" RETURNING " + storyColumns

	var out model.Story
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		var e error
		out, e = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Story])
		return e
	})
	if err != nil {
		return nil, r.mapWriteErr(err, true)
	}
	return &out, nil
}

// Delete deletes a story by ID.
func (r *StoryRepo) Delete(ctx context.Context, id int64) (bool, error) {
	var rows int64
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		ct, err := conn.Exec(ctx, `DELETE FROM stories WHERE id = $1`, id)
		if err != nil {
			return err
		}
		rows = ct.RowsAffected()
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete story: %w", err)
	}
	return rows > 0, nil
}

// --- helpers ---

// publishedAt returns the timestamp to record for published_at, or nil when
// the story is created unpublished.
func publishedAt(published bool, now time.Time) any {
	if !published {
		return nil
	}
	return now
}

// buildUpdateClause builds the SQL SET clause and args for updating a story.
func (r *StoryRepo) buildUpdateClause(req model.UpdateStoryRequest) (string, []any) {
	setParts := make([]string, 0, 7)
	args := make([]any, 0, 8)
	nextIdx := func() int { return len(args) + 1 }

	if req.Title != nil {
		setParts = append(setParts, fmt.Sprintf("title = $%d", nextIdx()))
		args = append(args, *req.Title)
	}
	if req.Slug != nil {
		setParts = append(setParts, fmt.Sprintf("slug = $%d", nextIdx()))
		args = append(args, *req.Slug)
	}
	if req.Summary != nil {
		setParts = append(setParts, fmt.Sprintf("summary = $%d", nextIdx()))
		args = append(args, *req.Summary)
	}
	if req.Body != nil {
		setParts = append(setParts, fmt.Sprintf("body = $%d", nextIdx()))
		args = append(args, *req.Body)
	}
	if req.CoverMediaID != nil {
		if strings.TrimSpace(*req.CoverMediaID) == "" {
			setParts = append(setParts, "cover_media_id = NULL")
		} else {
			setParts = append(setParts, fmt.Sprintf("cover_media_id = $%d", nextIdx()))
			args = append(args, *req.CoverMediaID)
		}
	}
	if req.Published != nil {
		setParts = append(setParts, fmt.Sprintf("published = $%d", nextIdx()))
		args = append(args, *req.Published)
		if *req.Published {
			setParts = append(setParts, fmt.Sprintf("published_at = $%d", nextIdx()))
			args = append(args, r.timeProvider.Now().UTC())
		}
	}

	setParts = append(setParts, fmt.Sprintf("updated_at = $%d", nextIdx()))
	args = append(args, r.timeProvider.Now().UTC())

	return strings.Join(setParts, ", "), args
}

// buildStoryListQuery assembles the list or count query for the given options.
func buildStoryListQuery(opts model.StoriesListOptions, count bool) (string, []any) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := max(opts.Offset, 0)

	var where []string
	var args []any
	nextIdx := func() int { return len(args) + 1 }

	if opts.Q != nil && strings.TrimSpace(*opts.Q) != "" {
		q := "%" + strings.TrimSpace(*opts.Q) + "%"
		where = append(where,
			fmt.Sprintf("(title ILIKE $%d OR summary ILIKE $%d)", nextIdx(), nextIdx()+1))
		args = append(args, q, q)
	}
	if opts.Published != nil {
		where = append(where, fmt.Sprintf("published = $%d", nextIdx()))
		args = append(args, *opts.Published)
	}

	var b strings.Builder
	if count {
		b.WriteString("SELECT COUNT(*) FROM stories")
	} else {
		b.WriteString("SELECT " + storyColumns + " FROM stories")
	}
	if len(where) > 0 {
		b.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	if !count {
		sortCol, sortDir := validateStorySort(opts.Sort, opts.Dir)
		fmt.Fprintf(&b, " ORDER BY %s %s LIMIT $%d OFFSET $%d", sortCol, sortDir, nextIdx(), nextIdx()+1)
		args = append(args, limit, offset)
	}
	return b.String(), args
}

// validateStorySort validates and returns safe sort column and direction.
func validateStorySort(sort, dir string) (string, string) {
	sortCol := "created_at"
	sortDir := "DESC"

	switch strings.ToLower(strings.TrimSpace(sort)) {
	case "title":
		sortCol = "title"
	case "created_at", "":
	}
	if strings.EqualFold(strings.TrimSpace(dir), "asc") {
		sortDir = "ASC"
	}
	return sortCol, sortDir
}

// getByQuery executes a query expected to return a single story.
func (r *StoryRepo) getByQuery(ctx context.Context, q, errMsg string, args ...any) (*model.Story, error) {
	var story model.Story
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, q, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		story, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Story])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStoryNotFound
		}
		return nil, fmt.Errorf("%s: %w", errMsg, err)
	}
	return &story, nil
}

func (r *StoryRepo) mapWriteErr(err error, includeNotFound bool) error {
	if err == nil {
		return nil
	}
	if includeNotFound && errors.Is(err, pgx.ErrNoRows) {
		return ErrStoryNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return ErrStorySlugExists
	}
	return err
}
