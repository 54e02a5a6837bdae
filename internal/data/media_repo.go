package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/inkhouse/storyapi/internal/data/pgxutil"
	"github.com/inkhouse/storyapi/internal/domain/model"
)

// MediaRepo provides database operations for media object metadata.
type MediaRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewMediaRepo creates a new MediaRepo with real time provider.
func NewMediaRepo(db *sql.DB) *MediaRepo {
	return &MediaRepo{DB: db, timeProvider: RealTimeProvider{}}
}

const mediaColumns = `id, story_id, kind, object_key, content_type, size_bytes, created_at`

// Create records metadata for an uploaded object. The ID is generated here
// so callers can derive the object key before the row exists.
func (r *MediaRepo) Create(ctx context.Context, req *model.CreateMediaRequest, key string, size int64) (*model.MediaObject, error) {
	if req == nil {
		return nil, errors.New("create media request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var out model.MediaObject
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO media_objects (id, story_id, kind, object_key, content_type, size_bytes, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING `+mediaColumns,
			uuid.NewString(), req.StoryID, req.Kind, key, req.ContentType, size,
			r.timeProvider.Now().UTC())
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.MediaObject])
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to create media object: %w", err)
	}
	return &out, nil
}

// GetByID retrieves media metadata by ID. Returns ErrMediaNotFound when missing.
func (r *MediaRepo) GetByID(ctx context.Context, id string) (*model.MediaObject, error) {
	var obj model.MediaObject
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT `+mediaColumns+`
			FROM media_objects
			WHERE id = $1`, id)
		if err != nil {
			return err
		}
		defer rows.Close()
		obj, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.MediaObject])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMediaNotFound
		}
		return nil, fmt.Errorf("failed to get media object: %w", err)
	}
	return &obj, nil
}

// ListByStory returns media metadata for a story, newest first.
func (r *MediaRepo) ListByStory(ctx context.Context, storyID int64) ([]*model.MediaObject, error) {
	var rowsOut []model.MediaObject
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT `+mediaColumns+`
			FROM media_objects
			WHERE story_id = $1
			ORDER BY created_at DESC`, storyID)
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.MediaObject])
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to list media objects: %w", err)
	}

	res := make([]*model.MediaObject, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}

// Delete removes media metadata by ID.
func (r *MediaRepo) Delete(ctx context.Context, id string) (bool, error) {
	var rows int64
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		ct, err := conn.Exec(ctx, `DELETE FROM media_objects WHERE id = $1`, id)
		if err != nil {
			return err
		}
		rows = ct.RowsAffected()
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete media object: %w", err)
	}
	return rows > 0, nil
}
