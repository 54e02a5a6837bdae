package data

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkhouse/storyapi/internal/domain/model"
	"github.com/inkhouse/storyapi/internal/testutil"
)

func createTestStory(t *testing.T, db *sql.DB, title string, published bool) *model.Story {
	t.Helper()
	repo := NewStoryRepo(db)
	s, err := repo.Create(context.Background(), &model.CreateStoryRequest{
		Title:     title,
		Body:      "Once upon a time.",
		Published: &published,
	})
	require.NoError(t, err)
	return s
}

func TestStoryRepo_Create_Get_List_Update_Delete(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithTestDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewStoryRepo(db)

		// create
		title := fmt.Sprintf("The Lantern Fox %d", time.Now().UnixNano())
		req := &model.CreateStoryRequest{
			Title:   title,
			Summary: "A fox finds a lantern.",
			Body:    "Once upon a time a fox found a lantern in the woods.",
		}
		s, err := repo.Create(ctx, req)
		require.NoError(t, err)
		require.NotZero(t, s.ID)
		assert.Equal(t, title, s.Title)
		assert.Equal(t, model.Slugify(title), s.Slug)
		assert.False(t, s.Published)
		assert.Nil(t, s.PublishedAt)
		assert.NotZero(t, s.CreatedAt)

		// duplicate slug
		_, err = repo.Create(ctx, &model.CreateStoryRequest{
			Title: title,
			Body:  "Different body, same slug.",
		})
		assert.ErrorIs(t, err, ErrStorySlugExists)

		// get by id
		got, err := repo.GetByID(ctx, s.ID)
		require.NoError(t, err)
		assert.Equal(t, s.Title, got.Title)

		// get by slug
		bySlug, err := repo.GetBySlug(ctx, s.Slug)
		require.NoError(t, err)
		assert.Equal(t, s.ID, bySlug.ID)

		// list
		lst, err := repo.List(ctx, model.StoriesListOptions{Limit: 10})
		require.NoError(t, err)
		assert.GreaterOrEqual(t, len(lst), 1)

		// update - publish and retitle
		newTitle := "The Lantern Fox, Revised"
		upd := model.UpdateStoryRequest{
			Title:     &newTitle,
			Published: testutil.BoolPtr(true),
		}
		updated, err := repo.Update(ctx, s.ID, upd)
		require.NoError(t, err)
		assert.Equal(t, newTitle, updated.Title)
		assert.True(t, updated.Published)
		require.NotNil(t, updated.PublishedAt)
		assert.True(t, updated.UpdatedAt.After(s.UpdatedAt) || updated.UpdatedAt.Equal(s.UpdatedAt))

		// delete
		ok, err := repo.Delete(ctx, s.ID)
		require.NoError(t, err)
		assert.True(t, ok)

		_, err = repo.GetByID(ctx, s.ID)
		assert.ErrorIs(t, err, ErrStoryNotFound)

		ok, err = repo.Delete(ctx, s.ID)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestStoryRepo_List_SearchAndFilter(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithTestDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewStoryRepo(db)

		createTestStory(t, db, "Moonlight Harbor", true)
		createTestStory(t, db, "Harbor of Glass", false)
		createTestStory(t, db, "The Clockwork Garden", true)

		// substring search, case-insensitive
		q := "harbor"
		lst, err := repo.List(ctx, model.StoriesListOptions{Limit: 10, Q: &q})
		require.NoError(t, err)
		assert.Len(t, lst, 2)

		n, err := repo.Count(ctx, model.StoriesListOptions{Q: &q})
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		// published filter
		lst, err = repo.List(ctx, model.StoriesListOptions{Limit: 10, Published: testutil.BoolPtr(true)})
		require.NoError(t, err)
		assert.Len(t, lst, 2)

		// combined
		lst, err = repo.List(ctx, model.StoriesListOptions{
			Limit: 10, Q: &q, Published: testutil.BoolPtr(true),
		})
		require.NoError(t, err)
		require.Len(t, lst, 1)
		assert.Equal(t, "Moonlight Harbor", lst[0].Title)

		// title sort ascending
		lst, err = repo.List(ctx, model.StoriesListOptions{Limit: 10, Sort: "title", Dir: "asc"})
		require.NoError(t, err)
		require.Len(t, lst, 3)
		assert.Equal(t, "Harbor of Glass", lst[0].Title)

		// paging
		lst, err = repo.List(ctx, model.StoriesListOptions{Limit: 2, Offset: 2, Sort: "title", Dir: "asc"})
		require.NoError(t, err)
		assert.Len(t, lst, 1)
	})
}

func TestStoryRepo_Adjacent(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithTestDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewStoryRepo(db)

		first := createTestStory(t, db, "First Tale", true)
		second := createTestStory(t, db, "Second Tale", true)
		third := createTestStory(t, db, "Third Tale", true)

		next, err := repo.Adjacent(ctx, first.ID, 1)
		require.NoError(t, err)
		assert.Equal(t, second.ID, next.ID)

		prev, err := repo.Adjacent(ctx, third.ID, -1)
		require.NoError(t, err)
		assert.Equal(t, second.ID, prev.ID)

		// ends of the sequence
		_, err = repo.Adjacent(ctx, third.ID, 1)
		assert.ErrorIs(t, err, ErrStoryNotFound)

		_, err = repo.Adjacent(ctx, first.ID, -1)
		assert.ErrorIs(t, err, ErrStoryNotFound)
	})
}

func TestStoryRepo_Update_Validation(t *testing.T) {
	repo := NewStoryRepo(nil)

	_, err := repo.Update(context.Background(), 1, model.UpdateStoryRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one field")
}
