package data

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/inkhouse/storyapi/internal/domain/auth"
	"github.com/inkhouse/storyapi/internal/domain/model"
	"github.com/inkhouse/storyapi/internal/testutil"
)

func TestAccountRepo_Create_Lookup_List_Delete(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithTestDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewAccountRepo(db)

		n, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, n)

		acct, err := repo.Create(ctx, &model.CreateAccountRequest{
			Email: "Alice@Example.com",
			Role:  domainauth.RoleEditor,
		})
		require.NoError(t, err)
		require.NotEmpty(t, acct.ID)
		// emails are stored lowercased
		assert.Equal(t, "alice@example.com", acct.Email)
		assert.Equal(t, domainauth.RoleEditor, acct.Role)

		// duplicate email, case-insensitive
		_, err = repo.Create(ctx, &model.CreateAccountRequest{Email: "ALICE@example.com"})
		assert.ErrorIs(t, err, ErrAccountExists)

		// lookup is case-insensitive
		got, err := repo.Lookup(ctx, "aLiCe@ExAmPlE.cOm")
		require.NoError(t, err)
		assert.Equal(t, acct.ID, got.ID)

		_, err = repo.Lookup(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, ErrAccountNotFound)

		_, err = repo.Create(ctx, &model.CreateAccountRequest{
			Email: "bob@example.com",
			Role:  domainauth.RoleReader,
		})
		require.NoError(t, err)

		lst, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, lst, 2)
		assert.Equal(t, "alice@example.com", lst[0].Email)

		n, err = repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		ok, err := repo.Delete(ctx, acct.ID)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = repo.Delete(ctx, acct.ID)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestAccountRepo_Create_Validation(t *testing.T) {
	repo := NewAccountRepo(nil)

	_, err := repo.Create(context.Background(), &model.CreateAccountRequest{Email: ""})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "email is required")

	_, err = repo.Create(context.Background(), &model.CreateAccountRequest{Email: "not-an-address"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "valid address")
}
