package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terraconstructs/articles/internal/db/models"
)

func TestBunArticleRepository(t *testing.T) {
	db := setupTestDB(t)
	users := NewBunUserRepository(db)
	repo := NewBunArticleRepository(db)
	authorship := NewBunAuthorshipRepository(db)
	ctx := context.Background()

	alice := seedUser(t, users, "alice", models.RoleUser)
	bob := seedUser(t, users, "bob", models.RoleUser)

	shared := seedArticle(t, repo, "shared", alice.ID, bob.ID)
	solo := seedArticle(t, repo, "solo", bob.ID)

	t.Run("get by id", func(t *testing.T) {
		got, err := repo.GetByID(ctx, shared.ID)
		require.NoError(t, err)
		assert.Equal(t, "shared", got.Topic)
		assert.Equal(t, shared.DateOfCreation.Unix(), got.DateOfCreation.Unix())

		_, err = repo.GetByID(ctx, 9999)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("author ids", func(t *testing.T) {
		ids, err := authorship.AuthorIDs(ctx, shared.ID)
		require.NoError(t, err)
		assert.Equal(t, []int64{alice.ID, bob.ID}, ids)

		ids, err = authorship.AuthorIDs(ctx, 9999)
		require.NoError(t, err)
		assert.Empty(t, ids)
	})

	t.Run("list by author", func(t *testing.T) {
		articles, err := repo.ListByAuthor(ctx, bob.ID)
		require.NoError(t, err)
		require.Len(t, articles, 2)
		assert.Equal(t, shared.ID, articles[0].ID)
		assert.Equal(t, solo.ID, articles[1].ID)

		articles, err = repo.ListByAuthor(ctx, alice.ID)
		require.NoError(t, err)
		require.Len(t, articles, 1)
	})

	t.Run("create with unknown author rolls back", func(t *testing.T) {
		article := &models.Article{Topic: "orphan", Content: "x", DateOfCreation: shared.DateOfCreation}
		err := repo.Create(ctx, article, []int64{9999})
		require.Error(t, err)

		all, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})

	t.Run("update keeps authorship", func(t *testing.T) {
		require.NoError(t, repo.Update(ctx, &models.Article{ID: solo.ID, Topic: "renamed", Content: "new"}))

		got, err := repo.GetByID(ctx, solo.ID)
		require.NoError(t, err)
		assert.Equal(t, "renamed", got.Topic)
		assert.Equal(t, "new", got.Content)

		ids, err := authorship.AuthorIDs(ctx, solo.ID)
		require.NoError(t, err)
		assert.Equal(t, []int64{bob.ID}, ids)

		assert.ErrorIs(t, repo.Update(ctx, &models.Article{ID: 9999, Topic: "x", Content: "x"}), ErrNotFound)
	})

	t.Run("deleting a user drops their authorship", func(t *testing.T) {
		require.NoError(t, users.Delete(ctx, alice.ID))
		ids, err := authorship.AuthorIDs(ctx, shared.ID)
		require.NoError(t, err)
		assert.Equal(t, []int64{bob.ID}, ids)
	})

	t.Run("delete cascades authorship", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, shared.ID))
		ids, err := authorship.AuthorIDs(ctx, shared.ID)
		require.NoError(t, err)
		assert.Empty(t, ids)
		assert.ErrorIs(t, repo.Delete(ctx, shared.ID), ErrNotFound)
	})
}
