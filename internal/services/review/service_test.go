package review

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"github.com/terraconstructs/articles/internal/db/bunx"
	"github.com/terraconstructs/articles/internal/db/models"
	"github.com/terraconstructs/articles/internal/migrations"
	"github.com/terraconstructs/articles/internal/repository"
)

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()
	db, err := bunx.NewDB(":memory:", 1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = bunx.Close(db) })
	_, err = migrations.Apply(context.Background(), db)
	require.NoError(t, err)
	return db
}

func TestService(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	users := repository.NewBunUserRepository(db)
	articles := repository.NewBunArticleRepository(db)
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := NewService(repository.NewBunReviewRepository(db), articles, users).
		WithClock(func() time.Time { return created })

	author := &models.User{Username: "alice", Email: "alice@example.com", Password: "x", Role: models.RoleUser}
	require.NoError(t, users.Create(ctx, author))
	article := &models.Article{Topic: "Go", Content: "maps", DateOfCreation: created}
	require.NoError(t, articles.Create(ctx, article, []int64{author.ID}))

	review, err := svc.Create(ctx, Draft{
		Type:      models.ReviewTypePositive,
		Content:   "great read",
		AuthorID:  author.ID,
		ArticleID: article.ID,
	})
	require.NoError(t, err)
	assert.NotZero(t, review.ID)
	assert.Equal(t, []int64{author.ID}, review.OwnerIDs())

	got, err := svc.Get(ctx, review.ID)
	require.NoError(t, err)
	assert.Equal(t, "great read", got.Content)
	assert.True(t, got.DateOfCreation.Equal(created))

	byArticle, err := svc.ListByArticle(ctx, article.ID)
	require.NoError(t, err)
	assert.Len(t, byArticle, 1)

	byAuthor, err := svc.ListByAuthor(ctx, author.ID)
	require.NoError(t, err)
	assert.Len(t, byAuthor, 1)

	t.Run("missing article", func(t *testing.T) {
		_, err := svc.Create(ctx, Draft{Type: models.ReviewTypeNegative, Content: "meh", AuthorID: author.ID, ArticleID: 404})
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("missing author", func(t *testing.T) {
		_, err := svc.Create(ctx, Draft{Type: models.ReviewTypeNegative, Content: "meh", AuthorID: 404, ArticleID: article.ID})
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	require.NoError(t, svc.Delete(ctx, review.ID))
	_, err = svc.Get(ctx, review.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
