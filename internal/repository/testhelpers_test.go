package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"github.com/terraconstructs/articles/internal/db/bunx"
	"github.com/terraconstructs/articles/internal/db/models"
	"github.com/terraconstructs/articles/internal/migrations"
)

// setupTestDB opens a fresh in-memory SQLite database with the schema applied.
func setupTestDB(t *testing.T) *bun.DB {
	t.Helper()

	db, err := bunx.NewDB(":memory:", 1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = bunx.Close(db) })

	_, err = migrations.Apply(context.Background(), db)
	require.NoError(t, err)
	return db
}

func seedUser(t *testing.T, repo *BunUserRepository, username string, role models.Role) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "$2a$04$hash",
		Role:     role,
	}
	require.NoError(t, repo.Create(context.Background(), user))
	require.NotZero(t, user.ID)
	return user
}

func seedArticle(t *testing.T, repo *BunArticleRepository, topic string, authorIDs ...int64) *models.Article {
	t.Helper()
	article := &models.Article{
		Topic:          topic,
		Content:        "content of " + topic,
		DateOfCreation: time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, repo.Create(context.Background(), article, authorIDs))
	require.NotZero(t, article.ID)
	return article
}
