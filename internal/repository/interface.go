package repository

import (
	"context"

	"github.com/terraconstructs/articles/internal/db/models"
)

// UserRepository exposes persistence operations for user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByIDs(ctx context.Context, ids []int64) ([]models.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]models.User, error)
}

// ArticleRepository exposes persistence operations for articles.
// Create writes the article and its authorship rows atomically.
type ArticleRepository interface {
	Create(ctx context.Context, article *models.Article, authorIDs []int64) error
	GetByID(ctx context.Context, id int64) (*models.Article, error)
	Update(ctx context.Context, article *models.Article) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]models.Article, error)
	ListByAuthor(ctx context.Context, authorID int64) ([]models.Article, error)
}

// AuthorshipRepository answers who wrote which article.
type AuthorshipRepository interface {
	AuthorIDs(ctx context.Context, articleID int64) ([]int64, error)
}

// ReviewRepository exposes persistence operations for reviews.
type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	GetByID(ctx context.Context, id int64) (*models.Review, error)
	Delete(ctx context.Context, id int64) error
	ListByArticle(ctx context.Context, articleID int64) ([]models.Review, error)
	ListByAuthor(ctx context.Context, authorID int64) ([]models.Review, error)
}
