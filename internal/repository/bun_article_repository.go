package repository

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/terraconstructs/articles/internal/db/models"
)

// BunArticleRepository implements ArticleRepository using Bun ORM.
type BunArticleRepository struct {
	db *bun.DB
}

// NewBunArticleRepository creates a new Bun-based article repository.
func NewBunArticleRepository(db *bun.DB) *BunArticleRepository {
	return &BunArticleRepository{db: db}
}

// Create inserts the article and one authorship row per author in a single
// transaction, populating article.ID.
func (r *BunArticleRepository) Create(ctx context.Context, article *models.Article, authorIDs []int64) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().
			Model(article).
			Returning("id").
			Exec(ctx); err != nil {
			return fmt.Errorf("create article: %w", err)
		}

		if len(authorIDs) == 0 {
			return nil
		}

		rows := make([]models.AuthorshipOfArticle, 0, len(authorIDs))
		for _, authorID := range authorIDs {
			rows = append(rows, models.AuthorshipOfArticle{ArticleID: article.ID, AuthorID: authorID})
		}
		if _, err := tx.NewInsert().Model(&rows).Exec(ctx); err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("create authorship for article %d: %w", article.ID, ErrDuplicate)
			}
			return fmt.Errorf("create authorship: %w", err)
		}
		return nil
	})
}

// GetByID retrieves an article by its ID.
func (r *BunArticleRepository) GetByID(ctx context.Context, id int64) (*models.Article, error) {
	article := new(models.Article)
	err := r.db.NewSelect().
		Model(article).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("article %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get article by ID: %w", err)
	}
	return article, nil
}

// Update rewrites topic and content. Authorship and creation date are untouched.
func (r *BunArticleRepository) Update(ctx context.Context, article *models.Article) error {
	result, err := r.db.NewUpdate().
		Model(article).
		Column("topic", "content").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update article: %w", err)
	}
	return requireAffected(result, "article", article.ID)
}

// Delete removes an article together with its authorship rows and reviews.
func (r *BunArticleRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.NewDelete().
		Model((*models.Article)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete article: %w", err)
	}
	return requireAffected(result, "article", id)
}

// List retrieves all articles.
func (r *BunArticleRepository) List(ctx context.Context) ([]models.Article, error) {
	articles := make([]models.Article, 0)
	err := r.db.NewSelect().
		Model(&articles).
		Order("a.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	return articles, nil
}

// ListByAuthor retrieves the articles the given user is an author of.
func (r *BunArticleRepository) ListByAuthor(ctx context.Context, authorID int64) ([]models.Article, error) {
	articles := make([]models.Article, 0)
	err := r.db.NewSelect().
		Model(&articles).
		Join("JOIN authorship_of_articles AS aa ON aa.article_id = a.id").
		Where("aa.author_id = ?", authorID).
		Order("a.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list articles by author: %w", err)
	}
	return articles, nil
}

// BunAuthorshipRepository implements AuthorshipRepository using Bun ORM.
type BunAuthorshipRepository struct {
	db bun.IDB
}

// NewBunAuthorshipRepository creates a new Bun-based authorship repository.
func NewBunAuthorshipRepository(db bun.IDB) *BunAuthorshipRepository {
	return &BunAuthorshipRepository{db: db}
}

// AuthorIDs returns the current author IDs of an article, ordered by ID.
// An unknown article yields an empty slice.
func (r *BunAuthorshipRepository) AuthorIDs(ctx context.Context, articleID int64) ([]int64, error) {
	ids := make([]int64, 0)
	err := r.db.NewSelect().
		Model((*models.AuthorshipOfArticle)(nil)).
		Column("author_id").
		Where("article_id = ?", articleID).
		Order("author_id ASC").
		Scan(ctx, &ids)
	if err != nil {
		return nil, fmt.Errorf("get author ids for article %d: %w", articleID, err)
	}
	return ids, nil
}
