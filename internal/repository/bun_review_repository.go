package repository

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/terraconstructs/articles/internal/db/models"
)

// BunReviewRepository implements ReviewRepository using Bun ORM.
type BunReviewRepository struct {
	db bun.IDB
}

// NewBunReviewRepository creates a new Bun-based review repository.
func NewBunReviewRepository(db bun.IDB) *BunReviewRepository {
	return &BunReviewRepository{db: db}
}

// Create inserts a review and populates its ID.
func (r *BunReviewRepository) Create(ctx context.Context, review *models.Review) error {
	_, err := r.db.NewInsert().
		Model(review).
		Returning("id").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create review: %w", err)
	}
	return nil
}

// GetByID retrieves a review by its ID.
func (r *BunReviewRepository) GetByID(ctx context.Context, id int64) (*models.Review, error) {
	review := new(models.Review)
	err := r.db.NewSelect().
		Model(review).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("review %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get review by ID: %w", err)
	}
	return review, nil
}

// Delete removes a review.
func (r *BunReviewRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.NewDelete().
		Model((*models.Review)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	return requireAffected(result, "review", id)
}

// ListByArticle retrieves the reviews of an article.
func (r *BunReviewRepository) ListByArticle(ctx context.Context, articleID int64) ([]models.Review, error) {
	return r.list(ctx, "article_id = ?", articleID)
}

// ListByAuthor retrieves the reviews written by a user.
func (r *BunReviewRepository) ListByAuthor(ctx context.Context, authorID int64) ([]models.Review, error) {
	return r.list(ctx, "author_id = ?", authorID)
}

func (r *BunReviewRepository) list(ctx context.Context, where string, arg any) ([]models.Review, error) {
	reviews := make([]models.Review, 0)
	err := r.db.NewSelect().
		Model(&reviews).
		Where(where, arg).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, nil
}
