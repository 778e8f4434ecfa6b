package review

import (
	"context"
	"time"

	"github.com/terraconstructs/articles/internal/db/models"
	"github.com/terraconstructs/articles/internal/logging"
	"github.com/terraconstructs/articles/internal/repository"
)

// Draft is a new review.
type Draft struct {
	Type      models.ReviewType
	Content   string
	AuthorID  int64
	ArticleID int64
}

// Service orchestrates review persistence.
type Service struct {
	reviews  repository.ReviewRepository
	articles repository.ArticleRepository
	users    repository.UserRepository
	now      func() time.Time
}

// NewService constructs a new Service instance.
func NewService(reviews repository.ReviewRepository, articles repository.ArticleRepository, users repository.UserRepository) *Service {
	return &Service{
		reviews:  reviews,
		articles: articles,
		users:    users,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the creation timestamp source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Create stores a review. The article and the author must exist.
func (s *Service) Create(ctx context.Context, draft Draft) (*models.Review, error) {
	if _, err := s.articles.GetByID(ctx, draft.ArticleID); err != nil {
		return nil, err
	}
	if _, err := s.users.GetByID(ctx, draft.AuthorID); err != nil {
		return nil, err
	}

	authorID := draft.AuthorID
	review := &models.Review{
		Type:           draft.Type,
		Content:        draft.Content,
		AuthorID:       &authorID,
		ArticleID:      draft.ArticleID,
		DateOfCreation: s.now(),
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, err
	}

	logging.Ctx(ctx).Info().
		Int64("review_id", review.ID).
		Int64("article_id", review.ArticleID).
		Msg("review created")
	return review, nil
}

// Delete removes a review.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.reviews.Delete(ctx, id)
}

// Get returns one review.
func (s *Service) Get(ctx context.Context, id int64) (*models.Review, error) {
	return s.reviews.GetByID(ctx, id)
}

// ListByArticle returns the reviews of an article.
func (s *Service) ListByArticle(ctx context.Context, articleID int64) ([]models.Review, error) {
	return s.reviews.ListByArticle(ctx, articleID)
}

// ListByAuthor returns the reviews written by a user.
func (s *Service) ListByAuthor(ctx context.Context, authorID int64) ([]models.Review, error) {
	return s.reviews.ListByAuthor(ctx, authorID)
}
