package article

import (
	"context"
	"fmt"
	"time"

	"github.com/terraconstructs/articles/internal/db/models"
	"github.com/terraconstructs/articles/internal/logging"
	"github.com/terraconstructs/articles/internal/repository"
)

// Draft is a new article with its authors.
type Draft struct {
	Topic     string
	Content   string
	AuthorIDs []int64
}

// Changes are the editable fields of an existing article.
type Changes struct {
	Topic   string
	Content string
}

// Service orchestrates article persistence and authorship.
type Service struct {
	articles   repository.ArticleRepository
	authorship repository.AuthorshipRepository
	users      repository.UserRepository
	now        func() time.Time
}

// NewService constructs a new Service instance.
func NewService(articles repository.ArticleRepository, authorship repository.AuthorshipRepository, users repository.UserRepository) *Service {
	return &Service{
		articles:   articles,
		authorship: authorship,
		users:      users,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the creation timestamp source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Create stores the article and its authorship rows. Every author must exist.
func (s *Service) Create(ctx context.Context, draft Draft) (*models.Article, error) {
	authorIDs := dedupe(draft.AuthorIDs)
	if len(authorIDs) == 0 {
		return nil, fmt.Errorf("article requires at least one author")
	}

	found, err := s.users.GetByIDs(ctx, authorIDs)
	if err != nil {
		return nil, err
	}
	if len(found) != len(authorIDs) {
		known := make(map[int64]struct{}, len(found))
		for _, u := range found {
			known[u.ID] = struct{}{}
		}
		for _, id := range authorIDs {
			if _, ok := known[id]; !ok {
				return nil, fmt.Errorf("author %d: %w", id, repository.ErrNotFound)
			}
		}
	}

	article := &models.Article{
		Topic:          draft.Topic,
		Content:        draft.Content,
		DateOfCreation: s.now(),
	}
	if err := s.articles.Create(ctx, article, authorIDs); err != nil {
		return nil, err
	}

	logging.Ctx(ctx).Info().
		Int64("article_id", article.ID).
		Ints64("author_ids", authorIDs).
		Msg("article created")
	return article, nil
}

// Update rewrites the topic and content of an article.
func (s *Service) Update(ctx context.Context, id int64, changes Changes) (*models.Article, error) {
	article, err := s.articles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	article.Topic = changes.Topic
	article.Content = changes.Content
	if err := s.articles.Update(ctx, article); err != nil {
		return nil, err
	}
	return article, nil
}

// Delete removes an article together with its authorship rows and reviews.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.articles.Delete(ctx, id); err != nil {
		return err
	}
	logging.Ctx(ctx).Info().Int64("article_id", id).Msg("article deleted")
	return nil
}

// Get returns one article.
func (s *Service) Get(ctx context.Context, id int64) (*models.Article, error) {
	return s.articles.GetByID(ctx, id)
}

// List returns every article.
func (s *Service) List(ctx context.Context) ([]models.Article, error) {
	return s.articles.List(ctx)
}

// ListByAuthor returns the articles written by a user.
func (s *Service) ListByAuthor(ctx context.Context, authorID int64) ([]models.Article, error) {
	return s.articles.ListByAuthor(ctx, authorID)
}

// AuthorIDs returns the authors of an article. An unknown article yields an empty set.
func (s *Service) AuthorIDs(ctx context.Context, articleID int64) ([]int64, error) {
	return s.authorship.AuthorIDs(ctx, articleID)
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
