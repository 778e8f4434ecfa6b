package article

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/terraconstructs/articles/internal/db/models"
	"github.com/terraconstructs/articles/internal/repository"
)

// MockArticleRepository is a mock implementation of repository.ArticleRepository
type MockArticleRepository struct {
	mock.Mock
}

func (m *MockArticleRepository) Create(ctx context.Context, article *models.Article, authorIDs []int64) error {
	args := m.Called(ctx, article, authorIDs)
	if args.Error(0) == nil {
		article.ID = 1
	}
	return args.Error(0)
}

func (m *MockArticleRepository) GetByID(ctx context.Context, id int64) (*models.Article, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Article), args.Error(1)
}

func (m *MockArticleRepository) Update(ctx context.Context, article *models.Article) error {
	return m.Called(ctx, article).Error(0)
}

func (m *MockArticleRepository) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockArticleRepository) List(ctx context.Context) ([]models.Article, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Article), args.Error(1)
}

func (m *MockArticleRepository) ListByAuthor(ctx context.Context, authorID int64) ([]models.Article, error) {
	args := m.Called(ctx, authorID)
	return args.Get(0).([]models.Article), args.Error(1)
}

// MockAuthorshipRepository is a mock implementation of repository.AuthorshipRepository
type MockAuthorshipRepository struct {
	mock.Mock
}

func (m *MockAuthorshipRepository) AuthorIDs(ctx context.Context, articleID int64) ([]int64, error) {
	args := m.Called(ctx, articleID)
	return args.Get(0).([]int64), args.Error(1)
}

// MockUserRepository implements the lookups the article service needs.
type MockUserRepository struct {
	mock.Mock
	repository.UserRepository
}

func (m *MockUserRepository) GetByIDs(ctx context.Context, ids []int64) ([]models.User, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func fixedClock() time.Time {
	return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("stores article with deduplicated authors", func(t *testing.T) {
		articles := new(MockArticleRepository)
		users := new(MockUserRepository)
		svc := NewService(articles, nil, users).WithClock(fixedClock)

		users.On("GetByIDs", ctx, []int64{1, 2}).Return([]models.User{{ID: 1}, {ID: 2}}, nil)
		articles.On("Create", ctx, mock.MatchedBy(func(a *models.Article) bool {
			return a.Topic == "Go" && a.DateOfCreation.Equal(fixedClock())
		}), []int64{1, 2}).Return(nil)

		article, err := svc.Create(ctx, Draft{Topic: "Go", Content: "channels", AuthorIDs: []int64{1, 2, 1}})
		require.NoError(t, err)
		assert.Equal(t, int64(1), article.ID)
		articles.AssertExpectations(t)
		users.AssertExpectations(t)
	})

	t.Run("unknown author", func(t *testing.T) {
		articles := new(MockArticleRepository)
		users := new(MockUserRepository)
		svc := NewService(articles, nil, users)

		users.On("GetByIDs", ctx, []int64{1, 9}).Return([]models.User{{ID: 1}}, nil)

		_, err := svc.Create(ctx, Draft{Topic: "Go", Content: "channels", AuthorIDs: []int64{1, 9}})
		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.Contains(t, err.Error(), "author 9")
		articles.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("no authors", func(t *testing.T) {
		svc := NewService(new(MockArticleRepository), nil, new(MockUserRepository))
		_, err := svc.Create(ctx, Draft{Topic: "Go", Content: "channels"})
		assert.Error(t, err)
	})
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()
	articles := new(MockArticleRepository)
	svc := NewService(articles, nil, nil)

	existing := &models.Article{ID: 3, Topic: "old", Content: "old", DateOfCreation: fixedClock()}
	articles.On("GetByID", ctx, int64(3)).Return(existing, nil)
	articles.On("Update", ctx, existing).Return(nil)
	articles.On("GetByID", ctx, int64(4)).Return(nil, repository.ErrNotFound)

	updated, err := svc.Update(ctx, 3, Changes{Topic: "new", Content: "body"})
	require.NoError(t, err)
	assert.Equal(t, "new", updated.Topic)
	assert.Equal(t, "body", updated.Content)
	assert.True(t, updated.DateOfCreation.Equal(fixedClock()))

	_, err = svc.Update(ctx, 4, Changes{Topic: "new", Content: "body"})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestService_Lookups(t *testing.T) {
	ctx := context.Background()
	articles := new(MockArticleRepository)
	authorship := new(MockAuthorshipRepository)
	svc := NewService(articles, authorship, nil)

	authorship.On("AuthorIDs", ctx, int64(5)).Return([]int64{1, 2}, nil)
	articles.On("ListByAuthor", ctx, int64(1)).Return([]models.Article{{ID: 5}}, nil)
	articles.On("Delete", ctx, int64(5)).Return(nil)

	ids, err := svc.AuthorIDs(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, ids)

	list, err := svc.ListByAuthor(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	assert.NoError(t, svc.Delete(ctx, 5))
	mock.AssertExpectationsForObjects(t, articles, authorship)
}
