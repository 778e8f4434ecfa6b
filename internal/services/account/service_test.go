package account

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"golang.org/x/crypto/bcrypt"

	"github.com/terraconstructs/articles/internal/auth"
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

func newTestService(t *testing.T) (*Service, *bun.DB) {
	t.Helper()
	db := newTestDB(t)
	issuer, err := auth.NewTokenIssuer(auth.TokenConfig{
		Secret:   []byte("test-secret-test-secret-test-secret"),
		Issuer:   "articles-service",
		Audience: "articles-clients",
		TTL:      time.Hour,
	})
	require.NoError(t, err)

	svc := NewService(repository.NewBunUserRepository(db), bcrypt.MinCost).
		WithAuthorshipRepository(repository.NewBunAuthorshipRepository(db)).
		WithTokenIssuer(issuer)
	return svc, db
}

func TestService_Register(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, Registration{Username: "alice", Email: "alice@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.NotEqual(t, "secret1", user.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("secret1")))

	t.Run("duplicate username", func(t *testing.T) {
		_, err := svc.Register(ctx, Registration{Username: "alice", Email: "other@example.com", Password: "secret1"})
		assert.ErrorIs(t, err, ErrUsernameTaken)
		assert.ErrorIs(t, err, repository.ErrDuplicate)
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := svc.Register(ctx, Registration{Username: "alice2", Email: "alice@example.com", Password: "secret1"})
		assert.ErrorIs(t, err, ErrEmailTaken)
	})
}

func TestService_CreateWithRole(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	admin, err := svc.Create(ctx, UserInput{Username: "root1", Email: "root@example.com", Password: "secret1", Role: models.RoleAdmin})
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin())

	_, err = svc.Create(ctx, UserInput{Username: "bogus", Email: "bogus@example.com", Password: "secret1", Role: "ROLE_ROOT"})
	assert.Error(t, err)
}

func TestService_Update(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	alice, err := svc.Register(ctx, Registration{Username: "alice", Email: "alice@example.com", Password: "secret1"})
	require.NoError(t, err)
	bob, err := svc.Register(ctx, Registration{Username: "bobby", Email: "bob@example.com", Password: "secret1"})
	require.NoError(t, err)

	self := auth.Principal{ID: alice.ID, Username: alice.Username, Role: models.RoleUser}
	admin := auth.Principal{ID: 99, Username: "admin", Role: models.RoleAdmin}

	t.Run("self update keeps own username", func(t *testing.T) {
		updated, err := svc.Update(ctx, self, alice.ID, UserInput{
			Username: "alice", Email: "alice@new.example.com", Password: "secret2", Role: models.RoleUser,
		})
		require.NoError(t, err)
		assert.Equal(t, "alice@new.example.com", updated.Email)

		got, err := svc.Get(ctx, alice.ID)
		require.NoError(t, err)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(got.Password), []byte("secret2")))
	})

	t.Run("non-admin cannot escalate", func(t *testing.T) {
		_, err := svc.Update(ctx, self, alice.ID, UserInput{
			Username: "alice", Email: "alice@example.com", Password: "secret2", Role: models.RoleAdmin,
		})
		var denied *auth.AccessDeniedError
		require.ErrorAs(t, err, &denied)
		assert.Equal(t, "alice", denied.Username)
	})

	t.Run("admin can promote", func(t *testing.T) {
		updated, err := svc.Update(ctx, admin, bob.ID, UserInput{
			Username: "bobby", Email: "bob@example.com", Password: "secret1", Role: models.RoleAdmin,
		})
		require.NoError(t, err)
		assert.True(t, updated.IsAdmin())
	})

	t.Run("username collision", func(t *testing.T) {
		_, err := svc.Update(ctx, self, alice.ID, UserInput{
			Username: "bobby", Email: "alice@example.com", Password: "secret2", Role: models.RoleUser,
		})
		assert.ErrorIs(t, err, ErrUsernameTaken)
	})

	t.Run("missing user", func(t *testing.T) {
		_, err := svc.Update(ctx, admin, 404, UserInput{
			Username: "ghost", Email: "ghost@example.com", Password: "secret1", Role: models.RoleUser,
		})
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
}

func TestService_Authenticate(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, Registration{Username: "alice", Email: "alice@example.com", Password: "secret1"})
	require.NoError(t, err)

	token, err := svc.Authenticate(ctx, "alice", "secret1")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	_, err = svc.Authenticate(ctx, "alice", "wrong-password")
	assert.ErrorIs(t, err, ErrBadCredentials)

	_, err = svc.Authenticate(ctx, "nobody", "secret1")
	assert.ErrorIs(t, err, ErrBadCredentials)

	_, err = NewService(nil, 0).Authenticate(ctx, "alice", "secret1")
	assert.Error(t, err)
}

func TestService_ListAuthorsOfArticle(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	alice, err := svc.Register(ctx, Registration{Username: "alice", Email: "alice@example.com", Password: "secret1"})
	require.NoError(t, err)
	bob, err := svc.Register(ctx, Registration{Username: "bobby", Email: "bob@example.com", Password: "secret1"})
	require.NoError(t, err)

	article := &models.Article{Topic: "Go", Content: "generics", DateOfCreation: time.Now().UTC()}
	require.NoError(t, repository.NewBunArticleRepository(db).Create(ctx, article, []int64{alice.ID, bob.ID}))

	authors, err := svc.ListAuthorsOfArticle(ctx, article.ID)
	require.NoError(t, err)
	assert.Len(t, authors, 2)

	exists, err := svc.ExistsByUsername(ctx, "bobby")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, svc.Delete(ctx, bob.ID))
	exists, err = svc.ExistsByUsername(ctx, "bobby")
	require.NoError(t, err)
	assert.False(t, exists)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
