package account

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/terraconstructs/articles/internal/auth"
	"github.com/terraconstructs/articles/internal/db/models"
	"github.com/terraconstructs/articles/internal/logging"
	"github.com/terraconstructs/articles/internal/repository"
)

var (
	// ErrUsernameTaken is returned when the requested username belongs to another account.
	ErrUsernameTaken = fmt.Errorf("username is already taken: %w", repository.ErrDuplicate)
	// ErrEmailTaken is returned when the requested email belongs to another account.
	ErrEmailTaken = fmt.Errorf("email is already taken: %w", repository.ErrDuplicate)
	// ErrBadCredentials is returned by Authenticate for an unknown user or wrong password.
	ErrBadCredentials = errors.New("bad credentials")
)

// Registration is a self-service sign-up request.
type Registration struct {
	Username string
	Email    string
	Password string
}

// UserInput carries the writable fields of an account.
type UserInput struct {
	Username string
	Email    string
	Password string
	Role     models.Role
}

// TokenIssuer signs access tokens for authenticated users.
type TokenIssuer interface {
	Issue(user *models.User) (string, error)
}

// Service manages user accounts and credentials.
type Service struct {
	users      repository.UserRepository
	authorship repository.AuthorshipRepository
	issuer     TokenIssuer
	bcryptCost int
}

// NewService constructs a new Service instance.
func NewService(users repository.UserRepository, bcryptCost int) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{users: users, bcryptCost: bcryptCost}
}

// WithAuthorshipRepository enables ListAuthorsOfArticle.
func (s *Service) WithAuthorshipRepository(authorship repository.AuthorshipRepository) *Service {
	s.authorship = authorship
	return s
}

// WithTokenIssuer enables Authenticate.
func (s *Service) WithTokenIssuer(issuer TokenIssuer) *Service {
	s.issuer = issuer
	return s
}

// Register creates a ROLE_USER account with a hashed password.
func (s *Service) Register(ctx context.Context, reg Registration) (*models.User, error) {
	user, err := s.create(ctx, UserInput{
		Username: reg.Username,
		Email:    reg.Email,
		Password: reg.Password,
		Role:     models.RoleUser,
	})
	if err != nil {
		return nil, err
	}
	logging.Ctx(ctx).Info().Int64("user_id", user.ID).Str("username", user.Username).Msg("user registered")
	return user, nil
}

// Create creates an account with any role. Callers gate it behind the admin role.
func (s *Service) Create(ctx context.Context, in UserInput) (*models.User, error) {
	return s.create(ctx, in)
}

func (s *Service) create(ctx context.Context, in UserInput) (*models.User, error) {
	if !in.Role.Valid() {
		return nil, fmt.Errorf("unknown role %q", in.Role)
	}
	if err := s.checkUnique(ctx, in, 0); err != nil {
		return nil, err
	}

	hash, err := s.hash(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username: in.Username,
		Email:    in.Email,
		Password: hash,
		Role:     in.Role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Update rewrites the account identified by id. A non-admin actor cannot
// grant a role above ROLE_USER, including to themselves.
func (s *Service) Update(ctx context.Context, actor auth.Principal, id int64, in UserInput) (*models.User, error) {
	if !in.Role.Valid() {
		return nil, fmt.Errorf("unknown role %q", in.Role)
	}
	if !actor.IsAdmin() && in.Role != models.RoleUser {
		return nil, &auth.AccessDeniedError{Username: actor.Username}
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkUnique(ctx, in, id); err != nil {
		return nil, err
	}

	hash, err := s.hash(in.Password)
	if err != nil {
		return nil, err
	}

	user.Username = in.Username
	user.Email = in.Email
	user.Password = hash
	user.Role = in.Role
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// checkUnique rejects a username or email already held by an account other than selfID.
func (s *Service) checkUnique(ctx context.Context, in UserInput, selfID int64) error {
	if existing, err := s.users.GetByUsername(ctx, in.Username); err == nil {
		if existing.ID != selfID {
			return ErrUsernameTaken
		}
	} else if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("check username uniqueness: %w", err)
	}

	if existing, err := s.users.GetByEmail(ctx, in.Email); err == nil {
		if existing.ID != selfID {
			return ErrEmailTaken
		}
	} else if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("check email uniqueness: %w", err)
	}
	return nil
}

func (s *Service) hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Delete removes an account.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.users.Delete(ctx, id)
}

// Get returns one account.
func (s *Service) Get(ctx context.Context, id int64) (*models.User, error) {
	return s.users.GetByID(ctx, id)
}

// List returns every account.
func (s *Service) List(ctx context.Context) ([]models.User, error) {
	return s.users.List(ctx)
}

// ListAuthorsOfArticle returns the accounts that authored an article.
func (s *Service) ListAuthorsOfArticle(ctx context.Context, articleID int64) ([]models.User, error) {
	if s.authorship == nil {
		return nil, errors.New("authorship repository not configured")
	}
	ids, err := s.authorship.AuthorIDs(ctx, articleID)
	if err != nil {
		return nil, err
	}
	return s.users.GetByIDs(ctx, ids)
}

// ExistsByUsername reports whether an account with the username still exists.
func (s *Service) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return s.users.ExistsByUsername(ctx, username)
}

// Authenticate checks credentials and returns a signed access token.
func (s *Service) Authenticate(ctx context.Context, username, password string) (string, error) {
	if s.issuer == nil {
		return "", errors.New("token issuer not configured")
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", fmt.Errorf("user with username = %s not found: %w", username, ErrBadCredentials)
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", fmt.Errorf("invalid password: %w", ErrBadCredentials)
	}

	token, err := s.issuer.Issue(user)
	if err != nil {
		return "", err
	}
	logging.Ctx(ctx).Info().Int64("user_id", user.ID).Str("username", user.Username).Msg("user authenticated")
	return token, nil
}
