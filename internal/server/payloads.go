package server

import (
	"github.com/terraconstructs/articles/internal/db/models"
	"github.com/terraconstructs/articles/internal/services/account"
	"github.com/terraconstructs/articles/internal/services/article"
	"github.com/terraconstructs/articles/internal/services/review"
)

// RegistrationPayload is the body of POST /api/registration.
type RegistrationPayload struct {
	Username string `json:"username" validate:"required,min=5,max=30"`
	Email    string `json:"email" validate:"required,min=5,max=50,email"`
	Password string `json:"password" validate:"required,min=5,max=50"`
}

func (p RegistrationPayload) toRegistration() account.Registration {
	return account.Registration{Username: p.Username, Email: p.Email, Password: p.Password}
}

// AuthRequest is the body of POST /api/auth.
type AuthRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse carries a freshly issued access token.
type AuthResponse struct {
	Token string `json:"token"`
}

// UserPayload is the body of admin create and account update.
type UserPayload struct {
	Username string `json:"username" validate:"required,min=5,max=30"`
	Email    string `json:"email" validate:"required,min=5,max=50,email"`
	Password string `json:"password" validate:"required,min=5,max=50"`
	Role     string `json:"role" validate:"required,oneof=ROLE_USER ROLE_ADMIN"`
}

func (p UserPayload) toInput() account.UserInput {
	return account.UserInput{
		Username: p.Username,
		Email:    p.Email,
		Password: p.Password,
		Role:     models.Role(p.Role),
	}
}

// NewArticlePayload is the body of POST /api/articles.
type NewArticlePayload struct {
	Topic     string  `json:"topic" validate:"required,min=1,max=50"`
	Content   string  `json:"content" validate:"required,min=1,max=150"`
	AuthorIDs []int64 `json:"authorIds" validate:"required,min=1,dive,gte=1"`
}

func (p NewArticlePayload) toDraft() article.Draft {
	return article.Draft{Topic: p.Topic, Content: p.Content, AuthorIDs: p.AuthorIDs}
}

// UpdateArticlePayload is the body of PATCH /api/articles/{id}.
type UpdateArticlePayload struct {
	Topic   string `json:"topic" validate:"required,min=1,max=50"`
	Content string `json:"content" validate:"required,min=1,max=150"`
}

func (p UpdateArticlePayload) toChanges() article.Changes {
	return article.Changes{Topic: p.Topic, Content: p.Content}
}

// ReviewPayload is the body of POST /api/reviews.
type ReviewPayload struct {
	Type      string `json:"type" validate:"required,oneof=POSITIVE NEGATIVE"`
	Content   string `json:"content" validate:"required,min=1,max=500"`
	AuthorID  int64  `json:"authorId" validate:"required,gte=1"`
	ArticleID int64  `json:"articleId" validate:"required,gte=1"`
}

func (p ReviewPayload) toDraft() review.Draft {
	return review.Draft{
		Type:      models.ReviewType(p.Type),
		Content:   p.Content,
		AuthorID:  p.AuthorID,
		ArticleID: p.ArticleID,
	}
}
