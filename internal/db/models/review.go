package models

import (
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// ReviewType classifies a review.
type ReviewType string

const (
	ReviewTypePositive ReviewType = "POSITIVE"
	ReviewTypeNegative ReviewType = "NEGATIVE"
)

// ParseReviewType converts a type name into a ReviewType.
func ParseReviewType(name string) (ReviewType, error) {
	switch t := ReviewType(name); t {
	case ReviewTypePositive, ReviewTypeNegative:
		return t, nil
	default:
		return "", fmt.Errorf("unknown review type %q", name)
	}
}

// Review is a single author's verdict on an article.
// AuthorID is nil once the author's account has been deleted.
type Review struct {
	bun.BaseModel `bun:"table:reviews,alias:r"`

	ID             int64      `bun:"id,pk,autoincrement" json:"id"`
	Type           ReviewType `bun:"type,notnull" json:"type"`
	Content        string     `bun:"content,notnull" json:"content"`
	AuthorID       *int64     `bun:"author_id" json:"authorId"`
	ArticleID      int64      `bun:"article_id,notnull" json:"articleId"`
	DateOfCreation time.Time  `bun:"date_of_creation,notnull" json:"dateOfCreation"`
}

// OwnerIDs returns the review's author as a single-element owner set, or an
// empty set when the author no longer exists.
func (r *Review) OwnerIDs() []int64 {
	if r == nil || r.AuthorID == nil {
		return []int64{}
	}
	return []int64{*r.AuthorID}
}
