package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Article is a piece of content owned by one or more authors.
type Article struct {
	bun.BaseModel `bun:"table:articles,alias:a"`

	ID             int64     `bun:"id,pk,autoincrement" json:"id"`
	Topic          string    `bun:"topic,notnull" json:"topic"`
	Content        string    `bun:"content,notnull" json:"content"`
	DateOfCreation time.Time `bun:"date_of_creation,notnull" json:"dateOfCreation"`
}

// AuthorshipOfArticle links an article to one of its authors.
type AuthorshipOfArticle struct {
	bun.BaseModel `bun:"table:authorship_of_articles,alias:aa"`

	ArticleID int64 `bun:"article_id,pk"`
	AuthorID  int64 `bun:"author_id,pk"`
}
