package migrations

import (
	"context"
	"fmt"

	"github.com/terraconstructs/articles/internal/db/models"
	"github.com/terraconstructs/articles/internal/logging"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(up_20260301000000, down_20260301000000)
}

// up_20260301000000 creates users, articles, authorship and reviews.
func up_20260301000000(ctx context.Context, db *bun.DB) error {
	if IsSQLite(db) {
		if err := requireForeignKeys(ctx, db); err != nil {
			return err
		}
	}

	return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		logging.Debug().Str("table", "users").Msg("creating table")
		if _, err := tx.NewCreateTable().
			Model((*models.User)(nil)).
			IfNotExists().
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to create users table: %w", err)
		}

		logging.Debug().Str("table", "articles").Msg("creating table")
		if _, err := tx.NewCreateTable().
			Model((*models.Article)(nil)).
			IfNotExists().
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to create articles table: %w", err)
		}

		logging.Debug().Str("table", "authorship_of_articles").Msg("creating table")
		if _, err := tx.NewCreateTable().
			Model((*models.AuthorshipOfArticle)(nil)).
			IfNotExists().
			ForeignKey(`("article_id") REFERENCES "articles" ("id") ON DELETE CASCADE`).
			ForeignKey(`("author_id") REFERENCES "users" ("id") ON DELETE CASCADE`).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to create authorship_of_articles table: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`CREATE INDEX IF NOT EXISTS idx_authorship_author_id ON authorship_of_articles(author_id)`); err != nil {
			return fmt.Errorf("failed to create authorship author index: %w", err)
		}

		logging.Debug().Str("table", "reviews").Msg("creating table")
		if _, err := tx.NewCreateTable().
			Model((*models.Review)(nil)).
			IfNotExists().
			ForeignKey(`("article_id") REFERENCES "articles" ("id") ON DELETE CASCADE`).
			ForeignKey(`("author_id") REFERENCES "users" ("id") ON DELETE SET NULL`).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to create reviews table: %w", err)
		}
		for _, stmt := range []string{
			`CREATE INDEX IF NOT EXISTS idx_reviews_article_id ON reviews(article_id)`,
			`CREATE INDEX IF NOT EXISTS idx_reviews_author_id ON reviews(author_id)`,
		} {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("failed to create reviews index: %w", err)
			}
		}

		// SQLite cannot add constraints after the fact; the application
		// validates enum values on both dialects.
		if IsPostgreSQL(db) {
			for _, stmt := range []string{
				`ALTER TABLE users ADD CONSTRAINT chk_users_role CHECK (role IN ('ROLE_USER', 'ROLE_ADMIN'))`,
				`ALTER TABLE reviews ADD CONSTRAINT chk_reviews_type CHECK (type IN ('POSITIVE', 'NEGATIVE'))`,
			} {
				if _, err := tx.ExecContext(ctx, stmt); err != nil {
					return fmt.Errorf("failed to add check constraint: %w", err)
				}
			}
		}

		return nil
	})
}

// down_20260301000000 drops the schema in reverse dependency order.
func down_20260301000000(ctx context.Context, db *bun.DB) error {
	for _, model := range []any{
		(*models.Review)(nil),
		(*models.AuthorshipOfArticle)(nil),
		(*models.Article)(nil),
		(*models.User)(nil),
	} {
		if _, err := db.NewDropTable().Model(model).IfExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to drop table: %w", err)
		}
	}
	return nil
}
