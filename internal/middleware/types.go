package middleware

import (
	"context"

	"github.com/terraconstructs/articles/internal/auth"
	"github.com/terraconstructs/articles/internal/db/models"
)

// TokenVerifier decodes and validates a bearer token.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// UserDirectory answers whether the subject of a token still exists.
type UserDirectory interface {
	ExistsByUsername(ctx context.Context, username string) (bool, error)
}

// AuthorshipLookup returns the current authors of an article.
type AuthorshipLookup interface {
	AuthorIDs(ctx context.Context, articleID int64) ([]int64, error)
}

// ReviewLookup returns a review by id. A missing review is reported with
// repository.ErrNotFound.
type ReviewLookup interface {
	Get(ctx context.Context, id int64) (*models.Review, error)
}

// GateRecorder receives one call per gate decision. Optional.
type GateRecorder interface {
	RecordGateDecision(gate, outcome string)
}

// Dependencies bundles the collaborators of the authorization pipeline.
type Dependencies struct {
	Verifier   TokenVerifier
	Users      UserDirectory
	Authorship AuthorshipLookup
	Reviews    ReviewLookup
	Respond    auth.ErrorResponder
	Metrics    GateRecorder
}

func (d Dependencies) record(gate, outcome string) {
	if d.Metrics != nil {
		d.Metrics.RecordGateDecision(gate, outcome)
	}
}
