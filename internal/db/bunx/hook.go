package bunx

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"

	"github.com/terraconstructs/articles/internal/logging"
)

// QueryLogHook logs every query at debug level and failed queries at warn.
// sql.ErrNoRows is not treated as a failure.
type QueryLogHook struct{}

var _ bun.QueryHook = (*QueryLogHook)(nil)

func (h *QueryLogHook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (h *QueryLogHook) AfterQuery(ctx context.Context, event *bun.QueryEvent) {
	elapsed := time.Since(event.StartTime)
	if event.Err != nil && !isNoRows(event.Err) {
		logging.Ctx(ctx).Warn().
			Err(event.Err).
			Str("operation", event.Operation()).
			Dur("elapsed", elapsed).
			Msg("query failed")
		return
	}
	logging.Ctx(ctx).Debug().
		Str("operation", event.Operation()).
		Str("query", event.Query).
		Dur("elapsed", elapsed).
		Msg("query")
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
