package crm

import (
	"context"

	"github.com/google/uuid"
	"github.com/melihub/backend/internal/domain/crm"
)

// SummaryCache holds the most recent derived customer aggregates per
// user. The persisted customer rows stay canonical; the cache only
// saves dashboards a full resync between writes.
type SummaryCache interface {
	// Put replaces the cached summaries for a user
	Put(ctx context.Context, userID uuid.UUID, summaries []crm.CustomerSummary) error

	// Get returns the cached summaries, ok=false on a miss
	Get(ctx context.Context, userID uuid.UUID) ([]crm.CustomerSummary, bool, error)
}
