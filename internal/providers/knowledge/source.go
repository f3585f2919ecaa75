// Package knowledge implements the retrieval gateways and the fusion
// merger that combines their results into one ranked list.
package knowledge

import (
	"context"

	"github.com/vetevidence/vetagent/internal/core"
)

// Source is one knowledge gateway. Search returns results in the
// gateway's own relevance order; scoring happens in the merger.
// Implementations must be safe for concurrent use.
type Source interface {
	Type() core.SourceType
	Search(ctx context.Context, query string, limit int) ([]core.KnowledgeItem, error)
}
