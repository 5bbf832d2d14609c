package driving

import (
	"context"

	"github.com/custodia-labs/lexsearch-cli/internal/core/domain"
)

// SearchService provides retrieval over indexed statute chunks.
type SearchService interface {
	// Search embeds the query and returns the nearest chunks, ranked by
	// ascending distance, restricted by any filters in opts.
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error)
}

// AdminService exposes administrative operations over the index.
type AdminService interface {
	// DeleteByDocument removes every chunk belonging to the named document.
	DeleteByDocument(ctx context.Context, docName string) error

	// Stats reports aggregate index statistics.
	Stats(ctx context.Context) (domain.IndexStats, error)
}
