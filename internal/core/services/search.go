package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/lexsearch-cli/internal/core/domain"
	"github.com/custodia-labs/lexsearch-cli/internal/core/ports/driven"
	"github.com/custodia-labs/lexsearch-cli/internal/core/ports/driving"
	"github.com/custodia-labs/lexsearch-cli/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// DefaultTopK is the result count when the caller does not specify one.
const DefaultTopK = 5

// SearchService answers retrieval queries over the vector index.
type SearchService struct {
	backend driven.EmbeddingBackend
	index   driven.VectorIndex
}

// NewSearchService creates a search service.
func NewSearchService(backend driven.EmbeddingBackend, index driven.VectorIndex) *SearchService {
	return &SearchService{
		backend: backend,
		index:   index,
	}
}

// Search embeds the query and returns the nearest chunks by ascending
// distance, restricted by any filters in opts.
func (s *SearchService) Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error) {
	if s.index == nil {
		return nil, domain.ErrVectorIndexUnavailable
	}
	if s.backend == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.SearchResult{}, nil
	}

	topK := opts.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}

	logger.Section("Search")
	logger.Debug("query %q (top_k=%d, doc_type=%q, status=%q)", query, topK, opts.DocType, opts.Status)

	vectors, err := s.backend.EmbedBatch(ctx, []string{query}, driven.DeviceGPU)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("embed query: got %d vectors", len(vectors))
	}

	filters := make(map[string]string)
	if opts.DocType != "" {
		filters["doc_type"] = string(opts.DocType)
	}
	if opts.Status != "" {
		filters["status"] = string(opts.Status)
	}

	hits, err := s.index.Search(ctx, vectors[0], topK, filters)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}
	logger.Debug("%d hits", len(hits))

	results := make([]domain.SearchResult, len(hits))
	for i, hit := range hits {
		results[i] = domain.SearchResult{
			ID:       hit.ID,
			Text:     hit.Text,
			Metadata: metadataFromFlat(hit.Metadata),
			Distance: hit.Distance,
		}
	}
	return results, nil
}

// metadataFromFlat rebuilds chunk metadata from its flattened form.
func metadataFromFlat(m map[string]string) domain.ChunkMetadata {
	return domain.ChunkMetadata{
		DocName:       m["doc_name"],
		DocType:       domain.DocumentType(m["doc_type"]),
		SourceID:      m["source_id"],
		Chapter:       m["chapter"],
		Article:       m["article"],
		ArticleTitle:  m["article_title"],
		Clause:        m["clause"],
		Point:         m["point"],
		Status:        domain.DocumentStatus(m["status"]),
		EffectiveDate: m["effective_date"],
		Keywords:      m["keywords"],
	}
}
