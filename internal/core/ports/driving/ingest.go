package driving

import (
	"context"

	"github.com/custodia-labs/lexsearch-cli/internal/core/domain"
)

// IngestService drives the segmentation, chunking, embedding, and indexing
// pipeline for one document at a time.
type IngestService interface {
	// Ingest runs the full pipeline for one extracted document.
	// rawText is assumed already extracted from its source binary format.
	// Returns domain.ErrUnprocessable when the text is implausibly sparse.
	Ingest(ctx context.Context, rawText, filename string) (*domain.IngestReport, error)
}
