package driven

import (
	"context"

	"github.com/custodia-labs/lexsearch-cli/internal/core/domain"
)

// IndexEntry is the persisted form of a chunk inside the vector index:
// id, vector, original text, and flattened scalar metadata.
type IndexEntry struct {
	// ID is the chunk id. Upserts are idempotent by this key.
	ID string

	// Vector is the embedding.
	Vector []float32

	// Text is the original display text.
	Text string

	// Metadata is the flattened scalar metadata. Collection-valued fields
	// are joined into delimiter-separated strings before they reach here.
	Metadata map[string]string
}

// Hit is a similarity search result.
type Hit struct {
	// ID is the matched chunk id.
	ID string

	// Text is the chunk's original text.
	Text string

	// Metadata is the flattened metadata stored with the chunk.
	Metadata map[string]string

	// Distance is the cosine distance to the query. Lower is closer.
	Distance float64
}

// Stats reports aggregate index state.
type Stats struct {
	// TotalChunks is the number of entries in the index.
	TotalChunks int

	// Documents maps document name to its chunk count.
	Documents map[string]int
}

// VectorIndex persists chunk vectors with flattened metadata and answers
// top-k nearest-neighbour queries.
type VectorIndex interface {
	// Upsert inserts or replaces entries by id. Idempotent: upserting the
	// same entry twice leaves one copy.
	Upsert(ctx context.Context, entries []IndexEntry) error

	// Search returns up to k entries ordered by ascending distance.
	// filters restricts results to exact-match metadata fields.
	Search(ctx context.Context, vector []float32, k int, filters map[string]string) ([]Hit, error)

	// DeleteByDocument removes every entry whose doc_name metadata matches.
	// Used for re-ingestion.
	DeleteByDocument(ctx context.Context, docName string) error

	// Stats returns aggregate index statistics.
	Stats(ctx context.Context) (Stats, error)

	// Close releases resources.
	Close() error
}

// DocumentRegistry persists resolved document identities so administrative
// commands can report per-document detail.
type DocumentRegistry interface {
	// Save stores or updates a document record.
	Save(ctx context.Context, doc domain.Document) error

	// Get retrieves a document by canonical name.
	Get(ctx context.Context, name string) (*domain.Document, error)

	// List returns all registered documents.
	List(ctx context.Context) ([]domain.Document, error)

	// Delete removes a document record by canonical name.
	Delete(ctx context.Context, name string) error
}
