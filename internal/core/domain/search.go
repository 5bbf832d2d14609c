package domain

// SearchOptions configures a retrieval query.
type SearchOptions struct {
	// TopK is the maximum number of results. Defaults to 5 when zero.
	TopK int

	// DocType restricts results to one document type when non-empty.
	DocType DocumentType

	// Status restricts results to one document status when non-empty.
	Status DocumentStatus
}

// SearchResult is a single retrieval hit.
type SearchResult struct {
	// ID is the matched chunk's id.
	ID string

	// Text is the chunk's original display text.
	Text string

	// Metadata is the chunk's hierarchical metadata.
	Metadata ChunkMetadata

	// Distance is the cosine distance to the query vector. Lower is closer.
	Distance float64
}

// IndexStats reports aggregate index state for administrative commands.
type IndexStats struct {
	// TotalChunks is the number of indexed chunks across all documents.
	TotalChunks int

	// Documents lists the registered documents with per-document detail.
	Documents []Document
}

// IngestReport summarizes one ingestion run.
type IngestReport struct {
	// RunID identifies this ingestion run in logs.
	RunID string

	// Document is the resolved document identity.
	Document Document

	// ChunkCount is the number of chunks indexed.
	ChunkCount int

	// StructuralFallback is true when no chapter or article markers were
	// recognized and the document degraded to whole-unit chunking.
	StructuralFallback bool
}
