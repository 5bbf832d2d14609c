package domain

import "time"

// DocumentType classifies a statute by its issuing instrument.
type DocumentType string

// Known document types, resolved from the source filename.
const (
	TypeLaw      DocumentType = "law"
	TypeDecree   DocumentType = "decree"
	TypeCircular DocumentType = "circular"
	TypeGeneric  DocumentType = "document"
)

// DocumentStatus tracks whether a statute is still in force.
type DocumentStatus string

// Document statuses.
const (
	StatusActive     DocumentStatus = "active"
	StatusSuperseded DocumentStatus = "superseded"
)

// Document represents one ingested source file.
// It is immutable after indexing; a re-ingestion deletes and rebuilds its chunks.
type Document struct {
	// Filename is the original source filename.
	Filename string

	// SourceID is the official identifier extracted from the filename
	// (e.g. a statute number such as "68/2014/QH13"). Empty when no
	// pattern matched.
	SourceID string

	// Type is the document classification (law, decree, circular, generic).
	Type DocumentType

	// Name is the canonical title. Never empty: resolved from the title
	// lookup asset or derived from the filename as a last resort, since an
	// empty title corrupts retrieval relevance for every chunk.
	Name string

	// EffectiveDate is when the statute takes effect, if known.
	EffectiveDate *time.Time

	// Status indicates whether the statute is active or superseded.
	Status DocumentStatus

	// IngestedAt is when this document was last indexed.
	IngestedAt time.Time

	// ChunkCount is the number of chunks produced by the last ingestion.
	ChunkCount int
}

// Chunk is the unit of retrieval: a span of statute text enriched with its
// full hierarchical context for embedding.
type Chunk struct {
	// ID is unique within a document and stable across identical re-ingestions.
	ID string

	// TextForEmbedding is the context-enriched text sent to the embedding
	// model. Hierarchical context (document name, chapter, article, clause,
	// point) precedes the raw content.
	TextForEmbedding string

	// OriginalText is the raw content span as it appears in the source.
	OriginalText string

	// Metadata carries the hierarchical position of this chunk.
	Metadata ChunkMetadata

	// Embedding is the vector representation, attached by the batch processor.
	Embedding []float32
}

// ChunkMetadata is the metadata persisted alongside each chunk.
// Every field is a scalar so index backends can store it as name/value pairs.
type ChunkMetadata struct {
	DocName       string         `json:"doc_name"`
	DocType       DocumentType   `json:"doc_type"`
	SourceID      string         `json:"source_id"`
	Chapter       string         `json:"chapter"`
	Article       string         `json:"article"`
	ArticleTitle  string         `json:"article_title"`
	Clause        string         `json:"clause"`
	Point         string         `json:"point"`
	Status        DocumentStatus `json:"status"`
	EffectiveDate string         `json:"effective_date,omitempty"`

	// Keywords is a "|"-joined list of extracted keywords.
	Keywords string `json:"keywords"`
}

// Flatten returns the metadata as scalar name/value pairs for index backends
// that only store flat metadata.
func (m ChunkMetadata) Flatten() map[string]string {
	return map[string]string{
		"doc_name":       m.DocName,
		"doc_type":       string(m.DocType),
		"source_id":      m.SourceID,
		"chapter":        m.Chapter,
		"article":        m.Article,
		"article_title":  m.ArticleTitle,
		"clause":         m.Clause,
		"point":          m.Point,
		"status":         string(m.Status),
		"effective_date": m.EffectiveDate,
		"keywords":       m.Keywords,
	}
}
