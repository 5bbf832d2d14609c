package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/lexsearch-cli/internal/chunker"
	"github.com/custodia-labs/lexsearch-cli/internal/core/domain"
	"github.com/custodia-labs/lexsearch-cli/internal/core/ports/driven"
	"github.com/custodia-labs/lexsearch-cli/internal/core/ports/driving"
	"github.com/custodia-labs/lexsearch-cli/internal/embedder"
	"github.com/custodia-labs/lexsearch-cli/internal/logger"
	"github.com/custodia-labs/lexsearch-cli/internal/normaliser"
	"github.com/custodia-labs/lexsearch-cli/internal/segmenter"
	"github.com/custodia-labs/lexsearch-cli/internal/titles"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// Upsert batching defaults.
const (
	// DefaultUpsertBatchSize is the number of entries per index write.
	DefaultUpsertBatchSize = 64

	// upsertRetries is how many times a failing upsert batch is retried.
	upsertRetries = 3

	// upsertBackoff is the initial retry delay, doubled per attempt.
	upsertBackoff = 500 * time.Millisecond
)

// IngestService runs the segmentation, chunking, embedding, and indexing
// pipeline for one document at a time.
type IngestService struct {
	seg         *segmenter.Segmenter
	processor   *embedder.Processor
	index       driven.VectorIndex
	registry    driven.DocumentRegistry
	resolver    *titles.Resolver
	chunkerOpts []chunker.Option
	upsertBatch int
}

// IngestOption configures the ingest service.
type IngestOption func(*IngestService)

// WithChunkerOptions forwards threshold options to each run's chunk builder.
func WithChunkerOptions(opts ...chunker.Option) IngestOption {
	return func(s *IngestService) {
		s.chunkerOpts = opts
	}
}

// WithUpsertBatchSize sets the number of entries per index write.
func WithUpsertBatchSize(n int) IngestOption {
	return func(s *IngestService) {
		if n > 0 {
			s.upsertBatch = n
		}
	}
}

// WithRegistry sets the optional document registry. Without it, ingestion
// still works but administrative commands lose per-document detail.
func WithRegistry(registry driven.DocumentRegistry) IngestOption {
	return func(s *IngestService) {
		s.registry = registry
	}
}

// NewIngestService creates the ingestion pipeline service.
func NewIngestService(
	seg *segmenter.Segmenter,
	processor *embedder.Processor,
	index driven.VectorIndex,
	resolver *titles.Resolver,
	opts ...IngestOption,
) *IngestService {
	s := &IngestService{
		seg:         seg,
		processor:   processor,
		index:       index,
		resolver:    resolver,
		upsertBatch: DefaultUpsertBatchSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ingest runs the full pipeline for one extracted document.
func (s *IngestService) Ingest(ctx context.Context, rawText, filename string) (*domain.IngestReport, error) {
	if s.index == nil {
		return nil, domain.ErrVectorIndexUnavailable
	}
	if s.processor == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	runID := uuid.New().String()
	logger.Section("Ingest " + filename)
	logger.Debug("run %s", runID)

	text, err := normaliser.Normalise(rawText)
	if err != nil {
		return nil, fmt.Errorf("normalise %s: %w", filename, err)
	}

	doc := resolveIdentity(s.resolver, filename)
	doc.IngestedAt = time.Now().UTC()
	logger.Info("document %q (type=%s, source=%q)", doc.Name, doc.Type, doc.SourceID)

	chapters := s.seg.Segment(text)
	fallback := isStructuralFallback(chapters)
	if fallback {
		logger.Info("structural fallback for %q: whole-unit chunking", doc.Name)
	}

	builder := chunker.NewBuilder(s.seg, s.chunkerOpts...)
	chunks := builder.Build(doc, chapters)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("no chunks produced for %s: %w", filename, domain.ErrUnprocessable)
	}
	logger.Info("%d chunks", len(chunks))

	texts := make([]string, len(chunks))
	for i := range chunks {
		texts[i] = chunks[i].TextForEmbedding
	}

	vectors, err := s.processor.Process(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed %s: %w", filename, err)
	}
	for i := range chunks {
		chunks[i].Embedding = vectors[i]
	}

	if err := s.upsertAll(ctx, chunks); err != nil {
		return nil, fmt.Errorf("index %s: %w", filename, err)
	}

	doc.ChunkCount = len(chunks)
	if s.registry != nil {
		if err := s.registry.Save(ctx, doc); err != nil {
			return nil, fmt.Errorf("register %s: %w", filename, err)
		}
	}

	return &domain.IngestReport{
		RunID:              runID,
		Document:           doc,
		ChunkCount:         len(chunks),
		StructuralFallback: fallback,
	}, nil
}

// upsertAll writes chunks to the index in fixed-size batches, retrying
// each batch with backoff. A batch that exhausts its retries is reported
// with its chunk ids so ingestion can resume without re-processing the
// whole document.
func (s *IngestService) upsertAll(ctx context.Context, chunks []domain.Chunk) error {
	for start := 0; start < len(chunks); start += s.upsertBatch {
		end := start + s.upsertBatch
		if end > len(chunks) {
			end = len(chunks)
		}

		entries := make([]driven.IndexEntry, 0, end-start)
		for _, c := range chunks[start:end] {
			entries = append(entries, driven.IndexEntry{
				ID:       c.ID,
				Vector:   c.Embedding,
				Text:     c.OriginalText,
				Metadata: c.Metadata.Flatten(),
			})
		}

		if err := s.upsertWithRetry(ctx, entries); err != nil {
			return err
		}
	}
	return nil
}

// upsertWithRetry retries one batch with exponential backoff.
func (s *IngestService) upsertWithRetry(ctx context.Context, entries []driven.IndexEntry) error {
	delay := upsertBackoff
	var lastErr error

	for attempt := 0; attempt <= upsertRetries; attempt++ {
		if attempt > 0 {
			logger.Warn("retrying upsert batch (attempt %d/%d): %v", attempt, upsertRetries, lastErr)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}

		lastErr = s.index.Upsert(ctx, entries)
		if lastErr == nil {
			return nil
		}
	}

	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}
	return &domain.IndexWriteError{FailedIDs: ids, Err: lastErr}
}

// isStructuralFallback reports whether segmentation found no chapter or
// article markers at all.
func isStructuralFallback(chapters []domain.Chapter) bool {
	for _, ch := range chapters {
		if ch.Label != "" || len(ch.Articles) > 0 {
			return false
		}
	}
	return true
}
