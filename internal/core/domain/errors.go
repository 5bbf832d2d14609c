package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnprocessable indicates text extraction yielded no usable content,
	// typically a scanned image or corrupted file. The document is skipped;
	// other documents in a batch run continue.
	ErrUnprocessable = errors.New("unprocessable document")

	// ErrEmbeddingUnavailable indicates the embedding backend is not
	// configured or reachable. Ingestion and semantic search are disabled.
	ErrEmbeddingUnavailable = errors.New("embedding backend unavailable")

	// ErrVectorIndexUnavailable indicates the vector index is not configured.
	ErrVectorIndexUnavailable = errors.New("vector index unavailable")

	// ErrResourceExhausted indicates the embedding backend ran out of memory
	// even after batch reduction and device fallback. This points to a
	// resource problem outside the pipeline's control.
	ErrResourceExhausted = errors.New("embedding resources exhausted")
)

// IndexWriteError reports an upsert batch that exhausted its retries.
// FailedIDs lets the caller resume ingestion without re-processing the
// whole document.
type IndexWriteError struct {
	// FailedIDs are the chunk ids in the failing batch.
	FailedIDs []string

	// Err is the last underlying write error.
	Err error
}

func (e *IndexWriteError) Error() string {
	return fmt.Sprintf("index write failed for %d chunks: %v", len(e.FailedIDs), e.Err)
}

func (e *IndexWriteError) Unwrap() error {
	return e.Err
}
