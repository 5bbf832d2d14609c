package driven

import (
	"context"
	"errors"
)

// Device selects the compute device an embedding backend runs on.
type Device string

// Compute devices. Backends that have no device concept ignore the value.
const (
	// DeviceGPU is the default, faster device.
	DeviceGPU Device = "gpu"

	// DeviceCPU is the slower fallback with larger memory headroom.
	DeviceCPU Device = "cpu"
)

// ErrOutOfMemory indicates the embedding backend failed under memory
// pressure. Backends map their provider-specific errors onto this sentinel
// so the batch processor can react uniformly (errors.Is).
var ErrOutOfMemory = errors.New("embedding backend out of memory")

// EmbeddingBackend generates vector embeddings from text.
//
// Implementations may include:
//   - Ollama (nomic-embed-text and similar local models)
//   - OpenAI (text-embedding-3-small, text-embedding-3-large)
//
// Batch sizing and device fallback decisions belong to the embedder package,
// not to backends; a backend only executes one batch on one device.
type EmbeddingBackend interface {
	// EmbedBatch generates one embedding per input text, in input order,
	// on the given device. A memory-pressure failure is reported as an
	// error wrapping ErrOutOfMemory.
	EmbedBatch(ctx context.Context, texts []string, device Device) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g. 768, 1536).
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the backend is reachable with a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
