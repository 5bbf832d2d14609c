// Package embedder runs chunk texts through an embedding backend in
// memory-adaptive batches. Batch size shrinks under memory pressure,
// processing falls back to the CPU when the GPU cannot recover, and the
// batch size grows back gradually once the backend is stable.
package embedder

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/lexsearch-cli/internal/core/domain"
	"github.com/custodia-labs/lexsearch-cli/internal/core/ports/driven"
	"github.com/custodia-labs/lexsearch-cli/internal/logger"
)

// DefaultBatchSize is the starting and ceiling batch size.
const DefaultBatchSize = 32

// maxFailuresAtMinimum is how many consecutive size-1 failures are
// tolerated before switching to the fallback device.
const maxFailuresAtMinimum = 3

// BatchController is the explicit adaptive state of one processing run:
// current size, device, and failure count. It is a passed-around value,
// not module state, so concurrent ingestion runs keep independent backoff
// state.
type BatchController struct {
	// Size is the current batch size.
	Size int

	// Ceiling is the size the controller grows back toward after recovery.
	Ceiling int

	// Device is the compute device batches run on.
	Device driven.Device

	// FailuresAtMin counts consecutive failures at batch size 1.
	FailuresAtMin int
}

// NewBatchController returns a controller starting on the GPU at the given
// batch size.
func NewBatchController(size int) BatchController {
	if size <= 0 {
		size = DefaultBatchSize
	}
	return BatchController{
		Size:    size,
		Ceiling: size,
		Device:  driven.DeviceGPU,
	}
}

// shrink halves the batch size (minimum 1) after a memory failure.
func (c *BatchController) shrink() {
	if c.Size > 1 {
		c.Size /= 2
		return
	}
	c.FailuresAtMin++
}

// fallBack switches to the CPU and resets to a moderate batch size.
func (c *BatchController) fallBack() {
	c.Device = driven.DeviceCPU
	c.Size = c.Ceiling / 4
	if c.Size < 1 {
		c.Size = 1
	}
	c.FailuresAtMin = 0
}

// grow steps the batch size back toward the ceiling after a success.
// Gradual regrowth avoids oscillating straight back into failure.
func (c *BatchController) grow() {
	c.FailuresAtMin = 0
	if c.Size >= c.Ceiling {
		return
	}
	step := c.Ceiling / 8
	if step < 1 {
		step = 1
	}
	c.Size += step
	if c.Size > c.Ceiling {
		c.Size = c.Ceiling
	}
}

// Processor embeds texts batch by batch. Batches run strictly
// sequentially: sizing and device decisions depend on the previous
// batch's outcome.
type Processor struct {
	backend driven.EmbeddingBackend
	limiter *rate.Limiter
	start   int
}

// Option configures the processor.
type Option func(*Processor)

// WithBatchSize sets the starting batch size and ceiling.
func WithBatchSize(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.start = n
		}
	}
}

// WithRateLimit caps backend requests per second. Zero disables limiting.
func WithRateLimit(perSecond float64) Option {
	return func(p *Processor) {
		if perSecond > 0 {
			p.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

// New creates a processor over the given backend.
func New(backend driven.EmbeddingBackend, opts ...Option) *Processor {
	p := &Processor{
		backend: backend,
		start:   DefaultBatchSize,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process returns one embedding per input text, in input order, with no
// text skipped. On memory exhaustion the same unprocessed span is retried
// at smaller sizes without advancing the cursor; exhausting both reduction
// and device fallback aborts with domain.ErrResourceExhausted.
func (p *Processor) Process(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	ctrl := NewBatchController(p.start)
	vectors := make([][]float32, 0, len(texts))
	cursor := 0

	for cursor < len(texts) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if p.limiter != nil {
			if err := p.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		end := cursor + ctrl.Size
		if end > len(texts) {
			end = len(texts)
		}

		batch, err := p.backend.EmbedBatch(ctx, texts[cursor:end], ctrl.Device)
		if err == nil {
			if len(batch) != end-cursor {
				return nil, fmt.Errorf("backend returned %d vectors for %d texts", len(batch), end-cursor)
			}
			vectors = append(vectors, batch...)
			cursor = end
			ctrl.grow()
			continue
		}

		if !errors.Is(err, driven.ErrOutOfMemory) {
			return nil, fmt.Errorf("embed batch at %d: %w", cursor, err)
		}

		if ctrl.Device == driven.DeviceCPU && ctrl.Size == 1 {
			// Nothing left to reduce: this is a resource problem outside
			// the pipeline's control.
			return nil, fmt.Errorf("batch of 1 failed on %s at text %d/%d: %w",
				ctrl.Device, cursor, len(texts), domain.ErrResourceExhausted)
		}

		logger.Warn("embedding batch failed under memory pressure (size=%d, device=%s)", ctrl.Size, ctrl.Device)
		ctrl.shrink()

		if ctrl.FailuresAtMin >= maxFailuresAtMinimum && ctrl.Device == driven.DeviceGPU {
			logger.Warn("falling back to %s after %d failures at batch size 1", driven.DeviceCPU, ctrl.FailuresAtMin)
			ctrl.fallBack()
		}
	}

	return vectors, nil
}
