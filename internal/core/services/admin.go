package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/lexsearch-cli/internal/core/domain"
	"github.com/custodia-labs/lexsearch-cli/internal/core/ports/driven"
	"github.com/custodia-labs/lexsearch-cli/internal/core/ports/driving"
	"github.com/custodia-labs/lexsearch-cli/internal/logger"
)

// Ensure AdminService implements the interface.
var _ driving.AdminService = (*AdminService)(nil)

// AdminService exposes administrative operations over the index.
type AdminService struct {
	index    driven.VectorIndex
	registry driven.DocumentRegistry
}

// NewAdminService creates an admin service. registry may be nil.
func NewAdminService(index driven.VectorIndex, registry driven.DocumentRegistry) *AdminService {
	return &AdminService{
		index:    index,
		registry: registry,
	}
}

// DeleteByDocument removes every chunk belonging to the named document,
// plus its registry record.
func (s *AdminService) DeleteByDocument(ctx context.Context, docName string) error {
	if s.index == nil {
		return domain.ErrVectorIndexUnavailable
	}

	logger.Info("deleting chunks for %q", docName)
	if err := s.index.DeleteByDocument(ctx, docName); err != nil {
		return fmt.Errorf("delete chunks: %w", err)
	}

	if s.registry != nil {
		if err := s.registry.Delete(ctx, docName); err != nil && !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("delete registry record: %w", err)
		}
	}
	return nil
}

// Stats reports aggregate index statistics with per-document detail when
// a registry is configured.
func (s *AdminService) Stats(ctx context.Context) (domain.IndexStats, error) {
	var stats domain.IndexStats
	if s.index == nil {
		return stats, domain.ErrVectorIndexUnavailable
	}

	indexStats, err := s.index.Stats(ctx)
	if err != nil {
		return stats, fmt.Errorf("index stats: %w", err)
	}
	stats.TotalChunks = indexStats.TotalChunks

	if s.registry != nil {
		docs, err := s.registry.List(ctx)
		if err != nil {
			return stats, fmt.Errorf("list documents: %w", err)
		}
		stats.Documents = docs
	}
	return stats, nil
}
