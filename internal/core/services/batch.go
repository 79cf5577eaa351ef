package services

import (
	"context"
	"fmt"
	"runtime"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/speakmath/internal/core/domain"
	"github.com/custodia-labs/speakmath/internal/core/ports/driving"
	"github.com/custodia-labs/speakmath/internal/logger"
)

// Ensure BatchService implements the interface.
var _ driving.BatchService = (*BatchService)(nil)

// BatchService converts many inputs with bounded concurrency.
type BatchService struct {
	conversion driving.ConversionService
	limit      int
}

// NewBatchService creates a batch service running at most limit
// conversions at once. A limit below 1 uses GOMAXPROCS.
func NewBatchService(conversion driving.ConversionService, limit int) *BatchService {
	if limit < 1 {
		limit = runtime.GOMAXPROCS(0)
	}
	return &BatchService{
		conversion: conversion,
		limit:      limit,
	}
}

// ConvertAll converts every input and returns results in input order. It
// fails as a whole only when the options are invalid or ctx is cancelled
// before every input has started.
func (s *BatchService) ConvertAll(
	ctx context.Context,
	inputs []string,
	opts domain.ConvertOptions,
) ([]*domain.ProcessingResult, error) {
	runID := uuid.New().String()
	logger.Section("Batch " + runID)
	logger.Debug("converting %d inputs, %d at a time", len(inputs), s.limit)

	results := make([]*domain.ProcessingResult, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.limit)

	for i, input := range inputs {
		if err := gctx.Err(); err != nil {
			break
		}
		g.Go(func() error {
			res, err := s.conversion.Convert(gctx, input, opts)
			if err != nil {
				return fmt.Errorf("input %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("batch %s: %w", runID, err)
	}
	return results, nil
}
