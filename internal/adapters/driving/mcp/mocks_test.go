package mcp

import (
	"context"
	"fmt"

	"github.com/custodia-labs/speakmath/internal/core/domain"
)

// mockConversionService is a mock implementation of driving.ConversionService.
type mockConversionService struct {
	result  *domain.ProcessingResult
	err     error
	rules   map[string][]domain.RuleInfo
	lastOpt domain.ConvertOptions
	calls   int
}

func (m *mockConversionService) Convert(
	_ context.Context,
	text string,
	opts domain.ConvertOptions,
) (*domain.ProcessingResult, error) {
	m.calls++
	m.lastOpt = opts
	if m.err != nil {
		return nil, m.err
	}
	if m.result != nil {
		return m.result, nil
	}
	return &domain.ProcessingResult{Input: text, Output: text, Status: domain.StatusConverged}, nil
}

func (m *mockConversionService) Domains() []string {
	return []string{domain.DomainGeneral, domain.LayerCalculus}
}

func (m *mockConversionService) Rules(layer string) ([]domain.RuleInfo, error) {
	if layer == "" {
		var all []domain.RuleInfo
		for _, rs := range m.rules {
			all = append(all, rs...)
		}
		return all, nil
	}
	rs, ok := m.rules[layer]
	if !ok {
		return nil, fmt.Errorf("layer %q: %w", layer, domain.ErrNotFound)
	}
	return rs, nil
}

func (m *mockConversionService) CacheStats() domain.CacheStats {
	return domain.CacheStats{}
}

// mockBatchService is a mock implementation of driving.BatchService.
type mockBatchService struct {
	err error
}

func (m *mockBatchService) ConvertAll(
	_ context.Context,
	inputs []string,
	_ domain.ConvertOptions,
) ([]*domain.ProcessingResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]*domain.ProcessingResult, len(inputs))
	for i, in := range inputs {
		out[i] = &domain.ProcessingResult{Input: in, Output: "said " + in, Status: domain.StatusConverged}
	}
	return out, nil
}

// mockTokenService is a mock implementation of driving.TokenService.
type mockTokenService struct {
	records []domain.TokenRecord
	err     error
}

func (m *mockTokenService) Record(_ context.Context, _ *domain.ProcessingResult) error {
	return m.err
}

func (m *mockTokenService) List(_ context.Context, _ int) ([]domain.TokenRecord, error) {
	return m.records, m.err
}

func (m *mockTokenService) Get(_ context.Context, _ string) (*domain.TokenRecord, error) {
	return nil, domain.ErrNotFound
}

func (m *mockTokenService) Clear(_ context.Context) error {
	return m.err
}
