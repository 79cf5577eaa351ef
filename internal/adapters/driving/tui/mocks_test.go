package tui

import (
	"context"

	"github.com/custodia-labs/speakmath/internal/core/domain"
)

type mockConversionService struct {
	result *domain.ProcessingResult
	err    error
	calls  int
}

func (m *mockConversionService) Convert(
	_ context.Context, text string, opts domain.ConvertOptions,
) (*domain.ProcessingResult, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if m.result != nil {
		return m.result, nil
	}
	return &domain.ProcessingResult{
		Input:  text,
		Output: "spoken " + text,
		Status: domain.StatusConverged,
		Level:  opts.Level,
	}, nil
}

func (m *mockConversionService) Domains() []string {
	return []string{domain.DomainGeneral, domain.LayerCalculus}
}

func (m *mockConversionService) Rules(string) ([]domain.RuleInfo, error) { return nil, nil }

func (m *mockConversionService) CacheStats() domain.CacheStats { return domain.CacheStats{} }

type mockTokenService struct {
	records []domain.TokenRecord
}

func (m *mockTokenService) Record(context.Context, *domain.ProcessingResult) error { return nil }

func (m *mockTokenService) List(context.Context, int) ([]domain.TokenRecord, error) {
	return m.records, nil
}

func (m *mockTokenService) Get(context.Context, string) (*domain.TokenRecord, error) {
	return nil, domain.ErrNotFound
}

func (m *mockTokenService) Clear(context.Context) error {
	m.records = nil
	return nil
}

type mockSettingsService struct {
	entries []domain.SettingEntry
}

func (m *mockSettingsService) Get() (*domain.Settings, error) {
	s := domain.DefaultSettings()
	return &s, nil
}

func (m *mockSettingsService) Save(*domain.Settings) error { return nil }

func (m *mockSettingsService) Set(string, string) error { return nil }

func (m *mockSettingsService) Entries() ([]domain.SettingEntry, error) { return m.entries, nil }

func (m *mockSettingsService) Keys() []string { return nil }

func (m *mockSettingsService) GetDefaults() domain.Settings { return domain.DefaultSettings() }

type mockActionService struct {
	copied string
}

func (m *mockActionService) CopyToClipboard(_ context.Context, r *domain.ProcessingResult) error {
	m.copied = r.Output
	return nil
}
