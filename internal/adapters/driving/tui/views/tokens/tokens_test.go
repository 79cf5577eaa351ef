package tokens

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/speakmath/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/speakmath/internal/core/domain"
)

type mockTokenService struct {
	records []domain.TokenRecord
	err     error
	cleared bool
}

func (m *mockTokenService) Record(context.Context, *domain.ProcessingResult) error { return nil }

func (m *mockTokenService) List(context.Context, int) ([]domain.TokenRecord, error) {
	return m.records, m.err
}

func (m *mockTokenService) Get(context.Context, string) (*domain.TokenRecord, error) {
	return nil, domain.ErrNotFound
}

func (m *mockTokenService) Clear(context.Context) error {
	m.cleared = true
	m.records = nil
	return m.err
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func loaded(t *testing.T, svc *mockTokenService) *View {
	t.Helper()
	v := NewView(nil, svc)
	cmd := v.Init()
	require.NotNil(t, cmd)
	v, _ = v.Update(cmd())
	return v
}

func TestView_LoadsTokens(t *testing.T) {
	svc := &mockTokenService{records: []domain.TokenRecord{
		{Token: `\foo`, Count: 4, Sample: `\foo + 1`, Context: domain.DomainGeneral},
		{Token: `\bar`, Count: 1, Sample: `\bar`, Context: domain.LayerCalculus},
	}}
	v := loaded(t, svc)

	assert.NoError(t, v.Err())
	assert.Equal(t, 2, v.List().Count())
	out := v.View()
	assert.Contains(t, out, `\foo`)
	assert.Contains(t, out, `\foo + 1`)
	assert.Contains(t, out, "[c] clear")
}

func TestView_LoadingState(t *testing.T) {
	v := NewView(nil, &mockTokenService{})
	v.Init()

	assert.Contains(t, v.View(), "Loading tokens...")
}

func TestView_NilService(t *testing.T) {
	v := NewView(nil, nil)
	v, _ = v.Update(v.Init()())

	assert.ErrorIs(t, v.Err(), ErrNoTokenService)
	assert.Contains(t, v.View(), "Error: token log not available")
}

func TestView_ServiceError(t *testing.T) {
	v := loaded(t, &mockTokenService{err: errors.New("db locked")})

	require.Error(t, v.Err())
	assert.Contains(t, v.View(), "db locked")
}

func TestView_ClearRequiresConfirmation(t *testing.T) {
	svc := &mockTokenService{records: []domain.TokenRecord{{Token: `\foo`, Count: 1}}}
	v := loaded(t, svc)

	v, cmd := v.Update(keyRunes("c"))
	assert.Nil(t, cmd)
	assert.Contains(t, v.View(), "Clear the whole token log?")

	t.Run("any other key cancels", func(t *testing.T) {
		_, cmd := v.Update(keyRunes("n"))
		assert.Nil(t, cmd)
		assert.False(t, svc.cleared)
		assert.NotContains(t, v.View(), "Clear the whole token log?")
	})

	t.Run("y clears and reloads", func(t *testing.T) {
		v.Update(keyRunes("c"))
		_, cmd := v.Update(keyRunes("y"))
		require.NotNil(t, cmd)

		v, reload := v.Update(cmd())
		assert.True(t, svc.cleared)
		require.NotNil(t, reload)
		v.Update(reload())
		assert.Equal(t, 0, v.List().Count())
	})
}

func TestView_ClearIgnoredWhenEmpty(t *testing.T) {
	v := loaded(t, &mockTokenService{})

	v.Update(keyRunes("c"))
	assert.False(t, v.confirmClear)
}

func TestView_Keys(t *testing.T) {
	svc := &mockTokenService{records: []domain.TokenRecord{{Token: "a"}, {Token: "b"}}}
	v := loaded(t, svc)

	v.Update(keyRunes("j"))
	assert.Equal(t, 1, v.List().Selected())

	_, cmd := v.Update(keyRunes("r"))
	require.NotNil(t, cmd)
	assert.IsType(t, messages.TokensLoaded{}, cmd())

	_, cmd = v.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewMenu}, cmd())
}
