package settings

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/speakmath/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/speakmath/internal/core/domain"
)

type mockSettingsService struct {
	entries []domain.SettingEntry
	err     error
	setErr  error

	setKey   string
	setValue string
}

func (m *mockSettingsService) Get() (*domain.Settings, error) {
	s := domain.DefaultSettings()
	return &s, m.err
}

func (m *mockSettingsService) Save(*domain.Settings) error { return nil }

func (m *mockSettingsService) Set(key, value string) error {
	m.setKey = key
	m.setValue = value
	if m.setErr != nil {
		return m.setErr
	}
	for i := range m.entries {
		if m.entries[i].Key == key {
			m.entries[i].Value = value
		}
	}
	return nil
}

func (m *mockSettingsService) Entries() ([]domain.SettingEntry, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]domain.SettingEntry, len(m.entries))
	copy(out, m.entries)
	return out, nil
}

func (m *mockSettingsService) Keys() []string {
	keys := make([]string, len(m.entries))
	for i, e := range m.entries {
		keys[i] = e.Key
	}
	return keys
}

func (m *mockSettingsService) GetDefaults() domain.Settings { return domain.DefaultSettings() }

func newMock() *mockSettingsService {
	return &mockSettingsService{entries: []domain.SettingEntry{
		{Key: "cache.capacity", Value: "1024"},
		{Key: "engine.max_passes", Value: "64"},
		{Key: "rules.pack", Value: ""},
	}}
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func loaded(t *testing.T, svc *mockSettingsService) *View {
	t.Helper()
	v := NewView(nil, svc)
	cmd := v.Init()
	require.NotNil(t, cmd)
	v, _ = v.Update(cmd())
	return v
}

func TestView_LoadsEntries(t *testing.T) {
	v := loaded(t, newMock())

	require.NoError(t, v.Err())
	out := v.View()
	assert.Contains(t, out, "cache.capacity")
	assert.Contains(t, out, "1024")
	assert.Contains(t, out, "(not set)")
	assert.Contains(t, out, "[enter] edit")

	entry, ok := v.SelectedEntry()
	require.True(t, ok)
	assert.Equal(t, "cache.capacity", entry.Key)
}

func TestView_LoadingState(t *testing.T) {
	v := NewView(nil, newMock())
	v.Init()

	assert.Contains(t, v.View(), "Loading settings...")
}

func TestView_NilService(t *testing.T) {
	v := NewView(nil, nil)
	v, _ = v.Update(v.Init()())

	assert.ErrorIs(t, v.Err(), ErrNoSettingsService)
	assert.Contains(t, v.View(), "Error: settings service not available")
}

func TestView_LoadError(t *testing.T) {
	svc := newMock()
	svc.err = errors.New("bad config")
	v := loaded(t, svc)

	assert.EqualError(t, v.Err(), "bad config")
}

func TestView_Navigation(t *testing.T) {
	v := loaded(t, newMock())

	v, _ = v.Update(keyRunes("j"))
	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyDown})
	v, _ = v.Update(keyRunes("j"))
	entry, _ := v.SelectedEntry()
	assert.Equal(t, "rules.pack", entry.Key, "stops at last entry")

	v, _ = v.Update(keyRunes("k"))
	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyUp})
	v, _ = v.Update(keyRunes("k"))
	entry, _ = v.SelectedEntry()
	assert.Equal(t, "cache.capacity", entry.Key, "stops at first entry")
}

func TestView_EditAndSave(t *testing.T) {
	svc := newMock()
	v := loaded(t, svc)

	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.True(t, v.Editing())
	assert.Equal(t, "1024", v.EditValue())
	assert.Contains(t, v.View(), "[esc] cancel")

	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	v, _ = v.Update(keyRunes("48"))
	assert.Equal(t, "1048", v.EditValue())

	v, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, v.Editing())
	require.NotNil(t, cmd)

	msg := cmd()
	saved, ok := msg.(messages.SettingsSaved)
	require.True(t, ok)
	assert.Equal(t, "cache.capacity", saved.Key)
	assert.NoError(t, saved.Err)
	assert.Equal(t, "1048", svc.setValue)

	v, cmd = v.Update(saved)
	require.NotNil(t, cmd, "reloads after save")
	v, _ = v.Update(cmd())

	out := v.View()
	assert.Contains(t, out, "Saved cache.capacity")
	assert.Contains(t, out, "1048")
}

func TestView_SaveError(t *testing.T) {
	svc := newMock()
	svc.setErr = domain.ErrInvalidInput
	v := loaded(t, svc)

	v, _ = v.Update(keyRunes("e"))
	v, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	v, cmd = v.Update(cmd())
	assert.Nil(t, cmd)
	assert.ErrorIs(t, v.Err(), domain.ErrInvalidInput)
	assert.NotContains(t, v.View(), "Saved")
}

func TestView_EscCancelsEdit(t *testing.T) {
	svc := newMock()
	v := loaded(t, svc)

	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.True(t, v.Editing())

	v, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, v.Editing())
	assert.Nil(t, cmd)
	assert.Empty(t, svc.setKey)
}

func TestView_EscReturnsToMenu(t *testing.T) {
	v := loaded(t, newMock())

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewMenu}, cmd())
}

func TestView_EnterWithNoEntries(t *testing.T) {
	v := loaded(t, &mockSettingsService{})

	v, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, v.Editing())
	assert.Nil(t, cmd)
}

func TestView_WindowSize(t *testing.T) {
	v := loaded(t, newMock())

	v, cmd := v.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	assert.Nil(t, cmd)
	assert.Equal(t, 100, v.width)
	assert.Equal(t, 30, v.height)
}
