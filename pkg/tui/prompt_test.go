package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromptModel_Submit(t *testing.T) {
	m := NewPromptModel("Senha")
	assert.Contains(t, m.View(), "Senha")

	next := typeText(m, "segredo")
	view := next.View()
	assert.NotContains(t, view, "segredo")
	assert.NotContains(t, view, "%")

	next, cmd := next.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	pw, ok := next.(PromptModel).Password()
	assert.True(t, ok)
	assert.Equal(t, "segredo", pw)
}

func TestPromptModel_Abort(t *testing.T) {
	next := typeText(NewPromptModel("Senha"), "abc")
	next, cmd := next.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)

	_, ok := next.(PromptModel).Password()
	assert.False(t, ok)
}
