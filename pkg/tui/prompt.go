package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// PromptModel reads a password without scoring it. Nothing typed here leaves
// the process until it is submitted.
type PromptModel struct {
	title     string
	input     textinput.Model
	submitted bool
}

// NewPromptModel creates a focused, masked prompt.
func NewPromptModel(title string) PromptModel {
	return PromptModel{
		title: title,
		input: newPasswordInput(),
	}
}

// Init starts the cursor blink.
func (m PromptModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles key presses.
func (m PromptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.Type {
		case tea.KeyEnter:
			m.submitted = true
			return m, tea.Quit
		case tea.KeyEsc, tea.KeyCtrlC:
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the title and the masked input.
func (m PromptModel) View() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(m.title))
	sb.WriteString("\n\n")
	sb.WriteString(m.input.View())
	sb.WriteString("\n\n")
	sb.WriteString(mutedStyle.Render("enter: confirmar • esc: sair"))
	sb.WriteString("\n")
	return sb.String()
}

// Password returns the typed value and whether it was submitted.
func (m PromptModel) Password() (string, bool) {
	return m.input.Value(), m.submitted
}

// RunPrompt asks for a password on the terminal and returns it once submitted.
func RunPrompt(ctx context.Context, title string) (string, error) {
	final, err := tea.NewProgram(NewPromptModel(title), tea.WithContext(ctx)).Run()
	if err != nil {
		return "", fmt.Errorf("running prompt: %w", err)
	}

	m, ok := final.(PromptModel)
	if !ok {
		return "", fmt.Errorf("unexpected model type: %T", final)
	}

	pw, submitted := m.Password()
	if !submitted {
		return "", ErrAborted
	}
	return pw, nil
}
