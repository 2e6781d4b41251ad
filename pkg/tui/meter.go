// Package tui provides the interactive password strength meter.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mchmarny/motorista/pkg/strength"
)

const (
	barWidth  = 40
	charLimit = 128
)

// ErrAborted is returned when the user leaves the meter without submitting.
var ErrAborted = errors.New("password entry aborted")

var (
	bandColors = map[strength.Band]lipgloss.Color{
		strength.BandError:   lipgloss.Color("#e53935"),
		strength.BandWarning: lipgloss.Color("#FFC107"),
		strength.BandInfo:    lipgloss.Color("#2196F3"),
		strength.BandSuccess: lipgloss.Color("#8BC34A"),
	}

	titleStyle = lipgloss.NewStyle().Bold(true)
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#9e9e9e"))
)

// newPasswordInput is a focused, masked text input.
func newPasswordInput() textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "senha"
	ti.EchoMode = textinput.EchoPassword
	ti.EchoCharacter = '•'
	ti.CharLimit = charLimit
	ti.Focus()
	return ti
}

// labelMsg tells the model the fetcher has a new label.
type labelMsg struct{}

// MeterModel is the bubbletea model of the meter.
type MeterModel struct {
	title     string
	input     textinput.Model
	bar       progress.Model
	fetcher   *strength.Fetcher
	label     string
	submitted bool
}

// NewMeterModel creates a focused, masked meter backed by the fetcher.
func NewMeterModel(title string, f *strength.Fetcher) MeterModel {
	ti := newPasswordInput()
	bar := progress.New(progress.WithoutPercentage(), progress.WithWidth(barWidth))

	return MeterModel{
		title:   title,
		input:   ti,
		bar:     bar,
		fetcher: f,
	}
}

// Init starts the cursor blink.
func (m MeterModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles key presses and label notifications.
func (m MeterModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case labelMsg:
		m.label = m.fetcher.Label()
		return m, nil
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyEnter:
			m.submitted = true
			m.fetcher.Close()
			return m, tea.Quit
		case tea.KeyEsc, tea.KeyCtrlC:
			m.fetcher.Close()
			return m, tea.Quit
		}
	}

	prev := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)

	if v := m.input.Value(); v != prev {
		m.fetcher.Update(v)
		if v == "" {
			m.label = ""
		}
	}
	return m, cmd
}

// Reading is the current meter state.
func (m MeterModel) Reading() strength.Reading {
	return strength.Read(m.input.Value(), m.label)
}

// View renders the input, the colored bar and the caption.
func (m MeterModel) View() string {
	r := m.Reading()
	color := bandColors[r.Band]
	m.bar.FullColor = string(color)

	var sb strings.Builder
	sb.WriteString(titleStyle.Render(m.title))
	sb.WriteString("\n\n")
	sb.WriteString(m.input.View())
	sb.WriteString("\n\n")
	sb.WriteString(m.bar.ViewAs(r.Fraction()))
	sb.WriteString(" ")
	sb.WriteString(lipgloss.NewStyle().Foreground(color).Render("Força da senha: " + r.Caption()))
	sb.WriteString("\n\n")
	sb.WriteString(mutedStyle.Render("enter: confirmar • esc: sair"))
	sb.WriteString("\n")
	return sb.String()
}

// Password returns the typed value and whether it was submitted.
func (m MeterModel) Password() (string, bool) {
	return m.input.Value(), m.submitted
}

// RunMeter runs the meter on the terminal and returns the submitted password.
// The fetcher is closed when the program exits, whatever the outcome.
func RunMeter(ctx context.Context, title string, checker strength.Checker, opts ...strength.FetcherOption) (string, error) {
	var p *tea.Program
	notify := strength.WithOnLabel(func(string) {
		// Send blocks until the event loop reads it, which may be running Update
		go p.Send(labelMsg{})
	})

	f := strength.NewFetcher(checker, append(opts, notify)...)
	defer f.Close()

	p = tea.NewProgram(NewMeterModel(title, f), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("running meter: %w", err)
	}

	m, ok := final.(MeterModel)
	if !ok {
		return "", fmt.Errorf("unexpected model type: %T", final)
	}

	pw, submitted := m.Password()
	if !submitted {
		return "", ErrAborted
	}
	return pw, nil
}
