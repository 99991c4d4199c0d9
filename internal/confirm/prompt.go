// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package confirm

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#f6be00"))
	hintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#00c8f0"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff5f5f"))
)

const choiceHint = "[Y] Yes  [A] Yes to All  [N] No  [L] No to All (default is \"Y\")"

// ParseChoice maps a typed answer to a Choice. An empty answer means Yes.
func ParseChoice(s string) (Choice, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "y", "yes":
		return Yes, true
	case "a", "all":
		return YesToAll, true
	case "n", "no":
		return No, true
	case "l":
		return NoToAll, true
	}
	return No, false
}

// TeaPrompter prompts on a terminal with a small bubbletea program.
type TeaPrompter struct {
	In  io.Reader
	Out io.Writer
}

// NewTeaPrompter returns a prompter on stdin/stderr, and whether stdin is a
// terminal that can answer it.
func NewTeaPrompter() (*TeaPrompter, bool) {
	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	return &TeaPrompter{In: os.Stdin, Out: os.Stderr}, interactive
}

func (p *TeaPrompter) Confirm(ctx context.Context, action, target string, impact Impact) (Choice, error) {
	prog := tea.NewProgram(
		newPromptModel(action, target, impact),
		tea.WithContext(ctx),
		tea.WithInput(p.In),
		tea.WithOutput(p.Out),
	)

	final, err := prog.Run()
	if err != nil {
		return No, fmt.Errorf("confirmation prompt failed: %w", err)
	}

	m, ok := final.(promptModel)
	if !ok || !m.done {
		return No, nil
	}
	return m.choice, nil
}

type promptModel struct {
	input    textinput.Model
	question string
	choice   Choice
	done     bool
	invalid  string
}

func newPromptModel(action, target string, impact Impact) promptModel {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 8
	ti.Focus()

	q := fmt.Sprintf("Performing %q on %q (impact: %s). Continue?", action, target, impact)
	if target == "" {
		q = fmt.Sprintf("Performing %q (impact: %s). Continue?", action, impact)
	}

	return promptModel{input: ti, question: q}
}

func (m promptModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m promptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.choice = No
			m.done = true
			return m, tea.Quit
		case tea.KeyEnter:
			c, valid := ParseChoice(m.input.Value())
			if !valid {
				m.invalid = fmt.Sprintf("%q is not a valid answer", m.input.Value())
				m.input.SetValue("")
				return m, nil
			}
			m.choice = c
			m.done = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m promptModel) View() string {
	if m.done {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Confirm"))
	b.WriteString("\n")
	b.WriteString(m.question)
	b.WriteString("\n")
	b.WriteString(hintStyle.Render(choiceHint))
	b.WriteString("\n")
	if m.invalid != "" {
		b.WriteString(errStyle.Render(m.invalid))
		b.WriteString("\n")
	}
	b.WriteString(m.input.View())
	b.WriteString("\n")
	return b.String()
}
