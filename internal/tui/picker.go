// Package tui provides the interactive selection menu used when a command
// needs a config file or saved run and none was given on the command line.
package tui

import (
	"errors"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// ErrAborted is returned when the user cancels the selection.
var ErrAborted = errors.New("selection aborted")

// Item is one selectable entry.
type Item struct {
	Label  string
	Detail string
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	detailStyle   = lipgloss.NewStyle().Faint(true)
	helpStyle     = lipgloss.NewStyle().Faint(true).MarginTop(1)
)

type pickerModel struct {
	title    string
	items    []Item
	selected int
	done     bool
	aborted  bool
}

func (m pickerModel) Init() tea.Cmd { return nil }

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
	case "down", "j":
		if m.selected < len(m.items)-1 {
			m.selected++
		}
	case "enter":
		m.done = true
		return m, tea.Quit
	case "esc", "q", "ctrl+c":
		m.aborted = true
		return m, tea.Quit
	}
	return m, nil
}

func (m pickerModel) View() string {
	if m.done || m.aborted {
		return ""
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n\n")
	for i, item := range m.items {
		cursor := "  "
		label := item.Label
		if i == m.selected {
			cursor = "> "
			label = selectedStyle.Render(label)
		}
		b.WriteString(fmt.Sprintf("%s%s", cursor, label))
		if item.Detail != "" {
			b.WriteString("  " + detailStyle.Render(item.Detail))
		}
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("↑/↓ move · enter select · esc cancel"))
	b.WriteString("\n")
	return b.String()
}

// IsInteractive reports whether stdin and stdout are attached to a terminal.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// Pick shows the selection menu and returns the chosen index.
func Pick(title string, items []Item) (int, error) {
	if len(items) == 0 {
		return 0, errors.New("nothing to select from")
	}
	p := tea.NewProgram(pickerModel{title: title, items: items})
	final, err := p.Run()
	if err != nil {
		return 0, fmt.Errorf("selection menu: %w", err)
	}
	m, ok := final.(pickerModel)
	if !ok || m.aborted {
		return 0, ErrAborted
	}
	return m.selected, nil
}
