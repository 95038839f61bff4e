package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	userStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	assistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))

	statusReadyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	statusThinkingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	statusModelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	inputBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
)

// View implements tea.Model.
func (m chatModel) View() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		m.viewport.View(),
		m.renderInput(),
		m.renderStatus(),
	)
}

func (m chatModel) renderInput() string {
	return inputBoxStyle.Width(m.width - 2).Render(m.input.View())
}

func (m chatModel) renderStatus() string {
	var left string
	switch m.statusPhase {
	case "thinking":
		left = statusThinkingStyle.Render(fmt.Sprintf("%s %s", m.spinner.View(), m.statusMessage))
	default:
		text := m.statusMessage
		if text == "" {
			text = "Ready"
		}
		left = statusReadyStyle.Render(text)
	}

	right := statusModelStyle.Render(m.modelName)
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	return " " + left + lipgloss.NewStyle().Width(gap).Render("") + right
}
