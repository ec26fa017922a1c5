package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/aguilarm/scrumd/internal/models"
)

// RunBacklogTUI starts the interactive backlog browser
func RunBacklogTUI(projectName string, stories []models.UserStory) error {
	model := NewBacklogModel(projectName, stories)

	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
