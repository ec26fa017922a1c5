package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/aguilarm/scrumd/internal/models"
)

// BacklogModel is the TUI model for browsing a project's backlog.
type BacklogModel struct {
	width  int
	height int

	projectName string
	stories     []models.UserStory // full backlog, priority order
	visible     []int              // indexes into stories after search filter
	selected    int                // index into visible

	focus        Focus
	searchActive bool
	search       textinput.Model

	currentPage    int
	storiesPerPage int
}

// Focus represents what UI element has focus
type Focus int

const (
	FocusTable Focus = iota
	FocusSearch
)

// NewBacklogModel creates the backlog browser over an already-loaded backlog.
func NewBacklogModel(projectName string, stories []models.UserStory) BacklogModel {
	search := textinput.New()
	search.Placeholder = "title or code"
	search.Prompt = "Search: "
	search.CharLimit = 64

	model := BacklogModel{
		projectName:    projectName,
		stories:        stories,
		focus:          FocusTable,
		search:         search,
		storiesPerPage: 10,
	}
	model.applyFilter()
	return model
}

// Init initializes the model
func (m BacklogModel) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m BacklogModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		// header(2) + pagination(1) + help(1) + borders and margins
		availableHeight := m.height - 12
		if availableHeight < 3 {
			availableHeight = 3
		}
		m.storiesPerPage = availableHeight
		return m, nil

	case tea.KeyMsg:
		if m.focus == FocusSearch {
			return m.handleSearchKeys(msg)
		}

		switch msg.String() {
		case "ctrl+c", "q", "esc":
			if msg.String() == "esc" && m.searchActive {
				m.searchActive = false
				m.search.SetValue("")
				m.applyFilter()
				return m, nil
			}
			return m, tea.Quit

		case "up", "k":
			return m.moveSelectionUp(), nil

		case "down", "j":
			return m.moveSelectionDown(), nil

		case "left", "h":
			return m.prevPage(), nil

		case "right", "l":
			return m.nextPage(), nil

		case "/":
			m.focus = FocusSearch
			m.searchActive = true
			m.search.Focus()
			return m, textinput.Blink
		}
	}

	return m, nil
}

// handleSearchKeys handles key input while the search field has focus
func (m BacklogModel) handleSearchKeys(msg tea.KeyMsg) (BacklogModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.focus = FocusTable
		m.searchActive = false
		m.search.SetValue("")
		m.search.Blur()
		m.applyFilter()
		return m, nil

	case "enter":
		m.focus = FocusTable
		m.search.Blur()
		return m, nil

	default:
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		m.applyFilter()
		return m, cmd
	}
}

// applyFilter recomputes the visible set from the search query.
func (m *BacklogModel) applyFilter() {
	query := strings.ToLower(strings.TrimSpace(m.search.Value()))
	m.visible = m.visible[:0]
	for i, story := range m.stories {
		if query == "" ||
			strings.Contains(strings.ToLower(story.Title), query) ||
			strings.Contains(strings.ToLower(story.Code), query) {
			m.visible = append(m.visible, i)
		}
	}
	if m.selected >= len(m.visible) {
		m.selected = 0
	}
	m.currentPage = 0
}

// moveSelectionUp moves the selection up
func (m BacklogModel) moveSelectionUp() BacklogModel {
	if m.selected > 0 {
		m.selected--
		if m.selected < m.currentPage*m.storiesPerPage && m.currentPage > 0 {
			m.currentPage--
		}
	}
	return m
}

// moveSelectionDown moves the selection down
func (m BacklogModel) moveSelectionDown() BacklogModel {
	if m.selected < len(m.visible)-1 {
		m.selected++
		currentPageEnd := min((m.currentPage+1)*m.storiesPerPage-1, len(m.visible)-1)
		maxPages := (len(m.visible) + m.storiesPerPage - 1) / m.storiesPerPage
		if m.selected > currentPageEnd && m.currentPage < maxPages-1 {
			m.currentPage++
		}
	}
	return m
}

// prevPage goes to the previous page
func (m BacklogModel) prevPage() BacklogModel {
	if m.currentPage > 0 {
		m.currentPage--
		minIndex := m.currentPage * m.storiesPerPage
		if m.selected < minIndex {
			m.selected = minIndex
		}
		maxIndex := min((m.currentPage+1)*m.storiesPerPage-1, len(m.visible)-1)
		if m.selected > maxIndex {
			m.selected = maxIndex
		}
	}
	return m
}

// nextPage goes to the next page
func (m BacklogModel) nextPage() BacklogModel {
	maxPages := (len(m.visible) + m.storiesPerPage - 1) / m.storiesPerPage
	if m.currentPage < maxPages-1 {
		m.currentPage++
		minIndex := m.currentPage * m.storiesPerPage
		if m.selected < minIndex {
			m.selected = minIndex
		}
		maxIndex := min((m.currentPage+1)*m.storiesPerPage-1, len(m.visible)-1)
		if m.selected > maxIndex {
			m.selected = maxIndex
		}
	}
	return m
}

// View renders the TUI
func (m BacklogModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	leftWidth := m.width * 60 / 100
	rightWidth := m.width - leftWidth - 1

	content := lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.renderStoryTable(leftWidth),
		" ",
		m.renderStoryDetails(rightWidth),
	)

	var bottomBar string
	if m.searchActive {
		bottomBar = m.renderSearchBar()
	} else {
		bottomBar = m.renderHelpBar()
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		"",
		content,
		"",
		bottomBar,
	)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// renderStoryTable renders the left panel with the backlog table
func (m BacklogModel) renderStoryTable(width int) string {
	var b strings.Builder

	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(ColorAccentBright))

	b.WriteString(headerStyle.Render("Backlog: " + m.projectName))
	b.WriteString("\n\n")

	if len(m.visible) == 0 {
		emptyStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorSecondaryText)).
			Italic(true)
		b.WriteString(emptyStyle.Render("No stories found"))
		return lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(ColorBorder)).
			Width(width).
			Render(b.String())
	}

	columnHeaderStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(ColorAccentBright)).
		Padding(0, 1)

	availableWidth := width - 4
	codeWidth := 10
	prioWidth := 5
	estWidth := 5
	titleWidth := availableWidth - codeWidth - prioWidth - estWidth - 6
	if titleWidth < 20 {
		titleWidth = 20
	}

	headers := fmt.Sprintf("%-*s %-*s %-*s %-*s",
		codeWidth, "CODE",
		titleWidth, "TITLE",
		prioWidth, "PRIO",
		estWidth, "EST")
	b.WriteString(columnHeaderStyle.Render(headers))
	b.WriteString("\n\n")

	startIndex := m.currentPage * m.storiesPerPage
	endIndex := min(startIndex+m.storiesPerPage, len(m.visible))

	for i := startIndex; i < endIndex; i++ {
		story := m.stories[m.visible[i]]
		isSelected := i == m.selected

		title := story.Title
		if len(title) > titleWidth-1 {
			if titleWidth > 4 {
				title = title[:titleWidth-4] + "..."
			} else {
				title = title[:titleWidth-1]
			}
		}

		prioText := fmt.Sprintf("%d", story.SprintPriority)
		coloredPrio := prioText
		switch {
		case story.SprintPriority >= 70:
			coloredPrio = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorError)).Render(prioText)
		case story.SprintPriority >= 40:
			coloredPrio = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorWarning)).Render(prioText)
		default:
			coloredPrio = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSecondaryText)).Render(prioText)
		}

		rowContent := fmt.Sprintf("%-*s %-*s %-*s %-*d",
			codeWidth, story.Code,
			titleWidth, title,
			prioWidth, coloredPrio,
			estWidth, story.EstimationTime)

		if isSelected {
			selectedBorder := lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color(ColorAccentMain)).
				Bold(true).
				Padding(0, 1)
			b.WriteString(selectedBorder.Render(rowContent))
		} else {
			b.WriteString(" " + rowContent)
		}
		b.WriteString("\n")
	}

	if m.storiesPerPage < len(m.visible) {
		totalPages := (len(m.visible) + m.storiesPerPage - 1) / m.storiesPerPage
		pageInfo := fmt.Sprintf("Page %d/%d (%d stories)", m.currentPage+1, totalPages, len(m.visible))
		pageStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorHelpText)).
			Align(lipgloss.Center).
			Width(width - 2).
			MarginTop(1)
		b.WriteString(pageStyle.Render(pageInfo))
	}

	outerBorderStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorBorder)).
		Width(width)

	return outerBorderStyle.Render(b.String())
}

// renderStoryDetails renders the right panel with the selected story
func (m BacklogModel) renderStoryDetails(width int) string {
	var b strings.Builder

	if len(m.visible) == 0 || m.selected >= len(m.visible) {
		logoStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorAccentMain)).
			Bold(true).
			Align(lipgloss.Center).
			Width(width)
		b.WriteString(logoStyle.Render("scrumd"))

		emptyStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorSecondaryText)).
			Italic(true).
			Align(lipgloss.Center).
			Width(width).
			MarginTop(2)
		b.WriteString("\n")
		b.WriteString(emptyStyle.Render("Select a story to view details"))
	} else {
		story := m.stories[m.visible[m.selected]]

		titleStyle := lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(ColorPrimaryText)).
			Width(width)
		b.WriteString(titleStyle.Render(story.Code + " " + story.Title))
		b.WriteString("\n\n")

		accent := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccentBright))
		b.WriteString("Priority: ")
		b.WriteString(accent.Render(fmt.Sprintf("%d", story.SprintPriority)))
		b.WriteString("\n")
		b.WriteString("Business value: ")
		b.WriteString(accent.Render(fmt.Sprintf("%d", story.BusinessValue)))
		b.WriteString("\n")
		b.WriteString("Technical priority: ")
		b.WriteString(accent.Render(fmt.Sprintf("%d", story.TechnicalPriority)))
		b.WriteString("\n")
		b.WriteString("Estimation: ")
		b.WriteString(accent.Render(fmt.Sprintf("%d h", story.EstimationTime)))
		b.WriteString("\n")

		if story.UsType.ID != 0 {
			b.WriteString("Type: ")
			b.WriteString(accent.Render(story.UsType.Name))
			b.WriteString("\n")
		}

		if story.Description != "" {
			b.WriteString("\n")
			descStyle := lipgloss.NewStyle().
				Foreground(lipgloss.Color(ColorSecondaryText)).
				Italic(true).
				Width(width - 2)
			b.WriteString(descStyle.Render(story.Description))
		}
	}

	borderStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorBorder)).
		Width(width)

	return borderStyle.Render(b.String())
}

// renderSearchBar renders the search input when active
func (m BacklogModel) renderSearchBar() string {
	searchStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorPrimaryText)).
		Background(lipgloss.Color(ColorBorder)).
		Padding(0, 1).
		Width(m.width - 2)

	return searchStyle.Render(m.search.View())
}

// renderHelpBar renders the help bar with hotkey hints
func (m BacklogModel) renderHelpBar() string {
	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorHelpText)).
		Italic(true).
		Align(lipgloss.Center).
		Width(m.width)

	helpText := "↑/↓ nav · ←/→ page · / search · q/esc quit"
	return helpStyle.Render(helpText)
}
