package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"post_browser/internal/domain"
)

const (
	bodyTruncateLen  = 70
	titleTruncateLen = 60
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	emptyStyle    = lipgloss.NewStyle().Bold(true).Align(lipgloss.Center).Padding(1, 0)
	composeStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("Posts"))
	b.WriteString("  ")
	b.WriteString(dimStyle.Render(m.statusLine()))
	b.WriteString("\n\n")

	if m.mode == modeSearch || m.search.Value() != "" {
		b.WriteString(m.search.View())
		b.WriteString("\n\n")
	}

	if m.mode == modeCompose {
		b.WriteString(composeStyle.Render(m.title.View() + "\n" + m.body.View()))
		b.WriteString("\n\n")
	}

	b.WriteString(m.renderList())
	b.WriteString("\n")
	b.WriteString(m.renderPagination())
	b.WriteString("\n")

	if m.notice != "" {
		b.WriteString(errorStyle.Render(m.notice))
		b.WriteString("\n")
	}

	b.WriteString(dimStyle.Render(m.help()))
	return b.String()
}

func (m *Model) statusLine() string {
	parts := []string{"sort: " + m.snap.SortKey.Label()}
	if m.snap.SearchQuery != "" {
		parts = append(parts, fmt.Sprintf("search: %q", m.snap.SearchQuery))
	}
	if m.snap.Status == domain.StatusLoading {
		parts = append(parts, "loading...")
	}
	return strings.Join(parts, " · ")
}

func (m *Model) renderList() string {
	if len(m.snap.Visible) == 0 {
		return m.renderEmpty()
	}

	lines := make([]string, 0, len(m.snap.Visible))
	for i, p := range m.snap.Visible {
		row := fmt.Sprintf("%3d. %s", p.ID, truncate(p.Title, titleTruncateLen))
		if i == m.selected {
			row = selectedStyle.Render(row)
		}
		lines = append(lines, row, dimStyle.Render("     "+truncate(oneLine(p.Body), bodyTruncateLen)))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderEmpty() string {
	switch m.snap.Empty {
	case domain.EmptyFailed:
		msg := "Failed to load posts"
		if m.snap.Err != nil {
			msg += "\n" + errorStyle.Render(m.snap.Err.Error())
		}
		return emptyStyle.Render(msg + "\n" + dimStyle.Render("press r to retry"))
	case domain.EmptyNoMatches:
		return emptyStyle.Render("Posts not found")
	default:
		if m.snap.Status == domain.StatusLoading || m.snap.Status == domain.StatusIdle {
			return emptyStyle.Render("Loading...")
		}
		return emptyStyle.Render("Posts not found")
	}
}

func (m *Model) renderPagination() string {
	prev, next := "‹ Previous", "Next ›"
	if !m.snap.HasPrev() {
		prev = dimStyle.Render(prev)
	}
	if !m.snap.HasNext() {
		next = dimStyle.Render(next)
	}
	return fmt.Sprintf("%s   page %d of %d   %s", prev, m.snap.PageNumber, m.snap.TotalPages, next)
}

func (m *Model) help() string {
	switch m.mode {
	case modeSearch:
		return "type to filter · enter/esc done"
	case modeCompose:
		return "tab switch field · enter save · esc cancel"
	default:
		return "←/→ page · ↑/↓ select · / search · s sort · n new · d delete · r reload · q quit"
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
