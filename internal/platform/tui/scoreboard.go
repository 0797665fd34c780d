package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/nchukanov/botwalk/internal/storage"
)

// ScoreTable renders the best completions for a level as a static table.
func ScoreTable(levelID string, entries []storage.Completion) string {
	columns := []table.Column{
		{Title: "#", Width: 4},
		{Title: "Steps", Width: 8},
		{Title: "When", Width: 20},
	}

	rows := make([]table.Row, 0, len(entries))
	for i, e := range entries {
		when := ""
		if !e.CreatedAt.IsZero() {
			when = e.CreatedAt.Format("2006-01-02 15:04")
		}
		rows = append(rows, table.Row{
			fmt.Sprintf("%d", i+1),
			fmt.Sprintf("%d", e.Steps),
			when,
		})
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithHeight(len(rows)+1),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.Bold(true).BorderStyle(lipgloss.NormalBorder()).BorderBottom(true)
	s.Selected = lipgloss.NewStyle()
	t.SetStyles(s)

	header := styleTitle.Render(fmt.Sprintf(" Best runs — %s", levelID))
	return header + "\n" + t.View()
}
