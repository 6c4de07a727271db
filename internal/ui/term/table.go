package term

import (
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/gokatarajesh/math-quiz/internal/quiz"
)

func subjectColumns() []table.Column {
	return []table.Column{
		{Title: "Subject", Width: 28},
		{Title: "Questions", Width: 10},
		{Title: "Solved", Width: 8},
		{Title: "Correct", Width: 8},
	}
}

// tableStyles returns table styles for the subject picker.
func tableStyles(noColor bool) table.Styles {
	if noColor {
		return table.DefaultStyles()
	}
	styles := table.DefaultStyles()
	styles.Header = styles.Header.Foreground(lipgloss.Color("252"))
	styles.Selected = styles.Selected.Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57"))
	return styles
}

// subjectRows converts the selectable subjects into table rows.
func subjectRows(subjects []quiz.SubjectView) []table.Row {
	rows := make([]table.Row, 0, len(subjects))
	for _, s := range subjects {
		rows = append(rows, table.Row{
			s.Name,
			strconv.Itoa(s.Questions),
			strconv.Itoa(s.Answered),
			strconv.Itoa(s.Correct),
		})
	}
	return rows
}
