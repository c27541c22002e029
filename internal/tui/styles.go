package tui

import "github.com/charmbracelet/lipgloss"

// Phase statuses shown in the STATUS column.
const (
	StatusPending     = "pending"
	StatusDownloading = "downloading"
	StatusExtracting  = "extracting"
	StatusWriting     = "writing"
	StatusDone        = "done"
	StatusSkipped     = "skipped"
	StatusError       = "error"
)

var (
	// TitleStyle styles the heading above the table.
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("5"))
	// HeaderStyle styles the column header row.
	HeaderStyle = lipgloss.NewStyle().Bold(true)

	statusStyles = map[string]lipgloss.Style{
		StatusDone:        lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		StatusDownloading: lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
		StatusExtracting:  lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
		StatusWriting:     lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
		StatusSkipped:     lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		StatusError:       lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		StatusPending:     lipgloss.NewStyle().Faint(true),
	}
)

// StatusStyle returns the lipgloss style for the given status string.
func StatusStyle(status string) lipgloss.Style {
	if s, ok := statusStyles[status]; ok {
		return s
	}
	return lipgloss.NewStyle()
}

func isTerminal(status string) bool {
	switch status {
	case StatusDone, StatusSkipped, StatusError:
		return true
	}
	return false
}
