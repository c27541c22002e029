package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const tickInterval = 120 * time.Millisecond

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// tickMsg drives the spinner.
type tickMsg time.Time

// Column defines a single column in the progress table.
type Column struct {
	Header string
	Width  int
}

// Row holds the field values for a single table row.
type Row struct {
	Key    string
	Fields []string
}

// ProgressModel renders one row per installation phase. Rows are keyed so
// reporters can update them by name from any goroutine via tea.Program.Send.
type ProgressModel struct {
	title    string
	columns  []Column
	rows     []Row
	rowIndex map[string]int
	started  time.Time
	done     bool
	err      error

	// statusCol is the index of the STATUS column, or -1.
	statusCol int
	tick      int
}

// NewProgressModel creates a progress model with the given title and columns.
func NewProgressModel(title string, columns []Column) ProgressModel {
	statusCol := -1
	for i, c := range columns {
		if strings.EqualFold(c.Header, "STATUS") {
			statusCol = i
			break
		}
	}
	return ProgressModel{
		title:     title,
		columns:   columns,
		rowIndex:  make(map[string]int),
		started:   time.Now(),
		statusCol: statusCol,
	}
}

// AddRow pre-populates a row. Call this before the program starts.
func (m *ProgressModel) AddRow(key string, fields []string) {
	padded := make([]string, len(m.columns))
	copy(padded, fields)
	m.rowIndex[key] = len(m.rows)
	m.rows = append(m.rows, Row{Key: key, Fields: padded})
}

func scheduleTick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init satisfies the tea.Model interface.
func (m ProgressModel) Init() tea.Cmd {
	return scheduleTick()
}

// Update satisfies the tea.Model interface.
func (m ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.tick++
		if m.done {
			return m, nil
		}
		return m, scheduleTick()

	case RowUpdateMsg:
		if idx, ok := m.rowIndex[msg.Key]; ok {
			row := &m.rows[idx]
			for j, col := range m.columns {
				if val, exists := msg.Fields[col.Header]; exists {
					row.Fields[j] = val
				}
			}
		}
		return m, nil

	case WorkDoneMsg:
		m.done = true
		return m, tea.Quit

	case ErrorMsg:
		m.err = msg.Err
		m.done = true
		return m, tea.Quit

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.err = ErrInterrupted
			m.done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

// View satisfies the tea.Model interface.
func (m ProgressModel) View() string {
	if m.done && m.err != nil {
		return fmt.Sprintf("Error: %v\n", m.err)
	}

	var b strings.Builder
	if m.title != "" {
		b.WriteString(TitleStyle.Render(m.title))
		b.WriteString("\n\n")
	}

	widths := m.widths()
	cells := make([]string, len(m.columns))
	for i, col := range m.columns {
		cells[i] = HeaderStyle.Render(pad(col.Header, widths[i]))
	}
	writeLine(&b, cells)

	for _, row := range m.rows {
		for i := range m.columns {
			var val string
			if i < len(row.Fields) {
				val = TruncateWithEllipsis(NonEmptyOrDash(row.Fields[i]), widths[i])
			}
			cells[i] = pad(val, widths[i])
			if i == m.statusCol {
				cells[i] = StatusStyle(val).Render(cells[i])
			}
		}
		writeLine(&b, cells)
	}

	if !m.done {
		finished, total := m.progressCounts()
		fmt.Fprintf(&b, "\n%s %d/%d phases (%s)\n",
			spinnerFrames[m.tick%len(spinnerFrames)], finished, total, formatElapsed(time.Since(m.started)))
	}
	return b.String()
}

func (m ProgressModel) widths() []int {
	widths := make([]int, len(m.columns))
	for i, col := range m.columns {
		widths[i] = max(lipgloss.Width(col.Header), col.Width)
	}
	return widths
}

func writeLine(b *strings.Builder, cells []string) {
	b.WriteString(strings.Join(cells, "  "))
	b.WriteByte('\n')
}

// progressCounts returns how many rows reached a terminal status.
func (m ProgressModel) progressCounts() (int, int) {
	total := len(m.rows)
	if m.statusCol < 0 {
		return 0, total
	}
	finished := 0
	for _, row := range m.rows {
		if m.statusCol < len(row.Fields) && isTerminal(strings.TrimSpace(row.Fields[m.statusCol])) {
			finished++
		}
	}
	return finished, total
}

// Done reports whether the work finished or failed.
func (m ProgressModel) Done() bool {
	return m.done
}

// Err returns the error that ended the run, if any.
func (m ProgressModel) Err() error {
	return m.err
}

func pad(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

// NonEmptyOrDash renders blank cells as "-".
func NonEmptyOrDash(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "-"
	}
	return value
}

// TruncateWithEllipsis shortens value to max bytes, ending in "..." when
// there is room for it.
func TruncateWithEllipsis(value string, max int) string {
	if max <= 0 {
		return ""
	}
	value = strings.TrimSpace(value)
	if len(value) <= max {
		return value
	}
	if max <= 3 {
		return value[:max]
	}
	return value[:max-3] + "..."
}
