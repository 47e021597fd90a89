package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Table renders rows under a header line, without column borders.
type Table struct {
	headers []string
	rows    [][]string
	muted   map[int]bool
}

// NewTable creates a table with the given column headers.
func NewTable(headers ...string) *Table {
	return &Table{headers: headers, muted: make(map[int]bool)}
}

// AddRow adds a row. Missing cells are left empty and extra cells dropped.
func (t *Table) AddRow(cells ...string) {
	row := make([]string, len(t.headers))
	copy(row, cells)
	t.rows = append(t.rows, row)
}

// MuteColumn renders column i in the muted style.
func (t *Table) MuteColumn(i int) {
	t.muted[i] = true
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Render draws the table. Styles are only applied when styled is true.
func (t *Table) Render(styled bool) string {
	if len(t.rows) == 0 {
		return ""
	}

	last := len(t.headers) - 1
	tbl := table.New().
		Border(lipgloss.Border{Top: "─", Bottom: "─", Middle: "─"}).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderColumn(false).
		BorderRow(false).
		BorderHeader(true).
		Headers(t.headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			style := lipgloss.NewStyle()
			if col < last {
				style = style.PaddingRight(2)
			}
			if !styled {
				return style
			}
			switch {
			case row == table.HeaderRow:
				return style.Inherit(Bold)
			case t.muted[col]:
				return style.Inherit(Muted)
			}
			return style
		}).
		Rows(t.rows...)
	if styled {
		tbl = tbl.BorderStyle(Muted)
	}
	return tbl.Render()
}

// TruncateWithEllipsis truncates a string to maxLen, adding ellipsis if needed.
// It tries to break at word boundaries.
func TruncateWithEllipsis(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}

	// Try to truncate at a word boundary
	truncated := s[:maxLen-3]
	lastSpace := strings.LastIndex(truncated, " ")
	if lastSpace > maxLen/2 {
		truncated = truncated[:lastSpace]
	}
	return truncated + "..."
}
