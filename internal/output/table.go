package output

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	tableBorderStyle = lipgloss.NewStyle().Foreground(ColorDimGray)
	tableHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorBlue)
	tableCellStyle   = lipgloss.NewStyle().PaddingRight(1)
)

// Table is a bordered result table. A column named STATUS is coloured with
// StatusStyle.
type Table struct {
	headers   []string
	rows      [][]string
	statusCol int
}

// NewTable creates a new table with the given headers.
func NewTable(headers ...string) *Table {
	t := &Table{headers: headers, statusCol: -1}
	for i, h := range headers {
		if h == "STATUS" {
			t.statusCol = i
		}
	}
	return t
}

// Row adds a row to the table. Missing cells render empty.
func (t *Table) Row(cells ...string) *Table {
	row := make([]string, len(t.headers))
	copy(row, cells)
	t.rows = append(t.rows, row)
	return t
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// String renders the table.
func (t *Table) String() string {
	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(tableBorderStyle).
		Headers(t.headers...).
		Rows(t.rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return tableHeaderStyle
			case col == t.statusCol && row >= 0 && row < len(t.rows):
				return StatusStyle(t.rows[row][col]).PaddingRight(1)
			default:
				return tableCellStyle
			}
		})
	return tbl.String()
}
