package model

import (
	"fmt"
	"strings"
)

// Table represents a table with cells organized in rows and columns
type Table struct {
	Rows       [][]Cell
	BBox       BBox
	Bordered   bool    // Whether the table was anchored on visible gridlines
	Confidence float64 // Detection confidence (0-1)
}

// NewTable creates a new table with given dimensions
func NewTable(rows, cols int) *Table {
	table := &Table{
		Rows:       make([][]Cell, rows),
		Confidence: 1.0,
	}
	for i := 0; i < rows; i++ {
		table.Rows[i] = make([]Cell, cols)
	}
	return table
}

// RowCount returns the number of rows
func (t *Table) RowCount() int {
	return len(t.Rows)
}

// ColCount returns the number of columns in the first row
func (t *Table) ColCount() int {
	if len(t.Rows) == 0 {
		return 0
	}
	return len(t.Rows[0])
}

// GetCell returns the cell at the given row and column (0-indexed)
func (t *Table) GetCell(row, col int) *Cell {
	if row < 0 || row >= len(t.Rows) {
		return nil
	}
	if col < 0 || col >= len(t.Rows[row]) {
		return nil
	}
	return &t.Rows[row][col]
}

// SetCell sets the cell at the given position
func (t *Table) SetCell(row, col int, cell Cell) error {
	if row < 0 || row >= len(t.Rows) {
		return fmt.Errorf("row index %d out of bounds", row)
	}
	if col < 0 || col >= len(t.Rows[row]) {
		return fmt.Errorf("col index %d out of bounds", col)
	}
	t.Rows[row][col] = cell
	return nil
}

// GetText returns the table content as tab-separated plain text
func (t *Table) GetText() string {
	var sb strings.Builder
	for _, row := range t.Rows {
		for j, cell := range row {
			sb.WriteString(cell.Text)
			if j < len(row)-1 {
				sb.WriteString("\t")
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// ToMarkdown converts the table to a GitHub-style markdown table. The first
// row is treated as the header. Pipe characters in cell text are escaped.
func (t *Table) ToMarkdown() string {
	if len(t.Rows) == 0 {
		return ""
	}

	var sb strings.Builder

	writeRow := func(row []Cell) {
		for _, cell := range row {
			sb.WriteString("| ")
			sb.WriteString(escapeCell(cell.Text))
			sb.WriteString(" ")
		}
		sb.WriteString("|\n")
	}

	// Header row
	writeRow(t.Rows[0])

	// Separator
	for range t.Rows[0] {
		sb.WriteString("|---")
	}
	sb.WriteString("|\n")

	// Data rows
	for i := 1; i < len(t.Rows); i++ {
		writeRow(t.Rows[i])
	}

	return sb.String()
}

func escapeCell(text string) string {
	text = strings.ReplaceAll(text, "\n", " ")
	return strings.ReplaceAll(text, "|", "\\|")
}

// Cell represents a table cell
type Cell struct {
	Text string
	BBox BBox
}

// TableGrid represents a detected grid structure as sorted boundary
// coordinates. N+1 boundaries delimit N rows or columns.
type TableGrid struct {
	RowBounds []float64 // Y coordinates of row boundaries, top to bottom
	ColBounds []float64 // X coordinates of column boundaries, left to right
}

// RowCount returns the number of rows
func (g *TableGrid) RowCount() int {
	if len(g.RowBounds) <= 1 {
		return 0
	}
	return len(g.RowBounds) - 1
}

// ColCount returns the number of columns
func (g *TableGrid) ColCount() int {
	if len(g.ColBounds) <= 1 {
		return 0
	}
	return len(g.ColBounds) - 1
}

// CellBBox returns the bounding box for a cell
func (g *TableGrid) CellBBox(row, col int) BBox {
	if row < 0 || row >= g.RowCount() || col < 0 || col >= g.ColCount() {
		return BBox{}
	}
	return BBox{
		X0: g.ColBounds[col],
		Y0: g.RowBounds[row],
		X1: g.ColBounds[col+1],
		Y1: g.RowBounds[row+1],
	}
}

// BBox returns the outer bounding box of the grid
func (g *TableGrid) BBox() BBox {
	if g.RowCount() == 0 || g.ColCount() == 0 {
		return BBox{}
	}
	return BBox{
		X0: g.ColBounds[0],
		Y0: g.RowBounds[0],
		X1: g.ColBounds[len(g.ColBounds)-1],
		Y1: g.RowBounds[len(g.RowBounds)-1],
	}
}
