package models

import "sort"

// CellType is the declared type of a cell value.
type CellType int

const (
	TypeEmpty CellType = iota
	TypeNumber
	TypeText
	TypeDate
	TypeBool
	TypeError
)

// Cell is one occupied cell. Value keeps the raw display text; Formula
// is the formula text without the leading "=" stripped (empty for
// plain values).
type Cell struct {
	Row     int
	Col     int
	Value   string
	Type    CellType
	Formula string
}

// IsFormula reports whether the cell carries a formula.
func (c Cell) IsFormula() bool { return c.Formula != "" }

// Coord addresses a cell by 1-based row and column.
type Coord struct {
	Row int
	Col int
}

// Sheet is one worksheet with its grid contents and metadata.
type Sheet struct {
	// Name is the sheet name.
	Name string
	// MaxRow and MaxCol bound the used range (1-based, inclusive).
	MaxRow int
	MaxCol int

	cells map[Coord]Cell

	// HiddenRows and HiddenCols are 1-based hidden indices.
	HiddenRows map[int]bool
	HiddenCols map[int]bool
	// Merged holds merged ranges in A1:B2 notation.
	Merged []string
	// Validations holds data-validation rules.
	Validations []ValidationRule
	// CondFormats holds conditional-formatting rules.
	CondFormats []CondFormatRule
	// Tables holds formal table definitions.
	Tables []Table
	// Charts holds chart metadata.
	Charts []Chart
}

// ValidationRule is one data-validation rule.
type ValidationRule struct {
	Range    string
	Type     string
	Operator string
	Formula1 string
	Formula2 string
}

// CondFormatRule is one conditional-formatting rule.
type CondFormatRule struct {
	// Range the rule applies to, A1:B2 notation.
	Range string
	// Type is the rule type (cellIs, expression, colorScale, ...).
	Type string
	// Formula is the rule criteria, when present.
	Formula string
	// Format summarizes the target format (fill color, font), used
	// only for conflict comparison.
	Format string
	// Priority is the rule priority, lower wins.
	Priority int
}

// Table is a formal table definition.
type Table struct {
	Name  string
	Range string
	Style string
}

// Chart is chart metadata.
type Chart struct {
	Title      string
	Type       string
	XAxisTitle string
	YAxisTitle string
}

// NewSheet returns an empty sheet.
func NewSheet(name string) *Sheet {
	return &Sheet{
		Name:       name,
		cells:      make(map[Coord]Cell),
		HiddenRows: make(map[int]bool),
		HiddenCols: make(map[int]bool),
	}
}

// SetCell stores a cell and grows the used-range bounds.
func (s *Sheet) SetCell(c Cell) {
	if c.Row < 1 || c.Col < 1 {
		return
	}
	s.cells[Coord{c.Row, c.Col}] = c
	if c.Row > s.MaxRow {
		s.MaxRow = c.Row
	}
	if c.Col > s.MaxCol {
		s.MaxCol = c.Col
	}
}

// Cell returns the cell at (row, col) and whether it is occupied.
func (s *Sheet) Cell(row, col int) (Cell, bool) {
	c, ok := s.cells[Coord{row, col}]
	return c, ok
}

// NonEmpty returns all occupied cells in row-major order. The order is
// stable so repeated runs over the same workbook are deterministic.
func (s *Sheet) NonEmpty() []Cell {
	out := make([]Cell, 0, len(s.cells))
	for _, c := range s.cells {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Row != out[j].Row {
			return out[i].Row < out[j].Row
		}
		return out[i].Col < out[j].Col
	})
	return out
}

// Formulas returns all formula cells in row-major order.
func (s *Sheet) Formulas() []Cell {
	var out []Cell
	for _, c := range s.NonEmpty() {
		if c.IsFormula() {
			out = append(out, c)
		}
	}
	return out
}

// Column returns the occupied cells of one column, ascending by row.
func (s *Sheet) Column(col int) []Cell {
	var out []Cell
	for _, c := range s.NonEmpty() {
		if c.Col == col {
			out = append(out, c)
		}
	}
	return out
}

// CellCount returns the number of occupied cells.
func (s *Sheet) CellCount() int { return len(s.cells) }
