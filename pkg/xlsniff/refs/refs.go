// Package refs parses and renders A1-style cell and range references,
// including $ anchor flags and sheet qualifiers, and provides the grid
// math shared by the detectors.
package refs

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// CellRef is a single parsed cell reference. Column and Row are
// 1-based. ColAbs and RowAbs record the independent $ anchors.
type CellRef struct {
	Sheet  string
	Col    int
	Row    int
	ColAbs bool
	RowAbs bool
}

var cellPattern = regexp.MustCompile(`^(\$?)([A-Z]+)(\$?)([0-9]+)$`)

// Parse parses a token like "$A$1", "A$1", "$A1" or "A1", optionally
// prefixed with a sheet qualifier ("Sheet2!A1", "'My Data'!A1").
// Malformed tokens return ok=false; callers skip them.
func Parse(token string) (CellRef, bool) {
	var ref CellRef
	if i := strings.LastIndex(token, "!"); i >= 0 {
		ref.Sheet = strings.Trim(token[:i], "'")
		token = token[i+1:]
	}
	m := cellPattern.FindStringSubmatch(token)
	if m == nil {
		return CellRef{}, false
	}
	ref.ColAbs = m[1] == "$"
	ref.Col = ColumnIndex(m[2])
	ref.RowAbs = m[3] == "$"
	row, err := strconv.Atoi(m[4])
	if err != nil || row < 1 || ref.Col < 1 {
		return CellRef{}, false
	}
	ref.Row = row
	return ref, true
}

// String renders the reference with $ per the anchor flags. The sheet
// qualifier is included when set, quoted if it contains spaces.
func (r CellRef) String() string {
	var b strings.Builder
	if r.Sheet != "" {
		if strings.ContainsAny(r.Sheet, " -") {
			b.WriteString("'" + r.Sheet + "'!")
		} else {
			b.WriteString(r.Sheet + "!")
		}
	}
	if r.ColAbs {
		b.WriteByte('$')
	}
	b.WriteString(ColumnName(r.Col))
	if r.RowAbs {
		b.WriteByte('$')
	}
	b.WriteString(strconv.Itoa(r.Row))
	return b.String()
}

// With returns a copy with the given anchor flags.
func (r CellRef) With(colAbs, rowAbs bool) CellRef {
	r.ColAbs = colAbs
	r.RowAbs = rowAbs
	return r
}

// SameCell reports whether two references address the same cell,
// ignoring anchoring.
func (r CellRef) SameCell(o CellRef) bool {
	return r.Sheet == o.Sheet && r.Col == o.Col && r.Row == o.Row
}

// ColumnIndex converts column letters to a 1-based index
// (A=1, Z=26, AA=27). Returns 0 for an invalid name.
func ColumnIndex(name string) int {
	n := 0
	for _, c := range name {
		if c < 'A' || c > 'Z' {
			return 0
		}
		n = n*26 + int(c-'A') + 1
	}
	return n
}

// ColumnName converts a 1-based column index to letters.
func ColumnName(n int) string {
	if n < 1 {
		return ""
	}
	var b []byte
	for n > 0 {
		n--
		b = append([]byte{byte('A' + n%26)}, b...)
		n /= 26
	}
	return string(b)
}

// Range is a normalized rectangular range: Start is the top-left and
// End the bottom-right corner.
type Range struct {
	Start CellRef
	End   CellRef
}

// ParseRange parses "A1:B10" (with optional anchors and a sheet
// qualifier on either end) into a normalized Range. A single cell
// token yields a 1x1 range.
func ParseRange(token string) (Range, bool) {
	parts := strings.SplitN(token, ":", 2)
	start, ok := Parse(parts[0])
	if !ok {
		return Range{}, false
	}
	end := start
	if len(parts) == 2 {
		e, ok := Parse(parts[1])
		if !ok {
			return Range{}, false
		}
		if e.Sheet == "" {
			e.Sheet = start.Sheet
		}
		end = e
	}
	if end.Row < start.Row {
		start.Row, end.Row = end.Row, start.Row
	}
	if end.Col < start.Col {
		start.Col, end.Col = end.Col, start.Col
	}
	return Range{Start: start, End: end}, true
}

// String renders the range in A1:B2 notation.
func (r Range) String() string {
	if r.Start == r.End {
		return r.Start.String()
	}
	end := r.End
	end.Sheet = ""
	return r.Start.String() + ":" + end.String()
}

// Bounds returns (minRow, minCol, maxRow, maxCol).
func (r Range) Bounds() (int, int, int, int) {
	return r.Start.Row, r.Start.Col, r.End.Row, r.End.Col
}

// Rows returns the row count of the range.
func (r Range) Rows() int { return r.End.Row - r.Start.Row + 1 }

// Cols returns the column count of the range.
func (r Range) Cols() int { return r.End.Col - r.Start.Col + 1 }

// Cells returns the number of cells covered by the range.
func (r Range) Cells() int { return r.Rows() * r.Cols() }

// Contains reports whether the range covers (row, col).
func (r Range) Contains(row, col int) bool {
	return row >= r.Start.Row && row <= r.End.Row &&
		col >= r.Start.Col && col <= r.End.Col
}

// Overlaps reports whether two ranges share at least one cell.
func (r Range) Overlaps(o Range) bool {
	return r.Start.Row <= o.End.Row && o.Start.Row <= r.End.Row &&
		r.Start.Col <= o.End.Col && o.Start.Col <= r.End.Col
}

// Coord is a (row, col) pair used by the grid utilities.
type Coord struct {
	Row int
	Col int
}

// BoundingBox returns the minimal range covering all coordinates.
// ok is false for an empty set.
func BoundingBox(coords []Coord) (Range, bool) {
	if len(coords) == 0 {
		return Range{}, false
	}
	minRow, minCol := coords[0].Row, coords[0].Col
	maxRow, maxCol := minRow, minCol
	for _, c := range coords[1:] {
		if c.Row < minRow {
			minRow = c.Row
		}
		if c.Row > maxRow {
			maxRow = c.Row
		}
		if c.Col < minCol {
			minCol = c.Col
		}
		if c.Col > maxCol {
			maxCol = c.Col
		}
	}
	return Range{
		Start: CellRef{Col: minCol, Row: minRow},
		End:   CellRef{Col: maxCol, Row: maxRow},
	}, true
}

// Format renders a plain (unanchored) A1 cell address.
func Format(row, col int) string {
	return fmt.Sprintf("%s%d", ColumnName(col), row)
}
