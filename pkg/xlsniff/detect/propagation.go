package detect

import (
	"fmt"

	"github.com/ukaji3/xlsniff-go/pkg/xlsniff/models"
	"github.com/ukaji3/xlsniff-go/pkg/xlsniff/refs"
)

// The propagation detector family looks at one column at a time: a
// column that is mostly formulas with a few hardcoded or missing rows
// usually means a drag that stopped short or a paste over a formula.

// columnScan is the per-column view the propagation detectors share.
type columnScan struct {
	col      int
	cells    []models.Cell // occupied, ascending by row
	formulas []models.Cell
	hard     []models.Cell // occupied but not a formula
}

func scanColumns(sheet *models.Sheet) []columnScan {
	var out []columnScan
	for col := 1; col <= sheet.MaxCol; col++ {
		cells := sheet.Column(col)
		if len(cells) == 0 {
			continue
		}
		cs := columnScan{col: col, cells: cells}
		for _, c := range cells {
			if c.IsFormula() {
				cs.formulas = append(cs.formulas, c)
			} else {
				cs.hard = append(cs.hard, c)
			}
		}
		out = append(out, cs)
	}
	return out
}

func (cs columnScan) formulaByRow(row int) bool {
	for _, c := range cs.formulas {
		if c.Row == row {
			return true
		}
	}
	return false
}

func (cs columnScan) occupiedByRow(row int) (models.Cell, bool) {
	for _, c := range cs.cells {
		if c.Row == row {
			return c, true
		}
	}
	return models.Cell{}, false
}

// PartialFormulaPropagation reports hardcoded values interrupting a
// column of formulas. A value in the middle of a dragged block is
// almost always a paste that silently disconnected one row from the
// calculation.
type PartialFormulaPropagation struct{}

func (PartialFormulaPropagation) Name() string { return "partial_formula_propagation" }
func (PartialFormulaPropagation) Description() string {
	return "Hardcoded values breaking a column of formulas"
}
func (PartialFormulaPropagation) Severity() Severity { return SeverityHigh }

func (d PartialFormulaPropagation) Detect(wb *models.Workbook) []Finding {
	var out []Finding
	for _, sheet := range wb.Sheets {
		for _, cs := range scanColumns(sheet) {
			if len(cs.cells) < 5 || len(cs.formulas) == 0 || len(cs.hard) == 0 {
				continue
			}
			if float64(len(cs.formulas))/float64(len(cs.cells)) < 0.7 {
				continue
			}
			first := cs.cells[0].Row
			last := cs.cells[len(cs.cells)-1].Row
			for _, c := range cs.hard {
				p := 0.6
				sev := SeverityMedium
				switch {
				case c.Row == first || c.Row == last:
					p = 0.5
				case len(cs.hard) == 1:
					p, sev = 0.8, d.Severity()
				}
				f := NewFinding(d.Name(),
					fmt.Sprintf("Column %s row %d holds a hardcoded value inside a formula column",
						refs.ColumnName(cs.col), c.Row),
					p, sev).
					WithLocation(sheet.Name + "!" + refs.Format(c.Row, c.Col)).
					WithDetails(map[string]any{
						"column":        refs.ColumnName(cs.col),
						"row":           c.Row,
						"value":         c.Value,
						"formula_count": len(cs.formulas),
					}).
					WithFix("Restore the formula or confirm the override is intentional")
				out = append(out, f)
			}
		}
	}
	return out
}

// IncompleteDragFormula reports formula columns that stop before their
// data does, or skip rows mid-block: the drag handle was released too
// early or over the wrong rows.
type IncompleteDragFormula struct{}

func (IncompleteDragFormula) Name() string { return "incomplete_drag_formula" }
func (IncompleteDragFormula) Description() string {
	return "Formula columns not dragged over all of their data rows"
}
func (IncompleteDragFormula) Severity() Severity { return SeverityHigh }

func (d IncompleteDragFormula) Detect(wb *models.Workbook) []Finding {
	var out []Finding
	for _, sheet := range wb.Sheets {
		for _, cs := range scanColumns(sheet) {
			if len(cs.formulas) < 3 {
				continue
			}
			minF := cs.formulas[0].Row
			maxF := cs.formulas[len(cs.formulas)-1].Row
			lastData := cs.cells[len(cs.cells)-1].Row

			var gaps []int
			for row := minF + 1; row < maxF; row++ {
				if !cs.formulaByRow(row) {
					gaps = append(gaps, row)
				}
			}
			for _, row := range gaps {
				f := NewFinding(d.Name(),
					fmt.Sprintf("Column %s row %d breaks the dragged formula block (%d-%d)",
						refs.ColumnName(cs.col), row, minF, maxF),
					0.9, d.Severity()).
					WithLocation(sheet.Name + "!" + refs.Format(row, cs.col)).
					WithDetails(map[string]any{
						"column":            refs.ColumnName(cs.col),
						"gap_cells":         []int{row},
						"first_formula_row": minF,
						"last_formula_row":  maxF,
					}).
					WithFix("Drag the formula over the skipped row")
				out = append(out, f)
			}

			var trailing []int
			for _, c := range cs.hard {
				if c.Row > maxF {
					trailing = append(trailing, c.Row)
				}
			}
			if len(trailing) == 0 {
				continue
			}
			p := 0.7
			sev := d.Severity()
			if len(trailing) == 1 {
				p, sev = 0.5, SeverityMedium
			}
			f := NewFinding(d.Name(),
				fmt.Sprintf("Column %s formulas stop at row %d but data continues to row %d",
					refs.ColumnName(cs.col), maxF, lastData),
				p, sev).
				WithLocation(sheet.Name + "!" + refs.Format(maxF, cs.col)).
				WithDetails(map[string]any{
					"column":           refs.ColumnName(cs.col),
					"gap_cells":        trailing,
					"last_formula_row": maxF,
					"last_data_row":    lastData,
				}).
				WithFix(fmt.Sprintf("Drag the formula down to row %d", lastData))
			out = append(out, f)
		}
	}
	return out
}

// FalseRangeEndDetection reports the empty-cell trap: a blank row in
// the middle of a data column makes a drag or fill stop there, leaving
// everything below the blank uncalculated.
type FalseRangeEndDetection struct{}

func (FalseRangeEndDetection) Name() string { return "false_range_end_detection" }
func (FalseRangeEndDetection) Description() string {
	return "Blank rows that made formulas stop before the data ends"
}
func (FalseRangeEndDetection) Severity() Severity { return SeverityHigh }

func (d FalseRangeEndDetection) Detect(wb *models.Workbook) []Finding {
	var out []Finding
	for _, sheet := range wb.Sheets {
		for _, cs := range scanColumns(sheet) {
			if len(cs.cells) < 4 || len(cs.formulas) == 0 {
				continue
			}
			first := cs.cells[0].Row
			last := cs.cells[len(cs.cells)-1].Row

			row := first + 1
			for row < last {
				if _, occupied := cs.occupiedByRow(row); occupied {
					row++
					continue
				}
				gapStart := row
				for row < last {
					if _, occupied := cs.occupiedByRow(row); occupied {
						break
					}
					row++
				}
				gapEnd := row - 1

				before := 0
				for _, c := range cs.formulas {
					if c.Row < gapStart {
						before++
					}
				}
				covered, missing := 0, 0
				for _, c := range cs.cells {
					if c.Row <= gapEnd {
						continue
					}
					if c.IsFormula() {
						covered++
					} else {
						missing++
					}
				}
				if before == 0 || missing == 0 {
					continue
				}
				p := 0.5
				sev := SeverityMedium
				if covered == 0 {
					p, sev = 0.9, d.Severity()
				}
				f := NewFinding(d.Name(),
					fmt.Sprintf("Column %s has a blank at rows %d-%d; %d data rows below it have no formula",
						refs.ColumnName(cs.col), gapStart, gapEnd, missing),
					p, sev).
					WithLocation(sheet.Name + "!" + refs.Format(gapStart, cs.col)).
					WithDetails(map[string]any{
						"column":              refs.ColumnName(cs.col),
						"gap_start":           gapStart,
						"gap_end":             gapEnd,
						"uncovered_data_rows": missing,
						"formulas_before_gap": before,
					}).
					WithFix("Fill the blank row or extend the formulas past it")
				out = append(out, f)
			}
		}
	}
	return out
}
