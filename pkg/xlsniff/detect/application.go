package detect

import (
	"fmt"

	"github.com/ukaji3/xlsniff-go/pkg/xlsniff/formula"
	"github.com/ukaji3/xlsniff-go/pkg/xlsniff/models"
	"github.com/ukaji3/xlsniff-go/pkg/xlsniff/refs"
)

// CopyPasteFormulaGaps reports holes inside a block of copied
// formulas: when the formulas above and below a hole are the same
// shape, the hole is where a paste went wrong.
type CopyPasteFormulaGaps struct{}

func (CopyPasteFormulaGaps) Name() string { return "copy_paste_formula_gaps" }
func (CopyPasteFormulaGaps) Description() string {
	return "Holes inside otherwise uniform copied formula blocks"
}
func (CopyPasteFormulaGaps) Severity() Severity { return SeverityHigh }

func (d CopyPasteFormulaGaps) Detect(wb *models.Workbook) []Finding {
	var out []Finding
	for _, sheet := range wb.Sheets {
		for _, cs := range scanColumns(sheet) {
			if len(cs.formulas) < 3 {
				continue
			}
			minF := cs.formulas[0].Row
			maxF := cs.formulas[len(cs.formulas)-1].Row

			row := minF + 1
			for row < maxF {
				if cs.formulaByRow(row) {
					row++
					continue
				}
				start := row
				for row < maxF && !cs.formulaByRow(row) {
					row++
				}
				gap := make([]int, 0, row-start)
				for r := start; r < row; r++ {
					gap = append(gap, r)
				}
				if !d.bracketsMatch(cs, start-1, row) {
					continue
				}
				p := 0.8
				sev := d.Severity()
				if len(gap) > 2 {
					p, sev = 0.6, SeverityMedium
				}
				f := NewFinding(d.Name(),
					fmt.Sprintf("Column %s rows %d-%d interrupt a copied formula block",
						refs.ColumnName(cs.col), start, row-1),
					p, sev).
					WithLocation(sheet.Name + "!" + refs.Format(start, cs.col)).
					WithDetails(map[string]any{
						"column":    refs.ColumnName(cs.col),
						"gap_cells": gap,
					}).
					WithFix("Re-copy the formula over the interrupted rows")
				out = append(out, f)
			}
		}
	}
	return out
}

// bracketsMatch checks that the formulas immediately bracketing a gap
// share a shape; dissimilar neighbors mean the gap separates two
// unrelated blocks.
func (CopyPasteFormulaGaps) bracketsMatch(cs columnScan, beforeRow, afterRow int) bool {
	before, okB := cs.occupiedByRow(beforeRow)
	after, okA := cs.occupiedByRow(afterRow)
	if !okB || !okA || !before.IsFormula() || !after.IsFormula() {
		return false
	}
	return formula.Similarity(before.Formula, after.Formula) >= similarityThreshold
}

// InconsistentFormulaApplication reports columns that mix formulas and
// hardcoded values in comparable proportions. Either half the column
// lost its formulas or half the column was never calculated.
type InconsistentFormulaApplication struct{}

func (InconsistentFormulaApplication) Name() string { return "inconsistent_formula_application" }
func (InconsistentFormulaApplication) Description() string {
	return "Columns mixing calculated and hardcoded values"
}
func (InconsistentFormulaApplication) Severity() Severity { return SeverityHigh }

func (d InconsistentFormulaApplication) Detect(wb *models.Workbook) []Finding {
	var out []Finding
	for _, sheet := range wb.Sheets {
		for _, cs := range scanColumns(sheet) {
			n := len(cs.cells)
			if n < 5 || len(cs.formulas) == 0 || len(cs.hard) == 0 {
				continue
			}
			fr := float64(len(cs.formulas)) / float64(n)
			hr := float64(len(cs.hard)) / float64(n)
			if fr < 0.2 || hr < 0.2 {
				continue
			}
			p := 0.5
			sev := SeverityMedium
			if fr >= 0.4 && hr >= 0.4 {
				p, sev = 0.9, d.Severity()
			}
			f := NewFinding(d.Name(),
				fmt.Sprintf("Column %s mixes %d formulas with %d hardcoded values",
					refs.ColumnName(cs.col), len(cs.formulas), len(cs.hard)),
				p, sev).
				WithLocation(sheet.Name + "!" + refs.ColumnName(cs.col)).
				WithDetails(map[string]any{
					"column":          refs.ColumnName(cs.col),
					"formula_ratio":   fr,
					"hardcoded_ratio": hr,
					"formula_count":   len(cs.formulas),
					"hardcoded_count": len(cs.hard),
				}).
				WithFix("Apply one formula to the whole column or document the overrides")
			out = append(out, f)
		}
	}
	return out
}
