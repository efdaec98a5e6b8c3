package detect

import (
	"fmt"

	"github.com/ukaji3/xlsniff-go/pkg/xlsniff/formula"
	"github.com/ukaji3/xlsniff-go/pkg/xlsniff/models"
	"github.com/ukaji3/xlsniff-go/pkg/xlsniff/refs"
	"github.com/ukaji3/xlsniff-go/pkg/xlsniff/regions"
)

// FormulaRangeVsDataRange reports lookup ranges that stop short of the
// data island they sit in. The lookup keeps working on the rows it
// covers, so the missing rows fail silently.
type FormulaRangeVsDataRange struct{}

func (FormulaRangeVsDataRange) Name() string { return "formula_range_vs_data_range_discrepancy" }
func (FormulaRangeVsDataRange) Description() string {
	return "Lookup ranges covering only part of their data island"
}
func (FormulaRangeVsDataRange) Severity() Severity { return SeverityMedium }

func (d FormulaRangeVsDataRange) Detect(wb *models.Workbook) []Finding {
	var out []Finding
	for _, sheet := range wb.Sheets {
		var islands []regions.Island
		scanned := false

		for _, c := range sheet.Formulas() {
			if !formula.HasFunction(c.Formula, formula.Lookups) {
				continue
			}
			for _, tok := range formula.Ranges(c.Formula) {
				rng, ok := refs.ParseRange(tok)
				if !ok || (rng.Start.Sheet != "" && rng.Start.Sheet != sheet.Name) {
					continue
				}
				if !scanned {
					islands = regions.Find(sheet, nil)
					scanned = true
				}
				island, ok := islandAt(islands, rng.Start.Row, rng.Start.Col)
				if !ok {
					continue
				}
				maxRow := island.Box.End.Row
				maxCol := island.Box.End.Col
				if rng.End.Row >= maxRow && rng.End.Col >= maxCol {
					continue
				}
				coverage := float64(rng.End.Row) / float64(maxRow)
				if coverage > 1 {
					coverage = 1
				}
				p := 0.5 + (1-coverage)*0.4
				f := NewFinding(d.Name(),
					fmt.Sprintf("Lookup range %s stops short of its data block ending at %s",
						tok, refs.Format(maxRow, maxCol)),
					p, d.Severity()).
					WithLocation(sheet.Name + "!" + refs.Format(c.Row, c.Col)).
					WithDetails(map[string]any{
						"formula":          c.Formula,
						"referenced_range": tok,
						"max_data_row":     maxRow,
						"max_data_col":     maxCol,
					}).
					WithFix(fmt.Sprintf("Extend the range to cover the data through row %d", maxRow))
				out = append(out, f)
			}
		}
	}
	return out
}

func islandAt(islands []regions.Island, row, col int) (regions.Island, bool) {
	for _, is := range islands {
		for _, c := range is.Cells {
			if c.Row == row && c.Col == col {
				return is, true
			}
		}
	}
	return regions.Island{}, false
}
