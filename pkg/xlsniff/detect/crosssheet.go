package detect

import (
	"fmt"
	"strings"

	"github.com/ukaji3/xlsniff-go/pkg/xlsniff/models"
	"github.com/ukaji3/xlsniff-go/pkg/xlsniff/refs"
)

// CrossSheetReferenceErrors reports formulas referencing missing
// sheets, cells outside a sheet's used range, broken #REF! targets
// and empty-but-valid cross-sheet targets.
type CrossSheetReferenceErrors struct{}

func (CrossSheetReferenceErrors) Name() string { return "cross_sheet_reference_errors" }
func (CrossSheetReferenceErrors) Description() string {
	return "Cross-sheet references to missing sheets, cells or empty targets"
}
func (CrossSheetReferenceErrors) Severity() Severity { return SeverityHigh }

func (d CrossSheetReferenceErrors) Detect(wb *models.Workbook) []Finding {
	var out []Finding
	for _, sheet := range wb.Sheets {
		for _, c := range sheet.Formulas() {
			loc := sheet.Name + "!" + refs.Format(c.Row, c.Col)

			if strings.Contains(c.Formula, "#REF!") {
				f := NewFinding(d.Name(),
					fmt.Sprintf("Formula at %s contains a broken #REF! reference", refs.Format(c.Row, c.Col)),
					0.95, d.Severity()).
					WithLocation(loc).
					WithDetails(map[string]any{"formula": c.Formula, "ref_error": true}).
					WithFix("Restore the deleted cells or rewrite the reference")
				out = append(out, f)
				continue
			}

			for _, ref := range parseRefs(c.Formula) {
				if ref.Sheet == "" || ref.Sheet == sheet.Name {
					continue
				}
				target := wb.Sheet(ref.Sheet)
				if target == nil {
					f := NewFinding(d.Name(),
						fmt.Sprintf("Formula at %s references missing sheet %q", refs.Format(c.Row, c.Col), ref.Sheet),
						0.95, d.Severity()).
						WithLocation(loc).
						WithDetails(map[string]any{"formula": c.Formula, "missing_sheet": ref.Sheet}).
						WithFix("Recreate the sheet or repoint the reference")
					out = append(out, f)
					continue
				}
				if ref.Row > target.MaxRow || ref.Col > target.MaxCol {
					f := NewFinding(d.Name(),
						fmt.Sprintf("Formula at %s references %s outside the used range of %s",
							refs.Format(c.Row, c.Col), refs.Format(ref.Row, ref.Col), ref.Sheet),
						0.7, d.Severity()).
						WithLocation(loc).
						WithDetails(map[string]any{"formula": c.Formula, "missing_cell": ref.String()}).
						WithFix("Check whether the referenced data was moved or deleted")
					out = append(out, f)
					continue
				}
				if _, occupied := target.Cell(ref.Row, ref.Col); !occupied {
					f := NewFinding(d.Name(),
						fmt.Sprintf("Formula at %s references empty cell %s!%s",
							refs.Format(c.Row, c.Col), ref.Sheet, refs.Format(ref.Row, ref.Col)),
						0.3, SeverityLow).
						WithLocation(loc).
						WithDetails(map[string]any{"formula": c.Formula, "empty_cell": ref.String()}).
						WithFix("Confirm the empty target is intentional")
					out = append(out, f)
				}
			}
		}
	}
	return out
}
