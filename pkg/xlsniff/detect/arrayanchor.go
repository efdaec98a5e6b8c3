package detect

import (
	"fmt"

	"github.com/ukaji3/xlsniff-go/pkg/xlsniff/formula"
	"github.com/ukaji3/xlsniff-go/pkg/xlsniff/models"
	"github.com/ukaji3/xlsniff-go/pkg/xlsniff/refs"
)

// ArrayFormulaAnchoring reports array formulas feeding on fully-locked
// ranges. An array construct already spans its input, so locking a
// large range usually means the formula was anchored by reflex and
// will not adapt when rows are added.
type ArrayFormulaAnchoring struct{}

func (ArrayFormulaAnchoring) Name() string { return "array_formula_anchoring" }
func (ArrayFormulaAnchoring) Description() string {
	return "Array formulas over-anchoring their input ranges"
}
func (ArrayFormulaAnchoring) Severity() Severity { return SeverityMedium }

// Locked ranges at or below this size are left alone; pinning a handful
// of cells is a style choice, not a defect.
const smallLockedRange = 10

func (d ArrayFormulaAnchoring) Detect(wb *models.Workbook) []Finding {
	var out []Finding
	for _, sheet := range wb.Sheets {
		for _, c := range sheet.Formulas() {
			fnName := arrayConstruct(c.Formula)
			if fnName == "" {
				continue
			}
			for _, tok := range formula.Ranges(c.Formula) {
				rng, ok := refs.ParseRange(tok)
				if !ok {
					continue
				}
				if !rng.Start.ColAbs || !rng.Start.RowAbs || !rng.End.ColAbs || !rng.End.RowAbs {
					continue
				}
				cells := rng.Cells()
				if cells <= smallLockedRange {
					continue
				}
				p := 0.65 + capAt(float64(cells)/1000*0.1, 0.1)
				relative := refs.Range{Start: rng.Start.With(false, false), End: rng.End.With(false, false)}
				f := NewFinding(d.Name(),
					fmt.Sprintf("%s input range %s is fully locked; it should be relative (%s) so the array tracks its data",
						fnName, tok, relative.String()),
					p, d.Severity()).
					WithLocation(sheet.Name + "!" + refs.Format(c.Row, c.Col)).
					WithDetails(map[string]any{
						"formula":         c.Formula,
						"array_function":  fnName,
						"range_reference": tok,
						"range_size":      cells,
					}).
					WithFix(fmt.Sprintf("Unlock the range: use %s", relative.String()))
				out = append(out, f)
			}
		}
	}
	return out
}

// arrayConstruct names the array construct driving a formula: a modern
// dynamic-array function, or the legacy SUM(IF) idiom. Returns "" for
// scalar formulas.
func arrayConstruct(f string) string {
	fns := formula.Functions(f)
	hasSum, hasIf := false, false
	for _, fn := range fns {
		if formula.ArrayFunctions[fn] {
			return fn
		}
		switch fn {
		case "SUM":
			hasSum = true
		case "IF":
			hasIf = true
		}
	}
	if hasSum && hasIf {
		return "SUM(IF)"
	}
	return ""
}
