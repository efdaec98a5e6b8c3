package detect

import (
	"fmt"

	"github.com/ukaji3/xlsniff-go/pkg/xlsniff/formula"
	"github.com/ukaji3/xlsniff-go/pkg/xlsniff/models"
	"github.com/ukaji3/xlsniff-go/pkg/xlsniff/refs"
)

// LookupFunctionAnchoring reports lookup formulas whose parameters are
// anchored for the wrong copy pattern: the lookup value should track
// the copy direction while the table array stays fully locked.
type LookupFunctionAnchoring struct{}

func (LookupFunctionAnchoring) Name() string { return "lookup_function_anchoring" }
func (LookupFunctionAnchoring) Description() string {
	return "Lookup values and table arrays with anchoring unfit for copying"
}
func (LookupFunctionAnchoring) Severity() Severity { return SeverityHigh }

func (d LookupFunctionAnchoring) Detect(wb *models.Workbook) []Finding {
	var out []Finding
	for _, sheet := range wb.Sheets {
		for _, c := range sheet.Formulas() {
			fnType := lookupFunctionType(c.Formula)
			if fnType == "" {
				continue
			}
			dir := copyDirection(sheet, c)
			loc := sheet.Name + "!" + refs.Format(c.Row, c.Col)

			for _, ref := range parseRefs(c.Formula) {
				if ref.ColAbs || ref.RowAbs {
					continue
				}
				expected := ref.With(true, false)
				axis := "column-locked"
				if dir == CopyDown {
					expected = ref.With(false, true)
					axis = "row-locked"
				}
				f := NewFinding(d.Name(),
					fmt.Sprintf("%s lookup value %s should be %s (%s) so copies keep reading the right key",
						fnType, ref.String(), axis, expected.String()),
					0.75, d.Severity()).
					WithLocation(loc).
					WithDetails(map[string]any{
						"formula":            c.Formula,
						"function_type":      fnType,
						"parameter":          "lookup_value",
						"copy_direction":     string(dir),
						"current_reference":  ref.String(),
						"expected_reference": expected.String(),
					}).
					WithFix(fmt.Sprintf("Change the lookup value to %s", expected.String()))
				out = append(out, f)
			}

			for _, tok := range formula.Ranges(c.Formula) {
				rng, ok := refs.ParseRange(tok)
				if !ok {
					continue
				}
				if rng.Start.ColAbs && rng.Start.RowAbs && rng.End.ColAbs && rng.End.RowAbs {
					continue
				}
				locked := refs.Range{Start: rng.Start.With(true, true), End: rng.End.With(true, true)}
				f := NewFinding(d.Name(),
					fmt.Sprintf("%s table array %s should be fully locked (%s) so copies keep reading the same table",
						fnType, tok, locked.String()),
					0.85, d.Severity()).
					WithLocation(loc).
					WithDetails(map[string]any{
						"formula":            c.Formula,
						"function_type":      fnType,
						"parameter":          "table_array",
						"copy_direction":     string(dir),
						"current_reference":  tok,
						"expected_reference": locked.String(),
					}).
					WithFix(fmt.Sprintf("Lock the table array as %s", locked.String()))
				out = append(out, f)
			}
		}
	}
	return out
}

// lookupFunctionType names the lookup construct in a formula, or
// returns "" when the formula performs no lookup.
func lookupFunctionType(f string) string {
	fns := formula.Functions(f)
	hasIndex, hasMatch := false, false
	first := ""
	for _, fn := range fns {
		switch fn {
		case "INDEX":
			hasIndex = true
		case "MATCH":
			hasMatch = true
		}
		if first == "" && formula.Lookups[fn] {
			first = fn
		}
	}
	if hasIndex && hasMatch {
		return "INDEX/MATCH"
	}
	return first
}
