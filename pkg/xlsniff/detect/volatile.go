package detect

import (
	"fmt"

	"github.com/ukaji3/xlsniff-go/pkg/xlsniff/formula"
	"github.com/ukaji3/xlsniff-go/pkg/xlsniff/models"
	"github.com/ukaji3/xlsniff-go/pkg/xlsniff/refs"
)

// VolatileFunctions reports sheets where volatile calls (NOW, RAND,
// OFFSET, INDIRECT, ...) are frequent or feed many dependent cells,
// forcing full recalculation on every edit.
type VolatileFunctions struct{}

func (VolatileFunctions) Name() string { return "volatile_functions" }
func (VolatileFunctions) Description() string {
	return "Overuse of volatile functions that recalculate on every change"
}
func (VolatileFunctions) Severity() Severity { return SeverityMedium }

const highImpactDependents = 5

func (d VolatileFunctions) Detect(wb *models.Workbook) []Finding {
	var out []Finding
	for _, sheet := range wb.Sheets {
		formulas := sheet.Formulas()
		if len(formulas) == 0 {
			continue
		}

		volatileCalls := 0
		volatileCells := make(map[refs.Coord]bool)
		for _, c := range formulas {
			calls := 0
			for _, fn := range formula.Functions(c.Formula) {
				if formula.Volatile[fn] {
					calls++
				}
			}
			if calls > 0 {
				volatileCalls += calls
				volatileCells[refs.Coord{Row: c.Row, Col: c.Col}] = true
			}
		}
		if volatileCalls == 0 {
			continue
		}

		// Dependents of volatile cells: formulas that reference them.
		dependents := make(map[refs.Coord]int)
		for _, c := range formulas {
			for _, ref := range parseRefs(c.Formula) {
				if ref.Sheet != "" && ref.Sheet != sheet.Name {
					continue
				}
				coord := refs.Coord{Row: ref.Row, Col: ref.Col}
				if volatileCells[coord] {
					dependents[coord]++
				}
			}
		}
		highImpact := 0
		totalDependents := 0
		for _, n := range dependents {
			totalDependents += n
			if n >= highImpactDependents {
				highImpact++
			}
		}

		total := len(formulas)
		p := 0.2
		p += capAt(float64(volatileCalls)/30*0.3, 0.3)
		p += float64(volatileCalls) / float64(total) * 0.2
		p += capAt(float64(totalDependents)/20*0.6, 0.6)
		p += capAt(float64(total)/250*0.4, 0.4)
		if p > 0.9 {
			p = 0.9
		}

		f := NewFinding(d.Name(),
			fmt.Sprintf("Sheet %s uses %d volatile function calls across %d formulas", sheet.Name, volatileCalls, total),
			p, d.Severity()).
			WithLocation(sheet.Name).
			WithDetails(map[string]any{
				"total_volatile_functions": volatileCalls,
				"total_formulas":           total,
				"volatile_cells":           len(volatileCells),
				"high_impact_cells":        highImpact,
			}).
			WithFix("Replace volatile functions with static values or non-volatile alternatives (e.g. INDEX instead of OFFSET)")
		out = append(out, f)
	}
	return out
}

func capAt(v, max float64) float64 {
	if v > max {
		return max
	}
	return v
}
