package detect

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ukaji3/xlsniff-go/pkg/xlsniff/formula"
	"github.com/ukaji3/xlsniff-go/pkg/xlsniff/models"
	"github.com/ukaji3/xlsniff-go/pkg/xlsniff/refs"
)

// ArrayFormulaSpillErrors reports #SPILL! cells and array formulas
// whose inferred spill footprint is blocked by occupied cells.
type ArrayFormulaSpillErrors struct{}

func (ArrayFormulaSpillErrors) Name() string { return "array_formula_spill_errors" }
func (ArrayFormulaSpillErrors) Description() string {
	return "Array formulas whose spill range is blocked or already failing"
}
func (ArrayFormulaSpillErrors) Severity() Severity { return SeverityHigh }

var sequenceArgs = regexp.MustCompile(`(?i)SEQUENCE\(\s*(\d+)\s*(?:,\s*(\d+))?`)

func (d ArrayFormulaSpillErrors) Detect(wb *models.Workbook) []Finding {
	var out []Finding
	for _, sheet := range wb.Sheets {
		for _, c := range sheet.NonEmpty() {
			loc := sheet.Name + "!" + refs.Format(c.Row, c.Col)

			if strings.TrimSpace(c.Value) == "#SPILL!" {
				f := NewFinding(d.Name(),
					fmt.Sprintf("Cell %s shows a #SPILL! error", refs.Format(c.Row, c.Col)),
					0.95, d.Severity()).
					WithLocation(loc).
					WithDetails(map[string]any{"error": "#SPILL!"}).
					WithFix("Clear the cells blocking the spill range")
				out = append(out, f)
				continue
			}

			if !c.IsFormula() || !formula.IsArrayFormula(c.Formula) {
				continue
			}
			rows, cols, ok := spillFootprint(c.Formula)
			if !ok || (rows <= 1 && cols <= 1) {
				continue
			}

			var conflicts []string
			footprint := 0
			for r := c.Row; r < c.Row+rows; r++ {
				for col := c.Col; col < c.Col+cols; col++ {
					if r == c.Row && col == c.Col {
						continue
					}
					footprint++
					if _, occupied := sheet.Cell(r, col); occupied {
						conflicts = append(conflicts, refs.Format(r, col))
					}
				}
			}
			if len(conflicts) == 0 || footprint == 0 {
				continue
			}
			blocked := float64(len(conflicts)) / float64(footprint)
			p := 0.7 + 0.25*blocked

			f := NewFinding(d.Name(),
				fmt.Sprintf("Array formula at %s cannot spill: %d of %d target cells are occupied",
					refs.Format(c.Row, c.Col), len(conflicts), footprint),
				p, d.Severity()).
				WithLocation(loc).
				WithDetails(map[string]any{
					"conflict_cells":  conflicts,
					"spill_rows":      rows,
					"spill_cols":      cols,
					"blocked_percent": blocked * 100,
				}).
				WithFix("Move the array formula or clear its spill range")
			out = append(out, f)
		}
	}
	return out
}

// spillFootprint infers the (rows, cols) a formula would populate.
// Aggregations collapse to a single cell; SEQUENCE footprints come
// from its literal arguments; other array functions inherit the shape
// of their first range argument.
func spillFootprint(f string) (int, int, bool) {
	fns := formula.Functions(f)
	if len(fns) > 0 && formula.Aggregations[fns[0]] {
		return 1, 1, true
	}
	if m := sequenceArgs.FindStringSubmatch(f); m != nil {
		rows, _ := strconv.Atoi(m[1])
		cols := 1
		if m[2] != "" {
			cols, _ = strconv.Atoi(m[2])
		}
		return rows, cols, true
	}
	for _, tok := range formula.Ranges(f) {
		if r, ok := refs.ParseRange(tok); ok {
			return r.Rows(), r.Cols(), true
		}
	}
	return 0, 0, false
}
