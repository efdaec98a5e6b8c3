package detect

import (
	"fmt"
	"math"
	"strconv"

	"github.com/ukaji3/xlsniff-go/pkg/xlsniff/formula"
	"github.com/ukaji3/xlsniff-go/pkg/xlsniff/models"
	"github.com/ukaji3/xlsniff-go/pkg/xlsniff/refs"
)

// PrecisionErrors reports unrounded arithmetic over decimal values.
// Binary floating point cannot hold most decimal fractions exactly, so
// chained arithmetic and subtraction of nearly equal amounts drift in
// the last cents unless the formula rounds.
type PrecisionErrors struct{}

func (PrecisionErrors) Name() string { return "precision_errors_in_financial_calculations" }
func (PrecisionErrors) Description() string {
	return "Unrounded decimal arithmetic prone to floating point drift"
}
func (PrecisionErrors) Severity() Severity { return SeverityMedium }

var roundingFuncs = map[string]bool{
	"ROUND": true, "ROUNDUP": true, "ROUNDDOWN": true, "MROUND": true,
	"TRUNC": true, "INT": true, "FLOOR": true, "CEILING": true,
	"FLOOR.MATH": true, "CEILING.MATH": true,
}

func (d PrecisionErrors) Detect(wb *models.Workbook) []Finding {
	var out []Finding
	for _, sheet := range wb.Sheets {
		for _, c := range sheet.Formulas() {
			if formula.HasFunction(c.Formula, roundingFuncs) {
				continue
			}
			ops := arithmeticOps(c.Formula)
			if ops == 0 {
				continue
			}

			var values []float64
			decimals := 0
			for _, ref := range parseRefs(c.Formula) {
				target := resolveSheet(wb, sheet, ref)
				if target == nil {
					continue
				}
				cell, ok := target.Cell(ref.Row, ref.Col)
				if !ok || cell.Type != models.TypeNumber {
					continue
				}
				v, err := strconv.ParseFloat(cell.Value, 64)
				if err != nil {
					continue
				}
				values = append(values, v)
				if v != math.Trunc(v) {
					decimals++
				}
			}
			if decimals == 0 {
				continue
			}

			p := 0.6
			if ops >= 3 {
				p = 0.8
			}
			nearlyEqual := false
			if subtractionOfNearEquals(c.Formula, values) {
				nearlyEqual = true
				if p < 0.85 {
					p = 0.85
				}
			}

			f := NewFinding(d.Name(),
				fmt.Sprintf("Formula at %s runs %d unrounded operations over decimal values",
					refs.Format(c.Row, c.Col), ops),
				p, d.Severity()).
				WithLocation(sheet.Name + "!" + refs.Format(c.Row, c.Col)).
				WithDetails(map[string]any{
					"formula":          c.Formula,
					"operator_count":   ops,
					"decimal_operands": decimals,
					"nearly_equal":     nearlyEqual,
				}).
				WithFix("Wrap the calculation in ROUND(..., 2) at the point the value becomes money")
			out = append(out, f)
		}
	}
	return out
}

func arithmeticOps(f string) int {
	n := 0
	for _, op := range formula.Operators(f) {
		switch op {
		case "+", "-", "*", "/":
			n++
		}
	}
	return n
}

// subtractionOfNearEquals flags the classic catastrophic cancellation
// shape: two operands within 1% of each other joined by a minus.
func subtractionOfNearEquals(f string, values []float64) bool {
	hasMinus := false
	for _, op := range formula.Operators(f) {
		if op == "-" {
			hasMinus = true
		}
	}
	if !hasMinus || len(values) < 2 {
		return false
	}
	for i := 0; i < len(values); i++ {
		for j := i + 1; j < len(values); j++ {
			a, b := math.Abs(values[i]), math.Abs(values[j])
			larger := math.Max(a, b)
			if larger == 0 {
				continue
			}
			if math.Abs(values[i]-values[j])/larger < 0.01 {
				return true
			}
		}
	}
	return false
}
