package detect

import (
	"fmt"
	"strings"

	"github.com/ukaji3/xlsniff-go/pkg/xlsniff/formula"
	"github.com/ukaji3/xlsniff-go/pkg/xlsniff/models"
	"github.com/ukaji3/xlsniff-go/pkg/xlsniff/refs"
)

// CrossSheetAnchoring reports cross-sheet references whose anchoring
// does not survive the copy pattern around them: a column of copies
// needs a row lock, a row of copies needs a column lock, and only
// references into a real header block earn a full lock.
type CrossSheetAnchoring struct{}

func (CrossSheetAnchoring) Name() string { return "cross_sheet_anchoring_errors" }
func (CrossSheetAnchoring) Description() string {
	return "Cross-sheet references anchored for the wrong copy direction"
}
func (CrossSheetAnchoring) Severity() Severity { return SeverityMedium }

func (d CrossSheetAnchoring) Detect(wb *models.Workbook) []Finding {
	var out []Finding
	for _, sheet := range wb.Sheets {
		for _, c := range sheet.Formulas() {
			crossRefs := 0
			for _, ref := range parseRefs(c.Formula) {
				if ref.Sheet != "" && ref.Sheet != sheet.Name {
					crossRefs++
				}
			}
			if crossRefs == 0 && !formula.HasFunction(c.Formula, formula.Lookups) {
				continue
			}

			p := 0.55
			switch {
			case formula.HasFunction(c.Formula, formula.Lookups):
				p = 0.75
			case crossRefs >= 2:
				p = 0.65
			}
			loc := sheet.Name + "!" + refs.Format(c.Row, c.Col)
			dir := copyDirection(sheet, c)

			for _, ref := range parseRefs(c.Formula) {
				if ref.Sheet == "" || ref.Sheet == sheet.Name {
					continue
				}
				target := wb.Sheet(ref.Sheet)
				if target == nil {
					continue
				}
				if ref.ColAbs && ref.RowAbs && headerWithData(target, ref) {
					continue
				}
				var expected refs.CellRef
				switch dir {
				case CopyAcross:
					expected = ref.With(true, false)
				case CopyDown:
					expected = ref.With(false, true)
				default:
					if headerWithData(target, ref) {
						expected = ref.With(true, true)
					} else {
						expected = ref.With(false, true)
					}
				}
				if ref.ColAbs == expected.ColAbs && ref.RowAbs == expected.RowAbs {
					continue
				}
				out = append(out, d.finding(c, loc, ref.String(), expected.String(), p))
			}

			// A lookup's cross-sheet table array pinned with full locks
			// defeats the point of referencing a growing table.
			if formula.HasFunction(c.Formula, formula.Lookups) {
				for _, tok := range formula.Ranges(c.Formula) {
					rng, ok := refs.ParseRange(tok)
					if !ok || rng.Start.Sheet == "" || rng.Start.Sheet == sheet.Name {
						continue
					}
					if wb.Sheet(rng.Start.Sheet) == nil {
						continue
					}
					if !rng.Start.ColAbs || !rng.Start.RowAbs || !rng.End.ColAbs || !rng.End.RowAbs {
						continue
					}
					relative := refs.Range{
						Start: rng.Start.With(false, false),
						End:   rng.End.With(false, false),
					}
					out = append(out, d.finding(c, loc, tok, relative.String(), p))
				}
			}
		}
	}
	return out
}

func (d CrossSheetAnchoring) finding(c models.Cell, loc, current, expected string, p float64) Finding {
	return NewFinding(d.Name(),
		fmt.Sprintf("Wrong cross-sheet anchoring: %s should be %s", current, expected),
		p, d.Severity()).
		WithLocation(loc).
		WithDetails(map[string]any{
			"formula":               c.Formula,
			"cross_sheet_reference": current,
			"expected_reference":    expected,
			"expected_formula":      strings.Replace(c.Formula, current, expected, 1),
		}).
		WithFix(fmt.Sprintf("Update cross-sheet reference %s to %s", current, expected))
}

// headerWithData reports whether a reference points at a row-1 label
// that actually heads a data column. A lone row-1 cell with nothing
// below it is a value, not a header.
func headerWithData(target *models.Sheet, ref refs.CellRef) bool {
	if ref.Row != 1 {
		return false
	}
	if _, ok := target.Cell(1, ref.Col); !ok {
		return false
	}
	for _, c := range target.Column(ref.Col) {
		if c.Row > 1 && c.Value != "" {
			return true
		}
	}
	return false
}
