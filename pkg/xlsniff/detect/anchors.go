package detect

import (
	"fmt"

	"github.com/ukaji3/xlsniff-go/pkg/xlsniff/formula"
	"github.com/ukaji3/xlsniff-go/pkg/xlsniff/models"
	"github.com/ukaji3/xlsniff-go/pkg/xlsniff/refs"
)

// MissingDollarSignAnchors reports fully-relative references to cells
// that should be locked: header cells and recurring constants shift
// away when the formula is copied.
type MissingDollarSignAnchors struct{}

func (MissingDollarSignAnchors) Name() string { return "missing_dollar_sign_anchors" }
func (MissingDollarSignAnchors) Description() string {
	return "Relative references to headers or constants that need anchoring"
}
func (MissingDollarSignAnchors) Severity() Severity { return SeverityHigh }

func (d MissingDollarSignAnchors) Detect(wb *models.Workbook) []Finding {
	var out []Finding
	for _, sheet := range wb.Sheets {
		for _, c := range sheet.Formulas() {
			for _, ref := range parseRefs(c.Formula) {
				if ref.ColAbs || ref.RowAbs {
					continue
				}
				var p float64
				sev := d.Severity()
				var reason string
				switch {
				case isHeaderRef(wb, sheet, ref):
					p, reason = 0.9, "header"
				case isRecurringConstant(wb, sheet, ref):
					p, sev, reason = 0.7, SeverityMedium, "recurring constant"
				default:
					continue
				}
				expected := ref.With(true, true)
				f := NewFinding(d.Name(),
					fmt.Sprintf("Reference %s to a %s is not anchored; copying the formula will shift it (should be %s)",
						ref.String(), reason, expected.String()),
					p, sev).
					WithLocation(sheet.Name + "!" + refs.Format(c.Row, c.Col)).
					WithDetails(map[string]any{
						"formula":            c.Formula,
						"reference":          ref.String(),
						"expected_reference": expected.String(),
						"reason":             reason,
					}).
					WithFix(fmt.Sprintf("Anchor the reference as %s", expected.String()))
				out = append(out, f)
			}
		}
	}
	return out
}

// WrongRowColumnAnchoring reports partially anchored references whose
// anchor flags do not match the expected form: headers expect a row
// lock, recurring constants expect a full lock.
type WrongRowColumnAnchoring struct{}

func (WrongRowColumnAnchoring) Name() string { return "wrong_row_column_anchoring" }
func (WrongRowColumnAnchoring) Description() string {
	return "References anchored on the wrong axis for their target"
}
func (WrongRowColumnAnchoring) Severity() Severity { return SeverityHigh }

func (d WrongRowColumnAnchoring) Detect(wb *models.Workbook) []Finding {
	var out []Finding
	for _, sheet := range wb.Sheets {
		for _, c := range sheet.Formulas() {
			for _, ref := range parseRefs(c.Formula) {
				if !ref.ColAbs && !ref.RowAbs {
					continue
				}
				var expected refs.CellRef
				var p float64
				sev := d.Severity()
				switch {
				case isHeaderRef(wb, sheet, ref):
					if ref.RowAbs {
						continue
					}
					expected = ref.With(false, true)
					p = 0.9
				case isRecurringConstant(wb, sheet, ref):
					if ref.ColAbs && ref.RowAbs {
						continue
					}
					expected = ref.With(true, true)
					p = 0.7
					sev = SeverityMedium
				default:
					continue
				}
				f := NewFinding(d.Name(),
					fmt.Sprintf("Reference %s is %s but its target expects %s (%s)",
						ref.String(), anchorForm(ref), anchorForm(expected), expected.String()),
					p, sev).
					WithLocation(sheet.Name + "!" + refs.Format(c.Row, c.Col)).
					WithDetails(map[string]any{
						"formula":            c.Formula,
						"current_reference":  ref.String(),
						"expected_reference": expected.String(),
					}).
					WithFix(fmt.Sprintf("Re-anchor the reference as %s", expected.String()))
				out = append(out, f)
			}
		}
	}
	return out
}

// OverAnchoredReferences reports fully-locked references to varying
// values inside a copied formula pattern: the lock pins every copy to
// one cell when each copy should track its own row.
type OverAnchoredReferences struct{}

func (OverAnchoredReferences) Name() string { return "over_anchored_references" }
func (OverAnchoredReferences) Description() string {
	return "Fully locked references that should stay relative in a copied pattern"
}
func (OverAnchoredReferences) Severity() Severity { return SeverityMedium }

func (d OverAnchoredReferences) Detect(wb *models.Workbook) []Finding {
	var out []Finding
	for _, sheet := range wb.Sheets {
		for _, c := range sheet.Formulas() {
			if !inCopiedPattern(sheet, c) {
				continue
			}
			for _, ref := range parseRefs(c.Formula) {
				if !ref.ColAbs || !ref.RowAbs {
					continue
				}
				if isHeaderRef(wb, sheet, ref) || isRecurringConstant(wb, sheet, ref) {
					continue
				}
				target := resolveSheet(wb, sheet, ref)
				if target == nil {
					continue
				}
				if _, ok := target.Cell(ref.Row, ref.Col); !ok {
					continue
				}
				relative := ref.With(false, false)
				f := NewFinding(d.Name(),
					fmt.Sprintf("Reference %s is fully locked but its target varies; it should be relative (%s)",
						ref.String(), relative.String()),
					0.6, d.Severity()).
					WithLocation(sheet.Name + "!" + refs.Format(c.Row, c.Col)).
					WithDetails(map[string]any{
						"formula":                 c.Formula,
						"over_anchored_reference": ref.String(),
						"expected_reference":      relative.String(),
					}).
					WithFix(fmt.Sprintf("Remove the anchors: use %s", relative.String()))
				out = append(out, f)
			}
		}
	}
	return out
}

// inCopiedPattern reports whether an adjacent cell carries a formula
// of the same shape. A lone formula is never flagged for
// over-anchoring: without copies, the locks are harmless.
func inCopiedPattern(sheet *models.Sheet, c models.Cell) bool {
	for _, d := range []struct{ dr, dc int }{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
		if n, ok := sheet.Cell(c.Row+d.dr, c.Col+d.dc); ok && n.IsFormula() {
			if formula.Similarity(c.Formula, n.Formula) >= similarityThreshold {
				return true
			}
		}
	}
	return false
}

// InconsistentAnchoringInRanges reports ranges whose two boundaries
// carry different anchor forms, e.g. SUM($A$1:A10): copying such a
// formula stretches one end while the other stays pinned.
type InconsistentAnchoringInRanges struct{}

func (InconsistentAnchoringInRanges) Name() string { return "inconsistent_anchoring_in_ranges" }
func (InconsistentAnchoringInRanges) Description() string {
	return "Range references with mismatched anchoring on their boundaries"
}
func (InconsistentAnchoringInRanges) Severity() Severity { return SeverityMedium }

func (d InconsistentAnchoringInRanges) Detect(wb *models.Workbook) []Finding {
	var out []Finding
	for _, sheet := range wb.Sheets {
		for _, c := range sheet.Formulas() {
			critical := formula.HasFunction(c.Formula, formula.Calculations) ||
				formula.HasFunction(c.Formula, formula.Lookups)
			for _, tok := range formula.Ranges(c.Formula) {
				rng, ok := refs.ParseRange(tok)
				if !ok {
					continue
				}
				if rng.Start.ColAbs == rng.End.ColAbs && rng.Start.RowAbs == rng.End.RowAbs {
					continue
				}
				p := 0.6
				if critical {
					p = 0.8
				}
				f := NewFinding(d.Name(),
					fmt.Sprintf("Range %s anchors its start (%s) differently from its end (%s)",
						tok, anchorForm(rng.Start), anchorForm(rng.End)),
					p, d.Severity()).
					WithLocation(sheet.Name + "!" + refs.Format(c.Row, c.Col)).
					WithDetails(map[string]any{
						"formula":            c.Formula,
						"inconsistent_range": tok,
					}).
					WithFix("Anchor both range boundaries the same way")
				out = append(out, f)
			}
		}
	}
	return out
}
