package detect

import (
	"github.com/ukaji3/xlsniff-go/pkg/xlsniff/formula"
	"github.com/ukaji3/xlsniff-go/pkg/xlsniff/models"
	"github.com/ukaji3/xlsniff-go/pkg/xlsniff/refs"
)

// The anchoring detector family shares one expectation model: a
// referenced cell is expected fully locked when it is a header or a
// recurring constant, partially locked when the surrounding formulas
// show a copy direction, and relative otherwise.

// CopyDirection is the inferred direction a formula block was dragged.
type CopyDirection string

const (
	CopyAcross  CopyDirection = "across"
	CopyDown    CopyDirection = "down"
	CopyUnknown CopyDirection = "both"
)

const similarityThreshold = 0.7

// copyDirection compares the formulas of horizontal vs vertical
// neighbors of a formula cell. More similar neighbors in one
// direction wins; a tie or no matches yields CopyUnknown, which the
// detectors treat as "expect relative, do not flag".
func copyDirection(sheet *models.Sheet, cell models.Cell) CopyDirection {
	horizontal := 0
	vertical := 0
	for _, d := range []struct{ dr, dc int }{{0, -1}, {0, 1}} {
		if n, ok := sheet.Cell(cell.Row+d.dr, cell.Col+d.dc); ok && n.IsFormula() {
			if formula.Similarity(cell.Formula, n.Formula) >= similarityThreshold {
				horizontal++
			}
		}
	}
	for _, d := range []struct{ dr, dc int }{{-1, 0}, {1, 0}} {
		if n, ok := sheet.Cell(cell.Row+d.dr, cell.Col+d.dc); ok && n.IsFormula() {
			if formula.Similarity(cell.Formula, n.Formula) >= similarityThreshold {
				vertical++
			}
		}
	}
	switch {
	case horizontal > vertical:
		return CopyAcross
	case vertical > horizontal:
		return CopyDown
	default:
		return CopyUnknown
	}
}

// isHeaderRef reports whether the reference points at an occupied
// row-1 cell, on the target sheet when the reference is qualified.
func isHeaderRef(wb *models.Workbook, home *models.Sheet, ref refs.CellRef) bool {
	if ref.Row != 1 {
		return false
	}
	target := resolveSheet(wb, home, ref)
	if target == nil {
		return false
	}
	_, ok := target.Cell(ref.Row, ref.Col)
	return ok
}

// isRecurringConstant reports whether the referenced cell's value
// recurs in more than half of the non-empty cells of its column.
// Header rows are excluded from the ratio so a label does not count
// against its own column.
func isRecurringConstant(wb *models.Workbook, home *models.Sheet, ref refs.CellRef) bool {
	target := resolveSheet(wb, home, ref)
	if target == nil {
		return false
	}
	cell, ok := target.Cell(ref.Row, ref.Col)
	if !ok || cell.Value == "" {
		return false
	}
	total := 0
	same := 0
	for _, c := range target.Column(ref.Col) {
		if c.Row == 1 {
			continue
		}
		total++
		if c.Value == cell.Value {
			same++
		}
	}
	return total >= 2 && same*2 > total
}

// resolveSheet maps a reference's sheet qualifier to its sheet, or to
// the formula's home sheet for unqualified references. Nil when the
// qualifier names a missing sheet.
func resolveSheet(wb *models.Workbook, home *models.Sheet, ref refs.CellRef) *models.Sheet {
	if ref.Sheet == "" {
		return home
	}
	return wb.Sheet(ref.Sheet)
}

// parseRefs extracts the single-cell references of a formula as parsed
// CellRefs, skipping anything malformed.
func parseRefs(f string) []refs.CellRef {
	var out []refs.CellRef
	for _, tok := range formula.CellRefs(f) {
		if ref, ok := refs.Parse(tok); ok {
			out = append(out, ref)
		}
	}
	return out
}

// anchorForm classifies a reference's anchor flags for messages.
func anchorForm(ref refs.CellRef) string {
	switch {
	case ref.ColAbs && ref.RowAbs:
		return "fully locked"
	case ref.ColAbs:
		return "column-locked"
	case ref.RowAbs:
		return "row-locked"
	default:
		return "relative"
	}
}
