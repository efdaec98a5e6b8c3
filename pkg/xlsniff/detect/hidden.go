package detect

import (
	"fmt"

	"github.com/ukaji3/xlsniff-go/pkg/xlsniff/models"
	"github.com/ukaji3/xlsniff-go/pkg/xlsniff/refs"
)

// HiddenDataInRanges reports contiguous data blocks that contain
// hidden rows or columns whose values diverge from the visible data.
type HiddenDataInRanges struct{}

func (HiddenDataInRanges) Name() string { return "hidden_data_in_ranges" }
func (HiddenDataInRanges) Description() string {
	return "Hidden rows/columns inside data ranges that may contain incorrect data"
}
func (HiddenDataInRanges) Severity() Severity { return SeverityHigh }

func (d HiddenDataInRanges) Detect(wb *models.Workbook) []Finding {
	var out []Finding
	for _, sheet := range wb.Sheets {
		for _, band := range rowBands(sheet) {
			f, ok := d.analyzeBand(sheet, band)
			if ok {
				out = append(out, f)
			}
		}
	}
	return out
}

// rowBand is a maximal run of consecutive rows that each hold data.
type rowBand struct {
	startRow, endRow int
	minCol, maxCol   int
}

// rowBands splits the used range into contiguous row bands, the same
// banding the hidden-data analysis runs on.
func rowBands(sheet *models.Sheet) []rowBand {
	if sheet.MaxRow == 0 {
		return nil
	}
	occupied := make(map[int]bool)
	for _, c := range sheet.NonEmpty() {
		occupied[c.Row] = true
	}
	var bands []rowBand
	start := 0
	for row := 1; row <= sheet.MaxRow+1; row++ {
		if occupied[row] {
			if start == 0 {
				start = row
			}
			continue
		}
		if start != 0 {
			bands = append(bands, rowBand{startRow: start, endRow: row - 1, minCol: 1, maxCol: sheet.MaxCol})
			start = 0
		}
	}
	return bands
}

func (d HiddenDataInRanges) analyzeBand(sheet *models.Sheet, band rowBand) (Finding, bool) {
	var hiddenRows, hiddenCols []int
	for row := band.startRow; row <= band.endRow; row++ {
		if sheet.HiddenRows[row] {
			hiddenRows = append(hiddenRows, row)
		}
	}
	for col := band.minCol; col <= band.maxCol; col++ {
		if sheet.HiddenCols[col] {
			hiddenCols = append(hiddenCols, col)
		}
	}
	if len(hiddenRows) == 0 && len(hiddenCols) == 0 {
		return Finding{}, false
	}

	hiddenRowSet := make(map[int]bool, len(hiddenRows))
	for _, r := range hiddenRows {
		hiddenRowSet[r] = true
	}
	hiddenColSet := make(map[int]bool, len(hiddenCols))
	for _, c := range hiddenCols {
		hiddenColSet[c] = true
	}

	var visible, hidden []models.Cell
	for _, c := range sheet.NonEmpty() {
		if c.Row < band.startRow || c.Row > band.endRow {
			continue
		}
		if hiddenRowSet[c.Row] || hiddenColSet[c.Col] {
			hidden = append(hidden, c)
		} else {
			visible = append(visible, c)
		}
	}

	consistency := typeConsistency(visible, hidden)
	p := 0.3 + (1-consistency)*0.4
	if total := len(visible) + len(hidden); total > 0 {
		p += float64(len(hidden)) / float64(total) * 0.3
	}

	hiddenType := "columns"
	if len(hiddenRows) > 0 {
		hiddenType = "rows"
	}
	rangeStr := refs.Range{
		Start: refs.CellRef{Col: band.minCol, Row: band.startRow},
		End:   refs.CellRef{Col: band.maxCol, Row: band.endRow},
	}.String()

	f := NewFinding(d.Name(),
		fmt.Sprintf("Data range %s contains hidden %s with potentially inconsistent data", rangeStr, hiddenType),
		p, d.Severity()).
		WithLocation(sheet.Name + "!" + rangeStr).
		WithDetails(map[string]any{
			"hidden_rows":            hiddenRows,
			"hidden_cols":            hiddenCols,
			"hidden_type":            hiddenType,
			"visible_data_count":     len(visible),
			"hidden_data_count":      len(hidden),
			"data_consistency_score": consistency,
		}).
		WithFix("Review hidden data in range and ensure consistency with visible data")
	return f, true
}

// typeConsistency is the overlap of declared types between visible and
// hidden cells: 1.0 when either set is empty or the type sets match.
func typeConsistency(visible, hidden []models.Cell) float64 {
	if len(visible) == 0 || len(hidden) == 0 {
		return 1.0
	}
	vt := make(map[models.CellType]bool)
	for _, c := range visible {
		vt[c.Type] = true
	}
	ht := make(map[models.CellType]bool)
	for _, c := range hidden {
		ht[c.Type] = true
	}
	overlap := 0
	union := len(ht)
	for t := range vt {
		if ht[t] {
			overlap++
		} else {
			union++
		}
	}
	if union == 0 {
		return 1.0
	}
	return float64(overlap) / float64(union)
}
