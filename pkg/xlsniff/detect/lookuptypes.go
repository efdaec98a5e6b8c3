package detect

import (
	"fmt"
	"strconv"

	"github.com/ukaji3/xlsniff-go/pkg/xlsniff/formula"
	"github.com/ukaji3/xlsniff-go/pkg/xlsniff/models"
	"github.com/ukaji3/xlsniff-go/pkg/xlsniff/refs"
)

// LookupTableTypeInconsistencies reports lookup ranges whose key
// column mixes value types. VLOOKUP(5, ...) never matches "5", so
// even a small minority of wrong-typed keys silently drops matches.
type LookupTableTypeInconsistencies struct{}

func (LookupTableTypeInconsistencies) Name() string {
	return "data_type_inconsistencies_in_lookup_tables"
}
func (LookupTableTypeInconsistencies) Description() string {
	return "Lookup key columns mixing numeric and text values"
}
func (LookupTableTypeInconsistencies) Severity() Severity { return SeverityHigh }

func (d LookupTableTypeInconsistencies) Detect(wb *models.Workbook) []Finding {
	var out []Finding
	for _, sheet := range wb.Sheets {
		for _, c := range sheet.Formulas() {
			if !formula.HasFunction(c.Formula, formula.Lookups) {
				continue
			}
			for _, tok := range formula.Ranges(c.Formula) {
				rng, ok := refs.ParseRange(tok)
				if !ok {
					continue
				}
				target := resolveSheet(wb, sheet, rng.Start)
				if target == nil {
					continue
				}
				f, flagged := d.analyzeKeyColumn(target, sheet, c, tok, rng)
				if flagged {
					out = append(out, f)
				}
			}
		}
	}
	return out
}

func (d LookupTableTypeInconsistencies) analyzeKeyColumn(target, home *models.Sheet, c models.Cell, tok string, rng refs.Range) (Finding, bool) {
	numbers, texts, numericTexts := 0, 0, 0
	for row := rng.Start.Row; row <= rng.End.Row; row++ {
		cell, ok := target.Cell(row, rng.Start.Col)
		if !ok || cell.Value == "" {
			continue
		}
		switch cell.Type {
		case models.TypeNumber, models.TypeDate:
			numbers++
		case models.TypeText:
			texts++
			if _, err := strconv.ParseFloat(cell.Value, 64); err == nil {
				numericTexts++
			}
		}
	}
	total := numbers + texts
	if total == 0 {
		return Finding{}, false
	}

	minority := numbers
	if texts < numbers {
		minority = texts
	}

	var p float64
	sev := d.Severity()
	switch {
	case minority > 0:
		ratio := float64(minority) / float64(total)
		switch {
		case ratio > 0.1:
			p = 0.9
		case ratio > 0.01:
			p = 0.5
			sev = SeverityMedium
		default:
			p = 0.2
			sev = SeverityLow
		}
	case numbers == 0 && texts > 0 && numericTexts == texts:
		// Numbers stored as text: consistent, but numeric lookups
		// against the column will miss.
		p = 0.4
		sev = SeverityMedium
	default:
		return Finding{}, false
	}

	loc := home.Name + "!" + refs.Format(c.Row, c.Col)
	f := NewFinding(d.Name(),
		fmt.Sprintf("Lookup range %s key column mixes %d numeric and %d text values", tok, numbers, texts),
		p, sev).
		WithLocation(loc).
		WithDetails(map[string]any{
			"formula":       c.Formula,
			"lookup_range":  tok,
			"number_count":  numbers,
			"text_count":    texts,
			"numeric_texts": numericTexts,
		}).
		WithFix("Normalize the key column to a single data type")
	return f, true
}
