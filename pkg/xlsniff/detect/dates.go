package detect

import (
	"fmt"
	"regexp"

	"github.com/ukaji3/xlsniff-go/pkg/xlsniff/models"
	"github.com/ukaji3/xlsniff-go/pkg/xlsniff/refs"
)

// textDatePatterns match the text shapes commonly typed in place of
// real dates: ISO, slashed, dotted and "1 Jan 2023" styles.
var textDatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\d{4}-\d{1,2}-\d{1,2}$`),
	regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{2,4}$`),
	regexp.MustCompile(`^\d{1,2}\.\d{1,2}\.\d{2,4}$`),
	regexp.MustCompile(`^\d{1,2}\s+[A-Za-z]{3,9}\.?\s+\d{2,4}$`),
	regexp.MustCompile(`^[A-Za-z]{3,9}\.?\s+\d{1,2},?\s+\d{2,4}$`),
}

func looksLikeTextDate(s string) bool {
	for _, p := range textDatePatterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}

// InconsistentDateFormats reports columns that mix date-typed cells
// with date-looking text. Mixing the two breaks sorting, filtering and
// date arithmetic silently.
type InconsistentDateFormats struct{}

func (InconsistentDateFormats) Name() string { return "inconsistent_date_formats" }
func (InconsistentDateFormats) Description() string {
	return "Columns mixing true dates with dates stored as text"
}
func (InconsistentDateFormats) Severity() Severity { return SeverityHigh }

func (d InconsistentDateFormats) Detect(wb *models.Workbook) []Finding {
	var out []Finding
	for _, sheet := range wb.Sheets {
		for col := 1; col <= sheet.MaxCol; col++ {
			cells := sheet.Column(col)
			if len(cells) == 0 {
				continue
			}
			dateCount := 0
			textDateCount := 0
			for _, c := range cells {
				switch {
				case c.Type == models.TypeDate:
					dateCount++
				case c.Type == models.TypeText && looksLikeTextDate(c.Value):
					textDateCount++
				}
			}
			if textDateCount == 0 {
				continue
			}

			mixed := dateCount > 0
			total := dateCount + textDateCount
			ratio := float64(textDateCount) / float64(total)
			var p float64
			sev := d.Severity()
			if mixed {
				// Any meaningful text share alongside real dates is
				// close to certain breakage.
				p = 0.7
				if ratio > 0.1 {
					p = 0.9 + 0.1*ratio
				}
			} else {
				// All text: consistent, but unusable as dates.
				p = 0.3 + 0.2*ratio
				if p > 0.5 {
					p = 0.5
				}
				sev = SeverityMedium
			}

			colName := refs.ColumnName(col)
			f := NewFinding(d.Name(),
				fmt.Sprintf("Column %s mixes %d date cells with %d text dates", colName, dateCount, textDateCount),
				p, sev).
				WithLocation(fmt.Sprintf("%s!%s:%s", sheet.Name, colName, colName)).
				WithDetails(map[string]any{
					"column":          colName,
					"date_count":      dateCount,
					"text_date_count": textDateCount,
					"mixed_types":     mixed,
				}).
				WithFix("Convert text dates to real date values with a consistent number format")
			out = append(out, f)
		}
	}
	return out
}
