package detect

import (
	"fmt"
	"strings"

	"github.com/ukaji3/xlsniff-go/pkg/xlsniff/models"
	"github.com/ukaji3/xlsniff-go/pkg/xlsniff/refs"
)

// ConditionalFormattingOverlaps reports pairs of conditional
// formatting rules whose ranges overlap. Which rule wins on the shared
// cells depends on priority order, which nobody maintains on purpose.
type ConditionalFormattingOverlaps struct{}

func (ConditionalFormattingOverlaps) Name() string {
	return "conditional_formatting_overlap_conflicts"
}
func (ConditionalFormattingOverlaps) Description() string {
	return "Conditional formatting rules competing for the same cells"
}
func (ConditionalFormattingOverlaps) Severity() Severity { return SeverityHigh }

func (d ConditionalFormattingOverlaps) Detect(wb *models.Workbook) []Finding {
	var out []Finding
	for _, sheet := range wb.Sheets {
		rules := sheet.CondFormats
		for i := 0; i < len(rules); i++ {
			for j := i + 1; j < len(rules); j++ {
				if !condRangesOverlap(rules[i].Range, rules[j].Range) {
					continue
				}
				var p float64
				sev := d.Severity()
				var conflict string
				switch {
				case rules[i].Type != rules[j].Type:
					p, sev, conflict = 0.7, SeverityMedium, "different rule types"
				case rules[i].Format != rules[j].Format:
					p, conflict = 0.9, "conflicting formats"
				default:
					p, sev, conflict = 0.2, SeverityLow, "compatible formats"
				}
				f := NewFinding(d.Name(),
					fmt.Sprintf("Conditional formatting rules on %s and %s overlap with %s",
						rules[i].Range, rules[j].Range, conflict),
					p, sev).
					WithLocation(sheet.Name + "!" + rules[i].Range).
					WithDetails(map[string]any{
						"first_range":   rules[i].Range,
						"second_range":  rules[j].Range,
						"first_type":    rules[i].Type,
						"second_type":   rules[j].Type,
						"first_format":  rules[i].Format,
						"second_format": rules[j].Format,
					}).
					WithFix("Merge the rules or split their ranges so each cell has one owner")
				out = append(out, f)
			}
		}
	}
	return out
}

// condRangesOverlap compares two conditional formatting targets, each
// possibly a space-separated list of ranges.
func condRangesOverlap(a, b string) bool {
	for _, ta := range strings.Fields(a) {
		ra, ok := refs.ParseRange(ta)
		if !ok {
			continue
		}
		for _, tb := range strings.Fields(b) {
			rb, ok := refs.ParseRange(tb)
			if !ok {
				continue
			}
			if ra.Overlaps(rb) {
				return true
			}
		}
	}
	return false
}
