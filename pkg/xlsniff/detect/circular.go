package detect

import (
	"fmt"
	"strings"

	"github.com/ukaji3/xlsniff-go/pkg/xlsniff/depgraph"
	"github.com/ukaji3/xlsniff-go/pkg/xlsniff/models"
)

// CircularNamedRanges reports reference cycles between defined names.
type CircularNamedRanges struct{}

func (CircularNamedRanges) Name() string { return "circular_named_ranges" }
func (CircularNamedRanges) Description() string {
	return "Named ranges that reference each other in a cycle"
}
func (CircularNamedRanges) Severity() Severity { return SeverityHigh }

func (d CircularNamedRanges) Detect(wb *models.Workbook) []Finding {
	if len(wb.NamedRanges) == 0 {
		return nil
	}
	g := depgraph.Build(wb.NamedRanges)
	var out []Finding
	for _, cycle := range g.Cycles() {
		p := g.CycleProbability(cycle)
		members := cycle[:len(cycle)-1]
		f := NewFinding(d.Name(),
			fmt.Sprintf("Circular reference detected between named ranges: %s", strings.Join(cycle, " -> ")),
			p, d.Severity()).
			WithLocation("NamedRanges:" + strings.Join(members, ",")).
			WithDetails(map[string]any{
				"cycle":        cycle,
				"cycle_length": len(cycle),
			}).
			WithFix("Break the cycle by replacing one named-range reference with a direct cell range")
		out = append(out, f)
	}
	return out
}
