package output

import (
	"fmt"
	"os"
	"strings"

	"github.com/ukaji3/xlsniff-go/pkg/xlsniff/detect"
)

var severityMarkers = map[detect.Severity]string{
	detect.SeverityHigh:   "🔴",
	detect.SeverityMedium: "🟡",
	detect.SeverityLow:    "🟢",
}

// ToMarkdown renders a report as a human-readable Markdown document:
// summary counts first, then one section per detector that found
// something, in run order.
func ToMarkdown(rep *detect.Report) string {
	var b strings.Builder

	b.WriteString("# Spreadsheet Defect Report\n\n")
	if rep.Summary.SourcePath != "" {
		fmt.Fprintf(&b, "**File:** `%s`\n\n", rep.Summary.SourcePath)
	}
	fmt.Fprintf(&b, "**Run:** %s at %s\n\n", rep.Summary.RunID, rep.Summary.Timestamp)

	b.WriteString("## Summary\n\n")
	fmt.Fprintf(&b, "- Findings above threshold %.2f: **%d**\n",
		rep.Summary.Threshold, rep.Summary.TotalFindings)
	for _, sev := range []detect.Severity{detect.SeverityHigh, detect.SeverityMedium, detect.SeverityLow} {
		fmt.Fprintf(&b, "- %s %s: %d\n", severityMarkers[sev], sev, rep.Summary.BySeverity[sev])
	}
	b.WriteString("\n## Issue breakdown\n\n")
	b.WriteString("| Detector | Findings |\n|---|---|\n")
	for _, name := range rep.Order {
		fmt.Fprintf(&b, "| %s | %d |\n", name, len(rep.Detectors[name]))
	}
	b.WriteString("\n")

	for _, name := range rep.Order {
		findings := rep.Detectors[name]
		if len(findings) == 0 {
			continue
		}
		fmt.Fprintf(&b, "## %s\n\n", name)
		for _, f := range findings {
			fmt.Fprintf(&b, "- %s **%.0f%%** %s", severityMarkers[f.Severity], f.Probability*100, f.Description)
			if f.Location != "" {
				fmt.Fprintf(&b, " _(at %s)_", f.Location)
			}
			b.WriteString("\n")
			if f.SuggestedFix != "" {
				fmt.Fprintf(&b, "  - Fix: %s\n", f.SuggestedFix)
			}
		}
		b.WriteString("\n")
	}

	return b.String()
}

// WriteMarkdown renders a report to a file.
func WriteMarkdown(rep *detect.Report, path string) error {
	return os.WriteFile(path, []byte(ToMarkdown(rep)), 0644)
}
