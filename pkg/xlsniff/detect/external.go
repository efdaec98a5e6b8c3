package detect

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ukaji3/xlsniff-go/pkg/xlsniff/models"
	"github.com/ukaji3/xlsniff-go/pkg/xlsniff/refs"
)

// ExternalDataConnectionFailures audits every external dependency of a
// workbook: linked files, data connections and the error values their
// failures leave behind. Each dependency yields one finding so the
// report lists verified links alongside broken ones.
type ExternalDataConnectionFailures struct{}

func (ExternalDataConnectionFailures) Name() string { return "external_data_connection_failures" }
func (ExternalDataConnectionFailures) Description() string {
	return "External links, stale connections and leftover error values"
}
func (ExternalDataConnectionFailures) Severity() Severity { return SeverityHigh }

const staleConnectionAge = 30 * 24 * time.Hour

var errorLiterals = map[string]bool{
	"#REF!": true, "#VALUE!": true, "#N/A": true,
	"#NAME?": true, "#DIV/0!": true, "#NULL!": true, "#NUM!": true,
}

func (d ExternalDataConnectionFailures) Detect(wb *models.Workbook) []Finding {
	var out []Finding

	for _, link := range wb.ExternalLinks {
		switch {
		case strings.Contains(link.Target, "://"):
			f := NewFinding(d.Name(),
				fmt.Sprintf("External link %s cannot be verified offline", link.Target),
				0.5, SeverityMedium).
				WithLocation(link.Target).
				WithDetails(map[string]any{"target": link.Target, "status": "unverifiable"}).
				WithFix("Refresh the link and check the remote source is still served")
			out = append(out, f)
		case fileExists(link.Target):
			f := NewFinding(d.Name(),
				fmt.Sprintf("External link %s resolves to an existing file", link.Target),
				0.1, SeverityLow).
				WithLocation(link.Target).
				WithDetails(map[string]any{"target": link.Target, "status": "verified"})
			out = append(out, f)
		default:
			f := NewFinding(d.Name(),
				fmt.Sprintf("External link %s points to a missing file", link.Target),
				0.95, d.Severity()).
				WithLocation(link.Target).
				WithDetails(map[string]any{"target": link.Target, "status": "missing"}).
				WithFix("Restore the linked file or break the link and keep the values")
			out = append(out, f)
		}
	}

	for _, conn := range wb.Connections {
		if conn.LastRefresh.IsZero() {
			f := NewFinding(d.Name(),
				fmt.Sprintf("Connection %s has no recorded refresh", conn.Name),
				0.5, SeverityMedium).
				WithLocation(conn.Name).
				WithDetails(map[string]any{"connection": conn.Name, "status": "never refreshed"}).
				WithFix("Refresh the connection and confirm it still reaches its source")
			out = append(out, f)
			continue
		}
		age := time.Since(conn.LastRefresh)
		if age > staleConnectionAge {
			f := NewFinding(d.Name(),
				fmt.Sprintf("Connection %s was last refreshed %d days ago", conn.Name, int(age.Hours()/24)),
				0.65, SeverityMedium).
				WithLocation(conn.Name).
				WithDetails(map[string]any{
					"connection":       conn.Name,
					"days_since_fresh": int(age.Hours() / 24),
				}).
				WithFix("Refresh the connection; its data may no longer match the source")
			out = append(out, f)
		} else {
			f := NewFinding(d.Name(),
				fmt.Sprintf("Connection %s refreshed recently", conn.Name),
				0.1, SeverityLow).
				WithLocation(conn.Name).
				WithDetails(map[string]any{
					"connection":       conn.Name,
					"days_since_fresh": int(age.Hours() / 24),
				})
			out = append(out, f)
		}
	}

	for _, sheet := range wb.Sheets {
		for _, c := range sheet.NonEmpty() {
			if !errorLiterals[strings.TrimSpace(c.Value)] {
				continue
			}
			f := NewFinding(d.Name(),
				fmt.Sprintf("Cell %s holds the error value %s", refs.Format(c.Row, c.Col), strings.TrimSpace(c.Value)),
				0.85, d.Severity()).
				WithLocation(sheet.Name + "!" + refs.Format(c.Row, c.Col)).
				WithDetails(map[string]any{"error_value": strings.TrimSpace(c.Value)}).
				WithFix("Trace the error back to the failed reference or connection")
			out = append(out, f)
		}
	}
	return out
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
