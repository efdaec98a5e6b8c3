package detect

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ukaji3/xlsniff-go/pkg/xlsniff/models"
)

func TestExternalLinkMissingFile(t *testing.T) {
	wb := buildWorkbook(buildSheet("Sheet1", nil))
	wb.ExternalLinks = []models.ExternalLink{
		{Target: filepath.Join(t.TempDir(), "does-not-exist.xlsx")},
	}

	findings := ExternalDataConnectionFailures{}.Detect(wb)
	if len(findings) != 1 {
		t.Fatalf("Expected 1 finding, got %d", len(findings))
	}
	f := findings[0]
	if f.Probability != 0.95 {
		t.Errorf("probability = %v, expected 0.95", f.Probability)
	}
	if f.Details["status"] != "missing" {
		t.Errorf("status = %v", f.Details["status"])
	}
}

func TestExternalLinkExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "source.xlsx")
	if err := os.WriteFile(path, []byte("stub"), 0644); err != nil {
		t.Fatalf("failed to create fixture: %v", err)
	}

	wb := buildWorkbook(buildSheet("Sheet1", nil))
	wb.ExternalLinks = []models.ExternalLink{{Target: path}}

	findings := ExternalDataConnectionFailures{}.Detect(wb)
	if len(findings) != 1 {
		t.Fatalf("Expected 1 finding, got %d", len(findings))
	}
	f := findings[0]
	if f.Probability != 0.1 {
		t.Errorf("probability = %v, expected 0.1 for a verified link", f.Probability)
	}
	if f.Details["status"] != "verified" {
		t.Errorf("status = %v", f.Details["status"])
	}
}

func TestExternalLinkURL(t *testing.T) {
	wb := buildWorkbook(buildSheet("Sheet1", nil))
	wb.ExternalLinks = []models.ExternalLink{{Target: "https://example.com/data.xlsx"}}

	findings := ExternalDataConnectionFailures{}.Detect(wb)
	if len(findings) != 1 {
		t.Fatalf("Expected 1 finding, got %d", len(findings))
	}
	f := findings[0]
	if f.Probability != 0.5 {
		t.Errorf("probability = %v, expected 0.5 for an unverifiable URL", f.Probability)
	}
	if f.Details["status"] != "unverifiable" {
		t.Errorf("status = %v", f.Details["status"])
	}
}

func TestConnectionAges(t *testing.T) {
	wb := buildWorkbook(buildSheet("Sheet1", nil))
	wb.Connections = []models.DataConnection{
		{Name: "never"},
		{Name: "stale", LastRefresh: time.Now().Add(-60 * 24 * time.Hour)},
		{Name: "fresh", LastRefresh: time.Now().Add(-24 * time.Hour)},
	}

	findings := ExternalDataConnectionFailures{}.Detect(wb)
	if len(findings) != 3 {
		t.Fatalf("Expected 3 findings, got %d", len(findings))
	}
	byLoc := make(map[string]Finding)
	for _, f := range findings {
		byLoc[f.Location] = f
	}
	if byLoc["never"].Probability != 0.5 {
		t.Errorf("never-refreshed probability = %v, expected 0.5", byLoc["never"].Probability)
	}
	if byLoc["stale"].Probability != 0.65 {
		t.Errorf("stale probability = %v, expected 0.65", byLoc["stale"].Probability)
	}
	if days := byLoc["stale"].Details["days_since_fresh"]; days != 60 {
		t.Errorf("days_since_fresh = %v, expected 60", days)
	}
	if byLoc["fresh"].Probability != 0.1 {
		t.Errorf("fresh probability = %v, expected 0.1", byLoc["fresh"].Probability)
	}
}

func TestErrorLiteralCells(t *testing.T) {
	wb := buildWorkbook(buildSheet("Sheet1", []testCell{
		{row: 1, col: 1, value: "#REF!", typ: models.TypeError},
		{row: 2, col: 1, value: "#N/A", typ: models.TypeError},
		num(3, 1, "42"),
	}))

	findings := ExternalDataConnectionFailures{}.Detect(wb)
	if len(findings) != 2 {
		t.Fatalf("Expected 2 findings, got %d", len(findings))
	}
	for _, f := range findings {
		if f.Probability != 0.85 {
			t.Errorf("probability = %v, expected 0.85", f.Probability)
		}
	}
}

func TestExternalCleanWorkbook(t *testing.T) {
	wb := buildWorkbook(buildSheet("Sheet1", []testCell{num(1, 1, "42")}))
	if findings := (ExternalDataConnectionFailures{}).Detect(wb); len(findings) != 0 {
		t.Errorf("clean workbook must pass, got %d findings", len(findings))
	}
}
