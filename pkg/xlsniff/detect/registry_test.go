package detect

import (
	"testing"

	"github.com/ukaji3/xlsniff-go/pkg/xlsniff/models"
)

type stubDetector struct {
	name     string
	findings []Finding
}

func (d stubDetector) Name() string                      { return d.name }
func (d stubDetector) Description() string               { return "stub" }
func (d stubDetector) Severity() Severity                { return SeverityMedium }
func (d stubDetector) Detect(*models.Workbook) []Finding { return d.findings }

type panicDetector struct{}

func (panicDetector) Name() string        { return "panic_detector" }
func (panicDetector) Description() string { return "always panics" }
func (panicDetector) Severity() Severity  { return SeverityHigh }
func (panicDetector) Detect(*models.Workbook) []Finding {
	panic("boom")
}

func TestRunThresholdValidation(t *testing.T) {
	r := NewRegistry()
	wb := buildWorkbook(buildSheet("Sheet1", nil))
	for _, bad := range []float64{-0.1, 1.5} {
		if _, err := r.Run(wb, bad); err == nil {
			t.Errorf("Run(threshold=%v) must fail", bad)
		}
	}
	if _, err := r.Run(wb, 0); err != nil {
		t.Errorf("Run(threshold=0) failed: %v", err)
	}
	if _, err := r.Run(wb, 1); err != nil {
		t.Errorf("Run(threshold=1) failed: %v", err)
	}
}

func TestRunFiltersByThreshold(t *testing.T) {
	d := stubDetector{name: "stub", findings: []Finding{
		NewFinding("stub", "low", 0.3, SeverityLow),
		NewFinding("stub", "mid", 0.6, SeverityMedium),
		NewFinding("stub", "high", 0.9, SeverityHigh),
	}}
	wb := buildWorkbook(buildSheet("Sheet1", nil))

	rep, err := NewRegistry(d).Run(wb, 0.5)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if got := len(rep.Detectors["stub"]); got != 2 {
		t.Errorf("Expected 2 findings above 0.5, got %d", got)
	}
	if rep.Summary.TotalFindings != 2 {
		t.Errorf("Summary total = %d, expected 2", rep.Summary.TotalFindings)
	}
	if rep.Summary.BySeverity[SeverityHigh] != 1 || rep.Summary.BySeverity[SeverityMedium] != 1 {
		t.Errorf("severity breakdown wrong: %v", rep.Summary.BySeverity)
	}
	if rep.Summary.ByDetector["stub"] != 2 {
		t.Errorf("per-detector count wrong: %v", rep.Summary.ByDetector)
	}
}

func TestRunThresholdMonotonic(t *testing.T) {
	d := stubDetector{name: "stub", findings: []Finding{
		NewFinding("stub", "a", 0.2, SeverityLow),
		NewFinding("stub", "b", 0.5, SeverityMedium),
		NewFinding("stub", "c", 0.8, SeverityHigh),
	}}
	wb := buildWorkbook(buildSheet("Sheet1", nil))

	prev := -1
	for _, th := range []float64{0.0, 0.3, 0.6, 0.9} {
		rep, err := NewRegistry(d).Run(wb, th)
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		if prev >= 0 && rep.Summary.TotalFindings > prev {
			t.Errorf("raising the threshold grew the report: %d -> %d", prev, rep.Summary.TotalFindings)
		}
		prev = rep.Summary.TotalFindings
	}
}

func TestRunIsolatesPanics(t *testing.T) {
	good := stubDetector{name: "good", findings: []Finding{
		NewFinding("good", "fine", 0.9, SeverityHigh),
	}}
	rep, err := NewRegistry(panicDetector{}, good).Run(buildWorkbook(buildSheet("Sheet1", nil)), 0.5)
	if err != nil {
		t.Fatalf("Run must survive a panicking detector: %v", err)
	}
	if len(rep.Detectors["panic_detector"]) != 0 {
		t.Error("panicking detector must record zero findings")
	}
	if len(rep.Detectors["good"]) != 1 {
		t.Error("detectors after the panic must still run")
	}
}

func TestRunProgressCallback(t *testing.T) {
	r := NewRegistry(
		stubDetector{name: "one"},
		stubDetector{name: "two"},
	)
	var names []string
	r.Progress = func(name string, done, total int) {
		names = append(names, name)
		if total != 2 {
			t.Errorf("total = %d, expected 2", total)
		}
		if done != len(names) {
			t.Errorf("done = %d after %d callbacks", done, len(names))
		}
	}
	if _, err := r.Run(buildWorkbook(buildSheet("Sheet1", nil)), 0.5); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(names) != 2 || names[0] != "one" || names[1] != "two" {
		t.Errorf("progress callbacks = %v", names)
	}
}

func TestNewFindingClamps(t *testing.T) {
	if f := NewFinding("x", "d", 1.7, SeverityHigh); f.Probability != 1 {
		t.Errorf("probability above 1 must clamp, got %v", f.Probability)
	}
	if f := NewFinding("x", "d", -0.3, SeverityLow); f.Probability != 0 {
		t.Errorf("probability below 0 must clamp, got %v", f.Probability)
	}
}

func TestDefaultRegistryNamesUnique(t *testing.T) {
	seen := make(map[string]bool)
	for _, d := range DefaultRegistry().Detectors() {
		if d.Name() == "" {
			t.Error("detector with empty name")
		}
		if seen[d.Name()] {
			t.Errorf("duplicate detector name %q", d.Name())
		}
		seen[d.Name()] = true
		if d.Description() == "" {
			t.Errorf("detector %q has no description", d.Name())
		}
	}
	if len(seen) != 23 {
		t.Errorf("Expected 23 built-in detectors, got %d", len(seen))
	}
}

func TestRunOrderPreserved(t *testing.T) {
	rep, err := DefaultRegistry().Run(buildWorkbook(buildSheet("Sheet1", nil)), 0.5)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(rep.Order) != 23 {
		t.Fatalf("Order has %d entries, expected 23", len(rep.Order))
	}
	for _, name := range rep.Order {
		if _, ok := rep.Detectors[name]; !ok {
			t.Errorf("ordered detector %q missing from results", name)
		}
	}
	if rep.Summary.RunID == "" {
		t.Error("run id must be set")
	}
}
