package detect

import (
	"strings"
	"testing"
)

func TestLookupFunctionAnchoringLookupValue(t *testing.T) {
	wb := buildWorkbook(buildSheet("Sheet1", []testCell{
		form(2, 2, "x", "=VLOOKUP(A2,$D$1:$E$10,2,FALSE)"),
	}))

	findings := LookupFunctionAnchoring{}.Detect(wb)
	if len(findings) != 1 {
		t.Fatalf("Expected 1 finding, got %d", len(findings))
	}
	f := findings[0]
	if f.Probability != 0.75 {
		t.Errorf("probability = %v, expected 0.75", f.Probability)
	}
	if f.Details["parameter"] != "lookup_value" {
		t.Errorf("parameter = %v", f.Details["parameter"])
	}
	// No copy direction: default to a column lock.
	if f.Details["expected_reference"] != "$A2" {
		t.Errorf("expected_reference = %v", f.Details["expected_reference"])
	}
	if f.Details["function_type"] != "VLOOKUP" {
		t.Errorf("function_type = %v", f.Details["function_type"])
	}
}

func TestLookupFunctionAnchoringTableArray(t *testing.T) {
	wb := buildWorkbook(buildSheet("Sheet1", []testCell{
		form(2, 2, "x", "=VLOOKUP($A2,D1:E10,2,FALSE)"),
	}))

	findings := LookupFunctionAnchoring{}.Detect(wb)
	if len(findings) != 1 {
		t.Fatalf("Expected 1 finding, got %d", len(findings))
	}
	f := findings[0]
	if f.Probability != 0.85 {
		t.Errorf("probability = %v, expected 0.85", f.Probability)
	}
	if f.Details["parameter"] != "table_array" {
		t.Errorf("parameter = %v", f.Details["parameter"])
	}
	if f.Details["expected_reference"] != "$D$1:$E$10" {
		t.Errorf("expected_reference = %v", f.Details["expected_reference"])
	}
}

func TestLookupFunctionAnchoringCopyDown(t *testing.T) {
	wb := buildWorkbook(buildSheet("Sheet1", []testCell{
		form(2, 2, "x", "=VLOOKUP(A2,$D$1:$E$10,2,FALSE)"),
		form(3, 2, "x", "=VLOOKUP(A3,$D$1:$E$10,2,FALSE)"),
		form(4, 2, "x", "=VLOOKUP(A4,$D$1:$E$10,2,FALSE)"),
	}))

	findings := LookupFunctionAnchoring{}.Detect(wb)
	if len(findings) != 3 {
		t.Fatalf("Expected 3 findings, got %d", len(findings))
	}
	for _, f := range findings {
		if f.Details["copy_direction"] != "down" {
			t.Errorf("copy_direction = %v, expected down", f.Details["copy_direction"])
		}
		expected := f.Details["expected_reference"].(string)
		if !strings.Contains(expected, "$") || strings.HasPrefix(expected, "$") {
			t.Errorf("expected row lock, got %q", expected)
		}
	}
}

func TestLookupFunctionAnchoringIndexMatch(t *testing.T) {
	wb := buildWorkbook(buildSheet("Sheet1", []testCell{
		form(2, 2, "x", "=INDEX($D$1:$D$10,MATCH(A2,$E$1:$E$10,0))"),
	}))

	findings := LookupFunctionAnchoring{}.Detect(wb)
	if len(findings) != 1 {
		t.Fatalf("Expected 1 finding, got %d", len(findings))
	}
	if findings[0].Details["function_type"] != "INDEX/MATCH" {
		t.Errorf("function_type = %v", findings[0].Details["function_type"])
	}
}

func TestLookupFunctionAnchoringNonLookup(t *testing.T) {
	wb := buildWorkbook(buildSheet("Sheet1", []testCell{
		form(2, 2, "x", "=SUM(A1:A10)"),
	}))
	if findings := (LookupFunctionAnchoring{}).Detect(wb); len(findings) != 0 {
		t.Errorf("non-lookup formula must pass, got %d findings", len(findings))
	}
}

func TestArrayFormulaAnchoringLockedRange(t *testing.T) {
	wb := buildWorkbook(buildSheet("Sheet1", []testCell{
		form(1, 3, "x", "=UNIQUE($A$1:$A$50)"),
	}))

	findings := ArrayFormulaAnchoring{}.Detect(wb)
	if len(findings) != 1 {
		t.Fatalf("Expected 1 finding, got %d", len(findings))
	}
	f := findings[0]
	if f.Probability < 0.65 || f.Probability > 0.75 {
		t.Errorf("probability = %v, expected in [0.65, 0.75]", f.Probability)
	}
	if f.Details["array_function"] != "UNIQUE" {
		t.Errorf("array_function = %v", f.Details["array_function"])
	}
	if f.Details["range_size"] != 50 {
		t.Errorf("range_size = %v", f.Details["range_size"])
	}
}

func TestArrayFormulaAnchoringSmallRangeOK(t *testing.T) {
	wb := buildWorkbook(buildSheet("Sheet1", []testCell{
		form(1, 3, "x", "=UNIQUE($A$1:$A$5)"),
	}))
	if findings := (ArrayFormulaAnchoring{}).Detect(wb); len(findings) != 0 {
		t.Errorf("small locked range must pass, got %d findings", len(findings))
	}
}

func TestArrayFormulaAnchoringRelativeOK(t *testing.T) {
	wb := buildWorkbook(buildSheet("Sheet1", []testCell{
		form(1, 3, "x", "=UNIQUE(A1:A50)"),
	}))
	if findings := (ArrayFormulaAnchoring{}).Detect(wb); len(findings) != 0 {
		t.Errorf("relative range must pass, got %d findings", len(findings))
	}
}

func TestArrayFormulaAnchoringSumIf(t *testing.T) {
	wb := buildWorkbook(buildSheet("Sheet1", []testCell{
		form(1, 3, "x", "{=SUM(IF($A$1:$A$100>0,$B$1:$B$100))}"),
	}))

	findings := ArrayFormulaAnchoring{}.Detect(wb)
	if len(findings) != 2 {
		t.Fatalf("Expected 2 findings (one per range), got %d", len(findings))
	}
	for _, f := range findings {
		if f.Details["array_function"] != "SUM(IF)" {
			t.Errorf("array_function = %v", f.Details["array_function"])
		}
	}
}
