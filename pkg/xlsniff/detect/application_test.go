package detect

import "testing"

func TestCopyPasteFormulaGapsShortGap(t *testing.T) {
	wb := buildWorkbook(buildSheet("Sheet1", []testCell{
		form(2, 1, "1", "=B2*2"),
		form(3, 1, "1", "=B3*2"),
		num(4, 1, "99"),
		form(5, 1, "1", "=B5*2"),
		form(6, 1, "1", "=B6*2"),
	}))

	findings := CopyPasteFormulaGaps{}.Detect(wb)
	if len(findings) != 1 {
		t.Fatalf("Expected 1 finding, got %d", len(findings))
	}
	f := findings[0]
	if f.Probability != 0.8 {
		t.Errorf("probability = %v, expected 0.8 for a short gap", f.Probability)
	}
	gap, ok := f.Details["gap_cells"].([]int)
	if !ok || len(gap) != 1 || gap[0] != 4 {
		t.Errorf("gap_cells = %v", f.Details["gap_cells"])
	}
}

func TestCopyPasteFormulaGapsLongGap(t *testing.T) {
	wb := buildWorkbook(buildSheet("Sheet1", []testCell{
		form(2, 1, "1", "=B2*2"),
		form(3, 1, "1", "=B3*2"),
		num(4, 1, "99"),
		num(5, 1, "99"),
		num(6, 1, "99"),
		form(7, 1, "1", "=B7*2"),
		form(8, 1, "1", "=B8*2"),
	}))

	findings := CopyPasteFormulaGaps{}.Detect(wb)
	if len(findings) != 1 {
		t.Fatalf("Expected 1 finding, got %d", len(findings))
	}
	f := findings[0]
	if f.Probability != 0.6 {
		t.Errorf("probability = %v, expected 0.6 for a long gap", f.Probability)
	}
	if f.Severity != SeverityMedium {
		t.Errorf("severity = %q, expected medium", f.Severity)
	}
}

func TestCopyPasteFormulaGapsDissimilarBrackets(t *testing.T) {
	wb := buildWorkbook(buildSheet("Sheet1", []testCell{
		form(2, 1, "1", "=B2*2"),
		form(3, 1, "1", "=B3*2"),
		num(4, 1, "99"),
		form(5, 1, "1", "=VLOOKUP(C5,E1:F10,2,FALSE)"),
		form(6, 1, "1", "=VLOOKUP(C6,E1:F10,2,FALSE)"),
	}))
	// The gap separates two unrelated blocks, not one copied block.
	if findings := (CopyPasteFormulaGaps{}).Detect(wb); len(findings) != 0 {
		t.Errorf("unrelated blocks must pass, got %d findings", len(findings))
	}
}

func TestInconsistentFormulaApplicationEvenMix(t *testing.T) {
	var cells []testCell
	for row := 1; row <= 5; row++ {
		cells = append(cells, form(row, 1, "1", "=B1*2"))
	}
	for row := 6; row <= 10; row++ {
		cells = append(cells, num(row, 1, "3"))
	}
	wb := buildWorkbook(buildSheet("Sheet1", cells))

	findings := InconsistentFormulaApplication{}.Detect(wb)
	if len(findings) != 1 {
		t.Fatalf("Expected 1 finding per column, got %d", len(findings))
	}
	f := findings[0]
	if f.Probability != 0.9 {
		t.Errorf("probability = %v, expected 0.9 for an even mix", f.Probability)
	}
	if f.Details["formula_count"] != 5 || f.Details["hardcoded_count"] != 5 {
		t.Errorf("counts = %v / %v", f.Details["formula_count"], f.Details["hardcoded_count"])
	}
}

func TestInconsistentFormulaApplicationMildMix(t *testing.T) {
	var cells []testCell
	for row := 1; row <= 2; row++ {
		cells = append(cells, form(row, 1, "1", "=B1*2"))
	}
	for row := 3; row <= 8; row++ {
		cells = append(cells, num(row, 1, "3"))
	}
	wb := buildWorkbook(buildSheet("Sheet1", cells))

	findings := InconsistentFormulaApplication{}.Detect(wb)
	if len(findings) != 1 {
		t.Fatalf("Expected 1 finding, got %d", len(findings))
	}
	if findings[0].Probability != 0.5 {
		t.Errorf("probability = %v, expected 0.5 for a mild mix", findings[0].Probability)
	}
}

func TestInconsistentFormulaApplicationDominantFormulas(t *testing.T) {
	var cells []testCell
	for row := 1; row <= 9; row++ {
		cells = append(cells, form(row, 1, "1", "=B1*2"))
	}
	cells = append(cells, num(10, 1, "3"))
	wb := buildWorkbook(buildSheet("Sheet1", cells))

	// One stray value in ten is below the minority floor.
	if findings := (InconsistentFormulaApplication{}).Detect(wb); len(findings) != 0 {
		t.Errorf("dominant formula column must pass, got %d findings", len(findings))
	}
}
