package detect

import "testing"

func TestPartialFormulaPropagationSoleHardcode(t *testing.T) {
	var cells []testCell
	for row := 2; row <= 11; row++ {
		if row == 10 {
			cells = append(cells, num(row, 2, "999"))
			continue
		}
		cells = append(cells, form(row, 2, "1", "=A2*2"))
	}
	wb := buildWorkbook(buildSheet("Sheet1", cells))

	findings := PartialFormulaPropagation{}.Detect(wb)
	if len(findings) != 1 {
		t.Fatalf("Expected 1 finding, got %d", len(findings))
	}
	f := findings[0]
	if f.Probability != 0.8 {
		t.Errorf("probability = %v, expected 0.8 for a sole interior hardcode", f.Probability)
	}
	if f.Severity != SeverityHigh {
		t.Errorf("severity = %q, expected high", f.Severity)
	}
	if f.Details["row"] != 10 {
		t.Errorf("row = %v, expected 10", f.Details["row"])
	}
	if f.Location != "Sheet1!B10" {
		t.Errorf("location = %q", f.Location)
	}
}

func TestPartialFormulaPropagationEdgeRow(t *testing.T) {
	var cells []testCell
	for row := 2; row <= 10; row++ {
		cells = append(cells, form(row, 2, "1", "=A2*2"))
	}
	cells = append(cells, num(11, 2, "999"))
	wb := buildWorkbook(buildSheet("Sheet1", cells))

	findings := PartialFormulaPropagation{}.Detect(wb)
	if len(findings) != 1 {
		t.Fatalf("Expected 1 finding, got %d", len(findings))
	}
	if findings[0].Probability != 0.5 {
		t.Errorf("probability = %v, expected 0.5 for an edge row", findings[0].Probability)
	}
}

func TestPartialFormulaPropagationAllFormulas(t *testing.T) {
	var cells []testCell
	for row := 2; row <= 11; row++ {
		cells = append(cells, form(row, 2, "1", "=A2*2"))
	}
	wb := buildWorkbook(buildSheet("Sheet1", cells))
	if findings := (PartialFormulaPropagation{}).Detect(wb); len(findings) != 0 {
		t.Errorf("pure formula column must pass, got %d findings", len(findings))
	}
}

func TestPartialFormulaPropagationSmallColumn(t *testing.T) {
	wb := buildWorkbook(buildSheet("Sheet1", []testCell{
		form(2, 2, "1", "=A2*2"),
		form(3, 2, "1", "=A3*2"),
		num(4, 2, "9"),
	}))
	if findings := (PartialFormulaPropagation{}).Detect(wb); len(findings) != 0 {
		t.Errorf("columns under 5 cells must be skipped, got %d findings", len(findings))
	}
}

func TestIncompleteDragFormulaTrailingData(t *testing.T) {
	var cells []testCell
	for row := 2; row <= 5; row++ {
		cells = append(cells, form(row, 1, "1", "=B2*2"))
	}
	for row := 6; row <= 8; row++ {
		cells = append(cells, num(row, 1, "7"))
	}
	wb := buildWorkbook(buildSheet("Sheet1", cells))

	findings := IncompleteDragFormula{}.Detect(wb)
	if len(findings) != 1 {
		t.Fatalf("Expected 1 finding, got %d", len(findings))
	}
	f := findings[0]
	if f.Probability != 0.7 {
		t.Errorf("probability = %v, expected 0.7", f.Probability)
	}
	if f.Details["last_formula_row"] != 5 {
		t.Errorf("last_formula_row = %v", f.Details["last_formula_row"])
	}
	if f.Details["last_data_row"] != 8 {
		t.Errorf("last_data_row = %v", f.Details["last_data_row"])
	}
	gaps, ok := f.Details["gap_cells"].([]int)
	if !ok || len(gaps) != 3 {
		t.Errorf("gap_cells = %v", f.Details["gap_cells"])
	}
}

func TestIncompleteDragFormulaSingleTrailingRow(t *testing.T) {
	var cells []testCell
	for row := 2; row <= 5; row++ {
		cells = append(cells, form(row, 1, "1", "=B2*2"))
	}
	cells = append(cells, num(6, 1, "7"))
	wb := buildWorkbook(buildSheet("Sheet1", cells))

	findings := IncompleteDragFormula{}.Detect(wb)
	if len(findings) != 1 {
		t.Fatalf("Expected 1 finding, got %d", len(findings))
	}
	if findings[0].Probability != 0.5 {
		t.Errorf("probability = %v, expected 0.5 for one trailing row", findings[0].Probability)
	}
}

func TestIncompleteDragFormulaInteriorGap(t *testing.T) {
	wb := buildWorkbook(buildSheet("Sheet1", []testCell{
		form(2, 1, "1", "=B2*2"),
		form(3, 1, "1", "=B3*2"),
		num(4, 1, "9"),
		form(5, 1, "1", "=B5*2"),
	}))

	findings := IncompleteDragFormula{}.Detect(wb)
	if len(findings) != 1 {
		t.Fatalf("Expected 1 finding, got %d", len(findings))
	}
	f := findings[0]
	if f.Probability != 0.9 {
		t.Errorf("probability = %v, expected 0.9 for an interior gap", f.Probability)
	}
	if f.Location != "Sheet1!A4" {
		t.Errorf("location = %q", f.Location)
	}
}

func TestIncompleteDragFormulaComplete(t *testing.T) {
	var cells []testCell
	for row := 2; row <= 8; row++ {
		cells = append(cells, form(row, 1, "1", "=B2*2"))
	}
	wb := buildWorkbook(buildSheet("Sheet1", cells))
	if findings := (IncompleteDragFormula{}).Detect(wb); len(findings) != 0 {
		t.Errorf("complete drag must pass, got %d findings", len(findings))
	}
}

func TestFalseRangeEndUncovered(t *testing.T) {
	var cells []testCell
	for row := 2; row <= 4; row++ {
		cells = append(cells, form(row, 1, "1", "=B2*2"))
	}
	for row := 7; row <= 9; row++ {
		cells = append(cells, num(row, 1, "5"))
	}
	wb := buildWorkbook(buildSheet("Sheet1", cells))

	findings := FalseRangeEndDetection{}.Detect(wb)
	if len(findings) != 1 {
		t.Fatalf("Expected 1 finding, got %d", len(findings))
	}
	f := findings[0]
	if f.Probability != 0.9 {
		t.Errorf("probability = %v, expected 0.9 when nothing below the gap is covered", f.Probability)
	}
	if f.Details["gap_start"] != 5 || f.Details["gap_end"] != 6 {
		t.Errorf("gap bounds = %v-%v", f.Details["gap_start"], f.Details["gap_end"])
	}
	if f.Details["uncovered_data_rows"] != 3 {
		t.Errorf("uncovered_data_rows = %v", f.Details["uncovered_data_rows"])
	}
}

func TestFalseRangeEndPartiallyCovered(t *testing.T) {
	var cells []testCell
	for row := 2; row <= 4; row++ {
		cells = append(cells, form(row, 1, "1", "=B2*2"))
	}
	cells = append(cells,
		form(6, 1, "1", "=B6*2"),
		num(7, 1, "5"),
	)
	wb := buildWorkbook(buildSheet("Sheet1", cells))

	findings := FalseRangeEndDetection{}.Detect(wb)
	if len(findings) != 1 {
		t.Fatalf("Expected 1 finding, got %d", len(findings))
	}
	if findings[0].Probability != 0.5 {
		t.Errorf("probability = %v, expected 0.5 when formulas resume below the gap", findings[0].Probability)
	}
}

func TestFalseRangeEndContiguousColumn(t *testing.T) {
	var cells []testCell
	for row := 2; row <= 8; row++ {
		cells = append(cells, form(row, 1, "1", "=B2*2"))
	}
	wb := buildWorkbook(buildSheet("Sheet1", cells))
	if findings := (FalseRangeEndDetection{}).Detect(wb); len(findings) != 0 {
		t.Errorf("contiguous column must pass, got %d findings", len(findings))
	}
}
