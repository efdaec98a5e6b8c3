package detect

import "testing"

func lookupFixture(rangeTok string) []testCell {
	var cells []testCell
	for row := 1; row <= 10; row++ {
		cells = append(cells, num(row, 1, "1"), num(row, 2, "2"))
	}
	cells = append(cells, form(1, 4, "x", "=VLOOKUP(C1,"+rangeTok+",2,FALSE)"))
	return cells
}

func TestFormulaRangeVsDataRangeShortRange(t *testing.T) {
	wb := buildWorkbook(buildSheet("Sheet1", lookupFixture("A1:B5")))

	findings := FormulaRangeVsDataRange{}.Detect(wb)
	if len(findings) != 1 {
		t.Fatalf("Expected 1 finding, got %d", len(findings))
	}
	f := findings[0]
	if f.Probability != 0.7 {
		t.Errorf("probability = %v, expected 0.7 at half coverage", f.Probability)
	}
	if f.Details["max_data_row"] != 10 {
		t.Errorf("max_data_row = %v", f.Details["max_data_row"])
	}
	if f.Details["referenced_range"] != "A1:B5" {
		t.Errorf("referenced_range = %v", f.Details["referenced_range"])
	}
}

func TestFormulaRangeVsDataRangeFullCoverage(t *testing.T) {
	wb := buildWorkbook(buildSheet("Sheet1", lookupFixture("A1:B10")))
	if findings := (FormulaRangeVsDataRange{}).Detect(wb); len(findings) != 0 {
		t.Errorf("full coverage must pass, got %d findings", len(findings))
	}
}

func TestFormulaRangeVsDataRangeLoneFormulaIgnored(t *testing.T) {
	// The formula cell sits in its own island, so it never stretches
	// the data extent of the block it looks up.
	cells := lookupFixture("A1:B10")
	cells = append(cells, form(51, 4, "x", "=SUM(A1:A10)"))
	wb := buildWorkbook(buildSheet("Sheet1", cells))

	if findings := (FormulaRangeVsDataRange{}).Detect(wb); len(findings) != 0 {
		t.Errorf("Expected no findings, got %d", len(findings))
	}
}

func TestFormulaRangeVsDataRangeNonLookup(t *testing.T) {
	var cells []testCell
	for row := 1; row <= 10; row++ {
		cells = append(cells, num(row, 1, "1"))
	}
	cells = append(cells, form(12, 1, "x", "=SUM(A1:A5)"))
	wb := buildWorkbook(buildSheet("Sheet1", cells))

	if findings := (FormulaRangeVsDataRange{}).Detect(wb); len(findings) != 0 {
		t.Errorf("non-lookup ranges must pass, got %d findings", len(findings))
	}
}
