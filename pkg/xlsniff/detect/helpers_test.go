package detect

import (
	"github.com/ukaji3/xlsniff-go/pkg/xlsniff/models"
)

// testCell is the compact cell literal the detector tests build
// fixtures from.
type testCell struct {
	row, col int
	value    string
	typ      models.CellType
	formula  string
}

func buildSheet(name string, cells []testCell) *models.Sheet {
	s := models.NewSheet(name)
	for _, c := range cells {
		typ := c.typ
		if typ == models.TypeEmpty && c.value != "" {
			typ = models.TypeText
		}
		s.SetCell(models.Cell{
			Row: c.row, Col: c.col,
			Value: c.value, Type: typ, Formula: c.formula,
		})
	}
	return s
}

func buildWorkbook(sheets ...*models.Sheet) *models.Workbook {
	return &models.Workbook{Sheets: sheets}
}

func num(row, col int, value string) testCell {
	return testCell{row: row, col: col, value: value, typ: models.TypeNumber}
}

func txt(row, col int, value string) testCell {
	return testCell{row: row, col: col, value: value, typ: models.TypeText}
}

func form(row, col int, value, f string) testCell {
	return testCell{row: row, col: col, value: value, typ: models.TypeNumber, formula: f}
}

func findingsFor(fs []Finding, errorType string) []Finding {
	var out []Finding
	for _, f := range fs {
		if f.ErrorType == errorType {
			out = append(out, f)
		}
	}
	return out
}
