// Package loader reads an xlsx workbook into the analysis model.
// Cell data comes through excelize; the few parts excelize has no API
// for (external links, data connections, chart metadata) are read from
// the OOXML archive directly.
package loader

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ukaji3/xlsniff-go/pkg/xlsniff/models"
)

// Load reads the workbook at path. Sheets that fail to read are logged
// and skipped; the rest of the workbook still loads.
func Load(path string) (*models.Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	wb := &models.Workbook{Path: path}
	if st, err := os.Stat(path); err == nil {
		wb.SourceSize = st.Size()
	}

	for _, name := range f.GetSheetList() {
		sheet, err := loadSheet(f, name)
		if err != nil {
			log.Printf("loader: sheet %q: %v", name, err)
			continue
		}
		wb.Sheets = append(wb.Sheets, sheet)
	}

	for _, dn := range f.GetDefinedName() {
		wb.NamedRanges = append(wb.NamedRanges, models.NamedRange{
			Name:     dn.Name,
			Sheet:    dn.Scope,
			RefersTo: dn.RefersTo,
		})
	}

	wb.ExternalLinks = readExternalLinks(path)
	wb.Connections = readConnections(path)
	attachCharts(path, wb)

	return wb, nil
}

func loadSheet(f *excelize.File, name string) (*models.Sheet, error) {
	rows, err := f.GetRows(name)
	if err != nil {
		return nil, err
	}
	sheet := models.NewSheet(name)

	for rowIdx, row := range rows {
		for colIdx, value := range row {
			rowNum, colNum := rowIdx+1, colIdx+1
			axis, _ := excelize.CoordinatesToCellName(colNum, rowNum)
			formula, _ := f.GetCellFormula(name, axis)
			if value == "" && formula == "" {
				continue
			}
			sheet.SetCell(models.Cell{
				Row:     rowNum,
				Col:     colNum,
				Value:   value,
				Type:    cellType(f, name, axis, value),
				Formula: normalizeFormula(formula),
			})
		}
		if visible, err := f.GetRowVisible(name, rowIdx+1); err == nil && !visible {
			sheet.HiddenRows[rowIdx+1] = true
		}
	}

	for col := 1; col <= sheet.MaxCol; col++ {
		colName, _ := excelize.ColumnNumberToName(col)
		if visible, err := f.GetColVisible(name, colName); err == nil && !visible {
			sheet.HiddenCols[col] = true
		}
	}

	if merged, err := f.GetMergeCells(name); err == nil {
		for _, mc := range merged {
			sheet.Merged = append(sheet.Merged, mc.GetStartAxis()+":"+mc.GetEndAxis())
		}
	}

	if validations, err := f.GetDataValidations(name); err == nil {
		for _, dv := range validations {
			if dv == nil {
				continue
			}
			sheet.Validations = append(sheet.Validations, models.ValidationRule{
				Range:    dv.Sqref,
				Type:     dv.Type,
				Operator: dv.Operator,
				Formula1: dv.Formula1,
				Formula2: dv.Formula2,
			})
		}
	}

	if formats, err := f.GetConditionalFormats(name); err == nil {
		priority := 0
		for rangeRef, opts := range formats {
			for _, opt := range opts {
				priority++
				format := ""
				if opt.Format != nil {
					format = strconv.Itoa(*opt.Format)
				}
				sheet.CondFormats = append(sheet.CondFormats, models.CondFormatRule{
					Range:    rangeRef,
					Type:     opt.Type,
					Formula:  strings.TrimSpace(opt.Criteria + " " + opt.Value),
					Format:   format,
					Priority: priority,
				})
			}
		}
	}

	if tables, err := f.GetTables(name); err == nil {
		for _, t := range tables {
			sheet.Tables = append(sheet.Tables, models.Table{
				Name:  t.Name,
				Range: t.Range,
				Style: t.StyleName,
			})
		}
	}

	return sheet, nil
}

// cellType classifies a cell. The t attribute only distinguishes
// strings, booleans and errors; dates are numbers wearing a date
// number format, so those need a style check.
func cellType(f *excelize.File, sheet, axis, value string) models.CellType {
	t, err := f.GetCellType(sheet, axis)
	if err == nil {
		switch t {
		case excelize.CellTypeBool:
			return models.TypeBool
		case excelize.CellTypeError:
			return models.TypeError
		case excelize.CellTypeDate:
			return models.TypeDate
		case excelize.CellTypeInlineString, excelize.CellTypeSharedString:
			return models.TypeText
		}
	}
	if strings.HasPrefix(value, "#") && (strings.HasSuffix(value, "!") || value == "#N/A") {
		return models.TypeError
	}
	if isDateStyled(f, sheet, axis) {
		return models.TypeDate
	}
	if _, err := strconv.ParseFloat(value, 64); err == nil {
		return models.TypeNumber
	}
	return models.TypeText
}

// Builtin number format ids that render as dates or times.
func builtinDateFormat(id int) bool {
	return (id >= 14 && id <= 22) || (id >= 27 && id <= 36) ||
		(id >= 45 && id <= 47) || (id >= 50 && id <= 58)
}

func isDateStyled(f *excelize.File, sheet, axis string) bool {
	styleID, err := f.GetCellStyle(sheet, axis)
	if err != nil || styleID == 0 {
		return false
	}
	style, err := f.GetStyle(styleID)
	if err != nil || style == nil {
		return false
	}
	if builtinDateFormat(style.NumFmt) {
		return true
	}
	if style.CustomNumFmt != nil {
		fmtStr := strings.ToLower(*style.CustomNumFmt)
		for _, marker := range []string{"yy", "dd", "hh"} {
			if strings.Contains(fmtStr, marker) {
				return true
			}
		}
	}
	return false
}

// normalizeFormula strips the leading = excelize sometimes keeps, so
// the rest of the code sees bare formula text.
func normalizeFormula(f string) string {
	return strings.TrimPrefix(f, "=")
}
