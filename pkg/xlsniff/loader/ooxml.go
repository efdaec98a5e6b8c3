package loader

import (
	"archive/zip"
	"encoding/xml"
	"io"
	"strings"
	"time"

	"github.com/ukaji3/xlsniff-go/pkg/xlsniff/models"
)

// excelize exposes no API for external links, data connections or
// chart parts, so those are read straight from the xlsx archive.

// readExternalLinks collects the targets of xl/externalLinks
// relationship parts. A missing archive or part simply yields nothing.
func readExternalLinks(path string) []models.ExternalLink {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil
	}
	defer r.Close()

	var out []models.ExternalLink
	for _, f := range r.File {
		if !strings.HasPrefix(f.Name, "xl/externalLinks/_rels/") {
			continue
		}
		data, err := readZipFile(&r.Reader, f.Name)
		if err != nil || data == nil {
			continue
		}
		for _, rel := range parseRelationships(data) {
			if strings.Contains(strings.ToLower(rel.Type), "externallinkpath") ||
				rel.TargetMode == "External" {
				out = append(out, models.ExternalLink{Target: rel.Target})
			}
		}
	}
	return out
}

// readConnections parses xl/connections.xml. The lastRefresh stamp is
// an extension attribute some producers write; without it the
// connection loads with a zero refresh time.
func readConnections(path string) []models.DataConnection {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil
	}
	defer r.Close()

	data, err := readZipFile(&r.Reader, "xl/connections.xml")
	if err != nil || data == nil {
		return nil
	}
	return parseConnectionsXML(data)
}

func parseConnectionsXML(data []byte) []models.DataConnection {
	var out []models.DataConnection
	decoder := xml.NewDecoder(strings.NewReader(string(data)))
	for {
		token, err := decoder.Token()
		if err != nil {
			break
		}
		se, ok := token.(xml.StartElement)
		if !ok || se.Name.Local != "connection" {
			continue
		}
		var conn models.DataConnection
		for _, attr := range se.Attr {
			switch attr.Name.Local {
			case "name":
				conn.Name = attr.Value
			case "lastRefresh", "refreshedDate":
				if t, err := time.Parse(time.RFC3339, attr.Value); err == nil {
					conn.LastRefresh = t
				}
			}
		}
		if conn.Name != "" {
			out = append(out, conn)
		}
	}
	return out
}

// Chart type element tags and their readable names.
var chartTypeNames = map[string]string{
	"lineChart":     "line",
	"barChart":      "bar",
	"areaChart":     "area",
	"pieChart":      "pie",
	"doughnutChart": "doughnut",
	"scatterChart":  "scatter",
	"bubbleChart":   "bubble",
	"radarChart":    "radar",
}

// attachCharts maps chart parts to their sheets and fills in
// Sheet.Charts. Failures degrade to sheets without chart metadata.
func attachCharts(path string, wb *models.Workbook) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return
	}
	defer r.Close()

	for sheetName, chartPaths := range sheetChartPaths(&r.Reader) {
		sheet := wb.Sheet(sheetName)
		if sheet == nil {
			continue
		}
		for _, chartPath := range chartPaths {
			data, err := readZipFile(&r.Reader, chartPath)
			if err != nil || data == nil {
				continue
			}
			sheet.Charts = append(sheet.Charts, parseChartXML(data))
		}
	}
}

// sheetChartPaths walks workbook.xml → sheet rels → drawing rels to
// find the chart parts belonging to each sheet.
func sheetChartPaths(r *zip.Reader) map[string][]string {
	out := make(map[string][]string)

	workbookXML, err := readZipFile(r, "xl/workbook.xml")
	if err != nil || workbookXML == nil {
		return out
	}
	sheetsByRID := parseWorkbookSheets(workbookXML)

	wbRels, err := readZipFile(r, "xl/_rels/workbook.xml.rels")
	if err != nil || wbRels == nil {
		return out
	}
	sheetPaths := make(map[string]string)
	for _, rel := range parseRelationships(wbRels) {
		name, ok := sheetsByRID[rel.ID]
		if ok && strings.Contains(strings.ToLower(rel.Target), "worksheet") {
			sheetPaths[name] = resolvePartPath(rel.Target, "xl")
		}
	}

	for sheetName, sheetPath := range sheetPaths {
		relsPath := strings.Replace(sheetPath, "worksheets/", "worksheets/_rels/", 1) + ".rels"
		sheetRels, err := readZipFile(r, relsPath)
		if err != nil || sheetRels == nil {
			continue
		}
		drawingPath := ""
		for _, rel := range parseRelationships(sheetRels) {
			if strings.Contains(strings.ToLower(rel.Type), "drawing") {
				drawingPath = resolvePartPath(rel.Target, "xl/drawings")
				break
			}
		}
		if drawingPath == "" {
			continue
		}
		drawingRelsPath := strings.Replace(drawingPath, "drawings/", "drawings/_rels/", 1) + ".rels"
		drawingRels, err := readZipFile(r, drawingRelsPath)
		if err != nil || drawingRels == nil {
			continue
		}
		for _, rel := range parseRelationships(drawingRels) {
			if strings.Contains(strings.ToLower(rel.Type), "chart") {
				out[sheetName] = append(out[sheetName], resolvePartPath(rel.Target, "xl/charts"))
			}
		}
	}
	return out
}

// parseChartXML pulls the title, type and axis titles out of a chart
// part. Axis titles arrive in document order: category axis first,
// value axis second.
func parseChartXML(data []byte) models.Chart {
	var chart models.Chart
	decoder := xml.NewDecoder(strings.NewReader(string(data)))

	inCatAx, inValAx := false, false
	for {
		token, err := decoder.Token()
		if err != nil {
			break
		}
		switch t := token.(type) {
		case xml.StartElement:
			if name, ok := chartTypeNames[t.Name.Local]; ok && chart.Type == "" {
				chart.Type = name
				continue
			}
			switch t.Name.Local {
			case "catAx", "dateAx":
				inCatAx, inValAx = true, false
			case "valAx":
				inCatAx, inValAx = false, true
			case "title":
				title := readTitleText(decoder)
				switch {
				case inCatAx:
					chart.XAxisTitle = title
				case inValAx:
					chart.YAxisTitle = title
				case chart.Title == "":
					chart.Title = title
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "catAx", "dateAx":
				inCatAx = false
			case "valAx":
				inValAx = false
			}
		}
	}
	if chart.Type == "" {
		chart.Type = "unknown"
	}
	return chart
}

// readTitleText reads the concatenated text runs of a title element.
func readTitleText(decoder *xml.Decoder) string {
	var text strings.Builder
	depth := 1
	for depth > 0 {
		token, err := decoder.Token()
		if err != nil {
			break
		}
		switch t := token.(type) {
		case xml.StartElement:
			depth++
			if t.Name.Local == "t" {
				if txt, err := readElementText(decoder); err == nil {
					text.WriteString(txt)
				}
				depth--
			}
		case xml.EndElement:
			depth--
		}
	}
	return strings.TrimSpace(text.String())
}

// relationship is one entry of a .rels part.
type relationship struct {
	ID         string
	Type       string
	Target     string
	TargetMode string
}

func parseRelationships(data []byte) []relationship {
	var out []relationship
	decoder := xml.NewDecoder(strings.NewReader(string(data)))
	for {
		token, err := decoder.Token()
		if err != nil {
			break
		}
		se, ok := token.(xml.StartElement)
		if !ok || se.Name.Local != "Relationship" {
			continue
		}
		var rel relationship
		for _, attr := range se.Attr {
			switch attr.Name.Local {
			case "Id":
				rel.ID = attr.Value
			case "Type":
				rel.Type = attr.Value
			case "Target":
				rel.Target = attr.Value
			case "TargetMode":
				rel.TargetMode = attr.Value
			}
		}
		out = append(out, rel)
	}
	return out
}

// parseWorkbookSheets maps relationship ids to sheet names.
func parseWorkbookSheets(data []byte) map[string]string {
	out := make(map[string]string)
	decoder := xml.NewDecoder(strings.NewReader(string(data)))
	for {
		token, err := decoder.Token()
		if err != nil {
			break
		}
		se, ok := token.(xml.StartElement)
		if !ok || se.Name.Local != "sheet" {
			continue
		}
		var name, rID string
		for _, attr := range se.Attr {
			switch attr.Name.Local {
			case "name":
				name = attr.Value
			case "id":
				rID = attr.Value
			}
		}
		if name != "" && rID != "" {
			out[rID] = name
		}
	}
	return out
}

// resolvePartPath turns a relationship target into an archive path.
func resolvePartPath(target, baseDir string) string {
	if strings.HasPrefix(target, "../") {
		clean := target
		for strings.HasPrefix(clean, "../") {
			clean = strings.TrimPrefix(clean, "../")
		}
		return "xl/" + clean
	}
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	return baseDir + "/" + target
}

func readZipFile(r *zip.Reader, name string) ([]byte, error) {
	for _, f := range r.File {
		if f.Name == name {
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer rc.Close()
			return io.ReadAll(rc)
		}
	}
	return nil, nil
}

func readElementText(decoder *xml.Decoder) (string, error) {
	var text string
	depth := 1
	for depth > 0 {
		token, err := decoder.Token()
		if err != nil {
			return text, err
		}
		switch t := token.(type) {
		case xml.CharData:
			text += string(t)
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
		}
	}
	return text, nil
}
