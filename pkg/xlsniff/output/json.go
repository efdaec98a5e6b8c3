// Package output renders analysis reports as JSON and Markdown.
package output

import (
	"encoding/json"
	"os"

	"github.com/ukaji3/xlsniff-go/pkg/xlsniff/detect"
)

// ToJSON serializes a report. With pretty set the output is indented
// for reading; otherwise it is compact for piping.
func ToJSON(rep *detect.Report, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(rep, "", "  ")
	}
	return json.Marshal(rep)
}

// WriteJSON serializes a report to a file.
func WriteJSON(rep *detect.Report, path string, pretty bool) error {
	data, err := ToJSON(rep, pretty)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
