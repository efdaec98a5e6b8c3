package xlsniff

import (
	"fmt"
	"os"

	"github.com/ukaji3/xlsniff-go/pkg/xlsniff/detect"
	"github.com/ukaji3/xlsniff-go/pkg/xlsniff/loader"
	"github.com/ukaji3/xlsniff-go/pkg/xlsniff/models"
)

// Analyze loads the workbook at path and runs the configured detectors
// against it.
func Analyze(path string, opts Options) (*detect.Report, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}
	wb, err := loader.Load(path)
	if err != nil {
		return nil, NewAnalysisError(path, "load", fmt.Errorf("%w: %v", ErrInvalidFormat, err))
	}
	return AnalyzeWorkbook(wb, opts)
}

// AnalyzeWorkbook runs the configured detectors against an already
// loaded workbook.
func AnalyzeWorkbook(wb *models.Workbook, opts Options) (*detect.Report, error) {
	registry := detect.NewRegistry()
	for _, d := range detect.DefaultRegistry().Detectors() {
		if opts.wantsDetector(d.Name()) {
			registry.Register(d)
		}
	}
	registry.Progress = opts.Progress

	rep, err := registry.Run(wb, opts.EffectiveThreshold())
	if err != nil {
		return nil, NewAnalysisError(wb.Path, "detect", err)
	}
	return rep, nil
}
