package detect

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/ukaji3/xlsniff-go/pkg/xlsniff/models"
)

// ErrInvalidThreshold is returned by Run for thresholds outside [0, 1].
var ErrInvalidThreshold = errors.New("threshold must be between 0 and 1")

// Detector is one pluggable defect analysis. Detect must treat the
// workbook as read-only and must not depend on other detectors.
type Detector interface {
	// Name is the stable detector identifier, also used as the
	// error_type of its findings.
	Name() string
	// Description says what defect category the detector covers.
	Description() string
	// Severity is the default severity of the detector's findings.
	Severity() Severity
	// Detect analyzes the workbook and returns zero or more findings.
	Detect(wb *models.Workbook) []Finding
}

// Registry holds an ordered list of detectors. The set is injected
// explicitly; there is no hidden global registration.
type Registry struct {
	detectors []Detector
	// Progress, when set, is called after each detector finishes.
	Progress func(name string, done, total int)
}

// NewRegistry returns a registry over the given detectors, in order.
func NewRegistry(detectors ...Detector) *Registry {
	return &Registry{detectors: detectors}
}

// Register appends a detector.
func (r *Registry) Register(d Detector) {
	r.detectors = append(r.detectors, d)
}

// Detectors returns the registered detectors in run order.
func (r *Registry) Detectors() []Detector {
	return r.detectors
}

// Report is the outcome of one run: per-detector findings above the
// threshold plus the aggregate summary.
type Report struct {
	// Detectors maps detector name to its filtered findings.
	Detectors map[string][]Finding `json:"detectors"`
	// Order preserves the registry's run order for rendering.
	Order []string `json:"-"`
	// Summary aggregates the filtered findings.
	Summary Summary `json:"summary"`
}

// Summary aggregates one run.
type Summary struct {
	RunID         string           `json:"run_id"`
	TotalFindings int              `json:"total_findings"`
	BySeverity    map[Severity]int `json:"severity_breakdown"`
	ByDetector    map[string]int   `json:"error_types"`
	Threshold     float64          `json:"threshold_used"`
	Timestamp     string           `json:"timestamp"`
	SourcePath    string           `json:"source_path,omitempty"`
	SourceSize    int64            `json:"source_size_bytes,omitempty"`
}

// Run executes every detector sequentially against the same immutable
// workbook, filters findings by the probability threshold, and builds
// the summary over the filtered set. A panicking detector is isolated:
// it is logged and recorded with zero findings, and the run continues.
func (r *Registry) Run(wb *models.Workbook, threshold float64) (*Report, error) {
	if threshold < 0 || threshold > 1 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidThreshold, threshold)
	}

	rep := &Report{
		Detectors: make(map[string][]Finding, len(r.detectors)),
		Summary: Summary{
			RunID:      uuid.NewString(),
			BySeverity: map[Severity]int{SeverityHigh: 0, SeverityMedium: 0, SeverityLow: 0},
			ByDetector: make(map[string]int, len(r.detectors)),
			Threshold:  threshold,
			Timestamp:  time.Now().Format(time.RFC3339),
			SourcePath: wb.Path,
			SourceSize: wb.SourceSize,
		},
	}

	for i, d := range r.detectors {
		findings := runOne(d, wb)
		kept := findings[:0:0]
		for _, f := range findings {
			if f.Probability >= threshold {
				kept = append(kept, f)
			}
		}
		rep.Detectors[d.Name()] = kept
		rep.Order = append(rep.Order, d.Name())
		rep.Summary.ByDetector[d.Name()] = len(kept)
		rep.Summary.TotalFindings += len(kept)
		for _, f := range kept {
			rep.Summary.BySeverity[f.Severity]++
		}
		if r.Progress != nil {
			r.Progress(d.Name(), i+1, len(r.detectors))
		}
	}
	return rep, nil
}

// runOne isolates a single detector: one bad detector must never
// abort the run.
func runOne(d Detector, wb *models.Workbook) (findings []Finding) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("detector %q failed: %v", d.Name(), rec)
			findings = nil
		}
	}()
	return d.Detect(wb)
}

// DefaultRegistry returns the built-in detectors in their fixed run
// order.
func DefaultRegistry() *Registry {
	return NewRegistry(
		CircularNamedRanges{},
		HiddenDataInRanges{},
		InconsistentDateFormats{},
		VolatileFunctions{},
		ArrayFormulaSpillErrors{},
		CrossSheetReferenceErrors{},
		LookupTableTypeInconsistencies{},
		MissingDollarSignAnchors{},
		WrongRowColumnAnchoring{},
		OverAnchoredReferences{},
		InconsistentAnchoringInRanges{},
		LookupFunctionAnchoring{},
		ArrayFormulaAnchoring{},
		CrossSheetAnchoring{},
		PartialFormulaPropagation{},
		IncompleteDragFormula{},
		CopyPasteFormulaGaps{},
		InconsistentFormulaApplication{},
		FalseRangeEndDetection{},
		FormulaRangeVsDataRange{},
		ConditionalFormattingOverlaps{},
		ExternalDataConnectionFailures{},
		PrecisionErrors{},
	)
}
