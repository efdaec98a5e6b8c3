// Package detect holds the finding model, the detector registry and
// the built-in detectors.
package detect

// Severity is the coarse impact class of a finding.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// Finding is one scored, located defect report.
type Finding struct {
	// ErrorType is the owning detector's name.
	ErrorType string `json:"error_type"`
	// Description is a human-readable account of the defect.
	Description string `json:"description"`
	// Probability is the confidence score, always in [0, 1].
	Probability float64 `json:"probability"`
	// Severity is the impact class.
	Severity Severity `json:"severity"`
	// Location is "Sheet1!A1", "NamedRange:Revenue" or similar.
	Location string `json:"location,omitempty"`
	// Details carries detector-specific structured data.
	Details map[string]any `json:"details,omitempty"`
	// SuggestedFix is an optional remediation hint.
	SuggestedFix string `json:"suggested_fix,omitempty"`
}

// NewFinding builds a finding with the probability clamped to [0, 1].
func NewFinding(errorType, description string, probability float64, severity Severity) Finding {
	return Finding{
		ErrorType:   errorType,
		Description: description,
		Probability: clamp(probability),
		Severity:    severity,
	}
}

// WithLocation sets the location and returns the finding.
func (f Finding) WithLocation(loc string) Finding {
	f.Location = loc
	return f
}

// WithDetails sets the structured details and returns the finding.
func (f Finding) WithDetails(details map[string]any) Finding {
	f.Details = details
	return f
}

// WithFix sets the suggested fix and returns the finding.
func (f Finding) WithFix(fix string) Finding {
	f.SuggestedFix = fix
	return f
}

func clamp(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
