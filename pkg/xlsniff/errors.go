package xlsniff

import (
	"errors"
	"fmt"
)

// ErrFileNotFound indicates the input file does not exist.
var ErrFileNotFound = errors.New("file not found")

// ErrInvalidFormat indicates the input file is not a readable xlsx.
var ErrInvalidFormat = errors.New("invalid xlsx format")

// AnalysisError represents a failure in one stage of a run.
type AnalysisError struct {
	Path  string
	Stage string // "load", "detect", "report"
	Err   error
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("analysis error for %q (%s): %v", e.Path, e.Stage, e.Err)
}

func (e *AnalysisError) Unwrap() error {
	return e.Err
}

// NewAnalysisError creates a new AnalysisError.
func NewAnalysisError(path, stage string, err error) *AnalysisError {
	return &AnalysisError{Path: path, Stage: stage, Err: err}
}
