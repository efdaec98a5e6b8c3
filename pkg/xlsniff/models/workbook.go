// Package models defines the read-only workbook view consumed by detectors.
package models

import "time"

// Workbook is an immutable in-memory view of a spreadsheet file.
// Detectors read it; nothing mutates it after loading.
type Workbook struct {
	// Path is the source file path (empty for in-memory workbooks).
	Path string
	// SourceSize is the source file size in bytes (0 for in-memory workbooks).
	SourceSize int64
	// Sheets holds the sheets in workbook order.
	Sheets []*Sheet
	// NamedRanges holds workbook-level defined names.
	NamedRanges []NamedRange
	// ExternalLinks holds targets of external workbook links.
	ExternalLinks []ExternalLink
	// Connections holds external data connection metadata.
	Connections []DataConnection
}

// NamedRange is a workbook-level symbolic name bound to a destination
// range or formula.
type NamedRange struct {
	// Name is the defined name.
	Name string
	// Sheet is the scope sheet name, empty for workbook scope.
	Sheet string
	// RefersTo is the destination range or formula text.
	RefersTo string
}

// ExternalLink is a link to another workbook.
type ExternalLink struct {
	// Target is the linked file path or URL.
	Target string
}

// DataConnection is external data connection metadata.
type DataConnection struct {
	// Name is the connection name.
	Name string
	// LastRefresh is the last refresh time (zero if unknown).
	LastRefresh time.Time
}

// Sheet returns the sheet with the given name, or nil.
func (w *Workbook) Sheet(name string) *Sheet {
	for _, s := range w.Sheets {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// HasSheet reports whether a sheet with the given name exists.
func (w *Workbook) HasSheet(name string) bool {
	return w.Sheet(name) != nil
}
