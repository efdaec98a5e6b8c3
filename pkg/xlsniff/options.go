// Package xlsniff scores likely defects in Excel workbooks.
package xlsniff

// DefaultThreshold is the probability cutoff used when none is set.
const DefaultThreshold = 0.7

// Options configures an analysis run.
type Options struct {
	// Threshold is the minimum probability a finding needs to appear
	// in the report. If nil, DefaultThreshold applies.
	Threshold *float64
	// Enabled restricts the run to the named detectors. Empty means
	// all built-ins.
	Enabled []string
	// Disabled removes the named detectors from the run. Applied
	// after Enabled.
	Disabled []string
	// Progress, when set, is called after each detector finishes.
	Progress func(name string, done, total int)
}

// DefaultOptions returns the default analysis options.
func DefaultOptions() Options {
	return Options{}
}

// EffectiveThreshold resolves the probability cutoff for this run.
func (o Options) EffectiveThreshold() float64 {
	if o.Threshold != nil {
		return *o.Threshold
	}
	return DefaultThreshold
}

// wantsDetector reports whether the named detector should run.
func (o Options) wantsDetector(name string) bool {
	if len(o.Enabled) > 0 {
		found := false
		for _, n := range o.Enabled {
			if n == name {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	for _, n := range o.Disabled {
		if n == name {
			return false
		}
	}
	return true
}
