package util

import "time"

// RunIDLayout is the sortable timestamp prefix used for every per-run artifact.
const RunIDLayout = "20060102-1504"

// FormatRunID renders t as a run id (YYYYMMDD-HHMM).
func FormatRunID(t time.Time) string {
	return t.Format(RunIDLayout)
}

// ParseRunID parses a run id back into a time.
func ParseRunID(s string) (time.Time, error) {
	return time.Parse(RunIDLayout, s)
}
