package dataset

import (
	"stockboard/domain/core"
)

// Summary describes an uploaded dataset as reported by the backend.
type Summary struct {
	Rows       int      `json:"rows"`
	Cols       int      `json:"cols"`
	Columns    []string `json:"columns"`
	DateMin    *string  `json:"date_min,omitempty"`
	DateMax    *string  `json:"date_max,omitempty"`
	CanAnalyze bool     `json:"can_analyze"`
}

// DateRange renders "min → max". A missing bound renders empty.
func (s Summary) DateRange() string {
	return deref(s.DateMin) + " → " + deref(s.DateMax)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// UploadResult is the envelope returned by POST /upload-csv.
type UploadResult struct {
	Token   core.Token `json:"token"`
	Summary Summary    `json:"summary"`
	Preview Rows       `json:"preview"`
	Extra   Row        `json:"extra,omitempty"`
}

// Upload extras computed for price datasets.
const (
	ExtraEarliestDate       = "Earliest Date"
	ExtraLatestDate         = "Latest Date"
	ExtraMaxClose           = "Max Close"
	ExtraMinClose           = "Min Close"
	ExtraMostFrequentSymbol = "Most Frequent Symbol"
)
