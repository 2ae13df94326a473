package analysis

import (
	"math"
	"time"

	"stockboard/domain/dataset"
)

// PreviewRows is how many rows the upload response previews.
const PreviewRows = 10

// Summarize builds the upload envelope for a parsed frame, minus the token.
// The date range is only reported when every Date cell parses.
func Summarize(f *dataset.Frame) dataset.UploadResult {
	summary := dataset.Summary{
		Rows:       f.Len(),
		Cols:       len(f.Headers),
		Columns:    append([]string{}, f.Headers...),
		CanAnalyze: f.HasColumns(ColClose),
	}
	if lo, hi, ok := dateBounds(f, true); ok {
		summary.DateMin, summary.DateMax = &lo, &hi
	}
	return dataset.UploadResult{
		Summary: summary,
		Preview: f.Rows(PreviewRows),
		Extra:   Extras(f),
	}
}

// Extras are the dataset-wide highlights shown next to the summary.
func Extras(f *dataset.Frame) dataset.Row {
	extra := dataset.Row{}
	if f.HasColumns(ColDate) {
		lo, hi, ok := dateBounds(f, false)
		if ok {
			extra.Set(dataset.ExtraEarliestDate, lo)
			extra.Set(dataset.ExtraLatestDate, hi)
		} else {
			extra.Set(dataset.ExtraEarliestDate, nil)
			extra.Set(dataset.ExtraLatestDate, nil)
		}
	}
	if f.HasColumns(ColClose) {
		closes := Present(floatsAt(f, ColClose))
		hi, lo := math.NaN(), math.NaN()
		for i, c := range closes {
			if i == 0 || c > hi {
				hi = c
			}
			if i == 0 || c < lo {
				lo = c
			}
		}
		extra.Set(dataset.ExtraMaxClose, hi)
		extra.Set(dataset.ExtraMinClose, lo)
	}
	if f.HasColumns(ColSymbol) {
		if sym, ok := Mode(f.Column(ColSymbol)); ok {
			extra.Set(dataset.ExtraMostFrequentSymbol, sym)
		}
	}
	return extra
}

// dateBounds returns the earliest and latest Date. With strict set, any
// unparseable non-empty cell voids the result.
func dateBounds(f *dataset.Frame, strict bool) (string, string, bool) {
	if !f.HasColumns(ColDate) {
		return "", "", false
	}
	var lo, hi time.Time
	found := false
	for _, cell := range f.Column(ColDate) {
		if cell == "" {
			continue
		}
		t, ok := ParseDate(cell)
		if !ok {
			if strict {
				return "", "", false
			}
			continue
		}
		if !found || t.Before(lo) {
			lo = t
		}
		if !found || t.After(hi) {
			hi = t
		}
		found = true
	}
	if !found {
		return "", "", false
	}
	return lo.Format(DateLayout), hi.Format(DateLayout), true
}
