// Package session holds the dashboard's per-upload state: classification,
// panel switching, and the meta cleanup workflow.
package session

import (
	"stockboard/domain/core"
	"stockboard/domain/dataset"
	"stockboard/internal/errors"
)

// CleanupPreviewRows is how many preview rows the cleanup modal shows.
const CleanupPreviewRows = 10

// ErrNotEditing is returned by cleanup actions outside the editing state.
var ErrNotEditing = errors.InvalidState("cleanup is not in progress")

// Session is everything the dashboard knows about the current upload. A new
// upload produces a new Session; nothing is merged from the previous one.
type Session struct {
	Upload  dataset.UploadResult
	Kind    FileKind
	Tabs    Tabs
	Removed ColumnSet
	Cleanup CleanupState
	Outcome CleanupOutcome

	overview dataset.Rows
}

// FromUpload builds the session for a successful upload. Stock datasets go
// straight to the overview; meta datasets open the cleanup modal with an
// empty removed set.
func FromUpload(res dataset.UploadResult, tabs Tabs) *Session {
	kind := Classify(res.Summary.CanAnalyze)
	s := &Session{
		Upload:  res,
		Kind:    kind,
		Tabs:    tabs.Switch(kind),
		Removed: ColumnSet{},
		Cleanup: CleanupIdle,
	}
	if kind == KindMeta {
		s.Cleanup = CleanupEditing
		return s
	}
	s.overview = decided(res.Preview)
	return s
}

// Token is the backend handle for follow-up analysis requests.
func (s *Session) Token() core.Token {
	if s == nil {
		return ""
	}
	return s.Upload.Token
}

// Editing reports whether the cleanup modal is open.
func (s *Session) Editing() bool {
	return s.Cleanup == CleanupEditing
}

// ToggleRemoveColumn flips whether name is hidden from the overview. It
// returns true when the column is now removed.
func (s *Session) ToggleRemoveColumn(name string) (bool, error) {
	if !s.Editing() {
		return false, ErrNotEditing
	}
	return s.Removed.Toggle(name), nil
}

// Save closes the modal and shows the full preview minus removed columns.
func (s *Session) Save() (dataset.Rows, error) {
	if !s.Editing() {
		return nil, ErrNotEditing
	}
	s.overview = decided(s.Upload.Preview.Project(s.Removed.Has))
	s.Outcome = OutcomeSaved
	s.Cleanup = CleanupIdle
	return s.overview, nil
}

// Cancel closes the modal and shows the unmodified preview.
func (s *Session) Cancel() (dataset.Rows, error) {
	if !s.Editing() {
		return nil, ErrNotEditing
	}
	s.overview = decided(s.Upload.Preview)
	s.Outcome = OutcomeCancelled
	s.Cleanup = CleanupIdle
	return s.overview, nil
}

// decided marks the overview as shown even when the backend sent no preview.
func decided(rows dataset.Rows) dataset.Rows {
	if rows == nil {
		return dataset.Rows{}
	}
	return rows
}

// OverviewRows is what the overview table renders. It is nil while the
// cleanup modal is still open and non-nil once the overview is shown.
func (s *Session) OverviewRows() dataset.Rows {
	return s.overview
}

// CleanupPreview returns the rows shown in the cleanup modal.
func (s *Session) CleanupPreview() dataset.Rows {
	return s.Upload.Preview.Head(CleanupPreviewRows)
}

// NeedsMetaAnalysis reports whether the meta fetch should run: the dataset
// is meta and the modal has been closed.
func (s *Session) NeedsMetaAnalysis() bool {
	return s != nil && s.Kind == KindMeta && s.Outcome != OutcomeNone
}
