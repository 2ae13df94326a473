package session

// FileKind classifies an uploaded dataset
type FileKind string

const (
	KindUnknown FileKind = ""      // nothing uploaded yet
	KindStock   FileKind = "stock" // time-series prices, analyzable
	KindMeta    FileKind = "meta"  // listing reference data
)

// Classify maps the backend's can_analyze flag to a file kind.
func Classify(canAnalyze bool) FileKind {
	if canAnalyze {
		return KindStock
	}
	return KindMeta
}

// Tab names a dashboard panel
type Tab string

const (
	TabStock Tab = "stock"
	TabMeta  Tab = "meta"
)

// TabFor returns the panel that presents a file kind.
func TabFor(kind FileKind) Tab {
	if kind == KindMeta {
		return TabMeta
	}
	return TabStock
}

// Tabs is the enabled/active state of the two analysis panels.
type Tabs struct {
	Active       Tab
	StockEnabled bool
	MetaEnabled  bool
}

// InitialTabs is the state before any upload: both panels disabled and the
// stock panel shown by default.
func InitialTabs() Tabs {
	return Tabs{Active: TabStock}
}

// Switch enables exactly the panel for kind and disables the other. The
// active panel moves with it in the same transition.
func (t Tabs) Switch(kind FileKind) Tabs {
	if kind == KindUnknown {
		return t
	}
	tab := TabFor(kind)
	return Tabs{
		Active:       tab,
		StockEnabled: tab == TabStock,
		MetaEnabled:  tab == TabMeta,
	}
}

// Enabled reports whether the given panel can be selected.
func (t Tabs) Enabled(tab Tab) bool {
	switch tab {
	case TabStock:
		return t.StockEnabled
	case TabMeta:
		return t.MetaEnabled
	}
	return false
}

// Valid reports whether exactly one panel is enabled and it is the active one,
// or nothing has been enabled yet.
func (t Tabs) Valid() bool {
	if !t.StockEnabled && !t.MetaEnabled {
		return true
	}
	return t.StockEnabled != t.MetaEnabled && t.Enabled(t.Active)
}

// ColumnSet is the set of column names hidden by the cleanup step.
type ColumnSet map[string]struct{}

// Has reports membership.
func (s ColumnSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Toggle flips membership of name and returns the new state.
func (s ColumnSet) Toggle(name string) bool {
	if s.Has(name) {
		delete(s, name)
		return false
	}
	s[name] = struct{}{}
	return true
}

// CleanupState is the state of the meta cleanup modal
type CleanupState string

const (
	CleanupIdle    CleanupState = "idle"
	CleanupEditing CleanupState = "editing"
)

// CleanupOutcome records how the last editing round ended
type CleanupOutcome string

const (
	OutcomeNone      CleanupOutcome = ""
	OutcomeSaved     CleanupOutcome = "saved"
	OutcomeCancelled CleanupOutcome = "cancelled"
)
