package ui

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"stockboard/domain/dataset"
	"stockboard/domain/session"
	"stockboard/internal/charts"
	"stockboard/internal/errors"
	"stockboard/internal/view"
	"stockboard/ui/templates/fragments"
)

// workspaceData is everything the workspace fragment renders.
type workspaceData struct {
	Session  *session.Session
	Tabs     session.Tabs
	Overview *view.Overview
	Cleanup  *view.CleanupTable
	Status   string
	Alert    string
}

// Stock reports whether a stock dataset is loaded.
func (d workspaceData) Stock() bool {
	return d.Session != nil && d.Session.Kind == session.KindStock
}

// MetaReady reports whether the meta panels should start loading.
func (d workspaceData) MetaReady() bool {
	return d.Session.NeedsMetaAnalysis()
}

func (a *App) workspace(s *session.Session, tabs session.Tabs) workspaceData {
	data := workspaceData{Session: s, Tabs: tabs}
	if s == nil {
		return data
	}
	if s.Editing() {
		cleanup := view.CleanupFor(s)
		data.Cleanup = &cleanup
		return data
	}
	if s.OverviewRows() != nil {
		table, _ := a.tables.Render(view.OverviewTableID, "", 1)
		overview := view.BuildOverview(s, table)
		data.Overview = &overview
	}
	return data
}

// handleIndex renders the whole dashboard for the current session
func (a *App) handleIndex(w http.ResponseWriter, r *http.Request) {
	s, tabs := a.current()
	a.renderTemplate(w, http.StatusOK, fragments.Index, a.workspace(s, tabs))
}

// handleHelp renders the embedded usage notes
func (a *App) handleHelp(w http.ResponseWriter, r *http.Request) {
	a.renderTemplate(w, http.StatusOK, fragments.Help, a.help)
}

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"ok": true})
}

// handleUpload forwards the file to the backend and replaces the session.
// With no file selected nothing is sent; a backend failure leaves the
// current session untouched.
func (a *App) handleUpload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil || header.Filename == "" {
		if file != nil {
			file.Close()
		}
		s, tabs := a.current()
		data := a.workspace(s, tabs)
		data.Status = "No file selected"
		a.renderPartial(w, fragments.Workspace, data)
		return
	}
	defer file.Close()

	ctx, cancel := a.backendContext(r)
	defer cancel()

	res, err := a.client.Upload(ctx, header.Filename, file)
	if err != nil {
		a.logger.Error("upload %s: %v", header.Filename, err)
		w.Header().Set("HX-Retarget", "#alerts")
		w.Header().Set("HX-Reswap", "innerHTML")
		a.renderTemplate(w, http.StatusBadGateway, fragments.Alert, workspaceData{Alert: "Upload failed: " + err.Error()})
		return
	}

	_, tabs := a.current()
	s := session.FromUpload(*res, tabs)
	a.replace(s)
	a.logger.Info("session %s: %s file %s (%d rows)", s.Token(), s.Kind, header.Filename, res.Summary.Rows)

	if !isHTMX(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	data := a.workspace(s, s.Tabs)
	data.Status = "Uploaded " + header.Filename
	a.renderPartial(w, fragments.Workspace, data)
}

// handleCleanupToggle flips one column in the cleanup modal
func (a *App) handleCleanupToggle(w http.ResponseWriter, r *http.Request) {
	column := r.FormValue("column")

	a.mu.Lock()
	s := a.session
	var err error
	if s == nil {
		err = session.ErrNotEditing
	} else {
		_, err = s.ToggleRemoveColumn(column)
	}
	a.mu.Unlock()

	if err != nil {
		http.Error(w, err.Error(), errors.HTTPStatus(err))
		return
	}
	a.mu.RLock()
	cleanup := view.CleanupFor(s)
	a.mu.RUnlock()
	a.renderPartial(w, fragments.CleanupModal, workspaceData{Session: s, Cleanup: &cleanup})
}

func (a *App) handleCleanupSave(w http.ResponseWriter, r *http.Request) {
	a.closeCleanup(w, (*session.Session).Save)
}

func (a *App) handleCleanupCancel(w http.ResponseWriter, r *http.Request) {
	a.closeCleanup(w, (*session.Session).Cancel)
}

// closeCleanup ends the modal with save or cancel and mounts the resulting
// overview. The meta panels load from the returned fragment.
func (a *App) closeCleanup(w http.ResponseWriter, decide func(*session.Session) (dataset.Rows, error)) {
	a.mu.Lock()
	s, tabs := a.session, a.tabs
	var err error
	if s == nil {
		err = session.ErrNotEditing
	} else {
		var rows dataset.Rows
		rows, err = decide(s)
		if err == nil {
			a.tables.Mount(view.OverviewTableID, rows)
		}
	}
	a.mu.Unlock()

	if err != nil {
		http.Error(w, err.Error(), errors.HTTPStatus(err))
		return
	}
	a.renderPartial(w, fragments.Workspace, a.workspace(s, tabs))
}

// handleOverviewTable serves one page of the overview table
func (a *App) handleOverviewTable(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	table, _ := a.tables.Render(view.OverviewTableID, r.URL.Query().Get("q"), page)
	a.renderPartial(w, fragments.OverviewTable, table)
}

// handleMetaKPIs back-fills the four meta tiles
func (a *App) handleMetaKPIs(w http.ResponseWriter, r *http.Request) {
	s, _ := a.current()
	ctx, cancel := a.backendContext(r)
	defer cancel()

	cards, err := a.analysis.FetchMetaKPIs(ctx, s.Token())
	if err != nil {
		a.logger.Warn("meta kpis: %v", err)
	}
	a.renderPartial(w, fragments.KPIStrip, cards)
}

// handleStockAnalysis loads metrics and charts for a stock dataset
func (a *App) handleStockAnalysis(w http.ResponseWriter, r *http.Request) {
	s, _ := a.current()
	if s == nil || s.Kind != session.KindStock {
		a.renderPartial(w, fragments.StockAnalysis, view.StockAnalysis{})
		return
	}
	ctx, cancel := a.backendContext(r)
	defer cancel()

	out, err := a.analysis.FetchStockAnalysis(ctx, s.Token())
	if err != nil {
		a.logger.Warn("stock analysis: %v", err)
	}
	a.renderPartial(w, fragments.StockAnalysis, out)
}

// handleStockReturns loads the cumulative return chart
func (a *App) handleStockReturns(w http.ResponseWriter, r *http.Request) {
	s, _ := a.current()
	if s == nil || s.Kind != session.KindStock {
		a.renderPartial(w, fragments.StockReturns, view.StockAnalysis{})
		return
	}
	ctx, cancel := a.backendContext(r)
	defer cancel()

	out, err := a.analysis.FetchStockReturns(ctx, s.Token())
	if err != nil {
		a.logger.Warn("stock returns: %v", err)
	}
	a.renderPartial(w, fragments.StockReturns, out)
}

// handleMetaAnalysis loads the meta charts and advanced sections once the
// cleanup modal has been closed
func (a *App) handleMetaAnalysis(w http.ResponseWriter, r *http.Request) {
	s, _ := a.current()
	if !s.NeedsMetaAnalysis() {
		a.renderPartial(w, fragments.MetaAnalysis, view.MetaAnalysis{})
		return
	}
	ctx, cancel := a.backendContext(r)
	defer cancel()

	out, err := a.analysis.FetchMetaAnalysis(ctx, s.Token())
	if err != nil {
		a.logger.Warn("meta analysis: %v", err)
	}
	a.renderPartial(w, fragments.MetaAnalysis, out)
}

// handleChart serves the live chart of a mount as a standalone page
func (a *App) handleChart(w http.ResponseWriter, r *http.Request) {
	mount := chi.URLParam(r, "mount")

	var buf bytes.Buffer
	if err := a.registry.Render(&buf, mount); err != nil {
		switch {
		case stderrors.Is(err, charts.ErrUnknownMount):
			a.logger.Debug("unknown chart mount %q", mount)
		case !stderrors.Is(err, charts.ErrNoChart):
			a.logger.Error("render chart %s: %v", mount, err)
		}
		a.renderTemplate(w, http.StatusNotFound, fragments.ChartEmpty, mount)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}
