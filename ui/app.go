package ui

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"stockboard/app"
	"stockboard/domain/session"
	"stockboard/internal"
	"stockboard/internal/charts"
	"stockboard/internal/view"
	"stockboard/ports"
	"stockboard/ui/templates/fragments"
)

//go:embed templates/* static/*
var embeddedFiles embed.FS

// App is the dashboard. It holds exactly one session; a new upload replaces
// it wholesale.
type App struct {
	router    *chi.Mux
	templates *template.Template
	client    ports.AnalysisClient
	analysis  *app.AnalysisService
	registry  *charts.Registry
	tables    *view.TableMounts
	help      template.HTML
	config    Config
	logger    *internal.Logger

	mu      sync.RWMutex
	session *session.Session
	tabs    session.Tabs
}

// Config holds UI application configuration
type Config struct {
	Port            string
	BackendTimeout  time.Duration // zero means no timeout
	PieDemoFallback bool
	Style           charts.Style
}

// NewApp creates the dashboard around an analysis client
func NewApp(config Config, client ports.AnalysisClient) (*App, error) {
	if len(config.Style.Palette) == 0 {
		config.Style = charts.DefaultStyle()
	}

	funcMap := template.FuncMap{
		"add":   func(a, b int) int { return a + b },
		"join":  strings.Join,
		"lower": strings.ToLower,
		"chartSrc": func(mount string) string {
			return "/charts/" + mount
		},
	}
	templates, err := template.New("").Funcs(funcMap).ParseFS(embeddedFiles, "templates/*.html", "templates/fragments/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	for _, name := range fragments.GetAllTemplatePaths() {
		if templates.Lookup(name) == nil {
			return nil, fmt.Errorf("missing %s template %s", fragments.GetTemplateCategory(name), name)
		}
	}

	help, err := renderHelp()
	if err != nil {
		return nil, err
	}

	registry := charts.NewRegistry(charts.AllMounts()...)
	a := &App{
		router:    chi.NewRouter(),
		templates: templates,
		client:    client,
		analysis:  app.NewAnalysisService(client, charts.NewBoard(registry, config.Style), config.PieDemoFallback),
		registry:  registry,
		tables:    view.NewTableMounts(),
		help:      help,
		config:    config,
		logger:    internal.DefaultLogger.WithComponent("Dashboard"),
		tabs:      session.InitialTabs(),
	}

	a.setupMiddleware()
	a.setupRoutes()

	return a, nil
}

// setupMiddleware configures HTTP middleware
func (a *App) setupMiddleware() {
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))

	// Serve static files
	staticFS := http.FileServer(http.FS(embeddedFiles))
	a.router.Handle("/static/*", staticFS)
}

// setupRoutes configures the application routes
func (a *App) setupRoutes() {
	// Pages
	a.router.Get("/", a.handleIndex)
	a.router.Get("/help", a.handleHelp)
	a.router.Get("/health", a.handleHealth)

	// Upload and cleanup
	a.router.Post("/upload", a.handleUpload)
	a.router.Post("/cleanup/toggle", a.handleCleanupToggle)
	a.router.Post("/cleanup/save", a.handleCleanupSave)
	a.router.Post("/cleanup/cancel", a.handleCleanupCancel)

	// HTMX fragments
	a.router.Get("/overview/table", a.handleOverviewTable)
	a.router.Get("/meta/kpis", a.handleMetaKPIs)
	a.router.Get("/analysis/stock", a.handleStockAnalysis)
	a.router.Get("/analysis/stock/returns", a.handleStockReturns)
	a.router.Get("/analysis/meta", a.handleMetaAnalysis)

	// Chart frames
	a.router.Get("/charts/{mount}", a.handleChart)
}

// Handler exposes the router, mainly for tests
func (a *App) Handler() http.Handler {
	return a.router
}

// Start starts the HTTP server
func (a *App) Start() error {
	port := a.config.Port
	if port == "" {
		port = "8080"
	}
	a.logger.Info("dashboard listening on :%s (backend %s)", port, backendName(a.client))
	return http.ListenAndServe(":"+port, a.router)
}

func backendName(client ports.AnalysisClient) string {
	if b, ok := client.(interface{ BaseURL() string }); ok {
		return b.BaseURL()
	}
	return "custom client"
}

// current returns the session and tab state under the read lock
func (a *App) current() (*session.Session, session.Tabs) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.session, a.tabs
}

// replace swaps in a new session. Charts and tables of the previous upload
// are disposed.
func (a *App) replace(s *session.Session) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !s.Tabs.Valid() {
		a.logger.Warn("tabs out of step with %s upload: %+v", s.Kind, s.Tabs)
	}
	a.session = s
	a.tabs = s.Tabs
	if mounted := a.registry.Mounted(); len(mounted) > 0 {
		a.logger.Debug("disposing charts %v", mounted)
	}
	a.registry.Reset()
	a.tables.Clear()
	if rows := s.OverviewRows(); rows != nil {
		a.tables.Mount(view.OverviewTableID, rows)
	}
}

// backendContext applies the optional backend timeout
func (a *App) backendContext(r *http.Request) (context.Context, context.CancelFunc) {
	if a.config.BackendTimeout > 0 {
		return context.WithTimeout(r.Context(), a.config.BackendTimeout)
	}
	return context.WithCancel(r.Context())
}

// Template helpers
func (a *App) renderTemplate(w http.ResponseWriter, status int, templateName string, data interface{}) {
	var buf bytes.Buffer
	if err := a.templates.ExecuteTemplate(&buf, templateName, data); err != nil {
		a.logger.Error("template %s (%s): %v", templateName, fragments.GetTemplateCategory(templateName), err)
		http.Error(w, "Template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (a *App) renderPartial(w http.ResponseWriter, templateName string, data interface{}) {
	a.renderTemplate(w, http.StatusOK, templateName, data)
}

// HTMX helpers
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
