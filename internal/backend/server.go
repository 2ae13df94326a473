// Package backend is the reference analysis service the dashboard talks to.
// Uploaded files live in memory for the life of the process.
package backend

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/semaphore"

	"stockboard/internal"
)

// Config controls upload limits and metric defaults.
type Config struct {
	MaxUploadBytes      int64
	MaxConcurrentParses int64
	RiskFreeRate        float64
}

// DefaultConfig mirrors the environment defaults.
func DefaultConfig() Config {
	return Config{
		MaxUploadBytes:      50 * 1024 * 1024,
		MaxConcurrentParses: 4,
		RiskFreeRate:        0.01,
	}
}

// Server is the gin application serving the analysis endpoints.
type Server struct {
	router *gin.Engine
	store  *Store
	parses *semaphore.Weighted
	config Config
	logger *internal.Logger
}

// NewServer wires the routes. Request logging uses gin's logger.
func NewServer(config Config, store *Store) *Server {
	if config.MaxConcurrentParses <= 0 {
		config.MaxConcurrentParses = 1
	}
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.MaxMultipartMemory = config.MaxUploadBytes

	s := &Server{
		router: router,
		store:  store,
		parses: semaphore.NewWeighted(config.MaxConcurrentParses),
		config: config,
		logger: internal.DefaultLogger.WithComponent("Backend"),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures the analysis routes
func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleHome)
	s.router.GET("/health", s.handleHealth)

	s.router.POST("/upload-csv", s.handleUpload)

	stock := s.router.Group("/analyze/:token")
	stock.GET("/prices", s.handlePrices)
	stock.GET("/metrics", s.handleMetrics)
	stock.GET("/returns", s.handleReturns)
	stock.GET("/charts", s.handleCharts)

	meta := s.router.Group("/analyze-meta/:token")
	meta.GET("/kpis", s.handleMetaKPIs)
	meta.GET("/charts", s.handleMetaCharts)
	meta.GET("/advanced", s.handleMetaAdvanced)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves on addr until the listener fails.
func (s *Server) Start(addr string) error {
	s.logger.Info("analysis backend listening on http://%s", addr)
	return s.router.Run(addr)
}
