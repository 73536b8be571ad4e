package ui

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"brokersum/app"
	"brokersum/internal/errors"
)

// Server is the JSON API over the ingest, summary and narrative services.
type Server struct {
	router     *gin.Engine
	ingest     *app.IngestService
	summaries  *app.SummaryService
	narratives *app.NarrativeService
	maxUpload  int64
}

// NewServer wires the API routes.
func NewServer(ingest *app.IngestService, summaries *app.SummaryService, narratives *app.NarrativeService, maxUpload int64) *Server {
	s := &Server{
		router:     gin.Default(),
		ingest:     ingest,
		summaries:  summaries,
		narratives: narratives,
		maxUpload:  maxUpload,
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	api := s.router.Group("/api")

	// Workbook registry
	api.POST("/files", s.handleUpload)
	api.GET("/files", s.handleListFiles)
	api.GET("/files/:id/download", s.handleDownloadFile)
	api.DELETE("/files/:id", s.handleDeleteFile)
	api.POST("/files/reload", s.handleReload)

	// Queries over the loaded dataset
	api.GET("/brokers", s.handleBrokers)
	api.GET("/activity", s.handleActivity)
	api.GET("/summary", s.handleSummary)
	api.GET("/summary/export", s.handleSummaryExport)
	api.GET("/rankings", s.handleRankings)
	api.POST("/summary/narrative", s.handleNarrative)
}

// Handler exposes the router for tests and the ops sidecar.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the web server
func (s *Server) Start(addr string) error {
	log.Printf("Starting broker summary API on http://%s", addr)
	return s.router.Run(addr)
}

// respondError maps application error codes onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch errors.GetCode(err) {
	case errors.CodeInvalidInput, errors.CodeFileRejected:
		status = http.StatusBadRequest
	case errors.CodeNotFound:
		status = http.StatusNotFound
	case errors.CodeExternalService:
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
