package ui

import (
	"bytes"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"brokersum/app"
)

// summaryRequest reads the shared summary query parameters. Repeated
// broker and field params select multiple series.
func summaryRequest(c *gin.Context) app.SummaryRequest {
	return app.SummaryRequest{
		Brokers: c.QueryArray("broker"),
		Fields:  c.QueryArray("field"),
		Mode:    c.Query("mode"),
		From:    c.Query("from"),
		To:      c.Query("to"),
	}
}

// handleBrokers lists every selectable broker label.
func (s *Server) handleBrokers(c *gin.Context) {
	labels, err := s.summaries.Brokers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"brokers": labels, "count": len(labels)})
}

// handleActivity returns the raw per-broker rows for a window.
func (s *Server) handleActivity(c *gin.Context) {
	records, err := s.summaries.Activity(c.Request.Context(), c.Query("from"), c.Query("to"))
	if err != nil {
		log.Printf("[handleActivity] %v", err)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": records, "count": len(records)})
}

// handleSummary runs the rollup for the requested window.
func (s *Server) handleSummary(c *gin.Context) {
	result, err := s.summaries.Summarize(c.Request.Context(), summaryRequest(c))
	if err != nil {
		log.Printf("[handleSummary] %v", err)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// handleSummaryExport serves the summary as a CSV download. The export
// is buffered so a failed query still gets a clean JSON error.
func (s *Server) handleSummaryExport(c *gin.Context) {
	var buf bytes.Buffer
	if err := s.summaries.ExportCSV(c.Request.Context(), summaryRequest(c), &buf); err != nil {
		log.Printf("[handleSummaryExport] %v", err)
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="broker_summary.csv"`)
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}

// handleRankings returns brokers ranked by one measure over the window.
func (s *Server) handleRankings(c *gin.Context) {
	rows, grand, err := s.summaries.Rankings(c.Request.Context(), c.Query("field"), c.Query("from"), c.Query("to"))
	if err != nil {
		log.Printf("[handleRankings] %v", err)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rankings": rows, "grand_total": grand})
}

// handleNarrative asks the hosted model for a window summary.
func (s *Server) handleNarrative(c *gin.Context) {
	var req app.NarrativeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	result, err := s.narratives.Narrate(c.Request.Context(), req)
	if err != nil {
		log.Printf("[handleNarrative] %v", err)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
