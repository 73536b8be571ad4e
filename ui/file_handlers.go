package ui

import (
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"brokersum/app"
	"brokersum/domain/core"
)

// handleUpload ingests one or more workbooks from a multipart form. The
// response reports each file individually; a bad file never sinks the
// rest of the batch.
func (s *Server) handleUpload(c *gin.Context) {
	if s.maxUpload > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUpload*4)
	}

	form, err := c.MultipartForm()
	if err != nil {
		log.Printf("[handleUpload] Bad multipart form: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart form with a 'files' field is required"})
		return
	}
	uploads := form.File["files"]
	if len(uploads) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no files in upload"})
		return
	}

	reports := make([]app.FileReport, 0, len(uploads))
	stored := 0
	for _, header := range uploads {
		f, err := header.Open()
		if err != nil {
			reports = append(reports, app.FileReport{
				Filename: header.Filename,
				Status:   app.ReportFailed,
				Error:    err.Error(),
			})
			continue
		}
		report := s.ingest.IngestUpload(c.Request.Context(), header.Filename, header.Size, f)
		f.Close()
		if report.Status == app.ReportStored {
			stored++
		}
		reports = append(reports, report)
	}

	// Even an all-failed batch gets a 200 with the per-file report.
	log.Printf("[handleUpload] Processed %d files, %d stored", len(uploads), stored)
	c.JSON(http.StatusOK, gin.H{"reports": reports, "stored": stored})
}

// handleListFiles returns the workbook registry, newest trade date first.
func (s *Server) handleListFiles(c *gin.Context) {
	files, err := s.ingest.ListFiles(c.Request.Context())
	if err != nil {
		log.Printf("[handleListFiles] %v", err)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"files": files, "count": len(files)})
}

// handleDownloadFile serves the stored workbook bytes back.
func (s *Server) handleDownloadFile(c *gin.Context) {
	id, err := core.ParseFileID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	stored, rc, err := s.ingest.OpenFile(c.Request.Context(), id)
	if err != nil {
		log.Printf("[handleDownloadFile] %v", err)
		respondError(c, err)
		return
	}
	defer rc.Close()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", stored.Filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, rc); err != nil {
		log.Printf("[handleDownloadFile] Stream failed for %s: %v", stored.Filename, err)
	}
}

// handleDeleteFile removes a workbook and its trade date's activity.
func (s *Server) handleDeleteFile(c *gin.Context) {
	id, err := core.ParseFileID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.ingest.DeleteFile(c.Request.Context(), id); err != nil {
		log.Printf("[handleDeleteFile] %v", err)
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// handleReload re-ingests every stored workbook.
func (s *Server) handleReload(c *gin.Context) {
	reports, err := s.ingest.Reload(c.Request.Context())
	if err != nil {
		log.Printf("[handleReload] %v", err)
		respondError(c, err)
		return
	}
	failed := 0
	for _, r := range reports {
		if r.Error != "" {
			failed++
		}
	}
	c.JSON(http.StatusOK, gin.H{"reports": reports, "reloaded": len(reports) - failed, "failed": failed})
}
