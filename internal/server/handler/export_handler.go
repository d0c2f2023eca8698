package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/docuflow/docuflow-backend/internal/domain/job"
	"github.com/docuflow/docuflow-backend/internal/server/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler handles HTTP requests for spreadsheet downloads
type ExportHandler struct {
	exportService service.ExportService
	logger        *slog.Logger
}

// NewExportHandler creates a new export handler
func NewExportHandler(logger *slog.Logger, exportService service.ExportService) *ExportHandler {
	return &ExportHandler{
		exportService: exportService,
		logger:        logger,
	}
}

// ExportJobs streams the job-centric spreadsheet. The job id comes from the
// jobId query parameter on GET, or from the request body on POST; with no id
// every job is exported.
func (h *ExportHandler) ExportJobs(c *gin.Context) {
	jobID := c.Query("jobId")
	if jobID == "" && c.Request.Method == http.MethodPost {
		var req ExportJobsRequest
		// The body is optional; an empty or absent one means export everything.
		if err := c.ShouldBindJSON(&req); err == nil {
			jobID = req.JobID
		}
	}

	export, err := h.exportService.ExportJobs(c.Request.Context(), jobID)
	if err != nil {
		if errors.Is(err, job.ErrJobNotFound{}) {
			RespondNotFound(c, "Job not found")
			return
		}
		h.logger.Error("Failed to export jobs", "job_id", jobID, "error", err)
		RespondInternalError(c)
		return
	}

	h.send(c, export)
}

// ExportCitiData streams the ledger/quarantine spreadsheet
func (h *ExportHandler) ExportCitiData(c *gin.Context) {
	export, err := h.exportService.ExportCitiData(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to export citi data", "error", err)
		RespondInternalError(c)
		return
	}

	h.send(c, export)
}

func (h *ExportHandler) send(c *gin.Context, export *service.Export) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", export.Filename))
	c.Data(http.StatusOK, xlsxContentType, export.Content.Bytes())
}
