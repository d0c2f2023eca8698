package handler

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/docuflow/docuflow-backend/internal/domain/job"
	"github.com/docuflow/docuflow-backend/internal/server/service"
)

// JobHandler handles HTTP requests for job ingestion, lookup and merge
// operations
type JobHandler struct {
	jobService service.JobService
	logger     *slog.Logger
}

// NewJobHandler creates a new job handler
func NewJobHandler(logger *slog.Logger, jobService service.JobService) *JobHandler {
	return &JobHandler{
		jobService: jobService,
		logger:     logger,
	}
}

// Ingest stores raw job documents exactly as posted
func (h *JobHandler) Ingest(c *gin.Context) {
	var docs []map[string]any
	if err := c.ShouldBindJSON(&docs); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	if len(docs) == 0 {
		RespondBadRequest(c, "No documents provided")
		return
	}

	count, err := h.jobService.IngestJobs(c.Request.Context(), docs)
	if err != nil {
		h.logger.Error("Failed to ingest jobs", "error", err)
		RespondInternalError(c)
		return
	}

	RespondCreated(c, gin.H{"insertedCount": count})
}

// Upload stores uploaded rows as individual documents under a shared batch id
func (h *JobHandler) Upload(c *gin.Context) {
	var rows []map[string]any
	if err := c.ShouldBindJSON(&rows); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	if len(rows) == 0 {
		RespondBadRequest(c, "No rows provided")
		return
	}

	batchID, count, err := h.jobService.UploadBatch(c.Request.Context(), rows)
	if err != nil {
		h.logger.Error("Failed to upload batch", "error", err)
		RespondInternalError(c)
		return
	}

	RespondWithMessage(c, 200, "Data uploaded successfully!", gin.H{
		"batchId":       batchID,
		"insertedCount": count,
	})
}

// Update replaces a job's data array, locating the job through the ordered
// lookup chain
func (h *JobHandler) Update(c *gin.Context) {
	var req UpdateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	result, err := h.jobService.UpdateJobPayload(c.Request.Context(), req.JobID, req.UpdatedData)
	if err != nil {
		if errors.Is(err, job.ErrJobNotFound{}) {
			RespondNotFound(c, "Job not found")
			return
		}
		h.logger.Error("Failed to update job", "job_id", req.JobID, "error", err)
		RespondInternalError(c)
		return
	}

	RespondWithMessage(c, 200, "Job updated successfully!", gin.H{
		"modifiedCount": result.ModifiedCount,
		"strategy":      string(result.Strategy),
	})
}

// MergeAgreement applies a single record update into a job's data array:
// replace the entry for the same agreement number, or append
func (h *JobHandler) MergeAgreement(c *gin.Context) {
	var req MergeAgreementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	result, err := h.jobService.MergeAgreementEntry(c.Request.Context(), req.JobID, req.AgreementNumber, req.UpdatedEntry)
	if err != nil {
		if errors.Is(err, job.ErrJobNotFound{}) {
			RespondNotFound(c, "Job not found")
			return
		}
		h.logger.Error("Failed to merge agreement entry", "job_id", req.JobID, "error", err)
		RespondInternalError(c)
		return
	}

	RespondWithMessage(c, 200, "Job updated successfully!", gin.H{
		"modifiedCount": result.ModifiedCount,
		"jobId":         result.JobID,
	})
}

// List returns all batches grouped with counts and display samples
func (h *JobHandler) List(c *gin.Context) {
	summaries, err := h.jobService.BatchSummaries(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list batches", "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, summaries)
}

// Stats returns the reconciled-record count for a batch
func (h *JobHandler) Stats(c *gin.Context) {
	batchID := c.Query("batchId")
	if batchID == "" {
		RespondBadRequest(c, "Missing batchId parameter")
		return
	}

	matched, err := h.jobService.BatchStats(c.Request.Context(), batchID)
	if err != nil {
		h.logger.Error("Failed to compute batch stats", "batch_id", batchID, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, gin.H{"matchedCount": matched})
}

// CheckAgreement searches every job for an agreement number and reports
// whether the owning job is the one the caller asked about
func (h *JobHandler) CheckAgreement(c *gin.Context) {
	agreementNumber := c.Query("agreementNumber")
	if agreementNumber == "" {
		RespondBadRequest(c, "Missing agreement number")
		return
	}
	jobID := c.Query("jobId")

	match, err := h.jobService.CheckAgreement(c.Request.Context(), agreementNumber, jobID)
	if err != nil {
		h.logger.Error("Failed to check agreement", "agreement_number", agreementNumber, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, match)
}

// CheckMatch reports whether a record with the agreement number has been
// reconciled. Only embedded records count; legacy top-level jobs do not.
func (h *JobHandler) CheckMatch(c *gin.Context) {
	agreementNumber := c.Query("agreementNumber")
	if agreementNumber == "" {
		RespondBadRequest(c, "Missing agreement number")
		return
	}

	entry, err := h.jobService.CheckStatusMatch(c.Request.Context(), agreementNumber)
	if err != nil {
		h.logger.Error("Failed to check match", "agreement_number", agreementNumber, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, gin.H{
		"isMatched":    entry != nil,
		"matchedEntry": entry,
	})
}

// CountAgreements counts every embedded record across all jobs
func (h *JobHandler) CountAgreements(c *gin.Context) {
	total, err := h.jobService.CountAgreements(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to count agreements", "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, gin.H{"totalAgreements": total})
}

// CountMatched counts embedded records with a Matched status
func (h *JobHandler) CountMatched(c *gin.Context) {
	total, err := h.jobService.CountMatched(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to count matched records", "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, gin.H{"matchedCount": total})
}

// FetchJobDetails synthesizes the job view for a batch from its documents
func (h *JobHandler) FetchJobDetails(c *gin.Context) {
	batchID := c.Query("batchId")
	if batchID == "" {
		RespondBadRequest(c, "Missing batchId parameter")
		return
	}

	view, err := h.jobService.JobDetails(c.Request.Context(), batchID)
	if err != nil {
		h.logger.Error("Failed to fetch job details", "batch_id", batchID, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, view)
}

// FetchJobByAgreement locates the job owning an agreement number, with the
// jobId hint as a final fallback
func (h *JobHandler) FetchJobByAgreement(c *gin.Context) {
	agreementNumber := c.Query("agreementNumber")
	if agreementNumber == "" {
		RespondBadRequest(c, "Missing agreement number")
		return
	}
	jobIDHint := c.Query("jobId")

	j, err := h.jobService.FindJobByAgreement(c.Request.Context(), agreementNumber, jobIDHint)
	if err != nil {
		if errors.Is(err, job.ErrJobNotFound{}) {
			RespondNotFound(c, "No job found")
			return
		}
		h.logger.Error("Failed to fetch job by agreement", "agreement_number", agreementNumber, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, j)
}
