package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/docuflow/docuflow-backend/internal/server/service"
)

// EntryHandler handles HTTP requests for the reference ledger and the
// quarantine store
type EntryHandler struct {
	entryService service.EntryService
	logger       *slog.Logger
}

// NewEntryHandler creates a new entry handler
func NewEntryHandler(logger *slog.Logger, entryService service.EntryService) *EntryHandler {
	return &EntryHandler{
		entryService: entryService,
		logger:       logger,
	}
}

// SaveCiti idempotently stores a reference ledger entry. A repeated post for
// the same agreement number and job succeeds without writing a duplicate.
func (h *EntryHandler) SaveCiti(c *gin.Context) {
	var req SaveEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	entry := req.Entry()
	inserted, err := h.entryService.SaveCitiEntry(c.Request.Context(), entry)
	if err != nil {
		h.logger.Error("Failed to save citi entry", "error", err)
		RespondInternalError(c)
		return
	}
	if !inserted {
		RespondWithMessage(c, 200, "Entry already exists", nil)
		return
	}

	RespondWithMessage(c, 201, "Entry saved successfully", gin.H{
		"insertedId": entry.ID.Hex(),
	})
}

// SaveQuarantine idempotently stores a quarantine entry
func (h *EntryHandler) SaveQuarantine(c *gin.Context) {
	var req SaveEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	entry := req.Entry()
	inserted, err := h.entryService.SaveQuarantineEntry(c.Request.Context(), entry)
	if err != nil {
		h.logger.Error("Failed to save quarantine entry", "error", err)
		RespondInternalError(c)
		return
	}
	if !inserted {
		RespondWithMessage(c, 200, "Entry already exists", nil)
		return
	}

	RespondWithMessage(c, 201, "Entry saved successfully", gin.H{
		"insertedId": entry.ID.Hex(),
	})
}

// ListCiti returns ledger entries, scoped to a job when jobId is given
func (h *EntryHandler) ListCiti(c *gin.Context) {
	jobID := c.Query("jobId")

	entries, err := h.entryService.CitiEntries(c.Request.Context(), jobID)
	if err != nil {
		h.logger.Error("Failed to list citi entries", "job_id", jobID, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, entries)
}

// GetCitiEntry returns ledger entries for an agreement number
func (h *EntryHandler) GetCitiEntry(c *gin.Context) {
	agreementNumber := c.Query("agreementNumber")
	if agreementNumber == "" {
		RespondBadRequest(c, "Missing agreement number")
		return
	}

	entries, err := h.entryService.CitiEntriesByAgreement(c.Request.Context(), agreementNumber)
	if err != nil {
		h.logger.Error("Failed to fetch citi entry", "agreement_number", agreementNumber, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, entries)
}

// CountCiti counts ledger entries, scoped to a job when jobId is given
func (h *EntryHandler) CountCiti(c *gin.Context) {
	jobID := c.Query("jobId")

	count, err := h.entryService.CountCiti(c.Request.Context(), jobID)
	if err != nil {
		h.logger.Error("Failed to count citi entries", "job_id", jobID, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, gin.H{"citiCount": count})
}
