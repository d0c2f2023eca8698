package handler

import (
	"github.com/docuflow/docuflow-backend/internal/domain/job"
	"github.com/docuflow/docuflow-backend/internal/domain/ledger"
)

// UpdateJobRequest replaces a job's whole data array
type UpdateJobRequest struct {
	JobID       string       `json:"jobId" binding:"required"`
	UpdatedData []job.Record `json:"updatedData"`
}

// MergeAgreementRequest applies a single record update into a job's data array
type MergeAgreementRequest struct {
	JobID           string     `json:"jobId" binding:"required"`
	AgreementNumber any        `json:"agreementNumber" binding:"required"`
	UpdatedEntry    job.Record `json:"updatedEntry"`
}

// SaveEntryRequest stores one reference ledger or quarantine entry. Field
// names mirror the stored document keys; agreement numbers arrive as
// numbers or strings.
type SaveEntryRequest struct {
	AgreementNumber  any    `json:"Agreement Number" binding:"required"`
	CustomerName     string `json:"Customer Name"`
	Date             string `json:"date"`
	Status           string `json:"status"`
	StorageBoxNumber string `json:"storageBoxNumber"`
	MatchedImage     string `json:"matchedImage"`
	MatchedDate      string `json:"matchedDate"`
	ScanBoxNumber    string `json:"scanBoxNumber"`
	BarcodeNumber    string `json:"barcode_number"`
	ScannedBarcode   string `json:"scanned_barcode"`
	Password         string `json:"password"`
	JobID            string `json:"jobId"`
	Remarks          string `json:"remarks"`
}

// Entry maps the request onto the stored entry shape.
func (r *SaveEntryRequest) Entry() *ledger.Entry {
	return &ledger.Entry{
		AgreementNumber:  r.AgreementNumber,
		CustomerName:     r.CustomerName,
		Date:             r.Date,
		Status:           r.Status,
		StorageBoxNumber: r.StorageBoxNumber,
		MatchedImage:     r.MatchedImage,
		MatchedDate:      r.MatchedDate,
		ScanBoxNumber:    r.ScanBoxNumber,
		BarcodeNumber:    r.BarcodeNumber,
		ScannedBarcode:   r.ScannedBarcode,
		Password:         r.Password,
		JobID:            r.JobID,
		Remarks:          r.Remarks,
	}
}

// ExportJobsRequest selects the batch to export; empty means all jobs
type ExportJobsRequest struct {
	JobID string `json:"jobId"`
}
