package service

import (
	"bytes"
	"context"

	"github.com/docuflow/docuflow-backend/internal/domain/job"
	"github.com/docuflow/docuflow-backend/internal/domain/ledger"
)

// JobService defines the interface for job ingestion, lookup and merge
// operations
type JobService interface {
	// IngestJobs stores raw job documents and returns the inserted count
	IngestJobs(ctx context.Context, docs []map[string]any) (int64, error)

	// UploadBatch stores one document per row under a shared batch id
	UploadBatch(ctx context.Context, rows []map[string]any) (string, int64, error)

	// BatchSummaries lists all batches grouped with counts and samples
	BatchSummaries(ctx context.Context) ([]job.BatchSummary, error)

	// BatchStats returns the reconciled-record count for a batch
	BatchStats(ctx context.Context, batchID string) (int64, error)

	// JobDetails synthesizes the job view for a batch from its documents
	JobDetails(ctx context.Context, batchID string) (*job.Job, error)

	// UpdateJobPayload replaces a job's data array, locating the job through
	// the ordered lookup chain. Returns ErrJobNotFound after all strategies miss.
	UpdateJobPayload(ctx context.Context, jobID string, data []job.Record) (*job.UpdateResult, error)

	// MergeAgreementEntry applies a replace-or-append of an agreement entry
	// into a job's data array
	MergeAgreementEntry(ctx context.Context, jobID string, agreementNumber any, entry job.Record) (*job.MergeResult, error)

	// CheckAgreement searches every job for an agreement number; a miss is a
	// clean not-found result, never an error
	CheckAgreement(ctx context.Context, agreementNumber any, requestedJobID string) (*job.AgreementMatch, error)

	// CheckStatusMatch searches data arrays for a Matched entry with the
	// agreement number; returns nil when none exists
	CheckStatusMatch(ctx context.Context, agreementNumber any) (*job.Record, error)

	// FindJobByAgreement locates the job owning an agreement number, falling
	// back to the jobID hint when no agreement matches
	FindJobByAgreement(ctx context.Context, agreementNumber any, jobIDHint string) (*job.Job, error)

	// CountAgreements counts every embedded record across all jobs
	CountAgreements(ctx context.Context) (int64, error)

	// CountMatched counts embedded records with a Matched status
	CountMatched(ctx context.Context) (int64, error)
}

// EntryService defines the interface for the reference ledger and quarantine
// stores
type EntryService interface {
	// SaveCitiEntry idempotently stores a reference ledger entry; reports
	// whether an insert happened
	SaveCitiEntry(ctx context.Context, entry *ledger.Entry) (bool, error)

	// SaveQuarantineEntry idempotently stores a quarantine entry
	SaveQuarantineEntry(ctx context.Context, entry *ledger.Entry) (bool, error)

	// CitiEntries lists ledger entries, optionally scoped to a job
	CitiEntries(ctx context.Context, jobID string) ([]ledger.Entry, error)

	// CitiEntriesByAgreement lists ledger entries for an agreement number
	CitiEntriesByAgreement(ctx context.Context, agreementNumber any) ([]ledger.Entry, error)

	// CountCiti counts ledger entries, optionally scoped to a job
	CountCiti(ctx context.Context, jobID string) (int64, error)
}

// Export is a finished spreadsheet ready for download.
type Export struct {
	Filename string
	Content  *bytes.Buffer
}

// ExportService defines the interface for the two export scopes. The scopes
// draw from disjoint collections and carry different provenance tags; they
// are never merged.
type ExportService interface {
	// ExportJobs builds the job-centric export: one batch when jobID is
	// given, every job otherwise
	ExportJobs(ctx context.Context, jobID string) (*Export, error)

	// ExportCitiData builds the ledger/quarantine-centric export
	ExportCitiData(ctx context.Context) (*Export, error)
}
