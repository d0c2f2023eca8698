package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/docuflow/docuflow-backend/internal/domain/identity"
	"github.com/docuflow/docuflow-backend/internal/domain/job"
)

// JobServiceImpl implements the JobService interface
type JobServiceImpl struct {
	jobRepo job.Repository
	logger  *slog.Logger
}

// NewJobService creates a new job service
func NewJobService(logger *slog.Logger, jobRepo job.Repository) JobService {
	return &JobServiceImpl{
		jobRepo: jobRepo,
		logger:  logger,
	}
}

// IngestJobs stores raw job documents as provided by the caller
func (s *JobServiceImpl) IngestJobs(ctx context.Context, docs []map[string]any) (int64, error) {
	count, err := s.jobRepo.InsertMany(ctx, docs)
	if err != nil {
		return 0, err
	}
	s.logger.Info("Ingested job documents", "count", count)
	return count, nil
}

// UploadBatch stores one document per row under a shared batch id
func (s *JobServiceImpl) UploadBatch(ctx context.Context, rows []map[string]any) (string, int64, error) {
	batchID, count, err := s.jobRepo.InsertBatch(ctx, rows)
	if err != nil {
		return "", 0, err
	}
	s.logger.Info("Uploaded batch", "batch_id", batchID, "count", count)
	return batchID, count, nil
}

// BatchSummaries lists all batches grouped with counts and samples
func (s *JobServiceImpl) BatchSummaries(ctx context.Context) ([]job.BatchSummary, error) {
	return s.jobRepo.BatchSummaries(ctx)
}

// BatchStats returns the reconciled-record count for a batch: Matched
// entries inside data arrays plus jobs marked Matched at the top level.
func (s *JobServiceImpl) BatchStats(ctx context.Context, batchID string) (int64, error) {
	jobs, err := s.jobRepo.FindByBatchID(ctx, batchID)
	if err != nil {
		return 0, err
	}

	var matched int64
	for i := range jobs {
		matched += jobs[i].MatchedCount()
	}
	return matched, nil
}

// JobDetails synthesizes the job view for a batch: all of the batch's
// documents presented as a single job whose data array holds them.
func (s *JobServiceImpl) JobDetails(ctx context.Context, batchID string) (*job.Job, error) {
	jobs, err := s.jobRepo.FindByBatchID(ctx, batchID)
	if err != nil {
		return nil, err
	}

	data := make([]job.Record, 0, len(jobs))
	for _, j := range jobs {
		data = append(data, job.Record{
			AgreementNumber: j.AgreementNumber,
			CustomerName:    j.CustomerName,
			Status:          j.Status,
			JobID:           j.BatchID,
		})
	}

	view := &job.Job{
		ID:        batchID,
		BatchID:   batchID,
		Data:      data,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if len(jobs) > 0 {
		view.CreatedAt = jobs[0].CreatedAt
		view.UpdatedAt = jobs[0].UpdatedAt
	}

	return view, nil
}

// UpdateJobPayload replaces a job's data array through the ordered lookup
// chain, logging which strategy located the document.
func (s *JobServiceImpl) UpdateJobPayload(ctx context.Context, jobID string, data []job.Record) (*job.UpdateResult, error) {
	result, err := s.jobRepo.ReplaceData(ctx, jobID, data)
	if err != nil {
		if errors.Is(err, job.ErrJobNotFound{}) {
			s.logger.Info("Job not found for payload update", "job_id", jobID)
		}
		return nil, err
	}

	s.logger.Info("Job payload updated",
		"job_id", jobID,
		"strategy", string(result.Strategy),
		"modified_count", result.ModifiedCount)
	return result, nil
}

// MergeAgreementEntry applies a replace-or-append of an agreement entry into
// a job's data array
func (s *JobServiceImpl) MergeAgreementEntry(ctx context.Context, jobID string, agreementNumber any, entry job.Record) (*job.MergeResult, error) {
	key := identity.Normalize(agreementNumber)

	result, err := s.jobRepo.MergeAgreementEntry(ctx, jobID, key, entry)
	if err != nil {
		if errors.Is(err, job.ErrJobNotFound{}) {
			s.logger.Info("Job not found for merge", "job_id", jobID)
		}
		return nil, err
	}

	s.logger.Info("Agreement entry merged",
		"job_id", result.JobID,
		"agreement_number", key.String,
		"replaced", result.Replaced,
		"modified_count", result.ModifiedCount)
	return result, nil
}

// CheckAgreement searches every job for the agreement number: the top level
// first, then embedded record lists. A miss is a clean not-found result.
func (s *JobServiceImpl) CheckAgreement(ctx context.Context, agreementNumber any, requestedJobID string) (*job.AgreementMatch, error) {
	key := identity.Normalize(agreementNumber)

	j, err := s.jobRepo.FindByAgreement(ctx, key)
	if err != nil {
		return nil, err
	}
	if j == nil {
		return &job.AgreementMatch{}, nil
	}

	// Extract the matching element; when the agreement sits at the job's top
	// level instead, synthesize a minimal entry from it.
	entry := job.FindEntry(j.Data, key)
	if entry == nil {
		entry = &job.Record{
			AgreementNumber: j.AgreementNumber,
			CustomerName:    j.CustomerName,
		}
	}

	match := &job.AgreementMatch{
		Exists:       true,
		MatchedEntry: entry,
		JobID:        j.IDString(),
		Job:          j,
	}

	if requestedJobID != "" {
		// Hex IDs compare case-insensitively via their canonical form.
		if oid, err := primitive.ObjectIDFromHex(requestedJobID); err == nil {
			match.IsRequestedJob = j.IDString() == oid.Hex()
		} else {
			match.IsRequestedJob = j.BatchID == requestedJobID || j.IDString() == requestedJobID
		}
	}

	s.logger.Info("Agreement match found",
		"agreement_number", key.String,
		"job_id", match.JobID,
		"is_requested_job", match.IsRequestedJob)
	return match, nil
}

// CheckStatusMatch searches only within data arrays for an entry carrying
// the agreement number with a Matched status
func (s *JobServiceImpl) CheckStatusMatch(ctx context.Context, agreementNumber any) (*job.Record, error) {
	key := identity.Normalize(agreementNumber)

	j, err := s.jobRepo.FindStatusMatch(ctx, key)
	if err != nil {
		return nil, err
	}
	if j == nil {
		return nil, nil
	}

	for i := range j.Data {
		if key.Matches(j.Data[i].AgreementNumber) && j.Data[i].Status == job.StatusMatched {
			return &j.Data[i], nil
		}
	}
	return nil, nil
}

// FindJobByAgreement locates the job owning an agreement number; when no
// agreement matches anywhere, the jobID hint is tried through the ordered
// lookup chain as a final fallback.
func (s *JobServiceImpl) FindJobByAgreement(ctx context.Context, agreementNumber any, jobIDHint string) (*job.Job, error) {
	key := identity.Normalize(agreementNumber)

	j, err := s.jobRepo.FindByAgreement(ctx, key)
	if err != nil {
		return nil, err
	}
	if j != nil {
		return j, nil
	}

	if jobIDHint != "" {
		s.logger.Info("No job holds the agreement, trying the job id hint",
			"agreement_number", key.String,
			"job_id", jobIDHint)
		hinted, strategy, err := s.jobRepo.FindByID(ctx, jobIDHint)
		if err != nil {
			return nil, err
		}
		s.logger.Info("Job found by hint", "job_id", jobIDHint, "strategy", string(strategy))
		return hinted, nil
	}

	return nil, job.ErrJobNotFound{ID: key.String}
}

// CountAgreements counts every embedded record across all jobs
func (s *JobServiceImpl) CountAgreements(ctx context.Context) (int64, error) {
	return s.jobRepo.CountAgreements(ctx)
}

// CountMatched counts embedded records with a Matched status
func (s *JobServiceImpl) CountMatched(ctx context.Context) (int64, error) {
	return s.jobRepo.CountMatched(ctx)
}
