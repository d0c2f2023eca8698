package job

import (
	"context"

	"github.com/docuflow/docuflow-backend/internal/domain/identity"
)

// LookupStrategy names the ordered fallbacks used to locate a job by a
// caller-supplied identifier. The chain is evaluated short-circuit on first
// match and the winning strategy is reported so callers can observe it.
type LookupStrategy string

const (
	LookupObjectID LookupStrategy = "object_id" // primary id, when the input is a valid opaque id
	LookupBatchID  LookupStrategy = "batch_id"  // caller-supplied batch string
	LookupRawID    LookupStrategy = "raw_id"    // verbatim string equality on the primary id
)

// UpdateResult reports the outcome of a job payload update, including which
// lookup strategy located the document.
type UpdateResult struct {
	MatchedCount  int64
	ModifiedCount int64
	Strategy      LookupStrategy
}

// MergeResult reports the outcome of a replace-or-append merge.
type MergeResult struct {
	JobID         string
	ModifiedCount int64
	Replaced      bool
}

// ErrJobNotFound indicates that no job matched after exhausting every
// applicable lookup strategy.
type ErrJobNotFound struct {
	ID string
}

func (e ErrJobNotFound) Error() string {
	return "job not found: " + e.ID
}

// Is implements the errors.Is interface for ErrJobNotFound
func (e ErrJobNotFound) Is(target error) bool {
	t, ok := target.(ErrJobNotFound)
	if !ok {
		return false
	}
	// An empty target ID matches any ErrJobNotFound
	if t.ID == "" {
		return true
	}
	return e.ID == t.ID
}

// Repository manages job persistence. All searches that take an identity.Key
// match both the string and the integer representation of the agreement
// number.
type Repository interface {
	// InsertMany stores raw job documents as provided by the caller.
	InsertMany(ctx context.Context, docs []map[string]any) (int64, error)

	// InsertBatch stores one document per row, stamping all of them with a
	// shared batch id and fresh timestamps. Returns the batch id.
	InsertBatch(ctx context.Context, rows []map[string]any) (string, int64, error)

	// BatchSummaries groups jobs by batch id with counts and a display sample.
	BatchSummaries(ctx context.Context) ([]BatchSummary, error)

	// FindByBatchID returns every job document belonging to a batch.
	FindByBatchID(ctx context.Context, batchID string) ([]Job, error)

	// FindOneByBatchID returns a single job by its batch string, or
	// ErrJobNotFound.
	FindOneByBatchID(ctx context.Context, batchID string) (*Job, error)

	// FindAll returns every job document.
	FindAll(ctx context.Context) ([]Job, error)

	// FindByID locates a job through the ordered lookup chain and reports
	// which strategy matched. Returns ErrJobNotFound after all strategies miss.
	FindByID(ctx context.Context, id string) (*Job, LookupStrategy, error)

	// FindByAgreement searches for a job holding the agreement at the top
	// level first, then inside data arrays. A miss returns (nil, nil).
	FindByAgreement(ctx context.Context, key identity.Key) (*Job, error)

	// FindStatusMatch searches only inside data arrays for an entry with the
	// given agreement number and a Matched status. Top-level-only jobs are
	// deliberately not considered. A miss returns (nil, nil).
	FindStatusMatch(ctx context.Context, key identity.Key) (*Job, error)

	// ReplaceData replaces a job's data array through the ordered lookup
	// chain, refreshing updatedAt. Returns ErrJobNotFound after all
	// strategies miss.
	ReplaceData(ctx context.Context, id string, data []Record) (*UpdateResult, error)

	// MergeAgreementEntry atomically applies a replace-or-append of the entry
	// for the given agreement number into the job's data array. Two
	// concurrent merges against the same job cannot both act on a stale
	// array. Returns ErrJobNotFound when the job does not exist.
	MergeAgreementEntry(ctx context.Context, jobID string, key identity.Key, entry Record) (*MergeResult, error)

	// CountAgreements counts every embedded record across all jobs.
	CountAgreements(ctx context.Context) (int64, error)

	// CountMatched counts embedded records with a Matched status.
	CountMatched(ctx context.Context) (int64, error)
}
