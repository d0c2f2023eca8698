package ledger

import "context"

// Repository manages one entry store (reference ledger or quarantine).
// Insertion is idempotent per (Agreement Number, jobId): a duplicate resolves
// to a no-op success, never an error.
type Repository interface {
	// EnsureIndexes creates the unique (Agreement Number, jobId) index that
	// backs idempotent insertion. Called once at startup.
	EnsureIndexes(ctx context.Context) error

	// CreateIfAbsent inserts the entry unless one already exists for the same
	// (Agreement Number, jobId) pair. Reports whether an insert happened.
	CreateIfAbsent(ctx context.Context, entry *Entry) (bool, error)

	// FindByJobID returns entries for a job; an empty jobID returns all.
	FindByJobID(ctx context.Context, jobID string) ([]Entry, error)

	// FindByAgreement returns entries for the given agreement number.
	FindByAgreement(ctx context.Context, agreementNumber any) ([]Entry, error)

	// FindForExport returns all entries with the matched image blob
	// projected out.
	FindForExport(ctx context.Context) ([]Entry, error)

	// Count counts entries, optionally scoped to a job.
	Count(ctx context.Context, jobID string) (int64, error)
}
