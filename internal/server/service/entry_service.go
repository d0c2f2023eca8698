package service

import (
	"context"
	"log/slog"

	"github.com/docuflow/docuflow-backend/internal/domain/ledger"
)

// EntryServiceImpl implements the EntryService interface over the reference
// ledger and quarantine repositories
type EntryServiceImpl struct {
	citiRepo       ledger.Repository
	quarantineRepo ledger.Repository
	logger         *slog.Logger
}

// NewEntryService creates a new entry service
func NewEntryService(logger *slog.Logger, citiRepo, quarantineRepo ledger.Repository) EntryService {
	return &EntryServiceImpl{
		citiRepo:       citiRepo,
		quarantineRepo: quarantineRepo,
		logger:         logger,
	}
}

// SaveCitiEntry idempotently stores a reference ledger entry
func (s *EntryServiceImpl) SaveCitiEntry(ctx context.Context, entry *ledger.Entry) (bool, error) {
	inserted, err := s.citiRepo.CreateIfAbsent(ctx, entry)
	if err != nil {
		return false, err
	}
	if inserted {
		s.logger.Info("Citi entry saved", "job_id", entry.JobID)
	}
	return inserted, nil
}

// SaveQuarantineEntry idempotently stores a quarantine entry
func (s *EntryServiceImpl) SaveQuarantineEntry(ctx context.Context, entry *ledger.Entry) (bool, error) {
	inserted, err := s.quarantineRepo.CreateIfAbsent(ctx, entry)
	if err != nil {
		return false, err
	}
	if inserted {
		s.logger.Info("Quarantine entry saved", "job_id", entry.JobID)
	}
	return inserted, nil
}

// CitiEntries lists ledger entries, optionally scoped to a job
func (s *EntryServiceImpl) CitiEntries(ctx context.Context, jobID string) ([]ledger.Entry, error) {
	return s.citiRepo.FindByJobID(ctx, jobID)
}

// CitiEntriesByAgreement lists ledger entries for an agreement number
func (s *EntryServiceImpl) CitiEntriesByAgreement(ctx context.Context, agreementNumber any) ([]ledger.Entry, error) {
	return s.citiRepo.FindByAgreement(ctx, agreementNumber)
}

// CountCiti counts ledger entries, optionally scoped to a job
func (s *EntryServiceImpl) CountCiti(ctx context.Context, jobID string) (int64, error) {
	return s.citiRepo.Count(ctx, jobID)
}
