package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/docuflow/docuflow-backend/internal/domain/job"
	"github.com/docuflow/docuflow-backend/internal/domain/ledger"
	"github.com/docuflow/docuflow-backend/internal/domain/report"
	"github.com/docuflow/docuflow-backend/internal/platform/spreadsheet"
)

// ExportServiceImpl implements the ExportService interface. Quality checks
// fan out over a bounded worker pool; scoring a row is a pure function, so
// each worker writes only to its own result index.
type ExportServiceImpl struct {
	jobRepo        job.Repository
	citiRepo       ledger.Repository
	quarantineRepo ledger.Repository
	pool           *ants.Pool
	logger         *slog.Logger
}

// NewExportService creates a new export service over the given repositories
// and worker pool. The pool is owned by the caller.
func NewExportService(logger *slog.Logger, jobRepo job.Repository, citiRepo, quarantineRepo ledger.Repository, pool *ants.Pool) ExportService {
	return &ExportServiceImpl{
		jobRepo:        jobRepo,
		citiRepo:       citiRepo,
		quarantineRepo: quarantineRepo,
		pool:           pool,
		logger:         logger,
	}
}

// ExportJobs builds the job-centric export scope: one batch when jobID is
// given, every job otherwise. The scope draws only from the jobs collection
// and tags every row with the Axis provenance.
func (s *ExportServiceImpl) ExportJobs(ctx context.Context, jobID string) (*Export, error) {
	var rows []report.Row
	var filename string

	if jobID != "" {
		j, err := s.jobRepo.FindOneByBatchID(ctx, jobID)
		if err != nil {
			return nil, err
		}
		rows = report.FlattenJob(*j)
		filename = fmt.Sprintf("job_%s_details.xlsx", jobID)
	} else {
		jobs, err := s.jobRepo.FindAll(ctx)
		if err != nil {
			return nil, err
		}
		rows = report.FlattenJobs(jobs)
		filename = "jobs_export.xlsx"
	}

	return s.assemble(rows, filename)
}

// ExportCitiData builds the ledger/quarantine-centric export scope. It never
// touches the jobs collection; reference rows carry the Citi tag and
// quarantine rows the Quarantined tag.
func (s *ExportServiceImpl) ExportCitiData(ctx context.Context) (*Export, error) {
	citiEntries, err := s.citiRepo.FindForExport(ctx)
	if err != nil {
		return nil, err
	}
	rows := report.FlattenEntries(citiEntries, report.BankCiti)

	quarantineEntries, err := s.quarantineRepo.FindForExport(ctx)
	if err != nil {
		return nil, err
	}
	rows = append(rows, report.FlattenEntries(quarantineEntries, report.BankQuarantined)...)

	return s.assemble(rows, "citi_data_export.xlsx")
}

// assemble scores the flattened rows and serializes them into the workbook.
func (s *ExportServiceImpl) assemble(rows []report.Row, filename string) (*Export, error) {
	processed := s.applyQualityChecks(rows)
	s.logger.Info("Processed export rows", "filename", filename, "rows", len(processed))

	buf, err := spreadsheet.Write(report.SheetName, report.Columns(), report.CellRows(processed))
	if err != nil {
		s.logger.Error("Failed to build workbook", "filename", filename, "error", err)
		return nil, err
	}

	return &Export{Filename: filename, Content: buf}, nil
}

// applyQualityChecks filters out status-less rows and scores the rest on the
// worker pool. A pool submission failure degrades to inline evaluation
// rather than dropping the row.
func (s *ExportServiceImpl) applyQualityChecks(rows []report.Row) []report.Row {
	evaluable := report.FilterEvaluable(rows)
	out := make([]report.Row, len(evaluable))

	var wg sync.WaitGroup
	for i := range evaluable {
		i := i
		wg.Add(1)
		if err := s.pool.Submit(func() {
			defer wg.Done()
			out[i] = report.EvaluateRow(evaluable[i])
		}); err != nil {
			out[i] = report.EvaluateRow(evaluable[i])
			wg.Done()
		}
	}
	wg.Wait()

	return out
}
