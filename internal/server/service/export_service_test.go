package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/panjf2000/ants/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/docuflow/docuflow-backend/internal/domain/job"
	"github.com/docuflow/docuflow-backend/internal/domain/ledger"
	"github.com/docuflow/docuflow-backend/internal/domain/report"
)

func newTestPool(t *testing.T) *ants.Pool {
	t.Helper()
	pool, err := ants.NewPool(4)
	require.NoError(t, err)
	t.Cleanup(pool.Release)
	return pool
}

func readSheet(t *testing.T, export *Export) [][]string {
	t.Helper()
	f, err := excelize.OpenReader(export.Content)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(report.SheetName)
	require.NoError(t, err)
	return rows
}

func TestExportServiceImpl_ExportJobs(t *testing.T) {
	ctx := context.Background()

	t.Run("SingleBatch", func(t *testing.T) {
		mockJobRepo := new(MockJobRepository)
		mockCiti := new(MockLedgerRepository)
		mockQuarantine := new(MockLedgerRepository)
		service := NewExportService(newTestLogger(), mockJobRepo, mockCiti, mockQuarantine, newTestPool(t))

		j := &job.Job{
			BatchID:      "1714497600000",
			CustomerName: "Priya Sharma",
			Data: []job.Record{
				{AgreementNumber: "5123456789", Status: job.StatusMatched, BarcodeNumber: "1234567890123"},
				{AgreementNumber: "5000000001", Status: "Pending"},
			},
		}
		mockJobRepo.On("FindOneByBatchID", ctx, "1714497600000").Return(j, nil).Once()

		export, err := service.ExportJobs(ctx, "1714497600000")

		require.NoError(t, err)
		assert.Equal(t, "job_1714497600000_details.xlsx", export.Filename)

		rows := readSheet(t, export)
		require.Len(t, rows, 3) // header + two records
		assert.Equal(t, "Bank Name", rows[0][0])
		assert.Equal(t, report.BankAxis, rows[1][0])
		assert.Equal(t, "5123456789", rows[1][1])

		// The first record passes agreement and barcode but has no matched
		// date or customer name, so it scores 50.
		headerIdx := map[string]int{}
		for i, h := range rows[0] {
			headerIdx[h] = i
		}
		require.Greater(t, len(rows[1]), headerIdx["Confidence Percentage"])
		assert.Empty(t, rows[1][headerIdx["Agreement Number Check"]])
		assert.Empty(t, rows[1][headerIdx["Barcode Check"]])
		assert.Equal(t, "Not Okay (Blank)", rows[1][headerIdx["Date Check"]])
		assert.Equal(t, "50", rows[1][headerIdx["Confidence Percentage"]])

		mockJobRepo.AssertExpectations(t)
		mockCiti.AssertNotCalled(t, "FindForExport", mock.Anything)
	})

	t.Run("AllJobs", func(t *testing.T) {
		mockJobRepo := new(MockJobRepository)
		mockCiti := new(MockLedgerRepository)
		mockQuarantine := new(MockLedgerRepository)
		service := NewExportService(newTestLogger(), mockJobRepo, mockCiti, mockQuarantine, newTestPool(t))

		jobs := []job.Job{
			{BatchID: "1714497600000", Data: []job.Record{{AgreementNumber: "5123456789", Status: "Pending"}}},
			{BatchID: "1714497700000", AgreementNumber: "5000000001", Status: job.StatusMatched},
		}
		mockJobRepo.On("FindAll", ctx).Return(jobs, nil).Once()

		export, err := service.ExportJobs(ctx, "")

		require.NoError(t, err)
		assert.Equal(t, "jobs_export.xlsx", export.Filename)

		rows := readSheet(t, export)
		require.Len(t, rows, 3)
		mockJobRepo.AssertExpectations(t)
	})

	t.Run("StatuslessRowsExcluded", func(t *testing.T) {
		mockJobRepo := new(MockJobRepository)
		service := NewExportService(newTestLogger(), mockJobRepo, new(MockLedgerRepository), new(MockLedgerRepository), newTestPool(t))

		jobs := []job.Job{
			// Records without a status default to Pending and stay in; a
			// ledger-shaped row with no status at all would be dropped.
			{BatchID: "1714497600000", Data: []job.Record{{AgreementNumber: "5123456789"}}},
		}
		mockJobRepo.On("FindAll", ctx).Return(jobs, nil).Once()

		export, err := service.ExportJobs(ctx, "")

		require.NoError(t, err)
		rows := readSheet(t, export)
		require.Len(t, rows, 2)
		assert.Equal(t, "Pending", rows[1][6])
	})

	t.Run("BatchNotFound", func(t *testing.T) {
		mockJobRepo := new(MockJobRepository)
		service := NewExportService(newTestLogger(), mockJobRepo, new(MockLedgerRepository), new(MockLedgerRepository), newTestPool(t))

		mockJobRepo.On("FindOneByBatchID", ctx, "missing").Return(nil, job.ErrJobNotFound{ID: "missing"}).Once()

		_, err := service.ExportJobs(ctx, "missing")

		assert.ErrorIs(t, err, job.ErrJobNotFound{})
	})
}

func TestExportServiceImpl_ExportCitiData(t *testing.T) {
	ctx := context.Background()

	t.Run("CombinesLedgerAndQuarantine", func(t *testing.T) {
		mockJobRepo := new(MockJobRepository)
		mockCiti := new(MockLedgerRepository)
		mockQuarantine := new(MockLedgerRepository)
		service := NewExportService(newTestLogger(), mockJobRepo, mockCiti, mockQuarantine, newTestPool(t))

		citiEntries := []ledger.Entry{
			{AgreementNumber: "5123456789", CustomerName: "Priya Sharma", Status: job.StatusMatched, Date: "15-03-2024", BarcodeNumber: "1234567890123"},
		}
		quarantineEntries := []ledger.Entry{
			{AgreementNumber: "6123456789", Status: "Quarantined", Remarks: "Agreement number mismatch"},
		}
		mockCiti.On("FindForExport", ctx).Return(citiEntries, nil).Once()
		mockQuarantine.On("FindForExport", ctx).Return(quarantineEntries, nil).Once()

		export, err := service.ExportCitiData(ctx)

		require.NoError(t, err)
		assert.Equal(t, "citi_data_export.xlsx", export.Filename)

		rows := readSheet(t, export)
		require.Len(t, rows, 3)
		assert.Equal(t, report.BankCiti, rows[1][0])
		assert.Equal(t, report.BankQuarantined, rows[2][0])

		// The job-centric scope is never touched.
		mockJobRepo.AssertNotCalled(t, "FindAll", mock.Anything)
		mockCiti.AssertExpectations(t)
		mockQuarantine.AssertExpectations(t)
	})

	t.Run("QualityChecksScoreLedgerRows", func(t *testing.T) {
		mockCiti := new(MockLedgerRepository)
		mockQuarantine := new(MockLedgerRepository)
		service := NewExportService(newTestLogger(), new(MockJobRepository), mockCiti, mockQuarantine, newTestPool(t))

		// Name check passes for free off the Axis scope, the other three pass
		// on their own merits.
		mockCiti.On("FindForExport", ctx).Return([]ledger.Entry{
			{AgreementNumber: "5123456789", Status: job.StatusMatched, Date: "15-03-2024", BarcodeNumber: "1234567890123"},
		}, nil).Once()
		mockQuarantine.On("FindForExport", ctx).Return([]ledger.Entry{}, nil).Once()

		export, err := service.ExportCitiData(ctx)
		require.NoError(t, err)

		rows := readSheet(t, export)
		require.Len(t, rows, 2)
		last := len(report.Columns()) - 1
		require.Greater(t, len(rows[1]), last)
		assert.Equal(t, "100", rows[1][last])
	})
}

func TestExportServiceImpl_LargeDataset(t *testing.T) {
	ctx := context.Background()

	mockJobRepo := new(MockJobRepository)
	service := NewExportService(newTestLogger(), mockJobRepo, new(MockLedgerRepository), new(MockLedgerRepository), newTestPool(t))

	records := make([]job.Record, 200)
	for i := range records {
		records[i] = job.Record{
			AgreementNumber: fmt.Sprintf("5%09d", i),
			Status:          "Pending",
		}
	}
	mockJobRepo.On("FindAll", ctx).Return([]job.Job{{BatchID: "1714497600000", Data: records}}, nil).Once()

	export, err := service.ExportJobs(ctx, "")

	require.NoError(t, err)
	rows := readSheet(t, export)
	require.Len(t, rows, 201)

	// Pool fan-out must preserve row order.
	assert.Equal(t, "5000000000", rows[1][1])
	assert.Equal(t, "5000000199", rows[200][1])
}
