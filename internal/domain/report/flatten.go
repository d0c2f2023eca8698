package report

import (
	"time"

	"github.com/docuflow/docuflow-backend/internal/domain/identity"
	"github.com/docuflow/docuflow-backend/internal/domain/job"
	"github.com/docuflow/docuflow-backend/internal/domain/ledger"
)

// notAvailable is the literal placeholder job-derived rows carry for missing
// box and barcode columns. Ledger and quarantine rows leave those columns
// null instead.
const notAvailable = "N/A"

// FlattenJob maps a job onto export rows: one row per embedded record, or a
// single row built from the top-level fields for legacy jobs without a data
// array. Either way the row count equals max(len(data), 1).
func FlattenJob(j job.Job) []Row {
	if len(j.Data) == 0 {
		return []Row{legacyJobRow(j)}
	}
	rows := make([]Row, 0, len(j.Data))
	for _, rec := range j.Data {
		rows = append(rows, recordRow(j, rec))
	}
	return rows
}

// FlattenJobs maps a set of jobs onto one flat dataset.
func FlattenJobs(jobs []job.Job) []Row {
	var rows []Row
	for _, j := range jobs {
		rows = append(rows, FlattenJob(j)...)
	}
	return rows
}

// FlattenEntry maps a ledger or quarantine entry onto an export row with the
// given provenance tag. Assign columns stay null; Matched columns come
// straight from the entry.
func FlattenEntry(e ledger.Entry, bankName string) Row {
	return Row{
		BankName:               bankName,
		MatchedAgreementNumber: anyPtr(e.AgreementNumber),
		MatchedCustomerName:    strPtr(e.CustomerName),
		MatchedDate:            strPtr(e.Date),
		Status:                 e.Status,
		StorageBoxNumber:       strPtr(e.StorageBoxNumber),
		ScanBoxNumber:          strPtr(e.ScanBoxNumber),
		BarcodeNumber:          strPtr(e.BarcodeNumber),
		ScannedBarcode:         strPtr(e.ScannedBarcode),
		Password:               strPtr(e.Password),
		JobID:                  strPtr(e.JobID),
		CreatedAt:              timePtr(e.CreatedAt),
	}
}

// FlattenEntries maps a whole entry store onto rows under one provenance tag.
func FlattenEntries(entries []ledger.Entry, bankName string) []Row {
	rows := make([]Row, len(entries))
	for i, e := range entries {
		rows[i] = FlattenEntry(e, bankName)
	}
	return rows
}

func recordRow(j job.Job, rec job.Record) Row {
	return Row{
		BankName:               BankAxis,
		AssignAgreementNumber:  anyPtr(rec.AgreementNumber),
		AssignCustomerName:     strPtr(j.CustomerName),
		MatchedAgreementNumber: matchedField(rec.MatchedData, func(m *job.MatchedData) *string { return anyPtr(m.AgreementNumber) }),
		MatchedCustomerName:    matchedField(rec.MatchedData, func(m *job.MatchedData) *string { return strPtr(m.CustomerName) }),
		MatchedDate:            matchedField(rec.MatchedData, func(m *job.MatchedData) *string { return strPtr(m.Date) }),
		Status:                 defaultStatus(rec.Status),
		StorageBoxNumber:       orNA(rec.StorageBoxNumber),
		ScanBoxNumber:          orNA(rec.ScanBoxNumber),
		BarcodeNumber:          orNA(rec.BarcodeNumber),
		ScannedBarcode:         orNA(rec.ScannedBarcode),
		JobID:                  strPtr(j.BatchID),
		CreatedAt:              timePtr(j.UpdatedAt),
	}
}

func legacyJobRow(j job.Job) Row {
	return Row{
		BankName:              BankAxis,
		AssignAgreementNumber: anyPtr(j.AgreementNumber),
		AssignCustomerName:    strPtr(j.CustomerName),
		Status:                defaultStatus(j.Status),
		StorageBoxNumber:      orNA(""),
		ScanBoxNumber:         orNA(""),
		BarcodeNumber:         orNA(""),
		ScannedBarcode:        orNA(""),
		JobID:                 strPtr(j.BatchID),
		CreatedAt:             timePtr(j.UpdatedAt),
	}
}

// defaultStatus fills the Pending status job-derived rows carry when no
// record status was ever written.
func defaultStatus(s string) string {
	if s == "" {
		return "Pending"
	}
	return s
}

func matchedField(m *job.MatchedData, pick func(*job.MatchedData) *string) *string {
	if m == nil {
		return nil
	}
	return pick(m)
}

func orNA(s string) *string {
	if s == "" {
		s = notAvailable
	}
	return &s
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func anyPtr(v any) *string {
	s := identity.Stringify(v)
	return strPtr(s)
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
