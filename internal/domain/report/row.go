// Package report implements the tabular-export core: flattening the four
// stored document shapes into one uniform row, scoring each row with the
// data-quality checks, and defining the fixed column layout handed to the
// spreadsheet writer.
package report

import (
	"time"
)

// Provenance tags applied to exported rows by source category.
const (
	BankAxis        = "Axis Bank"
	BankCiti        = "Citi Bank"
	BankQuarantined = "Quarantined"
)

// SheetName is the single worksheet every export is written to.
const SheetName = "Combined Data"

// Row is the uniform tabular shape. Pointer fields distinguish a missing
// value (nil, rendered empty) from the literal "N/A" placeholder used for
// box/barcode columns on job-derived rows; downstream display depends on
// that distinction.
type Row struct {
	BankName               string
	AssignAgreementNumber  *string
	AssignCustomerName     *string
	MatchedAgreementNumber *string
	MatchedCustomerName    *string
	MatchedDate            *string
	Status                 string
	StorageBoxNumber       *string
	ScanBoxNumber          *string
	BarcodeNumber          *string
	ScannedBarcode         *string
	Password               *string
	JobID                  *string
	CreatedAt              *time.Time

	AgreementNumberCheck string
	CustomerNameMatch    string
	DateCheck            string
	BarcodeCheck         string
	Confidence           float64
}

// Column pairs an export header with its width hint.
type Column struct {
	Header string
	Width  float64
}

// Columns returns the fixed export column order with width hints.
func Columns() []Column {
	return []Column{
		{"Bank Name", 15},
		{"Assign Agreement Number", 20},
		{"Assign Customer Name", 30},
		{"Matched Agreement Number", 20},
		{"Matched Customer Name", 30},
		{"Matched Date", 15},
		{"status", 10},
		{"storageBoxNumber", 15},
		{"scanBoxNumber", 15},
		{"barcode_number", 15},
		{"scanned_barcode", 15},
		{"password", 15},
		{"jobId", 20},
		{"createdAt", 20},
		{"Agreement Number Check", 30},
		{"Customer Name Match", 30},
		{"Date Check", 30},
		{"Barcode Check", 30},
		{"Confidence Percentage", 10},
	}
}

// Cells renders the row in Columns() order for the spreadsheet writer.
func (r Row) Cells() []any {
	return []any{
		r.BankName,
		deref(r.AssignAgreementNumber),
		deref(r.AssignCustomerName),
		deref(r.MatchedAgreementNumber),
		deref(r.MatchedCustomerName),
		deref(r.MatchedDate),
		r.Status,
		deref(r.StorageBoxNumber),
		deref(r.ScanBoxNumber),
		deref(r.BarcodeNumber),
		deref(r.ScannedBarcode),
		deref(r.Password),
		deref(r.JobID),
		timeCell(r.CreatedAt),
		r.AgreementNumberCheck,
		r.CustomerNameMatch,
		r.DateCheck,
		r.BarcodeCheck,
		r.Confidence,
	}
}

// CellRows renders a whole dataset for the writer.
func CellRows(rows []Row) [][]any {
	out := make([][]any, len(rows))
	for i, r := range rows {
		out[i] = r.Cells()
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func timeCell(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
