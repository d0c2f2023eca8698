// Package ledger models the reference ("citi data") and quarantine stores.
// The two stores hold structurally identical entries; they differ only in
// which collection they live in and the provenance tag applied at export
// time.
package ledger

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Entry is one confirmed reference record or quarantined record. The field
// set mirrors an embedded job record flattened into its own document, plus
// the owning jobId used for idempotent insertion.
type Entry struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	AgreementNumber  any                `bson:"Agreement Number,omitempty" json:"Agreement Number,omitempty"`
	CustomerName     string             `bson:"Customer Name,omitempty" json:"Customer Name,omitempty"`
	Date             string             `bson:"date,omitempty" json:"date,omitempty"`
	Status           string             `bson:"status,omitempty" json:"status,omitempty"`
	StorageBoxNumber string             `bson:"storageBoxNumber,omitempty" json:"storageBoxNumber,omitempty"`
	MatchedImage     string             `bson:"matchedImage,omitempty" json:"matchedImage,omitempty"`
	MatchedDate      string             `bson:"matchedDate,omitempty" json:"matchedDate,omitempty"`
	ScanBoxNumber    string             `bson:"scanBoxNumber,omitempty" json:"scanBoxNumber,omitempty"`
	BarcodeNumber    string             `bson:"barcode_number" json:"barcode_number"`
	ScannedBarcode   string             `bson:"scanned_barcode" json:"scanned_barcode"`
	Password         string             `bson:"password,omitempty" json:"password,omitempty"`
	JobID            string             `bson:"jobId,omitempty" json:"jobId,omitempty"`
	Remarks          string             `bson:"remarks,omitempty" json:"remarks,omitempty"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
}

// ApplyDefaults fills the fields the ingestion path defaults: a Matched
// status and a scanned barcode falling back to the printed barcode number.
func (e *Entry) ApplyDefaults(now time.Time) {
	if e.Status == "" {
		e.Status = "Matched"
	}
	if e.ScannedBarcode == "" {
		e.ScannedBarcode = e.BarcodeNumber
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
}
