// Package job defines the document-tracking batch model. A Job is either an
// uploaded batch carrying an embedded record list, or a legacy document that
// holds the record fields directly at the top level. Both shapes are served
// by every operation.
package job

import (
	"time"

	"github.com/docuflow/docuflow-backend/internal/domain/identity"
)

// MatchedData holds the reconciled counterpart of a scanned record, written
// by the matching front end as a nested sub-object.
type MatchedData struct {
	AgreementNumber any    `bson:"agreement_number,omitempty" json:"agreement_number,omitempty"`
	CustomerName    string `bson:"customer_name,omitempty" json:"customer_name,omitempty"`
	Date            string `bson:"date,omitempty" json:"date,omitempty"`
}

// Record is one agreement's scan/match data inside a Job's data array.
// Agreement numbers arrive as numbers or strings depending on the upload
// path, so the field stays untyped and is always compared through
// identity.Normalize.
type Record struct {
	AgreementNumber  any          `bson:"Agreement Number,omitempty" json:"Agreement Number,omitempty"`
	CustomerName     string       `bson:"Customer Name,omitempty" json:"Customer Name,omitempty"`
	Date             string       `bson:"date,omitempty" json:"date,omitempty"`
	Status           string       `bson:"status,omitempty" json:"status,omitempty"`
	StorageBoxNumber string       `bson:"storageBoxNumber,omitempty" json:"storageBoxNumber,omitempty"`
	ScanBoxNumber    string       `bson:"scanBoxNumber,omitempty" json:"scanBoxNumber,omitempty"`
	BarcodeNumber    string       `bson:"barcode_number,omitempty" json:"barcode_number,omitempty"`
	ScannedBarcode   string       `bson:"scanned_barcode,omitempty" json:"scanned_barcode,omitempty"`
	Password         string       `bson:"password,omitempty" json:"password,omitempty"`
	MatchedImage     string       `bson:"matchedImage,omitempty" json:"matchedImage,omitempty"`
	MatchedDate      string       `bson:"matchedDate,omitempty" json:"matchedDate,omitempty"`
	Remarks          string       `bson:"remarks,omitempty" json:"remarks,omitempty"`
	JobID            string       `bson:"jobId,omitempty" json:"jobId,omitempty"`
	MatchedData      *MatchedData `bson:"matchedData,omitempty" json:"matchedData,omitempty"`
}

// StatusMatched marks a record that has been reconciled against the ledger.
const StatusMatched = "Matched"

// Job is one uploaded batch or legacy work item. ID stays untyped because
// documents are keyed by ObjectID or, for synthesized batch views, by the
// batch string itself.
type Job struct {
	ID              any       `bson:"_id,omitempty" json:"_id,omitempty"`
	BatchID         string    `bson:"batchId,omitempty" json:"batchId,omitempty"`
	AgreementNumber any       `bson:"Agreement Number,omitempty" json:"Agreement Number,omitempty"`
	CustomerName    string    `bson:"Customer Name,omitempty" json:"Customer Name,omitempty"`
	Status          string    `bson:"status,omitempty" json:"status,omitempty"`
	Data            []Record  `bson:"data,omitempty" json:"data"`
	CreatedAt       time.Time `bson:"createdAt,omitempty" json:"createdAt,omitempty"`
	UpdatedAt       time.Time `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// IDString renders the job's primary id for comparisons and responses.
func (j *Job) IDString() string {
	return identity.Stringify(j.ID)
}

// MatchedCount counts reconciled entries: records in the data array with a
// Matched status, plus the job itself when marked Matched at the top level.
func (j *Job) MatchedCount() int64 {
	var count int64
	for _, entry := range j.Data {
		if entry.Status == StatusMatched {
			count++
		}
	}
	if j.Status == StatusMatched {
		count++
	}
	return count
}

// FindEntry returns the first record in data whose agreement number
// normalizes equal to key, or nil.
func FindEntry(data []Record, key identity.Key) *Record {
	for i := range data {
		if key.Matches(data[i].AgreementNumber) {
			return &data[i]
		}
	}
	return nil
}

// AgreementMatch is the result of searching every job for an agreement
// number. A legitimate miss yields Exists == false with the remaining
// fields zeroed; it is never an error.
type AgreementMatch struct {
	Exists         bool    `json:"exists"`
	MatchedEntry   *Record `json:"matchedEntry"`
	JobID          string  `json:"jobId,omitempty"`
	IsRequestedJob bool    `json:"isRequestedJob"`
	Job            *Job    `json:"fullDocument,omitempty"`
}

// SampleData is the display sample carried by a batch summary.
type SampleData struct {
	AgreementNumber any    `bson:"Agreement Number" json:"Agreement Number"`
	CustomerName    string `bson:"Customer Name" json:"Customer Name"`
}

// BatchSummary is one row of the grouped batch listing. Data is always an
// empty array, kept for compatibility with consumers of the full job shape.
type BatchSummary struct {
	ID         any        `bson:"_id" json:"_id"`
	BatchID    any        `bson:"batchId" json:"batchId"`
	Count      int64      `bson:"count" json:"count"`
	CreatedAt  time.Time  `bson:"createdAt,omitempty" json:"createdAt"`
	UpdatedAt  time.Time  `bson:"updatedAt,omitempty" json:"updatedAt"`
	SampleData SampleData `bson:"sampleData" json:"sampleData"`
	Data       []Record   `bson:"data" json:"data"`
}
