package job

import "github.com/docuflow/docuflow-backend/internal/domain/identity"

// MergeAgreementEntry applies updated into data: if an entry for the same
// normalized agreement number exists it is replaced wholesale at its index,
// otherwise updated is appended. The input slice is not mutated. The boolean
// reports whether an existing entry was replaced.
//
// This is what keeps the invariant that a job's data array holds at most one
// entry per normalized agreement number; the store does not enforce it.
func MergeAgreementEntry(data []Record, key identity.Key, updated Record) ([]Record, bool) {
	merged := make([]Record, len(data), len(data)+1)
	copy(merged, data)

	for i := range data {
		if key.Matches(data[i].AgreementNumber) {
			merged[i] = updated
			return merged, true
		}
	}

	return append(merged, updated), false
}
