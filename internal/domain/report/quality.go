package report

import (
	"fmt"
	"regexp"
	"strings"
)

// The four data-quality rules. Each returns an empty string on pass or a
// human-readable failure reason. Failures are data, never errors: they are
// recorded on the row and do not block anything.

var datePattern = regexp.MustCompile(`^\d{2}-\d{2}-\d{4}$`)

const (
	agreementNumberLength = 10
	barcodePrefixFJ       = "FJ"
	barcodeFJLength       = 15
)

// CheckAgreementNumber validates the matched agreement number: exactly 10
// characters, starting with the digit 5.
func CheckAgreementNumber(r Row) string {
	n := deref(r.MatchedAgreementNumber)
	if n == "" {
		return notOkay("Blank")
	}
	var reasons []string
	if len(n) != agreementNumberLength {
		reasons = append(reasons, fmt.Sprintf("Length is %d, expected %d", len(n), agreementNumberLength))
	}
	if !strings.HasPrefix(n, "5") {
		reasons = append(reasons, "Does not start with '5'")
	}
	return notOkayIf(reasons)
}

// CheckCustomerNameMatch validates that some whitespace-delimited token of
// the assigned name appears, case-insensitively, inside some token of the
// matched name. Only job-sourced (Axis) rows are evaluated; every other row
// passes unconditionally.
func CheckCustomerNameMatch(r Row) string {
	if r.BankName != BankAxis {
		return ""
	}
	assign := deref(r.AssignCustomerName)
	matched := deref(r.MatchedCustomerName)
	if assign != "" && matched != "" {
		assignNames := strings.Fields(assign)
		matchedNames := strings.Fields(matched)
		for _, assignPart := range assignNames {
			for _, matchedPart := range matchedNames {
				if strings.Contains(strings.ToLower(matchedPart), strings.ToLower(assignPart)) {
					return ""
				}
			}
		}
		return notOkay("No partial match found")
	}
	var reasons []string
	if assign == "" {
		reasons = append(reasons, "Assign Customer Name is blank")
	}
	if matched == "" {
		reasons = append(reasons, "Matched Customer Name is blank")
	}
	return notOkayIf(reasons)
}

// CheckDate validates the matched date against the literal DD-MM-YYYY shape.
func CheckDate(r Row) string {
	date := deref(r.MatchedDate)
	if date == "" {
		return notOkay("Blank")
	}
	if !datePattern.MatchString(date) {
		return notOkay("Format not DD-MM-YYYY: " + date)
	}
	return ""
}

// CheckBarcode validates the barcode number: FJ-prefixed codes must be
// exactly 15 characters, anything else must be 13, 14 or 15.
func CheckBarcode(r Row) string {
	barcode := deref(r.BarcodeNumber)
	if barcode == "" {
		return notOkay("Blank")
	}
	if strings.HasPrefix(barcode, barcodePrefixFJ) {
		if len(barcode) != barcodeFJLength {
			return notOkay(fmt.Sprintf("Starts with FJ but length is %d, expected %d", len(barcode), barcodeFJLength))
		}
		return ""
	}
	switch len(barcode) {
	case 13, 14, 15:
		return ""
	}
	return notOkay(fmt.Sprintf("Length is %d, not 13, 14, 15, or FJ15", len(barcode)))
}

// EvaluateRow runs the four checks over the row and computes the confidence
// percentage: passing checks / 4 * 100. Pure; identical input yields
// identical output.
func EvaluateRow(r Row) Row {
	r.AgreementNumberCheck = CheckAgreementNumber(r)
	r.CustomerNameMatch = CheckCustomerNameMatch(r)
	r.DateCheck = CheckDate(r)
	r.BarcodeCheck = CheckBarcode(r)

	passed := 0
	for _, check := range []string{r.AgreementNumberCheck, r.CustomerNameMatch, r.DateCheck, r.BarcodeCheck} {
		if check == "" {
			passed++
		}
	}
	r.Confidence = float64(passed) / 4 * 100

	return r
}

// FilterEvaluable drops rows without a status; they are excluded from
// evaluation entirely.
func FilterEvaluable(rows []Row) []Row {
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if r.Status != "" {
			out = append(out, r)
		}
	}
	return out
}

// Evaluate filters out status-less rows and scores the rest.
func Evaluate(rows []Row) []Row {
	evaluable := FilterEvaluable(rows)
	for i, r := range evaluable {
		evaluable[i] = EvaluateRow(r)
	}
	return evaluable
}

func notOkay(reason string) string {
	return "Not Okay (" + reason + ")"
}

func notOkayIf(reasons []string) string {
	if len(reasons) == 0 {
		return ""
	}
	return notOkay(strings.Join(reasons, ", "))
}
