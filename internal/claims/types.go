// Package claims holds the domain model for batch claim submission:
// input rows, per-patient results, status aggregation, and billing
// classification. Everything here is pure; the portal package owns the
// side effects.
package claims

import (
	"fmt"
	"strings"
	"time"
)

// Status is the closed set of per-patient outcomes.
type Status int

const (
	StatusUnknown Status = iota
	StatusBilled
	StatusAppointmentCancelled
	StatusSuccess
	StatusFailed
	StatusSkipped
	StatusSkippedDryRun
)

// String returns the display name for the status. These strings are what
// the aggregator and the spreadsheet writer render, so they are part of
// the output contract.
func (s Status) String() string {
	switch s {
	case StatusBilled:
		return "Billed"
	case StatusAppointmentCancelled:
		return "Appt. Cancelled"
	case StatusSuccess:
		return "Success"
	case StatusFailed:
		return "Failed"
	case StatusSkipped:
		return "Skipped"
	case StatusSkippedDryRun:
		return "Skipped (Dry Run)"
	default:
		return "Unknown"
	}
}

// InputRow is one normalized spreadsheet row. RowNumber is the positional
// identity within the sheet (1-based data row index) and is unique.
// Immutable once read.
type InputRow struct {
	RowNumber       int
	MRN             string
	CustomID        string
	DOS             string
	AppointmentDate string
	CPTCodes        []string
	ICDCode         string
	// RawBillingClassification is compared against the configured sentinel
	// to decide billable vs cancelled. Kept verbatim from the sheet.
	RawBillingClassification string
}

// PatientResult records the outcome for one matched claim entry, or for a
// row-level failure/skip (PatientIndex 0, TotalPatients 0 or 1). Created
// exactly once and never mutated.
type PatientResult struct {
	RowNumber        int
	PatientIndex     int
	TotalPatients    int
	Status           Status
	ErrorMessage     string
	BillingStatus    string
	ProcessingTimeMs int64
	Timestamp        time.Time
	Notes            string
}

// ValidationError marks an input row that fails required-field checks
// before any portal interaction happens.
type ValidationError struct {
	RowNumber int
	Field     string
	Reason    string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("row %d: invalid %s: %s", e.RowNumber, e.Field, e.Reason)
}

// Validate checks the required fields of a row. MRN is the only mandatory
// field; everything else degrades gracefully downstream.
func (r InputRow) Validate() error {
	if strings.TrimSpace(r.MRN) == "" {
		return &ValidationError{RowNumber: r.RowNumber, Field: "MRN", Reason: "missing"}
	}
	return nil
}
