package portal

import (
	"context"
	"fmt"
	"time"

	"claimpilot/internal/claims"
	"claimpilot/internal/driver"
	"claimpilot/internal/logging"
	"claimpilot/internal/progress"
)

// Listing grid column positions, left to right.
const (
	colPosCustomID = 0
	colPosMRN      = 1
	colPosApptDate = 2
)

// ProcessRow runs one input row end to end: readiness gates, the three
// row-scoped filters, match-count discovery, and per-patient dispatch.
// It returns the updated session state and the row's results. The error
// is non-nil only when the session itself is lost; every other failure
// is converted into a recorded result.
func (e *Engine) ProcessRow(ctx context.Context, row claims.InputRow, st SessionState, tr progress.Tracker) (SessionState, []claims.PatientResult, error) {
	if tr == nil {
		tr = progress.Noop{}.NewTracker(0, 0, "")
	}
	start := time.Now()

	if err := row.Validate(); err != nil {
		logging.RowWarn("row %d: %v", row.RowNumber, err)
		return st, []claims.PatientResult{rowResult(row, claims.StatusSkipped, err.Error(), "", start)}, nil
	}

	// Dry run short-circuits before any driver call; validation above
	// still happened.
	if e.dryRun {
		return st, []claims.PatientResult{rowResult(row, claims.StatusSkippedDryRun, "", "dry run", start)}, nil
	}

	tr.SetStage("preparing session")
	st, err := e.EnsureReady(ctx, st)
	if err != nil {
		if e.sessionGone(err) {
			return st, []claims.PatientResult{rowResult(row, claims.StatusFailed, err.Error(), "", start)},
				&driver.SessionLostError{Reason: err.Error()}
		}
		return st, []claims.PatientResult{rowResult(row, claims.StatusFailed, err.Error(), "", start)}, nil
	}

	tr.SetStage("filtering")

	// Optional filters degrade; the row continues with whichever filters
	// succeeded.
	if err := e.setColumnFilter(ctx, "Custom ID", colPosCustomID, row.CustomID); err != nil {
		logging.RowWarn("row %d: custom id filter degraded: %v", row.RowNumber, err)
	}

	// MRN is the mandatory filter: without it the listing shows the
	// wrong patients, so the row aborts.
	if err := e.setColumnFilter(ctx, "MRN", colPosMRN, row.MRN); err != nil {
		if e.sessionGone(err) {
			return st, []claims.PatientResult{rowResult(row, claims.StatusFailed, err.Error(), "", start)},
				&driver.SessionLostError{Reason: err.Error()}
		}
		logging.RowWarn("row %d: mrn filter failed: %v", row.RowNumber, err)
		return st, []claims.PatientResult{rowResult(row, claims.StatusFailed, "MRN filter: "+err.Error(), "", start)}, nil
	}

	if err := e.setColumnFilter(ctx, "Appointment Date", colPosApptDate, row.AppointmentDate); err != nil {
		logging.RowWarn("row %d: appointment date filter degraded: %v", row.RowNumber, err)
	}

	// Capture the match count once; positions are not re-queried between
	// patients because the grid selection mutates in place.
	handles, err := e.drv.Query(ctx, driver.Descriptor{Selector: selListingRow})
	if err != nil {
		if e.sessionGone(err) {
			return st, []claims.PatientResult{rowResult(row, claims.StatusFailed, err.Error(), "", start)},
				&driver.SessionLostError{Reason: err.Error()}
		}
		return st, []claims.PatientResult{rowResult(row, claims.StatusFailed, "listing query: "+err.Error(), "", start)}, nil
	}
	total := len(handles)
	logging.Row("row %d (MRN %s): %d matching entries", row.RowNumber, row.MRN, total)

	if total == 0 {
		return st, []claims.PatientResult{rowResult(row, claims.StatusSkipped, "", "no matching entries", start)}, nil
	}

	results := make([]claims.PatientResult, 0, total)
	for i := 0; i < total; i++ {
		tr.SetPatients(i+1, total)
		res := e.ProcessPatient(ctx, row, i, total)
		results = append(results, res)
		if !e.drv.IsSessionOpen() {
			return st, results, &driver.SessionLostError{Reason: fmt.Sprintf("after row %d patient %d", row.RowNumber, i+1)}
		}
	}
	return st, results, nil
}

// setColumnFilter applies remove-then-set semantics: the filter is fully
// cleared before the new value is written, guarding against fields that
// concatenate instead of replacing. An empty value leaves the filter
// cleared.
func (e *Engine) setColumnFilter(ctx context.Context, column string, pos int, value string) error {
	h, err := e.res.Resolve(ctx, columnFilter(column, pos))
	if err != nil {
		return err
	}
	if err := e.drv.Clear(ctx, h); err != nil {
		return err
	}
	if value != "" {
		if err := e.drv.Fill(ctx, h, value); err != nil {
			return err
		}
	}
	return e.drv.Press(ctx, h, "Enter")
}

func rowResult(row claims.InputRow, status claims.Status, errMsg, notes string, start time.Time) claims.PatientResult {
	return claims.PatientResult{
		RowNumber:        row.RowNumber,
		PatientIndex:     0,
		TotalPatients:    0,
		Status:           status,
		ErrorMessage:     errMsg,
		Notes:            notes,
		ProcessingTimeMs: time.Since(start).Milliseconds(),
		Timestamp:        time.Now(),
	}
}
