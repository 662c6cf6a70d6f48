package portal

import (
	"context"
	"fmt"
	"strings"
	"time"

	"claimpilot/internal/claims"
	"claimpilot/internal/logging"
)

// ProcessPatient drives one matched claim entry through
// open/edit/fill/classify/save/confirm. Every failure, including a
// panic, becomes a Failed result; processing time is recorded on every
// path.
func (e *Engine) ProcessPatient(ctx context.Context, row claims.InputRow, idx, total int) (result claims.PatientResult) {
	start := time.Now()
	result = claims.PatientResult{
		RowNumber:     row.RowNumber,
		PatientIndex:  idx,
		TotalPatients: total,
	}
	defer func() {
		if r := recover(); r != nil {
			result.Status = claims.StatusFailed
			result.ErrorMessage = fmt.Sprintf("panic: %v", r)
			logging.PatientError("row %d patient %d/%d panicked: %v", row.RowNumber, idx+1, total, r)
		}
		result.ProcessingTimeMs = time.Since(start).Milliseconds()
		result.Timestamp = time.Now()
	}()

	billable := claims.IsBillable(row.RawBillingClassification, e.cfg.Billing.Sentinel)
	result.BillingStatus = claims.BillingLabel(billable)

	fail := func(step string, err error) claims.PatientResult {
		result.Status = claims.StatusFailed
		result.ErrorMessage = step + ": " + err.Error()
		logging.PatientError("row %d patient %d/%d: %s: %v", row.RowNumber, idx+1, total, step, err)
		return result
	}

	// OpenRecord
	entry, err := e.res.Resolve(ctx, listingEntry(idx))
	if err != nil {
		return fail("open record", err)
	}
	if err := e.drv.Click(ctx, entry); err != nil {
		return fail("open record", err)
	}

	// OpenEditForm
	edit, err := e.res.Resolve(ctx, editFormButton())
	if err != nil {
		return fail("open edit form", err)
	}
	if err := e.drv.Click(ctx, edit); err != nil {
		return fail("open edit form", err)
	}

	var notes []string

	// FillServiceFields or SkipServiceFields
	if billable {
		if err := e.fillServiceFields(ctx, row); err != nil {
			// Degraded, not fatal: the claim can still be classified and
			// saved without the service fields.
			notes = append(notes, "service fields degraded: "+err.Error())
			logging.PatientWarn("row %d patient %d/%d: service fields degraded: %v", row.RowNumber, idx+1, total, err)
		}
	} else {
		notes = append(notes, "appointment cancelled; service fields skipped")
	}

	// SetBillingClassification
	caveat, err := e.setBillingClassification(ctx, billable)
	if err != nil {
		return fail("billing classification", err)
	}
	if caveat != "" {
		notes = append(notes, caveat)
	}

	// Save
	save, err := e.res.Resolve(ctx, saveButton())
	if err != nil {
		return fail("save", err)
	}
	if err := e.drv.Click(ctx, save); err != nil {
		return fail("save", err)
	}

	// Confirm
	if _, err := e.res.Resolve(ctx, saveConfirmation()); err != nil {
		return fail("save confirmation", err)
	}

	// Return to the listing so the next patient's position is reachable.
	// Best effort: the next patient's open step reports the real failure
	// if this does not work.
	if back, berr := e.res.Resolve(ctx, backToListing()); berr == nil {
		if cerr := e.drv.Click(ctx, back); cerr != nil {
			logging.PatientWarn("row %d patient %d/%d: back to listing: %v", row.RowNumber, idx+1, total, cerr)
		}
	}

	result.Status = claims.StatusForBilling(billable)
	result.Notes = strings.Join(notes, "; ")
	logging.Patient("row %d patient %d/%d: %s", row.RowNumber, idx+1, total, result.Status)
	return result
}

// fillServiceFields writes the service date and selects the diagnosis
// code for a billable appointment.
func (e *Engine) fillServiceFields(ctx context.Context, row claims.InputRow) error {
	h, err := e.res.Resolve(ctx, serviceDateField())
	if err != nil {
		return err
	}

	// The portal renders the date field readonly until unlocked.
	if err := e.drv.Eval(ctx, h, `() => this.removeAttribute('readonly')`); err != nil {
		logging.PatientWarn("readonly unlock failed: %v", err)
	}

	date := row.DOS
	if date == "" {
		date = row.AppointmentDate
	}
	if date != "" {
		if err := e.drv.Clear(ctx, h); err != nil {
			return err
		}
		if err := e.drv.Fill(ctx, h, date); err != nil {
			return err
		}
	}

	code := row.ICDCode
	if code == "" {
		code = e.cfg.Billing.DefaultICD
	}
	return e.selectDiagnosis(ctx, code)
}

// selectDiagnosis opens the searchable diagnosis list, queries it with
// the pre-decimal portion of the code, and picks the best option per
// PickDiagnosisOption.
func (e *Engine) selectDiagnosis(ctx context.Context, code string) error {
	h, err := e.res.Resolve(ctx, diagnosisSearchField())
	if err != nil {
		return err
	}
	if err := e.drv.Click(ctx, h); err != nil {
		return err
	}
	if err := e.drv.Clear(ctx, h); err != nil {
		return err
	}
	if err := e.drv.Fill(ctx, h, CodeStem(code)); err != nil {
		return err
	}

	options, err := e.drv.Query(ctx, optionListDescriptor())
	if err != nil {
		return err
	}
	if len(options) == 0 {
		return fmt.Errorf("no diagnosis options for %q", code)
	}

	texts := make([]string, len(options))
	for i, opt := range options {
		text, terr := e.drv.Text(ctx, opt)
		if terr != nil {
			logging.PatientWarn("diagnosis option %d unreadable: %v", i, terr)
			continue
		}
		texts[i] = text
	}

	pick := PickDiagnosisOption(texts, code)
	if pick < 0 {
		return fmt.Errorf("no usable diagnosis option for %q", code)
	}
	return e.drv.Click(ctx, options[pick])
}

// setBillingClassification selects the classification from the form's
// fixed enumeration. When the exact label is missing it degrades to the
// first available option and returns a caveat; only a completely
// unusable field is an error.
func (e *Engine) setBillingClassification(ctx context.Context, billable bool) (string, error) {
	field, err := e.res.Resolve(ctx, billingClassificationField())
	if err != nil {
		return "", err
	}
	if err := e.drv.Click(ctx, field); err != nil {
		return "", err
	}

	label := claims.BillingLabel(billable)
	opt, err := e.res.Resolve(ctx, dropdownOption(label))
	if err == nil {
		return "", e.drv.Click(ctx, opt)
	}

	first, ferr := e.res.Resolve(ctx, firstDropdownOption())
	if ferr != nil {
		return "", err
	}
	if cerr := e.drv.Click(ctx, first); cerr != nil {
		return "", cerr
	}
	caveat := fmt.Sprintf("billing option %q unavailable; selected first available", label)
	logging.PatientWarn(caveat)
	return caveat, nil
}
