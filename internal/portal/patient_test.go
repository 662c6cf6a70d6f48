package portal

import (
	"context"
	"strings"
	"testing"

	"claimpilot/internal/claims"
)

func TestBillablePatientBilled(t *testing.T) {
	script := newPortalScript(1)
	eng := NewEngine(script, testConfig(), false)

	res := eng.ProcessPatient(context.Background(), billableRow(1), 0, 1)
	if res.Status != claims.StatusBilled {
		t.Fatalf("status = %v (%s), want Billed", res.Status, res.ErrorMessage)
	}
	if res.BillingStatus != claims.LabelBilled {
		t.Errorf("billing status = %q, want %q", res.BillingStatus, claims.LabelBilled)
	}
	if res.Timestamp.IsZero() {
		t.Error("timestamp not recorded")
	}

	// Service date was unlocked, cleared, and written.
	dateEl := script.Element("input[name='service_date']", "")
	if dateEl == nil || dateEl.Value != "01/02/2025" {
		t.Errorf("service date element = %+v, want value 01/02/2025", dateEl)
	}
	unlocked := false
	for _, c := range script.CallsFor("eval") {
		if c.Target == "input[name='service_date']" && strings.Contains(c.Value, "removeAttribute('readonly')") {
			unlocked = true
		}
	}
	if !unlocked {
		t.Error("readonly unlock eval never ran against the date field")
	}

	// Diagnosis search is queried with the pre-decimal stem.
	searched := false
	for _, c := range script.CallsFor("fill") {
		if c.Target == "input[name='diagnosis_code']" && c.Value == "E11" {
			searched = true
		}
	}
	if !searched {
		t.Error("diagnosis search was not filled with the code stem")
	}
}

func TestCancelledPatientSkipsServiceFields(t *testing.T) {
	script := newPortalScript(1)
	eng := NewEngine(script, testConfig(), false)

	res := eng.ProcessPatient(context.Background(), cancelledRow(1), 0, 1)
	if res.Status != claims.StatusAppointmentCancelled {
		t.Fatalf("status = %v (%s), want AppointmentCancelled", res.Status, res.ErrorMessage)
	}
	if res.BillingStatus != claims.LabelApptCancelled {
		t.Errorf("billing status = %q, want %q", res.BillingStatus, claims.LabelApptCancelled)
	}
	if !strings.Contains(res.Notes, "service fields skipped") {
		t.Errorf("notes %q should record the skip", res.Notes)
	}
	for _, c := range script.CallsFor("fill") {
		if c.Target == "input[name='service_date']" || c.Target == "input[name='diagnosis_code']" {
			t.Errorf("cancelled appointment wrote service field %s", c.Target)
		}
	}
}

func TestSaveFailureFailsPatient(t *testing.T) {
	script := newPortalScript(1)
	script.FailWith("click", "#save-claim", errTest)
	eng := NewEngine(script, testConfig(), false)

	res := eng.ProcessPatient(context.Background(), billableRow(1), 0, 1)
	if res.Status != claims.StatusFailed {
		t.Fatalf("status = %v, want Failed", res.Status)
	}
	if !strings.Contains(res.ErrorMessage, "save") {
		t.Errorf("error message %q should name the save step", res.ErrorMessage)
	}
}

func TestMissingConfirmationFailsPatient(t *testing.T) {
	script := newPortalScript(1)
	script.FailWith("locate", "div.toast-success", errTest)
	eng := NewEngine(script, testConfig(), false)

	res := eng.ProcessPatient(context.Background(), billableRow(1), 0, 1)
	if res.Status != claims.StatusFailed {
		t.Fatalf("status = %v, want Failed", res.Status)
	}
	if !strings.Contains(res.ErrorMessage, "save confirmation") {
		t.Errorf("error message %q should name the confirmation step", res.ErrorMessage)
	}
}

func TestMissingBillingOptionDegradesToFirst(t *testing.T) {
	script := newPortalScript(1)
	// Rename the Billed option so the labeled lookup misses and the
	// classification falls back to the first available entry.
	opt := script.Element(selDialogOption, "Billed")
	if opt == nil {
		t.Fatal("script missing Billed option")
	}
	opt.Text = "Invoiced"
	eng := NewEngine(script, testConfig(), false)

	res := eng.ProcessPatient(context.Background(), billableRow(1), 0, 1)
	if res.Status != claims.StatusBilled {
		t.Fatalf("status = %v (%s), want Billed with caveat", res.Status, res.ErrorMessage)
	}
	if !strings.Contains(res.Notes, "selected first available") {
		t.Errorf("notes %q should carry the degraded-selection caveat", res.Notes)
	}
}

func TestDegradedServiceFieldsStillSave(t *testing.T) {
	script := newPortalScript(1)
	script.FailWith("locate", "input[name='service_date']", errTest)
	script.FailWith("locate", "form.claim-edit input.date-field", errTest)
	eng := NewEngine(script, testConfig(), false)

	res := eng.ProcessPatient(context.Background(), billableRow(1), 0, 1)
	if res.Status != claims.StatusBilled {
		t.Fatalf("status = %v (%s), want Billed despite degraded fields", res.Status, res.ErrorMessage)
	}
	if !strings.Contains(res.Notes, "service fields degraded") {
		t.Errorf("notes %q should record the degradation", res.Notes)
	}
}
