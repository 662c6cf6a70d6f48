package portal

import (
	"context"
	"strings"
	"testing"

	"claimpilot/internal/claims"
	"claimpilot/internal/driver"
)

const selMRNFilter = "table.claims-grid thead input[data-column='MRN']"

func TestColumnFilterClearsBeforeWriting(t *testing.T) {
	script := newPortalScript(1)
	eng := NewEngine(script, testConfig(), false)

	row2 := billableRow(2)
	row2.MRN = "MRN-002"

	st, _, err := eng.ProcessRow(context.Background(), billableRow(1), SessionState{}, nil)
	if err != nil {
		t.Fatalf("row 1: %v", err)
	}
	if _, _, err := eng.ProcessRow(context.Background(), row2, st, nil); err != nil {
		t.Fatalf("row 2: %v", err)
	}

	// The script driver's Fill appends instead of replacing, so the final
	// value only equals the latest MRN if the filter was cleared first.
	el := script.Element(selMRNFilter, "")
	if el == nil {
		t.Fatal("MRN filter element missing from script")
	}
	if el.Value != "MRN-002" {
		t.Errorf("MRN filter value = %q, want %q", el.Value, "MRN-002")
	}

	// Clear must precede fill on every application.
	lastOp := ""
	for _, c := range script.Calls() {
		if c.Target != selMRNFilter {
			continue
		}
		if c.Op == "fill" && lastOp != "clear" {
			t.Errorf("fill on MRN filter not preceded by clear (previous op %q)", lastOp)
		}
		lastOp = c.Op
	}
}

func TestMandatoryMRNFilterFailureFailsRow(t *testing.T) {
	script := newPortalScript(1)
	script.FailWith("locate", selMRNFilter, errTest)
	eng := NewEngine(script, testConfig(), false)

	_, results, err := eng.ProcessRow(context.Background(), billableRow(1), SessionState{}, nil)
	if err != nil {
		t.Fatalf("session should survive a filter failure: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected one row-level result, got %d", len(results))
	}
	if results[0].Status != claims.StatusFailed {
		t.Errorf("status = %v, want Failed", results[0].Status)
	}
	if !strings.Contains(results[0].ErrorMessage, "MRN filter") {
		t.Errorf("error message %q should name the MRN filter", results[0].ErrorMessage)
	}
	if len(script.CallsFor("query")) != 0 {
		t.Error("listing must not be queried after the mandatory filter fails")
	}
}

func TestOptionalFilterFailureDegrades(t *testing.T) {
	script := newPortalScript(1)
	script.FailWith("locate", "table.claims-grid thead input[data-column='Custom ID']", errTest)
	eng := NewEngine(script, testConfig(), false)

	_, results, err := eng.ProcessRow(context.Background(), billableRow(1), SessionState{}, nil)
	if err != nil {
		t.Fatalf("ProcessRow: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected one patient result, got %d", len(results))
	}
	if results[0].Status != claims.StatusBilled {
		t.Errorf("status = %v, want Billed despite degraded optional filter", results[0].Status)
	}
}

func TestZeroMatchesSkipsRow(t *testing.T) {
	script := newPortalScript(0)
	eng := NewEngine(script, testConfig(), false)

	_, results, err := eng.ProcessRow(context.Background(), billableRow(1), SessionState{}, nil)
	if err != nil {
		t.Fatalf("ProcessRow: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected one result, got %d", len(results))
	}
	if results[0].Status != claims.StatusSkipped {
		t.Errorf("status = %v, want Skipped", results[0].Status)
	}
	if !strings.Contains(results[0].Notes, "no matching entries") {
		t.Errorf("notes %q should record the empty match", results[0].Notes)
	}
}

func TestMultipleMatchesProcessEachPatient(t *testing.T) {
	script := newPortalScript(2)
	eng := NewEngine(script, testConfig(), false)

	_, results, err := eng.ProcessRow(context.Background(), billableRow(1), SessionState{}, nil)
	if err != nil {
		t.Fatalf("ProcessRow: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 patient results, got %d", len(results))
	}
	for i, res := range results {
		if res.PatientIndex != i {
			t.Errorf("result %d has patient index %d", i, res.PatientIndex)
		}
		if res.TotalPatients != 2 {
			t.Errorf("result %d has total %d, want 2", i, res.TotalPatients)
		}
		if res.Status != claims.StatusBilled {
			t.Errorf("result %d status = %v, want Billed", i, res.Status)
		}
	}
}

func TestInvalidRowSkipsWithoutDriverCalls(t *testing.T) {
	script := newPortalScript(1)
	eng := NewEngine(script, testConfig(), false)

	row := billableRow(1)
	row.MRN = ""
	_, results, err := eng.ProcessRow(context.Background(), row, SessionState{}, nil)
	if err != nil {
		t.Fatalf("ProcessRow: %v", err)
	}
	if len(results) != 1 || results[0].Status != claims.StatusSkipped {
		t.Fatalf("expected single Skipped result, got %+v", results)
	}
	if results[0].ErrorMessage == "" {
		t.Error("validation failure should carry the reason")
	}
	if n := len(script.Calls()); n != 0 {
		t.Errorf("invalid row touched the driver %d times", n)
	}
}

func TestDryRunTouchesNothing(t *testing.T) {
	script := newPortalScript(1)
	eng := NewEngine(script, testConfig(), true)

	st, results, err := eng.ProcessRow(context.Background(), billableRow(1), SessionState{}, nil)
	if err != nil {
		t.Fatalf("ProcessRow: %v", err)
	}
	if st.Ready() {
		t.Error("dry run must not drive session gates")
	}
	if len(results) != 1 || results[0].Status != claims.StatusSkippedDryRun {
		t.Fatalf("expected single dry-run result, got %+v", results)
	}
	if n := len(script.Calls()); n != 0 {
		t.Errorf("dry run touched the driver %d times", n)
	}
}

func TestListingQueryFailureFailsRow(t *testing.T) {
	script := newPortalScript(1)
	script.FailWith("query", selListingRow, errTest)
	eng := NewEngine(script, testConfig(), false)

	_, results, err := eng.ProcessRow(context.Background(), billableRow(1), SessionState{}, nil)
	if err != nil {
		t.Fatalf("ProcessRow: %v", err)
	}
	if len(results) != 1 || results[0].Status != claims.StatusFailed {
		t.Fatalf("expected single Failed result, got %+v", results)
	}
	if !strings.Contains(results[0].ErrorMessage, "listing query") {
		t.Errorf("error message %q should name the listing query", results[0].ErrorMessage)
	}
}

func TestSessionLossAfterPatientEscalates(t *testing.T) {
	script := newPortalScript(2)
	eng := NewEngine(script, testConfig(), false)

	// The session drops while the first patient is being processed; the
	// loop notices before opening the second.
	script.CloseSession()

	_, results, err := eng.ProcessRow(context.Background(), billableRow(1), SessionState{}, nil)
	if !driver.IsSessionLost(err) {
		t.Fatalf("expected session-lost escalation, got %v", err)
	}
	// The completed patient's result is preserved; the second never ran.
	if len(results) != 1 {
		t.Fatalf("expected the first patient's result to survive, got %d results", len(results))
	}
}
