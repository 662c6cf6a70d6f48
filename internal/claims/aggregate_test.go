package claims

import "testing"

func TestAggregate(t *testing.T) {
	tests := []struct {
		name     string
		statuses []Status
		total    int
		expected string
	}{
		{
			name:     "all billed",
			statuses: []Status{StatusBilled, StatusBilled},
			total:    2,
			expected: "Billed",
		},
		{
			name:     "billed dominates failure",
			statuses: []Status{StatusBilled, StatusFailed},
			total:    2,
			expected: "Billed (2 patients)",
		},
		{
			name:     "all failed",
			statuses: []Status{StatusFailed, StatusFailed},
			total:    2,
			expected: "Failed",
		},
		{
			name:     "success dominates failure",
			statuses: []Status{StatusFailed, StatusSuccess},
			total:    2,
			expected: "Success (2 patients)",
		},
		{
			name:     "single failure",
			statuses: []Status{StatusFailed},
			total:    1,
			expected: "Failed",
		},
		{
			name:     "cancelled dominates success",
			statuses: []Status{StatusAppointmentCancelled, StatusSuccess},
			total:    2,
			expected: "Appt. Cancelled (2 patients)",
		},
		{
			name:     "billed outranks cancelled",
			statuses: []Status{StatusAppointmentCancelled, StatusBilled},
			total:    2,
			expected: "Billed (2 patients)",
		},
		{
			name:     "failed composite counts the failed subset",
			statuses: []Status{StatusFailed, StatusSkipped, StatusFailed},
			total:    3,
			expected: "Failed (2/3 patients)",
		},
		{
			name:     "zero match skip",
			statuses: []Status{StatusSkipped},
			total:    1,
			expected: "Skipped",
		},
		{
			name:     "dry run skip verbatim",
			statuses: []Status{StatusSkippedDryRun},
			total:    1,
			expected: "Skipped (Dry Run)",
		},
		{
			name:     "mixed non-priority joins distinct",
			statuses: []Status{StatusSkipped, StatusUnknown},
			total:    2,
			expected: "Skipped, Unknown",
		},
		{
			name:     "no results",
			statuses: nil,
			total:    0,
			expected: "Not Processed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Aggregate(tt.statuses, tt.total)
			if got != tt.expected {
				t.Errorf("Aggregate(%v, %d) = %q, want %q", tt.statuses, tt.total, got, tt.expected)
			}
		})
	}
}

func TestAggregateIsPure(t *testing.T) {
	statuses := []Status{StatusBilled, StatusFailed}
	first := Aggregate(statuses, 2)
	second := Aggregate(statuses, 2)
	if first != second {
		t.Errorf("aggregation not deterministic: %q vs %q", first, second)
	}
}

func TestAmbiguous(t *testing.T) {
	if Ambiguous([]Status{StatusSkipped, StatusFailed}) {
		t.Error("priority status present, should not be ambiguous")
	}
	if !Ambiguous([]Status{StatusSkipped, StatusUnknown}) {
		t.Error("two distinct non-priority statuses should be ambiguous")
	}
	if Ambiguous([]Status{StatusSkipped, StatusSkipped}) {
		t.Error("single distinct status should not be ambiguous")
	}
}

func TestAggregateResults(t *testing.T) {
	results := []PatientResult{
		{RowNumber: 1, Status: StatusBilled, TotalPatients: 2},
		{RowNumber: 1, Status: StatusFailed, TotalPatients: 2},
		{RowNumber: 2, Status: StatusSkipped, TotalPatients: 1},
	}

	got := AggregateResults(results)
	if got[1] != "Billed (2 patients)" {
		t.Errorf("row 1 = %q, want %q", got[1], "Billed (2 patients)")
	}
	if got[2] != "Skipped" {
		t.Errorf("row 2 = %q, want %q", got[2], "Skipped")
	}
	if _, ok := got[3]; ok {
		t.Error("row 3 has no results and must not appear in the map")
	}
}
