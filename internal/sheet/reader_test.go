package sheet

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseRowsHeaderAliases(t *testing.T) {
	rows := [][]string{
		{"Medical Record Number", "Custom ID", "Date Of Service", "Appt Date", "CPT Codes", "ICD-10", "Billing Status"},
		{"MRN-001", "C-9", "01/02/2025", "01/02/2025", "99213, 99214", "E11.9", "Active"},
		{"MRN-002", "", "", "", "", "", ""},
	}

	parsed, err := ParseRows(rows)
	require.NoError(t, err)
	require.Len(t, parsed, 2)

	first := parsed[0]
	require.Equal(t, 1, first.RowNumber)
	require.Equal(t, "MRN-001", first.MRN)
	require.Equal(t, "C-9", first.CustomID)
	require.Equal(t, "01/02/2025", first.DOS)
	require.Equal(t, []string{"99213", "99214"}, first.CPTCodes)
	require.Equal(t, "E11.9", first.ICDCode)
	require.Equal(t, "Active", first.RawBillingClassification)

	second := parsed[1]
	require.Equal(t, 2, second.RowNumber)
	require.Equal(t, "MRN-002", second.MRN)
	require.Empty(t, second.CPTCodes)
}

func TestParseRowsRequiresMRNColumn(t *testing.T) {
	rows := [][]string{
		{"Custom ID", "DOS"},
		{"C-1", "01/01/2025"},
	}
	_, err := ParseRows(rows)
	require.Error(t, err)
	require.Contains(t, err.Error(), "MRN")
}

func TestParseRowsShortDataRows(t *testing.T) {
	// Trailing empty cells are commonly trimmed by the xlsx reader.
	rows := [][]string{
		{"MRN", "Custom ID", "Billing Status"},
		{"MRN-001"},
	}
	parsed, err := ParseRows(rows)
	require.NoError(t, err)
	require.Equal(t, "MRN-001", parsed[0].MRN)
	require.Empty(t, parsed[0].RawBillingClassification)
}

func TestNormalizeHeader(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"MRN", "mrn"},
		{"  Medical Record Number ", "medicalrecordnumber"},
		{"Custom_ID", "customid"},
		{"ICD-10", "icd10"},
		{"Billing Status", "billingstatus"},
	}
	for _, tt := range tests {
		if got := normalizeHeader(tt.in); got != tt.want {
			t.Errorf("normalizeHeader(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
