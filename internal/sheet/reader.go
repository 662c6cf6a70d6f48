// Package sheet reads claim input rows from an xlsx workbook and merges
// aggregated statuses back into it. Header matching is alias-based and
// case/space-insensitive; the engine never sees raw cells.
package sheet

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"claimpilot/internal/claims"
)

// Column keys used internally after header normalization.
const (
	colMRN         = "mrn"
	colCustomID    = "custom_id"
	colDOS         = "dos"
	colApptDate    = "appointment_date"
	colCPT         = "cpt"
	colICD         = "icd"
	colBilling     = "billing"
	statusHeader   = "Status"
	notFoundColumn = -1
)

// headerAliases maps normalized header text to a column key. Normalization
// lowercases and strips spaces, underscores, dots and '#'.
var headerAliases = map[string]string{
	"mrn":                   colMRN,
	"medicalrecordnumber":   colMRN,
	"medicalrecordno":       colMRN,
	"customid":              colCustomID,
	"custid":                colCustomID,
	"customidentifier":      colCustomID,
	"dos":                   colDOS,
	"dateofservice":         colDOS,
	"servicedate":           colDOS,
	"appointmentdate":       colApptDate,
	"apptdate":              colApptDate,
	"appointment":           colApptDate,
	"cpt":                   colCPT,
	"cptcode":               colCPT,
	"cptcodes":              colCPT,
	"icd":                   colICD,
	"icdcode":               colICD,
	"icd10":                 colICD,
	"diagnosiscode":         colICD,
	"billingstatus":         colBilling,
	"billing":               colBilling,
	"billingclassification": colBilling,
	"appointmentstatus":     colBilling,
}

func normalizeHeader(h string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(h) {
		switch r {
		case ' ', '_', '.', '#', '-':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ReadFile opens a workbook and reads all data rows from the named sheet
// (or the first sheet when name is empty).
func ReadFile(path, sheetName string) ([]claims.InputRow, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	if sheetName == "" {
		sheetName = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheetName, err)
	}
	return ParseRows(rows)
}

// ParseRows converts raw sheet rows (header first) into InputRows.
// RowNumber is the 1-based data row position; the writer keys write-back
// on the same positions.
func ParseRows(rows [][]string) ([]claims.InputRow, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet is empty")
	}

	cols := make(map[string]int)
	for i, h := range rows[0] {
		if key, ok := headerAliases[normalizeHeader(h)]; ok {
			if _, dup := cols[key]; !dup {
				cols[key] = i
			}
		}
	}
	if _, ok := cols[colMRN]; !ok {
		return nil, fmt.Errorf("no MRN column found in header %v", rows[0])
	}

	cell := func(row []string, key string) string {
		idx, ok := cols[key]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	out := make([]claims.InputRow, 0, len(rows)-1)
	for i, row := range rows[1:] {
		out = append(out, claims.InputRow{
			RowNumber:                i + 1,
			MRN:                      cell(row, colMRN),
			CustomID:                 cell(row, colCustomID),
			DOS:                      cell(row, colDOS),
			AppointmentDate:          cell(row, colApptDate),
			CPTCodes:                 splitCodes(cell(row, colCPT)),
			ICDCode:                  cell(row, colICD),
			RawBillingClassification: cell(row, colBilling),
		})
	}
	return out, nil
}

// splitCodes breaks a CPT cell into its ordered code sequence.
func splitCodes(s string) []string {
	if s == "" {
		return nil
	}
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';' || r == ' '
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}
