// Package report produces the fallback human-readable results workbook.
// It is only written when merging statuses back into the input sheet
// fails; the write-back is the primary artifact.
package report

import (
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	"claimpilot/internal/claims"
	"claimpilot/internal/logging"
)

// Write creates a workbook at path with one row per PatientResult and a
// counts-by-status summary sheet.
func Write(path, runID string, results []claims.PatientResult) error {
	f := excelize.NewFile()
	defer f.Close()

	resultsSheet := f.GetSheetName(0)
	if err := f.SetSheetName(resultsSheet, "Results"); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	resultsSheet = "Results"

	header := []interface{}{
		"Row", "Patient", "Total Patients", "Status", "Billing Status",
		"Error", "Processing Time (ms)", "Timestamp", "Notes",
	}
	if err := f.SetSheetRow(resultsSheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, r := range results {
		row := []interface{}{
			r.RowNumber,
			r.PatientIndex + 1,
			r.TotalPatients,
			r.Status.String(),
			r.BillingStatus,
			r.ErrorMessage,
			r.ProcessingTimeMs,
			r.Timestamp.Format("2006-01-02 15:04:05"),
			r.Notes,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(resultsSheet, cell, &row); err != nil {
			return fmt.Errorf("write result row %d: %w", i, err)
		}
	}

	if err := writeSummary(f, runID, results); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	logging.Report("fallback report with %d results written to %s", len(results), path)
	return nil
}

func writeSummary(f *excelize.File, runID string, results []claims.PatientResult) error {
	const sheetName = "Summary"
	if _, err := f.NewSheet(sheetName); err != nil {
		return fmt.Errorf("create summary sheet: %w", err)
	}

	counts := make(map[string]int)
	for _, r := range results {
		counts[r.Status.String()]++
	}
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := [][]interface{}{
		{"Run ID", runID},
		{"Total Results", len(results)},
		{},
		{"Status", "Count"},
	}
	for _, name := range names {
		rows = append(rows, []interface{}{name, counts[name]})
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("write summary row %d: %w", i, err)
		}
	}
	return nil
}
