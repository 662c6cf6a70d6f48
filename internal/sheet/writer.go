package sheet

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"claimpilot/internal/claims"
	"claimpilot/internal/logging"
)

// Apply merges aggregated row statuses into the sheet in place.
// Postcondition: exactly one column named "Status" exists and it is the
// last column. A misplaced pre-existing Status column is removed from the
// header and every data row, then re-appended at the end with its width
// preserved; a freshly created column gets defaultWidth. Rows without an
// aggregated status get "Not Processed" only if the cell is empty.
//
// Running Apply twice with identical statuses yields identical content
// and never a duplicate column.
func Apply(f *excelize.File, sheetName string, statuses map[int]string, defaultWidth float64) error {
	if sheetName == "" {
		sheetName = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return fmt.Errorf("read sheet %q: %w", sheetName, err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("sheet %q has no header row", sheetName)
	}

	header := rows[0]
	statusIdx := notFoundColumn
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), statusHeader) {
			statusIdx = i
			break
		}
	}

	// Width carried over from a repaired (misplaced) Status column.
	carriedWidth := 0.0

	if statusIdx != notFoundColumn && statusIdx != len(header)-1 {
		name, err := excelize.ColumnNumberToName(statusIdx + 1)
		if err != nil {
			return err
		}
		if w, werr := f.GetColWidth(sheetName, name); werr == nil {
			carriedWidth = w
		}
		logging.SheetWarn("Status column found at position %d of %d, repairing", statusIdx+1, len(header))
		if err := f.RemoveCol(sheetName, name); err != nil {
			return fmt.Errorf("remove misplaced Status column: %w", err)
		}
		rows, err = f.GetRows(sheetName)
		if err != nil {
			return fmt.Errorf("re-read sheet after repair: %w", err)
		}
		header = rows[0]
		statusIdx = notFoundColumn
	}

	var statusCol int // 1-based
	if statusIdx == notFoundColumn {
		statusCol = len(header) + 1
		cell, err := excelize.CoordinatesToCellName(statusCol, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStr(sheetName, cell, statusHeader); err != nil {
			return fmt.Errorf("write Status header: %w", err)
		}
		name, err := excelize.ColumnNumberToName(statusCol)
		if err != nil {
			return err
		}
		width := defaultWidth
		if carriedWidth > 0 {
			width = carriedWidth
		}
		if width > 0 {
			if err := f.SetColWidth(sheetName, name, name, width); err != nil {
				logging.SheetWarn("set Status column width: %v", err)
			}
		}
	} else {
		// Already last: keep the column and its width, just refresh cells.
		statusCol = statusIdx + 1
	}

	for i := 1; i < len(rows); i++ {
		cell, err := excelize.CoordinatesToCellName(statusCol, i+1)
		if err != nil {
			return err
		}
		if status, ok := statuses[i]; ok {
			if err := f.SetCellStr(sheetName, cell, status); err != nil {
				return fmt.Errorf("write status for row %d: %w", i, err)
			}
			continue
		}
		current, _ := f.GetCellValue(sheetName, cell)
		if strings.TrimSpace(current) == "" {
			if err := f.SetCellStr(sheetName, cell, claims.NotProcessed); err != nil {
				return fmt.Errorf("write placeholder for row %d: %w", i, err)
			}
		}
	}
	return nil
}

// UpdateFile opens a workbook, applies statuses, and saves it in place.
func UpdateFile(path, sheetName string, statuses map[int]string, defaultWidth float64) error {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	if err := Apply(f, sheetName, statuses, defaultWidth); err != nil {
		return err
	}
	if err := f.Save(); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	logging.Sheet("wrote %d row statuses to %s", len(statuses), path)
	return nil
}
