package config

// SheetConfig configures spreadsheet input and write-back.
type SheetConfig struct {
	// SheetName selects the worksheet; empty means the workbook's first
	// sheet.
	SheetName string `yaml:"sheet_name"`

	// StatusColumnWidth is applied to a newly created Status column. A
	// pre-existing column keeps its width.
	StatusColumnWidth float64 `yaml:"status_column_width"`
}

// DefaultSheetConfig returns sheet defaults.
func DefaultSheetConfig() SheetConfig {
	return SheetConfig{StatusColumnWidth: 28}
}
