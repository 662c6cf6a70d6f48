package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"claimpilot/internal/config"
	"claimpilot/internal/driver"
	"claimpilot/internal/logging"
	"claimpilot/internal/portal"
	"claimpilot/internal/progress"
	"claimpilot/internal/report"
	"claimpilot/internal/sheet"
)

var (
	inputPath  string
	sheetName  string
	dryRun     bool
	reportPath string
	noProgress bool
)

// runCmd processes an input spreadsheet end to end
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Process every row of an input spreadsheet through the portal",
	Long: `Reads claim rows from the input workbook, drives the portal for each
row, and merges the aggregated per-row status back into the workbook as
its trailing Status column.

If merging back fails (for example the workbook is open in Excel), the
results are written to a separate report workbook instead so no run is
ever lost.

With --dry-run every row is validated and marked without opening a
browser or touching the portal.`,
	RunE: runBatch,
}

func init() {
	runCmd.Flags().StringVarP(&inputPath, "input", "i", "", "Input workbook path (required)")
	runCmd.Flags().StringVar(&sheetName, "sheet", "", "Worksheet name (default: first sheet)")
	runCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Validate rows without portal actions")
	runCmd.Flags().StringVar(&reportPath, "report", "", "Fallback report path (default: alongside the input)")
	runCmd.Flags().BoolVar(&noProgress, "no-progress", false, "Disable progress bars")
	runCmd.MarkFlagRequired("input")
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("Received shutdown signal")
		cancel()
	}()

	ws := resolveWorkspace()
	cfg, err := config.Load(config.DefaultPath(ws))
	if err != nil {
		return err
	}
	if !dryRun {
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("configuration: %w", err)
		}
	}
	if sheetName == "" {
		sheetName = cfg.Sheet.SheetName
	}

	if err := logging.Initialize(ws); err != nil {
		logger.Warn("File logging unavailable", zap.Error(err))
	}
	defer logging.CloseAll()

	rows, err := sheet.ReadFile(inputPath, sheetName)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	logger.Info("Input loaded",
		zap.String("path", inputPath),
		zap.Int("rows", len(rows)),
		zap.Bool("dry_run", dryRun))

	// The driver stays unstarted for dry runs; no browser is launched and
	// no portal action ever fires.
	drv := driver.NewRod(cfg.Browser)
	if !dryRun {
		if err := drv.Start(ctx); err != nil {
			return fmt.Errorf("start browser: %w", err)
		}
		defer func() {
			if cerr := drv.Close(); cerr != nil {
				logger.Warn("Browser close failed", zap.Error(cerr))
			}
		}()
	}

	var prog progress.Manager
	if !noProgress {
		prog = progress.NewMPBManager()
	}

	runner := portal.NewRunner(drv, cfg, dryRun, prog)
	summary := runner.Run(ctx, rows)

	// The results are always persisted, even after a lost session.
	if err := sheet.UpdateFile(inputPath, sheetName, summary.Statuses, cfg.Sheet.StatusColumnWidth); err != nil {
		logger.Warn("Write-back failed, writing fallback report", zap.Error(err))
		fallback := reportPath
		if fallback == "" {
			dir := filepath.Dir(inputPath)
			fallback = filepath.Join(dir, fmt.Sprintf("claimpilot_report_%s.xlsx", summary.RunID))
		}
		if rerr := report.Write(fallback, summary.RunID, summary.Results); rerr != nil {
			return fmt.Errorf("write-back failed (%v) and fallback report failed: %w", err, rerr)
		}
		fmt.Printf("Input workbook could not be updated; results written to %s\n", fallback)
	}

	printSummary(summary, len(rows))
	if summary.SessionLost {
		return fmt.Errorf("portal session lost after %d of %d rows; results for completed rows were saved", summary.RowsProcessed, len(rows))
	}
	return nil
}

func printSummary(summary portal.Summary, totalRows int) {
	fmt.Printf("\nRun %s complete\n", summary.RunID)
	fmt.Printf("  Rows processed: %d/%d\n", summary.RowsProcessed, totalRows)
	fmt.Printf("  Patient results: %d\n", len(summary.Results))

	counts := make(map[string]int)
	for _, r := range summary.Results {
		counts[r.Status.String()]++
	}
	for status, n := range counts {
		fmt.Printf("  %s: %d\n", status, n)
	}
}
