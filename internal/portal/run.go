package portal

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"claimpilot/internal/claims"
	"claimpilot/internal/config"
	"claimpilot/internal/driver"
	"claimpilot/internal/logging"
	"claimpilot/internal/progress"
)

// Summary is the outcome of one batch run.
type Summary struct {
	RunID         string
	Results       []claims.PatientResult
	Statuses      map[int]string
	RowsProcessed int
	SessionLost   bool
}

// Runner owns one batch run over an exclusively held driver. Rows run
// strictly in input order; within a row, patients run strictly by the
// position captured at row start.
type Runner struct {
	eng   *Engine
	prog  progress.Manager
	runID string
}

// NewRunner creates a runner. prog may be nil for silent runs.
func NewRunner(drv driver.Driver, cfg config.Config, dryRun bool, prog progress.Manager) *Runner {
	if prog == nil {
		prog = progress.Noop{}
	}
	return &Runner{
		eng:   NewEngine(drv, cfg, dryRun),
		prog:  prog,
		runID: uuid.NewString(),
	}
}

// RunID returns the run's correlation ID.
func (r *Runner) RunID() string { return r.runID }

// Run processes every row and aggregates the results. A lost session
// halts the remaining rows but the accumulated results are still
// aggregated and returned so the caller can persist them.
func (r *Runner) Run(ctx context.Context, rows []claims.InputRow) Summary {
	summary := Summary{RunID: r.runID}
	logging.Row("run %s: %d rows", r.runID, len(rows))

	st := SessionState{}
	for i, row := range rows {
		tr := r.prog.NewTracker(i, len(rows), fmt.Sprintf("row %d %s", row.RowNumber, row.MRN))

		var results []claims.PatientResult
		var err error
		st, results, err = r.eng.ProcessRow(ctx, row, st, tr)
		summary.Results = append(summary.Results, results...)

		if err != nil {
			summary.SessionLost = true
			tr.Done("session lost")
			logging.RowWarn("run %s: session lost at row %d: %v; halting remaining rows", r.runID, row.RowNumber, err)
			break
		}
		summary.RowsProcessed++
		tr.Done(rowOutcome(results))
	}
	r.prog.Wait()

	summary.Statuses = claims.AggregateResults(summary.Results)
	r.logAmbiguity(summary.Results)
	return summary
}

// logAmbiguity flags rows whose results hold multiple distinct
// non-priority statuses. Non-fatal, log only.
func (r *Runner) logAmbiguity(results []claims.PatientResult) {
	byRow := make(map[int][]claims.Status)
	for _, res := range results {
		byRow[res.RowNumber] = append(byRow[res.RowNumber], res.Status)
	}
	for row, statuses := range byRow {
		if claims.Ambiguous(statuses) {
			logging.RowWarn("run %s: row %d has ambiguous mixed statuses %v", r.runID, row, statuses)
		}
	}
}

func rowOutcome(results []claims.PatientResult) string {
	if len(results) == 0 {
		return "no results"
	}
	statuses := make([]claims.Status, len(results))
	total := 0
	for i, res := range results {
		statuses[i] = res.Status
		if res.TotalPatients > total {
			total = res.TotalPatients
		}
	}
	if total == 0 {
		total = len(results)
	}
	return claims.Aggregate(statuses, total)
}
