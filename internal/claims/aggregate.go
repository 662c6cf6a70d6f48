package claims

import (
	"fmt"
	"sort"
	"strings"
)

// NotProcessed is written into empty Status cells for rows that produced
// no PatientResult at all. It is deliberately distinct from "Skipped",
// which marks rows that were looked at and had zero matching entries.
const NotProcessed = "Not Processed"

// statusPriority orders the statuses that can dominate a mixed row.
// Higher wins. Statuses outside this table never dominate.
var statusPriority = map[Status]int{
	StatusBilled:               4,
	StatusAppointmentCancelled: 3,
	StatusSuccess:              2,
	StatusFailed:               1,
}

// Aggregate reduces the per-patient statuses for one row into a single
// display string. totalPatients is the patient count discovered at the
// start of the row, which can exceed len(statuses) when processing was
// cut short.
//
// The Failed composite intentionally shows the failed subset count while
// the other composites show the row total; the asymmetry matches the
// portal operators' expectations and is covered by tests.
func Aggregate(statuses []Status, totalPatients int) string {
	if len(statuses) == 0 {
		return NotProcessed
	}

	distinct := make(map[Status]int)
	for _, s := range statuses {
		distinct[s]++
	}

	var winner Status
	best := 0
	for s := range distinct {
		if p := statusPriority[s]; p > best {
			best = p
			winner = s
		}
	}

	if best > 0 {
		if len(distinct) == 1 {
			return winner.String()
		}
		if winner == StatusFailed {
			return fmt.Sprintf("%s (%d/%d patients)", winner, distinct[StatusFailed], totalPatients)
		}
		return fmt.Sprintf("%s (%d patients)", winner, totalPatients)
	}

	if len(distinct) == 1 {
		return winner0(distinct).String()
	}

	// Multiple distinct non-priority statuses: ambiguous, join them all.
	names := make([]string, 0, len(distinct))
	for s := range distinct {
		names = append(names, s.String())
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

// Ambiguous reports whether the multiset of statuses has no dominating
// priority status and more than one distinct value. Callers log this;
// it is never fatal.
func Ambiguous(statuses []Status) bool {
	distinct := make(map[Status]struct{})
	for _, s := range statuses {
		if _, ok := statusPriority[s]; ok {
			return false
		}
		distinct[s] = struct{}{}
	}
	return len(distinct) > 1
}

// AggregateResults groups results by row number and aggregates each group.
// The per-row total patient count is taken from the results themselves
// (they all carry the count captured at row start).
func AggregateResults(results []PatientResult) map[int]string {
	byRow := make(map[int][]PatientResult)
	for _, r := range results {
		byRow[r.RowNumber] = append(byRow[r.RowNumber], r)
	}

	out := make(map[int]string, len(byRow))
	for row, rs := range byRow {
		statuses := make([]Status, len(rs))
		total := 0
		for i, r := range rs {
			statuses[i] = r.Status
			if r.TotalPatients > total {
				total = r.TotalPatients
			}
		}
		if total == 0 {
			total = len(rs)
		}
		out[row] = Aggregate(statuses, total)
	}
	return out
}

func winner0(distinct map[Status]int) Status {
	for s := range distinct {
		return s
	}
	return StatusUnknown
}
