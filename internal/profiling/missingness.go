package profiling

import (
	"math"
	"sort"

	"salesaudit/domain/dataset"
)

// ActionImputeOrFlag is the hint attached to columns with missing values
const ActionImputeOrFlag = "impute or flag"

// MissingnessRecord is the null profile of one column
type MissingnessRecord struct {
	Column  string  `json:"column"`
	Missing int     `json:"missing"`
	Present int     `json:"present"`
	Percent float64 `json:"percent"` // rounded to one decimal
	Flagged bool    `json:"flagged"`
	Action  string  `json:"action,omitempty"`
}

// MissingnessReport covers every column of a table, in table order
type MissingnessReport struct {
	Rows      int                 `json:"rows"`
	Threshold float64             `json:"threshold"`
	Records   []MissingnessRecord `json:"records"`
}

// AuditMissingness counts nulls per column. Columns whose percentage exceeds
// threshold are flagged with ActionImputeOrFlag. An empty table yields
// all-zero records.
func AuditMissingness(t *dataset.Table, threshold float64) MissingnessReport {
	report := MissingnessReport{Rows: t.RowCount(), Threshold: threshold}

	for _, col := range t.Columns() {
		missing := col.MissingCount()
		rec := MissingnessRecord{
			Column:  col.Name,
			Missing: missing,
			Present: t.RowCount() - missing,
			Percent: MissingPercent(missing, t.RowCount()),
		}
		// flag on the unrounded share so tiny gaps are not rounded away
		if missing > 0 && rawPercent(missing, t.RowCount()) > threshold {
			rec.Flagged = true
			rec.Action = ActionImputeOrFlag
		}
		report.Records = append(report.Records, rec)
	}
	return report
}

// MissingPercent returns 100*missing/rows rounded to one decimal; 0 rows
// gives 0. A column with no nulls is exactly 0.
func MissingPercent(missing, rows int) float64 {
	if rows == 0 || missing == 0 {
		return 0
	}
	return math.Round(float64(missing)/float64(rows)*1000) / 10
}

func rawPercent(missing, rows int) float64 {
	if rows == 0 {
		return 0
	}
	return float64(missing) / float64(rows) * 100
}

// Flagged returns the flagged records ordered by percentage, highest first
func (r MissingnessReport) Flagged() []MissingnessRecord {
	var out []MissingnessRecord
	for _, rec := range r.Records {
		if rec.Flagged {
			out = append(out, rec)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Percent > out[j].Percent
	})
	return out
}
