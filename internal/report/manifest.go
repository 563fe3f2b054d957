package report

import (
	"time"

	"salesaudit/internal/config"
	"salesaudit/internal/hypothesis"

	"github.com/google/uuid"
)

// ManifestFile is the run record written next to the reports
const ManifestFile = "run_manifest.json"

// Findings condenses the audit into counts
type Findings struct {
	FlaggedColumns    int `json:"flagged_columns"`
	DuplicateRows     int `json:"duplicate_rows"`
	FullRowDuplicates int `json:"full_row_duplicates"`
	OutlierColumns    int `json:"outlier_columns"`
	CappedValues      int `json:"capped_values"`
	TestsRun          int `json:"tests_run"`
	TestsRejected     int `json:"tests_rejected"`
	TestsSkipped      int `json:"tests_skipped"`
	LowConfidence     int `json:"low_confidence"`
}

// Manifest records one audit run
type Manifest struct {
	RunID      string         `json:"run_id"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Input      string         `json:"input"`
	Dataset    string         `json:"dataset"`
	Rows       int            `json:"rows"`
	Columns    int            `json:"columns"`
	Config     *config.Config `json:"config"`
	Findings   Findings       `json:"findings"`
	Artifacts  []string       `json:"artifacts"`
}

// NewManifest starts the record of a run
func NewManifest(input string, cfg *config.Config, started time.Time) *Manifest {
	return &Manifest{
		RunID:     uuid.New().String(),
		StartedAt: started.UTC(),
		Input:     input,
		Config:    cfg,
	}
}

// Summarize fills the findings from the audit results
func (m *Manifest) Summarize(dq DataQuality, results []hypothesis.Result) {
	m.Dataset = dq.Dataset
	m.Rows = dq.Rows
	m.Columns = dq.Columns

	f := Findings{
		FlaggedColumns:    len(dq.Missingness.Flagged()),
		DuplicateRows:     dq.Duplicates.DuplicateRows,
		FullRowDuplicates: dq.Duplicates.FullRowDuplicates,
		CappedValues:      dq.Cleaning.Capped,
	}
	for _, o := range dq.Outliers {
		if o.Outliers > 0 {
			f.OutlierColumns++
		}
	}
	for _, r := range results {
		switch {
		case r.Skipped:
			f.TestsSkipped++
		case r.Decision == hypothesis.DecisionReject:
			f.TestsRun++
			f.TestsRejected++
		default:
			f.TestsRun++
		}
		if r.LowConfidence {
			f.LowConfidence++
		}
	}
	m.Findings = f
}
