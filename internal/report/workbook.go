package report

import (
	"bytes"
	"fmt"
	"math"

	"salesaudit/internal/hypothesis"

	"github.com/xuri/excelize/v2"
)

type sheet struct {
	name    string
	headers []string
	rows    [][]any
}

// BuildWorkbook lays the audit tables out as an xlsx workbook with one
// sheet per finding.
func BuildWorkbook(dq DataQuality, results []hypothesis.Result) (*bytes.Buffer, error) {
	sheets := []sheet{
		{name: "Missingness", headers: []string{"Column", "Missing", "Present", "Missing %", "Flagged", "Action"}},
		{name: "Outliers", headers: []string{"Column", "Count", "Q1", "Q3", "IQR", "Lower", "Upper", "Outliers"}},
		{name: "Describe", headers: []string{"Column", "Count", "Missing", "Mean", "Std", "Min", "Q1", "Median", "Q3", "Max", "Skew"}},
		{name: "Hypotheses", headers: []string{"Test", "X", "Y", "N", "Statistic", "DOF", "p-value", "Decision", "Low confidence", "Reason"}},
	}
	for _, rec := range dq.Missingness.Records {
		sheets[0].rows = append(sheets[0].rows, []any{rec.Column, rec.Missing, rec.Present, rec.Percent, rec.Flagged, rec.Action})
	}
	for _, o := range dq.Outliers {
		sheets[1].rows = append(sheets[1].rows, []any{o.Column, o.Count, o.Q1, o.Q3, o.IQR, o.Lower, o.Upper, o.Outliers})
	}
	for _, s := range dq.Describe {
		sheets[2].rows = append(sheets[2].rows, []any{s.Column, s.Count, s.Missing, s.Mean, s.StdDev, s.Min, s.Q1, s.Median, s.Q3, s.Max, s.Skewness})
	}
	for _, r := range results {
		if r.Skipped {
			sheets[3].rows = append(sheets[3].rows, []any{r.Name, r.X, r.Y, "", "", "", "", string(r.Decision), "", r.Reason})
			continue
		}
		sheets[3].rows = append(sheets[3].rows, []any{r.Name, r.X, r.Y, r.N, r.Statistic, r.DOF, r.PValue, string(r.Decision), r.LowConfidence, ""})
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), s.name); err != nil {
				return nil, err
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			return nil, err
		}
		if err := writeSheet(f, s); err != nil {
			return nil, fmt.Errorf("sheet %s: %w", s.name, err)
		}
	}
	f.SetActiveSheet(0)

	return f.WriteToBuffer()
}

func writeSheet(f *excelize.File, s sheet) error {
	for c, h := range s.headers {
		cell, _ := excelize.CoordinatesToCellName(c+1, 1)
		if err := f.SetCellValue(s.name, cell, h); err != nil {
			return err
		}
	}
	for r, row := range s.rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(s.name, cell, cellValue(v)); err != nil {
				return err
			}
		}
	}
	return nil
}

// cellValue writes non-finite floats as text; xlsx has no NaN or Inf
func cellValue(v any) any {
	if x, ok := v.(float64); ok && (math.IsNaN(x) || math.IsInf(x, 0)) {
		return fmt.Sprint(x)
	}
	return v
}
