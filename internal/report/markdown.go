package report

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"salesaudit/internal/cleaning"
	"salesaudit/internal/hypothesis"
	"salesaudit/internal/insights"
	"salesaudit/internal/profiling"
)

// TopMissing is how many columns the missingness section lists
const TopMissing = 10

// DataQuality gathers every audit result rendered in the data quality report
type DataQuality struct {
	Dataset     string
	Rows        int
	Columns     int
	DateColumn  string
	Start, End  time.Time // zero when no dates were parsed
	Missingness profiling.MissingnessReport
	Duplicates  profiling.DuplicateReport
	Types       []profiling.TypeEntry
	Outliers    []profiling.OutlierBound
	Describe    []profiling.NumericSummary
	Cleaning    cleaning.Summary
}

// RenderDataQuality renders data_quality_report.md
func RenderDataQuality(dq DataQuality) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Data Quality Report: %s\n\n", dq.Dataset)

	b.WriteString("## 1) Overview\n\n")
	fmt.Fprintf(&b, "- Rows: %d\n", dq.Rows)
	fmt.Fprintf(&b, "- Columns: %d\n", dq.Columns)
	if dq.Start.IsZero() {
		fmt.Fprintf(&b, "- Time range (%s): unknown\n\n", dq.DateColumn)
	} else {
		fmt.Fprintf(&b, "- Time range (%s): %s to %s\n\n", dq.DateColumn, dq.Start.Format("2006-01-02"), dq.End.Format("2006-01-02"))
	}

	b.WriteString("## 2) Missingness\n\n")
	flagged := dq.Missingness.Flagged()
	if len(flagged) == 0 {
		b.WriteString("No missing values.\n\n")
	} else {
		fmt.Fprintf(&b, "Columns above the %.1f%% threshold, highest first:\n\n", dq.Missingness.Threshold)
		b.WriteString("| Column | Missing | Missing % | Action |\n|---|---:|---:|---|\n")
		for i, rec := range flagged {
			if i == TopMissing {
				break
			}
			fmt.Fprintf(&b, "| %s | %d | %.1f | %s |\n", rec.Column, rec.Missing, rec.Percent, rec.Action)
		}
		if len(flagged) > TopMissing {
			fmt.Fprintf(&b, "\n%d more flagged columns not shown.\n", len(flagged)-TopMissing)
		}
		b.WriteString("\n")
	}

	b.WriteString("## 3) Duplicates\n\n")
	d := dq.Duplicates
	fmt.Fprintf(&b, "- Rows sharing a duplicated %s: %d\n", d.KeyColumn, d.DuplicateRows)
	fmt.Fprintf(&b, "- Extra rows beyond the first per key: %d\n", d.ExcessRows)
	fmt.Fprintf(&b, "- Distinct duplicated keys: %d\n", d.DuplicateKeys)
	fmt.Fprintf(&b, "- Rows with a null %s: %d\n", d.KeyColumn, d.NullKeys)
	fmt.Fprintf(&b, "- Fully identical rows: %d\n\n", d.FullRowDuplicates)

	b.WriteString("## 4) Data Types\n\n")
	b.WriteString("| Column | Type | Source |\n|---|---|---|\n")
	for _, e := range dq.Types {
		source := "input"
		if e.Derived {
			source = "derived"
		}
		fmt.Fprintf(&b, "| %s | %s | %s |\n", e.Column, e.Type, source)
	}
	b.WriteString("\n")

	b.WriteString("## 5) Outliers (IQR)\n\n")
	if len(dq.Outliers) == 0 {
		b.WriteString("No numeric columns.\n\n")
	} else {
		b.WriteString("| Column | Q1 | Q3 | IQR | Lower | Upper | Outliers |\n|---|---:|---:|---:|---:|---:|---:|\n")
		for _, o := range dq.Outliers {
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %d |\n",
				o.Column, num(o.Q1), num(o.Q3), num(o.IQR), num(o.Lower), num(o.Upper), o.Outliers)
		}
		b.WriteString("\n")
	}

	b.WriteString("## 6) Descriptive Statistics\n\n")
	if len(dq.Describe) > 0 {
		b.WriteString("| Column | Count | Mean | Std | Min | Q1 | Median | Q3 | Max | Skew |\n|---|---:|---:|---:|---:|---:|---:|---:|---:|---:|\n")
		for _, s := range dq.Describe {
			fmt.Fprintf(&b, "| %s | %d | %s | %s | %s | %s | %s | %s | %s | %s |\n",
				s.Column, s.Count, num(s.Mean), num(s.StdDev), num(s.Min), num(s.Q1),
				num(s.Median), num(s.Q3), num(s.Max), num(s.Skewness))
		}
		b.WriteString("\n")
	}

	b.WriteString("## 7) Cleaning Applied\n\n")
	renderCleaning(&b, dq.Cleaning)

	b.WriteString("## 8) Cleaning Suggestions\n\n")
	for _, s := range Suggestions(dq) {
		fmt.Fprintf(&b, "- %s\n", s)
	}
	return b.String()
}

func renderCleaning(b *strings.Builder, c cleaning.Summary) {
	if len(c.RevenueDerivedFrom) > 0 {
		fmt.Fprintf(b, "- %s derived as %s\n", c.RevenueColumn, strings.Join(c.RevenueDerivedFrom, " x "))
	}
	if c.RevenueBound != nil {
		fmt.Fprintf(b, "- %s capped to [%s, %s]: %d values changed\n",
			c.RevenueColumn, num(c.RevenueBound.Lower), num(c.RevenueBound.Upper), c.Capped)
		fmt.Fprintf(b, "- log(1 + x) applied to the capped values; %d negatives floored at 0\n", c.Floored)
	}
	if c.AgeGroupDerived {
		b.WriteString("- AgeGroup derived from Age\n")
	}
	if len(c.DerivedColumns) > 0 {
		fmt.Fprintf(b, "- Derived columns: %s\n", strings.Join(c.DerivedColumns, ", "))
	}
	for _, w := range c.Warnings {
		fmt.Fprintf(b, "- Warning: %s\n", w)
	}
	b.WriteString("\n")
}

// Suggestions derives cleaning recommendations from the audit findings
func Suggestions(dq DataQuality) []string {
	var out []string
	for _, rec := range dq.Missingness.Flagged() {
		out = append(out, fmt.Sprintf("Impute or flag %s (%.1f%% missing)", rec.Column, rec.Percent))
	}
	if dq.Duplicates.DuplicateRows > 0 {
		out = append(out, fmt.Sprintf("Deduplicate on %s: %d rows share %d keys",
			dq.Duplicates.KeyColumn, dq.Duplicates.DuplicateRows, dq.Duplicates.DuplicateKeys))
	}
	if dq.Duplicates.NullKeys > 0 {
		out = append(out, fmt.Sprintf("Recover or drop %d rows without %s", dq.Duplicates.NullKeys, dq.Duplicates.KeyColumn))
	}
	if dq.Start.IsZero() {
		out = append(out, fmt.Sprintf("Cast %s to a date; no value parsed as a timestamp", dq.DateColumn))
	}

	var heavy []profiling.OutlierBound
	for _, o := range dq.Outliers {
		if o.Outliers > 0 {
			heavy = append(heavy, o)
		}
	}
	sort.SliceStable(heavy, func(i, j int) bool { return heavy[i].Outliers > heavy[j].Outliers })
	for _, o := range heavy {
		out = append(out, fmt.Sprintf("Cap or transform %s: %d values outside [%s, %s]", o.Column, o.Outliers, num(o.Lower), num(o.Upper)))
	}

	if len(out) == 0 {
		out = append(out, "No data-quality issues found")
	}
	return out
}

// RenderHypotheses renders hypothesis_testing.md
func RenderHypotheses(results []hypothesis.Result, alpha float64) string {
	var b strings.Builder
	b.WriteString("# Hypothesis Testing\n\n")
	fmt.Fprintf(&b, "Decision rule: reject H0 when p < %g (alpha). Chi-square results with an expected cell count below the minimum are marked low-confidence.\n\n", alpha)

	if len(results) == 0 {
		b.WriteString("No eligible columns found.\n")
		return b.String()
	}

	b.WriteString("| Test | Statistic | dof | p-value | Decision |\n|---|---:|---:|---:|---|\n")
	for _, r := range results {
		if r.Skipped {
			fmt.Fprintf(&b, "| %s | - | - | - | %s |\n", r.Name, r.Decision)
			continue
		}
		decision := string(r.Decision)
		if r.LowConfidence {
			decision += " (low confidence)"
		}
		fmt.Fprintf(&b, "| %s | %s | %d | %s | %s |\n", r.Name, num(r.Statistic), r.DOF, pval(r.PValue), decision)
	}
	b.WriteString("\n")

	for _, r := range results {
		fmt.Fprintf(&b, "## %s\n\n", r.Name)
		if r.Null != "" {
			fmt.Fprintf(&b, "- H0: %s\n", r.Null)
		}
		if r.Skipped {
			fmt.Fprintf(&b, "- Skipped: %s\n\n", r.Reason)
			continue
		}
		fmt.Fprintf(&b, "- n = %d\n", r.N)
		switch r.Kind {
		case hypothesis.KindChiSquare:
			fmt.Fprintf(&b, "- chi2 = %s, dof = %d, p = %s\n", num(r.Statistic), r.DOF, pval(r.PValue))
			fmt.Fprintf(&b, "- Table %dx%d, Cramer's V = %s\n", r.Rows, r.Cols, num(r.CramersV))
			if r.Pruned > 0 {
				fmt.Fprintf(&b, "- %d sparse categories pruned before testing\n", r.Pruned)
			}
			if r.Yates {
				b.WriteString("- Yates continuity correction applied\n")
			}
			if r.LowConfidence {
				fmt.Fprintf(&b, "- Low confidence: smallest expected count is %s\n", num(r.MinExpected))
			}
		case hypothesis.KindPearson:
			fmt.Fprintf(&b, "- r = %s, t = %s, p = %s\n", num(r.Coefficient), num(r.Statistic), pval(r.PValue))
		case hypothesis.KindOLS:
			fmt.Fprintf(&b, "- %s = %s + %s x %s\n", r.Y, num(r.Intercept), num(r.Coefficient), r.X)
			fmt.Fprintf(&b, "- slope SE = %s, t = %s, p = %s, R^2 = %s\n", num(r.StdErr), num(r.Statistic), pval(r.PValue), num(r.RSquared))
		}
		fmt.Fprintf(&b, "- Decision: **%s**\n\n", r.Decision)
	}
	return b.String()
}

// RenderInsights renders insight_summary.md. plots lists the chart files
// drawn for the run.
func RenderInsights(s insights.Summary, results []hypothesis.Result, plots []string) string {
	var b strings.Builder
	b.WriteString("# Insight Summary\n\n")

	highlights := s.Highlights()
	if len(highlights) == 0 {
		b.WriteString("No KPI columns were available for insights.\n\n")
	}
	for _, h := range highlights {
		fmt.Fprintf(&b, "- %s\n", h)
	}

	var significant []hypothesis.Result
	for _, r := range results {
		if r.Decision == hypothesis.DecisionReject {
			significant = append(significant, r)
		}
	}
	for _, r := range significant {
		note := ""
		if r.LowConfidence {
			note = " (low confidence)"
		}
		fmt.Fprintf(&b, "- %s: significant at alpha %g, p = %s%s\n", r.Name, r.Alpha, pval(r.PValue), note)
	}
	b.WriteString("\n")

	if len(plots) > 0 {
		b.WriteString("## Plots\n\n")
		for _, p := range plots {
			fmt.Fprintf(&b, "- `%s`\n", p)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Leading Categories\n\n")
	renderGroups(&b, "Revenue by category", s.RevenueByCategory, "%.2f")
	renderGroups(&b, "Return rate by category (%)", s.ReturnRateByCategory, "%.1f")
	renderGroups(&b, "Return rate by device (%)", s.ReturnRateByDevice, "%.1f")
	renderGroups(&b, "Delayed deliveries by region (%)", s.DelayRateByRegion, "%.1f")
	renderGroups(&b, "Return rate by brand, top 20 (%)", s.ReturnRateByBrand, "%.1f")
	return b.String()
}

func renderGroups(b *strings.Builder, title string, groups []insights.Group, format string) {
	if len(groups) == 0 {
		return
	}
	fmt.Fprintf(b, "### %s\n\n| Label | Value | Orders |\n|---|---:|---:|\n", title)
	for _, g := range groups {
		fmt.Fprintf(b, "| %s | "+format+" | %d |\n", g.Label, g.Value, g.Count)
	}
	b.WriteString("\n")
}

func num(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Sprint(v)
	}
	return fmt.Sprintf("%.3f", v)
}

func pval(p float64) string {
	return fmt.Sprintf("%.4g", p)
}
