package profiling

import (
	"log/slog"
	"math"
	"sort"

	"salesaudit/domain/dataset"

	"github.com/montanaflynn/stats"
)

// NumericSummary is the describe-style profile of one numeric column
type NumericSummary struct {
	Column   string  `json:"column"`
	Count    int     `json:"count"`
	Missing  int     `json:"missing"`
	Mean     float64 `json:"mean"`
	StdDev   float64 `json:"std_dev"` // sample standard deviation
	Min      float64 `json:"min"`
	Q1       float64 `json:"q1"`
	Median   float64 `json:"median"`
	Q3       float64 `json:"q3"`
	Max      float64 `json:"max"`
	Skewness float64 `json:"skewness"`
}

// DistributionAnalyzer handles distribution shape analysis
type DistributionAnalyzer struct {
	logger *slog.Logger
}

// NewDistributionAnalyzer creates a new distribution analyzer
func NewDistributionAnalyzer(logger *slog.Logger) *DistributionAnalyzer {
	return &DistributionAnalyzer{logger: logger}
}

// Describe summarizes every numeric column of the table. Columns without
// any present value are skipped with a warning.
func (da *DistributionAnalyzer) Describe(t *dataset.Table) []NumericSummary {
	var out []NumericSummary
	for _, col := range t.NumericColumns() {
		summary, err := da.Summarize(col.Name, col.PresentFloats())
		if err != nil {
			da.logger.Warn("skipping column in descriptive statistics",
				slog.String("column", col.Name),
				slog.String("reason", err.Error()))
			continue
		}
		summary.Missing = col.MissingCount()
		out = append(out, summary)
	}
	return out
}

// Summarize computes the summary of a slice of present values
func (da *DistributionAnalyzer) Summarize(name string, data []float64) (NumericSummary, error) {
	summary := NumericSummary{Column: name, Count: len(data)}

	mean, err := stats.Mean(data)
	if err != nil {
		return summary, err
	}
	min, err := stats.Min(data)
	if err != nil {
		return summary, err
	}
	max, err := stats.Max(data)
	if err != nil {
		return summary, err
	}
	median, err := stats.Median(data)
	if err != nil {
		return summary, err
	}

	stdDev := 0.0
	if len(data) > 1 {
		if stdDev, err = stats.StandardDeviationSample(data); err != nil {
			return summary, err
		}
	}
	popStdDev, err := stats.StandardDeviationPopulation(data)
	if err != nil {
		return summary, err
	}

	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)

	summary.Mean = mean
	summary.StdDev = stdDev
	summary.Min = min
	summary.Max = max
	summary.Median = median
	summary.Q1 = Quantile(sorted, 0.25)
	summary.Q3 = Quantile(sorted, 0.75)
	summary.Skewness = calculateSkewness(data, mean, popStdDev)
	return summary, nil
}

// calculateSkewness computes sample skewness using the adjusted Fisher-Pearson coefficient
func calculateSkewness(data []float64, mean, stdDev float64) float64 {
	if len(data) < 3 || stdDev == 0 {
		return 0
	}

	n := float64(len(data))
	sumCubedDeviations := 0.0
	for _, x := range data {
		deviation := (x - mean) / stdDev
		sumCubedDeviations += deviation * deviation * deviation
	}

	skewness := sumCubedDeviations / n
	correction := math.Sqrt(n*(n-1)) / (n - 2)
	return skewness * correction
}
