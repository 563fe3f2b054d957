package profiling

import (
	"log/slog"
	"sort"

	"salesaudit/domain/dataset"
	"salesaudit/internal/errors"
)

// DefaultIQRMultiplier is Tukey's fence factor
const DefaultIQRMultiplier = 1.5

// OutlierBound holds the IQR fences of one numeric column
type OutlierBound struct {
	Column   string  `json:"column"`
	Count    int     `json:"count"` // present values assessed
	Q1       float64 `json:"q1"`
	Q3       float64 `json:"q3"`
	IQR      float64 `json:"iqr"`
	Lower    float64 `json:"lower"`
	Upper    float64 `json:"upper"`
	Outliers int     `json:"outliers"`
	// ZeroSpread marks IQR == 0: both fences collapse onto the quartiles
	// and any value off that range is an outlier.
	ZeroSpread bool `json:"zero_spread"`
}

// IsOutlier reports whether v lies strictly outside [Lower, Upper]
func (b OutlierBound) IsOutlier(v float64) bool {
	return v < b.Lower || v > b.Upper
}

// Clip returns v limited to [Lower, Upper]
func (b OutlierBound) Clip(v float64) float64 {
	if v < b.Lower {
		return b.Lower
	}
	if v > b.Upper {
		return b.Upper
	}
	return v
}

// IQRBounds computes the fences Q1 - k*IQR and Q3 + k*IQR over values and
// counts the values outside them. The input is not modified.
func IQRBounds(column string, values []float64, k float64) (OutlierBound, error) {
	if len(values) == 0 {
		return OutlierBound{Column: column}, errors.InvalidInput("no present values to compute quartiles")
	}
	if k < 0 {
		return OutlierBound{Column: column}, errors.InvalidInput("IQR multiplier must be non-negative")
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	q1 := Quantile(sorted, 0.25)
	q3 := Quantile(sorted, 0.75)
	iqr := q3 - q1

	bound := OutlierBound{
		Column:     column,
		Count:      len(values),
		Q1:         q1,
		Q3:         q3,
		IQR:        iqr,
		Lower:      q1 - k*iqr,
		Upper:      q3 + k*iqr,
		ZeroSpread: iqr == 0,
	}
	for _, v := range values {
		if bound.IsOutlier(v) {
			bound.Outliers++
		}
	}
	return bound, nil
}

// OutlierDetector applies IQR fences to every numeric column of a table
type OutlierDetector struct {
	multiplier float64
	logger     *slog.Logger
}

// NewOutlierDetector creates a detector with fence factor k
func NewOutlierDetector(k float64, logger *slog.Logger) *OutlierDetector {
	return &OutlierDetector{multiplier: k, logger: logger}
}

// Detect returns the bounds of each numeric column in table order. A column
// that cannot be assessed is logged and left out rather than failing the run.
func (d *OutlierDetector) Detect(t *dataset.Table) []OutlierBound {
	var out []OutlierBound
	for _, col := range t.NumericColumns() {
		bound, err := d.DetectColumn(col)
		if err != nil {
			d.logger.Warn("skipping outlier detection",
				slog.String("column", col.Name),
				slog.String("reason", err.Error()))
			continue
		}
		if bound.ZeroSpread {
			d.logger.Debug("zero interquartile range",
				slog.String("column", col.Name),
				slog.Float64("q1", bound.Q1))
		}
		out = append(out, bound)
	}
	return out
}

// DetectColumn computes the bounds of one numeric column
func (d *OutlierDetector) DetectColumn(col *dataset.Column) (OutlierBound, error) {
	if col.Type != dataset.TypeNumeric {
		return OutlierBound{Column: col.Name}, errors.InvalidInput("column " + col.Name + " is not numeric")
	}
	return IQRBounds(col.Name, col.PresentFloats(), d.multiplier)
}
