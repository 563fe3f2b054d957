package cleaning

import (
	"fmt"
	"math"
	"time"

	"salesaudit/internal/profiling"
)

// Delivery speed buckets
const (
	SpeedFast     = "Fast"
	SpeedStandard = "Standard"
	SpeedSlow     = "Slow"
)

// CapValues clips every present value to the bound's fences. NaN (missing)
// stays NaN. It returns the capped copy and how many values changed.
// Capping is idempotent: the output is already inside the fences.
func CapValues(values []float64, bound profiling.OutlierBound) ([]float64, int) {
	out := make([]float64, len(values))
	changed := 0
	for i, v := range values {
		if math.IsNaN(v) {
			out[i] = v
			continue
		}
		out[i] = bound.Clip(v)
		if out[i] != v {
			changed++
		}
	}
	return out, changed
}

// Log1pFloor returns log(1+x) for each value. Negative inputs are floored at
// 0 before the transform (so they map to 0) and counted; NaN stays NaN.
func Log1pFloor(values []float64) ([]float64, int) {
	out := make([]float64, len(values))
	floored := 0
	for i, v := range values {
		switch {
		case math.IsNaN(v):
			out[i] = v
		case v < 0:
			floored++
			out[i] = 0
		default:
			out[i] = math.Log1p(v)
		}
	}
	return out, floored
}

// Weekday returns the English day name of t
func Weekday(t time.Time) string {
	return t.Weekday().String()
}

// MonthPeriod returns the calendar month of t as YYYY-MM
func MonthPeriod(t time.Time) string {
	return t.Format("2006-01")
}

// CohortPeriod groups t into consecutive blocks of months starting in
// January: quarters render as 2024-Q1, halves as 2024-H1, whole years as
// 2024, single months as 2024-03 and other widths as 2024-P<n>.
func CohortPeriod(t time.Time, months int) string {
	if months <= 1 {
		return MonthPeriod(t)
	}
	if months >= 12 {
		return fmt.Sprintf("%d", t.Year())
	}
	idx := (int(t.Month())-1)/months + 1
	switch months {
	case 3:
		return fmt.Sprintf("%d-Q%d", t.Year(), idx)
	case 6:
		return fmt.Sprintf("%d-H%d", t.Year(), idx)
	default:
		return fmt.Sprintf("%d-P%d", t.Year(), idx)
	}
}

// DeliverySpeed buckets a delivery time in days: Fast up to fastMax,
// Standard up to standardMax, Slow beyond.
func DeliverySpeed(days float64, fastMax, standardMax int) string {
	switch {
	case days <= float64(fastMax):
		return SpeedFast
	case days <= float64(standardMax):
		return SpeedStandard
	default:
		return SpeedSlow
	}
}

// AgeGroup bins an age into 18-25, 26-35, 36-45, 46-55 and 55+. Ages under
// 18 or over 200 have no group and return "".
func AgeGroup(age float64) string {
	switch {
	case age < 18 || age > 200:
		return ""
	case age <= 25:
		return "18-25"
	case age <= 35:
		return "26-35"
	case age <= 45:
		return "36-45"
	case age <= 55:
		return "46-55"
	default:
		return "55+"
	}
}
