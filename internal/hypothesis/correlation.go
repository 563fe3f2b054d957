package hypothesis

import (
	"math"

	"salesaudit/domain/dataset"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// PairedValues returns the rows where both numeric columns are present
func PairedValues(x, y *dataset.Column) ([]float64, []float64) {
	xs := make([]float64, 0, x.Len())
	ys := make([]float64, 0, y.Len())
	for i := 0; i < x.Len(); i++ {
		a, okA := x.Float(i)
		b, okB := y.Float(i)
		if okA && okB {
			xs = append(xs, a)
			ys = append(ys, b)
		}
	}
	return xs, ys
}

// PearsonOutcome is a correlation with its two-sided t-test
type PearsonOutcome struct {
	R      float64
	T      float64
	DOF    int
	PValue float64
}

// Pearson correlates x and y and tests r against zero with n-2 degrees of
// freedom. ok is false when there are fewer than three pairs or either
// input is constant.
func Pearson(x, y []float64) (PearsonOutcome, bool) {
	n := len(x)
	if n < 3 {
		return PearsonOutcome{}, false
	}
	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) {
		return PearsonOutcome{}, false
	}

	dof := n - 2
	out := PearsonOutcome{R: r, DOF: dof}
	if math.Abs(r) >= 1 {
		out.T = math.Copysign(math.Inf(1), r)
		out.PValue = 0
		return out, true
	}
	out.T = r * math.Sqrt(float64(dof)/(1-r*r))
	out.PValue = twoSided(out.T, dof)
	return out, true
}

// OLSOutcome is the fit of y = intercept + slope*x
type OLSOutcome struct {
	Slope     float64
	Intercept float64
	RSquared  float64
	StdErr    float64 // standard error of the slope
	T         float64
	DOF       int
	PValue    float64 // slope against zero
}

// OLS fits a single-variable least squares line. ok is false when there are
// fewer than three pairs or x is constant.
func OLS(x, y []float64) (OLSOutcome, bool) {
	n := len(x)
	if n < 3 {
		return OLSOutcome{}, false
	}
	meanX := stat.Mean(x, nil)
	sxx := 0.0
	for _, v := range x {
		sxx += (v - meanX) * (v - meanX)
	}
	if sxx == 0 {
		return OLSOutcome{}, false
	}

	intercept, slope := stat.LinearRegression(x, y, nil, false)
	sse := 0.0
	for i := range x {
		res := y[i] - (intercept + slope*x[i])
		sse += res * res
	}

	dof := n - 2
	out := OLSOutcome{
		Slope:     slope,
		Intercept: intercept,
		RSquared:  stat.RSquared(x, y, nil, intercept, slope),
		StdErr:    math.Sqrt(sse / float64(dof) / sxx),
		DOF:       dof,
	}
	if math.IsNaN(out.RSquared) {
		out.RSquared = 0 // constant y
	}
	switch {
	case out.StdErr == 0 && slope == 0:
		out.PValue = 1
	case out.StdErr == 0:
		out.T = math.Copysign(math.Inf(1), slope)
		out.PValue = 0
	default:
		out.T = slope / out.StdErr
		out.PValue = twoSided(out.T, dof)
	}
	return out, true
}

func twoSided(t float64, dof int) float64 {
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(dof)}
	return math.Min(1, 2*dist.Survival(math.Abs(t)))
}
