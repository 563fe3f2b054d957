package hypothesis

import "math"

// DefaultAlpha is the significance level every test is decided against
const DefaultAlpha = 0.05

// Kind identifies the statistical test behind a result
type Kind string

const (
	KindChiSquare Kind = "chi_square"
	KindPearson   Kind = "pearson"
	KindOLS       Kind = "ols"
)

// Decision is the outcome of a test at the configured alpha
type Decision string

const (
	DecisionReject       Decision = "Reject H0"
	DecisionFailToReject Decision = "Fail to reject H0"
	DecisionSkipped      Decision = "Skipped"
)

// Decide rejects the null hypothesis when p < alpha. NaN never rejects.
func Decide(p, alpha float64) Decision {
	if !math.IsNaN(p) && p < alpha {
		return DecisionReject
	}
	return DecisionFailToReject
}

// Result is the outcome of one test in the battery
type Result struct {
	Name      string   `json:"name"`
	Kind      Kind     `json:"kind"`
	X         string   `json:"x"`
	Y         string   `json:"y"`
	Null      string   `json:"null_hypothesis"`
	N         int      `json:"n"`
	Statistic float64  `json:"statistic"`
	DOF       int      `json:"dof"`
	PValue    float64  `json:"p_value"`
	Alpha     float64  `json:"alpha"`
	Decision  Decision `json:"decision"`

	// chi-square
	Rows          int     `json:"rows,omitempty"`
	Cols          int     `json:"cols,omitempty"`
	Pruned        int     `json:"pruned,omitempty"` // categories dropped for small marginals
	MinExpected   float64 `json:"min_expected,omitempty"`
	LowConfidence bool    `json:"low_confidence"`
	Yates         bool    `json:"yates,omitempty"`
	CramersV      float64 `json:"cramers_v,omitempty"`

	// correlation and regression
	Coefficient float64 `json:"coefficient,omitempty"` // r for Pearson, slope for OLS
	Intercept   float64 `json:"intercept,omitempty"`
	RSquared    float64 `json:"r_squared,omitempty"`
	StdErr      float64 `json:"std_err,omitempty"`

	Skipped bool   `json:"skipped"`
	Reason  string `json:"reason,omitempty"`
}

func skipped(spec Spec, alpha float64, reason string) Result {
	return Result{
		Name:     spec.Name,
		Kind:     spec.Kind,
		X:        spec.X,
		Y:        spec.Y,
		Null:     spec.Null,
		PValue:   1,
		Alpha:    alpha,
		Decision: DecisionSkipped,
		Skipped:  true,
		Reason:   reason,
	}
}
