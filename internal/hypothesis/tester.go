package hypothesis

import (
	"context"
	"fmt"
	"log/slog"

	"salesaudit/domain/dataset"
)

// Spec describes one test of the battery
type Spec struct {
	Name string
	Kind Kind
	X    string
	Y    string
	Null string
	// TopN restricts a chi-square test to the N most frequent X categories
	TopN int
}

// DefaultBattery is the fixed set of hypotheses run on every dataset
func DefaultBattery(topBrands int) []Spec {
	return []Spec{
		{
			Name: "Device vs Returned",
			Kind: KindChiSquare,
			X:    dataset.ColDevice,
			Y:    dataset.ColReturned,
			Null: "Return outcome is independent of device",
		},
		{
			Name: "Region vs DeliveryStatus",
			Kind: KindChiSquare,
			X:    dataset.ColRegion,
			Y:    dataset.ColDeliveryStatus,
			Null: "Delivery status is independent of region",
		},
		{
			Name: "AgeGroup vs Returned",
			Kind: KindChiSquare,
			X:    dataset.ColAgeGroup,
			Y:    dataset.ColReturned,
			Null: "Return outcome is independent of age group",
		},
		{
			Name: "Top Brands vs Returned",
			Kind: KindChiSquare,
			X:    dataset.ColBrand,
			Y:    dataset.ColReturned,
			Null: "Return outcome is independent of brand",
			TopN: topBrands,
		},
		{
			Name: "DiscountPercent vs Quantity",
			Kind: KindPearson,
			X:    dataset.ColDiscountPercent,
			Y:    dataset.ColQuantity,
			Null: "Discount and quantity are uncorrelated",
		},
		{
			Name: "Quantity ~ DiscountPercent",
			Kind: KindOLS,
			X:    dataset.ColDiscountPercent,
			Y:    dataset.ColQuantity,
			Null: "Discount has no linear effect on quantity",
		},
	}
}

// Tester runs hypothesis tests against a table
type Tester struct {
	alpha       float64
	minExpected float64
	logger      *slog.Logger
}

// NewTester creates a tester deciding at alpha. minExpected is both the
// pruning threshold for sparse categories and the expected-count floor
// below which a chi-square result is flagged low-confidence.
func NewTester(alpha, minExpected float64, logger *slog.Logger) *Tester {
	return &Tester{alpha: alpha, minExpected: minExpected, logger: logger}
}

// Alpha returns the significance level
func (t *Tester) Alpha() float64 {
	return t.alpha
}

// Run executes every spec. Tests are independent: one that cannot run is
// reported as skipped and the rest continue.
func (t *Tester) Run(ctx context.Context, table *dataset.Table, specs []Spec) ([]Result, error) {
	results := make([]Result, 0, len(specs))
	for _, spec := range specs {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res := t.RunOne(table, spec)
		if res.Skipped {
			t.logger.Warn("hypothesis test skipped",
				slog.String("test", spec.Name),
				slog.String("reason", res.Reason))
		} else {
			t.logger.Info("hypothesis test complete",
				slog.String("test", spec.Name),
				slog.Float64("p_value", res.PValue),
				slog.String("decision", string(res.Decision)),
				slog.Bool("low_confidence", res.LowConfidence))
		}
		results = append(results, res)
	}
	return results, nil
}

// RunOne executes a single spec
func (t *Tester) RunOne(table *dataset.Table, spec Spec) Result {
	x, okX := table.Column(spec.X)
	y, okY := table.Column(spec.Y)
	switch {
	case !okX:
		return skipped(spec, t.alpha, fmt.Sprintf("column %s not present", spec.X))
	case !okY:
		return skipped(spec, t.alpha, fmt.Sprintf("column %s not present", spec.Y))
	}

	switch spec.Kind {
	case KindChiSquare:
		return t.chiSquare(spec, x, y)
	case KindPearson, KindOLS:
		if x.Type != dataset.TypeNumeric || y.Type != dataset.TypeNumeric {
			return skipped(spec, t.alpha, "both columns must be numeric")
		}
		xs, ys := PairedValues(x, y)
		if spec.Kind == KindPearson {
			return t.pearson(spec, xs, ys)
		}
		return t.ols(spec, xs, ys)
	default:
		return skipped(spec, t.alpha, fmt.Sprintf("unknown test kind %q", spec.Kind))
	}
}

func (t *Tester) chiSquare(spec Spec, x, y *dataset.Column) Result {
	var keep map[string]bool
	if spec.TopN > 0 {
		keep = TopLabels(x, spec.TopN)
	}
	table, pruned := Crosstab(x, y, keep).Prune(t.minExpected)
	rows, cols := table.Dims()
	if rows < 2 || cols < 2 {
		res := skipped(spec, t.alpha, fmt.Sprintf("contingency table is %dx%d after pruning; need at least 2x2", rows, cols))
		res.Rows, res.Cols, res.Pruned = rows, cols, pruned
		return res
	}

	outcome := ChiSquare(table)
	return Result{
		Name:          spec.Name,
		Kind:          spec.Kind,
		X:             spec.X,
		Y:             spec.Y,
		Null:          spec.Null,
		N:             int(table.Total()),
		Statistic:     outcome.Statistic,
		DOF:           outcome.DOF,
		PValue:        outcome.PValue,
		Alpha:         t.alpha,
		Decision:      Decide(outcome.PValue, t.alpha),
		Rows:          rows,
		Cols:          cols,
		Pruned:        pruned,
		MinExpected:   outcome.MinExpected,
		LowConfidence: outcome.MinExpected < t.minExpected,
		Yates:         outcome.Yates,
		CramersV:      outcome.CramersV,
	}
}

func (t *Tester) pearson(spec Spec, xs, ys []float64) Result {
	outcome, ok := Pearson(xs, ys)
	if !ok {
		return skipped(spec, t.alpha, fmt.Sprintf("correlation undefined for %d pairs or constant input", len(xs)))
	}
	return Result{
		Name:        spec.Name,
		Kind:        spec.Kind,
		X:           spec.X,
		Y:           spec.Y,
		Null:        spec.Null,
		N:           len(xs),
		Statistic:   outcome.T,
		DOF:         outcome.DOF,
		PValue:      outcome.PValue,
		Alpha:       t.alpha,
		Decision:    Decide(outcome.PValue, t.alpha),
		Coefficient: outcome.R,
	}
}

func (t *Tester) ols(spec Spec, xs, ys []float64) Result {
	outcome, ok := OLS(xs, ys)
	if !ok {
		return skipped(spec, t.alpha, fmt.Sprintf("regression undefined for %d pairs or constant %s", len(xs), spec.X))
	}
	return Result{
		Name:        spec.Name,
		Kind:        spec.Kind,
		X:           spec.X,
		Y:           spec.Y,
		Null:        spec.Null,
		N:           len(xs),
		Statistic:   outcome.T,
		DOF:         outcome.DOF,
		PValue:      outcome.PValue,
		Alpha:       t.alpha,
		Decision:    Decide(outcome.PValue, t.alpha),
		Coefficient: outcome.Slope,
		Intercept:   outcome.Intercept,
		RSquared:    outcome.RSquared,
		StdErr:      outcome.StdErr,
	}
}
