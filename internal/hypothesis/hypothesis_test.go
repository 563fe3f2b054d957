package hypothesis

import (
	"context"
	"math"
	"testing"

	"salesaudit/domain/dataset"
	"salesaudit/internal/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func table2(rows, cols []string, counts [][]float64) ContingencyTable {
	return ContingencyTable{RowLabels: rows, ColLabels: cols, Counts: counts}
}

// expand turns a contingency table back into two label columns
func expand(ct ContingencyTable) (*dataset.Column, *dataset.Column) {
	var xs, ys []string
	for i, r := range ct.RowLabels {
		for j, c := range ct.ColLabels {
			for k := 0; k < int(ct.Counts[i][j]); k++ {
				xs = append(xs, r)
				ys = append(ys, c)
			}
		}
	}
	return dataset.NewCategoricalColumn("x", xs), dataset.NewCategoricalColumn("y", ys)
}

func TestDecide(t *testing.T) {
	assert.Equal(t, DecisionReject, Decide(0.01, DefaultAlpha))
	assert.Equal(t, DecisionFailToReject, Decide(0.05, DefaultAlpha), "p equal to alpha does not reject")
	assert.Equal(t, DecisionFailToReject, Decide(math.NaN(), DefaultAlpha))
}

func TestChiSquare_ProportionalTableHasNoAssociation(t *testing.T) {
	out := ChiSquare(table2([]string{"a", "b"}, []string{"0", "1"}, [][]float64{{10, 20}, {20, 40}}))

	assert.InDelta(t, 0, out.Statistic, 1e-12)
	assert.InDelta(t, 1, out.PValue, 1e-9)
	assert.Equal(t, 1, out.DOF)
	assert.True(t, out.Yates)
}

func TestChiSquare_YatesOnTwoByTwo(t *testing.T) {
	out := ChiSquare(table2([]string{"a", "b"}, []string{"0", "1"}, [][]float64{{30, 10}, {10, 30}}))

	// |O-E| = 10 in every cell, corrected to 9.5
	assert.InDelta(t, 18.05, out.Statistic, 1e-9)
	assert.InDelta(t, 2.1518e-5, out.PValue, 1e-8)
	assert.Equal(t, DecisionReject, Decide(out.PValue, DefaultAlpha))
}

func TestChiSquare_ThreeByTwo(t *testing.T) {
	out := ChiSquare(table2(
		[]string{"a", "b", "c"}, []string{"0", "1"},
		[][]float64{{10, 20}, {20, 10}, {15, 15}}))

	assert.False(t, out.Yates)
	assert.Equal(t, 2, out.DOF)
	assert.InDelta(t, 100.0/15, out.Statistic, 1e-9)
	assert.InDelta(t, 0.0356740, out.PValue, 1e-6)
	assert.InDelta(t, 15, out.MinExpected, 1e-12)
}

func TestPrune(t *testing.T) {
	sparse := table2(
		[]string{"a", "b", "rare"}, []string{"0", "1"},
		[][]float64{{20, 2}, {20, 3}, {1, 2}})

	pruned, removed := sparse.Prune(5)
	assert.Equal(t, 1, removed)
	assert.Equal(t, []string{"a", "b"}, pruned.RowLabels)
	assert.Equal(t, []string{"0", "1"}, pruned.ColLabels)

	dense := table2([]string{"a", "b"}, []string{"0", "1"}, [][]float64{{6, 7}, {8, 9}})
	same, removed := dense.Prune(5)
	assert.Zero(t, removed)
	assert.Equal(t, dense, same)
}

func TestCrosstab_SkipsMissingAndFilters(t *testing.T) {
	x := dataset.NewCategoricalColumn("Brand", []string{"b", "a", "a", "", "c"})
	y := dataset.NewNumericColumn("Returned", []float64{0, 1, 0, 1, math.NaN()})

	ct := Crosstab(x, y, nil)
	assert.Equal(t, []string{"a", "b"}, ct.RowLabels)
	assert.Equal(t, []string{"0", "1"}, ct.ColLabels)
	assert.Equal(t, 3.0, ct.Total())

	top := TopLabels(x, 1)
	assert.Equal(t, map[string]bool{"a": true}, top)
	assert.Equal(t, []string{"a"}, Crosstab(x, y, top).RowLabels)
}

func TestPearsonAndOLS_KnownValues(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}
	y := []float64{2, 4, 5, 4, 5}

	p, ok := Pearson(x, y)
	require.True(t, ok)
	assert.InDelta(t, 6/math.Sqrt(60), p.R, 1e-12)
	assert.InDelta(t, 2.1213203, p.T, 1e-6)
	assert.InDelta(t, 0.1240271, p.PValue, 1e-6)

	fit, ok := OLS(x, y)
	require.True(t, ok)
	assert.InDelta(t, 0.6, fit.Slope, 1e-12)
	assert.InDelta(t, 2.2, fit.Intercept, 1e-12)
	assert.InDelta(t, 0.6, fit.RSquared, 1e-12)
	assert.InDelta(t, 0.2828427, fit.StdErr, 1e-6)
	assert.InDelta(t, p.PValue, fit.PValue, 1e-9, "slope t-test matches the correlation t-test")
}

func TestPearsonAndOLS_ExactLine(t *testing.T) {
	x := []float64{0, 1, 2, 3, 4, 5}
	y := make([]float64, len(x))
	for i, v := range x {
		y[i] = 3*v - 2
	}

	p, ok := Pearson(x, y)
	require.True(t, ok)
	assert.InDelta(t, 1, p.R, 1e-12)
	assert.Equal(t, 0.0, p.PValue)

	fit, ok := OLS(x, y)
	require.True(t, ok)
	assert.InDelta(t, 3, fit.Slope, 1e-12)
	assert.InDelta(t, -2, fit.Intercept, 1e-12)
	assert.InDelta(t, 1, fit.RSquared, 1e-12)
	assert.Equal(t, 0.0, fit.PValue)
}

func TestPearson_Degenerate(t *testing.T) {
	_, ok := Pearson([]float64{1, 2}, []float64{3, 4})
	assert.False(t, ok)
	_, ok = Pearson([]float64{1, 1, 1}, []float64{3, 4, 5})
	assert.False(t, ok)
	_, ok = OLS([]float64{2, 2, 2}, []float64{3, 4, 5})
	assert.False(t, ok)
}

func TestTester_Run(t *testing.T) {
	device, returned := expand(table2(
		[]string{"Desktop", "Mobile"}, []string{"0", "1"},
		[][]float64{{30, 10}, {10, 30}}))
	returnedNum := make([]float64, returned.Len())
	for i := range returnedNum {
		l, _ := returned.Label(i)
		if l == "1" {
			returnedNum[i] = 1
		}
	}
	discount := make([]float64, device.Len())
	quantity := make([]float64, device.Len())
	for i := range discount {
		discount[i] = float64(i % 10)
		quantity[i] = 1 + 0.5*discount[i]
	}

	tbl := dataset.NewTable("orders", device.Len())
	require.NoError(t, tbl.AddColumn(dataset.NewCategoricalColumn(dataset.ColDevice, mustLabels(device))))
	require.NoError(t, tbl.AddColumn(dataset.NewNumericColumn(dataset.ColReturned, returnedNum)))
	require.NoError(t, tbl.AddColumn(dataset.NewNumericColumn(dataset.ColDiscountPercent, discount)))
	require.NoError(t, tbl.AddColumn(dataset.NewNumericColumn(dataset.ColQuantity, quantity)))

	tester := NewTester(DefaultAlpha, 5, logging.Discard())
	results, err := tester.Run(context.Background(), tbl, DefaultBattery(15))
	require.NoError(t, err)
	require.Len(t, results, 6)

	byName := make(map[string]Result)
	for _, r := range results {
		byName[r.Name] = r
		assert.Equal(t, DefaultAlpha, r.Alpha)
	}

	dev := byName["Device vs Returned"]
	assert.False(t, dev.Skipped)
	assert.Equal(t, DecisionReject, dev.Decision)
	assert.InDelta(t, 18.05, dev.Statistic, 1e-9)
	assert.Equal(t, 80, dev.N)

	region := byName["Region vs DeliveryStatus"]
	assert.True(t, region.Skipped)
	assert.Equal(t, DecisionSkipped, region.Decision)
	assert.Contains(t, region.Reason, dataset.ColRegion)

	ols := byName["Quantity ~ DiscountPercent"]
	assert.InDelta(t, 0.5, ols.Coefficient, 1e-12)
	assert.Equal(t, DecisionReject, ols.Decision)
}

func TestTester_LowConfidence(t *testing.T) {
	x, y := expand(table2(
		[]string{"a", "b"}, []string{"0", "1"},
		[][]float64{{20, 2}, {20, 3}}))
	tbl := dataset.NewTable("sparse", x.Len())
	require.NoError(t, tbl.AddColumn(x))
	require.NoError(t, tbl.AddColumn(y))

	res := NewTester(DefaultAlpha, 5, logging.Discard()).RunOne(tbl, Spec{Name: "sparse", Kind: KindChiSquare, X: "x", Y: "y"})
	assert.False(t, res.Skipped)
	assert.True(t, res.LowConfidence)
	assert.Less(t, res.MinExpected, 5.0)
}

func TestTester_TooSmallAfterPruning(t *testing.T) {
	x, y := expand(table2(
		[]string{"a", "b"}, []string{"0", "1"},
		[][]float64{{20, 1}, {2, 1}}))
	tbl := dataset.NewTable("tiny", x.Len())
	require.NoError(t, tbl.AddColumn(x))
	require.NoError(t, tbl.AddColumn(y))

	res := NewTester(DefaultAlpha, 5, logging.Discard()).RunOne(tbl, Spec{Name: "tiny", Kind: KindChiSquare, X: "x", Y: "y"})
	assert.True(t, res.Skipped)
	assert.Equal(t, 1, res.Rows)
}

func TestTester_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewTester(DefaultAlpha, 5, logging.Discard()).Run(ctx, dataset.NewTable("empty", 0), DefaultBattery(15))
	assert.ErrorIs(t, err, context.Canceled)
}

func mustLabels(c *dataset.Column) []string {
	out := make([]string, c.Len())
	for i := range out {
		out[i], _ = c.Label(i)
	}
	return out
}
