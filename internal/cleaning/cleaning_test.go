package cleaning

import (
	"math"
	"testing"
	"time"

	"salesaudit/domain/dataset"
	"salesaudit/internal/logging"
	"salesaudit/internal/profiling"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultOptions() Options {
	return Options{
		RevenueColumn:   dataset.ColRevenue,
		DateColumn:      dataset.ColOrderDate,
		DeliveryColumn:  dataset.ColDeliveryDays,
		IQRMultiplier:   profiling.DefaultIQRMultiplier,
		CohortMonths:    3,
		FastMaxDays:     2,
		StandardMaxDays: 5,
	}
}

func salesTable(t *testing.T) *dataset.Table {
	t.Helper()
	day := func(s string) time.Time {
		ts, err := time.Parse("2006-01-02", s)
		require.NoError(t, err)
		return ts
	}
	tbl := dataset.NewTable("orders", 6)
	for _, c := range []*dataset.Column{
		dataset.NewIdentifierColumn(dataset.ColOrderID, []string{"o1", "o2", "o3", "o4", "o5", "o6"}),
		dataset.NewNumericColumn(dataset.ColFinalPrice, []float64{1, 2, 3, 4, 5, 100}),
		dataset.NewNumericColumn(dataset.ColQuantity, []float64{1, 1, 1, 1, 1, 1}),
		dataset.NewNumericColumn(dataset.ColDeliveryDays, []float64{1, 2, 3, 5, 6, math.NaN()}),
		dataset.NewTimestampColumn(dataset.ColOrderDate, []time.Time{
			day("2024-01-01"), day("2024-03-31"), day("2024-04-01"),
			day("2024-07-15"), day("2024-12-31"), {},
		}),
	} {
		require.NoError(t, tbl.AddColumn(c))
	}
	return tbl
}

func TestCapValues_Idempotent(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, 100, math.NaN()}
	bound, err := profiling.IQRBounds("x", []float64{1, 2, 3, 4, 5, 100}, profiling.DefaultIQRMultiplier)
	require.NoError(t, err)

	once, changed := CapValues(values, bound)
	assert.Equal(t, 1, changed)
	assert.InDelta(t, 8.5, once[5], 1e-12)
	assert.True(t, math.IsNaN(once[6]))

	twice, changedAgain := CapValues(once, bound)
	assert.Zero(t, changedAgain)
	for i := range once[:6] {
		assert.Equal(t, once[i], twice[i])
		assert.GreaterOrEqual(t, twice[i], bound.Lower)
		assert.LessOrEqual(t, twice[i], bound.Upper)
	}
}

func TestLog1pFloor_RoundTrip(t *testing.T) {
	values := []float64{0, 1, 8.5, 1234.5, -3, math.NaN()}
	logged, floored := Log1pFloor(values)

	assert.Equal(t, 1, floored)
	assert.Equal(t, 0.0, logged[0])
	assert.Equal(t, 0.0, logged[4])
	assert.True(t, math.IsNaN(logged[5]))
	for i, v := range values[:4] {
		assert.InDelta(t, v, math.Expm1(logged[i]), 1e-9)
	}
}

func TestCohortPeriod(t *testing.T) {
	march := time.Date(2024, time.March, 9, 0, 0, 0, 0, time.UTC)
	october := time.Date(2024, time.October, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		months int
		ts     time.Time
		want   string
	}{
		{1, march, "2024-03"},
		{3, march, "2024-Q1"},
		{3, october, "2024-Q4"},
		{6, october, "2024-H2"},
		{12, october, "2024"},
		{4, october, "2024-P3"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CohortPeriod(tt.ts, tt.months), "months=%d", tt.months)
	}
}

func TestDeliverySpeed(t *testing.T) {
	tests := []struct {
		days float64
		want string
	}{
		{0, SpeedFast},
		{2, SpeedFast},
		{2.5, SpeedStandard},
		{5, SpeedStandard},
		{6, SpeedSlow},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DeliverySpeed(tt.days, 2, 5), "days=%v", tt.days)
	}
}

func TestAgeGroup(t *testing.T) {
	assert.Equal(t, "18-25", AgeGroup(18))
	assert.Equal(t, "26-35", AgeGroup(26))
	assert.Equal(t, "46-55", AgeGroup(55))
	assert.Equal(t, "55+", AgeGroup(56))
	assert.Empty(t, AgeGroup(12))
}

func TestClean_DerivesColumns(t *testing.T) {
	tbl := salesTable(t)
	out, summary, err := NewCleaner(defaultOptions(), logging.Discard()).Clean(tbl)
	require.NoError(t, err)

	assert.Equal(t, 5, tbl.ColumnCount(), "input table is untouched")
	assert.Equal(t, []string{dataset.ColFinalPrice, dataset.ColQuantity}, summary.RevenueDerivedFrom)
	assert.Equal(t, 1, summary.Capped)
	assert.Zero(t, summary.Floored)
	assert.Contains(t, summary.DerivedColumns, dataset.ColRevenueCapped)

	capped, ok := out.Column(dataset.ColRevenueCapped)
	require.True(t, ok)
	assert.True(t, capped.Derived)
	v, _ := capped.Float(5)
	assert.InDelta(t, 8.5, v, 1e-12)

	logCol, _ := out.Column(dataset.ColRevenueLog)
	lv, _ := logCol.Float(5)
	assert.InDelta(t, math.Log1p(8.5), lv, 1e-12)

	cohort, _ := out.Column(dataset.ColOrderCohort)
	labels := make([]string, 0, 6)
	for i := 0; i < 5; i++ {
		l, _ := cohort.Label(i)
		labels = append(labels, l)
	}
	assert.Equal(t, []string{"2024-Q1", "2024-Q1", "2024-Q2", "2024-Q3", "2024-Q4"}, labels)
	assert.True(t, cohort.IsMissing(5), "missing date gives missing cohort")

	weekday, _ := out.Column(dataset.ColOrderWeekday)
	w, _ := weekday.Label(0)
	assert.Equal(t, "Monday", w)

	speed, _ := out.Column(dataset.ColDeliverySpeed)
	s, _ := speed.Label(4)
	assert.Equal(t, SpeedSlow, s)
	assert.True(t, speed.IsMissing(5))
}

func TestClean_SkipsAbsentInputs(t *testing.T) {
	tbl := dataset.NewTable("bare", 2)
	require.NoError(t, tbl.AddColumn(dataset.NewIdentifierColumn(dataset.ColOrderID, []string{"a", "b"})))
	require.NoError(t, tbl.AddColumn(dataset.NewNumericColumn(dataset.ColAge, []float64{22, 60})))

	out, summary, err := NewCleaner(defaultOptions(), logging.Discard()).Clean(tbl)
	require.NoError(t, err)

	assert.Len(t, summary.Warnings, 3)
	assert.True(t, summary.AgeGroupDerived)
	assert.Equal(t, []string{dataset.ColAgeGroup}, summary.DerivedColumns)

	groups, ok := out.Column(dataset.ColAgeGroup)
	require.True(t, ok)
	g, _ := groups.Label(1)
	assert.Equal(t, "55+", g)
}
