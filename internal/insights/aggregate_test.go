package insights

import (
	"math"
	"testing"

	"salesaudit/domain/dataset"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ordersTable(t *testing.T) *dataset.Table {
	t.Helper()
	tbl := dataset.NewTable("orders", 6)
	for _, c := range []*dataset.Column{
		dataset.NewCategoricalColumn(dataset.ColCategory, []string{"Books", "Books", "Toys", "Toys", "Toys", ""}),
		dataset.NewCategoricalColumn(dataset.ColDevice, []string{"Mobile", "Desktop", "Mobile", "Mobile", "Desktop", "Mobile"}),
		dataset.NewCategoricalColumn(dataset.ColRegion, []string{"North", "North", "South", "South", "South", "North"}),
		dataset.NewCategoricalColumn(dataset.ColDeliveryStatus, []string{"Delivered", "Delayed", "Delayed", "Delayed", "Delivered", "Delivered"}),
		dataset.NewNumericColumn(dataset.ColRevenue, []float64{10, 20, 5, 5, math.NaN(), 100}),
		dataset.NewNumericColumn(dataset.ColReturned, []float64{0, 1, 1, 1, 0, 0}),
	} {
		require.NoError(t, tbl.AddColumn(c))
	}
	return tbl
}

func TestSumBy(t *testing.T) {
	groups, ok := SumBy(ordersTable(t), dataset.ColCategory, dataset.ColRevenue)
	require.True(t, ok)
	assert.Equal(t, []Group{
		{Label: "Books", Value: 30, Count: 2},
		{Label: "Toys", Value: 10, Count: 2},
	}, groups)
}

func TestRateBy(t *testing.T) {
	groups, ok := RateBy(ordersTable(t), dataset.ColDevice, dataset.ColReturned)
	require.True(t, ok)
	require.Len(t, groups, 2)
	assert.Equal(t, "Desktop", groups[0].Label)
	assert.InDelta(t, 50, groups[0].Value, 1e-12)
	assert.InDelta(t, 50, groups[1].Value, 1e-12)

	_, ok = RateBy(ordersTable(t), dataset.ColBrand, dataset.ColReturned)
	assert.False(t, ok)
}

func TestShareBy(t *testing.T) {
	groups, ok := ShareBy(ordersTable(t), dataset.ColRegion, dataset.ColDeliveryStatus, DelayedStatus)
	require.True(t, ok)
	assert.Equal(t, "South", groups[0].Label)
	assert.InDelta(t, 200.0/3, groups[0].Value, 1e-9)
}

func TestAggregateAndHighlights(t *testing.T) {
	s := Aggregate(ordersTable(t), dataset.ColRevenue)
	assert.Empty(t, s.ReturnRateByBrand)
	assert.NotEmpty(t, s.RevenueByCategory)

	highlights := s.Highlights()
	require.Len(t, highlights, 4)
	assert.Contains(t, highlights[0], "Books")
}
