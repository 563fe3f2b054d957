package dataset

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_WithColumnsLeavesReceiverUntouched(t *testing.T) {
	base := NewTable("sales", 3)
	require.NoError(t, base.AddColumn(NewIdentifierColumn(ColOrderID, []string{"o1", "o2", "o3"})))
	require.NoError(t, base.AddColumn(NewNumericColumn(ColPrice, []float64{10, math.NaN(), 30})))

	extended, err := base.WithColumns(NewNumericColumn(ColRevenue, []float64{1, 2, 3}).AsDerived())
	require.NoError(t, err)

	assert.Equal(t, []string{ColOrderID, ColPrice}, base.ColumnNames())
	assert.Equal(t, []string{ColOrderID, ColPrice, ColRevenue}, extended.ColumnNames())

	rev, ok := extended.Column(ColRevenue)
	require.True(t, ok)
	assert.True(t, rev.Derived)
}

func TestTable_AddColumnRejectsBadShapes(t *testing.T) {
	tbl := NewTable("sales", 2)
	require.NoError(t, tbl.AddColumn(NewCategoricalColumn(ColRegion, []string{"North", "South"})))

	assert.Error(t, tbl.AddColumn(NewCategoricalColumn(ColDevice, []string{"Mobile"})))
	assert.Error(t, tbl.AddColumn(NewCategoricalColumn(ColRegion, []string{"East", "West"})))
}

func TestColumn_MissingAndLabels(t *testing.T) {
	num := NewNumericColumn(ColReturned, []float64{0, 1, math.NaN()})
	assert.Equal(t, 1, num.MissingCount())
	assert.Equal(t, []float64{0, 1}, num.PresentFloats())

	label, ok := num.Label(1)
	assert.True(t, ok)
	assert.Equal(t, "1", label)
	_, ok = num.Label(2)
	assert.False(t, ok)

	cat := NewCategoricalColumn(ColDevice, []string{"Mobile", ""})
	assert.Equal(t, 1, cat.MissingCount())
	_, ok = cat.Float(0)
	assert.False(t, ok, "categorical cells have no numeric value")
}

func TestColumn_TimeRange(t *testing.T) {
	d1 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)
	col := NewTimestampColumn(ColOrderDate, []time.Time{d1, {}, d2})

	min, max, ok := col.TimeRange()
	require.True(t, ok)
	assert.Equal(t, d2, min)
	assert.Equal(t, d1, max)
	assert.Equal(t, 1, col.MissingCount())
}

func TestSalesSchema_HasNineteenColumns(t *testing.T) {
	assert.Len(t, SalesSchema.Fields, 19)
	spec, ok := SalesSchema.Lookup(ColOrderDate)
	require.True(t, ok)
	assert.Equal(t, TypeTimestamp, spec.Type)
}
