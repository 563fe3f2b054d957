package testkit

import (
	"bytes"
	"encoding/csv"
	"testing"

	"salesaudit/domain/dataset"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func smallConfig() SalesGeneratorConfig {
	cfg := DefaultSalesConfig()
	cfg.Rows = 500
	cfg.CustomerCount = 100
	cfg.ProductCount = 50
	return cfg
}

func TestSalesGenerator_Deterministic(t *testing.T) {
	a := NewSalesDataGenerator(smallConfig()).Records()
	b := NewSalesDataGenerator(smallConfig()).Records()
	assert.Equal(t, a, b, "same seed must produce the same export")
}

func TestSalesGenerator_Shape(t *testing.T) {
	records := NewSalesDataGenerator(smallConfig()).Records()

	require.Len(t, records, 501)
	assert.Equal(t, dataset.SalesSchema.Names(), records[0])
	for _, rec := range records[1:] {
		require.Len(t, rec, 19)
		assert.NotEmpty(t, rec[0], "OrderID is never missing")
	}
}

func TestSalesGenerator_NoDuplicatesWhenDisabled(t *testing.T) {
	cfg := smallConfig()
	cfg.DuplicateRate = 0

	seen := map[string]bool{}
	for _, rec := range NewSalesDataGenerator(cfg).Records()[1:] {
		assert.False(t, seen[rec[0]], "duplicate order id %s", rec[0])
		seen[rec[0]] = true
	}
}

func TestSalesGenerator_WriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewSalesDataGenerator(smallConfig()).WriteCSV(&buf))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 501)
}
