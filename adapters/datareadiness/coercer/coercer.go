package coercer

import (
	"math"
	"strconv"
	"strings"
	"time"

	"salesaudit/domain/dataset"
)

// TypeCoercer handles deterministic type inference and coercion of raw cells
type TypeCoercer struct {
	config CoercionConfig
}

// CoercionConfig defines the coercion thresholds and rules
type CoercionConfig struct {
	NumericThreshold   float64  `json:"numeric_threshold"`   // share of present values that must parse as numbers
	TimestampThreshold float64  `json:"timestamp_threshold"` // share of present values that must parse as timestamps
	MissingTokens      []string `json:"missing_tokens"`      // case-insensitive null markers
}

// DefaultCoercionConfig returns sensible defaults
func DefaultCoercionConfig() CoercionConfig {
	return CoercionConfig{
		NumericThreshold:   0.8,
		TimestampThreshold: 0.8,
		MissingTokens:      []string{"", "na", "n/a", "nan", "null", "none", "-"},
	}
}

// NewTypeCoercer creates a coercer with the given config
func NewTypeCoercer(config CoercionConfig) *TypeCoercer {
	return &TypeCoercer{config: config}
}

var timestampFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006 15:04",
	"01/02/2006",
	"2006/01/02",
	"02-Jan-2006",
}

// IsMissing reports whether a raw cell is a null marker
func (c *TypeCoercer) IsMissing(raw string) bool {
	v := strings.ToLower(strings.TrimSpace(raw))
	for _, token := range c.config.MissingTokens {
		if v == token {
			return true
		}
	}
	return false
}

// ParseNumeric parses a number, tolerating currency symbols, percent signs,
// thousands separators, accounting-style negatives and yes/no flags.
func (c *TypeCoercer) ParseNumeric(raw string) (float64, bool) {
	cleanVal := strings.TrimSpace(raw)
	if cleanVal == "" {
		return 0, false
	}

	switch strings.ToLower(cleanVal) {
	case "true", "yes":
		return 1, true
	case "false", "no":
		return 0, true
	}

	// (123) -> -123
	isNegative := false
	if strings.HasPrefix(cleanVal, "(") && strings.HasSuffix(cleanVal, ")") {
		cleanVal = strings.TrimSuffix(strings.TrimPrefix(cleanVal, "("), ")")
		isNegative = true
	}

	for _, symbol := range []string{"$", "€", "£", "¥", "₹", "USD", "EUR", "GBP", "INR", "%"} {
		cleanVal = strings.ReplaceAll(cleanVal, symbol, "")
	}
	cleanVal = strings.ReplaceAll(cleanVal, ",", "")
	cleanVal = strings.ReplaceAll(cleanVal, " ", "")

	if isNegative {
		cleanVal = "-" + cleanVal
	}

	val, err := strconv.ParseFloat(cleanVal, 64)
	if err != nil || math.IsInf(val, 0) || math.IsNaN(val) {
		return 0, false
	}
	return val, true
}

// ParseTimestamp tries the supported layouts in order
func (c *TypeCoercer) ParseTimestamp(raw string) (time.Time, bool) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampFormats {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// TypeAnalysis contains the results of type distribution analysis
type TypeAnalysis struct {
	TotalCount      int                  `json:"total_count"`
	ValidCount      int                  `json:"valid_count"`
	NumericCount    int                  `json:"numeric_count"`
	TimestampCount  int                  `json:"timestamp_count"`
	NumericRatio    float64              `json:"numeric_ratio"`
	TimestampRatio  float64              `json:"timestamp_ratio"`
	RecommendedType dataset.SemanticType `json:"recommended_type"`
}

// AnalyzeTypeDistribution inspects raw cells to pick a semantic type. A
// column with no present values is categorical.
func (c *TypeCoercer) AnalyzeTypeDistribution(values []string) TypeAnalysis {
	analysis := TypeAnalysis{TotalCount: len(values)}

	for _, raw := range values {
		if c.IsMissing(raw) {
			continue
		}
		analysis.ValidCount++
		if _, ok := c.ParseNumeric(raw); ok {
			analysis.NumericCount++
		}
		if _, ok := c.ParseTimestamp(raw); ok {
			analysis.TimestampCount++
		}
	}

	analysis.RecommendedType = dataset.TypeCategorical
	if analysis.ValidCount == 0 {
		return analysis
	}

	analysis.NumericRatio = float64(analysis.NumericCount) / float64(analysis.ValidCount)
	analysis.TimestampRatio = float64(analysis.TimestampCount) / float64(analysis.ValidCount)

	switch {
	case analysis.NumericRatio >= c.config.NumericThreshold:
		analysis.RecommendedType = dataset.TypeNumeric
	case analysis.TimestampRatio >= c.config.TimestampThreshold:
		analysis.RecommendedType = dataset.TypeTimestamp
	}
	return analysis
}

// CoerceColumn converts raw cells into a typed column. Cells that are
// present but do not parse as the requested type become missing; their
// number is returned so the caller can report it.
func (c *TypeCoercer) CoerceColumn(name string, typ dataset.SemanticType, raw []string) (*dataset.Column, int) {
	failures := 0

	switch typ {
	case dataset.TypeNumeric:
		values := make([]float64, len(raw))
		for i, cell := range raw {
			values[i] = math.NaN()
			if c.IsMissing(cell) {
				continue
			}
			if v, ok := c.ParseNumeric(cell); ok {
				values[i] = v
			} else {
				failures++
			}
		}
		return dataset.NewNumericColumn(name, values), failures

	case dataset.TypeTimestamp:
		values := make([]time.Time, len(raw))
		for i, cell := range raw {
			if c.IsMissing(cell) {
				continue
			}
			if v, ok := c.ParseTimestamp(cell); ok {
				values[i] = v
			} else {
				failures++
			}
		}
		return dataset.NewTimestampColumn(name, values), failures

	default:
		values := make([]string, len(raw))
		for i, cell := range raw {
			if !c.IsMissing(cell) {
				values[i] = strings.TrimSpace(cell)
			}
		}
		if typ == dataset.TypeIdentifier {
			return dataset.NewIdentifierColumn(name, values), 0
		}
		return dataset.NewCategoricalColumn(name, values), 0
	}
}
