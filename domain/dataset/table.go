package dataset

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// SemanticType is the analytical role inferred for a column
type SemanticType string

const (
	TypeIdentifier  SemanticType = "identifier"
	TypeNumeric     SemanticType = "numeric"
	TypeCategorical SemanticType = "categorical"
	TypeTimestamp   SemanticType = "timestamp"
)

// Column is a typed, immutable vector of cells. Exactly one of the typed
// slices is populated, matching Type; Missing marks null cells.
type Column struct {
	Name    string
	Type    SemanticType
	Derived bool

	strings []string
	numbers []float64
	times   []time.Time
	missing []bool
}

// NewNumericColumn builds a numeric column; NaN marks a missing cell.
func NewNumericColumn(name string, values []float64) *Column {
	missing := make([]bool, len(values))
	for i, v := range values {
		missing[i] = math.IsNaN(v)
	}
	return &Column{Name: name, Type: TypeNumeric, numbers: values, missing: missing}
}

// NewCategoricalColumn builds a categorical column; "" marks a missing cell.
func NewCategoricalColumn(name string, values []string) *Column {
	return newStringColumn(name, TypeCategorical, values)
}

// NewIdentifierColumn builds a key column; "" marks a missing cell.
func NewIdentifierColumn(name string, values []string) *Column {
	return newStringColumn(name, TypeIdentifier, values)
}

// NewTimestampColumn builds a timestamp column; the zero time marks a missing cell.
func NewTimestampColumn(name string, values []time.Time) *Column {
	missing := make([]bool, len(values))
	for i, v := range values {
		missing[i] = v.IsZero()
	}
	return &Column{Name: name, Type: TypeTimestamp, times: values, missing: missing}
}

func newStringColumn(name string, typ SemanticType, values []string) *Column {
	missing := make([]bool, len(values))
	for i, v := range values {
		missing[i] = v == ""
	}
	return &Column{Name: name, Type: typ, strings: values, missing: missing}
}

// AsDerived marks the column as produced by the pipeline rather than loaded.
func (c *Column) AsDerived() *Column {
	c.Derived = true
	return c
}

// Len returns the number of cells
func (c *Column) Len() int {
	return len(c.missing)
}

// IsMissing reports whether cell i is null
func (c *Column) IsMissing(i int) bool {
	return c.missing[i]
}

// MissingCount returns the number of null cells
func (c *Column) MissingCount() int {
	n := 0
	for _, m := range c.missing {
		if m {
			n++
		}
	}
	return n
}

// Float returns the numeric value of cell i. ok is false for missing cells
// and non-numeric columns.
func (c *Column) Float(i int) (float64, bool) {
	if c.Type != TypeNumeric || c.missing[i] {
		return math.NaN(), false
	}
	return c.numbers[i], true
}

// Time returns the timestamp of cell i
func (c *Column) Time(i int) (time.Time, bool) {
	if c.Type != TypeTimestamp || c.missing[i] {
		return time.Time{}, false
	}
	return c.times[i], true
}

// Label returns the cell rendered as a category label, used for grouping,
// contingency tables and duplicate keys.
func (c *Column) Label(i int) (string, bool) {
	if c.missing[i] {
		return "", false
	}
	switch c.Type {
	case TypeNumeric:
		return strconv.FormatFloat(c.numbers[i], 'f', -1, 64), true
	case TypeTimestamp:
		return c.times[i].Format(time.RFC3339), true
	default:
		return c.strings[i], true
	}
}

// Floats returns a copy of the numeric cells with NaN for missing ones.
func (c *Column) Floats() []float64 {
	out := make([]float64, c.Len())
	for i := range out {
		v, _ := c.Float(i)
		out[i] = v
	}
	return out
}

// PresentFloats returns only the non-missing numeric cells, in row order.
func (c *Column) PresentFloats() []float64 {
	out := make([]float64, 0, c.Len())
	for i := 0; i < c.Len(); i++ {
		if v, ok := c.Float(i); ok {
			out = append(out, v)
		}
	}
	return out
}

// TimeRange returns the earliest and latest present timestamps.
func (c *Column) TimeRange() (min, max time.Time, ok bool) {
	for i := 0; i < c.Len(); i++ {
		t, present := c.Time(i)
		if !present {
			continue
		}
		if !ok || t.Before(min) {
			min = t
		}
		if !ok || t.After(max) {
			max = t
		}
		ok = true
	}
	return min, max, ok
}

// Table is an ordered set of equally long columns. Tables are never mutated
// after construction: stages that add columns return a new Table that shares
// the existing columns.
type Table struct {
	Name    string
	rows    int
	columns []*Column
	index   map[string]int
}

// NewTable creates an empty table with a fixed row count
func NewTable(name string, rows int) *Table {
	return &Table{Name: name, rows: rows, index: make(map[string]int)}
}

// AddColumn appends a column. It is meant for table construction only.
func (t *Table) AddColumn(c *Column) error {
	if c.Len() != t.rows {
		return fmt.Errorf("column %q has %d cells, table has %d rows", c.Name, c.Len(), t.rows)
	}
	if _, exists := t.index[c.Name]; exists {
		return fmt.Errorf("duplicate column %q", c.Name)
	}
	t.index[c.Name] = len(t.columns)
	t.columns = append(t.columns, c)
	return nil
}

// WithColumns returns a new table with the given columns appended after the
// existing ones. The receiver is left untouched.
func (t *Table) WithColumns(cols ...*Column) (*Table, error) {
	out := NewTable(t.Name, t.rows)
	for _, c := range t.columns {
		if err := out.AddColumn(c); err != nil {
			return nil, err
		}
	}
	for _, c := range cols {
		if err := out.AddColumn(c); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// RowCount returns the number of rows
func (t *Table) RowCount() int {
	return t.rows
}

// ColumnCount returns the number of columns
func (t *Table) ColumnCount() int {
	return len(t.columns)
}

// Column looks a column up by name
func (t *Table) Column(name string) (*Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.columns[i], true
}

// HasColumn reports whether the table has the named column
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Columns returns the columns in order
func (t *Table) Columns() []*Column {
	out := make([]*Column, len(t.columns))
	copy(out, t.columns)
	return out
}

// ColumnNames returns the column names in order
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name
	}
	return names
}

// NumericColumns returns the numeric columns in order
func (t *Table) NumericColumns() []*Column {
	var out []*Column
	for _, c := range t.columns {
		if c.Type == TypeNumeric {
			out = append(out, c)
		}
	}
	return out
}
